package server

import (
	"bytes"
	"database/sql"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"blog/internal/config"
	"blog/internal/feed"
	"blog/internal/metrics"
	"blog/internal/models"
)

type Server struct {
	DB     *sql.DB
	Logger *slog.Logger
	Feed   *feed.Assembler
	Cache  *feed.RenderCache

	tmpl map[string]*template.Template

	CookieName string
}

func New(db *sql.DB, logger *slog.Logger, cfg config.Config) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	templates := map[string]*template.Template{}
	layout := filepath.Join(cfg.TemplateDir, "layout.html")
	pages, err := filepath.Glob(filepath.Join(cfg.TemplateDir, "*.html"))
	if err != nil {
		return nil, err
	}
	for _, page := range pages {
		if filepath.Base(page) == "layout.html" {
			continue
		}
		t, err := template.ParseFiles(layout, page)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(filepath.Base(page), ".html")
		templates[name] = t
	}

	return &Server{
		DB:         db,
		Logger:     logger.With("component", "server"),
		Feed:       &feed.Assembler{DB: db, PageSize: cfg.PostPageCount},
		Cache:      feed.NewRenderCache(cfg.FeedCacheTTL),
		tmpl:       templates,
		CookieName: "session_id",
	}, nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.logRequests, s.recoverPanics, metrics.Middleware)

	r.Get("/", s.handleIndex)
	r.Get("/group/{slug}", s.handleGroup)
	r.Get("/u/{username}", s.handleProfile)
	r.Post("/u/{username}/follow", s.requireAuth(s.handleFollow))
	r.Post("/u/{username}/unfollow", s.requireAuth(s.handleUnfollow))
	r.Get("/feed", s.requireAuth(s.handleFeed))
	r.Get("/post/{id}", s.handlePost)
	r.HandleFunc("/post/new", s.requireAuth(s.handleNewPost))
	r.HandleFunc("/post/{id}/edit", s.requireAuth(s.handleEditPost))
	r.Post("/post/{id}/comment", s.requireAuth(s.handleComment))
	r.HandleFunc("/login", s.handleLogin)
	r.HandleFunc("/register", s.handleRegister)
	r.Post("/logout", s.handleLogout)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	return r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.routes().ServeHTTP(w, r)
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		s.Logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", time.Since(start))
	})
}

func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.Logger.Error("panic recovered", "error", err, "path", r.URL.Path)
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := s.renderTo(&buf, name, data); err != nil {
		s.Logger.Error("render failed", "template", name, "error", err)
		http.Error(w, "render error", http.StatusInternalServerError)
		return
	}
	buf.WriteTo(w) //nolint:errcheck
}

func (s *Server) renderTo(w io.Writer, name string, data any) error {
	t, ok := s.tmpl[name]
	if !ok {
		return errTemplateNotFound(name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

// renderFragment renders one of the shared blocks from layout.html on
// its own, without the surrounding page.
func (s *Server) renderFragment(w io.Writer, block string, data any) error {
	t, ok := s.tmpl["index"]
	if !ok {
		return errTemplateNotFound(block)
	}
	return t.ExecuteTemplate(w, block, data)
}

type errTemplateNotFound string

func (e errTemplateNotFound) Error() string { return "template not found: " + string(e) }

func (s *Server) serverError(w http.ResponseWriter, what string, err error) {
	s.Logger.Error(what, "error", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// middleware
func (s *Server) requireAuth(next func(http.ResponseWriter, *http.Request, *models.User)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := s.currentUser(r)
		if user == nil {
			http.Redirect(w, r, loginURL(r), http.StatusSeeOther)
			return
		}
		next(w, r, user)
	}
}

// loginURL points at the login form with the originally requested
// destination preserved for the post-login redirect.
func loginURL(r *http.Request) string {
	next := r.URL.Path
	if r.URL.RawQuery != "" {
		next += "?" + r.URL.RawQuery
	}
	return "/login?next=" + url.QueryEscape(next)
}

// safeNext only ever redirects within the site.
func safeNext(raw string) string {
	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
		return raw
	}
	return "/"
}

func (s *Server) currentUser(r *http.Request) *models.User {
	cookie, err := r.Cookie(s.CookieName)
	if err != nil {
		return nil
	}
	sess, err := models.GetSession(s.DB, cookie.Value)
	if err != nil || sess.RevokedAt != nil || sess.ExpiresAt.Before(time.Now()) {
		return nil
	}
	user, err := models.GetUserByID(s.DB, sess.UserID)
	if err != nil {
		return nil
	}
	return user
}

// helpers
func pageNumber(r *http.Request) int {
	return feed.ParseNumber(r.URL.Query().Get("page"))
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	return id, err == nil && id > 0
}

func urlParamID(r *http.Request) (int64, bool) {
	return parseID(chi.URLParam(r, "id"))
}
