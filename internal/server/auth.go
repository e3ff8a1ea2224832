package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"blog/internal/models"
)

const sessionTTL = 24 * time.Hour

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, "register", map[string]any{
			"User":     s.currentUser(r),
			"Email":    "",
			"Username": "",
		})

	case http.MethodPost:
		email := r.FormValue("email")
		username := r.FormValue("username")
		password := r.FormValue("password")
		if email == "" || username == "" || password == "" {
			s.render(w, "register", map[string]any{
				"Error":    "All fields are required.",
				"Email":    email,
				"Username": username,
			})
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			s.serverError(w, "hashing password", err)
			return
		}
		_, err = models.CreateUser(s.DB, email, username, string(hash))
		if err != nil {
			if errors.Is(err, models.ErrDuplicateEmail) || errors.Is(err, models.ErrDuplicateUsername) {
				s.render(w, "register", map[string]any{
					"Error":    err.Error(),
					"Email":    email,
					"Username": username,
				})
				return
			}
			s.serverError(w, "creating user", err)
			return
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.render(w, "login", map[string]any{
			"User": s.currentUser(r),
			"Next": safeNext(r.URL.Query().Get("next")),
		})

	case http.MethodPost:
		email := r.FormValue("email")
		password := r.FormValue("password")
		next := safeNext(r.FormValue("next"))

		user, err := models.GetUserByEmail(s.DB, email)
		if err != nil {
			s.render(w, "login", map[string]any{"Error": "Invalid email or password.", "Next": next})
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
			s.render(w, "login", map[string]any{"Error": "Invalid email or password.", "Next": next})
			return
		}

		sid := uuid.NewString()
		expires := time.Now().Add(sessionTTL)
		if err := models.CreateSession(s.DB, user.ID, sid, expires); err != nil {
			s.serverError(w, "creating session", err)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: s.CookieName, Value: sid, Path: "/", Expires: expires, HttpOnly: true})
		http.Redirect(w, r, next, http.StatusSeeOther)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(s.CookieName)
	if err == nil {
		if err := models.RevokeSession(s.DB, cookie.Value); err != nil {
			s.Logger.Error("revoking session", "error", err)
		}
		http.SetCookie(w, &http.Cookie{Name: s.CookieName, Path: "/", MaxAge: -1})
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
