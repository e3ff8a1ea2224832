package server

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"blog/internal/feed"
	"blog/internal/models"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	body, err := s.globalFeed(pageNumber(r))
	if err != nil {
		s.serverError(w, "assembling global feed", err)
		return
	}
	s.render(w, "index", map[string]any{
		"Feed": template.HTML(body),
		"User": s.currentUser(r),
	})
}

// globalFeed returns the rendered post-list fragment for the requested
// page of the global feed. Only this viewer-independent fragment is
// cached; the surrounding page is composed per request. Entries are
// keyed by the clamped page number so equivalent requests share one
// entry and arbitrary ?page= values cannot grow the cache.
func (s *Server) globalFeed(page int) ([]byte, error) {
	if body, ok := s.Cache.Get(page); ok {
		return body, nil
	}

	pg, err := s.Feed.GetPage(feed.All(), page)
	if err != nil {
		return nil, err
	}
	if pg.Number != page {
		if body, ok := s.Cache.Get(pg.Number); ok {
			return body, nil
		}
	}

	var buf bytes.Buffer
	if err := s.renderFragment(&buf, "post_list", pg); err != nil {
		return nil, err
	}
	s.Cache.Set(pg.Number, buf.Bytes())
	return buf.Bytes(), nil
}

func (s *Server) handleGroup(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	group, err := models.GetGroupBySlug(s.DB, slug)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.serverError(w, "loading group", err)
		return
	}

	pg, err := s.Feed.GetPage(feed.ByGroup(slug), pageNumber(r))
	if err != nil {
		s.serverError(w, "assembling group feed", err)
		return
	}

	s.render(w, "group", map[string]any{
		"Group": group,
		"Page":  pg,
		"User":  s.currentUser(r),
	})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	author, err := models.GetUserByUsername(s.DB, username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.serverError(w, "loading author", err)
		return
	}

	pg, err := s.Feed.GetPage(feed.ByAuthor(username), pageNumber(r))
	if err != nil {
		s.serverError(w, "assembling author feed", err)
		return
	}

	viewer := s.currentUser(r)
	following := false
	if viewer != nil && viewer.ID != author.ID {
		following, err = models.IsFollowing(s.DB, viewer.ID, author.ID)
		if err != nil {
			s.serverError(w, "checking follow edge", err)
			return
		}
	}

	s.render(w, "profile", map[string]any{
		"Author":    author,
		"Page":      pg,
		"User":      viewer,
		"Following": following,
	})
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	s.renderPostDetail(w, r, id, "")
}

func (s *Server) renderPostDetail(w http.ResponseWriter, r *http.Request, id int64, commentError string) {
	post, err := models.GetPost(s.DB, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.serverError(w, "loading post", err)
		return
	}
	comments, err := models.ListComments(s.DB, id)
	if err != nil {
		s.serverError(w, "loading comments", err)
		return
	}

	s.render(w, "post", map[string]any{
		"Post":         post,
		"Comments":     comments,
		"User":         s.currentUser(r),
		"CommentError": commentError,
	})
}

func (s *Server) handleNewPost(w http.ResponseWriter, r *http.Request, user *models.User) {
	switch r.Method {
	case http.MethodGet:
		s.renderPostForm(w, user, "Add post", "/post/new", "", nil, "")

	case http.MethodPost:
		text := strings.TrimSpace(r.FormValue("text"))
		groupID := parseGroupID(r.FormValue("group"))
		if text == "" {
			s.renderPostForm(w, user, "Add post", "/post/new", text, groupID, "Text must not be empty.")
			return
		}
		if _, err := models.CreatePost(s.DB, user.ID, text, groupID); err != nil {
			s.serverError(w, "creating post", err)
			return
		}
		http.Redirect(w, r, "/u/"+user.Username, http.StatusSeeOther)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleEditPost(w http.ResponseWriter, r *http.Request, user *models.User) {
	id, ok := urlParamID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	post, err := models.GetPost(s.DB, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.serverError(w, "loading post", err)
		return
	}

	// Non-authors are bounced to the author's profile, not to an error
	// page.
	if !post.CanModify(user.ID) {
		http.Redirect(w, r, "/u/"+post.AuthorName, http.StatusSeeOther)
		return
	}

	action := "/post/" + strconv.FormatInt(id, 10) + "/edit"

	switch r.Method {
	case http.MethodGet:
		s.renderPostForm(w, user, "Edit post", action, post.Text, post.GroupID, "")

	case http.MethodPost:
		text := strings.TrimSpace(r.FormValue("text"))
		groupID := parseGroupID(r.FormValue("group"))
		if text == "" {
			s.renderPostForm(w, user, "Edit post", action, text, groupID, "Text must not be empty.")
			return
		}
		if err := models.UpdatePost(s.DB, id, text, groupID); err != nil {
			s.serverError(w, "updating post", err)
			return
		}
		http.Redirect(w, r, "/post/"+strconv.FormatInt(id, 10), http.StatusSeeOther)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) renderPostForm(w http.ResponseWriter, user *models.User, title, action, text string, groupID *int64, formError string) {
	groups, err := models.ListGroups(s.DB)
	if err != nil {
		s.serverError(w, "loading groups", err)
		return
	}
	var selected int64
	if groupID != nil {
		selected = *groupID
	}
	s.render(w, "post_form", map[string]any{
		"User":     user,
		"Title":    title,
		"Action":   action,
		"Text":     text,
		"Groups":   groups,
		"Selected": selected,
		"Error":    formError,
	})
}

func (s *Server) handleComment(w http.ResponseWriter, r *http.Request, user *models.User) {
	id, ok := urlParamID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if _, err := models.GetPost(s.DB, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		s.serverError(w, "loading post", err)
		return
	}

	text := strings.TrimSpace(r.FormValue("text"))
	if text == "" {
		s.renderPostDetail(w, r, id, "Comment must not be empty.")
		return
	}
	if _, err := models.CreateComment(s.DB, id, user.ID, text); err != nil {
		s.serverError(w, "creating comment", err)
		return
	}
	http.Redirect(w, r, "/post/"+strconv.FormatInt(id, 10), http.StatusSeeOther)
}

// parseGroupID reads the optional group selector value; empty or zero
// means no group.
func parseGroupID(raw string) *int64 {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil
	}
	return &id
}
