package server

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"blog/internal/feed"
	"blog/internal/models"
)

func (s *Server) handleFollow(w http.ResponseWriter, r *http.Request, user *models.User) {
	s.changeFollow(w, r, user, models.Follow)
}

func (s *Server) handleUnfollow(w http.ResponseWriter, r *http.Request, user *models.User) {
	s.changeFollow(w, r, user, models.Unfollow)
}

func (s *Server) changeFollow(w http.ResponseWriter, r *http.Request, user *models.User, change func(*sql.DB, int64, int64) error) {
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

	if err := change(s.DB, user.ID, author.ID); err != nil {
		// A self-follow never creates an edge, the viewer just lands back
		// on their own profile.
		if !errors.Is(err, models.ErrSelfFollow) {
			s.serverError(w, "changing follow edge", err)
			return
		}
	}
	http.Redirect(w, r, "/u/"+author.Username, http.StatusSeeOther)
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request, user *models.User) {
	pg, err := s.Feed.GetPage(feed.FollowedBy(user.ID), pageNumber(r))
	if err != nil {
		s.serverError(w, "assembling followed feed", err)
		return
	}
	s.render(w, "feed", map[string]any{
		"Page": pg,
		"User": user,
	})
}
