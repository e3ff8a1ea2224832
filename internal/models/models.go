package models

import "time"

type User struct {
	ID           int64
	Email        string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

type Session struct {
	ID        string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
	RevokedAt *time.Time
}

type Group struct {
	ID          int64
	Title       string
	Slug        string
	Description string
}

// Post is a feed entry. AuthorName, GroupTitle and GroupSlug are joined in
// by the queries so feeds can render without extra lookups; GroupID is nil
// for posts that belong to no group.
type Post struct {
	ID         int64
	Text       string
	CreatedAt  time.Time
	AuthorID   int64
	AuthorName string
	GroupID    *int64
	GroupTitle string
	GroupSlug  string
}

// CanModify reports whether viewerID may edit the post. Only the author
// may; there is no role hierarchy.
func (p *Post) CanModify(viewerID int64) bool {
	return viewerID == p.AuthorID
}

type Comment struct {
	ID         int64
	Text       string
	CreatedAt  time.Time
	AuthorID   int64
	AuthorName string
	PostID     int64
}
