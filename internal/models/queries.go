package models

import (
	"database/sql"
	"errors"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateEmail    = errors.New("email already exists")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrSelfFollow        = errors.New("cannot follow yourself")
)

const postColumns = `p.id, p.text, p.created_at, p.author_id, u.username,
	p.group_id, COALESCE(g.title, ''), COALESCE(g.slug, '')`

const postFrom = ` FROM posts p
	JOIN users u ON u.id = p.author_id
	LEFT JOIN groups g ON g.id = p.group_id`

func scanPost(row interface{ Scan(...any) error }) (Post, error) {
	var p Post
	var groupID sql.NullInt64
	err := row.Scan(&p.ID, &p.Text, &p.CreatedAt, &p.AuthorID, &p.AuthorName,
		&groupID, &p.GroupTitle, &p.GroupSlug)
	if err != nil {
		return Post{}, err
	}
	if groupID.Valid {
		p.GroupID = &groupID.Int64
	}
	return p, nil
}

func CreateGroup(db *sql.DB, title, slug, description string) (int64, error) {
	res, err := db.Exec(`INSERT INTO groups (title, slug, description) VALUES (?, ?, ?)`, title, slug, description)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func GetGroupBySlug(db *sql.DB, slug string) (*Group, error) {
	row := db.QueryRow(`SELECT id, title, slug, description FROM groups WHERE slug = ?`, slug)
	var g Group
	if err := row.Scan(&g.ID, &g.Title, &g.Slug, &g.Description); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

// DeleteGroup removes a group. Posts in the group survive with a null
// group reference (schema-level SET NULL).
func DeleteGroup(db *sql.DB, id int64) error {
	_, err := db.Exec(`DELETE FROM groups WHERE id = ?`, id)
	return err
}

func CreatePost(db *sql.DB, authorID int64, text string, groupID *int64) (int64, error) {
	res, err := db.Exec(`INSERT INTO posts (text, author_id, group_id) VALUES (?, ?, ?)`, text, authorID, groupID)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func GetPost(db *sql.DB, id int64) (*Post, error) {
	row := db.QueryRow(`SELECT `+postColumns+postFrom+` WHERE p.id = ?`, id)
	p, err := scanPost(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// UpdatePost rewrites the post's text and group. The creation timestamp
// and author are immutable.
func UpdatePost(db *sql.DB, id int64, text string, groupID *int64) error {
	res, err := db.Exec(`UPDATE posts SET text = ?, group_id = ? WHERE id = ?`, text, groupID, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePost removes a post; its comments cascade away with it.
func DeletePost(db *sql.DB, id int64) error {
	_, err := db.Exec(`DELETE FROM posts WHERE id = ?`, id)
	return err
}

func CreateComment(db *sql.DB, postID, authorID int64, text string) (int64, error) {
	res, err := db.Exec(`INSERT INTO comments (text, author_id, post_id) VALUES (?, ?, ?)`, text, authorID, postID)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListComments returns a post's comments oldest first.
func ListComments(db *sql.DB, postID int64) ([]Comment, error) {
	rows, err := db.Query(`SELECT c.id, c.text, c.created_at, c.author_id, u.username, c.post_id
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.post_id = ?
		ORDER BY c.created_at ASC, c.id ASC`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var cs []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.Text, &c.CreatedAt, &c.AuthorID, &c.AuthorName, &c.PostID); err != nil {
			return nil, err
		}
		cs = append(cs, c)
	}
	return cs, rows.Err()
}

// ListGroups returns all groups ordered by title, for the post form's
// group selector.
func ListGroups(db *sql.DB) ([]Group, error) {
	rows, err := db.Query(`SELECT id, title, slug, description FROM groups ORDER BY title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var gs []Group
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.ID, &g.Title, &g.Slug, &g.Description); err != nil {
			return nil, err
		}
		gs = append(gs, g)
	}
	return gs, rows.Err()
}
