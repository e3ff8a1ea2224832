// Package feed assembles ordered, paginated views over posts. A feed is
// selected by a Scope (all posts, one group, one author, or the authors a
// viewer follows) and always sorts newest first: created_at descending,
// ties broken by id descending. Equivalent queries over the same store
// state always return the same order, so pages partition the sequence
// deterministically.
package feed

import (
	"database/sql"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"blog/internal/models"
)

const DefaultPageSize = 10

type scopeKind int

const (
	scopeAll scopeKind = iota
	scopeGroup
	scopeAuthor
	scopeFollowed
)

// Scope selects which posts make up a feed.
type Scope struct {
	kind     scopeKind
	slug     string
	username string
	viewerID int64
}

// All selects every post.
func All() Scope { return Scope{kind: scopeAll} }

// ByGroup selects the posts of the group with the given slug.
func ByGroup(slug string) Scope { return Scope{kind: scopeGroup, slug: slug} }

// ByAuthor selects the posts of the author with the given username.
func ByAuthor(username string) Scope { return Scope{kind: scopeAuthor, username: username} }

// FollowedBy selects posts authored by anyone the viewer follows. An empty
// follow set yields an empty feed, not an error.
func FollowedBy(viewerID int64) Scope { return Scope{kind: scopeFollowed, viewerID: viewerID} }

// Page is one page of a feed plus the metadata a renderer needs for
// pagination controls.
type Page struct {
	Posts       []models.Post
	Number      int
	PageSize    int
	TotalPosts  int
	TotalPages  int
	HasNext     bool
	HasPrevious bool
}

func (p Page) NextNumber() int { return p.Number + 1 }
func (p Page) PrevNumber() int { return p.Number - 1 }

// ParseNumber turns a raw ?page= value into a page number. Anything
// unparseable means the first page; range clamping happens in GetPage.
func ParseNumber(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 1
	}
	return n
}

type Assembler struct {
	DB       *sql.DB
	PageSize int
}

// GetPage returns page number of the scope's feed. Out-of-range numbers
// clamp: below one means the first page, past the end means the last. An
// empty scope yields a single empty page. Unknown group slugs or author
// usernames surface models.ErrNotFound.
func (a *Assembler) GetPage(scope Scope, number int) (Page, error) {
	size := a.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}

	where, args, empty, err := a.resolve(scope)
	if err != nil {
		return Page{}, err
	}
	if empty {
		return Page{Number: 1, PageSize: size, TotalPages: 1}, nil
	}

	var total int
	if err := a.DB.QueryRow(`SELECT COUNT(1) FROM posts p`+where, args...).Scan(&total); err != nil {
		return Page{}, err
	}

	totalPages := (total + size - 1) / size
	if totalPages < 1 {
		totalPages = 1
	}
	if number < 1 {
		number = 1
	}
	if number > totalPages {
		number = totalPages
	}

	query := `SELECT p.id, p.text, p.created_at, p.author_id, u.username,
			p.group_id, COALESCE(g.title, ''), COALESCE(g.slug, '')
		FROM posts p
		JOIN users u ON u.id = p.author_id
		LEFT JOIN groups g ON g.id = p.group_id` + where + `
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT ? OFFSET ?`
	rows, err := a.DB.Query(query, append(args, size, (number-1)*size)...)
	if err != nil {
		return Page{}, err
	}
	defer rows.Close()

	var posts []models.Post
	for rows.Next() {
		var p models.Post
		var groupID sql.NullInt64
		if err := rows.Scan(&p.ID, &p.Text, &p.CreatedAt, &p.AuthorID, &p.AuthorName,
			&groupID, &p.GroupTitle, &p.GroupSlug); err != nil {
			return Page{}, err
		}
		if groupID.Valid {
			p.GroupID = &groupID.Int64
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return Page{}, err
	}

	return Page{
		Posts:       posts,
		Number:      number,
		PageSize:    size,
		TotalPosts:  total,
		TotalPages:  totalPages,
		HasNext:     number < totalPages,
		HasPrevious: number > 1,
	}, nil
}

// resolve turns a scope into a WHERE clause over posts p. empty is true
// when the scope cannot match anything (a viewer who follows nobody).
func (a *Assembler) resolve(scope Scope) (where string, args []any, empty bool, err error) {
	switch scope.kind {
	case scopeGroup:
		group, err := models.GetGroupBySlug(a.DB, scope.slug)
		if err != nil {
			return "", nil, false, err
		}
		return ` WHERE p.group_id = ?`, []any{group.ID}, false, nil
	case scopeAuthor:
		author, err := models.GetUserByUsername(a.DB, scope.username)
		if err != nil {
			return "", nil, false, err
		}
		return ` WHERE p.author_id = ?`, []any{author.ID}, false, nil
	case scopeFollowed:
		ids, err := models.FollowedAuthorIDs(a.DB, scope.viewerID)
		if err != nil {
			return "", nil, false, err
		}
		if len(ids) == 0 {
			return "", nil, true, nil
		}
		placeholders := strings.Join(lo.RepeatBy(len(ids), func(int) string { return "?" }), ", ")
		args := lo.Map(ids, func(id int64, _ int) any { return id })
		return ` WHERE p.author_id IN (` + placeholders + `)`, args, false, nil
	default:
		return "", nil, false, nil
	}
}
