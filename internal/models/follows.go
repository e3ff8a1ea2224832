package models

import "database/sql"

// Follow creates the user→author edge. Re-following an already followed
// author is a no-op: the unique (user_id, author_id) index plus INSERT OR
// IGNORE guarantees at most one edge per pair. Self-follow is rejected.
func Follow(db *sql.DB, userID, authorID int64) error {
	if userID == authorID {
		return ErrSelfFollow
	}
	_, err := db.Exec(`INSERT OR IGNORE INTO follows (user_id, author_id) VALUES (?, ?)`, userID, authorID)
	return err
}

// Unfollow removes the edge if present. Removing an absent edge is a
// no-op, not an error.
func Unfollow(db *sql.DB, userID, authorID int64) error {
	_, err := db.Exec(`DELETE FROM follows WHERE user_id = ? AND author_id = ?`, userID, authorID)
	return err
}

func IsFollowing(db *sql.DB, userID, authorID int64) (bool, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(1) FROM follows WHERE user_id = ? AND author_id = ?`, userID, authorID).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// FollowedAuthorIDs returns the ids of every author the user follows.
func FollowedAuthorIDs(db *sql.DB, userID int64) ([]int64, error) {
	rows, err := db.Query(`SELECT author_id FROM follows WHERE user_id = ? ORDER BY author_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
