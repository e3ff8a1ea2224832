package models

import (
	"errors"
	"testing"
)

func TestGroupDeletionDetachesPosts(t *testing.T) {
	database := newTestDB(t)
	alice := mustCreateUser(t, database, "alice")
	groupID, err := CreateGroup(database, "Cats", "cats", "feline content")
	if err != nil {
		t.Fatalf("create group: %v", err)
	}
	postID, err := CreatePost(database, alice, "in group", &groupID)
	if err != nil {
		t.Fatalf("create post: %v", err)
	}

	if err := DeleteGroup(database, groupID); err != nil {
		t.Fatalf("delete group: %v", err)
	}

	post, err := GetPost(database, postID)
	if err != nil {
		t.Fatalf("post should survive group deletion: %v", err)
	}
	if post.GroupID != nil {
		t.Fatalf("post group reference = %d, want nil", *post.GroupID)
	}
}

func TestPostDeletionCascadesComments(t *testing.T) {
	database := newTestDB(t)
	alice := mustCreateUser(t, database, "alice")
	bob := mustCreateUser(t, database, "bob")
	postID, err := CreatePost(database, alice, "hello", nil)
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	if _, err := CreateComment(database, postID, bob, "hi"); err != nil {
		t.Fatalf("create comment: %v", err)
	}

	if err := DeletePost(database, postID); err != nil {
		t.Fatalf("delete post: %v", err)
	}

	var comments int
	if err := database.QueryRow(`SELECT COUNT(1) FROM comments`).Scan(&comments); err != nil {
		t.Fatalf("count comments: %v", err)
	}
	if comments != 0 {
		t.Fatalf("comments after post deletion = %d, want 0", comments)
	}
}

func TestAuthorDeletionCascadesComments(t *testing.T) {
	database := newTestDB(t)
	alice := mustCreateUser(t, database, "alice")
	bob := mustCreateUser(t, database, "bob")
	postID, err := CreatePost(database, alice, "hello", nil)
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	if _, err := CreateComment(database, postID, bob, "hi"); err != nil {
		t.Fatalf("create comment: %v", err)
	}

	if err := DeleteUser(database, bob); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	cs, err := ListComments(database, postID)
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if len(cs) != 0 {
		t.Fatalf("comments after author deletion = %d, want 0", len(cs))
	}
	// the post itself is untouched
	if _, err := GetPost(database, postID); err != nil {
		t.Fatalf("post should survive commenter deletion: %v", err)
	}
}

func TestCanModify(t *testing.T) {
	database := newTestDB(t)
	alice := mustCreateUser(t, database, "alice")
	bob := mustCreateUser(t, database, "bob")
	postID, err := CreatePost(database, alice, "mine", nil)
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	post, err := GetPost(database, postID)
	if err != nil {
		t.Fatalf("get post: %v", err)
	}

	if !post.CanModify(alice) {
		t.Fatal("author must be allowed to modify")
	}
	if post.CanModify(bob) {
		t.Fatal("non-author must not be allowed to modify")
	}
}

func TestLookupsNotFound(t *testing.T) {
	database := newTestDB(t)

	if _, err := GetGroupBySlug(database, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("group lookup error = %v, want ErrNotFound", err)
	}
	if _, err := GetUserByUsername(database, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("user lookup error = %v, want ErrNotFound", err)
	}
	if _, err := GetPost(database, 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("post lookup error = %v, want ErrNotFound", err)
	}
	if err := UpdatePost(database, 42, "text", nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update missing post error = %v, want ErrNotFound", err)
	}
}

func TestDuplicateUsers(t *testing.T) {
	database := newTestDB(t)
	mustCreateUser(t, database, "alice")

	if _, err := CreateUser(database, "alice@example.com", "other", "hash"); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("duplicate email error = %v, want ErrDuplicateEmail", err)
	}
	if _, err := CreateUser(database, "new@example.com", "alice", "hash"); !errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("duplicate username error = %v, want ErrDuplicateUsername", err)
	}
}
