package storage

import (
	"context"
	"errors"
	"testing"
	"time"
)

// insertTestUser creates a user row for tests that need an owner.
func insertTestUser(t *testing.T, repo *UserRepo, email string) *User {
	t.Helper()
	user := &User{Email: email, Name: "Test User", PasswordHash: "hash"}
	if err := repo.Insert(context.Background(), user); err != nil {
		t.Fatalf("Insert() user error = %v", err)
	}
	return user
}

func TestSessionRepo_InsertAndGet(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepo(db)
	repo := NewSessionRepo(db)
	ctx := context.Background()

	user := insertTestUser(t, users, "session@example.com")

	session := &Session{
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	if err := repo.Insert(ctx, session); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if session.Token == "" {
		t.Fatal("Insert() did not generate a token")
	}

	got, err := repo.GetByToken(ctx, session.Token)
	if err != nil {
		t.Fatalf("GetByToken() error = %v", err)
	}
	if got.UserID != user.ID {
		t.Errorf("GetByToken() UserID = %q, want %q", got.UserID, user.ID)
	}
	if got.ExpiresAt.UnixMilli() != session.ExpiresAt.UnixMilli() {
		t.Errorf("GetByToken() ExpiresAt = %v, want %v", got.ExpiresAt, session.ExpiresAt)
	}
}

func TestSessionRepo_GetByToken_NotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewSessionRepo(db)

	_, err := repo.GetByToken(context.Background(), "missing-token")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByToken() error = %v, want ErrNotFound", err)
	}
}

func TestSessionRepo_DeleteByToken(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepo(db)
	repo := NewSessionRepo(db)
	ctx := context.Background()

	user := insertTestUser(t, users, "delete@example.com")
	session := &Session{UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour)}
	if err := repo.Insert(ctx, session); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	if err := repo.DeleteByToken(ctx, session.Token); err != nil {
		t.Fatalf("DeleteByToken() error = %v", err)
	}
	if _, err := repo.GetByToken(ctx, session.Token); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByToken() after delete error = %v, want ErrNotFound", err)
	}

	// Deleting a missing token is not an error.
	if err := repo.DeleteByToken(ctx, "missing-token"); err != nil {
		t.Errorf("DeleteByToken() missing token error = %v", err)
	}
}

func TestSessionRepo_DeleteExpired(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepo(db)
	repo := NewSessionRepo(db)
	ctx := context.Background()

	user := insertTestUser(t, users, "expiry@example.com")
	now := time.Now()

	expired := &Session{UserID: user.ID, ExpiresAt: now.Add(-time.Hour)}
	live := &Session{UserID: user.ID, ExpiresAt: now.Add(time.Hour)}
	for _, s := range []*Session{expired, live} {
		if err := repo.Insert(ctx, s); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	if err := repo.DeleteExpired(ctx, now); err != nil {
		t.Fatalf("DeleteExpired() error = %v", err)
	}

	if _, err := repo.GetByToken(ctx, expired.Token); !errors.Is(err, ErrNotFound) {
		t.Errorf("expired session still present, error = %v", err)
	}
	if _, err := repo.GetByToken(ctx, live.Token); err != nil {
		t.Errorf("live session was removed: %v", err)
	}
}
