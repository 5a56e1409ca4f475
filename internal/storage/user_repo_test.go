package storage

import (
	"context"
	"errors"
	"testing"
)

func TestUserRepo_InsertAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepo(db)
	ctx := context.Background()

	user := &User{
		Email:        "ada@example.com",
		Name:         "Ada",
		PasswordHash: "hash",
	}
	if err := repo.Insert(ctx, user); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if user.ID == "" {
		t.Fatal("Insert() did not generate an ID")
	}
	if user.CreatedAt.IsZero() {
		t.Fatal("Insert() did not set CreatedAt")
	}

	got, err := repo.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Email != user.Email || got.Name != user.Name || got.PasswordHash != user.PasswordHash {
		t.Errorf("GetByID() = %+v, want fields of %+v", got, user)
	}

	got, err = repo.GetByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("GetByEmail() ID = %q, want %q", got.ID, user.ID)
	}
}

func TestUserRepo_GetByID_NotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepo(db)

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestUserRepo_Insert_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepo(db)
	ctx := context.Background()

	first := &User{Email: "dup@example.com", Name: "First", PasswordHash: "h1"}
	if err := repo.Insert(ctx, first); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	second := &User{Email: "dup@example.com", Name: "Second", PasswordHash: "h2"}
	if err := repo.Insert(ctx, second); !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("Insert() error = %v, want ErrDuplicateEmail", err)
	}
}
