package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when inserting a user with an email
	// that is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserStore defines the interface for user storage operations.
type UserStore interface {
	// GetByID gets a user by ID. Returns nil and ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*User, error)
	// GetByEmail gets a user by email. Returns nil and ErrNotFound if not found.
	GetByEmail(ctx context.Context, email string) (*User, error)
	// Insert inserts a new user. Generates an ID when none is set.
	Insert(ctx context.Context, user *User) error
}

// UserRepo provides methods for user operations.
// It implements the UserStore interface.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

// GetByID gets a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*User, error) {
	return r.getOne(ctx, "id = ?", id)
}

// GetByEmail gets a user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getOne(ctx, "email = ?", email)
}

func (r *UserRepo) getOne(ctx context.Context, where string, arg any) (*User, error) {
	var user User
	var createdAt int64

	err := r.db.QueryRowContext(ctx,
		"SELECT id, email, name, avatar_url, password_hash, created_at FROM users WHERE "+where,
		arg,
	).Scan(&user.ID, &user.Email, &user.Name, &user.AvatarURL, &user.PasswordHash, &createdAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	user.CreatedAt = time.UnixMilli(createdAt)
	return &user, nil
}

// Insert inserts a new user.
func (r *UserRepo) Insert(ctx context.Context, user *User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, avatar_url, password_hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.Name, user.AvatarURL, user.PasswordHash, user.CreatedAt.UnixMilli(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.email") {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}
