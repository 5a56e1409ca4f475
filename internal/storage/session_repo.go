package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SessionStore defines the interface for session storage operations.
type SessionStore interface {
	// GetByToken gets a session by its bearer token.
	// Returns nil and ErrNotFound if not found.
	GetByToken(ctx context.Context, token string) (*Session, error)
	// Insert inserts a new session. Generates a token when none is set.
	Insert(ctx context.Context, session *Session) error
	// DeleteByToken removes a session. Deleting a missing token is not an error.
	DeleteByToken(ctx context.Context, token string) error
	// DeleteExpired removes all sessions that expired before now.
	DeleteExpired(ctx context.Context, now time.Time) error
}

// SessionRepo provides methods for session operations.
// It implements the SessionStore interface.
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo creates a new SessionRepo.
func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// GetByToken gets a session by its bearer token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*Session, error) {
	var session Session
	var createdAt, expiresAt int64

	err := r.db.QueryRowContext(ctx,
		"SELECT token, user_id, created_at, expires_at FROM sessions WHERE token = ?",
		token,
	).Scan(&session.Token, &session.UserID, &createdAt, &expiresAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	session.CreatedAt = time.UnixMilli(createdAt)
	session.ExpiresAt = time.UnixMilli(expiresAt)
	return &session, nil
}

// Insert inserts a new session.
func (r *SessionRepo) Insert(ctx context.Context, session *Session) error {
	if session.Token == "" {
		session.Token = uuid.New().String()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, created_at, expires_at)
		 VALUES (?, ?, ?, ?)`,
		session.Token, session.UserID, session.CreatedAt.UnixMilli(), session.ExpiresAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	return nil
}

// DeleteByToken removes a session.
func (r *SessionRepo) DeleteByToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE token = ?", token)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes all sessions that expired before now.
func (r *SessionRepo) DeleteExpired(ctx context.Context, now time.Time) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at < ?", now.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return nil
}
