package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"notedeck/internal/contextutil"
	"notedeck/internal/storage"
)

var (
	// ErrInvalidCredentials is returned on login with an unknown email or
	// wrong password. The two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken is returned on registration with an already-used email.
	ErrEmailTaken = errors.New("email already registered")
)

// ValidationError reports a rejected registration or login field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

const minPasswordLength = 8

// Service issues and resolves bearer-token sessions backed by the database.
type Service struct {
	users      storage.UserStore
	sessions   storage.SessionStore
	sessionTTL time.Duration
	logger     *slog.Logger
}

// NewService creates a new auth Service.
func NewService(users storage.UserStore, sessions storage.SessionStore, sessionTTL time.Duration) *Service {
	return &Service{
		users:      users,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		logger:     slog.Default(),
	}
}

// Register creates a user and an initial session for them.
func (s *Service) Register(ctx context.Context, email, name, password string) (*storage.User, *storage.Session, error) {
	logger := contextutil.LoggerFromContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, nil, &ValidationError{Field: "email", Message: "must be a valid email address"}
	}
	if strings.TrimSpace(name) == "" {
		return nil, nil, &ValidationError{Field: "name", Message: "cannot be empty"}
	}
	if len(password) < minPasswordLength {
		return nil, nil, &ValidationError{Field: "password", Message: fmt.Sprintf("must be at least %d characters", minPasswordLength)}
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, nil, err
	}

	user := &storage.User{
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
	}
	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicateEmail) {
			return nil, nil, ErrEmailTaken
		}
		return nil, nil, fmt.Errorf("failed to create user: %w", err)
	}

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	logger.InfoContext(ctx, "user registered", "user_id", user.ID)
	return user, session, nil
}

// Login verifies credentials and issues a new session.
func (s *Service) Login(ctx context.Context, email, password string) (*storage.Session, error) {
	logger := contextutil.LoggerFromContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !CheckPassword(user.PasswordHash, password) {
		logger.WarnContext(ctx, "login rejected", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "user logged in", "user_id", user.ID)
	return session, nil
}

// Logout revokes a session. Revoking an unknown token is not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.DeleteByToken(ctx, token)
}

// ResolveToken resolves a bearer token to a user id.
// Returns ErrUnauthenticated for unknown or expired tokens.
func (s *Service) ResolveToken(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrUnauthenticated
	}

	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrUnauthenticated
		}
		return "", fmt.Errorf("failed to look up session: %w", err)
	}

	if time.Now().After(session.ExpiresAt) {
		// Expired sessions are removed eagerly so that the table does not
		// accumulate dead tokens.
		_ = s.sessions.DeleteByToken(ctx, token)
		return "", ErrUnauthenticated
	}

	return session.UserID, nil
}

func (s *Service) createSession(ctx context.Context, userID string) (*storage.Session, error) {
	now := time.Now()
	session := &storage.Session{
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.sessions.Insert(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}
