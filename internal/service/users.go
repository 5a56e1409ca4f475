package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"notedeck/internal/auth"
	"notedeck/internal/storage"
)

// UserDetails is the read-only projection of the authenticated identity
// exposed to callers. It never carries the password hash.
type UserDetails struct {
	ID        string
	Email     string
	Name      string
	AvatarURL string
	CreatedAt time.Time
}

// UserService exposes the caller's own identity record.
type UserService struct {
	users storage.UserStore
}

// NewUserService creates a new UserService.
func NewUserService(users storage.UserStore) *UserService {
	return &UserService{users: users}
}

// GetUserDetails returns the caller's user record.
func (s *UserService) GetUserDetails(ctx context.Context) (*UserDetails, error) {
	userID, err := auth.CallerID(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	return &UserDetails{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		AvatarURL: user.AvatarURL,
		CreatedAt: user.CreatedAt,
	}, nil
}
