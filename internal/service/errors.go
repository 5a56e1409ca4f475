package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced record is absent.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when a record exists but the caller does not own it.
	ErrForbidden = errors.New("not authorized")
	// ErrSelfParent is returned when a folder would become its own parent.
	ErrSelfParent = errors.New("folder cannot be its own parent")
	// ErrCircularReference is returned when a move would place a folder
	// inside its own descendant.
	ErrCircularReference = errors.New("cannot move folder into its own descendant")
	// ErrNotEmpty is returned when deleting a folder that still has
	// subfolders or non-deleted notes.
	ErrNotEmpty = errors.New("folder is not empty")
	// ErrExternalService is returned when an external service call fails.
	ErrExternalService = errors.New("external service error")
)

// ValidationError represents a validation error with a field name.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// WrapExternal marks an upstream failure as ErrExternalService so the
// transport layer can map it to a gateway error.
func WrapExternal(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", msg, ErrExternalService, err)
}
