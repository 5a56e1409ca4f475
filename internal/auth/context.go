package auth

import (
	"context"
	"errors"
)

// ErrUnauthenticated is returned when no caller identity can be resolved.
var ErrUnauthenticated = errors.New("not authenticated")

type contextKey string

const callerKey contextKey = "caller_id"

// WithCaller returns a context carrying the authenticated user's id.
// The HTTP auth middleware is the only writer; store operations only read.
func WithCaller(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, callerKey, userID)
}

// CallerID resolves the authenticated caller from the context.
// Every store operation calls this first and fails closed with
// ErrUnauthenticated when no identity is present.
func CallerID(ctx context.Context) (string, error) {
	if v := ctx.Value(callerKey); v != nil {
		if id, ok := v.(string); ok && id != "" {
			return id, nil
		}
	}
	return "", ErrUnauthenticated
}
