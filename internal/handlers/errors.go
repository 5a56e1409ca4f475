package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"notedeck/internal/auth"
	"notedeck/internal/contextutil"
	"notedeck/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, ErrorResponse{Error: message})
}

// handleServiceError maps service and auth errors to HTTP status codes.
func handleServiceError(w http.ResponseWriter, ctx context.Context, err error, defaultMsg string) {
	logger := contextutil.LoggerFromContext(ctx)

	var svcValidation *service.ValidationError
	var authValidation *auth.ValidationError

	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, auth.ErrEmailTaken):
		writeError(w, http.StatusConflict, "Email already registered")
	case errors.As(err, &svcValidation):
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Validation error: %s", svcValidation.Error()))
	case errors.As(err, &authValidation):
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Validation error: %s", authValidation.Error()))
	case errors.Is(err, service.ErrSelfParent):
		writeError(w, http.StatusBadRequest, "Folder cannot be its own parent")
	case errors.Is(err, service.ErrCircularReference):
		writeError(w, http.StatusBadRequest, "Cannot move folder into its own descendant")
	case errors.Is(err, service.ErrNotEmpty):
		writeError(w, http.StatusConflict, "Folder is not empty")
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "Not authorized")
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "Resource not found")
	case errors.Is(err, service.ErrExternalService):
		writeError(w, http.StatusBadGateway, "External service error")
	default:
		logger.ErrorContext(ctx, "unhandled service error", "error", err)
		writeError(w, http.StatusInternalServerError, defaultMsg)
	}
}
