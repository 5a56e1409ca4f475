package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"notedeck/internal/auth"
	"notedeck/internal/contextutil"
)

// AuthHandler handles registration, login, and logout.
type AuthHandler struct {
	authService *auth.Service
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest is the payload for POST /api/auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginRequest is the payload for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse carries a bearer token and its expiry.
type SessionResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

// RegisterResponse is the payload returned after registration.
type RegisterResponse struct {
	ID      string          `json:"id"`
	Email   string          `json:"email"`
	Name    string          `json:"name"`
	Session SessionResponse `json:"session"`
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid register request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, session, err := h.authService.Register(ctx, req.Email, req.Name, req.Password)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to register")
		return
	}

	writeJSON(w, http.StatusCreated, RegisterResponse{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Session: SessionResponse{
			Token:     session.Token,
			ExpiresAt: session.ExpiresAt.UnixMilli(),
		},
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid login request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to log in")
		return
	}

	writeJSON(w, http.StatusOK, SessionResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.UnixMilli(),
	})
}

// Logout handles POST /api/auth/logout. It revokes the bearer token from
// the Authorization header; revoking an unknown token still returns 204.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := BearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.authService.Logout(ctx, token); err != nil {
		handleServiceError(w, ctx, err, "Failed to log out")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// BearerToken extracts the bearer credential from the Authorization header.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// unixMilli is a small helper for timestamp serialization.
func unixMilli(t time.Time) int64 {
	return t.UnixMilli()
}
