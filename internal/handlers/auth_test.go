package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAuthHandler_Register(t *testing.T) {
	env := newTestEnv(t)
	handler := NewAuthHandler(env.auth)

	body, _ := json.Marshal(RegisterRequest{
		Email:    "Ada@Example.com",
		Name:     "Ada",
		Password: "password123",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.Register(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Register status = %d, want %d, body %s", w.Code, http.StatusCreated, w.Body.String())
	}

	var resp RegisterResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ID == "" {
		t.Error("Register response missing user ID")
	}
	if resp.Email != "ada@example.com" {
		t.Errorf("Register email = %q, want lowercased %q", resp.Email, "ada@example.com")
	}
	if resp.Session.Token == "" {
		t.Error("Register response missing session token")
	}
	if resp.Session.ExpiresAt == 0 {
		t.Error("Register response missing session expiry")
	}

	userID, err := env.auth.ResolveToken(context.Background(), resp.Session.Token)
	if err != nil {
		t.Fatalf("ResolveToken() error = %v", err)
	}
	if userID != resp.ID {
		t.Errorf("ResolveToken() = %q, want %q", userID, resp.ID)
	}
}

func TestAuthHandler_Register_Errors(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "taken@example.com")
	handler := NewAuthHandler(env.auth)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			name:       "invalid JSON",
			body:       "{not json",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing email",
			body:       `{"email":"","name":"Ada","password":"password123"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "short password",
			body:       `{"email":"new@example.com","name":"Ada","password":"short"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "duplicate email",
			body:       `{"email":"taken@example.com","name":"Ada","password":"password123"}`,
			wantStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewReader([]byte(tt.body)))
			w := httptest.NewRecorder()

			handler.Register(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Register status = %d, want %d, body %s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	env := newTestEnv(t)
	userID, _ := env.registerUser(t, "ada@example.com")
	handler := NewAuthHandler(env.auth)

	body, _ := json.Marshal(LoginRequest{Email: "ada@example.com", Password: "password123"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.Login(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Login status = %d, want %d, body %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp SessionResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("Login response missing token")
	}

	resolved, err := env.auth.ResolveToken(context.Background(), resp.Token)
	if err != nil {
		t.Fatalf("ResolveToken() error = %v", err)
	}
	if resolved != userID {
		t.Errorf("ResolveToken() = %q, want %q", resolved, userID)
	}
}

func TestAuthHandler_Login_Errors(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "ada@example.com")
	handler := NewAuthHandler(env.auth)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			name:       "invalid JSON",
			body:       "{not json",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "wrong password",
			body:       `{"email":"ada@example.com","password":"wrongpassword"}`,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "unknown email",
			body:       `{"email":"nobody@example.com","password":"password123"}`,
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader([]byte(tt.body)))
			w := httptest.NewRecorder()

			handler.Login(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Login status = %d, want %d, body %s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.registerUser(t, "ada@example.com")
	handler := NewAuthHandler(env.auth)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler.Logout(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("Logout status = %d, want %d", w.Code, http.StatusNoContent)
	}

	if _, err := env.auth.ResolveToken(context.Background(), token); err == nil {
		t.Error("token still resolves after logout")
	}
}

func TestAuthHandler_Logout_MissingToken(t *testing.T) {
	env := newTestEnv(t)
	handler := NewAuthHandler(env.auth)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	w := httptest.NewRecorder()

	handler.Logout(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Logout status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestAuthHandler_Logout_UnknownToken(t *testing.T) {
	env := newTestEnv(t)
	handler := NewAuthHandler(env.auth)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer does-not-exist")
	w := httptest.NewRecorder()

	handler.Logout(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("Logout status = %d, want %d", w.Code, http.StatusNoContent)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "bearer token", header: "Bearer abc123", want: "abc123"},
		{name: "case insensitive scheme", header: "bearer abc123", want: "abc123"},
		{name: "missing header", header: "", want: ""},
		{name: "wrong scheme", header: "Basic abc123", want: ""},
		{name: "scheme only", header: "Bearer", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if got := BearerToken(req); got != tt.want {
				t.Errorf("BearerToken() = %q, want %q", got, tt.want)
			}
		})
	}
}
