package auth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"notedeck/internal/auth"
	"notedeck/internal/storage"
)

func init() {
	// Set default logger to discard output for cleaner test output
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestService(t *testing.T, ttl time.Duration) (*auth.Service, *storage.SessionRepo) {
	t.Helper()

	db, err := storage.New(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	if err := storage.Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	sessions := storage.NewSessionRepo(db)
	return auth.NewService(storage.NewUserRepo(db), sessions, ttl), sessions
}

func TestService_Register(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)
	ctx := context.Background()

	user, session, err := svc.Register(ctx, "Ada@Example.com", "Ada", "strong-password")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.Email != "ada@example.com" {
		t.Errorf("Register() email = %q, want lowercased", user.Email)
	}
	if user.PasswordHash == "strong-password" {
		t.Error("Register() stored the plaintext password")
	}
	if session.Token == "" || session.UserID != user.ID {
		t.Errorf("Register() session = %+v", session)
	}
}

func TestService_Register_Validation(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)
	ctx := context.Background()

	tests := []struct {
		name      string
		email     string
		userName  string
		password  string
		wantField string
	}{
		{"invalid email", "not-an-email", "Ada", "strong-password", "email"},
		{"empty name", "ada@example.com", "  ", "strong-password", "name"},
		{"short password", "ada@example.com", "Ada", "short", "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Register(ctx, tt.email, tt.userName, tt.password)
			var verr *auth.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Register() error = %v, want ValidationError", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("ValidationError.Field = %q, want %q", verr.Field, tt.wantField)
			}
		})
	}
}

func TestService_Register_EmailTaken(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "taken@example.com", "First", "strong-password"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	_, _, err := svc.Register(ctx, "taken@example.com", "Second", "strong-password")
	if !errors.Is(err, auth.ErrEmailTaken) {
		t.Errorf("Register() error = %v, want ErrEmailTaken", err)
	}
}

func TestService_Login(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)
	ctx := context.Background()

	user, _, err := svc.Register(ctx, "login@example.com", "Ada", "strong-password")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	session, err := svc.Login(ctx, "login@example.com", "strong-password")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if session.UserID != user.ID {
		t.Errorf("Login() UserID = %q, want %q", session.UserID, user.ID)
	}

	// Wrong password and unknown email fail the same way.
	if _, err := svc.Login(ctx, "login@example.com", "wrong-password"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Errorf("Login() wrong password error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "strong-password"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Errorf("Login() unknown email error = %v, want ErrInvalidCredentials", err)
	}
}

func TestService_ResolveToken(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)
	ctx := context.Background()

	user, session, err := svc.Register(ctx, "resolve@example.com", "Ada", "strong-password")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	userID, err := svc.ResolveToken(ctx, session.Token)
	if err != nil {
		t.Fatalf("ResolveToken() error = %v", err)
	}
	if userID != user.ID {
		t.Errorf("ResolveToken() = %q, want %q", userID, user.ID)
	}

	if _, err := svc.ResolveToken(ctx, ""); !errors.Is(err, auth.ErrUnauthenticated) {
		t.Errorf("ResolveToken(empty) error = %v, want ErrUnauthenticated", err)
	}
	if _, err := svc.ResolveToken(ctx, "unknown-token"); !errors.Is(err, auth.ErrUnauthenticated) {
		t.Errorf("ResolveToken(unknown) error = %v, want ErrUnauthenticated", err)
	}
}

func TestService_ResolveToken_Expired(t *testing.T) {
	svc, sessions := newTestService(t, time.Millisecond)
	ctx := context.Background()

	_, session, err := svc.Register(ctx, "expired@example.com", "Ada", "strong-password")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	time.Sleep(5 * time.Millisecond)

	if _, err := svc.ResolveToken(ctx, session.Token); !errors.Is(err, auth.ErrUnauthenticated) {
		t.Fatalf("ResolveToken() expired error = %v, want ErrUnauthenticated", err)
	}

	// The expired session is removed eagerly.
	if _, err := sessions.GetByToken(ctx, session.Token); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expired session still stored, error = %v", err)
	}
}

func TestService_Logout(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)
	ctx := context.Background()

	_, session, err := svc.Register(ctx, "logout@example.com", "Ada", "strong-password")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if err := svc.Logout(ctx, session.Token); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, err := svc.ResolveToken(ctx, session.Token); !errors.Is(err, auth.ErrUnauthenticated) {
		t.Errorf("ResolveToken() after logout error = %v, want ErrUnauthenticated", err)
	}

	// Revoking an unknown token is not an error.
	if err := svc.Logout(ctx, "unknown-token"); err != nil {
		t.Errorf("Logout(unknown) error = %v", err)
	}
}
