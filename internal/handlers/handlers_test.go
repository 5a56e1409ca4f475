package handlers

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"notedeck/internal/auth"
	"notedeck/internal/service"
	"notedeck/internal/storage"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

const testSessionTTL = 24 * time.Hour

// testEnv wires handlers over a real sqlite database.
type testEnv struct {
	db      *sql.DB
	auth    *auth.Service
	users   *service.UserService
	folders *service.FolderService
	notes   *service.NoteService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := storage.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := storage.Migrate(db); err != nil {
		t.Fatalf("storage.Migrate() error = %v", err)
	}

	userRepo := storage.NewUserRepo(db)
	sessionRepo := storage.NewSessionRepo(db)
	folderRepo := storage.NewFolderRepo(db)
	noteRepo := storage.NewNoteRepo(db)

	return &testEnv{
		db:      db,
		auth:    auth.NewService(userRepo, sessionRepo, testSessionTTL),
		users:   service.NewUserService(userRepo),
		folders: service.NewFolderService(folderRepo, noteRepo),
		notes:   service.NewNoteService(noteRepo, folderRepo, nil),
	}
}

// registerUser creates a user and returns their ID and a live bearer token.
func (e *testEnv) registerUser(t *testing.T, email string) (string, string) {
	t.Helper()

	user, session, err := e.auth.Register(context.Background(), email, "Test User", "password123")
	if err != nil {
		t.Fatalf("Register(%q) error = %v", email, err)
	}
	return user.ID, session.Token
}

// callerRequest attaches the authenticated caller to the request context,
// the way the auth middleware does.
func callerRequest(r *http.Request, userID string) *http.Request {
	return r.WithContext(auth.WithCaller(r.Context(), userID))
}

// withURLParam attaches a chi route parameter to the request context.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
