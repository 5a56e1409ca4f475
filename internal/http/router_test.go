package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"notedeck/internal/auth"
	"notedeck/internal/service"
	"notedeck/internal/service/mocks"
	"notedeck/internal/storage"
)

// newTestServer stands up the full router over a real sqlite database.
func newTestServer(t *testing.T, chatService service.ChatService) *httptest.Server {
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

	router := NewRouter(&Deps{
		DB:            db,
		AuthService:   auth.NewService(userRepo, sessionRepo, 24*time.Hour),
		UserService:   service.NewUserService(userRepo),
		FolderService: service.NewFolderService(folderRepo, noteRepo),
		NoteService:   service.NewNoteService(noteRepo, folderRepo, nil),
		ChatService:   chatService,
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

// do issues a JSON request against the test server.
func do(t *testing.T, method, url, token string, payload any) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to encode payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s error = %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return v
}

func TestRouter_AuthFlow(t *testing.T) {
	server := newTestServer(t, nil)

	resp := do(t, http.MethodPost, server.URL+"/api/auth/register", "", map[string]string{
		"email":    "ada@example.com",
		"name":     "Ada",
		"password": "password123",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	registered := decode[struct {
		ID      string `json:"id"`
		Session struct {
			Token string `json:"token"`
		} `json:"session"`
	}](t, resp)

	resp = do(t, http.MethodGet, server.URL+"/api/me", registered.Session.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	me := decode[struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}](t, resp)
	if me.ID != registered.ID {
		t.Errorf("me id = %q, want %q", me.ID, registered.ID)
	}

	resp = do(t, http.MethodPost, server.URL+"/api/auth/logout", registered.Session.Token, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("logout status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}

	resp = do(t, http.MethodGet, server.URL+"/api/me", registered.Session.Token, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("me after logout status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}

func TestRouter_RequiresAuth(t *testing.T) {
	server := newTestServer(t, nil)

	protected := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/me"},
		{http.MethodGet, "/api/folders/"},
		{http.MethodPost, "/api/notes/"},
		{http.MethodPost, "/api/chat"},
	}

	for _, route := range protected {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			resp := do(t, route.method, server.URL+route.path, "", nil)
			if resp.StatusCode != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
			}
		})
	}
}

func TestRouter_Health(t *testing.T) {
	server := newTestServer(t, nil)

	resp := do(t, http.MethodGet, server.URL+"/api/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	health := decode[struct {
		Status string `json:"status"`
	}](t, resp)
	if health.Status != "healthy" {
		t.Errorf("health status = %q, want %q", health.Status, "healthy")
	}
}

func TestRouter_WorkspaceFlow(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockChatService := mocks.NewMockChatService(ctrl)
	mockChatService.EXPECT().
		ProcessChat(gomock.Any(), gomock.Any()).
		Return(service.ChatResponse{Reply: "You noted milk and eggs."}, nil)

	server := newTestServer(t, mockChatService)

	resp := do(t, http.MethodPost, server.URL+"/api/auth/register", "", map[string]string{
		"email":    "ada@example.com",
		"name":     "Ada",
		"password": "password123",
	})
	registered := decode[struct {
		Session struct {
			Token string `json:"token"`
		} `json:"session"`
	}](t, resp)
	token := registered.Session.Token

	resp = do(t, http.MethodPost, server.URL+"/api/folders/", token, map[string]string{"name": "Groceries"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create folder status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	folder := decode[struct {
		ID string `json:"id"`
	}](t, resp)

	resp = do(t, http.MethodPost, server.URL+"/api/notes/", token, map[string]any{
		"title":    "Shopping",
		"content":  "milk\neggs",
		"noteType": "quicknote",
		"folderId": folder.ID,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create note status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	note := decode[struct {
		ID       string  `json:"id"`
		FolderID *string `json:"folderId"`
	}](t, resp)
	if note.FolderID == nil || *note.FolderID != folder.ID {
		t.Errorf("note folderId = %v, want %q", note.FolderID, folder.ID)
	}

	resp = do(t, http.MethodGet, server.URL+"/api/notes/", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list notes status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	notes := decode[[]struct {
		ID string `json:"id"`
	}](t, resp)
	if len(notes) != 1 || notes[0].ID != note.ID {
		t.Errorf("list notes = %v, want the created note", notes)
	}

	resp = do(t, http.MethodGet, fmt.Sprintf("%s/api/notes/%s/preview", server.URL, note.ID), token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("preview status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	page, _ := io.ReadAll(resp.Body)
	if !bytes.Contains(page, []byte("Shopping")) {
		t.Error("preview page missing note title")
	}

	resp = do(t, http.MethodPost, server.URL+"/api/chat?stream=false", token, map[string]any{
		"messages": []map[string]string{{"role": "user", "content": "What should I buy?"}},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("chat status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	chat := decode[struct {
		Reply string `json:"reply"`
	}](t, resp)
	if chat.Reply != "You noted milk and eggs." {
		t.Errorf("chat reply = %q, want mock reply", chat.Reply)
	}

	resp = do(t, http.MethodDelete, fmt.Sprintf("%s/api/notes/%s", server.URL, note.ID), token, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("soft delete status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}

	resp = do(t, http.MethodGet, server.URL+"/api/notes/", token, nil)
	remaining := decode[[]struct {
		ID string `json:"id"`
	}](t, resp)
	if len(remaining) != 0 {
		t.Errorf("list notes after delete = %v, want empty", remaining)
	}
}
