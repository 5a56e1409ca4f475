package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"notedeck/internal/storage"
)

func TestPreviewHandler_RendersQuicknote(t *testing.T) {
	env := newTestEnv(t)
	userID, _ := env.registerUser(t, "ada@example.com")
	noteHandler := NewNoteHandler(env.notes)
	handler := NewPreviewHandler(env.notes)

	note := createNote(t, noteHandler, userID, CreateNoteRequest{
		Title:    "Checklist",
		Content:  storage.Content{Text: "# Today\n\n- [ ] water plants\n- [x] write **tests**"},
		NoteType: "quicknote",
	})

	req := callerRequest(httptest.NewRequest(http.MethodGet, "/api/notes/"+note.ID+"/preview", nil), userID)
	req = withURLParam(req, "noteID", note.ID)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("preview status = %d, want %d, body %s", w.Code, http.StatusOK, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}

	got := w.Body.String()
	for _, want := range []string{"<title>Checklist</title>", "Today</h1>", "<strong>tests</strong>", `type="checkbox"`} {
		if !strings.Contains(got, want) {
			t.Errorf("preview body missing %q", want)
		}
	}
}

func TestPreviewHandler_RejectsRichnote(t *testing.T) {
	env := newTestEnv(t)
	userID, _ := env.registerUser(t, "ada@example.com")
	noteHandler := NewNoteHandler(env.notes)
	handler := NewPreviewHandler(env.notes)

	note := createNote(t, noteHandler, userID, CreateNoteRequest{
		Title:    "Doc",
		Content:  storage.Content{Doc: json.RawMessage(`{"type":"doc"}`)},
		NoteType: "richnote",
	})

	req := callerRequest(httptest.NewRequest(http.MethodGet, "/api/notes/"+note.ID+"/preview", nil), userID)
	req = withURLParam(req, "noteID", note.ID)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("preview status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestPreviewHandler_Errors(t *testing.T) {
	env := newTestEnv(t)
	userID, _ := env.registerUser(t, "ada@example.com")
	otherID, _ := env.registerUser(t, "bob@example.com")
	noteHandler := NewNoteHandler(env.notes)
	handler := NewPreviewHandler(env.notes)

	note := createNote(t, noteHandler, userID, CreateNoteRequest{
		Title:    "Mine",
		Content:  storage.Content{Text: "hello"},
		NoteType: "quicknote",
	})

	tests := []struct {
		name       string
		caller     string
		noteID     string
		wantStatus int
	}{
		{name: "unknown note", caller: userID, noteID: "no-such-note", wantStatus: http.StatusNotFound},
		{name: "foreign caller", caller: otherID, noteID: note.ID, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := callerRequest(httptest.NewRequest(http.MethodGet, "/api/notes/"+tt.noteID+"/preview", nil), tt.caller)
			req = withURLParam(req, "noteID", tt.noteID)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("preview status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}
