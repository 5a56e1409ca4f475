package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"notedeck/internal/contextutil"
	"notedeck/internal/service"
	"notedeck/internal/storage"
)

// NoteHandler handles HTTP requests for notes.
type NoteHandler struct {
	notes *service.NoteService
}

// NewNoteHandler creates a new NoteHandler.
func NewNoteHandler(notes *service.NoteService) *NoteHandler {
	return &NoteHandler{notes: notes}
}

// NoteResponse is the JSON shape of a note. Content is a JSON string for
// quicknotes and an opaque document for richnotes. NoteType is always
// resolved: legacy untyped notes read back as richnote.
type NoteResponse struct {
	ID         string          `json:"id"`
	UserID     string          `json:"userId"`
	Title      string          `json:"title"`
	Content    storage.Content `json:"content"`
	NoteType   string          `json:"noteType"`
	FolderID   *string         `json:"folderId"`
	Tags       []string        `json:"tags"`
	IsArchived bool            `json:"isArchived"`
	IsDeleted  bool            `json:"isDeleted"`
	CreatedAt  int64           `json:"createdAt"`
	UpdatedAt  int64           `json:"updatedAt"`
}

func toNoteResponse(n *storage.Note) NoteResponse {
	resp := NoteResponse{
		ID:         n.ID,
		UserID:     n.UserID,
		Title:      n.Title,
		Content:    n.Content,
		NoteType:   string(n.EffectiveType()),
		Tags:       n.Tags,
		IsArchived: n.IsArchived,
		IsDeleted:  n.IsDeleted,
		CreatedAt:  unixMilli(n.CreatedAt),
		UpdatedAt:  unixMilli(n.UpdatedAt),
	}
	if n.Tags == nil {
		resp.Tags = []string{}
	}
	if n.FolderID != "" {
		folderID := n.FolderID
		resp.FolderID = &folderID
	}
	return resp
}

// CreateNoteRequest is the payload for POST /api/notes.
type CreateNoteRequest struct {
	Title    string          `json:"title"`
	Content  storage.Content `json:"content"`
	NoteType string          `json:"noteType"`
	FolderID string          `json:"folderId"`
	Tags     []string        `json:"tags"`
}

// UpdateNoteRequest is the payload for PATCH /api/notes/{noteID}.
// Absent fields are left unchanged; an empty folderId unfiles the note.
type UpdateNoteRequest struct {
	Title    *string          `json:"title"`
	Content  *storage.Content `json:"content"`
	NoteType *string          `json:"noteType"`
	FolderID *string          `json:"folderId"`
	Tags     *[]string        `json:"tags"`
}

// MoveNoteRequest is the payload for POST /api/notes/{noteID}/move.
type MoveNoteRequest struct {
	FolderID string `json:"folderId"`
}

// Create handles POST /api/notes.
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid create note request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	note, err := h.notes.Create(ctx, req.Title, req.Content, storage.NoteType(req.NoteType), req.FolderID, req.Tags)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to create note")
		return
	}

	writeJSON(w, http.StatusCreated, toNoteResponse(note))
}

// List handles GET /api/notes. Without a type query parameter it returns
// the 10 most recently updated active notes; with type=quicknote or
// type=richnote it returns the typed listing (uncapped, legacy notes
// folded into the richnote view).
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var notes []storage.Note
	var err error

	if noteType := r.URL.Query().Get("type"); noteType != "" {
		notes, err = h.notes.ListByType(ctx, storage.NoteType(noteType))
	} else {
		notes, err = h.notes.ListRecent(ctx)
	}
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to list notes")
		return
	}

	resp := make([]NoteResponse, 0, len(notes))
	for i := range notes {
		resp = append(resp, toNoteResponse(&notes[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /api/notes/{noteID}.
func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	note, err := h.notes.GetByID(ctx, chi.URLParam(r, "noteID"))
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to get note")
		return
	}

	writeJSON(w, http.StatusOK, toNoteResponse(note))
}

// Update handles PATCH /api/notes/{noteID}.
func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	noteID := chi.URLParam(r, "noteID")

	var req UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid update note request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	update := service.NoteUpdate{
		Title:    req.Title,
		Content:  req.Content,
		FolderID: req.FolderID,
		Tags:     req.Tags,
	}
	if req.NoteType != nil {
		noteType := storage.NoteType(*req.NoteType)
		update.NoteType = &noteType
	}

	note, err := h.notes.Update(ctx, noteID, update)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to update note")
		return
	}

	writeJSON(w, http.StatusOK, toNoteResponse(note))
}

// SoftDelete handles DELETE /api/notes/{noteID}.
func (h *NoteHandler) SoftDelete(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, h.notes.SoftDelete, "Failed to delete note")
}

// DeletePermanently handles DELETE /api/notes/{noteID}/permanent.
func (h *NoteHandler) DeletePermanently(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, h.notes.DeletePermanently, "Failed to delete note")
}

// Restore handles POST /api/notes/{noteID}/restore.
func (h *NoteHandler) Restore(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, h.notes.Restore, "Failed to restore note")
}

// Archive handles POST /api/notes/{noteID}/archive.
func (h *NoteHandler) Archive(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, h.notes.Archive, "Failed to archive note")
}

// Unarchive handles POST /api/notes/{noteID}/unarchive.
func (h *NoteHandler) Unarchive(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, h.notes.Unarchive, "Failed to unarchive note")
}

// Move handles POST /api/notes/{noteID}/move.
func (h *NoteHandler) Move(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	noteID := chi.URLParam(r, "noteID")

	var req MoveNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid move note request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.notes.MoveToFolder(ctx, noteID, req.FolderID); err != nil {
		handleServiceError(w, ctx, err, "Failed to move note")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// action runs a single-note operation identified by the noteID URL param.
func (h *NoteHandler) action(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, noteID string) error, failMsg string) {
	ctx := r.Context()

	if err := op(ctx, chi.URLParam(r, "noteID")); err != nil {
		handleServiceError(w, ctx, err, failMsg)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
