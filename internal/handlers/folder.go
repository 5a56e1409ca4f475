package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"notedeck/internal/contextutil"
	"notedeck/internal/service"
	"notedeck/internal/storage"
)

// FolderHandler handles HTTP requests for folders.
type FolderHandler struct {
	folders *service.FolderService
}

// NewFolderHandler creates a new FolderHandler.
func NewFolderHandler(folders *service.FolderService) *FolderHandler {
	return &FolderHandler{folders: folders}
}

// FolderResponse is the JSON shape of a folder.
type FolderResponse struct {
	ID        string  `json:"id"`
	UserID    string  `json:"userId"`
	Name      string  `json:"name"`
	ParentID  *string `json:"parentId"`
	Color     string  `json:"color,omitempty"`
	Icon      string  `json:"icon,omitempty"`
	CreatedAt int64   `json:"createdAt"`
	UpdatedAt int64   `json:"updatedAt"`
}

func toFolderResponse(f *storage.Folder) FolderResponse {
	resp := FolderResponse{
		ID:        f.ID,
		UserID:    f.UserID,
		Name:      f.Name,
		Color:     f.Color,
		Icon:      f.Icon,
		CreatedAt: unixMilli(f.CreatedAt),
		UpdatedAt: unixMilli(f.UpdatedAt),
	}
	if f.ParentID != "" {
		parentID := f.ParentID
		resp.ParentID = &parentID
	}
	return resp
}

// CreateFolderRequest is the payload for POST /api/folders.
type CreateFolderRequest struct {
	Name     string `json:"name"`
	ParentID string `json:"parentId"`
	Color    string `json:"color"`
	Icon     string `json:"icon"`
}

// UpdateFolderRequest is the payload for PATCH /api/folders/{folderID}.
// Absent fields are left unchanged; an empty parentId moves the folder to
// root.
type UpdateFolderRequest struct {
	Name     *string `json:"name"`
	ParentID *string `json:"parentId"`
	Color    *string `json:"color"`
	Icon     *string `json:"icon"`
}

// MoveFolderRequest is the payload for POST /api/folders/{folderID}/move.
type MoveFolderRequest struct {
	ParentID string `json:"parentId"`
}

// Create handles POST /api/folders.
func (h *FolderHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req CreateFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid create folder request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	folder, err := h.folders.Create(ctx, req.Name, req.ParentID, req.Color, req.Icon)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to create folder")
		return
	}

	writeJSON(w, http.StatusCreated, toFolderResponse(folder))
}

// List handles GET /api/folders.
func (h *FolderHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	folders, err := h.folders.ListForUser(ctx)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to list folders")
		return
	}

	resp := make([]FolderResponse, 0, len(folders))
	for i := range folders {
		resp = append(resp, toFolderResponse(&folders[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Update handles PATCH /api/folders/{folderID}.
func (h *FolderHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	folderID := chi.URLParam(r, "folderID")

	var req UpdateFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid update folder request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	folder, err := h.folders.Update(ctx, folderID, service.FolderUpdate{
		Name:     req.Name,
		ParentID: req.ParentID,
		Color:    req.Color,
		Icon:     req.Icon,
	})
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to update folder")
		return
	}

	writeJSON(w, http.StatusOK, toFolderResponse(folder))
}

// Delete handles DELETE /api/folders/{folderID}.
func (h *FolderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	folderID := chi.URLParam(r, "folderID")
	if err := h.folders.Delete(ctx, folderID); err != nil {
		handleServiceError(w, ctx, err, "Failed to delete folder")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Move handles POST /api/folders/{folderID}/move.
func (h *FolderHandler) Move(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	folderID := chi.URLParam(r, "folderID")

	var req MoveFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid move folder request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.folders.MoveToParent(ctx, folderID, req.ParentID); err != nil {
		handleServiceError(w, ctx, err, "Failed to move folder")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
