package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"notedeck/internal/auth"
	"notedeck/internal/contextutil"
	"notedeck/internal/storage"
)

// recentNotesLimit bounds the default listing to the most recently
// updated notes.
const recentNotesLimit = 10

// NoteIndexer keeps the vector index in sync with note mutations.
// This interface is defined from the service layer's perspective
// (consumer-first); the retrieval package implements it.
type NoteIndexer interface {
	// IndexNote embeds a note and upserts its point into the vector index.
	IndexNote(ctx context.Context, note *storage.Note) error
	// RemoveNote deletes a note's point from the vector index.
	RemoveNote(ctx context.Context, noteID string) error
}

// NoteUpdate describes a partial note update. Nil fields are left
// unchanged. For FolderID the empty string means "unfiled".
type NoteUpdate struct {
	Title    *string
	Content  *storage.Content
	NoteType *storage.NoteType
	FolderID *string
	Tags     *[]string
}

// NoteService enforces ownership and lifecycle rules over notes.
type NoteService struct {
	notes   storage.NoteStore
	folders storage.FolderStore
	indexer NoteIndexer // optional
	logger  *slog.Logger
}

// NewNoteService creates a new NoteService. indexer may be nil, in which
// case notes are not mirrored into the vector index.
func NewNoteService(notes storage.NoteStore, folders storage.FolderStore, indexer NoteIndexer) *NoteService {
	return &NoteService{
		notes:   notes,
		folders: folders,
		indexer: indexer,
		logger:  slog.Default(),
	}
}

// Create inserts a new note for the caller. noteType defaults to richnote
// when empty. A non-empty folderID must reference a folder owned by the
// caller.
func (s *NoteService) Create(ctx context.Context, title string, content storage.Content, noteType storage.NoteType, folderID string, tags []string) (*storage.Note, error) {
	logger := contextutil.LoggerFromContext(ctx)

	userID, err := auth.CallerID(ctx)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(title) == "" {
		return nil, &ValidationError{Field: "title", Message: "cannot be empty"}
	}
	if noteType == "" {
		// Backward-compatibility default.
		noteType = storage.NoteTypeRich
	}
	if !noteType.Valid() {
		return nil, &ValidationError{Field: "noteType", Message: "must be quicknote or richnote"}
	}

	if folderID != "" {
		if err := s.checkFolderOwnership(ctx, userID, folderID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	note := &storage.Note{
		UserID:     userID,
		Title:      title,
		Content:    content,
		NoteType:   noteType,
		FolderID:   folderID,
		Tags:       tags,
		IsArchived: false,
		IsDeleted:  false,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.notes.Insert(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}

	s.reindex(ctx, note)
	logger.InfoContext(ctx, "note created", "note_id", note.ID, "note_type", string(noteType))
	return note, nil
}

// Update applies a partial update to a note owned by the caller. Only
// provided fields change; UpdatedAt always refreshes.
func (s *NoteService) Update(ctx context.Context, noteID string, update NoteUpdate) (*storage.Note, error) {
	logger := contextutil.LoggerFromContext(ctx)

	userID, err := auth.CallerID(ctx)
	if err != nil {
		return nil, err
	}

	note, err := s.ownedNote(ctx, userID, noteID)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		note.Title = *update.Title
	}
	if update.Content != nil {
		note.Content = *update.Content
	}
	if update.NoteType != nil {
		if !update.NoteType.Valid() {
			return nil, &ValidationError{Field: "noteType", Message: "must be quicknote or richnote"}
		}
		note.NoteType = *update.NoteType
	}
	if update.FolderID != nil {
		if *update.FolderID != "" {
			if err := s.checkFolderOwnership(ctx, userID, *update.FolderID); err != nil {
				return nil, err
			}
		}
		note.FolderID = *update.FolderID
	}
	if update.Tags != nil {
		note.Tags = *update.Tags
	}
	note.UpdatedAt = time.Now()

	if err := s.notes.Update(ctx, note); err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}

	s.reindex(ctx, note)
	logger.InfoContext(ctx, "note updated", "note_id", noteID)
	return note, nil
}

// SoftDelete marks a note deleted. Recoverable via Restore.
func (s *NoteService) SoftDelete(ctx context.Context, noteID string) error {
	return s.setFlag(ctx, noteID, "note soft-deleted", func(n *storage.Note) { n.IsDeleted = true })
}

// Restore clears a note's deleted flag.
func (s *NoteService) Restore(ctx context.Context, noteID string) error {
	return s.setFlag(ctx, noteID, "note restored", func(n *storage.Note) { n.IsDeleted = false })
}

// Archive marks a note archived. Orthogonal to deletion.
func (s *NoteService) Archive(ctx context.Context, noteID string) error {
	return s.setFlag(ctx, noteID, "note archived", func(n *storage.Note) { n.IsArchived = true })
}

// Unarchive clears a note's archived flag.
func (s *NoteService) Unarchive(ctx context.Context, noteID string) error {
	return s.setFlag(ctx, noteID, "note unarchived", func(n *storage.Note) { n.IsArchived = false })
}

// DeletePermanently hard-deletes a note. Irreversible.
func (s *NoteService) DeletePermanently(ctx context.Context, noteID string) error {
	logger := contextutil.LoggerFromContext(ctx)

	userID, err := auth.CallerID(ctx)
	if err != nil {
		return err
	}

	if _, err := s.ownedNote(ctx, userID, noteID); err != nil {
		return err
	}

	if err := s.notes.Delete(ctx, noteID); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}

	if s.indexer != nil {
		if err := s.indexer.RemoveNote(ctx, noteID); err != nil {
			logger.WarnContext(ctx, "failed to remove note from vector index", "note_id", noteID, "error", err)
		}
	}

	logger.InfoContext(ctx, "note permanently deleted", "note_id", noteID)
	return nil
}

// MoveToFolder reassigns a note's folder. An empty folderID unfiles it.
func (s *NoteService) MoveToFolder(ctx context.Context, noteID, folderID string) error {
	logger := contextutil.LoggerFromContext(ctx)

	userID, err := auth.CallerID(ctx)
	if err != nil {
		return err
	}

	note, err := s.ownedNote(ctx, userID, noteID)
	if err != nil {
		return err
	}

	if folderID != "" {
		if err := s.checkFolderOwnership(ctx, userID, folderID); err != nil {
			return err
		}
	}

	note.FolderID = folderID
	note.UpdatedAt = time.Now()
	if err := s.notes.Update(ctx, note); err != nil {
		return fmt.Errorf("failed to move note: %w", err)
	}

	logger.InfoContext(ctx, "note moved", "note_id", noteID, "folder_id", folderID)
	return nil
}

// ListRecent lists the caller's non-deleted, non-archived notes, most
// recently updated first, bounded to the 10 most recent.
func (s *NoteService) ListRecent(ctx context.Context) ([]storage.Note, error) {
	userID, err := auth.CallerID(ctx)
	if err != nil {
		return nil, err
	}
	notes, err := s.notes.ListRecent(ctx, userID, recentNotesLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}

// ListByType lists the caller's active notes of the given type. The
// richnote listing also merges in legacy notes that predate the type
// column, then re-sorts the merged set by update time. No pagination cap
// on this path.
func (s *NoteService) ListByType(ctx context.Context, noteType storage.NoteType) ([]storage.Note, error) {
	userID, err := auth.CallerID(ctx)
	if err != nil {
		return nil, err
	}
	if !noteType.Valid() {
		return nil, &ValidationError{Field: "noteType", Message: "must be quicknote or richnote"}
	}

	notes, err := s.notes.ListByType(ctx, userID, noteType)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes by type: %w", err)
	}

	if noteType == storage.NoteTypeRich {
		legacy, err := s.notes.ListByType(ctx, userID, "")
		if err != nil {
			return nil, fmt.Errorf("failed to list legacy notes: %w", err)
		}
		notes = append(notes, legacy...)
		sort.SliceStable(notes, func(i, j int) bool {
			return notes[i].UpdatedAt.After(notes[j].UpdatedAt)
		})
	}

	return notes, nil
}

// GetByID returns a single note owned by the caller.
//
// Unlike the rest of the operations, older builds skipped the ownership
// check on this read path; it is enforced here so a note id alone never
// grants access to another user's note.
func (s *NoteService) GetByID(ctx context.Context, noteID string) (*storage.Note, error) {
	userID, err := auth.CallerID(ctx)
	if err != nil {
		return nil, err
	}
	return s.ownedNote(ctx, userID, noteID)
}

// setFlag loads an owned note, applies a flag mutation, and persists it.
func (s *NoteService) setFlag(ctx context.Context, noteID, event string, mutate func(*storage.Note)) error {
	logger := contextutil.LoggerFromContext(ctx)

	userID, err := auth.CallerID(ctx)
	if err != nil {
		return err
	}

	note, err := s.ownedNote(ctx, userID, noteID)
	if err != nil {
		return err
	}

	mutate(note)
	note.UpdatedAt = time.Now()
	if err := s.notes.Update(ctx, note); err != nil {
		return fmt.Errorf("failed to update note: %w", err)
	}

	logger.InfoContext(ctx, event, "note_id", noteID)
	return nil
}

// reindex mirrors a note into the vector index. Best-effort: an indexing
// failure never fails the mutation that triggered it.
func (s *NoteService) reindex(ctx context.Context, note *storage.Note) {
	if s.indexer == nil {
		return
	}
	if err := s.indexer.IndexNote(ctx, note); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to index note", "note_id", note.ID, "error", err)
	}
}

// checkFolderOwnership verifies the destination folder exists and belongs
// to the caller.
func (s *NoteService) checkFolderOwnership(ctx context.Context, userID, folderID string) error {
	folder, err := s.folders.GetByID(ctx, folderID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load folder: %w", err)
	}
	if folder.UserID != userID {
		return ErrForbidden
	}
	return nil
}

// ownedNote loads a note and verifies the caller owns it.
func (s *NoteService) ownedNote(ctx context.Context, userID, noteID string) (*storage.Note, error) {
	note, err := s.notes.GetByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load note: %w", err)
	}
	if note.UserID != userID {
		return nil, ErrForbidden
	}
	return note, nil
}
