package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"notedeck/internal/auth"
	"notedeck/internal/contextutil"
	"notedeck/internal/storage"
)

// maxTreeDepth caps the ancestor walk during cycle detection. Real trees
// never get near this; the cap guards against corrupt parent chains.
const maxTreeDepth = 64

// FolderUpdate describes a partial folder update. Nil fields are left
// unchanged. For ParentID the empty string means "move to root", since
// folder ids are UUIDs and never empty.
type FolderUpdate struct {
	Name     *string
	ParentID *string
	Color    *string
	Icon     *string
}

// FolderService enforces ownership and tree invariants over folders.
type FolderService struct {
	folders storage.FolderStore
	notes   storage.NoteStore
	logger  *slog.Logger
}

// NewFolderService creates a new FolderService.
func NewFolderService(folders storage.FolderStore, notes storage.NoteStore) *FolderService {
	return &FolderService{
		folders: folders,
		notes:   notes,
		logger:  slog.Default(),
	}
}

// Create inserts a new folder for the caller. A non-empty parentID must
// reference a folder owned by the caller.
func (s *FolderService) Create(ctx context.Context, name, parentID, color, icon string) (*storage.Folder, error) {
	logger := contextutil.LoggerFromContext(ctx)

	userID, err := auth.CallerID(ctx)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(name) == "" {
		return nil, &ValidationError{Field: "name", Message: "cannot be empty"}
	}

	if parentID != "" {
		if _, err := s.ownedFolder(ctx, userID, parentID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	folder := &storage.Folder{
		UserID:    userID,
		Name:      name,
		ParentID:  parentID,
		Color:     color,
		Icon:      icon,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.folders.Insert(ctx, folder); err != nil {
		return nil, fmt.Errorf("failed to create folder: %w", err)
	}

	logger.InfoContext(ctx, "folder created", "folder_id", folder.ID, "parent_id", parentID)
	return folder, nil
}

// Update applies a partial update to a folder owned by the caller.
// Reparenting runs the same self-parent and cycle checks as MoveToParent.
// UpdatedAt always refreshes, even when no field is provided.
func (s *FolderService) Update(ctx context.Context, folderID string, update FolderUpdate) (*storage.Folder, error) {
	logger := contextutil.LoggerFromContext(ctx)

	userID, err := auth.CallerID(ctx)
	if err != nil {
		return nil, err
	}

	folder, err := s.ownedFolder(ctx, userID, folderID)
	if err != nil {
		return nil, err
	}

	if update.ParentID != nil {
		if err := s.checkReparent(ctx, userID, folderID, *update.ParentID); err != nil {
			return nil, err
		}
		folder.ParentID = *update.ParentID
	}
	if update.Name != nil {
		if strings.TrimSpace(*update.Name) == "" {
			return nil, &ValidationError{Field: "name", Message: "cannot be empty"}
		}
		folder.Name = *update.Name
	}
	if update.Color != nil {
		folder.Color = *update.Color
	}
	if update.Icon != nil {
		folder.Icon = *update.Icon
	}
	folder.UpdatedAt = time.Now()

	if err := s.folders.Update(ctx, folder); err != nil {
		return nil, fmt.Errorf("failed to update folder: %w", err)
	}

	logger.InfoContext(ctx, "folder updated", "folder_id", folderID)
	return folder, nil
}

// Delete hard-deletes a folder owned by the caller. Fails with ErrNotEmpty
// while any child folder or non-deleted note still references it.
func (s *FolderService) Delete(ctx context.Context, folderID string) error {
	logger := contextutil.LoggerFromContext(ctx)

	userID, err := auth.CallerID(ctx)
	if err != nil {
		return err
	}

	if _, err := s.ownedFolder(ctx, userID, folderID); err != nil {
		return err
	}

	children, err := s.folders.CountChildren(ctx, folderID)
	if err != nil {
		return fmt.Errorf("failed to count subfolders: %w", err)
	}
	if children > 0 {
		return ErrNotEmpty
	}

	notes, err := s.notes.CountInFolder(ctx, folderID)
	if err != nil {
		return fmt.Errorf("failed to count notes in folder: %w", err)
	}
	if notes > 0 {
		return ErrNotEmpty
	}

	if err := s.folders.Delete(ctx, folderID); err != nil {
		return fmt.Errorf("failed to delete folder: %w", err)
	}

	logger.InfoContext(ctx, "folder deleted", "folder_id", folderID)
	return nil
}

// MoveToParent reparents a folder. An empty parentID moves it to root.
func (s *FolderService) MoveToParent(ctx context.Context, folderID, parentID string) error {
	logger := contextutil.LoggerFromContext(ctx)

	userID, err := auth.CallerID(ctx)
	if err != nil {
		return err
	}

	folder, err := s.ownedFolder(ctx, userID, folderID)
	if err != nil {
		return err
	}

	if err := s.checkReparent(ctx, userID, folderID, parentID); err != nil {
		return err
	}

	folder.ParentID = parentID
	folder.UpdatedAt = time.Now()
	if err := s.folders.Update(ctx, folder); err != nil {
		return fmt.Errorf("failed to move folder: %w", err)
	}

	logger.InfoContext(ctx, "folder moved", "folder_id", folderID, "parent_id", parentID)
	return nil
}

// ListForUser lists all folders owned by the caller.
func (s *FolderService) ListForUser(ctx context.Context) ([]storage.Folder, error) {
	userID, err := auth.CallerID(ctx)
	if err != nil {
		return nil, err
	}
	folders, err := s.folders.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	return folders, nil
}

// checkReparent validates a proposed new parent: it must not be the folder
// itself, must exist and be owned by the caller, and must not sit inside
// the folder's own subtree.
func (s *FolderService) checkReparent(ctx context.Context, userID, folderID, parentID string) error {
	if parentID == "" {
		return nil
	}
	if parentID == folderID {
		return ErrSelfParent
	}

	if _, err := s.ownedFolder(ctx, userID, parentID); err != nil {
		return err
	}

	// Walk the ancestor chain from the proposed parent. Reaching folderID
	// again means the parent is a descendant of the folder being moved.
	// A dangling reference terminates the walk like a root does.
	current := parentID
	for depth := 0; current != "" && depth < maxTreeDepth; depth++ {
		if current == folderID {
			return ErrCircularReference
		}
		ancestor, err := s.folders.GetByID(ctx, current)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				break
			}
			return fmt.Errorf("failed to walk folder ancestors: %w", err)
		}
		current = ancestor.ParentID
	}

	return nil
}

// ownedFolder loads a folder and verifies the caller owns it.
func (s *FolderService) ownedFolder(ctx context.Context, userID, folderID string) (*storage.Folder, error) {
	folder, err := s.folders.GetByID(ctx, folderID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load folder: %w", err)
	}
	if folder.UserID != userID {
		return nil, ErrForbidden
	}
	return folder, nil
}
