package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_folder_store.go -package=mocks notedeck/internal/storage FolderStore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FolderStore defines the interface for folder storage operations.
type FolderStore interface {
	// GetByID gets a folder by ID. Returns nil and ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*Folder, error)
	// Insert inserts a new folder. Generates an ID when none is set.
	Insert(ctx context.Context, folder *Folder) error
	// Update rewrites the mutable columns of an existing folder.
	Update(ctx context.Context, folder *Folder) error
	// Delete hard-deletes a folder.
	Delete(ctx context.Context, id string) error
	// ListByUser lists all folders owned by a user, name ascending.
	ListByUser(ctx context.Context, userID string) ([]Folder, error)
	// CountChildren counts folders whose parent is the given folder.
	CountChildren(ctx context.Context, parentID string) (int, error)
}

// FolderRepo provides methods for folder operations.
// It implements the FolderStore interface.
type FolderRepo struct {
	db *sql.DB
}

// NewFolderRepo creates a new FolderRepo.
func NewFolderRepo(db *sql.DB) *FolderRepo {
	return &FolderRepo{db: db}
}

const folderColumns = "id, user_id, name, parent_id, color, icon, created_at, updated_at"

// GetByID gets a folder by ID.
func (r *FolderRepo) GetByID(ctx context.Context, id string) (*Folder, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+folderColumns+" FROM folders WHERE id = ?", id)

	folder, err := scanFolder(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query folder: %w", err)
	}
	return folder, nil
}

// Insert inserts a new folder.
func (r *FolderRepo) Insert(ctx context.Context, folder *Folder) error {
	if folder.ID == "" {
		folder.ID = uuid.New().String()
	}
	now := time.Now()
	if folder.CreatedAt.IsZero() {
		folder.CreatedAt = now
	}
	if folder.UpdatedAt.IsZero() {
		folder.UpdatedAt = folder.CreatedAt
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO folders (id, user_id, name, parent_id, color, icon, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		folder.ID, folder.UserID, folder.Name, nullableID(folder.ParentID),
		folder.Color, folder.Icon, folder.CreatedAt.UnixMilli(), folder.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert folder: %w", err)
	}
	return nil
}

// Update rewrites the mutable columns of an existing folder.
// UserID and CreatedAt are immutable and never written.
func (r *FolderRepo) Update(ctx context.Context, folder *Folder) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE folders SET name = ?, parent_id = ?, color = ?, icon = ?, updated_at = ?
		 WHERE id = ?`,
		folder.Name, nullableID(folder.ParentID), folder.Color, folder.Icon,
		folder.UpdatedAt.UnixMilli(), folder.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update folder: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete hard-deletes a folder.
func (r *FolderRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM folders WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete folder: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByUser lists all folders owned by a user.
func (r *FolderRepo) ListByUser(ctx context.Context, userID string) ([]Folder, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+folderColumns+" FROM folders WHERE user_id = ? ORDER BY name ASC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var folders []Folder
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan folder: %w", err)
		}
		folders = append(folders, *folder)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate folders: %w", err)
	}
	return folders, nil
}

// CountChildren counts folders whose parent is the given folder.
func (r *FolderRepo) CountChildren(ctx context.Context, parentID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM folders WHERE parent_id = ?", parentID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count child folders: %w", err)
	}
	return count, nil
}

// scanner is the subset of sql.Row/sql.Rows used by the scan helpers.
type scanner interface {
	Scan(dest ...any) error
}

func scanFolder(s scanner) (*Folder, error) {
	var folder Folder
	var parentID sql.NullString
	var createdAt, updatedAt int64

	err := s.Scan(&folder.ID, &folder.UserID, &folder.Name, &parentID,
		&folder.Color, &folder.Icon, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	folder.ParentID = parentID.String
	folder.CreatedAt = time.UnixMilli(createdAt)
	folder.UpdatedAt = time.UnixMilli(updatedAt)
	return &folder, nil
}

// nullableID maps the empty string to NULL so that unfiled notes and root
// folders are stored as proper nulls.
func nullableID(id string) any {
	if id == "" {
		return nil
	}
	return id
}
