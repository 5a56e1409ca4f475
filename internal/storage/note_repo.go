package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_note_store.go -package=mocks notedeck/internal/storage NoteStore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NoteStore defines the interface for note storage operations.
type NoteStore interface {
	// GetByID gets a note by ID. Returns nil and ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*Note, error)
	// Insert inserts a new note. Generates an ID when none is set.
	Insert(ctx context.Context, note *Note) error
	// Update rewrites the mutable columns of an existing note.
	Update(ctx context.Context, note *Note) error
	// Delete hard-deletes a note.
	Delete(ctx context.Context, id string) error
	// ListRecent lists the user's non-deleted, non-archived notes,
	// most recently updated first, bounded by limit.
	ListRecent(ctx context.Context, userID string, limit int) ([]Note, error)
	// ListByType lists the user's non-deleted, non-archived notes with the
	// given stored note type, most recently updated first. Pass the empty
	// string to select legacy rows that predate the type column.
	ListByType(ctx context.Context, userID string, noteType NoteType) ([]Note, error)
	// CountInFolder counts non-deleted notes filed in the given folder.
	CountInFolder(ctx context.Context, folderID string) (int, error)
}

// NoteRepo provides methods for note operations.
// It implements the NoteStore interface.
type NoteRepo struct {
	db *sql.DB
}

// NewNoteRepo creates a new NoteRepo.
func NewNoteRepo(db *sql.DB) *NoteRepo {
	return &NoteRepo{db: db}
}

const noteColumns = "id, user_id, title, content, note_type, folder_id, tags, is_archived, is_deleted, created_at, updated_at"

// GetByID gets a note by ID.
func (r *NoteRepo) GetByID(ctx context.Context, id string) (*Note, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+noteColumns+" FROM notes WHERE id = ?", id)

	note, err := scanNote(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query note: %w", err)
	}
	return note, nil
}

// Insert inserts a new note.
func (r *NoteRepo) Insert(ctx context.Context, note *Note) error {
	if note.ID == "" {
		note.ID = uuid.New().String()
	}
	now := time.Now()
	if note.CreatedAt.IsZero() {
		note.CreatedAt = now
	}
	if note.UpdatedAt.IsZero() {
		note.UpdatedAt = note.CreatedAt
	}

	content, err := note.Content.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode note content: %w", err)
	}
	tags, err := encodeTags(note.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode note tags: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO notes (id, user_id, title, content, note_type, folder_id, tags, is_archived, is_deleted, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		note.ID, note.UserID, note.Title, string(content), string(note.NoteType),
		nullableID(note.FolderID), tags, note.IsArchived, note.IsDeleted,
		note.CreatedAt.UnixMilli(), note.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}
	return nil
}

// Update rewrites the mutable columns of an existing note.
// UserID and CreatedAt are immutable and never written.
func (r *NoteRepo) Update(ctx context.Context, note *Note) error {
	content, err := note.Content.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode note content: %w", err)
	}
	tags, err := encodeTags(note.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode note tags: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE notes SET title = ?, content = ?, note_type = ?, folder_id = ?, tags = ?,
		 is_archived = ?, is_deleted = ?, updated_at = ?
		 WHERE id = ?`,
		note.Title, string(content), string(note.NoteType), nullableID(note.FolderID),
		tags, note.IsArchived, note.IsDeleted, note.UpdatedAt.UnixMilli(), note.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update note: %w", err)
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

// Delete hard-deletes a note.
func (r *NoteRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM notes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
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

// ListRecent lists the user's active notes, most recently updated first.
func (r *NoteRepo) ListRecent(ctx context.Context, userID string, limit int) ([]Note, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+noteColumns+` FROM notes
		 WHERE user_id = ? AND is_deleted = 0 AND is_archived = 0
		 ORDER BY updated_at DESC LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return collectNotes(rows)
}

// ListByType lists the user's active notes with the given stored type.
func (r *NoteRepo) ListByType(ctx context.Context, userID string, noteType NoteType) ([]Note, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+noteColumns+` FROM notes
		 WHERE user_id = ? AND note_type = ? AND is_deleted = 0 AND is_archived = 0
		 ORDER BY updated_at DESC`,
		userID, string(noteType))
	if err != nil {
		return nil, fmt.Errorf("failed to list notes by type: %w", err)
	}
	return collectNotes(rows)
}

// CountInFolder counts non-deleted notes filed in the given folder.
func (r *NoteRepo) CountInFolder(ctx context.Context, folderID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notes WHERE folder_id = ? AND is_deleted = 0", folderID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count notes in folder: %w", err)
	}
	return count, nil
}

func collectNotes(rows *sql.Rows) ([]Note, error) {
	defer func() {
		_ = rows.Close()
	}()

	var notes []Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, *note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notes: %w", err)
	}
	return notes, nil
}

func scanNote(s scanner) (*Note, error) {
	var note Note
	var content, tags string
	var noteType string
	var folderID sql.NullString
	var createdAt, updatedAt int64

	err := s.Scan(&note.ID, &note.UserID, &note.Title, &content, &noteType,
		&folderID, &tags, &note.IsArchived, &note.IsDeleted, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if err := note.Content.UnmarshalJSON([]byte(content)); err != nil {
		return nil, fmt.Errorf("invalid note content: %w", err)
	}
	if err := json.Unmarshal([]byte(tags), &note.Tags); err != nil {
		return nil, fmt.Errorf("invalid note tags: %w", err)
	}

	note.NoteType = NoteType(noteType)
	note.FolderID = folderID.String
	note.CreatedAt = time.UnixMilli(createdAt)
	note.UpdatedAt = time.UnixMilli(updatedAt)
	return &note, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
