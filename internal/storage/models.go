package storage

import (
	"bytes"
	"encoding/json"
	"time"
)

// NoteType distinguishes plain-text quicknotes from structured richnotes.
type NoteType string

const (
	// NoteTypeQuick is a note whose content is plain text.
	NoteTypeQuick NoteType = "quicknote"
	// NoteTypeRich is a note whose content is a structured editor document.
	NoteTypeRich NoteType = "richnote"
)

// Valid reports whether t is one of the known note types.
func (t NoteType) Valid() bool {
	return t == NoteTypeQuick || t == NoteTypeRich
}

// Content is a note body. Exactly one side is set: Text for quicknotes,
// Doc for richnotes. Doc is an opaque editor document; its internal shape
// belongs to the editor, not to this server.
type Content struct {
	Text string
	Doc  json.RawMessage
}

// PlainText returns a flat textual rendering of the content, used when
// feeding note bodies to the embedding model.
func (c Content) PlainText() string {
	if c.Doc != nil {
		return string(c.Doc)
	}
	return c.Text
}

// MarshalJSON encodes quicknote content as a JSON string and richnote
// content as its raw document.
func (c Content) MarshalJSON() ([]byte, error) {
	if c.Doc != nil {
		return c.Doc, nil
	}
	return json.Marshal(c.Text)
}

// UnmarshalJSON decodes a JSON string into Text and anything else into Doc.
func (c *Content) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		c.Doc = nil
		return json.Unmarshal(trimmed, &c.Text)
	}
	c.Text = ""
	c.Doc = append(json.RawMessage(nil), trimmed...)
	return nil
}

// User is an identity principal. Stores treat it as read-only; only the
// auth surface mutates user records.
type User struct {
	ID           string
	Email        string
	Name         string
	AvatarURL    string
	PasswordHash string
	CreatedAt    time.Time
}

// Session is a bearer-token login session.
type Session struct {
	Token     string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Folder is a named container for notes. Folders form a forest per user:
// ParentID is empty for roots, otherwise it references another folder
// owned by the same user.
type Folder struct {
	ID        string
	UserID    string
	Name      string
	ParentID  string // empty = root
	Color     string
	Icon      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Note is a unit of user content.
//
// NoteType may be empty on rows predating the type column; readers treat
// those as richnotes.
type Note struct {
	ID         string
	UserID     string
	Title      string
	Content    Content
	NoteType   NoteType
	FolderID   string // empty = unfiled
	Tags       []string
	IsArchived bool
	IsDeleted  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// EffectiveType resolves the legacy empty note type to richnote.
func (n *Note) EffectiveType() NoteType {
	if n.NoteType == "" {
		return NoteTypeRich
	}
	return n.NoteType
}
