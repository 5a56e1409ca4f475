package retrieval

import (
	"context"
	"errors"
	"fmt"
	"time"

	"notedeck/internal/contextutil"
	"notedeck/internal/storage"
	"notedeck/internal/vectorstore"
)

const (
	defaultK = 5
	maxK     = 20
)

// RelevantNote is the shape handed to the chat assistant as a citation:
// enough to quote the note and link back to it.
type RelevantNote struct {
	ID        string
	Title     string
	Body      string
	CreatedAt time.Time
}

// Retriever answers free-text queries with the caller's most relevant notes.
type Retriever struct {
	embedder   Embedder
	store      vectorstore.VectorStore
	collection string
	notes      storage.NoteStore
}

// NewRetriever creates a new Retriever.
func NewRetriever(embedder Embedder, store vectorstore.VectorStore, collection string, notes storage.NoteStore) *Retriever {
	return &Retriever{
		embedder:   embedder,
		store:      store,
		collection: collection,
		notes:      notes,
	}
}

// FindRelevantNotes embeds the query and returns the caller's top-k
// matching notes, ranked by similarity. Results are always scoped to the
// given user via a payload filter, and soft-deleted notes are dropped on
// load.
func (r *Retriever) FindRelevantNotes(ctx context.Context, userID, query string, k int) ([]RelevantNote, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	if k <= 0 {
		k = defaultK
	}
	if k > maxK {
		k = maxK
	}

	embeddings, err := r.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embedding returned for query")
	}

	results, err := r.store.Search(ctx, r.collection, embeddings[0], k, map[string]string{
		"user_id": userID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search notes: %w", err)
	}

	relevant := make([]RelevantNote, 0, len(results))
	for _, result := range results {
		noteID := result.PointID
		if id, ok := result.Meta["note_id"].(string); ok && id != "" {
			noteID = id
		}

		note, err := r.notes.GetByID(ctx, noteID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				// Stale point: the note was deleted after indexing.
				logger.WarnContext(ctx, "indexed note missing from database", "note_id", noteID)
				continue
			}
			return nil, fmt.Errorf("failed to load note: %w", err)
		}
		if note.UserID != userID || note.IsDeleted {
			continue
		}

		relevant = append(relevant, RelevantNote{
			ID:        note.ID,
			Title:     note.Title,
			Body:      note.Content.PlainText(),
			CreatedAt: note.CreatedAt,
		})
	}

	logger.InfoContext(ctx, "retrieval completed", "query_length", len(query), "results", len(relevant))
	return relevant, nil
}
