// Package retrieval mirrors notes into the vector index and serves the
// chat assistant's note lookup tool.
package retrieval

import (
	"context"
	"fmt"

	"notedeck/internal/contextutil"
	"notedeck/internal/storage"
	"notedeck/internal/vectorstore"
)

// Embedder generates embedding vectors for texts. This interface is
// defined from the retrieval layer's perspective (consumer-first);
// llm.EmbeddingsClient implements it.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Indexer keeps one vector point per note, keyed by the note id.
type Indexer struct {
	embedder   Embedder
	store      vectorstore.VectorStore
	collection string
}

// NewIndexer creates a new Indexer.
func NewIndexer(embedder Embedder, store vectorstore.VectorStore, collection string) *Indexer {
	return &Indexer{
		embedder:   embedder,
		store:      store,
		collection: collection,
	}
}

// IndexNote embeds a note's title and body and upserts its point.
// The point id equals the note id, so re-indexing replaces the old vector.
func (ix *Indexer) IndexNote(ctx context.Context, note *storage.Note) error {
	logger := contextutil.LoggerFromContext(ctx)

	text := note.Title + "\n\n" + note.Content.PlainText()
	embeddings, err := ix.embedder.EmbedTexts(ctx, []string{text})
	if err != nil {
		return fmt.Errorf("failed to embed note: %w", err)
	}
	if len(embeddings) == 0 {
		return fmt.Errorf("no embedding returned for note")
	}

	point := vectorstore.Point{
		ID:  note.ID,
		Vec: embeddings[0],
		Meta: map[string]any{
			"user_id": note.UserID,
			"note_id": note.ID,
			"title":   note.Title,
		},
	}
	if err := ix.store.Upsert(ctx, ix.collection, []vectorstore.Point{point}); err != nil {
		return fmt.Errorf("failed to upsert note point: %w", err)
	}

	logger.DebugContext(ctx, "note indexed", "note_id", note.ID)
	return nil
}

// RemoveNote deletes a note's point from the index.
func (ix *Indexer) RemoveNote(ctx context.Context, noteID string) error {
	if err := ix.store.Delete(ctx, ix.collection, []string{noteID}); err != nil {
		return fmt.Errorf("failed to delete note point: %w", err)
	}
	return nil
}
