// Package chromem implements an in-process VectorStore backed by chromem-go.
package chromem

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	chromemgo "github.com/philippgille/chromem-go"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Metadata keys written alongside every vector.
const (
	metaText       = "text"
	metaChunkIndex = "chunk_index"
	metaTextLength = "text_length"
	metaDocumentID = "document_id"
)

// Store keeps one chromem collection per namespace.
type Store struct {
	mu sync.Mutex
	db *chromemgo.DB
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{db: chromemgo.NewDB()}
}

func (s *Store) collection(namespace string) (*chromemgo.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.db.GetOrCreateCollection(namespace, map[string]string{"hnsw:space": "cosine"}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: collection %s: %w", domain.ErrVectorIndexUnavailable, namespace, err)
	}
	return c, nil
}

// Upsert writes records into the namespace collection.
func (s *Store) Upsert(ctx context.Context, namespace string, records []driven.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}
	c, err := s.collection(namespace)
	if err != nil {
		return err
	}

	ids := make([]string, len(records))
	embeddings := make([][]float32, len(records))
	metadatas := make([]map[string]string, len(records))
	contents := make([]string, len(records))
	for i, r := range records {
		if len(r.Embedding) == 0 {
			return fmt.Errorf("%w: record %s has no embedding", domain.ErrInvalidInput, r.ID)
		}
		ids[i] = r.ID
		embeddings[i] = r.Embedding
		metadatas[i] = map[string]string{
			metaText:       r.Metadata.Text,
			metaChunkIndex: strconv.Itoa(r.Metadata.Ordinal),
			metaTextLength: strconv.Itoa(r.Metadata.TextLength),
			metaDocumentID: r.Metadata.DocumentID,
		}
		contents[i] = r.Metadata.Text
	}

	if err := c.Add(ctx, ids, embeddings, metadatas, contents); err != nil {
		return fmt.Errorf("%w: upsert: %w", domain.ErrVectorIndexUnavailable, err)
	}
	return nil
}

// Query returns the nearest records belonging to documentID.
func (s *Store) Query(
	ctx context.Context,
	namespace string,
	embedding []float32,
	topK int,
	documentID string,
) ([]driven.VectorMatch, error) {
	if topK <= 0 || len(embedding) == 0 {
		return nil, nil
	}
	c, err := s.collection(namespace)
	if err != nil {
		return nil, err
	}

	// chromem rejects a result count larger than the collection.
	n := min(topK, c.Count())
	if n == 0 {
		return nil, nil
	}

	results, err := c.QueryEmbedding(ctx, embedding, n, map[string]string{metaDocumentID: documentID}, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %w", domain.ErrVectorIndexUnavailable, err)
	}

	matches := make([]driven.VectorMatch, 0, len(results))
	for _, r := range results {
		matches = append(matches, driven.VectorMatch{
			ID:       r.ID,
			Score:    float64(r.Similarity),
			Metadata: decodeMetadata(r.Metadata, r.Content),
		})
	}
	return matches, nil
}

// Count returns the number of records in a namespace.
func (s *Store) Count(namespace string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.db.GetCollection(namespace, nil)
	if c == nil {
		return 0
	}
	return c.Count()
}

// Close is a no-op; the database lives in process memory.
func (s *Store) Close() error {
	return nil
}

func decodeMetadata(meta map[string]string, content string) driven.SegmentMetadata {
	out := driven.SegmentMetadata{
		Text:       meta[metaText],
		DocumentID: meta[metaDocumentID],
	}
	if out.Text == "" {
		out.Text = content
	}
	out.Ordinal, _ = strconv.Atoi(meta[metaChunkIndex])
	out.TextLength, _ = strconv.Atoi(meta[metaTextLength])
	return out
}
