package driven

import "context"

// VectorStore stores segment embeddings in named namespaces.
// Many documents share one namespace; queries are always scoped to one document.
type VectorStore interface {
	// Upsert writes records, replacing any with the same ID.
	Upsert(ctx context.Context, namespace string, records []VectorRecord) error

	// Query returns up to topK records whose document_id equals documentID,
	// ordered by descending similarity.
	Query(ctx context.Context, namespace string, embedding []float32, topK int, documentID string) ([]VectorMatch, error)

	// Close releases resources.
	Close() error
}

// VectorRecord is one stored segment.
type VectorRecord struct {
	// ID is derived from the document ID and ordinal.
	ID string

	// Embedding is the segment vector.
	Embedding []float32

	// Metadata carries the segment text so queries need no second lookup.
	Metadata SegmentMetadata
}

// SegmentMetadata is stored alongside every vector.
type SegmentMetadata struct {
	// Text is the segment content.
	Text string

	// Ordinal is the segment position within the document.
	Ordinal int

	// TextLength is the character count of Text.
	TextLength int

	// DocumentID scopes the record for filtering.
	DocumentID string
}

// VectorMatch is a query result.
type VectorMatch struct {
	// ID is the matched record.
	ID string

	// Score is the similarity score (higher is closer).
	Score float64

	// Metadata is the stored segment metadata.
	Metadata SegmentMetadata
}
