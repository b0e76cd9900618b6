package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Default index settings.
const (
	DefaultNamespace  = "insurance_docs"
	DefaultBatchSize  = 20
	DefaultQueryLimit = 15
)

// maxKeyTerms caps the terms kept by query expansion.
const maxKeyTerms = 5

// IndexService embeds segments into a shared namespace and retrieves them per document.
type IndexService struct {
	embedder  driven.EmbeddingService
	store     driven.VectorStore
	namespace string
	batchSize int
	expand    bool
}

// IndexOption configures the index service.
type IndexOption func(*IndexService)

// WithNamespace sets the vector namespace.
func WithNamespace(namespace string) IndexOption {
	return func(s *IndexService) {
		if namespace != "" {
			s.namespace = namespace
		}
	}
}

// WithBatchSize sets the number of records per upsert.
func WithBatchSize(size int) IndexOption {
	return func(s *IndexService) {
		if size > 0 {
			s.batchSize = size
		}
	}
}

// WithQueryExpansion enables key-term query variations.
func WithQueryExpansion(enabled bool) IndexOption {
	return func(s *IndexService) {
		s.expand = enabled
	}
}

// NewIndexService creates a new index service.
func NewIndexService(embedder driven.EmbeddingService, store driven.VectorStore, opts ...IndexOption) *IndexService {
	s := &IndexService{
		embedder:  embedder,
		store:     store,
		namespace: DefaultNamespace,
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Namespace returns the namespace all documents are written to.
func (s *IndexService) Namespace() string {
	return s.namespace
}

// Index embeds and stores segments under documentID.
// Batches written before a failure stay written.
func (s *IndexService) Index(ctx context.Context, documentID string, segments []domain.Segment) error {
	if s.embedder == nil {
		return fmt.Errorf("%w: %w", domain.ErrIndexingFailure, domain.ErrEmbeddingUnavailable)
	}
	if s.store == nil {
		return fmt.Errorf("%w: %w", domain.ErrIndexingFailure, domain.ErrVectorIndexUnavailable)
	}

	for start := 0; start < len(segments); start += s.batchSize {
		end := min(start+s.batchSize, len(segments))
		batch := segments[start:end]

		texts := make([]string, len(batch))
		for i, seg := range batch {
			texts[i] = seg.Text
		}

		embeddings, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("%w: embedding segments %d-%d: %w", domain.ErrIndexingFailure, start, end-1, err)
		}
		if len(embeddings) != len(batch) {
			return fmt.Errorf("%w: got %d embeddings for %d segments",
				domain.ErrIndexingFailure, len(embeddings), len(batch))
		}

		records := make([]driven.VectorRecord, len(batch))
		for i, seg := range batch {
			records[i] = driven.VectorRecord{
				ID:        domain.SegmentID(documentID, seg.Ordinal),
				Embedding: embeddings[i],
				Metadata: driven.SegmentMetadata{
					Text:       seg.Text,
					Ordinal:    seg.Ordinal,
					TextLength: seg.Length(),
					DocumentID: documentID,
				},
			}
		}

		if err := s.store.Upsert(ctx, s.namespace, records); err != nil {
			return fmt.Errorf("%w: upserting segments %d-%d: %w", domain.ErrIndexingFailure, start, end-1, err)
		}
	}

	logger.Info("Indexed %d segments for document %s", len(segments), documentID)
	return nil
}

// Query returns up to k segment texts of documentID most similar to text.
// Failures are logged and yield an empty result.
func (s *IndexService) Query(ctx context.Context, text, documentID string, k int) []string {
	if k <= 0 {
		k = DefaultQueryLimit
	}
	if s.embedder == nil || s.store == nil {
		logger.Error("Search skipped: index is not configured")
		return []string{}
	}

	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		logger.Error("Search failed embedding query: %v", err)
		return []string{}
	}

	matches, err := s.store.Query(ctx, s.namespace, embedding, k, documentID)
	if err != nil {
		logger.Error("Search failed: %v", err)
		return []string{}
	}

	texts := make([]string, 0, len(matches))
	for _, m := range matches {
		// Guard against backends that ignore the filter.
		if m.Metadata.DocumentID != "" && m.Metadata.DocumentID != documentID {
			continue
		}
		if m.Metadata.Text == "" {
			continue
		}
		texts = append(texts, m.Metadata.Text)
	}
	logger.Debug("Search found %d segments for document %s", len(texts), documentID)
	return texts
}

// Retrieve queries with the question and, when expansion is on, its key-term variations.
// Results are merged in first-seen order without duplicates and capped at k.
func (s *IndexService) Retrieve(ctx context.Context, question, documentID string, k int) []string {
	if k <= 0 {
		k = DefaultQueryLimit
	}
	results := s.Query(ctx, question, documentID, k)
	if !s.expand {
		return results
	}

	seen := make(map[string]bool, len(results))
	for _, r := range results {
		seen[r] = true
	}
	for _, variation := range QueryVariations(question) {
		for _, r := range s.Query(ctx, variation, documentID, k) {
			if !seen[r] {
				seen[r] = true
				results = append(results, r)
			}
		}
	}
	if len(results) > k {
		results = results[:k]
	}
	return results
}

var wordPattern = regexp.MustCompile(`\b[A-Za-z]+\b`)

var stopWords = map[string]bool{
	"what": true, "is": true, "the": true, "how": true, "does": true, "are": true,
	"and": true, "or": true, "but": true, "in": true, "on": true, "at": true,
	"to": true, "for": true, "of": true, "with": true, "by": true,
}

// priorityTerms are placed ahead of other key terms when present.
var priorityTerms = []string{
	"constitution", "article", "amendment", "rights", "fundamental",
	"directive", "principles", "president", "supreme", "court",
	"parliament", "state", "emergency",
}

// KeyTerms returns up to five lowercase content words of query,
// priority terms first, then the rest in query order.
func KeyTerms(query string) []string {
	words := wordPattern.FindAllString(strings.ToLower(query), -1)

	present := make(map[string]bool, len(words))
	var candidates []string
	for _, w := range words {
		if stopWords[w] || len(w) <= 2 {
			continue
		}
		candidates = append(candidates, w)
		present[w] = true
	}

	var terms []string
	added := make(map[string]bool)
	for _, p := range priorityTerms {
		if present[p] {
			terms = append(terms, p)
			added[p] = true
		}
	}
	for _, w := range candidates {
		if !added[w] {
			terms = append(terms, w)
			added[w] = true
		}
	}

	if len(terms) > maxKeyTerms {
		terms = terms[:maxKeyTerms]
	}
	return terms
}

// QueryVariations returns the joined key terms followed by the top two single terms.
func QueryVariations(query string) []string {
	terms := KeyTerms(query)
	if len(terms) == 0 {
		return nil
	}
	variations := []string{strings.Join(terms, " ")}
	for _, t := range terms[:min(2, len(terms))] {
		variations = append(variations, t)
	}
	return variations
}
