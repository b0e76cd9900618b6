package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/normalisers"
	"github.com/custodia-labs/docqa/internal/normalisers/plaintext"
	"github.com/custodia-labs/docqa/internal/postprocessors"
	"github.com/custodia-labs/docqa/internal/postprocessors/chunker"
)

// --- Mock implementations ---

// stubEmbedder embeds text as letter frequencies.
type stubEmbedder struct {
	embedErr   error
	batchErrAt int // fail the nth EmbedBatch call (1-based); 0 never fails
	batchCalls atomic.Int32
	embedCalls atomic.Int32
}

func letterVector(text string) []float32 {
	vec := make([]float32, 26)
	for _, r := range strings.ToLower(text) {
		if r >= 'a' && r <= 'z' {
			vec[r-'a']++
		}
	}
	return vec
}

func (m *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.embedCalls.Add(1)
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return letterVector(text), nil
}

func (m *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	n := m.batchCalls.Add(1)
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if m.batchErrAt > 0 && int(n) == m.batchErrAt {
		return nil, errors.New("embedding backend down")
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = letterVector(t)
	}
	return out, nil
}

func (m *stubEmbedder) Dimensions() int { return 26 }
func (m *stubEmbedder) ModelName() string { return "stub-embed" }
func (m *stubEmbedder) Ping(_ context.Context) error { return nil }
func (m *stubEmbedder) Close() error { return nil }

// stubVectorStore is an in-memory store scoring by dot product.
type stubVectorStore struct {
	mu          sync.Mutex
	namespaces  map[string]map[string]driven.VectorRecord
	upserts     int
	upsertErr   error
	queryErr    error
	ignoreScope bool
}

func newStubVectorStore() *stubVectorStore {
	return &stubVectorStore{namespaces: make(map[string]map[string]driven.VectorRecord)}
}

func (m *stubVectorStore) Upsert(_ context.Context, namespace string, records []driven.VectorRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserts++
	ns := m.namespaces[namespace]
	if ns == nil {
		ns = make(map[string]driven.VectorRecord)
		m.namespaces[namespace] = ns
	}
	for _, r := range records {
		ns[r.ID] = r
	}
	return nil
}

func (m *stubVectorStore) Query(
	_ context.Context, namespace string, embedding []float32, topK int, documentID string,
) ([]driven.VectorMatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.queryErr != nil {
		return nil, m.queryErr
	}

	var matches []driven.VectorMatch
	for id, r := range m.namespaces[namespace] {
		if !m.ignoreScope && r.Metadata.DocumentID != documentID {
			continue
		}
		var score float64
		for i := range embedding {
			if i < len(r.Embedding) {
				score += float64(embedding[i] * r.Embedding[i])
			}
		}
		matches = append(matches, driven.VectorMatch{ID: id, Score: score, Metadata: r.Metadata})
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score == matches[j].Score {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (m *stubVectorStore) Close() error { return nil }

func (m *stubVectorStore) count(namespace string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.namespaces[namespace])
}

// stubLLM answers prompts with a function and records every prompt.
type stubLLM struct {
	mu      sync.Mutex
	prompts []string
	respond func(prompt string) (string, error)
}

func (m *stubLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	if m.respond == nil {
		return "", nil
	}
	return m.respond(prompt)
}

func (m *stubLLM) Chat(_ context.Context, _ []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	return "", errors.New("not implemented")
}

func (m *stubLLM) ModelName() string { return "stub-llm" }
func (m *stubLLM) Ping(_ context.Context) error { return nil }
func (m *stubLLM) Close() error { return nil }

func (m *stubLLM) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

func (m *stubLLM) prompt(i int) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prompts[i]
}

// stubFetcher serves canned documents by URL.
type stubFetcher struct {
	docs  map[string]*domain.RawContent
	calls atomic.Int32
	gate  chan struct{} // when set, Fetch blocks until it is closed
}

func (m *stubFetcher) Fetch(ctx context.Context, url string) (*domain.RawContent, error) {
	m.calls.Add(1)
	if m.gate != nil {
		select {
		case <-m.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	raw, ok := m.docs[url]
	if !ok {
		return nil, fmt.Errorf("%w: %w: status 404 from %s", domain.ErrExtractionFailure, domain.ErrFetchFailure, url)
	}
	copied := *raw
	return &copied, nil
}

// countingThrottler runs calls directly and counts them.
type countingThrottler struct {
	calls atomic.Int32
}

func (m *countingThrottler) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

// --- Helpers ---

func textDoc(url, text string) *domain.RawContent {
	return &domain.RawContent{Source: url, MIMEType: "text/plain; charset=utf-8", Content: []byte(text)}
}

func testRegistry() *normalisers.Registry {
	return normalisers.NewRegistry(plaintext.New())
}

func testPipeline(size, overlap int) *postprocessors.Pipeline {
	return postprocessors.NewPipeline(chunker.New(chunker.WithChunkSize(size), chunker.WithOverlap(overlap)))
}

// Ensure mocks implement the ports.
var (
	_ driven.EmbeddingService = (*stubEmbedder)(nil)
	_ driven.VectorStore      = (*stubVectorStore)(nil)
	_ driven.LLMService       = (*stubLLM)(nil)
	_ driven.Fetcher          = (*stubFetcher)(nil)
	_ driven.Throttler        = (*countingThrottler)(nil)
)
