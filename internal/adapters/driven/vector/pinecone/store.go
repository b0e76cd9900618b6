// Package pinecone implements VectorStore against the Pinecone data-plane REST API.
package pinecone

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Default configuration values.
const (
	DefaultTimeout    = 30 * time.Second
	DefaultAPIVersion = "2024-07"
)

// Config holds Pinecone connection settings.
type Config struct {
	// Host is the index host, e.g. https://my-index-abc123.svc.us-east-1.pinecone.io.
	Host string

	// APIKey authenticates every request.
	APIKey string

	// Timeout bounds each request (default: 30s).
	Timeout time.Duration
}

// Store talks to a single Pinecone index.
type Store struct {
	client *resty.Client
}

// New creates a store for the configured index.
func New(cfg Config) (*Store, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("%w: pinecone host is required", domain.ErrInvalidInput)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: pinecone API key is required", domain.ErrInvalidInput)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	host := strings.TrimRight(cfg.Host, "/")
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}

	client := resty.New().
		SetBaseURL(host).
		SetTimeout(cfg.Timeout).
		SetHeader("Api-Key", cfg.APIKey).
		SetHeader("X-Pinecone-API-Version", DefaultAPIVersion).
		SetHeader("Content-Type", "application/json")

	return &Store{client: client}, nil
}

type wireMetadata struct {
	Text       string  `json:"text"`
	ChunkIndex float64 `json:"chunk_index"`
	TextLength float64 `json:"text_length"`
	DocumentID string  `json:"document_id"`
}

type wireVector struct {
	ID       string       `json:"id"`
	Values   []float32    `json:"values"`
	Metadata wireMetadata `json:"metadata"`
}

type upsertRequest struct {
	Vectors   []wireVector `json:"vectors"`
	Namespace string       `json:"namespace"`
}

type upsertResponse struct {
	UpsertedCount int `json:"upsertedCount"`
}

type queryRequest struct {
	Namespace       string         `json:"namespace"`
	Vector          []float32      `json:"vector"`
	TopK            int            `json:"topK"`
	IncludeMetadata bool           `json:"includeMetadata"`
	Filter          map[string]any `json:"filter,omitempty"`
}

type queryMatch struct {
	ID       string       `json:"id"`
	Score    float64      `json:"score"`
	Metadata wireMetadata `json:"metadata"`
}

type queryResponse struct {
	Matches []queryMatch `json:"matches"`
}

// Upsert writes records to the namespace.
func (s *Store) Upsert(ctx context.Context, namespace string, records []driven.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	body := upsertRequest{Namespace: namespace, Vectors: make([]wireVector, len(records))}
	for i, r := range records {
		body.Vectors[i] = wireVector{
			ID:     r.ID,
			Values: r.Embedding,
			Metadata: wireMetadata{
				Text:       r.Metadata.Text,
				ChunkIndex: float64(r.Metadata.Ordinal),
				TextLength: float64(r.Metadata.TextLength),
				DocumentID: r.Metadata.DocumentID,
			},
		}
	}

	var out upsertResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		Post("/vectors/upsert")
	if err != nil {
		return fmt.Errorf("%w: upsert: %w", domain.ErrVectorIndexUnavailable, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%w: upsert: status %d: %s",
			domain.ErrVectorIndexUnavailable, resp.StatusCode(), truncate(resp.String(), 200))
	}

	logger.Debug("pinecone: upserted %d vectors into %s", out.UpsertedCount, namespace)
	return nil
}

// Query returns the nearest records whose document_id equals documentID.
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

	body := queryRequest{
		Namespace:       namespace,
		Vector:          embedding,
		TopK:            topK,
		IncludeMetadata: true,
		Filter: map[string]any{
			"document_id": map[string]any{"$eq": documentID},
		},
	}

	var out queryResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		Post("/query")
	if err != nil {
		return nil, fmt.Errorf("%w: query: %w", domain.ErrVectorIndexUnavailable, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: query: status %d: %s",
			domain.ErrVectorIndexUnavailable, resp.StatusCode(), truncate(resp.String(), 200))
	}

	matches := make([]driven.VectorMatch, 0, len(out.Matches))
	for _, m := range out.Matches {
		matches = append(matches, driven.VectorMatch{
			ID:    m.ID,
			Score: m.Score,
			Metadata: driven.SegmentMetadata{
				Text:       m.Metadata.Text,
				Ordinal:    int(m.Metadata.ChunkIndex),
				TextLength: int(m.Metadata.TextLength),
				DocumentID: m.Metadata.DocumentID,
			},
		})
	}
	return matches, nil
}

// Close releases idle connections.
func (s *Store) Close() error {
	s.client.GetClient().CloseIdleConnections()
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
