// Package cached memoises single-text embeddings in an LRU cache.
package cached

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// EmbeddingService wraps another service and caches Embed results by text.
// Questions repeat far more often than segments, so EmbedBatch is passed through.
type EmbeddingService struct {
	driven.EmbeddingService
	cache *lru.Cache[string, []float32]
}

// Wrap returns svc with an LRU of the given size in front of Embed.
func Wrap(svc driven.EmbeddingService, size int) (*EmbeddingService, error) {
	if size <= 0 {
		return nil, fmt.Errorf("embedding cache size must be greater than zero, got %d", size)
	}
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("init embedding cache: %w", err)
	}
	return &EmbeddingService{EmbeddingService: svc, cache: cache}, nil
}

// Embed returns a cached vector or computes and stores one.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := s.cache.Get(text); ok {
		return clone(v), nil
	}
	v, err := s.EmbeddingService.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	s.cache.Add(text, clone(v))
	return v, nil
}

// Len returns the number of cached vectors.
func (s *EmbeddingService) Len() int {
	return s.cache.Len()
}

func clone(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
