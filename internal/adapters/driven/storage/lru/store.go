// Package lru provides a bounded key-value store with optional expiry.
package lru

import (
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.KeyValueStore[string] = (*Store[string])(nil)

// Store evicts the least recently used entry once capacity is reached.
// When ttl is positive entries also expire ttl after they were written.
type Store[V any] struct {
	cache *expirable.LRU[string, V]
}

// NewStore creates a store holding at most capacity entries.
func NewStore[V any](capacity int, ttl time.Duration) (*Store[V], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("lru capacity must be greater than zero, got %d", capacity)
	}
	if ttl < 0 {
		return nil, fmt.Errorf("lru ttl must not be negative, got %s", ttl)
	}
	return &Store[V]{
		cache: expirable.NewLRU[string, V](capacity, nil, ttl),
	}, nil
}

// Get returns the value stored under key and marks it recently used.
func (s *Store[V]) Get(key string) (V, bool) {
	return s.cache.Get(key)
}

// Put stores or replaces the value under key.
func (s *Store[V]) Put(key string, value V) {
	s.cache.Add(key, value)
}

// Keys returns live keys from oldest to newest.
func (s *Store[V]) Keys() []string {
	return s.cache.Keys()
}

// Len returns the number of live entries.
func (s *Store[V]) Len() int {
	return s.cache.Len()
}
