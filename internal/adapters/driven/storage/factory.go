// Package storage builds the process-lifetime stores behind the caches.
package storage

import (
	"fmt"

	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/lru"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// NewStore returns a key-value store honouring policy.
func NewStore[V any](policy domain.CachePolicy) (driven.KeyValueStore[V], error) {
	if !policy.IsValid() {
		return nil, fmt.Errorf("%w: cache policy %q capacity=%d ttl=%s",
			domain.ErrInvalidInput, policy.Kind, policy.Capacity, policy.TTL)
	}
	switch policy.Kind {
	case domain.CachePolicyLRU:
		return lru.NewStore[V](policy.Capacity, policy.TTL)
	default:
		return memory.NewStore[V](), nil
	}
}
