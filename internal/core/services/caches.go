package services

import (
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// DocumentCache maps source keys to already ingested documents.
type DocumentCache struct {
	store driven.KeyValueStore[domain.CacheEntry]
	now   func() time.Time
}

// NewDocumentCache creates a document cache over store.
func NewDocumentCache(store driven.KeyValueStore[domain.CacheEntry]) *DocumentCache {
	return &DocumentCache{store: store, now: time.Now}
}

// Get returns the entry for a source key.
func (c *DocumentCache) Get(sourceKey string) (domain.CacheEntry, bool) {
	return c.store.Get(sourceKey)
}

// Put records an ingested document under a source key.
func (c *DocumentCache) Put(sourceKey, documentID string, segments []string) {
	c.store.Put(sourceKey, domain.CacheEntry{
		DocumentID: documentID,
		Segments:   append([]string(nil), segments...),
		CachedAt:   c.now().UTC(),
	})
	logger.Info("Cached document %s under key %s", documentID, sourceKey)
}

// Len returns the number of cached documents.
func (c *DocumentCache) Len() int {
	return c.store.Len()
}

// Keys returns the cached source keys.
func (c *DocumentCache) Keys() []string {
	return c.store.Keys()
}

// SessionStore maps session tokens to each client's active document.
type SessionStore struct {
	store driven.KeyValueStore[domain.SessionEntry]
	now   func() time.Time
}

// NewSessionStore creates a session store over store.
func NewSessionStore(store driven.KeyValueStore[domain.SessionEntry]) *SessionStore {
	return &SessionStore{store: store, now: time.Now}
}

// ResolveOrCreate returns token when it is a valid UUID, otherwise a new one.
func (s *SessionStore) ResolveOrCreate(token string) string {
	if _, err := uuid.Parse(token); err == nil && token != "" {
		return token
	}
	return uuid.NewString()
}

// Get returns the session entry for token.
func (s *SessionStore) Get(token string) (domain.SessionEntry, bool) {
	if token == "" {
		return domain.SessionEntry{}, false
	}
	return s.store.Get(token)
}

// Put replaces the session's active document.
func (s *SessionStore) Put(token, documentID, fullText string) {
	s.store.Put(token, domain.SessionEntry{
		DocumentID: documentID,
		FullText:   fullText,
		UpdatedAt:  s.now().UTC(),
	})
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	return s.store.Len()
}
