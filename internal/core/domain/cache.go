package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
	"time"
)

// CacheEntry records the result of ingesting one source.
type CacheEntry struct {
	// DocumentID is the indexed document.
	DocumentID string

	// Segments are the segment texts produced at ingestion time.
	Segments []string

	// CachedAt is when the entry was written.
	CachedAt time.Time
}

// SessionEntry holds the active document for one client session.
type SessionEntry struct {
	// DocumentID is the most recently uploaded document.
	DocumentID string

	// FullText is the extracted text of that document.
	FullText string

	// UpdatedAt is when the session was last written.
	UpdatedAt time.Time
}

// CacheStats summarises the ingestion caches.
type CacheStats struct {
	// CachedDocuments is the number of document cache entries.
	CachedDocuments int

	// Documents lists the cache keys.
	Documents []string

	// ActiveSessions is the number of live sessions.
	ActiveSessions int
}

// NormaliseSource canonicalises a source URL for cache keying.
// Scheme and host are lowercased and the fragment is dropped.
// Path and query are kept verbatim, including parameter order.
func NormaliseSource(source string) string {
	source = strings.TrimSpace(source)
	u, err := url.Parse(source)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return source
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	u.ForceQuery = false
	return u.String()
}

// SourceKey derives the document cache key for a source.
// It is the hex sha256 of the normalised source.
func SourceKey(source string) string {
	sum := sha256.Sum256([]byte(NormaliseSource(source)))
	return hex.EncodeToString(sum[:])
}
