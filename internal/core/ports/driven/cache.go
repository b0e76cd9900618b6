package driven

// KeyValueStore is the backing store for process-lifetime caches.
// Eviction behaviour is fixed by the implementation's CachePolicy.
// Implementations must be safe for concurrent use.
type KeyValueStore[V any] interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (V, bool)

	// Put stores value under key, replacing any previous value.
	Put(key string, value V)

	// Keys returns the live keys.
	Keys() []string

	// Len returns the number of live entries.
	Len() int
}
