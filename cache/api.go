package cache

// Cache is a bounded LRU key/value store. All methods except Clear are
// safe for concurrent use by multiple goroutines.
//
// Typical operation cost is O(1) expected: one map access plus a
// constant amount of pointer fixes on the recency list.
type Cache[K comparable, V any] interface {
	// Find reports whether k is present. On hit a copy of the value is
	// placed in ac (readable via ac.Value() after Find returns) and the
	// entry is promoted to MRU on a best-effort basis: if the list
	// mutex cannot be taken without waiting, the promotion is skipped.
	Find(ac *ConstAccessor[K, V], k K) bool

	// Insert stores k→v only if k is absent. Returns false on a
	// duplicate key; the existing value is not updated. An insert that
	// pushes the cache past capacity evicts the LRU entry.
	Insert(k K, v V) bool

	// Erase removes k and returns the number of entries removed (0 or 1).
	Erase(k K) int

	// Clear removes every entry and resets the recency list and size
	// counter. NOT thread-safe; the caller guarantees no concurrent
	// access.
	Clear()

	// Size returns the current entry count. The value is an eventually
	// consistent estimate; it is exact once no operations are in flight.
	Size() int

	// Capacity returns the immutable entry capacity set at construction.
	Capacity() int

	// Stats returns a snapshot of the hit/miss/eviction counters.
	Stats() Stats
}

// Stats is a snapshot of the cache's hot counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions uint64
}
