package cache

// Metrics exposes cache-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
// Implementations must be safe for concurrent use.
type Metrics interface {
	Hit()
	Miss()
	Evict()
	Size(entries int)
}

// Options configures the cache. Zero values are safe except Capacity,
// which must be positive; defaults are applied in New():
//   - nil Hasher   => internal 64-bit FNV-1a
//   - ShardHint<=0 => auto (≈ 8*GOMAXPROCS, rounded to a power of two)
//   - nil Metrics  => NoopMetrics
type Options[K comparable, V any] struct {
	// Capacity is the entry count limit. Must be > 0; New panics
	// otherwise. The capacity cannot be changed after construction.
	Capacity int

	// ShardHint seeds the shard count of the underlying concurrent map.
	// More shards means less lock contention at a small memory cost.
	ShardHint int

	// Hasher maps keys to 64-bit hashes for shard selection. Must be
	// deterministic and must not panic for any key the caller uses.
	Hasher func(K) uint64

	// Metrics receives Hit/Miss/Evict/Size signals. Keep
	// implementations lightweight; Evict fires on the eviction path.
	Metrics Metrics
}
