// Package cache provides a thread-safe, bounded, Least-Recently-Used
// cache built from two structures: a sharded concurrent map with
// accessor-style read/write locks (key → value record), and a single
// mutex-guarded doubly linked recency list of key nodes.
//
// Design
//
//   - Lookups: Find copies the value out of the map under the shard's
//     read lock, releases that lock, then attempts an MRU promotion of
//     the key's list node with a try-lock. If the list mutex is busy
//     the promotion is skipped; the find still succeeds. Readers never
//     block on the recency list, which bounds Find tail latency at the
//     cost of occasionally stale ordering.
//
//   - Inserts: Insert is insert-only (a duplicate key fails without
//     updating the value). The map insert happens first under the
//     shard's write lock; the lock is released before the list is
//     touched. If the size counter already sits at capacity, one LRU
//     entry is evicted before the new node is linked, keeping peak
//     overshoot bounded. After linking, a CAS-guarded post-correction
//     handles inserts that raced past the pre-link check so exactly
//     one thread performs the extra eviction.
//
//   - Lock ordering: two locks exist, the map's shard locks and the
//     list mutex. Neither is ever held across an acquisition of the
//     other; every cross-structure sequence is map-then-release-then-
//     list or list-then-release-then-map.
//
//   - Size: an atomic counter, eventually consistent with the map's
//     cardinality. It may transiently exceed capacity by the number of
//     in-flight inserts but converges to <= capacity at quiescence.
//
//   - Metrics: Options.Metrics receives Hit/Miss/Evict/Size signals;
//     NoopMetrics is the default. Plug metrics/prom to export
//     Prometheus counters. Stats() exposes the raw hot counters.
//
// Basic usage
//
//	c := cache.New[string, string](cache.Options[string, string]{Capacity: 1024})
//	c.Insert("a", "1")
//
//	var ac cache.ConstAccessor[string, string]
//	if c.Find(&ac, "a") {
//	    v := *ac.Value() // copy made inside Find; no lock held here
//	    _ = v
//	}
//	c.Erase("a")
//
// # Thread-safety
//
// All methods except Clear are safe for concurrent use. Clear requires
// the caller to guarantee no concurrent access. Operations on distinct
// keys in different shards are fully concurrent; recency-list updates
// are not linearizable with respect to map operations — list state only
// affects eviction order, never lookup correctness.
package cache
