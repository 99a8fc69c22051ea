package cache

import (
	"sync"

	"github.com/vsdmars/lruc/internal/cmap"
	"github.com/vsdmars/lruc/internal/util"
)

// record is the map entry: the stored value plus the shared handle to
// the key's recency-list node.
type record[K comparable, V any] struct {
	val  V
	node *listNode[K]
}

// cache is the concrete LRU cache. Two locks exist: the map's shard
// locks (inside cmap) and listMu. Neither is ever held while acquiring
// the other.
type cache[K comparable, V any] struct {
	// listMu guards head/tail and every node's prev/next/linked
	// transition. head.next is the LRU end, tail.prev the MRU end.
	listMu sync.Mutex
	head   listNode[K] // sentinel before the LRU end
	tail   listNode[K] // sentinel after the MRU end

	m *cmap.Map[K, record[K, V]]

	// size is the authoritative entry estimate used for capacity
	// checks. Eventually consistent with the map's cardinality.
	size util.PaddedAtomicInt64

	capacity int
	metrics  Metrics

	// hot counters on separate cache lines to avoid false sharing
	_      util.CacheLinePad
	hits   util.PaddedAtomicInt64
	misses util.PaddedAtomicInt64
	evicts util.PaddedAtomicUint64
}

// New constructs a Cache with the provided Options.
// Panics if Capacity <= 0. Defaults:
//   - nil Hasher   -> 64-bit FNV-1a
//   - ShardHint<=0 -> auto (≈ 8*GOMAXPROCS, power of two)
//   - nil Metrics  -> NoopMetrics
func New[K comparable, V any](opt Options[K, V]) Cache[K, V] {
	if opt.Capacity <= 0 {
		panic("cache: Capacity must be > 0")
	}
	if opt.Hasher == nil {
		opt.Hasher = util.Fnv64a[K]
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}

	c := &cache[K, V]{
		m:        cmap.New[K, record[K, V]](opt.ShardHint, opt.Hasher),
		capacity: opt.Capacity,
		metrics:  opt.Metrics,
	}
	c.head.next = &c.tail
	c.tail.prev = &c.head
	return c
}

// ---- Cache[K,V] implementation ----

// Find looks k up in the map, copies the value into ac under the shard
// read lock, releases that lock, then try-locks the list mutex to
// promote the node to MRU. A failed try-lock skips the promotion
// silently; the find still succeeds.
func (c *cache[K, V]) Find(ac *ConstAccessor[K, V], k K) bool {
	ac.ok = false
	if !c.m.Find(&ac.ma, k) {
		c.misses.Add(1)
		c.metrics.Miss()
		return false
	}

	rec := ac.ma.Value()
	ac.val = rec.val
	ac.ok = true
	n := rec.node
	// Value copied and node handle taken; drop the shard read lock
	// before touching the list so the two locks never nest.
	ac.ma.Release()

	if c.listMu.TryLock() {
		if n.linked.Load() {
			c.unlink(n)
			c.append(n)
		}
		c.listMu.Unlock()
	}

	c.hits.Add(1)
	c.metrics.Hit()
	return true
}

// Insert stores k→v if absent and returns true; a duplicate key returns
// false with the existing value untouched.
//
// Bound enforcement is two-phase: a pre-link eviction when the size
// snapshot already sits at capacity, and a CAS-guarded post-link
// correction for inserts that raced past the snapshot. The CAS ensures
// exactly one of the racing threads performs the extra eviction.
func (c *cache[K, V]) Insert(k K, v V) bool {
	n := &listNode[K]{key: k}

	// Map insert under the shard write lock; released on return.
	if !c.m.Insert(k, record[K, V]{val: v, node: n}) {
		return false
	}

	popped := false
	if c.size.Load() >= int64(c.capacity) {
		c.popFront()
		popped = true
	}

	c.listMu.Lock()
	c.append(n)
	c.listMu.Unlock()

	if !popped {
		if sz := c.size.Add(1); sz > int64(c.capacity) {
			if c.size.CompareAndSwap(sz, sz-1) {
				c.popFront()
			}
			// CAS failure means another racing insert already took
			// responsibility for the over-commit.
		}
	}

	c.metrics.Size(int(c.size.Load()))
	return true
}

// Erase removes k and returns the number of entries removed (0 or 1).
func (c *cache[K, V]) Erase(k K) int {
	var ac cmap.ConstAccessor[K, record[K, V]]
	if !c.m.Find(&ac, k) {
		return 0
	}
	n := ac.Value().node
	ac.Release()

	// Double-checked unlink: the lock-free read avoids taking the list
	// mutex for nodes a concurrent popFront already unlinked.
	if n.linked.Load() {
		c.listMu.Lock()
		if n.linked.Load() {
			c.unlink(n)
			c.size.Add(-1)
		}
		c.listMu.Unlock()
	}

	// Map erase happens regardless of whether the unlink did work, and
	// always outside the list mutex.
	c.m.Erase(k)
	c.metrics.Size(int(c.size.Load()))
	return 1
}

// Clear resets the cache to empty. NOT thread-safe: the caller
// guarantees no concurrent access.
func (c *cache[K, V]) Clear() {
	c.m.Clear()
	c.head.next = &c.tail
	c.tail.prev = &c.head
	c.size.Store(0)
	c.metrics.Size(0)
}

// Size returns the current entry count estimate.
func (c *cache[K, V]) Size() int { return int(c.size.Load()) }

// Capacity returns the entry capacity set at construction.
func (c *cache[K, V]) Capacity() int { return c.capacity }

// Stats returns a snapshot of the hit/miss/eviction counters.
func (c *cache[K, V]) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evicts.Load(),
	}
}

// ---- internals ----

// popFront evicts the current LRU entry: unlink head.next under the
// list mutex, release the mutex, then erase that key from the map under
// its own shard write lock. The list mutex is never held across the map
// erase. An empty list makes this a no-op.
func (c *cache[K, V]) popFront() {
	c.listMu.Lock()
	candidate := c.head.next
	if candidate == &c.tail {
		c.listMu.Unlock()
		return
	}
	c.unlink(candidate)
	c.listMu.Unlock()

	c.m.Erase(candidate.key)
	c.evicts.Add(1)
	c.metrics.Evict()
}
