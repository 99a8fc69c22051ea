// Package cmap implements a sharded concurrent map with accessor-style
// per-key locking. Each shard owns a plain map guarded by an RWMutex;
// a ConstAccessor returned by Find keeps the shard's read lock held
// until released, so the caller can read the entry without it being
// concurrently erased or replaced.
//
// The shard count is rounded up to a power of two so shard selection is
// a single mask of the key hash.
package cmap

import (
	"sync"

	"github.com/vsdmars/lruc/internal/util"
)

// Map is a sharded key/value map. All methods except Clear are safe for
// concurrent use. Operations on keys in different shards never contend.
type Map[K comparable, V any] struct {
	shards []*shard[K, V]
	hash   func(K) uint64
}

// shard is one partition: a plain map behind an RWMutex. The RWMutex is
// the "per-key lock" of the accessor contract at shard granularity.
type shard[K comparable, V any] struct {
	mu sync.RWMutex
	m  map[K]V

	// Keep each shard's hot lock word on its own cache line.
	_ util.CacheLinePad
}

// New constructs a Map. shardHint seeds the shard count (rounded up to a
// power of two, clamped to 256); a non-positive hint selects a default
// derived from GOMAXPROCS. hash must be deterministic and non-nil.
func New[K comparable, V any](shardHint int, hash func(K) uint64) *Map[K, V] {
	if hash == nil {
		panic("cmap: nil hash function")
	}
	n := shardHint
	if n <= 0 {
		n = util.ReasonableShardCount()
	} else {
		n = int(util.NextPow2(uint64(n)))
		if n > 256 {
			n = 256
		}
	}
	shards := make([]*shard[K, V], n)
	for i := range shards {
		shards[i] = &shard[K, V]{m: make(map[K]V)}
	}
	return &Map[K, V]{shards: shards, hash: hash}
}

// ConstAccessor is a read handle into the map. After a successful Find
// it holds a copy of the entry's value and the owning shard's read
// lock; Release drops the lock (idempotent, and safe on a missed or
// zero accessor). An accessor must not be copied while it holds a lock.
type ConstAccessor[K comparable, V any] struct {
	s   *shard[K, V] // non-nil while the read lock is held
	val V
	ok  bool
}

// Value returns a pointer to the copied value. Only meaningful after a
// successful Find; the pointer stays valid after Release.
func (a *ConstAccessor[K, V]) Value() *V { return &a.val }

// Empty reports whether the accessor holds no entry.
func (a *ConstAccessor[K, V]) Empty() bool { return !a.ok }

// Release drops the shard read lock if still held. Idempotent.
func (a *ConstAccessor[K, V]) Release() {
	if a.s != nil {
		a.s.mu.RUnlock()
		a.s = nil
	}
}

// Find looks up k. On hit it fills ac with a copy of the value and
// leaves the shard's read lock held until ac.Release(). On miss the
// lock is dropped before returning and ac is left empty.
func (m *Map[K, V]) Find(ac *ConstAccessor[K, V], k K) bool {
	ac.Release() // allow accessor reuse across calls
	ac.ok = false

	s := m.shardFor(k)
	s.mu.RLock()
	v, ok := s.m[k]
	if !ok {
		s.mu.RUnlock()
		return false
	}
	ac.s = s
	ac.val = v
	ac.ok = true
	return true
}

// Insert stores k→v only if k is absent, under the shard write lock.
// Returns false (and leaves the map unchanged) if k already exists.
func (m *Map[K, V]) Insert(k K, v V) bool {
	s := m.shardFor(k)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.m[k]; exists {
		return false
	}
	s.m[k] = v
	return true
}

// Erase removes k under the shard write lock. Returns whether an entry
// was removed.
func (m *Map[K, V]) Erase(k K) bool {
	s := m.shardFor(k)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.m[k]; !exists {
		return false
	}
	delete(s.m, k)
	return true
}

// Len returns the total entry count across shards. The value is a
// snapshot; concurrent writers may change it immediately.
func (m *Map[K, V]) Len() int {
	total := 0
	for _, s := range m.shards {
		s.mu.RLock()
		total += len(s.m)
		s.mu.RUnlock()
	}
	return total
}

// Clear drops every entry. Not safe to call concurrently with other
// operations; the caller serializes (mirrors the cache's Clear
// contract).
func (m *Map[K, V]) Clear() {
	for _, s := range m.shards {
		s.m = make(map[K]V)
	}
}

func (m *Map[K, V]) shardFor(k K) *shard[K, V] {
	h := m.hash(k)
	return m.shards[util.ShardIndex(h, len(m.shards))]
}
