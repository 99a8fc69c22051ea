// Package intrusive implements a single-threaded hash table whose
// values carry their own bucket-chain linkage. The table allocates only
// the bucket array; it never owns, copies, or frees the values spliced
// into it. Callers manage node storage and lifetime.
//
// Every value type stored in a Table embeds a Hook, and the table is
// constructed with an accessor function that returns the hook of a
// given value:
//
//	type Session struct {
//	    intrusive.Hook[Session]
//	    ID   string
//	    Conn net.Conn
//	}
//
//	t := intrusive.New[string, Session](false,
//	    func(s *Session) *intrusive.Hook[Session] { return &s.Hook },
//	    nil) // nil hash => FNV-1a
//
// Equality is by key hash alone: two keys with equal hashes are the
// same key as far as the table is concerned. Callers either use a hash
// strong enough to make collisions acceptable or validate returned
// nodes themselves. A zero hash is reserved to mean "not linked" and is
// rejected.
//
// The table is not safe for concurrent use; callers provide external
// synchronization.
package intrusive

import (
	"unsafe"

	"github.com/vsdmars/lruc/internal/util"
)

// DefaultBucketCount is used when Allocate is given no size hint.
// A prime close to 2048.
const DefaultBucketCount = 2053

// Hook carries the linkage a value needs to live in a Table: the next
// value in its bucket chain and the cached hash of its key. A zero
// cached hash means the value is not linked to any table. The fields
// are written only by the table.
type Hook[T any] struct {
	next    *T
	keyHash uint64
}

// NextInBucket returns the next value in the bucket chain, or nil if
// this is the last item or the value is not linked.
func (h *Hook[T]) NextInBucket() *T { return h.next }

// KeyHash returns the cached hash of the value's key; zero when not
// linked.
func (h *Hook[T]) KeyHash() uint64 { return h.keyHash }

// Linked reports whether the value is currently in a table.
func (h *Hook[T]) Linked() bool { return h.keyHash != 0 }

// Table is a keyed index over caller-owned values. Buckets are
// allocated lazily on first insert; the bucket count is the smallest
// prime >= the size hint.
type Table[K comparable, V any] struct {
	buckets  []*V
	hook     func(*V) *Hook[V]
	hash     func(K) uint64
	used     int
	allowDup bool
}

// New constructs an empty Table (no allocation until the first insert
// or an explicit Allocate). hook must return the Hook embedded in a
// value and must not be nil. A nil hash selects the internal 64-bit
// FNV-1a; whichever hasher is used must be deterministic, must not
// panic, and must never produce zero.
func New[K comparable, V any](allowDuplicateKeys bool, hook func(*V) *Hook[V], hash func(K) uint64) *Table[K, V] {
	if hook == nil {
		panic("intrusive: nil hook accessor")
	}
	if hash == nil {
		hash = util.Fnv64a[K]
	}
	return &Table[K, V]{hook: hook, hash: hash, allowDup: allowDuplicateKeys}
}

// Allocate sizes the bucket array to the smallest prime >= sizeHint
// (DefaultBucketCount when sizeHint <= 0). Idempotent: a no-op if the
// table is already allocated.
func (t *Table[K, V]) Allocate(sizeHint int) {
	if t.IsAllocated() {
		return
	}
	if sizeHint <= 0 {
		sizeHint = DefaultBucketCount
	}
	t.buckets = make([]*V, util.NextPrime(uint64(sizeHint)))
}

// IsAllocated reports whether the bucket array exists.
func (t *Table[K, V]) IsAllocated() bool { return len(t.buckets) != 0 }

// Clear unlinks every value (resetting its hook) but keeps the bucket
// array.
func (t *Table[K, V]) Clear() {
	if t.IsEmpty() {
		return
	}
	for i, item := range t.buckets {
		for item != nil {
			h := t.hook(item)
			next := h.next
			h.next = nil
			h.keyHash = 0
			item = next
		}
		t.buckets[i] = nil
	}
	t.used = 0
}

// Deallocate clears all chains and frees the bucket array. Calling it
// again afterwards is a no-op.
func (t *Table[K, V]) Deallocate() {
	if !t.IsAllocated() {
		return
	}
	t.Clear()
	t.buckets = nil
}

// IsEmpty reports whether no values are linked.
func (t *Table[K, V]) IsEmpty() bool { return t.used == 0 }

// Len returns the number of linked values.
func (t *Table[K, V]) Len() int { return t.used }

// BucketCount returns the number of allocated buckets.
func (t *Table[K, V]) BucketCount() int { return len(t.buckets) }

// MemoryBytes estimates the memory used by the table's own control
// structure (the bucket array; the values belong to the caller).
func (t *Table[K, V]) MemoryBytes() int {
	return len(t.buckets) * int(unsafe.Sizeof((*V)(nil)))
}

// SetAllowDuplicateKeys toggles whether Insert accepts keys whose hash
// already exists in the table.
func (t *Table[K, V]) SetAllowDuplicateKeys(allow bool) { t.allowDup = allow }

// AllowsDuplicateKeys reports the duplicate-keys flag.
func (t *Table[K, V]) AllowsDuplicateKeys() bool { return t.allowDup }

// Insert links value into the bucket chain for key, prepending in O(1).
// When duplicates are disallowed and the chain already holds an equal
// hash, Insert returns false and the table is unchanged.
//
// Contract violations panic: a nil value, a value already linked to a
// table, or a key whose hash is zero.
func (t *Table[K, V]) Insert(key K, value *V) bool {
	if value == nil {
		panic("intrusive: Insert with nil value")
	}
	h := t.hook(value)
	if h.Linked() {
		panic("intrusive: value is already linked to a hash table")
	}

	t.Allocate(0) // lazy, keeps any earlier explicit hint

	keyHash := t.hashOf(key)
	bucket := t.bucketOf(keyHash)

	if !t.allowDup {
		for item := t.buckets[bucket]; item != nil; item = t.hook(item).next {
			if t.hook(item).keyHash == keyHash {
				return false
			}
		}
	}

	// Prepend as the new head of the chain.
	h.keyHash = keyHash
	h.next = t.buckets[bucket]
	t.buckets[bucket] = value

	t.used++
	return true
}

// Find returns the first value in key's bucket chain whose cached hash
// matches, or nil. Runs without allocating, even on an unallocated
// table.
func (t *Table[K, V]) Find(key K) *V {
	if t.IsEmpty() {
		return nil
	}
	keyHash := t.hashOf(key)
	for item := t.buckets[t.bucketOf(keyHash)]; item != nil; item = t.hook(item).next {
		if t.hook(item).keyHash == keyHash {
			return item
		}
	}
	return nil
}

// FindAllMatching fills out with matching values in chain order, up to
// len(out), and returns the number written. Useful with duplicate keys
// enabled.
func (t *Table[K, V]) FindAllMatching(key K, out []*V) int {
	if t.IsEmpty() || len(out) == 0 {
		return 0
	}
	keyHash := t.hashOf(key)
	found := 0
	// Duplicate keys share the same bucket chain.
	for item := t.buckets[t.bucketOf(keyHash)]; item != nil; item = t.hook(item).next {
		if t.hook(item).keyHash == keyHash {
			out[found] = item
			found++
			if found == len(out) {
				break
			}
		}
	}
	return found
}

// CountAllMatching returns the number of values matching key. Never
// greater than one when duplicate keys are disallowed.
func (t *Table[K, V]) CountAllMatching(key K) int {
	if t.IsEmpty() {
		return 0
	}
	keyHash := t.hashOf(key)
	count := 0
	for item := t.buckets[t.bucketOf(keyHash)]; item != nil; item = t.hook(item).next {
		if t.hook(item).keyHash == keyHash {
			count++
		}
	}
	return count
}

// Remove unlinks the first value matching key, resets its hook, and
// returns it; nil if no match. The value itself is untouched beyond the
// hook reset.
func (t *Table[K, V]) Remove(key K) *V {
	if t.IsEmpty() {
		return nil
	}
	keyHash := t.hashOf(key)
	bucket := t.bucketOf(keyHash)

	var prev *V
	for item := t.buckets[bucket]; item != nil; {
		h := t.hook(item)
		if h.keyHash == keyHash {
			if prev != nil {
				t.hook(prev).next = h.next
			} else {
				t.buckets[bucket] = h.next
			}
			h.next = nil
			h.keyHash = 0
			t.used--
			return item
		}
		prev = item
		item = h.next
	}
	return nil
}

// RemoveAllMatching unlinks every value in key's bucket whose hash
// matches and returns how many were removed.
func (t *Table[K, V]) RemoveAllMatching(key K) int {
	if t.IsEmpty() {
		return 0
	}
	keyHash := t.hashOf(key)
	bucket := t.bucketOf(keyHash)

	removed := 0
	var prev *V
	for item := t.buckets[bucket]; item != nil; {
		h := t.hook(item)
		next := h.next
		if h.keyHash == keyHash {
			if prev != nil {
				t.hook(prev).next = next
			} else {
				t.buckets[bucket] = next
			}
			h.next = nil
			h.keyHash = 0
			t.used--
			removed++
		} else {
			prev = item
		}
		item = next
	}
	return removed
}

// hashOf computes key's hash and enforces the non-zero contract.
func (t *Table[K, V]) hashOf(key K) uint64 {
	keyHash := t.hash(key)
	if keyHash == 0 {
		panic("intrusive: zero key hash; zero is reserved for unlinked nodes")
	}
	return keyHash
}

func (t *Table[K, V]) bucketOf(keyHash uint64) int {
	return int(keyHash % uint64(len(t.buckets)))
}
