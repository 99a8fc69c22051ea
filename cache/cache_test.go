package cache

import (
	"strconv"
	"testing"

	"golang.org/x/sync/errgroup"
)

// keys returns the set of keys currently visible through Find.
func keys(c Cache[int, string], universe int) map[int]bool {
	present := make(map[int]bool)
	var ac ConstAccessor[int, string]
	for k := 0; k < universe; k++ {
		if c.Find(&ac, k) {
			present[k] = true
		}
	}
	return present
}

// Basic Insert/Find/Erase semantics. Insert is insert-only: a duplicate
// key fails and leaves the stored value untouched.
func TestCache_InsertFindErase(t *testing.T) {
	t.Parallel()

	c := New[string, int](Options[string, int]{Capacity: 8})

	if !c.Insert("a", 1) {
		t.Fatal("Insert a=1 must be true")
	}
	if c.Insert("a", 2) {
		t.Fatal("Insert duplicate must be false")
	}

	var ac ConstAccessor[string, int]
	if !c.Find(&ac, "a") {
		t.Fatal("Find a must hit")
	}
	if ac.Empty() || *ac.Value() != 1 {
		t.Fatalf("duplicate Insert must not update: want 1, got %d", *ac.Value())
	}

	if got := c.Erase("a"); got != 1 {
		t.Fatalf("Erase present key: want 1, got %d", got)
	}
	if c.Find(&ac, "a") {
		t.Fatal("a must be absent after Erase")
	}
	if got := c.Erase("a"); got != 0 {
		t.Fatalf("Erase absent key: want 0, got %d", got)
	}
	if c.Size() != 0 {
		t.Fatalf("Size after erase: want 0, got %d", c.Size())
	}
}

// End-to-end LRU scenario: capacity 3, touch key 1, insert key 4.
// Key 2 (the least recently used) is the eviction victim.
func TestCache_EvictionLRU(t *testing.T) {
	t.Parallel()

	c := New[int, string](Options[int, string]{Capacity: 3})

	c.Insert(1, "a")
	c.Insert(2, "b")
	c.Insert(3, "c")

	var ac ConstAccessor[int, string]
	if !c.Find(&ac, 1) { // promote 1 to MRU
		t.Fatal("expect hit for 1")
	}
	c.Insert(4, "d")

	present := keys(c, 10)
	for _, want := range []int{1, 3, 4} {
		if !present[want] {
			t.Fatalf("key %d must survive, present=%v", want, present)
		}
	}
	if present[2] {
		t.Fatal("key 2 must be evicted")
	}
	if c.Size() != 3 {
		t.Fatalf("Size: want 3, got %d", c.Size())
	}
}

// LRU ordering with a full capacity-N cache: touching k1 shifts the
// victim to k2.
func TestCache_PromotionShiftsVictim(t *testing.T) {
	t.Parallel()

	const n = 4
	c := New[int, int](Options[int, int]{Capacity: n})
	for k := 1; k <= n; k++ {
		c.Insert(k, k)
	}

	var ac ConstAccessor[int, int]
	if !c.Find(&ac, 1) {
		t.Fatal("expect hit for k1")
	}
	c.Insert(n+1, n+1)

	if c.Find(&ac, 2) {
		t.Fatal("k2 must be the evicted key")
	}
	if !c.Find(&ac, 1) {
		t.Fatal("k1 must survive (promoted)")
	}
}

// Capacity-1 cache: the second insert evicts the first.
func TestCache_CapacityOne(t *testing.T) {
	t.Parallel()

	c := New[string, string](Options[string, string]{Capacity: 1})

	c.Insert("a", "1")
	c.Insert("b", "2")

	var ac ConstAccessor[string, string]
	if c.Find(&ac, "a") {
		t.Fatal("a must be evicted")
	}
	if !c.Find(&ac, "b") || *ac.Value() != "2" {
		t.Fatal("b must be present")
	}
	if c.Size() != 1 {
		t.Fatalf("Size: want 1, got %d", c.Size())
	}
}

// An explicit Erase frees a slot; the next insert must not trigger an
// extra eviction.
func TestCache_EraseFreesSlot(t *testing.T) {
	t.Parallel()

	c := New[int, string](Options[int, string]{Capacity: 5})
	for k := 1; k <= 5; k++ {
		c.Insert(k, strconv.Itoa(k))
	}

	if got := c.Erase(3); got != 1 {
		t.Fatalf("Erase(3): want 1, got %d", got)
	}
	c.Insert(6, "6")

	present := keys(c, 10)
	for _, want := range []int{1, 2, 4, 5, 6} {
		if !present[want] {
			t.Fatalf("key %d must be present, present=%v", want, present)
		}
	}
	if c.Size() != 5 {
		t.Fatalf("Size: want 5, got %d", c.Size())
	}
	if ev := c.Stats().Evictions; ev != 0 {
		t.Fatalf("no eviction expected beyond the explicit erase, got %d", ev)
	}
}

// Clear resets map, list, and size; the cache is reusable afterwards.
func TestCache_Clear(t *testing.T) {
	t.Parallel()

	c := New[int, int](Options[int, int]{Capacity: 4})
	for k := 0; k < 4; k++ {
		c.Insert(k, k)
	}

	c.Clear()

	if c.Size() != 0 {
		t.Fatalf("Size after Clear: want 0, got %d", c.Size())
	}
	var ac ConstAccessor[int, int]
	for k := 0; k < 4; k++ {
		if c.Find(&ac, k) {
			t.Fatalf("key %d must be gone after Clear", k)
		}
	}

	if !c.Insert(9, 9) {
		t.Fatal("Insert after Clear must succeed")
	}
	if !c.Find(&ac, 9) || *ac.Value() != 9 {
		t.Fatal("Find after Clear+Insert must hit")
	}
}

// Accessor contract: empty before any hit, filled on hit, emptied again
// on miss, Release idempotent.
func TestCache_AccessorSemantics(t *testing.T) {
	t.Parallel()

	c := New[string, string](Options[string, string]{Capacity: 2})
	c.Insert("k", "v")

	var ac ConstAccessor[string, string]
	if !ac.Empty() {
		t.Fatal("fresh accessor must be empty")
	}

	if !c.Find(&ac, "k") {
		t.Fatal("expect hit")
	}
	if ac.Empty() || *ac.Value() != "v" {
		t.Fatalf("accessor must hold the copied value, got %q", *ac.Value())
	}
	ac.Release()
	ac.Release() // second release is a no-op
	if *ac.Value() != "v" {
		t.Fatal("the copy must outlive Release")
	}

	if c.Find(&ac, "absent") {
		t.Fatal("expect miss")
	}
	if !ac.Empty() {
		t.Fatal("accessor must be empty after a miss")
	}
}

// Stats counters track hits, misses, and evictions.
func TestCache_Stats(t *testing.T) {
	t.Parallel()

	c := New[int, int](Options[int, int]{Capacity: 1})
	c.Insert(1, 1)

	var ac ConstAccessor[int, int]
	c.Find(&ac, 1) // hit
	c.Find(&ac, 2) // miss
	c.Insert(2, 2) // evicts 1

	st := c.Stats()
	if st.Hits != 1 || st.Misses != 1 || st.Evictions != 1 {
		t.Fatalf("stats: want {1 1 1}, got %+v", st)
	}
}

// Capacity must be positive.
func TestCache_PanicOnZeroCapacity(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Fatal("New with Capacity 0 must panic")
		}
	}()
	New[int, int](Options[int, int]{})
}

// Concurrent inserts of disjoint keys below capacity: every key must be
// visible afterwards and the size must be exact once quiescent.
func TestCache_ConcurrentDisjointInserts(t *testing.T) {
	t.Parallel()

	const (
		workers = 8
		perW    = 100
	)
	c := New[int, int](Options[int, int]{Capacity: workers * perW})

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		base := w * perW
		g.Go(func() error {
			for i := 0; i < perW; i++ {
				c.Insert(base+i, base+i)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	if c.Size() != workers*perW {
		t.Fatalf("Size: want %d, got %d", workers*perW, c.Size())
	}
	var ac ConstAccessor[int, int]
	for k := 0; k < workers*perW; k++ {
		if !c.Find(&ac, k) || *ac.Value() != k {
			t.Fatalf("key %d missing or wrong after concurrent inserts", k)
		}
	}
}
