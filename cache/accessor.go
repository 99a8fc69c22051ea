package cache

import "github.com/vsdmars/lruc/internal/cmap"

// ConstAccessor receives the result of a Find. Find copies the value
// out of the map while the shard read lock is held and drops the lock
// before returning, so after Find the accessor is a plain value holder:
// Value() can be used without blocking any writer.
//
// Release drops any residual map lock early and is idempotent; Find
// itself releases on both the hit and miss paths, so calling Release is
// only required if the accessor is abandoned mid-operation. Accessors
// are reusable across Find calls but must not be copied.
type ConstAccessor[K comparable, V any] struct {
	ma  cmap.ConstAccessor[K, record[K, V]]
	val V
	ok  bool
}

// Value returns a pointer to the copied value. Meaningful only when the
// preceding Find returned true.
func (a *ConstAccessor[K, V]) Value() *V { return &a.val }

// Empty reports whether the accessor holds a value.
func (a *ConstAccessor[K, V]) Empty() bool { return !a.ok }

// Release drops the underlying map lock if one is still held.
func (a *ConstAccessor[K, V]) Release() { a.ma.Release() }
