package cache

import "sync/atomic"

// listNode is an element of the recency list. It carries the key (not
// the value; the value lives in the map record) so evictions can erase
// the right map entry after unlinking.
//
// Ownership is shared between the map record and any in-flight
// operation that extracted the node from it; the garbage collector
// reclaims the node once the last holder drops it.
//
// prev/next are raw cursors into the list, including to the two
// sentinels. They are read and written only while holding the cache's
// list mutex. The linked flag is the membership tag: the source
// implementation encoded "not in list" with a poison back-pointer, here
// it is an explicit atomic so Find and Erase can double-check
// membership without taking the mutex first. Transitions happen only
// under the list mutex.
type listNode[K comparable] struct {
	prev, next *listNode[K]
	key        K
	linked     atomic.Bool
}

// append links n in front of the tail sentinel (MRU end) and marks it
// linked. Caller holds the list mutex.
func (c *cache[K, V]) append(n *listNode[K]) {
	last := c.tail.prev

	n.next = &c.tail
	n.prev = last

	c.tail.prev = n
	last.next = n

	n.linked.Store(true)
}

// unlink splices n out of the list and clears the linked flag. The
// prev/next cursors are left dangling, as the node is either relinked
// immediately (promotion) or dropped. Caller holds the list mutex.
// Idempotence per link event is guaranteed by callers re-checking the
// linked flag under the mutex before unlinking.
func (c *cache[K, V]) unlink(n *listNode[K]) {
	prev := n.prev
	next := n.next
	prev.next = next
	next.prev = prev

	n.linked.Store(false)
}
