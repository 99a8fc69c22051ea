package util

import "runtime"

// ReasonableShardCount picks a practical default shard count for the
// concurrent map when the caller gives no hint. Heuristic:
// nextPow2(8*GOMAXPROCS), clamped to [1..256]. Eight shards per
// hardware thread keeps read-mostly workloads off each other's locks;
// the clamp keeps per-shard map overhead bounded on large machines.
func ReasonableShardCount() int {
	p := runtime.GOMAXPROCS(0)
	if p < 1 {
		p = 1
	}
	n := int(NextPow2(uint64(p * 8)))
	if n > 256 {
		n = 256
	}
	return n
}

// ShardIndex maps a 64-bit key hash to a shard index. The fast mask path
// applies when the shard count is a power of two (the constructors
// guarantee this); the modulo path keeps the function correct for
// arbitrary counts.
func ShardIndex(hash uint64, shards int) int {
	if shards <= 1 {
		return 0
	}
	if IsPowerOfTwo(uint64(shards)) {
		return int(hash & uint64(shards-1))
	}
	return int(hash % uint64(shards))
}
