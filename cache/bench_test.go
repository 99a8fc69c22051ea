package cache

import (
	"math/rand"
	"strconv"
	"sync/atomic"
	"testing"
)

// benchmarkMix exercises a find/insert mix against a warm cache.
// RunParallel spawns GOMAXPROCS goroutines; each reuses one accessor so
// the read path stays allocation-free. String keys include
// strconv/concat costs, which is fine for an end-to-end benchmark.
func benchmarkMix(b *testing.B, readsPct int) {
	c := New[string, string](Options[string, string]{
		Capacity: 100_000,
	})

	// Preload half the capacity to get a realistic hit-rate.
	for i := 0; i < 50_000; i++ {
		c.Insert("k:"+strconv.Itoa(i), "v")
	}

	b.ReportAllocs()
	b.ResetTimer()

	var seed int64 = 1
	keyMask := (1 << 16) - 1 // hot keyspace (power of two for fast &-mask)

	b.RunParallel(func(pb *testing.PB) {
		r := rand.New(rand.NewSource(atomic.AddInt64(&seed, 1)))
		var ac ConstAccessor[string, string]
		i := 0
		for pb.Next() {
			k := "k:" + strconv.Itoa(i&keyMask)
			if r.Intn(100) < readsPct {
				c.Find(&ac, k)
			} else {
				c.Insert(k, "v")
			}
			i++
		}
	})
}

func BenchmarkCache_90r10w(b *testing.B) { benchmarkMix(b, 90) }
func BenchmarkCache_50r50w(b *testing.B) { benchmarkMix(b, 50) }

// benchmarkMixInt is the same workload with int keys, removing
// strconv/alloc noise to expose the cache hot path.
func benchmarkMixInt(b *testing.B, readsPct int) {
	c := New[int, int](Options[int, int]{
		Capacity: 100_000,
	})

	for i := 0; i < 50_000; i++ {
		c.Insert(i, 1)
	}

	b.ReportAllocs()
	b.ResetTimer()

	var seed int64 = 1
	keyMask := (1 << 16) - 1

	b.RunParallel(func(pb *testing.PB) {
		r := rand.New(rand.NewSource(atomic.AddInt64(&seed, 1)))
		var ac ConstAccessor[int, int]
		i := 0
		for pb.Next() {
			k := i & keyMask
			if r.Intn(100) < readsPct {
				c.Find(&ac, k)
			} else {
				c.Insert(k, 1)
			}
			i++
		}
	})
}

func BenchmarkCache_IntKeys_90r10w(b *testing.B) { benchmarkMixInt(b, 90) }
func BenchmarkCache_IntKeys_50r50w(b *testing.B) { benchmarkMixInt(b, 50) }
