package util

import (
	"sync/atomic"
	"unsafe"
)

// CacheLineSize is a reasonable default for current CPUs. The runtime's
// own constant is unexported; 64 works well in practice.
const CacheLineSize = 64

// CacheLinePad separates groups of hot fields into distinct cache lines
// to reduce false sharing.
type CacheLinePad struct{ _ [CacheLineSize]byte }

// PaddedAtomicInt64 is an atomic int64 padded to exactly one cache line.
// Used for counters that many goroutines update independently (size,
// hits, misses).
type PaddedAtomicInt64 struct {
	atomic.Int64
	_ [CacheLineSize - 8]byte
}

// PaddedAtomicUint64 is the uint64 counterpart.
type PaddedAtomicUint64 struct {
	atomic.Uint64
	_ [CacheLineSize - 8]byte
}

// Compile-time checks: each padded type must occupy exactly one line.
var (
	_ [CacheLineSize - int(unsafe.Sizeof(PaddedAtomicInt64{}))]byte
	_ [CacheLineSize - int(unsafe.Sizeof(PaddedAtomicUint64{}))]byte
)
