// Package api
// Author: momentics <momentics@gmail.com>
//
// Pooled memory buffers for inbound chunks. Every read delivered by the
// substrate carries exactly one Buffer whose ownership passes to the
// receiver; releasing it returns the backing storage to the pool.

package api

// Buffer describes a resliceable, pool-backed memory region.
type Buffer interface {
	// Bytes returns a view of the current buffer data, nil after Release.
	Bytes() []byte

	// Slice produces a sub-buffer sharing storage in O(1). Releasing either
	// the parent or a slice releases the shared storage once.
	Slice(from, to int) Buffer

	// Release returns the underlying region to its pool. After Release the
	// buffer must not be used; further Bytes calls return nil.
	Release()

	// Copy returns a deep copy of the buffer contents as a standalone []byte.
	Copy() []byte
}

// BufferPool abstracts storage management for Buffers.
type BufferPool interface {
	// Get returns a buffer sized at least size bytes.
	Get(size int) Buffer

	// Stats exposes allocation accounting for observability.
	Stats() BufferPoolStats
}

// BufferPoolStats aggregates buffer allocation/reuse counters.
type BufferPoolStats struct {
	TotalAlloc int64
	TotalFree  int64
	InUse      int64
}
