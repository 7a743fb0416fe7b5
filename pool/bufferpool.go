// File: pool/bufferpool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Fixed-chunk buffer pool over sync.Pool. Requests larger than the chunk
// size fall back to plain allocation and are not pooled on release.

package pool

import (
	"sync"
	"sync/atomic"

	"github.com/momentics/hioload-tcp/api"
)

// DefaultChunkSize matches the substrate read size.
const DefaultChunkSize = 64 * 1024

// Pool is a sync.Pool-backed api.BufferPool with a single slab size class.
type Pool struct {
	chunk int
	slabs sync.Pool

	alloc atomic.Int64
	freed atomic.Int64
	inUse atomic.Int64
}

// NewPool creates a pool handing out slabs of chunkSize capacity.
func NewPool(chunkSize int) *Pool {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	p := &Pool{chunk: chunkSize}
	p.slabs.New = func() any { return make([]byte, chunkSize) }
	return p
}

// Get returns a buffer sized at least size bytes.
func (p *Pool) Get(size int) api.Buffer {
	if size <= 0 {
		size = p.chunk
	}
	var slab []byte
	if size <= p.chunk {
		slab = p.slabs.Get().([]byte)
	} else {
		slab = make([]byte, size)
	}
	p.alloc.Add(1)
	p.inUse.Add(1)
	b := &Buffer{slab: slab, pool: p}
	b.view = slab[:size]
	return b
}

// Stats exposes allocation accounting.
func (p *Pool) Stats() api.BufferPoolStats {
	return api.BufferPoolStats{
		TotalAlloc: p.alloc.Load(),
		TotalFree:  p.freed.Load(),
		InUse:      p.inUse.Load(),
	}
}

func (p *Pool) put(slab []byte) {
	p.freed.Add(1)
	p.inUse.Add(-1)
	if cap(slab) == p.chunk {
		p.slabs.Put(slab[:cap(slab)])
	}
}
