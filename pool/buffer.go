// File: pool/buffer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import (
	"sync"

	"github.com/momentics/hioload-tcp/api"
)

// Buffer is a pool-backed api.Buffer. Slices share the root's storage and its
// single release.
type Buffer struct {
	mu       sync.Mutex
	root     *Buffer // nil when this is the root
	view     []byte
	slab     []byte // root only: full-capacity backing storage
	pool     *Pool  // root only
	released bool   // root only
}

// Bytes returns a view of the current buffer data, nil after Release.
func (b *Buffer) Bytes() []byte {
	r := b.rootOf()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return nil
	}
	return b.view
}

// Slice produces a sub-buffer in O(1) sharing the root's storage.
// Returns nil on an out-of-range request or a released buffer.
func (b *Buffer) Slice(from, to int) api.Buffer {
	r := b.rootOf()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released || from < 0 || to > len(b.view) || from > to {
		return nil
	}
	return &Buffer{root: r, view: b.view[from:to]}
}

// Release returns the backing slab to the pool exactly once.
func (b *Buffer) Release() {
	r := b.rootOf()
	r.mu.Lock()
	if r.released {
		r.mu.Unlock()
		return
	}
	r.released = true
	slab := r.slab
	p := r.pool
	r.slab = nil
	r.view = nil
	r.mu.Unlock()
	if p != nil {
		p.put(slab)
	}
}

// Copy returns a deep copy of the buffer contents, nil after Release.
func (b *Buffer) Copy() []byte {
	src := b.Bytes()
	if src == nil {
		return nil
	}
	out := make([]byte, len(src))
	copy(out, src)
	return out
}

func (b *Buffer) rootOf() *Buffer {
	if b.root != nil {
		return b.root
	}
	return b
}
