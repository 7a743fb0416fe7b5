// File: server/registry.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Fixed-capacity live set with O(1) insert and slot-swap removal. The live
// records always occupy conns[0..count) with no gaps, and every record's
// slot field equals its index. Loop goroutine only.

package server

import "github.com/momentics/hioload-tcp/api"

type registry struct {
	conns []*Conn
	count int
}

func newRegistry(capacity int) *registry {
	return &registry{conns: make([]*Conn, capacity)}
}

func (r *registry) full() bool { return r.count == len(r.conns) }

func (r *registry) len() int { return r.count }

// insert appends c at the first free slot.
func (r *registry) insert(c *Conn) error {
	if r.full() {
		return api.ErrCapacityExceeded
	}
	r.conns[r.count] = c
	c.slot = r.count
	r.count++
	return nil
}

// remove takes c out of the live set. Unless c occupies the last live slot,
// the current last record is relocated into c's slot and its slot field is
// updated; the live prefix stays contiguous at the cost of reordering.
// Callers must not rely on registry order being stable across removals.
func (r *registry) remove(c *Conn) {
	last := r.count - 1
	if c.slot < last {
		moved := r.conns[last]
		r.conns[c.slot] = moved
		moved.slot = c.slot
	}
	r.conns[last] = nil
	r.count--
	c.slot = -1
}

// forEach visits the current live set in slot order. Mutating the registry
// during iteration is undefined; snapshot first when removals may occur.
func (r *registry) forEach(fn func(slot int, c *Conn)) {
	for i := 0; i < r.count; i++ {
		fn(i, r.conns[i])
	}
}

// snapshot copies the live prefix so callers can iterate across mutations.
func (r *registry) snapshot() []*Conn {
	out := make([]*Conn, r.count)
	copy(out, r.conns[:r.count])
	return out
}
