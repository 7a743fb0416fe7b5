// File: pool/bufferpool_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool_test

import (
	"bytes"
	"testing"

	"github.com/momentics/hioload-tcp/pool"
)

func TestBufferReleaseOnce(t *testing.T) {
	p := pool.NewPool(128)
	b := p.Get(16)
	copy(b.Bytes(), "hello")

	b.Release()
	if b.Bytes() != nil {
		t.Error("Bytes() after Release is not nil")
	}
	if b.Copy() != nil {
		t.Error("Copy() after Release is not nil")
	}
	// Second release must be a no-op, not a double free.
	b.Release()

	st := p.Stats()
	if st.TotalFree != 1 {
		t.Errorf("TotalFree = %d, want 1", st.TotalFree)
	}
	if st.InUse != 0 {
		t.Errorf("InUse = %d, want 0", st.InUse)
	}
}

func TestBufferSliceSharesRelease(t *testing.T) {
	p := pool.NewPool(128)
	b := p.Get(8)
	copy(b.Bytes(), "deadbeef")

	s := b.Slice(0, 4)
	if s == nil {
		t.Fatal("Slice returned nil")
	}
	if !bytes.Equal(s.Bytes(), []byte("dead")) {
		t.Errorf("slice bytes = %q, want %q", s.Bytes(), "dead")
	}

	s.Release()
	if b.Bytes() != nil {
		t.Error("parent still accessible after slice release")
	}
	if p.Stats().TotalFree != 1 {
		t.Errorf("TotalFree = %d, want 1", p.Stats().TotalFree)
	}
}

func TestBufferSliceBounds(t *testing.T) {
	p := pool.NewPool(128)
	b := p.Get(4)
	if s := b.Slice(-1, 2); s != nil {
		t.Error("negative from accepted")
	}
	if s := b.Slice(0, 5); s != nil {
		t.Error("to beyond view accepted")
	}
	if s := b.Slice(3, 2); s != nil {
		t.Error("from > to accepted")
	}
	b.Release()
	if s := b.Slice(0, 1); s != nil {
		t.Error("Slice after Release accepted")
	}
}

func TestPoolOversizeRequest(t *testing.T) {
	p := pool.NewPool(64)
	b := p.Get(256)
	if got := len(b.Bytes()); got != 256 {
		t.Fatalf("len = %d, want 256", got)
	}
	b.Release()
	if st := p.Stats(); st.InUse != 0 {
		t.Errorf("InUse = %d, want 0", st.InUse)
	}
}
