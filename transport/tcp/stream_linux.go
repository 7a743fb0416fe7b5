//go:build linux
// +build linux

// File: transport/tcp/stream_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Nonblocking stream: edge-triggered reads drained until EAGAIN, write queue
// flushed on writability, two-phase shutdown→close teardown. All methods and
// internal handlers run on the loop goroutine; only RemoteAddr is free.

package tcp

import (
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-tcp/api"
	"github.com/momentics/hioload-tcp/reactor"
)

type pendingWrite struct {
	data []byte
	off  int
	done func(error)
}

// stream is the Linux api.Stream implementation.
type stream struct {
	sub    *substrate
	fd     int
	remote string

	onData  func(api.Buffer)
	onClose func(error)

	wq           []pendingWrite
	registered   bool
	interest     reactor.Interest
	readEnded    bool
	shuttingDown bool
	shutdownDone func(error)
	closed       bool
}

// BeginRead implements api.Stream.BeginRead.
func (st *stream) BeginRead(onData func(api.Buffer), onClose func(err error)) error {
	if st.closed {
		return api.ErrStreamClosed
	}
	st.onData = onData
	st.onClose = onClose
	// Registering reports existing readiness as an initial edge, so chunks
	// that arrived before arming are not lost.
	st.update(st.interest | reactor.Readable)
	return nil
}

// Write implements api.Stream.Write.
func (st *stream) Write(p []byte, onComplete func(err error)) error {
	if st.closed || st.shuttingDown {
		return api.ErrStreamClosed
	}
	if len(st.wq) == 0 {
		n, err := st.writeRaw(p)
		if err != nil {
			st.complete(onComplete, err)
			return nil
		}
		if n == len(p) {
			st.complete(onComplete, nil)
			return nil
		}
		st.wq = append(st.wq, pendingWrite{data: p, off: n, done: onComplete})
	} else {
		st.wq = append(st.wq, pendingWrite{data: p, done: onComplete})
	}
	st.update(st.interest | reactor.Writable)
	return nil
}

// Shutdown implements api.Stream.Shutdown: pending writes flush first, then
// the write side is half-closed.
func (st *stream) Shutdown(onComplete func(err error)) {
	if st.closed || st.shuttingDown {
		st.complete(onComplete, api.ErrStreamClosed)
		return
	}
	st.shuttingDown = true
	st.shutdownDone = onComplete
	if len(st.wq) == 0 {
		st.finishShutdown()
	}
}

// Close implements api.Stream.Close.
func (st *stream) Close(onComplete func()) {
	if st.closed {
		if onComplete != nil {
			st.sub.lp.Post(onComplete)
		}
		return
	}
	st.closed = true
	for _, w := range st.wq {
		st.complete(w.done, api.ErrStreamClosed)
	}
	st.wq = nil
	if st.registered {
		_ = st.sub.r.Remove(st.fd)
		st.registered = false
	}
	_ = unix.Close(st.fd)
	st.sub.mu.Lock()
	delete(st.sub.streams, st.fd)
	st.sub.mu.Unlock()
	if onComplete != nil {
		st.sub.lp.Post(onComplete)
	}
}

// RemoteAddr implements api.Stream.RemoteAddr.
func (st *stream) RemoteAddr() string { return st.remote }

// readReady drains the socket until EAGAIN, one pooled chunk per read.
func (st *stream) readReady() {
	for {
		if st.onData == nil || st.readEnded || st.closed {
			return
		}
		buf := st.sub.bp.Get(st.sub.readSize)
		n, err := unix.Read(st.fd, buf.Bytes())
		if err == unix.EINTR {
			buf.Release()
			continue
		}
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			buf.Release()
			return
		}
		if err != nil {
			buf.Release()
			st.endRead(err)
			return
		}
		if n == 0 {
			buf.Release()
			st.endRead(nil)
			return
		}
		// Ownership of the slab moves to the chunk and on to the callee.
		st.onData(buf.Slice(0, n))
	}
}

// endRead delivers the one-shot close notification. err nil means EOF.
func (st *stream) endRead(err error) {
	st.readEnded = true
	st.update(st.interest &^ reactor.Readable)
	cb := st.onClose
	st.onClose = nil
	if cb != nil {
		cb(err)
	}
}

// flushWrites drains the write queue while the socket accepts data.
func (st *stream) flushWrites() {
	for len(st.wq) > 0 {
		w := &st.wq[0]
		var werr error
		for w.off < len(w.data) {
			n, err := st.writeChunk(w.data[w.off:])
			if err == errWouldBlock {
				return
			}
			if err != nil {
				werr = err
				break
			}
			w.off += n
		}
		st.complete(w.done, werr)
		st.wq = st.wq[1:]
	}
	st.update(st.interest &^ reactor.Writable)
	if st.shuttingDown {
		st.finishShutdown()
	}
}

var errWouldBlock = unix.EAGAIN

// writeRaw writes as much of p as the socket accepts; EAGAIN yields a short
// count, not an error.
func (st *stream) writeRaw(p []byte) (int, error) {
	total := 0
	for total < len(p) {
		n, err := st.writeChunk(p[total:])
		if err == errWouldBlock {
			return total, nil
		}
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (st *stream) writeChunk(p []byte) (int, error) {
	for {
		n, err := unix.Write(st.fd, p)
		if err == unix.EINTR {
			continue
		}
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return 0, errWouldBlock
		}
		return n, err
	}
}

func (st *stream) finishShutdown() {
	err := unix.Shutdown(st.fd, unix.SHUT_WR)
	cb := st.shutdownDone
	st.shutdownDone = nil
	st.complete(cb, err)
}

// complete schedules a completion callback as its own loop job.
func (st *stream) complete(done func(error), err error) {
	if done == nil {
		return
	}
	st.sub.lp.Post(func() { done(err) })
}

// update reconciles reactor registration with the wanted interest set.
func (st *stream) update(interest reactor.Interest) {
	if st.closed {
		return
	}
	if !st.registered {
		if err := st.sub.r.Add(st.fd, interest); err == nil {
			st.registered = true
			st.interest = interest
		}
		return
	}
	if interest == st.interest {
		return
	}
	if err := st.sub.r.Modify(st.fd, interest); err == nil {
		st.interest = interest
	}
}
