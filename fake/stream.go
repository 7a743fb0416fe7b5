// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake stream with injectable read/write errors and captured writes.

package fake

import (
	"sync"

	"github.com/momentics/hioload-tcp/api"
)

// Stream is a fake implementation of api.Stream.
type Stream struct {
	sub    *Substrate
	remote string

	mu           sync.Mutex
	onData       func(api.Buffer)
	onClose      func(error)
	writes       [][]byte
	writeErr     error
	closeDone    bool
	shutdownDone bool
}

// NewStream creates an unaccepted fake stream; tests normally obtain streams
// through Listener.Connect instead.
func NewStream(sub *Substrate, remote string) *Stream {
	return &Stream{sub: sub, remote: remote}
}

// BeginRead implements api.Stream.BeginRead.
func (st *Stream) BeginRead(onData func(api.Buffer), onClose func(err error)) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.closeDone {
		return api.ErrStreamClosed
	}
	st.onData = onData
	st.onClose = onClose
	return nil
}

// Write implements api.Stream.Write. The payload is captured unless a write
// error has been injected; the completion is delivered asynchronously on the
// loop either way.
func (st *Stream) Write(p []byte, onComplete func(err error)) error {
	st.mu.Lock()
	if st.closeDone {
		st.mu.Unlock()
		return api.ErrStreamClosed
	}
	err := st.writeErr
	if err == nil {
		buf := make([]byte, len(p))
		copy(buf, p)
		st.writes = append(st.writes, buf)
	}
	st.mu.Unlock()

	if onComplete != nil {
		st.sub.Post(func() { onComplete(err) })
	}
	return nil
}

// Shutdown implements api.Stream.Shutdown.
func (st *Stream) Shutdown(onComplete func(err error)) {
	st.mu.Lock()
	st.shutdownDone = true
	st.mu.Unlock()
	if onComplete != nil {
		st.sub.Post(func() { onComplete(nil) })
	}
}

// Close implements api.Stream.Close.
func (st *Stream) Close(onComplete func()) {
	st.mu.Lock()
	st.closeDone = true
	st.mu.Unlock()
	if onComplete != nil {
		st.sub.Post(onComplete)
	}
}

// RemoteAddr implements api.Stream.RemoteAddr.
func (st *Stream) RemoteAddr() string { return st.remote }

// PushData delivers one inbound chunk through the read callback and waits for
// the dispatch to complete.
func (st *Stream) PushData(p []byte) {
	st.sub.Do(func() {
		st.mu.Lock()
		cb := st.onData
		closed := st.closeDone
		st.mu.Unlock()
		if cb == nil || closed {
			return
		}
		buf := st.sub.pool.Get(len(p))
		copy(buf.Bytes(), p)
		cb(buf)
	})
}

// PeerClose simulates a graceful EOF from the peer.
func (st *Stream) PeerClose() { st.deliverClose(nil) }

// FailRead simulates a read error.
func (st *Stream) FailRead(err error) { st.deliverClose(err) }

func (st *Stream) deliverClose(err error) {
	st.sub.Do(func() {
		st.mu.Lock()
		cb := st.onClose
		st.onClose = nil
		st.mu.Unlock()
		if cb != nil {
			cb(err)
		}
	})
}

// SetWriteError makes subsequent writes complete with err.
func (st *Stream) SetWriteError(err error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.writeErr = err
}

// Writes returns all payloads captured so far.
func (st *Stream) Writes() [][]byte {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([][]byte, len(st.writes))
	copy(out, st.writes)
	return out
}

// ShutdownCalled reports whether Shutdown has been issued.
func (st *Stream) ShutdownCalled() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.shutdownDone
}

// CloseCalled reports whether Close has been issued.
func (st *Stream) CloseCalled() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.closeDone
}

// ReadArmed reports whether BeginRead has been issued.
func (st *Stream) ReadArmed() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.onData != nil
}
