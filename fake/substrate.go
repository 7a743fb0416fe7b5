// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake substrate for testing and development. Provides predictable,
// controllable accept/read/write/teardown behavior while delivering every
// callback through a real run loop, preserving the serialization the
// production substrate guarantees.

package fake

import (
	"fmt"
	"sync"

	"github.com/momentics/hioload-tcp/api"
	"github.com/momentics/hioload-tcp/loop"
	"github.com/momentics/hioload-tcp/pool"
)

// Substrate is a fake implementation of api.Substrate.
type Substrate struct {
	lp   *loop.Loop
	pool api.BufferPool

	mu        sync.Mutex
	listenErr error
	listeners []*Listener
}

// NewSubstrate creates a fake substrate with its run loop already started.
func NewSubstrate() *Substrate {
	s := &Substrate{
		lp:   loop.New(),
		pool: pool.NewPool(pool.DefaultChunkSize),
	}
	// A fresh loop cannot be running yet.
	_ = s.lp.Start()
	return s
}

// Listen implements api.Substrate.Listen.
func (s *Substrate) Listen(host string, port int) (api.Listener, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listenErr != nil {
		err := s.listenErr
		s.listenErr = nil
		return nil, err
	}
	l := &Listener{sub: s, addr: fmt.Sprintf("%s:%d", host, port)}
	s.listeners = append(s.listeners, l)
	return l, nil
}

// Post implements api.Substrate.Post.
func (s *Substrate) Post(fn func()) bool { return s.lp.Post(fn) }

// Pool implements api.Substrate.Pool.
func (s *Substrate) Pool() api.BufferPool { return s.pool }

// Shutdown stops the run loop after draining posted jobs.
func (s *Substrate) Shutdown() error {
	s.lp.Stop()
	return nil
}

// Do runs fn on the loop goroutine and waits for it; test synchronization
// helper.
func (s *Substrate) Do(fn func()) { s.lp.Do(fn) }

// LastListener returns the most recently bound listener, nil if none.
func (s *Substrate) LastListener() *Listener {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.listeners) == 0 {
		return nil
	}
	return s.listeners[len(s.listeners)-1]
}

// SetListenError makes the next Listen call fail with err.
func (s *Substrate) SetListenError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listenErr = err
}

// Listener is a fake implementation of api.Listener. Tests inject peers with
// Connect and accept failures with FailAccept.
type Listener struct {
	sub  *Substrate
	addr string

	mu       sync.Mutex
	onAccept func(api.Stream)
	onError  func(error)
	closed   bool
}

// BeginAccept implements api.Listener.BeginAccept.
func (l *Listener) BeginAccept(onAccept func(api.Stream), onError func(error)) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return api.ErrListenerClosed
	}
	l.onAccept = onAccept
	l.onError = onError
	return nil
}

// Close implements api.Listener.Close.
func (l *Listener) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}

// Addr implements api.Listener.Addr.
func (l *Listener) Addr() string { return l.addr }

// Closed reports whether Close has been called.
func (l *Listener) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

// Connect injects a new fake stream as if the substrate had accepted it, and
// waits for the accept callback to run.
func (l *Listener) Connect(remote string) *Stream {
	st := NewStream(l.sub, remote)
	l.sub.Do(func() {
		l.mu.Lock()
		cb := l.onAccept
		closed := l.closed
		l.mu.Unlock()
		if cb != nil && !closed {
			cb(st)
		}
	})
	return st
}

// FailAccept injects one failed accept attempt.
func (l *Listener) FailAccept(err error) {
	l.sub.Do(func() {
		l.mu.Lock()
		cb := l.onError
		l.mu.Unlock()
		if cb != nil {
			cb(err)
		}
	})
}
