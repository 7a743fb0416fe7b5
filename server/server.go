// File: server/server.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Server orchestration: accept, message dispatch, broadcast, teardown.

package server

import (
	"fmt"
	"log/slog"

	"github.com/momentics/hioload-tcp/api"
	"github.com/momentics/hioload-tcp/control"
)

// Server owns the listening socket, the live-set registry, and the
// application hooks.
type Server struct {
	cfg     *Config
	sub     api.Substrate
	hooks   Hooks
	log     *slog.Logger
	metrics *control.Metrics

	ln     api.Listener
	reg    *registry
	nextID uint64
	closed bool
}

// NewServer binds the listening socket through the substrate. A bind failure
// is returned immediately; nothing is accepted until Start.
func NewServer(sub api.Substrate, cfg *Config, hooks Hooks, opts ...Option) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	s := &Server{cfg: cfg, sub: sub, hooks: hooks}
	for _, o := range opts {
		o(s)
	}
	if s.cfg.Capacity <= 0 {
		return nil, fmt.Errorf("capacity %d: %w", s.cfg.Capacity, api.ErrInvalidArgument)
	}
	s.log = s.cfg.Logger
	if s.log == nil {
		s.log = slog.Default()
	}
	s.metrics = s.cfg.Metrics
	s.reg = newRegistry(s.cfg.Capacity)

	ln, err := sub.Listen(s.cfg.Host, s.cfg.Port)
	if err != nil {
		return nil, fmt.Errorf("bind %s:%d: %w", s.cfg.Host, s.cfg.Port, err)
	}
	s.ln = ln
	return s, nil
}

// Start begins accepting connections. A listen failure is fatal to the
// caller; the server cannot recover from it.
func (s *Server) Start() error {
	s.log.Info("listening", "addr", s.ln.Addr(), "capacity", s.cfg.Capacity)
	return s.ln.BeginAccept(s.onAccept, s.onAcceptError)
}

// Addr returns the bound listen address.
func (s *Server) Addr() string { return s.ln.Addr() }

// Count returns the number of live connections. Loop goroutine only.
func (s *Server) Count() int { return s.reg.len() }

// Broadcast issues an independent write of text to every live connection.
// A failed write to one connection never suppresses the others; it is only
// reported through that write's completion. Loop goroutine only — call it
// from a hook, or route through the substrate's Post.
func (s *Server) Broadcast(text []byte) {
	if s.metrics != nil {
		s.metrics.BroadcastsTotal.Inc()
	}
	for slot, c := range s.reg.snapshot() {
		if c == nil {
			s.log.Warn("skipping uninitialized slot in broadcast", "slot", slot)
			continue
		}
		c := c
		err := c.stream.Write(text, func(err error) {
			if err != nil {
				s.writeFailed(c, "broadcast", err)
			}
		})
		if err != nil {
			s.writeFailed(c, "broadcast", err)
		}
	}
}

// Shutdown issues shutdown for every live connection and closes the
// listening handle. It returns once teardown has been issued, without
// waiting for individual shutdowns to complete; those are reaped
// asynchronously by the substrate. Safe from any goroutine.
func (s *Server) Shutdown() error {
	issued := make(chan struct{})
	ok := s.sub.Post(func() {
		defer close(issued)
		if s.closed {
			return
		}
		s.closed = true
		s.log.Info("server shutting down", "live", s.reg.len())
		// Teardown does not touch the registry, so iterating in place is safe.
		s.reg.forEach(func(_ int, c *Conn) { s.teardown(c) })
		if err := s.ln.Close(); err != nil {
			s.log.Warn("listener close failed", "err", err)
		}
	})
	if !ok {
		return api.ErrSubstrateClosed
	}
	<-issued
	return nil
}

// onAccept runs on the loop goroutine for each accepted transport.
func (s *Server) onAccept(st api.Stream) {
	if s.closed {
		st.Close(nil)
		return
	}
	if s.reg.full() {
		// Fail closed: the transport is dropped without a record, a hook, or
		// any notice to the peer.
		s.log.Warn("capacity exceeded, dropping connection",
			"remote", st.RemoteAddr(), "capacity", s.cfg.Capacity)
		if s.metrics != nil {
			s.metrics.RejectedTotal.Inc()
		}
		st.Close(nil)
		return
	}

	c := &Conn{id: s.nextID, srv: s, stream: st, remote: st.RemoteAddr(), state: StateConnecting}
	s.nextID++
	if err := s.reg.insert(c); err != nil {
		// Unreachable after the full() check; keep the transport from leaking.
		st.Close(nil)
		return
	}
	c.state = StateActive
	if s.metrics != nil {
		s.metrics.AcceptedTotal.Inc()
		s.metrics.ConnectionsActive.Inc()
	}
	s.log.Info("client connected", "id", c.id, "remote", c.remote, "total", s.reg.len())
	if s.hooks.OnConnect != nil {
		s.hooks.OnConnect(c, s.reg.len())
	}

	if err := st.BeginRead(
		func(buf api.Buffer) { s.onData(c, buf) },
		func(err error) { s.onStreamClosed(c, err) },
	); err != nil {
		s.log.Error("arming reads failed", "id", c.id, "err", err)
		s.disconnect(c)
	}
}

func (s *Server) onAcceptError(err error) {
	// The failed attempt is abandoned; accepting continues.
	s.log.Error("accept failed", "err", err)
}

// onData packages one inbound chunk and dispatches it to the message hook.
func (s *Server) onData(c *Conn, buf api.Buffer) {
	if c.state != StateActive || s.hooks.OnMessage == nil {
		buf.Release()
		return
	}
	if s.metrics != nil {
		s.metrics.MessagesTotal.Inc()
	}
	s.hooks.OnMessage(&Message{conn: c, buf: buf}, s.respond)
}

// respond is the one-shot continuation handed to the message hook.
func (s *Server) respond(m *Message, response []byte) error {
	if !m.consume() {
		return api.ErrResponderConsumed
	}
	if !s.sub.Post(func() {
		c := m.conn
		if c.state == StateActive {
			err := c.stream.Write(response, func(err error) {
				if err != nil {
					s.writeFailed(c, "response", err)
				}
			})
			if err != nil {
				s.writeFailed(c, "response", err)
			}
		}
		m.buf.Release()
	}) {
		// Substrate is gone; still release the payload.
		m.buf.Release()
		return api.ErrSubstrateClosed
	}
	return nil
}

// onStreamClosed handles read error or EOF. Both trigger the same disconnect
// sequence; only the logging differs.
func (s *Server) onStreamClosed(c *Conn, err error) {
	if c.state != StateActive {
		return
	}
	if err != nil {
		s.log.Warn("read failed, disconnecting", "id", c.id, "err", err)
	} else {
		s.log.Info("client disconnected", "id", c.id)
	}
	s.disconnect(c)
}

// disconnect runs the Disconnecting transition: registry compaction and the
// disconnect hook fire exactly once, before the transport shutdown is
// issued, so later broadcasts cannot target the stale slot.
func (s *Server) disconnect(c *Conn) {
	c.state = StateDisconnecting
	s.reg.remove(c)
	if s.metrics != nil {
		s.metrics.ConnectionsActive.Dec()
		s.metrics.DisconnectsTotal.Inc()
	}
	if s.hooks.OnDisconnect != nil {
		s.hooks.OnDisconnect(c, s.reg.len())
	}
	s.teardown(c)
}

// teardown drives shutdown→close→closed for a connection already out of the
// live set (or being abandoned by server shutdown).
func (s *Server) teardown(c *Conn) {
	c.state = StateDisconnecting
	c.stream.Shutdown(func(err error) {
		if err != nil {
			s.log.Warn("shutdown failed", "id", c.id, "err", err)
		}
		c.state = StateClosing
		c.stream.Close(func() {
			c.state = StateClosed
			s.log.Debug("connection closed", "id", c.id)
		})
	})
}

func (s *Server) writeFailed(c *Conn, kind string, err error) {
	if s.metrics != nil {
		s.metrics.WriteErrorsTotal.Inc()
	}
	s.log.Warn("write failed", "kind", kind, "id", c.id, "err", err)
}
