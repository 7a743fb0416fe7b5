//go:build linux
// +build linux

// File: transport/tcp/substrate_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux substrate: listeners and streams over nonblocking fds, readiness via
// the epoll reactor, callbacks serialized on the run loop.

package tcp

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-tcp/api"
	"github.com/momentics/hioload-tcp/loop"
	"github.com/momentics/hioload-tcp/pool"
	"github.com/momentics/hioload-tcp/reactor"
)

// substrate is the Linux api.Substrate implementation.
type substrate struct {
	lp       *loop.Loop
	r        reactor.EventReactor
	bp       api.BufferPool
	log      *slog.Logger
	readSize int

	// mu guards the descriptor tables and the closed flag; everything else
	// on streams and listeners is loop-owned.
	mu        sync.Mutex
	streams   map[int]*stream
	listeners map[int]*listener
	closed    bool

	pollDone chan struct{}
}

// New creates the substrate and starts its run loop and poller goroutine.
func New(opts ...Option) (api.Substrate, error) {
	cfg := defaultOptions()
	for _, o := range opts {
		o(cfg)
	}
	r, err := reactor.NewReactor()
	if err != nil {
		return nil, err
	}
	s := &substrate{
		lp:        loop.New(),
		r:         r,
		bp:        cfg.pool,
		log:       cfg.logger,
		readSize:  cfg.readSize,
		streams:   make(map[int]*stream),
		listeners: make(map[int]*listener),
		pollDone:  make(chan struct{}),
	}
	if s.bp == nil {
		s.bp = pool.NewPool(s.readSize)
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	// A fresh loop cannot be running yet.
	_ = s.lp.Start()
	go s.poll()
	return s, nil
}

// Listen binds a nonblocking listening socket. Safe from any goroutine.
func (s *substrate) Listen(host string, port int) (api.Listener, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, api.ErrSubstrateClosed
	}
	s.mu.Unlock()

	ip := net.IPv4zero
	if host != "" {
		ip = net.ParseIP(host)
	}
	var addr4 [4]byte
	if ip4 := ip.To4(); ip4 != nil {
		copy(addr4[:], ip4)
	} else {
		return nil, fmt.Errorf("host %q: %w", host, api.ErrInvalidArgument)
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("socket: %w", err)
	}
	_ = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	if err := unix.Bind(fd, &unix.SockaddrInet4{Port: port, Addr: addr4}); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("bind %s:%d: %w", ip, port, err)
	}
	if err := unix.Listen(fd, unix.SOMAXCONN); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("listen %s:%d: %w", ip, port, err)
	}

	// Resolve the actual bound address (port may have been 0).
	boundAddr := fmt.Sprintf("%s:%d", ip, port)
	if sa, err := unix.Getsockname(fd); err == nil {
		boundAddr = sockaddrString(sa)
	}

	l := &listener{sub: s, fd: fd, addr: boundAddr}
	s.mu.Lock()
	s.listeners[fd] = l
	s.mu.Unlock()
	return l, nil
}

// Post implements api.Substrate.Post.
func (s *substrate) Post(fn func()) bool { return s.lp.Post(fn) }

// Pool implements api.Substrate.Pool.
func (s *substrate) Pool() api.BufferPool { return s.bp }

// Shutdown closes every descriptor, stops the poller and drains the loop.
// Idempotent. Safe from any goroutine except the loop itself.
func (s *substrate) Shutdown() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.lp.Do(func() {
		s.mu.Lock()
		streams := make([]*stream, 0, len(s.streams))
		for _, st := range s.streams {
			streams = append(streams, st)
		}
		listeners := make([]*listener, 0, len(s.listeners))
		for _, l := range s.listeners {
			listeners = append(listeners, l)
		}
		s.mu.Unlock()
		for _, st := range streams {
			st.Close(nil)
		}
		for _, l := range listeners {
			l.closeOnLoop()
		}
	})
	_ = s.r.Close()
	s.lp.Stop()
	<-s.pollDone
	return nil
}

// poll blocks on the reactor and forwards readiness batches to the loop.
func (s *substrate) poll() {
	defer close(s.pollDone)
	events := make([]reactor.Event, 128)
	for {
		n, err := s.r.Wait(events)
		if err != nil {
			// Reactor closed during shutdown.
			return
		}
		batch := make([]reactor.Event, n)
		copy(batch, events[:n])
		if !s.lp.Post(func() { s.dispatch(batch) }) {
			return
		}
	}
}

// dispatch runs on the loop goroutine.
func (s *substrate) dispatch(events []reactor.Event) {
	for _, ev := range events {
		s.mu.Lock()
		l := s.listeners[ev.FD]
		st := s.streams[ev.FD]
		s.mu.Unlock()
		if l != nil {
			l.acceptReady()
			continue
		}
		if st == nil {
			continue
		}
		// Flush pending writes before reads so an EOF observed by the read
		// path cannot strand queued data.
		if ev.Writable {
			st.flushWrites()
		}
		if ev.Readable || ev.Hangup {
			st.readReady()
		}
	}
}

func sockaddrString(sa unix.Sockaddr) string {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return net.JoinHostPort(net.IP(a.Addr[:]).String(), strconv.Itoa(a.Port))
	case *unix.SockaddrInet6:
		return net.JoinHostPort(net.IP(a.Addr[:]).String(), strconv.Itoa(a.Port))
	}
	return "unknown"
}
