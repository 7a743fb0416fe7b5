//go:build linux
// +build linux

// File: transport/tcp/listener_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package tcp

import (
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-tcp/api"
	"github.com/momentics/hioload-tcp/reactor"
)

// listener is the Linux api.Listener implementation.
type listener struct {
	sub  *substrate
	fd   int
	addr string

	// loop-owned
	onAccept func(api.Stream)
	onError  func(error)
	closed   bool
}

// BeginAccept arms the accept callbacks and registers with the reactor.
// Registration happens on the loop; registration failures are reported
// through onError.
func (l *listener) BeginAccept(onAccept func(api.Stream), onError func(err error)) error {
	l.sub.lp.Post(func() {
		if l.closed {
			return
		}
		l.onAccept = onAccept
		l.onError = onError
		if err := l.sub.r.Add(l.fd, reactor.Readable); err != nil && onError != nil {
			onError(err)
		}
	})
	return nil
}

// Close stops accepting. The descriptor is released on the loop; Close
// itself returns immediately.
func (l *listener) Close() error {
	l.sub.lp.Post(func() { l.closeOnLoop() })
	return nil
}

// Addr returns the bound address.
func (l *listener) Addr() string { return l.addr }

// acceptReady drains the accept backlog. Loop goroutine only.
func (l *listener) acceptReady() {
	for {
		if l.closed {
			return
		}
		nfd, sa, err := unix.Accept4(l.fd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
		if err == unix.EINTR {
			continue
		}
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return
		}
		if err != nil {
			// Abandon this attempt; the next readiness event retries.
			if l.onError != nil {
				l.onError(err)
			}
			return
		}
		_ = unix.SetsockoptInt(nfd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
		st := &stream{sub: l.sub, fd: nfd, remote: sockaddrString(sa)}
		l.sub.mu.Lock()
		l.sub.streams[nfd] = st
		l.sub.mu.Unlock()
		if l.onAccept != nil {
			l.onAccept(st)
		} else {
			st.Close(nil)
		}
	}
}

func (l *listener) closeOnLoop() {
	if l.closed {
		return
	}
	l.closed = true
	_ = l.sub.r.Remove(l.fd)
	_ = unix.Close(l.fd)
	l.sub.mu.Lock()
	delete(l.sub.listeners, l.fd)
	l.sub.mu.Unlock()
}
