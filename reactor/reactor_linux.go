//go:build linux
// +build linux

// File: reactor/reactor_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux epoll(7)-based reactor implementation and factory.

package reactor

import (
	"encoding/binary"
	"os"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// linuxReactor is an epoll-based event reactor. A nonblocking eventfd is
// registered alongside the watched descriptors so Close can interrupt a
// blocked Wait; closing the epoll descriptor alone does not wake a waiter.
type linuxReactor struct {
	epfd     int
	wakefd   int
	closed   atomic.Bool
	released atomic.Bool
}

// NewReactor constructs a new platform-specific EventReactor for Linux.
func NewReactor() (EventReactor, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	wakefd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		_ = unix.Close(epfd)
		return nil, err
	}
	r := &linuxReactor{epfd: epfd, wakefd: wakefd}
	ev := &unix.EpollEvent{Events: unix.EPOLLIN, Fd: int32(wakefd)}
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, wakefd, ev); err != nil {
		_ = unix.Close(wakefd)
		_ = unix.Close(epfd)
		return nil, err
	}
	return r, nil
}

// Add registers fd with edge-triggered notification for the interest set.
func (r *linuxReactor) Add(fd int, interest Interest) error {
	return unix.EpollCtl(r.epfd, unix.EPOLL_CTL_ADD, fd, r.event(fd, interest))
}

// Modify replaces the interest set of a registered fd.
func (r *linuxReactor) Modify(fd int, interest Interest) error {
	return unix.EpollCtl(r.epfd, unix.EPOLL_CTL_MOD, fd, r.event(fd, interest))
}

// Remove deregisters fd from epoll.
func (r *linuxReactor) Remove(fd int) error {
	return unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

// Wait waits for epoll events and fills the result into events. After Close
// it returns os.ErrClosed.
func (r *linuxReactor) Wait(events []Event) (int, error) {
	rawEvents := make([]unix.EpollEvent, len(events)+1)
	for {
		if r.closed.Load() {
			r.release()
			return 0, os.ErrClosed
		}
		n, err := unix.EpollWait(r.epfd, rawEvents, -1)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, err
		}
		out := 0
		for i := 0; i < n; i++ {
			ev := rawEvents[i]
			if int(ev.Fd) == r.wakefd {
				r.drainWake()
				continue
			}
			events[out] = Event{
				FD:       int(ev.Fd),
				Readable: ev.Events&unix.EPOLLIN != 0,
				Writable: ev.Events&unix.EPOLLOUT != 0,
				Hangup:   ev.Events&(unix.EPOLLHUP|unix.EPOLLRDHUP|unix.EPOLLERR) != 0,
			}
			out++
		}
		if r.closed.Load() {
			r.release()
			return 0, os.ErrClosed
		}
		if out == 0 {
			continue
		}
		return out, nil
	}
}

// Close wakes any blocked Wait, which then returns os.ErrClosed and releases
// the descriptors on its way out.
func (r *linuxReactor) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	var one [8]byte
	binary.LittleEndian.PutUint64(one[:], 1)
	if _, err := unix.Write(r.wakefd, one[:]); err != nil {
		r.release()
	}
	return nil
}

func (r *linuxReactor) release() {
	if !r.released.CompareAndSwap(false, true) {
		return
	}
	_ = unix.Close(r.wakefd)
	_ = unix.Close(r.epfd)
}

func (r *linuxReactor) drainWake() {
	var buf [8]byte
	for {
		if _, err := unix.Read(r.wakefd, buf[:]); err != nil {
			return
		}
	}
}

func (r *linuxReactor) event(fd int, interest Interest) *unix.EpollEvent {
	var bits uint32 = unix.EPOLLET | unix.EPOLLRDHUP
	if interest&Readable != 0 {
		bits |= unix.EPOLLIN
	}
	if interest&Writable != 0 {
		bits |= unix.EPOLLOUT
	}
	return &unix.EpollEvent{Events: bits, Fd: int32(fd)}
}
