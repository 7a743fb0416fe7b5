//go:build linux
// +build linux

// File: reactor/reactor_linux_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package reactor_test

import (
	"errors"
	"os"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-tcp/reactor"
)

func TestReactorReportsReadable(t *testing.T) {
	r, err := reactor.NewReactor()
	if err != nil {
		t.Fatalf("NewReactor: %v", err)
	}
	defer r.Close()

	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		t.Fatalf("pipe: %v", err)
	}
	defer unix.Close(fds[0])
	defer unix.Close(fds[1])

	if err := r.Add(fds[0], reactor.Readable); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := unix.Write(fds[1], []byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}

	events := make([]reactor.Event, 8)
	n, err := r.Wait(events)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if n != 1 || events[0].FD != fds[0] || !events[0].Readable {
		t.Fatalf("events[:%d] = %+v, want one readable event for fd %d", n, events[:n], fds[0])
	}

	if err := r.Remove(fds[0]); err != nil {
		t.Fatalf("Remove: %v", err)
	}
}

func TestReactorCloseWakesBlockedWait(t *testing.T) {
	r, err := reactor.NewReactor()
	if err != nil {
		t.Fatalf("NewReactor: %v", err)
	}

	waitErr := make(chan error, 1)
	go func() {
		events := make([]reactor.Event, 8)
		_, err := r.Wait(events)
		waitErr <- err
	}()

	// Give the waiter time to block.
	time.Sleep(20 * time.Millisecond)
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	select {
	case err := <-waitErr:
		if !errors.Is(err, os.ErrClosed) {
			t.Fatalf("Wait after Close: err = %v, want os.ErrClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after Close")
	}
}
