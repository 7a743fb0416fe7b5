// File: loop/loop.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Single-goroutine run loop. Every I/O callback and every posted job in the
// library executes here, strictly serialized, so the connection core needs
// no locks of its own.

package loop

import (
	"sync"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-tcp/api"
)

// Loop executes posted jobs one at a time on a dedicated goroutine.
type Loop struct {
	mu       sync.Mutex
	cond     *sync.Cond
	jobs     *queue.Queue
	running  bool
	stopping bool
	done     chan struct{}
}

// New creates a stopped Loop.
func New() *Loop {
	l := &Loop{
		jobs: queue.New(),
		done: make(chan struct{}),
	}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// Start spawns the loop goroutine. Calling Start twice is an error.
func (l *Loop) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return api.ErrAlreadyRunning
	}
	l.running = true
	go l.run()
	return nil
}

// Post schedules fn for execution on the loop goroutine. Safe to call from
// any goroutine, including the loop itself. Returns false if the loop is
// stopping and the job was dropped.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopping {
		return false
	}
	l.jobs.Add(fn)
	l.cond.Signal()
	return true
}

// Do posts fn and blocks until it has executed. Must not be called from the
// loop goroutine itself.
func (l *Loop) Do(fn func()) {
	ran := make(chan struct{})
	if !l.Post(func() {
		fn()
		close(ran)
	}) {
		return
	}
	<-ran
}

// Stop drains already-posted jobs, then terminates the loop goroutine and
// waits for it to exit. Jobs posted after Stop are dropped.
func (l *Loop) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	if !l.stopping {
		l.stopping = true
		l.cond.Signal()
	}
	l.mu.Unlock()
	<-l.done
}

// Pending reports the number of queued jobs.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.jobs.Length()
}

func (l *Loop) run() {
	for {
		l.mu.Lock()
		for l.jobs.Length() == 0 && !l.stopping {
			l.cond.Wait()
		}
		if l.jobs.Length() == 0 {
			l.mu.Unlock()
			close(l.done)
			return
		}
		fn := l.jobs.Remove().(func())
		l.mu.Unlock()
		fn()
	}
}
