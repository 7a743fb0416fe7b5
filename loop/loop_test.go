// File: loop/loop_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package loop_test

import (
	"sync"
	"testing"

	"github.com/momentics/hioload-tcp/loop"
)

func TestLoopExecutesPostedJobsInOrder(t *testing.T) {
	l := loop.New()
	if err := l.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer l.Stop()

	var got []int
	for i := 0; i < 100; i++ {
		i := i
		l.Post(func() { got = append(got, i) })
	}
	l.Do(func() {})

	if len(got) != 100 {
		t.Fatalf("executed %d jobs, want 100", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("job %d executed out of order (got value %d)", i, v)
		}
	}
}

func TestLoopDoubleStart(t *testing.T) {
	l := loop.New()
	if err := l.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer l.Stop()
	if err := l.Start(); err == nil {
		t.Error("second Start() did not fail")
	}
}

func TestLoopSerializesConcurrentPosters(t *testing.T) {
	l := loop.New()
	if err := l.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer l.Stop()

	// counter is unguarded on purpose: the loop is the only writer.
	counter := 0
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				l.Post(func() { counter++ })
			}
		}()
	}
	wg.Wait()
	l.Do(func() {})

	if counter != 8000 {
		t.Errorf("counter = %d, want 8000", counter)
	}
}

func TestLoopStopDrainsPendingJobs(t *testing.T) {
	l := loop.New()
	if err := l.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	ran := 0
	for i := 0; i < 50; i++ {
		l.Post(func() { ran++ })
	}
	l.Stop()

	if ran != 50 {
		t.Errorf("Stop() drained %d jobs, want 50", ran)
	}
	if l.Post(func() {}) {
		t.Error("Post after Stop reported accepted")
	}
}

func TestLoopPostFromLoop(t *testing.T) {
	l := loop.New()
	if err := l.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer l.Stop()

	inner := make(chan struct{})
	l.Post(func() {
		l.Post(func() { close(inner) })
	})
	<-inner
}
