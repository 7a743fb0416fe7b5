// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral readiness reactor interface for IO multiplexing.

package reactor

// Interest selects which readiness conditions a descriptor is watched for.
type Interest uint8

const (
	Readable Interest = 1 << iota
	Writable
)

// Event reports readiness for one registered descriptor.
type Event struct {
	FD       int
	Readable bool
	Writable bool
	// Hangup reports peer close or descriptor error; treated as readable by
	// consumers so the pending read can observe the EOF/error.
	Hangup bool
}

// EventReactor defines basic reactor operations across OS platforms.
// Notification is edge-triggered: consumers must drain until EAGAIN.
type EventReactor interface {
	// Add registers fd with the given interest set.
	Add(fd int, interest Interest) error

	// Modify replaces the interest set of a registered fd.
	Modify(fd int, interest Interest) error

	// Remove deregisters fd.
	Remove(fd int) error

	// Wait blocks until events are available and writes them into events.
	// Returns the number of events written or an error.
	Wait(events []Event) (n int, err error)

	// Close cleans up the reactor; a concurrent Wait returns an error.
	Close() error
}
