// File: api/substrate.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Event-driven I/O substrate abstraction: the core's only view of sockets.
// All callbacks fire on the substrate's single run-loop goroutine; callbacks
// for one stream never overlap and are delivered in order.

package api

// Stream is the substrate's handle for one accepted connection.
//
// Unless noted otherwise, methods must be called from the run-loop goroutine.
type Stream interface {
	// BeginRead arms continuous read notification. onData receives one pooled
	// buffer per available chunk; ownership of the buffer transfers to the
	// callee, which must Release it eventually. There is no framing: a logical
	// message may arrive split across chunks, or several may share one chunk.
	// onClose fires exactly once on read error or EOF; err is nil for a
	// graceful EOF. After onClose no further onData calls are made.
	BeginRead(onData func(Buffer), onClose func(err error)) error

	// Write schedules an asynchronous write of p. onComplete (may be nil)
	// fires once the buffer may be reused; a nil error means the bytes were
	// handed to the kernel, not that the peer received them. The stream keeps
	// a reference to p until onComplete fires.
	Write(p []byte, onComplete func(err error)) error

	// Shutdown flushes pending writes and then half-closes the write side.
	// onComplete (may be nil) fires once the shutdown has been issued.
	Shutdown(onComplete func(err error))

	// Close releases the handle. Pending writes fail with ErrStreamClosed.
	// onComplete (may be nil) fires once the handle's resources are gone;
	// the stream must not be used afterwards.
	Close(onComplete func())

	// RemoteAddr returns the peer address for logging and correlation.
	RemoteAddr() string
}

// Listener accepts inbound streams on a bound address.
type Listener interface {
	// BeginAccept arms accept notification. onAccept fires once per accepted
	// stream; onError once per failed accept attempt (the attempt is
	// abandoned, accepting continues).
	BeginAccept(onAccept func(Stream), onError func(err error)) error

	// Close stops accepting and releases the listening handle.
	Close() error

	// Addr returns the bound address.
	Addr() string
}

// Substrate is the event-driven I/O capability the core consumes. It owns the
// single run-loop goroutine on which every callback is delivered.
type Substrate interface {
	// Listen binds a listening socket. Bind failure is returned immediately.
	Listen(host string, port int) (Listener, error)

	// Post schedules fn on the run-loop goroutine. Safe from any goroutine.
	// Returns false if the substrate is shutting down and fn was dropped.
	Post(fn func()) bool

	// Pool returns the buffer pool read chunks are drawn from.
	Pool() BufferPool

	GracefulShutdown
}

// GracefulShutdown unifies orderly teardown across components.
type GracefulShutdown interface {
	// Shutdown stops all internal services and releases resources.
	Shutdown() error
}
