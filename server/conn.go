// File: server/conn.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import "github.com/momentics/hioload-tcp/api"

// State tracks a connection through its lifecycle. Transitions are strictly
// sequential per connection and only ever happen on the loop goroutine.
type State uint8

const (
	// StateConnecting: transport accepted, not yet in the registry.
	StateConnecting State = iota
	// StateActive: registered, read events armed, eligible for broadcast.
	StateActive
	// StateDisconnecting: removed from the registry, shutdown issued.
	StateDisconnecting
	// StateClosing: shutdown complete, close issued.
	StateClosing
	// StateClosed: terminal. The transport is gone; a closed connection never
	// appears in the registry.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateActive:
		return "active"
	case StateDisconnecting:
		return "disconnecting"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Conn is the per-client record tracked in the live set.
type Conn struct {
	id     uint64
	slot   int
	state  State
	srv    *Server
	stream api.Stream
	remote string
}

// ID returns the identity assigned at accept time: monotonically increasing,
// unique for the server's lifetime, never reused. For logging/correlation.
func (c *Conn) ID() uint64 { return c.id }

// Slot returns the registry index. Valid only while the connection is live;
// reassigned when compaction relocates the record.
func (c *Conn) Slot() int { return c.slot }

// State returns the current lifecycle state. Loop goroutine only.
func (c *Conn) State() State { return c.state }

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() string { return c.remote }

// Server returns the owning server.
func (c *Conn) Server() *Server { return c.srv }
