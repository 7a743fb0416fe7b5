// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package server implements the bounded, event-driven TCP connection manager:
// a fixed-capacity live set of connections with O(1) slot-swap compaction,
// per-connection lifecycle from accept through close, application hooks for
// connect/disconnect/message events, and broadcast to the live set.
//
// The server holds no locks. All of its state is owned by the substrate's
// run-loop goroutine; hooks fire there, and the only entry points safe from
// other goroutines are the message responder and Shutdown.
package server
