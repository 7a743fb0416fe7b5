// File: server/types.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"log/slog"

	"github.com/momentics/hioload-tcp/control"
)

// Config holds server-side configuration parameters.
type Config struct {
	Host     string // bind address, e.g. "0.0.0.0"
	Port     int    // TCP port
	Capacity int    // fixed maximum concurrent connections

	// Logger receives structured server logs. If nil, slog.Default() is used.
	Logger *slog.Logger

	// Metrics receives connection/message accounting. Optional.
	Metrics *control.Metrics
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Host:     "0.0.0.0",
		Port:     7000,
		Capacity: 5,
	}
}

// Hooks is the application-facing event surface. All hooks fire on the
// run-loop goroutine; a nil hook is skipped.
type Hooks struct {
	// OnConnect fires after a connection is registered, with the new total.
	OnConnect func(c *Conn, total int)

	// OnDisconnect fires exactly once per connection, after registry removal
	// and before the transport shutdown begins, with the new total.
	OnDisconnect func(c *Conn, total int)

	// OnMessage fires once per inbound chunk. The hook may call respond
	// synchronously or hold the message across asynchronous work; either way
	// respond must be invoked exactly once to release the message.
	OnMessage func(m *Message, respond Responder)
}
