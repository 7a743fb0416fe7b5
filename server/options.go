// File: server/options.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Functional options for server construction.

package server

import (
	"log/slog"

	"github.com/momentics/hioload-tcp/control"
)

// Option customizes server initialization.
type Option func(*Server)

// WithLogger overrides the configured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.cfg.Logger = l }
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(m *control.Metrics) Option {
	return func(s *Server) { s.cfg.Metrics = m }
}

// WithCapacity overrides the configured connection limit.
func WithCapacity(n int) Option {
	return func(s *Server) { s.cfg.Capacity = n }
}
