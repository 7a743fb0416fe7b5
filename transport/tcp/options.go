// File: transport/tcp/options.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Functional options for substrate construction, shared across platforms.

package tcp

import (
	"log/slog"

	"github.com/momentics/hioload-tcp/api"
	"github.com/momentics/hioload-tcp/pool"
)

type options struct {
	logger   *slog.Logger
	pool     api.BufferPool
	readSize int
}

func defaultOptions() *options {
	return &options{readSize: pool.DefaultChunkSize}
}

// Option customizes substrate initialization.
type Option func(*options)

// WithLogger sets the substrate logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithBufferPool overrides the buffer pool read chunks are drawn from.
func WithBufferPool(p api.BufferPool) Option {
	return func(o *options) { o.pool = p }
}

// WithReadBufferSize sets the per-read chunk size.
func WithReadBufferSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.readSize = n
		}
	}
}
