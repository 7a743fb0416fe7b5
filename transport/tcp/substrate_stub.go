//go:build !linux
// +build !linux

// File: transport/tcp/substrate_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub factory for platforms without a substrate implementation.

package tcp

import "github.com/momentics/hioload-tcp/api"

// New reports that no production substrate exists for this platform.
func New(opts ...Option) (api.Substrate, error) {
	return nil, api.ErrNotSupported
}
