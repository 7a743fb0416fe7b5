//go:build !linux
// +build !linux

// File: reactor/reactor_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub factory for platforms without a reactor implementation.

package reactor

import "github.com/momentics/hioload-tcp/api"

// NewReactor reports that no reactor backend exists for this platform.
// The fake substrate remains available for tests and development.
func NewReactor() (EventReactor, error) {
	return nil, api.ErrNotSupported
}
