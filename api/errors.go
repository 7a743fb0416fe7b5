// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error values shared across the library.

package api

import "fmt"

// Common errors used across the library.
var (
	ErrStreamClosed      = fmt.Errorf("stream is closed")
	ErrListenerClosed    = fmt.Errorf("listener is closed")
	ErrSubstrateClosed   = fmt.Errorf("substrate is closed")
	ErrCapacityExceeded  = fmt.Errorf("connection capacity exceeded")
	ErrResponderConsumed = fmt.Errorf("responder already consumed")
	ErrAlreadyRunning    = fmt.Errorf("already running")
	ErrNotSupported      = fmt.Errorf("operation not supported on this platform")
	ErrInvalidArgument   = fmt.Errorf("invalid argument")
)
