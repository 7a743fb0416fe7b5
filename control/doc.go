// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package control exposes runtime observability for the connection manager:
// Prometheus collectors for connection and message accounting, and a debug
// probe registry for ad hoc state inspection.
package control
