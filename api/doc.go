// File: api/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package api defines the contracts between the connection-manager core and
// the asynchronous I/O substrate that drives it: streams, listeners, pooled
// buffers, and the shared error set. The core never touches a raw socket;
// everything it knows about I/O passes through these interfaces.
package api
