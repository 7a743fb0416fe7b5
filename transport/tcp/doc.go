// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package tcp implements the production I/O substrate over raw nonblocking
// sockets: an epoll-driven poller goroutine turns readiness into events that
// are posted to the single run loop, where all accept/read/write/teardown
// callbacks execute. On platforms without a reactor backend New returns
// api.ErrNotSupported; the fake substrate remains available there.
package tcp
