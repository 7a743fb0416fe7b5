// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor provides the poll-mode readiness notification abstraction
// with an epoll implementation on Linux and a stub elsewhere.
package reactor
