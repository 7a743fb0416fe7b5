// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package pool provides the pooled buffers backing inbound reads. Buffers are
// release-once: the first Release returns the slab to the pool, later use
// yields nil views instead of touching freed storage.
package pool
