// File: server/message.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"sync/atomic"

	"github.com/momentics/hioload-tcp/api"
)

// Message is one inbound chunk in flight between a read event and its
// responder. The wire carries raw bytes with no framing, so a chunk is
// whatever the substrate delivered in one read: a logical message may span
// several chunks or share one.
//
// The message owns its buffer. Invoking the responder releases it; a message
// whose responder is never invoked leaks its buffer and leaves the exchange
// unresolved. That is a caller contract the core does not enforce.
type Message struct {
	conn     *Conn
	buf      api.Buffer
	consumed atomic.Bool
}

// Conn returns the originating connection.
func (m *Message) Conn() *Conn { return m.conn }

// Bytes returns the chunk contents, nil once the message has been resolved.
func (m *Message) Bytes() []byte { return m.buf.Bytes() }

// Copy returns a standalone copy of the chunk contents, for hooks that hold
// the payload across asynchronous work without holding the message.
func (m *Message) Copy() []byte { return m.buf.Copy() }

// consume marks the message resolved; only the first caller wins.
func (m *Message) consume() bool {
	return m.consumed.CompareAndSwap(false, true)
}

// Responder finalizes an in-flight message: it writes response to the
// originating connection and releases the message's buffer. A responder is
// consumable at most once; the second invocation returns
// api.ErrResponderConsumed and does nothing. Safe from any goroutine.
type Responder func(m *Message, response []byte) error
