package transport

import (
	"context"
	"errors"
)

var (
	ErrClosed       = errors.New("connection is closed")
	ErrListenerDown = errors.New("listener is closed")
)

// Connection is one transport-level link to a client. The sync core keys its
// peer registry by ID(), treats the payload bytes as opaque and drains
// inbound traffic once per tick via Poll.
type Connection interface {
	// ID is the identity key for this connection. Stable for its lifetime.
	ID() string
	// Send transmits one outbound packet.
	Send(data []byte) error
	// Poll returns the packets received since the previous call without
	// blocking.
	Poll() [][]byte
	// Closed reports whether the link is down, locally or remotely.
	Closed() bool
	// Close tears the link down. Safe to call more than once.
	Close() error
}

// Listener produces accepted connections for the server run loop.
type Listener interface {
	Accept(ctx context.Context) (Connection, error)
	Addr() string
	Close() error
}
