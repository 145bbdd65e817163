package transport

import (
	"sync"

	"github.com/google/uuid"
)

var _ Connection = (*MemConn)(nil)

// MemConn is an in-process connection half. Pair returns two halves wired
// back to back; what one side sends the other polls. Used by tests and
// local bots.
type MemConn struct {
	id     string
	mu     sync.Mutex
	inbox  [][]byte
	peer   *MemConn
	closed bool
}

// Pair builds a connected MemConn pair.
func Pair() (*MemConn, *MemConn) {
	a := &MemConn{id: uuid.NewString()}
	b := &MemConn{id: uuid.NewString()}
	a.peer = b
	b.peer = a
	return a, b
}

func (c *MemConn) ID() string { return c.id }

func (c *MemConn) Send(data []byte) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}
	c.peer.deliver(data)
	return nil
}

func (c *MemConn) Poll() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	pending := c.inbox
	c.inbox = nil
	return pending
}

func (c *MemConn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *MemConn) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

func (c *MemConn) deliver(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	c.inbox = append(c.inbox, buf)
}
