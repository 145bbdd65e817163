package peer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftsync/driftsync/internal/core/command"
	"github.com/driftsync/driftsync/internal/core/encoding"
	"github.com/driftsync/driftsync/internal/core/transport"
)

func TestAddIsIdempotentPerConnection(t *testing.T) {
	r := NewRegistry(nil)
	codec := encoding.NewJSON(command.NewPool())
	conn, _ := transport.Pair()

	p1, added := r.Add(conn, codec)
	require.True(t, added)

	p2, added := r.Add(conn, codec)
	assert.False(t, added, "duplicate admission is a no-op")
	assert.Same(t, p1, p2)
	assert.Equal(t, 1, r.Len())
}

func TestRemoveUnknownIsIgnored(t *testing.T) {
	r := NewRegistry(nil)

	_, ok := r.Remove("no-such-connection")
	assert.False(t, ok)
}

func TestEachWalksInsertionOrder(t *testing.T) {
	r := NewRegistry(nil)
	codec := encoding.NewJSON(command.NewPool())

	var want []string
	for i := 0; i < 5; i++ {
		conn, _ := transport.Pair()
		p, added := r.Add(conn, codec)
		require.True(t, added)
		want = append(want, p.ID())
	}

	var got []string
	r.Each(func(p *Peer) { got = append(got, p.ID()) })
	require.Equal(t, want, got)

	// Order stays stable across a removal of the middle element.
	middle := want[2]
	var middleConn string
	r.Each(func(p *Peer) {
		if p.ID() == middle {
			middleConn = p.Conn().ID()
		}
	})
	_, ok := r.Remove(middleConn)
	require.True(t, ok)

	got = got[:0]
	r.Each(func(p *Peer) { got = append(got, p.ID()) })
	assert.Equal(t, append(append([]string{}, want[:2]...), want[3:]...), got)
}
