package peer

import (
	"github.com/driftsync/driftsync/internal/core/encoding"
	"github.com/driftsync/driftsync/internal/core/observability/log"
)

// Registry maps transport connections to their server-side peers, keyed by
// connection identity. Iteration order is insertion order, stable within a
// tick so update and broadcast walk the same sequence.
type Registry struct {
	peers map[string]*Peer
	order []*Peer
	lg    log.Log
}

func NewRegistry(lg log.Log) *Registry {
	if lg == nil {
		lg = log.Nop()
	}
	return &Registry{peers: make(map[string]*Peer), lg: lg}
}

// Add wraps conn in a new peer. Re-adding a known connection returns the
// existing peer and false; duplicate admission is not an error.
func (r *Registry) Add(conn Connection, codec encoding.Interpreter) (*Peer, bool) {
	if existing, ok := r.peers[conn.ID()]; ok {
		r.lg.Debug("duplicate admission ignored", log.String("conn", conn.ID()))
		return existing, false
	}
	p := New(conn, codec, r.lg)
	r.peers[conn.ID()] = p
	r.order = append(r.order, p)
	return p, true
}

// Remove unregisters the peer for a connection id. Unknown ids are ignored.
func (r *Registry) Remove(connID string) (*Peer, bool) {
	p, ok := r.peers[connID]
	if !ok {
		return nil, false
	}
	delete(r.peers, connID)
	for i, q := range r.order {
		if q == p {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return p, true
}

// Get resolves a peer by connection id.
func (r *Registry) Get(connID string) (*Peer, bool) {
	p, ok := r.peers[connID]
	return p, ok
}

// Each visits every registered peer in stable order.
func (r *Registry) Each(fn func(*Peer)) {
	for _, p := range r.order {
		fn(p)
	}
}

func (r *Registry) Len() int { return len(r.peers) }
