package host

import (
	"github.com/driftsync/driftsync/internal/core/event"
	"github.com/driftsync/driftsync/internal/core/peer"
)

// Hooks is the observer interface the host application subscribes to. An
// empty subscriber list is a normal, cheap state; every notification is
// fired synchronously from the calling goroutine.
type Hooks interface {
	// PeerJoined fires after a new peer is admitted.
	PeerJoined(*peer.Peer)
	// PeerLeft fires on removal, before controller revocation, so the
	// observer can still enumerate the peer's controlled entities.
	PeerLeft(*peer.Peer)
	// EventReceived fires for every application event a peer sends.
	EventReceived(*peer.Peer, event.Event)
	// PeerError reports a per-peer failure isolated from the tick.
	PeerError(*peer.Peer, error)
}

// NopHooks implements Hooks with no-ops; embed it to observe selectively.
type NopHooks struct{}

func (NopHooks) PeerJoined(*peer.Peer)                 {}
func (NopHooks) PeerLeft(*peer.Peer)                   {}
func (NopHooks) EventReceived(*peer.Peer, event.Event) {}
func (NopHooks) PeerError(*peer.Peer, error)           {}
