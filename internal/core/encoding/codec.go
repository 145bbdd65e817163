package encoding

import (
	"github.com/driftsync/driftsync/internal/core/command"
	"github.com/driftsync/driftsync/internal/core/entity"
	"github.com/driftsync/driftsync/internal/core/event"
	"github.com/driftsync/driftsync/internal/core/room"
)

// Inbound is the decoded content of one packet received from a peer.
type Inbound struct {
	// Updates are command batches, one per target entity. Ownership of the
	// batches passes to the caller.
	Updates []*command.Update
	// Events are application messages sent by the peer.
	Events []event.Event
	// Acks list event ids the peer confirms as delivered.
	Acks []string
}

// Interpreter frames outbound state and decodes inbound packets. The core
// treats it as an injected dependency and never looks inside the byte
// layout it produces.
type Interpreter interface {
	EncodeSnapshot(snap room.Snapshot, destroyed []entity.ID) ([]byte, error)
	EncodeEvent(ev event.Event) ([]byte, error)
	DecodeInbound(data []byte) (Inbound, error)
}
