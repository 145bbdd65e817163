package encoding

import (
	"encoding/json"
	"fmt"

	"github.com/driftsync/driftsync/internal/core/command"
	"github.com/driftsync/driftsync/internal/core/entity"
	"github.com/driftsync/driftsync/internal/core/event"
	"github.com/driftsync/driftsync/internal/core/room"
)

var _ Interpreter = (*JSON)(nil)

// JSON is the baseline interpreter. Decoded commands come out of the shared
// allocator so the router can hand them back on rejection.
type JSON struct {
	alloc command.Allocator
}

func NewJSON(alloc command.Allocator) *JSON {
	return &JSON{alloc: alloc}
}

type snapshotPacket struct {
	Type      string        `json:"type"`
	Snapshot  room.Snapshot `json:"snapshot"`
	Destroyed []entity.ID   `json:"destroyed,omitempty"`
}

type eventPacket struct {
	Type  string      `json:"type"`
	Event event.Event `json:"event"`
}

type inboundPacket struct {
	Updates []inboundUpdate `json:"updates,omitempty"`
	Events  []event.Event   `json:"events,omitempty"`
	Acks    []string        `json:"acks,omitempty"`
}

type inboundUpdate struct {
	Target   entity.ID         `json:"target"`
	Commands []command.Command `json:"commands"`
}

func (c *JSON) EncodeSnapshot(snap room.Snapshot, destroyed []entity.ID) ([]byte, error) {
	data, err := json.Marshal(snapshotPacket{Type: "snapshot", Snapshot: snap, Destroyed: destroyed})
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

func (c *JSON) EncodeEvent(ev event.Event) ([]byte, error) {
	data, err := json.Marshal(eventPacket{Type: "event", Event: ev})
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	return data, nil
}

func (c *JSON) DecodeInbound(data []byte) (Inbound, error) {
	var pkt inboundPacket
	if err := json.Unmarshal(data, &pkt); err != nil {
		return Inbound{}, fmt.Errorf("decode inbound packet: %w", err)
	}

	in := Inbound{Events: pkt.Events, Acks: pkt.Acks}
	for _, raw := range pkt.Updates {
		u := c.alloc.GetUpdate()
		u.Target = raw.Target
		for i := range raw.Commands {
			cmd := c.alloc.GetCommand()
			*cmd = raw.Commands[i]
			u.Commands = append(u.Commands, cmd)
		}
		in.Updates = append(in.Updates, u)
	}
	return in, nil
}
