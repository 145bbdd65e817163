package command

import "github.com/driftsync/driftsync/internal/core/entity"

// Command is one input command addressed to an entity. Payload layout is the
// interpreter's business; the core only routes it.
type Command struct {
	Seq     uint32 `json:"seq"`
	Kind    string `json:"kind"`
	Payload []byte `json:"payload,omitempty"`
}

// Update is a batch of commands for one target entity, received within a
// single inbound packet from exactly one peer.
type Update struct {
	Target   entity.ID  `json:"target"`
	Commands []*Command `json:"commands"`
}

// Receiver is implemented by entities that accept input commands.
type Receiver interface {
	entity.Entity
	ApplyCommand(*Command)
}

// Allocator recycles command objects. Dispatch paths that reject a batch
// take ownership of it and must hand every command back here.
type Allocator interface {
	GetCommand() *Command
	PutCommand(*Command)
	GetUpdate() *Update
	PutUpdate(*Update)
}
