package room

import (
	"github.com/driftsync/driftsync/internal/core/entity"
)

// Tick is one fixed simulation step. The zero tick is the state before the
// first Advance.
type Tick uint32

// SendTick reports whether t is designated for snapshot broadcast, given a
// fixed cadence of one broadcast every `every` ticks.
func (t Tick) SendTick(every Tick) bool {
	return every > 0 && t%every == 0
}

// Snapshot is a captured room state. Data layout belongs to the room; the
// checksum lets peers cheaply compare baselines.
type Snapshot struct {
	Tick     Tick   `json:"tick"`
	Data     []byte `json:"data"`
	Checksum uint64 `json:"checksum"`
}

// Room is the simulation the sync core drives. The core never owns entities;
// it only asks the room to advance, capture and resolve ids.
type Room interface {
	// Init is called once, lazily, before the first tick advances.
	Init(start Tick)
	// Advance runs exactly one simulation step.
	Advance()
	// Tick is the current simulation tick.
	Tick() Tick
	// Capture stores and returns a snapshot of the current state.
	Capture() (Snapshot, error)
	// Attach registers a freshly created entity with the simulation.
	Attach(e entity.Entity)
	// Entity resolves a live entity by id.
	Entity(id entity.ID) (entity.Entity, bool)
	// Entities lists live entities in attach order. Read-only for callers.
	Entities() []entity.Entity
}
