package room

import (
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/driftsync/driftsync/internal/core/entity"
)

var _ Room = (*Basic)(nil)

// Basic is an in-memory room: a live entity table, a tick counter and JSON
// snapshots. Game rules plug in through the Step hook; it is enough to run
// the sync core end to end and to back the demo server.
type Basic struct {
	entities map[entity.ID]entity.Entity
	order    []entity.Entity
	tick     Tick

	last Snapshot

	// Step, when set, runs the game rules for one tick after the counter
	// advances.
	Step func(Tick)
}

func NewBasic() *Basic {
	return &Basic{entities: make(map[entity.ID]entity.Entity)}
}

func (b *Basic) Init(start Tick) {
	b.tick = start
}

func (b *Basic) Advance() {
	b.tick++
	if b.Step != nil {
		b.Step(b.tick)
	}
}

func (b *Basic) Tick() Tick { return b.tick }

func (b *Basic) Attach(e entity.Entity) {
	if _, exists := b.entities[e.ID()]; exists {
		return
	}
	b.entities[e.ID()] = e
	b.order = append(b.order, e)
}

func (b *Basic) Entity(id entity.ID) (entity.Entity, bool) {
	e, ok := b.entities[id]
	return e, ok
}

func (b *Basic) Entities() []entity.Entity {
	return b.order
}

// Capture serializes every live entity and stores the result as the current
// snapshot.
func (b *Basic) Capture() (Snapshot, error) {
	type record struct {
		ID       entity.ID     `json:"id"`
		Removing bool          `json:"removing,omitempty"`
		State    entity.Entity `json:"state"`
	}
	records := make([]record, 0, len(b.order))
	for _, e := range b.order {
		records = append(records, record{ID: e.ID(), Removing: e.Removing(), State: e})
	}
	data, err := json.Marshal(records)
	if err != nil {
		return Snapshot{}, fmt.Errorf("capture snapshot: %w", err)
	}
	b.last = Snapshot{Tick: b.tick, Data: data, Checksum: xxhash.Sum64(data)}
	return b.last, nil
}

// Last returns the most recently captured snapshot.
func (b *Basic) Last() Snapshot { return b.last }

// Drop removes a purged entity from the live table. The id stays burned.
func (b *Basic) Drop(id entity.ID) {
	if _, ok := b.entities[id]; !ok {
		return
	}
	delete(b.entities, id)
	for i, e := range b.order {
		if e.ID() == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}
