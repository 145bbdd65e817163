package entity

import (
	"errors"

	"github.com/driftsync/driftsync/internal/core/observability/log"
)

var (
	ErrNotEmbedded       = errors.New("entity does not embed entity.Base")
	ErrAlreadyRegistered = errors.New("entity already registered")
)

// Registry assigns entity ids and tracks destruction. It also owns the
// controller relation in both directions, so authority changes cannot leave
// the two sides out of sync.
//
// The registry holds identifiers and destruction-tracking references only;
// entity ownership stays with the room.
type Registry struct {
	next      ID
	destroyed map[ID]Entity

	controllers map[ID]Controller
	controlled  map[string]map[ID]struct{}

	lg log.Log
}

func NewRegistry(lg log.Log) *Registry {
	if lg == nil {
		lg = log.Nop()
	}
	return &Registry{
		next:        Start,
		destroyed:   make(map[ID]Entity),
		controllers: make(map[ID]Controller),
		controlled:  make(map[string]map[ID]struct{}),
		lg:          lg,
	}
}

// Register binds the next unused id to e. Each entity is registered exactly
// once; ids are never reused, even across destroy/recreate cycles.
func (r *Registry) Register(e Entity) (ID, error) {
	c, ok := e.(carrier)
	if !ok {
		return None, ErrNotEmbedded
	}
	b := c.base()
	if b.id != None {
		return b.id, ErrAlreadyRegistered
	}
	b.id = r.next
	r.next++
	r.lg.Debug("entity registered", log.Uint64("entity", uint64(b.id)))
	return b.id, nil
}

// NextID reports the id the next registration will receive.
func (r *Registry) NextID() ID { return r.next }

// Destroy marks e as removing and records it in the destroyed set. If e has
// a controller, authority is revoked first, symmetric with peer removal.
// Destroying twice is a no-op.
func (r *Registry) Destroy(e Entity) {
	c, ok := e.(carrier)
	if !ok {
		return
	}
	b := c.base()
	if ctrl, held := r.controllers[b.id]; held {
		r.detach(b.id, ctrl)
	}
	if b.removing {
		return
	}
	b.removing = true
	r.destroyed[b.id] = e
	r.lg.Debug("entity destroyed", log.Uint64("entity", uint64(b.id)))
}

// Destroyed returns the ids awaiting purge. The slice is a copy; order is
// unspecified.
func (r *Registry) Destroyed() []ID {
	ids := make([]ID, 0, len(r.destroyed))
	for id := range r.destroyed {
		ids = append(ids, id)
	}
	return ids
}

func (r *Registry) IsDestroyed(id ID) bool {
	_, ok := r.destroyed[id]
	return ok
}

// Purge drops an id from the destroyed set once every peer has acknowledged
// its removal. Deciding when that is true belongs to the caller.
func (r *Registry) Purge(id ID) {
	delete(r.destroyed, id)
}

// SetController makes c the authority for e, replacing any previous
// controller. Both directions of the relation are updated here and nowhere
// else.
func (r *Registry) SetController(e Entity, c Controller) {
	id := e.ID()
	if id == None || e.Removing() {
		return
	}
	if prev, held := r.controllers[id]; held {
		r.detach(id, prev)
	}
	if c == nil {
		return
	}
	r.controllers[id] = c
	key := c.ControllerID()
	if r.controlled[key] == nil {
		r.controlled[key] = make(map[ID]struct{})
	}
	r.controlled[key][id] = struct{}{}
}

// ClearController removes e's controller, if any.
func (r *Registry) ClearController(e Entity) {
	if ctrl, held := r.controllers[e.ID()]; held {
		r.detach(e.ID(), ctrl)
	}
}

// ControllerOf returns the current authority for id.
func (r *Registry) ControllerOf(id ID) (Controller, bool) {
	c, ok := r.controllers[id]
	return c, ok
}

// Controlled lists the ids currently under c's authority.
func (r *Registry) Controlled(c Controller) []ID {
	held := r.controlled[c.ControllerID()]
	ids := make([]ID, 0, len(held))
	for id := range held {
		ids = append(ids, id)
	}
	return ids
}

// RevokeAll strips c's authority over every entity it controls. Called
// synchronously when a peer leaves.
func (r *Registry) RevokeAll(c Controller) {
	key := c.ControllerID()
	for id := range r.controlled[key] {
		delete(r.controllers, id)
	}
	delete(r.controlled, key)
}

func (r *Registry) detach(id ID, c Controller) {
	delete(r.controllers, id)
	key := c.ControllerID()
	if held := r.controlled[key]; held != nil {
		delete(held, id)
		if len(held) == 0 {
			delete(r.controlled, key)
		}
	}
}
