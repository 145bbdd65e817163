package command

import (
	"github.com/driftsync/driftsync/internal/core/entity"
	"github.com/driftsync/driftsync/internal/core/observability/log"
)

// Lookup resolves a target id to a live entity. Satisfied by the room.
type Lookup interface {
	Entity(id entity.ID) (entity.Entity, bool)
}

// Router applies inbound command batches to their target entities after
// checking that the sender still holds authority over the target.
type Router struct {
	lookup Lookup
	reg    *entity.Registry
	alloc  Allocator
	lg     log.Log
}

func NewRouter(lookup Lookup, reg *entity.Registry, alloc Allocator, lg log.Log) *Router {
	if lg == nil {
		lg = log.Nop()
	}
	return &Router{lookup: lookup, reg: reg, alloc: alloc, lg: lg}
}

// Dispatch routes one batch from one sender. Dispatch takes ownership of the
// update: rejected batches are released back to the allocator in full,
// applied batches hand their commands over to the target entity. Authority is
// re-checked against the registry on every call, so a controller change
// invalidates commands already in flight.
//
// A missing or removing target is not an error; destruction racing in-flight
// input is expected, and the batch is dropped without signal.
func (r *Router) Dispatch(sender entity.Controller, u *Update) {
	if u == nil {
		return
	}

	target, ok := r.lookup.Entity(u.Target)
	if !ok || target.Removing() {
		r.lg.Debug("command batch for stale target",
			log.Uint64("target", uint64(u.Target)),
			log.Int("commands", len(u.Commands)))
		r.release(u)
		return
	}

	ctrl, held := r.reg.ControllerOf(u.Target)
	if !held || ctrl.ControllerID() != sender.ControllerID() {
		r.lg.Debug("command batch from non-controller",
			log.Uint64("target", uint64(u.Target)),
			log.String("sender", sender.ControllerID()))
		r.release(u)
		return
	}

	receiver, ok := target.(Receiver)
	if !ok {
		r.lg.Warn("target entity accepts no commands",
			log.Uint64("target", uint64(u.Target)))
		r.release(u)
		return
	}

	for _, c := range u.Commands {
		receiver.ApplyCommand(c)
	}
	r.alloc.PutUpdate(u)
}

// release reclaims every command in the batch and then the batch itself.
func (r *Router) release(u *Update) {
	for _, c := range u.Commands {
		r.alloc.PutCommand(c)
	}
	r.alloc.PutUpdate(u)
}
