package entity

// ID identifies a replicated entity. IDs are assigned by the Registry in
// strictly increasing order and are never reused within a server's lifetime.
type ID uint64

const (
	// None marks the absence of an entity.
	None ID = 0
	// Start is the first id a Registry hands out.
	Start ID = 1
)

// Entity is the minimal contract the sync core needs from a simulation
// object. Concrete entities embed Base and add their own state.
type Entity interface {
	ID() ID
	Removing() bool
}

// Controller is the authority handle for an entity: the peer (or bot, or
// script) currently allowed to issue commands to it. Identity is established
// by ControllerID, never by value comparison.
type Controller interface {
	ControllerID() string
}

// Base carries the registry-owned bookkeeping. The id is bound exactly once,
// at registration; the removing flag is one-way.
type Base struct {
	id       ID
	removing bool
}

func (b *Base) ID() ID         { return b.id }
func (b *Base) Removing() bool { return b.removing }

// base gives the Registry access to the embedded bookkeeping of entities
// declared in other packages.
func (b *Base) base() *Base { return b }

type carrier interface {
	base() *Base
}
