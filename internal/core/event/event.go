package event

import "github.com/google/uuid"

// Retry budget sentinels for Delivery.
const (
	// Unlimited retries: the delivery stays queued until acknowledged.
	Unlimited = -1
	// OneShot sends once and forgets, acknowledged or not.
	OneShot = 0
)

// Event is an application-level message scheduled for reliable delivery to
// peers, as opposed to the per-tick state snapshots.
type Event struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Payload []byte `json:"payload,omitempty"`
}

// New builds an event with a fresh id.
func New(kind string, payload []byte) Event {
	return Event{ID: uuid.NewString(), Kind: kind, Payload: payload}
}

// Delivery is one peer's copy of a broadcast intent. Deliveries share the
// event value but own their remaining budget, so one peer exhausting its
// retries never affects another's copy.
type Delivery struct {
	Event    Event
	Attempts int
}

// Spend consumes one send attempt and reports whether the delivery should
// stay queued. Budgets are spent per send attempt, never on a wall clock.
func (d *Delivery) Spend() bool {
	switch {
	case d.Attempts == Unlimited:
		return true
	case d.Attempts <= OneShot:
		return false
	default:
		d.Attempts--
		return d.Attempts > 0
	}
}
