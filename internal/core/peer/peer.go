package peer

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/driftsync/driftsync/internal/core/encoding"
	"github.com/driftsync/driftsync/internal/core/entity"
	"github.com/driftsync/driftsync/internal/core/event"
	"github.com/driftsync/driftsync/internal/core/observability/log"
	"github.com/driftsync/driftsync/internal/core/room"
	"github.com/driftsync/driftsync/internal/core/transport"
	"github.com/driftsync/driftsync/pkg/sequence"
)

var _ entity.Controller = (*Peer)(nil)

// Peer wraps one transport connection on the server side. It owns the
// outbound reliable event queue and drains inbound packets once per tick.
// Exactly one Peer exists per connection.
type Peer struct {
	id    string
	conn  Connection
	codec encoding.Interpreter

	outbound *sequence.Queue[*event.Delivery]

	// onInbound receives every decoded inbound packet. Wired by the host
	// before the peer joins the tick loop.
	onInbound func(*Peer, encoding.Inbound)

	lg log.Log
}

// Connection is the transport contract the peer needs: identity, raw send,
// a non-blocking per-tick drain and a liveness probe.
type Connection interface {
	ID() string
	Send(data []byte) error
	Poll() [][]byte
	Closed() bool
	Close() error
}

func New(conn Connection, codec encoding.Interpreter, lg log.Log) *Peer {
	if lg == nil {
		lg = log.Nop()
	}
	id := uuid.NewString()
	return &Peer{
		id:       id,
		conn:     conn,
		codec:    codec,
		outbound: sequence.NewQueue[*event.Delivery](8),
		lg:       lg.With(log.String("peer", id)),
	}
}

// ID is the server-side peer identity, distinct from the connection id.
func (p *Peer) ID() string { return p.id }

// ControllerID makes a peer usable as an entity controller.
func (p *Peer) ControllerID() string { return p.id }

// Conn exposes the underlying transport connection.
func (p *Peer) Conn() Connection { return p.conn }

// OnInbound sets the sink for decoded inbound packets.
func (p *Peer) OnInbound(fn func(*Peer, encoding.Inbound)) {
	p.onInbound = fn
}

// Update runs the peer's per-tick bookkeeping: drain and decode inbound
// packets, apply acknowledgements, then walk the reliable queue attempting
// sends and spending retry budgets. Decode failures skip the packet; send
// failures are collected and reported, never fatal to the tick.
func (p *Peer) Update() error {
	var errs error

	if p.conn.Closed() {
		errs = fmt.Errorf("peer %s: %w", p.id, transport.ErrClosed)
	}

	for _, pkt := range p.conn.Poll() {
		in, err := p.codec.DecodeInbound(pkt)
		if err != nil {
			p.lg.Debug("dropping undecodable packet", log.Err(err))
			continue
		}
		for _, id := range in.Acks {
			p.Acknowledge(id)
		}
		if p.onInbound != nil {
			p.onInbound(p, in)
		}
	}

	p.outbound.Filter(func(d *event.Delivery) bool {
		data, err := p.codec.EncodeEvent(d.Event)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("encode event %s: %w", d.Event.ID, err))
			return false
		}
		if err = p.conn.Send(data); err != nil {
			errs = errors.Join(errs, fmt.Errorf("send event %s: %w", d.Event.ID, err))
		}
		return d.Spend()
	})

	return errs
}

// QueueEvent enqueues one delivery intent with the given retry budget.
func (p *Peer) QueueEvent(ev event.Event, attempts int) {
	p.outbound.Push(&event.Delivery{Event: ev, Attempts: attempts})
}

// Acknowledge drops the delivery for an event id the peer confirmed.
func (p *Peer) Acknowledge(eventID string) {
	p.outbound.Filter(func(d *event.Delivery) bool {
		return d.Event.ID != eventID
	})
}

// PendingEvents reports how many deliveries are still queued.
func (p *Peer) PendingEvents() int { return p.outbound.Len() }

// SendSnapshot frames and transmits a state snapshot along with the ids of
// entities destroyed since their last purge.
func (p *Peer) SendSnapshot(snap room.Snapshot, destroyed []entity.ID) error {
	data, err := p.codec.EncodeSnapshot(snap, destroyed)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err = p.conn.Send(data); err != nil {
		return fmt.Errorf("send snapshot: %w", err)
	}
	return nil
}

// Close tears down the underlying connection.
func (p *Peer) Close() error {
	return p.conn.Close()
}
