package host

import (
	"github.com/driftsync/driftsync/internal/core/command"
	"github.com/driftsync/driftsync/internal/core/encoding"
	"github.com/driftsync/driftsync/internal/core/entity"
	"github.com/driftsync/driftsync/internal/core/event"
	"github.com/driftsync/driftsync/internal/core/observability/log"
	"github.com/driftsync/driftsync/internal/core/peer"
	"github.com/driftsync/driftsync/internal/core/room"
)

// DefaultAttempts is the retry budget BroadcastEvent uses unless told
// otherwise.
const DefaultAttempts = 3

// Options configures a Host. Room is required; everything else has a
// sensible default.
type Options struct {
	Room room.Room
	// SendEvery is the snapshot cadence: broadcast on every Nth tick.
	SendEvery room.Tick
	// StartTick seeds the room on the first Update.
	StartTick room.Tick
	// Interpreter frames packets. Defaults to the JSON baseline.
	Interpreter encoding.Interpreter
	// Allocator recycles command objects. Defaults to a fresh pool.
	Allocator command.Allocator
	Logger    log.Log
}

// Host is the authoritative sync core: it owns the tick loop, the peer and
// entity registries, command routing and event broadcast scheduling.
//
// Host is single-threaded by contract. Update, AddPeer, RemovePeer and the
// entity operations must be serialized by the caller; the server run loop
// drives everything from one goroutine.
type Host struct {
	room     room.Room
	entities *entity.Registry
	peers    *peer.Registry
	router   *command.Router
	alloc    command.Allocator
	codec    encoding.Interpreter

	hooks     []Hooks
	sendEvery room.Tick
	startTick room.Tick
	started   bool

	lg log.Log
}

func New(opts Options) *Host {
	lg := opts.Logger
	if lg == nil {
		lg = log.Nop()
	}
	if opts.SendEvery == 0 {
		opts.SendEvery = 1
	}

	alloc := opts.Allocator
	if alloc == nil {
		alloc = command.NewPool()
	}
	codec := opts.Interpreter
	if codec == nil {
		codec = encoding.NewJSON(alloc)
	}
	entities := entity.NewRegistry(lg)

	return &Host{
		room:      opts.Room,
		entities:  entities,
		peers:     peer.NewRegistry(lg),
		router:    command.NewRouter(opts.Room, entities, alloc, lg),
		alloc:     alloc,
		codec:     codec,
		sendEvery: opts.SendEvery,
		startTick: opts.StartTick,
		lg:        lg,
	}
}

// Subscribe registers an observer for host notifications.
func (h *Host) Subscribe(hooks Hooks) {
	h.hooks = append(h.hooks, hooks)
}

// AddPeer admits a transport connection. Admitting a connection twice is a
// no-op and returns the existing peer.
func (h *Host) AddPeer(conn peer.Connection) *peer.Peer {
	p, added := h.peers.Add(conn, h.codec)
	if !added {
		return p
	}
	p.OnInbound(h.handleInbound)
	h.lg.Info("peer joined", log.String("peer", p.ID()), log.String("conn", conn.ID()))
	for _, hk := range h.hooks {
		hk.PeerJoined(p)
	}
	return p
}

// RemovePeer drops the peer for a connection. Observers are notified before
// the peer loses authority, and revocation completes before RemovePeer
// returns. Unknown connections are ignored.
func (h *Host) RemovePeer(conn peer.Connection) {
	h.RemovePeerID(conn.ID())
}

// RemovePeerID is RemovePeer keyed by connection id, for callers that only
// kept the key.
func (h *Host) RemovePeerID(connID string) {
	p, ok := h.peers.Remove(connID)
	if !ok {
		return
	}
	for _, hk := range h.hooks {
		hk.PeerLeft(p)
	}
	h.entities.RevokeAll(p)
	h.lg.Info("peer left", log.String("peer", p.ID()))
}

// Update advances the server by exactly one tick: per-peer bookkeeping
// first, then the simulation step, then snapshot broadcast if the new tick
// is a send-tick. The room is initialized lazily on the first call.
func (h *Host) Update() {
	if !h.started {
		h.room.Init(h.startTick)
		h.started = true
	}

	h.peers.Each(func(p *peer.Peer) {
		if err := p.Update(); err != nil {
			h.lg.Warn("peer update failed", log.String("peer", p.ID()), log.Err(err))
			for _, hk := range h.hooks {
				hk.PeerError(p, err)
			}
		}
	})

	h.room.Advance()

	tick := h.room.Tick()
	if !tick.SendTick(h.sendEvery) {
		return
	}

	snap, err := h.room.Capture()
	if err != nil {
		h.lg.Error("snapshot capture failed", log.Uint32("tick", uint32(tick)), log.Err(err))
		return
	}
	destroyed := h.entities.Destroyed()
	h.peers.Each(func(p *peer.Peer) {
		if err := p.SendSnapshot(snap, destroyed); err != nil {
			for _, hk := range h.hooks {
				hk.PeerError(p, err)
			}
		}
	})
}

// Spawn creates an entity through construct, assigns it the next id and
// attaches it to the room.
func Spawn[T entity.Entity](h *Host, construct func() T) (T, error) {
	e := construct()
	if _, err := h.entities.Register(e); err != nil {
		var zero T
		return zero, err
	}
	h.room.Attach(e)
	return e, nil
}

// DestroyEntity marks an entity for removal. Its controller, if any, loses
// authority immediately; the id stays in the destroyed set until purged.
func (h *Host) DestroyEntity(e entity.Entity) {
	h.entities.Destroy(e)
}

// GrantControl makes p the authority over e.
func (h *Host) GrantControl(e entity.Entity, p *peer.Peer) {
	h.entities.SetController(e, p)
}

// RevokeControl clears e's controller.
func (h *Host) RevokeControl(e entity.Entity) {
	h.entities.ClearController(e)
}

// BroadcastEvent queues one independent delivery of ev per registered peer.
// attempts follows the event package sentinels: event.Unlimited retries
// until acknowledged, event.OneShot sends once, positive budgets are spent
// per send attempt. Peers admitted later receive nothing.
func (h *Host) BroadcastEvent(ev event.Event, attempts int) {
	h.peers.Each(func(p *peer.Peer) {
		p.QueueEvent(ev, attempts)
	})
}

// Broadcast is BroadcastEvent with the default retry budget.
func (h *Host) Broadcast(ev event.Event) {
	h.BroadcastEvent(ev, DefaultAttempts)
}

// Tick reports the current simulation tick.
func (h *Host) Tick() room.Tick { return h.room.Tick() }

// Room exposes the simulation collaborator.
func (h *Host) Room() room.Room { return h.room }

// Entities exposes the entity registry.
func (h *Host) Entities() *entity.Registry { return h.entities }

// Peers exposes the peer registry.
func (h *Host) Peers() *peer.Registry { return h.peers }

// Allocator exposes the command pool shared with the interpreter.
func (h *Host) Allocator() command.Allocator { return h.alloc }

func (h *Host) handleInbound(p *peer.Peer, in encoding.Inbound) {
	for _, ev := range in.Events {
		for _, hk := range h.hooks {
			hk.EventReceived(p, ev)
		}
	}
	for _, u := range in.Updates {
		h.router.Dispatch(p, u)
	}
}
