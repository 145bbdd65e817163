package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftsync/driftsync/internal/core/entity"
)

type pawn struct {
	entity.Base
	applied []string
}

func (p *pawn) ApplyCommand(c *Command) {
	p.applied = append(p.applied, c.Kind)
}

type mapLookup map[entity.ID]entity.Entity

func (m mapLookup) Entity(id entity.ID) (entity.Entity, bool) {
	e, ok := m[id]
	return e, ok
}

type sender struct {
	id string
}

func (s *sender) ControllerID() string { return s.id }

// countingAlloc tracks how many commands and updates were reclaimed.
type countingAlloc struct {
	*Pool
	commandsReleased int
	updatesReleased  int
}

func newCountingAlloc() *countingAlloc {
	return &countingAlloc{Pool: NewPool()}
}

func (a *countingAlloc) PutCommand(c *Command) {
	a.commandsReleased++
	a.Pool.PutCommand(c)
}

func (a *countingAlloc) PutUpdate(u *Update) {
	a.updatesReleased++
	a.Pool.PutUpdate(u)
}

func batch(alloc Allocator, target entity.ID, kinds ...string) *Update {
	u := alloc.GetUpdate()
	u.Target = target
	for i, k := range kinds {
		c := alloc.GetCommand()
		c.Seq = uint32(i + 1)
		c.Kind = k
		u.Commands = append(u.Commands, c)
	}
	return u
}

func newRouterEnv(t *testing.T) (*Router, *entity.Registry, mapLookup, *countingAlloc) {
	t.Helper()
	reg := entity.NewRegistry(nil)
	lookup := mapLookup{}
	alloc := newCountingAlloc()
	return NewRouter(lookup, reg, alloc, nil), reg, lookup, alloc
}

func TestDispatchAppliesInArrivalOrder(t *testing.T) {
	router, reg, lookup, alloc := newRouterEnv(t)

	p := &pawn{}
	_, err := reg.Register(p)
	require.NoError(t, err)
	lookup[p.ID()] = p

	owner := &sender{id: "p1"}
	reg.SetController(p, owner)

	router.Dispatch(owner, batch(alloc, p.ID(), "left", "right", "jump"))

	assert.Equal(t, []string{"left", "right", "jump"}, p.applied)
	assert.Zero(t, alloc.commandsReleased, "applied commands belong to the entity")
	assert.Equal(t, 1, alloc.updatesReleased, "the shell goes back to the pool")
}

func TestDispatchRejectsNonController(t *testing.T) {
	router, reg, lookup, alloc := newRouterEnv(t)

	p := &pawn{}
	_, err := reg.Register(p)
	require.NoError(t, err)
	lookup[p.ID()] = p
	reg.SetController(p, &sender{id: "owner"})

	router.Dispatch(&sender{id: "intruder"}, batch(alloc, p.ID(), "left", "right"))

	assert.Empty(t, p.applied, "unauthorized batch must not mutate the entity")
	assert.Equal(t, 2, alloc.commandsReleased, "every rejected command is reclaimed")
	assert.Equal(t, 1, alloc.updatesReleased)
}

func TestDispatchRejectsWhenNoController(t *testing.T) {
	router, reg, lookup, alloc := newRouterEnv(t)

	p := &pawn{}
	_, err := reg.Register(p)
	require.NoError(t, err)
	lookup[p.ID()] = p

	router.Dispatch(&sender{id: "anyone"}, batch(alloc, p.ID(), "left"))

	assert.Empty(t, p.applied)
	assert.Equal(t, 1, alloc.commandsReleased)
}

func TestDispatchDropsStaleTarget(t *testing.T) {
	router, _, _, alloc := newRouterEnv(t)

	router.Dispatch(&sender{id: "p1"}, batch(alloc, 42, "left", "right"))

	assert.Equal(t, 2, alloc.commandsReleased, "stale batches must not leak")
	assert.Equal(t, 1, alloc.updatesReleased)
}

func TestDispatchDropsRemovingTarget(t *testing.T) {
	router, reg, lookup, alloc := newRouterEnv(t)

	p := &pawn{}
	_, err := reg.Register(p)
	require.NoError(t, err)
	lookup[p.ID()] = p
	owner := &sender{id: "p1"}
	reg.SetController(p, owner)
	reg.Destroy(p)

	router.Dispatch(owner, batch(alloc, p.ID(), "left"))

	assert.Empty(t, p.applied, "removing entities receive no commands")
	assert.Equal(t, 1, alloc.commandsReleased)
}

func TestAuthorityRecheckedPerBatch(t *testing.T) {
	router, reg, lookup, alloc := newRouterEnv(t)

	p := &pawn{}
	_, err := reg.Register(p)
	require.NoError(t, err)
	lookup[p.ID()] = p

	first := &sender{id: "first"}
	second := &sender{id: "second"}
	reg.SetController(p, first)

	router.Dispatch(first, batch(alloc, p.ID(), "a"))
	require.Equal(t, []string{"a"}, p.applied)

	// Controller changes mid-flight; the old controller's batches are now
	// invalid.
	reg.SetController(p, second)
	router.Dispatch(first, batch(alloc, p.ID(), "b"))

	assert.Equal(t, []string{"a"}, p.applied)
	assert.Equal(t, 1, alloc.commandsReleased)

	router.Dispatch(second, batch(alloc, p.ID(), "c"))
	assert.Equal(t, []string{"a", "c"}, p.applied)
}
