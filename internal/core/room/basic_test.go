package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftsync/driftsync/internal/core/entity"
)

type marker struct {
	entity.Base
	Name string `json:"name"`
}

func TestSendTickPredicate(t *testing.T) {
	assert.False(t, Tick(1).SendTick(3))
	assert.False(t, Tick(2).SendTick(3))
	assert.True(t, Tick(3).SendTick(3))
	assert.False(t, Tick(4).SendTick(3))
	assert.True(t, Tick(6).SendTick(3))
	assert.True(t, Tick(5).SendTick(1), "cadence 1 broadcasts every tick")
	assert.False(t, Tick(5).SendTick(0), "cadence 0 never broadcasts")
}

func TestAdvanceRunsStepHook(t *testing.T) {
	b := NewBasic()
	b.Init(10)

	var steps []Tick
	b.Step = func(tick Tick) { steps = append(steps, tick) }

	b.Advance()
	b.Advance()

	assert.Equal(t, Tick(12), b.Tick())
	assert.Equal(t, []Tick{11, 12}, steps)
}

func TestAttachAndLookup(t *testing.T) {
	b := NewBasic()
	reg := entity.NewRegistry(nil)

	m := &marker{Name: "flag"}
	_, err := reg.Register(m)
	require.NoError(t, err)
	b.Attach(m)
	b.Attach(m) // attach twice is a no-op

	got, ok := b.Entity(m.ID())
	require.True(t, ok)
	assert.Same(t, m, got)
	assert.Len(t, b.Entities(), 1)
}

func TestCaptureChecksumTracksState(t *testing.T) {
	b := NewBasic()
	reg := entity.NewRegistry(nil)

	m := &marker{Name: "a"}
	_, err := reg.Register(m)
	require.NoError(t, err)
	b.Attach(m)

	first, err := b.Capture()
	require.NoError(t, err)
	require.NotZero(t, first.Checksum)

	same, err := b.Capture()
	require.NoError(t, err)
	assert.Equal(t, first.Checksum, same.Checksum, "identical state hashes identically")

	m.Name = "b"
	changed, err := b.Capture()
	require.NoError(t, err)
	assert.NotEqual(t, first.Checksum, changed.Checksum)
	assert.Equal(t, changed, b.Last())
}

func TestDropRemovesFromLiveSet(t *testing.T) {
	b := NewBasic()
	reg := entity.NewRegistry(nil)

	m := &marker{}
	_, err := reg.Register(m)
	require.NoError(t, err)
	b.Attach(m)

	b.Drop(m.ID())
	_, ok := b.Entity(m.ID())
	assert.False(t, ok)
	assert.Empty(t, b.Entities())

	b.Drop(m.ID()) // already gone, ignored
}
