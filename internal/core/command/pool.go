package command

import (
	"sync"

	"github.com/driftsync/driftsync/internal/core/entity"
)

var _ Allocator = (*Pool)(nil)

// Pool provides object pooling for commands and updates to reduce GC
// pressure on the per-tick hot path.
type Pool struct {
	commands sync.Pool
	updates  sync.Pool
}

func NewPool() *Pool {
	return &Pool{
		commands: sync.Pool{
			New: func() any { return &Command{} },
		},
		updates: sync.Pool{
			New: func() any {
				return &Update{Commands: make([]*Command, 0, 8)}
			},
		},
	}
}

// GetCommand gets a reset command from the pool.
func (p *Pool) GetCommand() *Command {
	c := p.commands.Get().(*Command)
	c.reset()
	return c
}

// PutCommand returns a command to the pool.
func (p *Pool) PutCommand(c *Command) {
	if c != nil {
		p.commands.Put(c)
	}
}

// GetUpdate gets a reset update shell from the pool.
func (p *Pool) GetUpdate() *Update {
	u := p.updates.Get().(*Update)
	u.reset()
	return u
}

// PutUpdate returns an update shell to the pool. The commands it referenced
// are not released; their ownership is tracked separately.
func (p *Pool) PutUpdate(u *Update) {
	if u != nil {
		p.updates.Put(u)
	}
}

func (c *Command) reset() {
	c.Seq = 0
	c.Kind = ""
	c.Payload = nil
}

func (u *Update) reset() {
	u.Target = entity.None
	// Keep the backing array, drop the references.
	for i := range u.Commands {
		u.Commands[i] = nil
	}
	u.Commands = u.Commands[:0]
}
