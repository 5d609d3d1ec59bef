package input

import "github.com/lastdescent/actorsim/internal/core/geom"

// NoSlot marks a Command that does not request a specific ability slot.
const NoSlot = -1

// Command is one tick's intent snapshot. Producers build a fresh value every
// tick; consumers never keep it past the tick it was read in.
type Command struct {
	Move          geom.Vec2 `json:"move"`
	AimWorld      geom.Vec2 `json:"aim"`
	Aiming        bool      `json:"aiming,omitempty"` // AimWorld is meaningful
	AttackPressed bool      `json:"attack,omitempty"`
	Slot          int       `json:"slot"`
}

// Empty returns the idle command: no movement, no aim, no attack.
func Empty() Command { return Command{Slot: NoSlot} }

// HasSlot reports whether the command names an ability slot.
func (c Command) HasSlot() bool { return c.Slot >= 0 }

// Producer yields exactly one Command per tick. Human input, AI, scripts and
// replays all implement it and are interchangeable.
type Producer interface {
	ReadCommand() Command
}

// ProducerFunc adapts a function to Producer.
type ProducerFunc func() Command

func (f ProducerFunc) ReadCommand() Command { return f() }

// Null never asks for anything.
type Null struct{}

func (Null) ReadCommand() Command { return Empty() }

// Scripted replays a queue of commands, then idles.
type Scripted struct {
	queue []Command
}

func NewScripted(cmds ...Command) *Scripted {
	return &Scripted{queue: append([]Command(nil), cmds...)}
}

// Push appends commands to the queue.
func (s *Scripted) Push(cmds ...Command) { s.queue = append(s.queue, cmds...) }

// Len returns the number of queued commands.
func (s *Scripted) Len() int { return len(s.queue) }

func (s *Scripted) ReadCommand() Command {
	if len(s.queue) == 0 {
		return Empty()
	}
	c := s.queue[0]
	s.queue = s.queue[1:]
	return c
}
