package system

import (
	"time"

	"github.com/lastdescent/actorsim/internal/core/clock"
	coresys "github.com/lastdescent/actorsim/internal/core/system"
	"github.com/lastdescent/actorsim/internal/world"
)

// FrameSink receives world snapshots.
type FrameSink interface {
	PublishFrame(step uint64, now float64, actors []world.ActorState)
}

// OutputSystem publishes a world snapshot every `every` steps.
// Phase 4 (Output).
type OutputSystem struct {
	world *world.World
	clock clock.Clock
	sink  FrameSink
	every uint64
	step  uint64
}

// NewOutputSystem creates the system. every < 1 publishes every step.
func NewOutputSystem(w *world.World, c clock.Clock, sink FrameSink, every int) *OutputSystem {
	if every < 1 {
		every = 1
	}
	return &OutputSystem{world: w, clock: c, sink: sink, every: uint64(every)}
}

func (s *OutputSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *OutputSystem) Update(_ time.Duration) {
	s.step++
	if s.sink == nil || s.step%s.every != 0 {
		return
	}
	s.sink.PublishFrame(s.step, s.clock.Now(), s.world.Snapshot())
}
