// Package system holds the per-phase simulation systems the core runner
// drives each step.
package system

import (
	"time"

	"github.com/lastdescent/actorsim/internal/core/clock"
	coresys "github.com/lastdescent/actorsim/internal/core/system"
	"github.com/lastdescent/actorsim/internal/world"
)

// FixedActorSystem runs FixedTick on every live actor in spawn order.
// Phase 0 (Fixed): motors push velocities to bodies here.
type FixedActorSystem struct {
	world *world.World
}

func NewFixedActorSystem(w *world.World) *FixedActorSystem {
	return &FixedActorSystem{world: w}
}

func (s *FixedActorSystem) Phase() coresys.Phase { return coresys.PhaseFixed }

func (s *FixedActorSystem) Update(dt time.Duration) {
	fdt := dt.Seconds()
	for _, a := range s.world.Actors() {
		a.Kernel.FixedTick(fdt)
	}
}

// PhysicsSystem integrates body velocities. Phase 1 (Physics).
type PhysicsSystem struct {
	world *world.World
}

func NewPhysicsSystem(w *world.World) *PhysicsSystem {
	return &PhysicsSystem{world: w}
}

func (s *PhysicsSystem) Phase() coresys.Phase { return coresys.PhasePhysics }

func (s *PhysicsSystem) Update(dt time.Duration) {
	s.world.Integrate(dt.Seconds())
}

// ClockSystem advances simulation time before any actor Tick reads it.
// Phase 2 (Clock).
type ClockSystem struct {
	clock *clock.Sim
}

func NewClockSystem(c *clock.Sim) *ClockSystem {
	return &ClockSystem{clock: c}
}

func (s *ClockSystem) Phase() coresys.Phase { return coresys.PhaseClock }

func (s *ClockSystem) Update(dt time.Duration) {
	s.clock.Advance(dt.Seconds())
}

// UpdateActorSystem runs Tick on every live actor in spawn order: command
// processing, AI, ability windows, presentation. Phase 3 (Update).
type UpdateActorSystem struct {
	world *world.World
}

func NewUpdateActorSystem(w *world.World) *UpdateActorSystem {
	return &UpdateActorSystem{world: w}
}

func (s *UpdateActorSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *UpdateActorSystem) Update(dt time.Duration) {
	sec := dt.Seconds()
	for _, a := range s.world.Actors() {
		a.Kernel.Tick(sec)
	}
}
