package system

import "time"

// Phase defines execution ordering within a single simulation step.
type Phase int

const (
	PhaseFixed   Phase = iota // 0: actor FixedTick (motor writes velocities)
	PhasePhysics              // 1: integrate bodies, refresh spatial grid
	PhaseClock                // 2: advance the simulation clock
	PhaseUpdate               // 3: actor Tick (input, AI, abilities, cooldown windows)
	PhaseOutput               // 4: presentation flush, debug stream
	PhaseCleanup              // 5: destroy queued actors
)

// Fixed reports whether systems of this phase receive the fixed-step delta.
func (p Phase) Fixed() bool { return p <= PhasePhysics }

// System is the interface every simulation system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
