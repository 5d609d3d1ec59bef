package system

import (
	"sort"
	"time"
)

// Runner executes systems in phase order each step.
type Runner struct {
	systems []System
	sorted  bool
	steps   uint64
}

func NewRunner() *Runner {
	return &Runner{
		systems: make([]System, 0, 8),
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

// Step runs one external frame: fixed-step phases get fixed, the rest get dt.
// Within a phase, systems run in registration order.
func (r *Runner) Step(dt, fixed time.Duration) {
	r.ensureSorted()
	for _, s := range r.systems {
		if s.Phase().Fixed() {
			s.Update(fixed)
		} else {
			s.Update(dt)
		}
	}
	r.steps++
}

// Steps returns how many full frames have run.
func (r *Runner) Steps() uint64 { return r.steps }

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}
