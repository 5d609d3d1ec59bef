package present

import (
	"errors"

	"github.com/lastdescent/actorsim/internal/actor"
	"github.com/lastdescent/actorsim/internal/core/clock"
	"github.com/lastdescent/actorsim/internal/core/event"
)

// DefaultDespawnDelay is how long a corpse stays before DeathFinished.
const DefaultDespawnDelay = 2.0

var errNoClock = errors.New("death timer needs a clock")

// DeathTimer stands in for the end of the death animation: it publishes
// DeathFinished a fixed delay after DeathStarted. It must not be frozen by
// the death coordinator.
type DeathTimer struct {
	actor.Base
	clk   clock.Clock
	delay float64

	armed bool
	at    float64
	tok   event.Token
}

// NewDeathTimer creates a timer. A non-positive delay uses DefaultDespawnDelay.
func NewDeathTimer(clk clock.Clock, delay float64) *DeathTimer {
	if delay <= 0 {
		delay = DefaultDespawnDelay
	}
	return &DeathTimer{clk: clk, delay: delay}
}

func (d *DeathTimer) String() string { return "death_timer" }

func (d *DeathTimer) Initialize(ctx *actor.Context) error {
	d.Ctx = ctx
	if d.clk == nil {
		return errNoClock
	}
	d.armed = false
	d.tok = event.Subscribe(ctx.Bus, func(event.DeathStarted) {
		if d.armed {
			return
		}
		d.armed = true
		d.at = d.clk.Now() + d.delay
	})
	return nil
}

// Pending reports whether DeathFinished is scheduled and when.
func (d *DeathTimer) Pending() (float64, bool) { return d.at, d.armed }

func (d *DeathTimer) Tick(float64) {
	if !d.armed || d.clk.Now() < d.at {
		return
	}
	d.armed = false
	event.Publish(d.Ctx.Bus, event.DeathFinished{})
}

func (d *DeathTimer) Shutdown() {
	if d.Ctx != nil {
		d.Ctx.Bus.Unsubscribe(d.tok)
	}
}
