// Package brain is the AI decision loop: it keeps a target, picks an ability
// and emits the same Command a human input source would.
package brain

import (
	"errors"
	"math"

	"github.com/lastdescent/actorsim/internal/ability"
	"github.com/lastdescent/actorsim/internal/actor"
	"github.com/lastdescent/actorsim/internal/core/clock"
	"github.com/lastdescent/actorsim/internal/core/geom"
	"github.com/lastdescent/actorsim/internal/core/ident"
	"github.com/lastdescent/actorsim/internal/input"
	"go.uber.org/zap"
)

const (
	DefaultReacquireInterval = 0.25
	DefaultDetectionRange    = 8.0
	minDetectionRange        = 0.1
)

var (
	errNoRunner = errors.New("brain needs an ability runner")
	errNoSpace  = errors.New("brain needs a spatial query")
	errNoBody   = errors.New("brain needs a position source")
	errNoClock  = errors.New("brain needs a clock")
)

// Space is what the brain asks the world.
type Space interface {
	ability.Space
	Lookup(id ident.ActorID) (ability.Target, bool)
	LineOfSight(from, to geom.Vec2) bool
}

// Readiness is the runner state the brain reads.
type Readiness interface {
	IsReady(slot int) bool
}

// Positioner reports the actor's position.
type Positioner interface {
	Position() geom.Vec2
}

// Facer reports the actor's facing; used as the direction to a target that
// sits exactly on top of it.
type Facer interface {
	Facing() geom.Vec2
}

// Allegiance tells the brain which actors fight on its side.
type Allegiance interface {
	IsFriendly(other ability.TeamTag) bool
}

// Behavior decides movement for the selected ability. def may be nil when the
// actor has no usable ability.
type Behavior interface {
	DecideMovement(def *ability.Definition, distance float64, dir geom.Vec2) geom.Vec2
}

type Config struct {
	ReacquireInterval  float64
	RequireLineOfSight bool
	TargetMask         ability.Mask // layers considered when acquiring; 0 means all
}

// Brain is both a Feature and an input.Producer. Wire it as the producer of
// the actor's command processor.
type Brain struct {
	actor.Base
	cfg      Config
	clk      clock.Clock
	space    Space
	runner   Readiness
	body     Positioner
	face     Facer
	team     Allegiance
	behavior Behavior

	ready     bool
	target    ident.ActorID
	countdown float64
	lastRead  float64
}

// New creates a brain. face and team may be nil; without a team every other
// actor is a candidate. behavior defaults to Chase.
func New(cfg Config, clk clock.Clock, space Space, runner Readiness, body Positioner, face Facer, team Allegiance, behavior Behavior) *Brain {
	if cfg.ReacquireInterval <= 0 {
		cfg.ReacquireInterval = DefaultReacquireInterval
	}
	if behavior == nil {
		behavior = NewChase(0)
	}
	return &Brain{cfg: cfg, clk: clk, space: space, runner: runner, body: body, face: face, team: team, behavior: behavior}
}

func (b *Brain) String() string { return "brain" }

func (b *Brain) Initialize(ctx *actor.Context) error {
	b.Ctx = ctx
	b.ready = false
	switch {
	case b.runner == nil:
		return errNoRunner
	case b.space == nil:
		return errNoSpace
	case b.body == nil:
		return errNoBody
	case b.clk == nil:
		return errNoClock
	}
	b.target = 0
	b.countdown = 0
	b.lastRead = b.clk.Now()
	b.ready = true
	return nil
}

// Target returns the current target id, zero when there is none.
func (b *Brain) Target() ident.ActorID { return b.target }

// ReadCommand runs one decision step.
func (b *Brain) ReadCommand() input.Command {
	cmd := input.Empty()
	if !b.ready {
		return cmd
	}
	now := b.clk.Now()
	b.countdown -= now - b.lastRead
	b.lastRead = now

	t, ok := b.lookup(b.target)
	if !ok || b.countdown <= 0 {
		prev := b.target
		t, ok = b.acquire()
		b.target = 0
		if ok {
			b.target = t.ID()
		}
		b.countdown = b.cfg.ReacquireInterval
		if b.target != prev {
			b.Ctx.Log.Debug("target changed",
				zap.Uint64("from", uint64(prev)), zap.Uint64("to", uint64(b.target)))
		}
	}
	if !ok {
		return cmd
	}

	self := b.body.Position()
	tp := t.Position()
	cmd.AimWorld, cmd.Aiming = tp, true

	to := tp.Sub(self)
	distance := to.Len()
	dir := b.facing()
	if distance > geom.Epsilon {
		dir = geom.V(to.X/distance, to.Y/distance)
	}

	def, slot := b.SelectAbility(distance)
	cmd.Move = b.behavior.DecideMovement(def, distance, dir)

	if b.ShouldCast(def, slot, distance, self, tp) {
		cmd.AttackPressed = true
		cmd.Slot = slot
	}
	return cmd
}

// SelectAbility picks the ready ability with the smallest range that still
// reaches distance (ties to the lowest slot). With none, it returns the
// ability with the longest range (ties to the lowest slot) to close in with.
// Returns (nil, NoSlot) when the actor has no abilities.
func (b *Brain) SelectAbility(distance float64) (*ability.Definition, int) {
	if b.Ctx == nil || b.Ctx.Definition == nil {
		return nil, input.NoSlot
	}
	defs := b.Ctx.Definition.Abilities

	best, bestSlot := (*ability.Definition)(nil), input.NoSlot
	for i, d := range defs {
		if d == nil || d.Range < distance || !b.runner.IsReady(i) {
			continue
		}
		if best == nil || d.Range < best.Range {
			best, bestSlot = d, i
		}
	}
	if best != nil {
		return best, bestSlot
	}
	for i, d := range defs {
		if d == nil {
			continue
		}
		if best == nil || d.Range > best.Range {
			best, bestSlot = d, i
		}
	}
	return best, bestSlot
}

// ShouldCast is the cast policy: in range, ready, and in sight when the
// brain requires it.
func (b *Brain) ShouldCast(def *ability.Definition, slot int, distance float64, from, to geom.Vec2) bool {
	if def == nil || slot < 0 {
		return false
	}
	if distance > def.Range || !b.runner.IsReady(slot) {
		return false
	}
	return !b.cfg.RequireLineOfSight || b.space.LineOfSight(from, to)
}

func (b *Brain) facing() geom.Vec2 {
	if b.face == nil {
		return geom.Right
	}
	return b.face.Facing().Or(geom.Right)
}

func (b *Brain) detectionRange() float64 {
	r := DefaultDetectionRange
	if b.Ctx.Definition != nil {
		r = b.Ctx.Definition.DetectionRange
	}
	return math.Max(minDetectionRange, r)
}

func (b *Brain) targetMask() ability.Mask {
	if b.cfg.TargetMask == 0 {
		return ability.MaskAll
	}
	return b.cfg.TargetMask
}

// lookup resolves id to a target that is still valid.
func (b *Brain) lookup(id ident.ActorID) (ability.Target, bool) {
	if id.IsZero() {
		return nil, false
	}
	t, ok := b.space.Lookup(id)
	if !ok || !b.valid(t) {
		return nil, false
	}
	return t, true
}

// valid drops missing targets, the actor itself and friendlies.
func (b *Brain) valid(t ability.Target) bool {
	if t == nil || t.ID() == b.Ctx.ID {
		return false
	}
	return b.team == nil || !b.team.IsFriendly(t)
}

// acquire returns the nearest valid candidate within detection range, ties
// broken by the lower id.
func (b *Brain) acquire() (ability.Target, bool) {
	self := b.body.Position()
	var (
		best     ability.Target
		bestDist = math.Inf(1)
	)
	for _, t := range b.space.Overlap(self, b.detectionRange(), b.targetMask()) {
		if !b.valid(t) {
			continue
		}
		d := self.Dist(t.Position())
		if d > bestDist || (d == bestDist && t.ID() > best.ID()) {
			continue
		}
		if b.cfg.RequireLineOfSight && !b.space.LineOfSight(self, t.Position()) {
			continue
		}
		best, bestDist = t, d
	}
	return best, best != nil
}
