// Package abilities runs an actor's ability slots: cooldowns, the global
// cooldown gate, targeting and active strike windows.
package abilities

import (
	"errors"

	"github.com/lastdescent/actorsim/internal/ability"
	"github.com/lastdescent/actorsim/internal/actor"
	"github.com/lastdescent/actorsim/internal/core/clock"
	"github.com/lastdescent/actorsim/internal/core/event"
	"github.com/lastdescent/actorsim/internal/core/geom"
	"github.com/lastdescent/actorsim/internal/core/ident"
	"go.uber.org/zap"
)

// DefaultGlobalCooldown is the gate DefaultConfig installs.
const DefaultGlobalCooldown = 0.2

var (
	errNoSpace = errors.New("runner needs a spatial query")
	errNoBody  = errors.New("runner needs a position source")
	errNoClock = errors.New("runner needs a clock")
)

type Config struct {
	GlobalCooldown float64 // seconds; 0 or negative disables the gate
}

func DefaultConfig() Config {
	return Config{GlobalCooldown: DefaultGlobalCooldown}
}

// Positioner reports where the caster is.
type Positioner interface {
	Position() geom.Vec2
}

// Facer reports which way the caster looks.
type Facer interface {
	Facing() geom.Vec2
}

type window struct {
	def   *ability.Definition
	aim   geom.Vec2
	start float64
	end   float64
	hit   map[ident.ActorID]struct{}
}

// Runner owns the cooldown state of one actor. Slot i of the cooldown table
// belongs to ability i of the definition.
type Runner struct {
	actor.Base
	cfg   Config
	clk   clock.Clock
	space ability.Space
	body  Positioner
	face  Facer
	team  ability.TeamTag

	readyAt       []float64
	globalReadyAt float64
	windows       []*window
	preview       ability.Preview
	hasPreview    bool
}

// New creates a runner. face and team may be nil: aim then falls back to +X
// and every other actor counts as hostile.
func New(cfg Config, clk clock.Clock, space ability.Space, body Positioner, face Facer, team ability.TeamTag) *Runner {
	if cfg.GlobalCooldown < 0 {
		cfg.GlobalCooldown = 0
	}
	return &Runner{cfg: cfg, clk: clk, space: space, body: body, face: face, team: team}
}

func (r *Runner) String() string { return "abilities" }

func (r *Runner) Initialize(ctx *actor.Context) error {
	r.Ctx = ctx
	switch {
	case ctx.Definition == nil:
		return actor.ErrNoDefinition
	case r.clk == nil:
		return errNoClock
	case r.space == nil:
		return errNoSpace
	case r.body == nil:
		return errNoBody
	}
	if r.team == nil {
		ctx.Log.Warn("runner has no team, every actor is hostile")
	}
	r.readyAt = make([]float64, ctx.Definition.Slots())
	r.globalReadyAt = 0
	r.windows = r.windows[:0]
	r.hasPreview = false
	return nil
}

// ID, Position and Facing make the runner the Caster handed to targeting.
func (r *Runner) ID() ident.ActorID {
	if r.Ctx == nil {
		return 0
	}
	return r.Ctx.ID
}

func (r *Runner) Position() geom.Vec2 { return r.body.Position() }

func (r *Runner) Facing() geom.Vec2 {
	if r.face == nil {
		return geom.Right
	}
	return r.face.Facing()
}

// Slots returns the number of cooldown slots.
func (r *Runner) Slots() int { return len(r.readyAt) }

// Definition returns the ability in slot, or nil.
func (r *Runner) Definition(slot int) *ability.Definition {
	if r.Ctx == nil {
		return nil
	}
	return r.Ctx.Definition.Ability(slot)
}

// IsReady reports whether slot may cast now: the global gate is open, the
// slot exists and its own cooldown has elapsed.
func (r *Runner) IsReady(slot int) bool {
	if slot < 0 || slot >= len(r.readyAt) {
		return false
	}
	now := r.clk.Now()
	return now >= r.globalReadyAt && now >= r.readyAt[slot]
}

// ReadyAt returns when slot comes off cooldown, global gate included.
func (r *Runner) ReadyAt(slot int) float64 {
	if slot < 0 || slot >= len(r.readyAt) {
		return 0
	}
	return max(r.readyAt[slot], r.globalReadyAt)
}

// TryCast casts def from slot toward aim. It returns false with no state
// change and no events when def is nil, the slot does not exist or is
// cooling down, or the global cooldown holds. A near-zero aim uses the
// current facing.
func (r *Runner) TryCast(def *ability.Definition, slot int, aim geom.Vec2) bool {
	if def == nil || r.Ctx == nil {
		return false
	}
	if !r.IsReady(slot) {
		r.Ctx.Log.Debug("cast rejected",
			zap.String("ability", def.ID), zap.Int("slot", slot))
		return false
	}
	now := r.clk.Now()
	dir := ability.Aim(aim, r)

	if def.Windowed() {
		start := now + def.Window.PreDelay
		w := &window{
			def:   def,
			aim:   dir,
			start: start,
			end:   start + def.Window.Duration,
			hit:   make(map[ident.ActorID]struct{}),
		}
		r.windows = append(r.windows, w)
		r.sample(w, now)
	} else if !def.TryCast(dir, r, r.team, r.space) {
		return false
	}

	r.readyAt[slot] = now + def.Cooldown
	r.globalReadyAt = now + r.cfg.GlobalCooldown
	r.preview, r.hasPreview = def.Preview(r.Position(), dir), true
	event.Publish(r.Ctx.Bus, event.AbilityCast{AbilityID: def.ID, Slot: slot, Aim: dir})
	return true
}

// LastPreview returns the geometry of the most recent successful cast.
func (r *Runner) LastPreview() (ability.Preview, bool) { return r.preview, r.hasPreview }

// Active reports how many strike windows are open.
func (r *Runner) Active() int { return len(r.windows) }

// Tick samples open strike windows and closes finished ones.
func (r *Runner) Tick(float64) {
	if len(r.windows) == 0 {
		return
	}
	now := r.clk.Now()
	open := r.windows[:0]
	for _, w := range r.windows {
		r.sample(w, now)
		if now < w.end {
			open = append(open, w)
		}
	}
	for i := len(open); i < len(r.windows); i++ {
		r.windows[i] = nil
	}
	r.windows = open
}

// sample strikes every target inside the window's arc that it has not hit yet.
func (r *Runner) sample(w *window, now float64) {
	if now < w.start || now > w.end {
		return
	}
	for _, t := range w.def.Targets(w.aim, r, r.team, r.space) {
		if _, done := w.hit[t.ID()]; done {
			continue
		}
		w.hit[t.ID()] = struct{}{}
		w.def.Strike(r.ID(), t)
	}
}

// Halt closes every open window.
func (r *Runner) Halt() {
	for i := range r.windows {
		r.windows[i] = nil
	}
	r.windows = r.windows[:0]
}
