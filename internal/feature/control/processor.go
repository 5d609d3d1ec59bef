// Package control feeds one Command per tick from a producer into the
// motor and the ability runner.
package control

import (
	"errors"

	"github.com/lastdescent/actorsim/internal/ability"
	"github.com/lastdescent/actorsim/internal/actor"
	"github.com/lastdescent/actorsim/internal/core/geom"
	"github.com/lastdescent/actorsim/internal/input"
)

var errNoSource = errors.New("processor needs a command producer")

// Mover is the motor side of the processor.
type Mover interface {
	Move(dir geom.Vec2)
	SetAim(dir geom.Vec2)
}

// Caster is the ability side of the processor.
type Caster interface {
	Definition(slot int) *ability.Definition
	TryCast(def *ability.Definition, slot int, aim geom.Vec2) bool
}

// Positioner reports the actor's world position, used to turn aim points
// into directions.
type Positioner interface {
	Position() geom.Vec2
}

// Processor reads its producer once per Tick. Attack presses without a slot
// cast slot 0.
type Processor struct {
	actor.Base
	src    input.Producer
	motor  Mover
	caster Caster
	body   Positioner
	last   input.Command
	casts  int
}

// New creates a processor. motor and caster may be nil for actors that only
// move or only cast.
func New(src input.Producer, motor Mover, caster Caster, body Positioner) *Processor {
	return &Processor{src: src, motor: motor, caster: caster, body: body}
}

func (p *Processor) String() string { return "control" }

func (p *Processor) Initialize(ctx *actor.Context) error {
	p.Ctx = ctx
	if p.src == nil {
		return errNoSource
	}
	if p.motor == nil {
		ctx.Log.Warn("processor has no motor, movement ignored")
	}
	if p.caster == nil {
		ctx.Log.Warn("processor has no ability runner, attacks ignored")
	}
	return nil
}

// Last returns the most recent command read.
func (p *Processor) Last() input.Command { return p.last }

// Casts counts successful casts issued by this processor.
func (p *Processor) Casts() int { return p.casts }

func (p *Processor) Tick(float64) {
	cmd := p.src.ReadCommand()
	p.last = cmd
	p.Apply(cmd)
}

// Apply dispatches one command.
func (p *Processor) Apply(cmd input.Command) {
	aim := geom.Zero
	if cmd.Aiming && p.body != nil {
		aim = cmd.AimWorld.Sub(p.body.Position())
	}

	if p.motor != nil {
		switch {
		case !aim.NearZero():
			p.motor.SetAim(aim)
		case !cmd.Move.NearZero():
			p.motor.SetAim(cmd.Move)
		}
		if cmd.Move.NearZero() {
			p.motor.Move(geom.Zero)
		} else {
			p.motor.Move(cmd.Move)
		}
	}

	if !cmd.AttackPressed || p.caster == nil {
		return
	}
	slot := 0
	if cmd.HasSlot() {
		slot = cmd.Slot
	}
	if p.caster.TryCast(p.caster.Definition(slot), slot, aim) {
		p.casts++
	}
}
