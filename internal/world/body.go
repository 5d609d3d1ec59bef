package world

import (
	"github.com/lastdescent/actorsim/internal/ability"
	"github.com/lastdescent/actorsim/internal/actor"
	"github.com/lastdescent/actorsim/internal/core/event"
	"github.com/lastdescent/actorsim/internal/core/geom"
	"github.com/lastdescent/actorsim/internal/core/ident"
)

// DefaultBodyRadius is used when the definition leaves body_radius unset.
const DefaultBodyRadius = 0.5

// DefaultLayer is the hurtbox layer of a definition without one.
const DefaultLayer ability.Mask = 1

// Body is an actor's kinematic presence in the world: position, velocity,
// collision radius and hurtbox layer. It is the ability.Target other actors
// see. The world integrates it; the motor only sets its velocity.
type Body struct {
	actor.Base
	team ability.TeamTag

	pos        geom.Vec2
	vel        geom.Vec2
	radius     float64
	layer      ability.Mask
	collidable bool
}

// NewBody creates a body at pos. team may be nil.
func NewBody(pos geom.Vec2, team ability.TeamTag) *Body {
	return &Body{pos: pos, team: team, radius: DefaultBodyRadius, layer: DefaultLayer}
}

func (b *Body) String() string { return "body" }

func (b *Body) Initialize(ctx *actor.Context) error {
	b.Ctx = ctx
	b.vel = geom.Zero
	b.collidable = true
	b.radius, b.layer = DefaultBodyRadius, DefaultLayer
	if def := ctx.Definition; def != nil {
		if def.BodyRadius > 0 {
			b.radius = def.BodyRadius
		}
		if def.Layer != 0 {
			b.layer = def.Layer
		}
	}
	return nil
}

func (b *Body) ID() ident.ActorID {
	if b.Ctx == nil {
		return 0
	}
	return b.Ctx.ID
}

func (b *Body) Position() geom.Vec2 { return b.pos }
func (b *Body) Velocity() geom.Vec2 { return b.vel }
func (b *Body) Radius() float64 { return b.radius }
func (b *Body) Layer() ability.Mask { return b.layer }
func (b *Body) Collidable() bool { return b.collidable }

func (b *Body) Team() (int, bool) {
	if b.team == nil {
		return 0, false
	}
	return b.team.Team()
}

func (b *Body) Events() *event.Bus {
	if b.Ctx == nil {
		return nil
	}
	return b.Ctx.Bus
}

func (b *Body) SetVelocity(v geom.Vec2) {
	if !b.collidable {
		return
	}
	b.vel = v
}

// Halt disables collision and zeroes velocity. Spatial queries stop
// returning the body.
func (b *Body) Halt() {
	b.collidable = false
	b.vel = geom.Zero
}
