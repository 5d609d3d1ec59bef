// Package motor converts move and aim intent into a velocity and a facing.
package motor

import (
	"errors"

	"github.com/lastdescent/actorsim/internal/actor"
	"github.com/lastdescent/actorsim/internal/attr"
	"github.com/lastdescent/actorsim/internal/core/geom"
)

// DefaultSpeed is used when the actor has no move_speed attribute.
const DefaultSpeed = 3.0

var errNoBody = errors.New("motor needs a body")

// Body receives the velocity the motor wants. Integration belongs to the world.
type Body interface {
	SetVelocity(v geom.Vec2)
}

// Motor keeps the desired velocity between fixed steps and pushes it to the
// body on each FixedTick. It never moves the body itself.
type Motor struct {
	actor.Base
	body    Body
	attrs   attr.Provider
	desired geom.Vec2
	facing  geom.Vec2
}

// New creates a motor. attrs may be nil; the speed then falls back to
// DefaultSpeed.
func New(body Body, attrs attr.Provider) *Motor {
	return &Motor{body: body, attrs: attrs, facing: geom.Right}
}

func (m *Motor) String() string { return "motor" }

func (m *Motor) Initialize(ctx *actor.Context) error {
	m.Ctx = ctx
	if m.body == nil {
		return errNoBody
	}
	m.desired = geom.Zero
	return nil
}

// Move sets the movement intent. Inputs longer than one are normalized;
// shorter analog inputs scale the speed.
func (m *Motor) Move(dir geom.Vec2) {
	if dir.NearZero() {
		m.desired = geom.Zero
		return
	}
	if dir.LenSq() > 1 {
		dir = dir.Normalized()
	}
	m.desired = dir.Scale(m.speed())
}

// SetAim turns the actor. A near-zero direction keeps the current facing.
func (m *Motor) SetAim(dir geom.Vec2) {
	if !dir.NearZero() {
		m.facing = dir.Normalized()
	}
}

func (m *Motor) Facing() geom.Vec2 { return m.facing }

// Desired returns the velocity the motor will apply on the next fixed step.
func (m *Motor) Desired() geom.Vec2 { return m.desired }

// Halt drops movement intent and stops the body.
func (m *Motor) Halt() {
	m.desired = geom.Zero
	if m.body != nil {
		m.body.SetVelocity(geom.Zero)
	}
}

func (m *Motor) FixedTick(float64) {
	m.body.SetVelocity(m.desired)
}

func (m *Motor) speed() float64 {
	if m.attrs == nil {
		return DefaultSpeed
	}
	if s := m.attrs.Current(attr.MoveSpeed); s > 0 {
		return s
	}
	return DefaultSpeed
}
