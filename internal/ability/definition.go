package ability

import (
	"errors"
	"fmt"

	"github.com/lastdescent/actorsim/internal/core/event"
	"github.com/lastdescent/actorsim/internal/core/geom"
	"github.com/lastdescent/actorsim/internal/core/ident"
)

// Mask selects which body layers a shape can hit.
type Mask uint32

const MaskAll Mask = ^Mask(0)

// Shape selects the targeting algorithm of a Definition.
type Shape int

const (
	ShapeArea Shape = iota // circle at an offset along the aim
	ShapeRay               // first unblocked hit along the aim
	ShapeArc               // facing-relative arc around the caster
)

var shapeNames = map[Shape]string{ShapeArea: "area", ShapeRay: "ray", ShapeArc: "arc"}

func (s Shape) String() string {
	if n, ok := shapeNames[s]; ok {
		return n
	}
	return fmt.Sprintf("shape(%d)", int(s))
}

// ParseShape maps a catalog name to a Shape.
func ParseShape(name string) (Shape, bool) {
	for s, n := range shapeNames {
		if n == name {
			return s, true
		}
	}
	return 0, false
}

// Window is the active window of an arc strike. A zero Duration strikes once
// at cast time.
type Window struct {
	PreDelay float64
	Duration float64
}

// Definition describes one castable ability. Shared read-only by every actor
// whose definition lists it; never mutate after loading.
type Definition struct {
	ID       string
	Cooldown float64 // seconds
	Damage   float64
	Range    float64 // reach used by AI selection
	Shape    Shape

	Radius      float64 // area/arc radius; Range when zero
	Offset      float64 // area center distance along the aim
	ArcDegrees  float64 // full arc width
	RayDistance float64 // Range when zero
	Window      Window
	HurtboxMask Mask
}

var (
	ErrNoID             = errors.New("ability: empty id")
	ErrNegativeCooldown = errors.New("ability: negative cooldown")
	ErrNegativeRange    = errors.New("ability: negative range")
	ErrBadWindow        = errors.New("ability: negative window")
	ErrDelayNoWindow    = errors.New("ability: pre_delay needs a window duration")
)

// Validate checks the invariants the runner relies on.
func (d *Definition) Validate() error {
	switch {
	case d.ID == "":
		return ErrNoID
	case d.Cooldown < 0:
		return fmt.Errorf("%s: %w", d.ID, ErrNegativeCooldown)
	case d.Range < 0 || d.Radius < 0 || d.RayDistance < 0:
		return fmt.Errorf("%s: %w", d.ID, ErrNegativeRange)
	case d.Window.PreDelay < 0 || d.Window.Duration < 0:
		return fmt.Errorf("%s: %w", d.ID, ErrBadWindow)
	case d.Window.PreDelay > 0 && d.Window.Duration == 0:
		return fmt.Errorf("%s: %w", d.ID, ErrDelayNoWindow)
	}
	if _, ok := shapeNames[d.Shape]; !ok {
		return fmt.Errorf("%s: unknown shape %d", d.ID, d.Shape)
	}
	return nil
}

// Windowed reports whether casts run across an active window instead of
// resolving immediately.
func (d *Definition) Windowed() bool {
	return d.Shape == ShapeArc && d.Window.Duration > 0
}

func (d *Definition) radius() float64 {
	if d.Radius > 0 {
		return d.Radius
	}
	return d.Range
}

func (d *Definition) rayDistance() float64 {
	if d.RayDistance > 0 {
		return d.RayDistance
	}
	return d.Range
}

func (d *Definition) mask() Mask {
	if d.HurtboxMask == 0 {
		return MaskAll
	}
	return d.HurtboxMask
}

// Aim normalizes aim, falling back to the caster's facing when aim is
// near zero. Never returns a zero vector.
func Aim(aim geom.Vec2, c Caster) geom.Vec2 {
	return aim.Or(c.Facing().Or(geom.Right))
}

// TryCast resolves the targets for aim and raises Damage on each target's
// bus. It never touches cooldown state.
func (d *Definition) TryCast(aim geom.Vec2, c Caster, team TeamTag, space Space) bool {
	if d == nil || c == nil || space == nil {
		return false
	}
	for _, t := range d.Targets(aim, c, team, space) {
		d.Strike(c.ID(), t)
	}
	return true
}

// Strike raises this ability's Damage on t's bus.
func (d *Definition) Strike(source ident.ActorID, t Target) {
	if bus := t.Events(); bus != nil {
		event.Publish(bus, event.Damage{SourceID: source, AbilityID: d.ID, Amount: d.Damage})
	}
}
