package ability

import (
	"math"

	"github.com/lastdescent/actorsim/internal/core/event"
	"github.com/lastdescent/actorsim/internal/core/geom"
	"github.com/lastdescent/actorsim/internal/core/ident"
)

// RayOriginOffset pushes ray origins forward so they start outside the caster.
const RayOriginOffset = 0.05

// arcEpsilon keeps dot == cos(halfArc) inside the arc despite float rounding
// (cos(90°) evaluates to 6.1e-17, not 0).
const arcEpsilon = 1e-9

// TeamTag resolves an actor's team, if it has one.
type TeamTag interface {
	Team() (int, bool)
}

// Caster is the read-only view of the actor casting.
type Caster interface {
	ID() ident.ActorID
	Position() geom.Vec2
	Facing() geom.Vec2
}

// Target is a hittable actor as seen by spatial queries.
type Target interface {
	TeamTag
	ID() ident.ActorID
	Position() geom.Vec2
	Events() *event.Bus
}

// RayHit is one intersection along a ray. A nil Target is an obstacle.
type RayHit struct {
	Target Target
	Dist   float64
}

// Space answers the spatial queries the targeting algorithms need.
// Results must be deterministic for identical world state.
type Space interface {
	Overlap(center geom.Vec2, radius float64, mask Mask) []Target
	Raycast(origin, dir geom.Vec2, maxDist float64, mask Mask) []RayHit
}

// Hostile reports whether t may be hit by an actor with the given id and team.
// Only excludes on team when both sides resolve one.
func Hostile(self ident.ActorID, team TeamTag, t Target) bool {
	if t == nil || t.ID() == self {
		return false
	}
	if team == nil {
		return true
	}
	mine, ok := team.Team()
	if !ok {
		return true
	}
	theirs, ok := t.Team()
	return !ok || theirs != mine
}

// Targets is the pure targeting function: who a cast aimed along aim hits.
func (d *Definition) Targets(aim geom.Vec2, c Caster, team TeamTag, space Space) []Target {
	aim = Aim(aim, c)
	switch d.Shape {
	case ShapeRay:
		return d.rayTargets(aim, c, team, space)
	case ShapeArc:
		return d.arcTargets(aim, c, team, space)
	default:
		return d.areaTargets(aim, c, team, space)
	}
}

func (d *Definition) areaTargets(aim geom.Vec2, c Caster, team TeamTag, space Space) []Target {
	center := c.Position().Add(aim.Scale(d.Offset))
	var out []Target
	for _, t := range space.Overlap(center, d.radius(), d.mask()) {
		if Hostile(c.ID(), team, t) {
			out = append(out, t)
		}
	}
	return out
}

func (d *Definition) rayTargets(aim geom.Vec2, c Caster, team TeamTag, space Space) []Target {
	origin := c.Position().Add(aim.Scale(RayOriginOffset))
	for _, h := range space.Raycast(origin, aim, d.rayDistance(), d.mask()) {
		if h.Target == nil {
			return nil
		}
		if !Hostile(c.ID(), team, h.Target) {
			continue
		}
		return []Target{h.Target}
	}
	return nil
}

// HalfArc returns the clamped half-arc in degrees.
func (d *Definition) HalfArc() float64 {
	return math.Min(math.Max(d.ArcDegrees*0.5, 0.5), 180)
}

func (d *Definition) arcTargets(aim geom.Vec2, c Caster, team TeamTag, space Space) []Target {
	origin := c.Position()
	cosThreshold := math.Cos(d.HalfArc() * math.Pi / 180)
	var out []Target
	for _, t := range space.Overlap(origin, d.radius(), d.mask()) {
		if !Hostile(c.ID(), team, t) {
			continue
		}
		to := t.Position().Sub(origin)
		if to.NearZero() {
			continue
		}
		if aim.Dot(to.Normalized())+arcEpsilon < cosThreshold {
			continue
		}
		out = append(out, t)
	}
	return out
}
