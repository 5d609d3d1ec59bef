package ability

import "github.com/lastdescent/actorsim/internal/core/geom"

// Preview is a read-only snapshot of a cast's targeting geometry, for debug
// viewers. It carries no behavior.
type Preview struct {
	AbilityID string    `json:"ability_id"`
	Shape     string    `json:"shape"`
	Origin    geom.Vec2 `json:"origin"`
	Aim       geom.Vec2 `json:"aim"`
	Center    geom.Vec2 `json:"center"`
	Radius    float64   `json:"radius,omitempty"`
	HalfArc   float64   `json:"half_arc,omitempty"`
	RayEnd    geom.Vec2 `json:"ray_end"`
}

// Preview describes where a cast from origin along aim would land.
// aim must already be normalized.
func (d *Definition) Preview(origin, aim geom.Vec2) Preview {
	p := Preview{
		AbilityID: d.ID,
		Shape:     d.Shape.String(),
		Origin:    origin,
		Aim:       aim,
		Center:    origin,
	}
	switch d.Shape {
	case ShapeArea:
		p.Center = origin.Add(aim.Scale(d.Offset))
		p.Radius = d.radius()
	case ShapeArc:
		p.Radius = d.radius()
		p.HalfArc = d.HalfArc()
	case ShapeRay:
		p.Center = origin.Add(aim.Scale(RayOriginOffset))
		p.RayEnd = p.Center.Add(aim.Scale(d.rayDistance()))
	}
	return p
}
