package geom

import "math"

// Epsilon is the squared-length threshold below which a vector counts as zero.
const Epsilon = 0.0001

// Vec2 is a 2D vector in world units.
type Vec2 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

var (
	Zero  = Vec2{}
	Right = Vec2{X: 1}
)

func V(x, y float64) Vec2 { return Vec2{X: x, Y: y} }

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }
func (v Vec2) Dot(o Vec2) float64 { return v.X*o.X + v.Y*o.Y }
func (v Vec2) LenSq() float64 { return v.X*v.X + v.Y*v.Y }
func (v Vec2) Len() float64 { return math.Sqrt(v.LenSq()) }
func (v Vec2) Dist(o Vec2) float64 { return o.Sub(v).Len() }
func (v Vec2) NearZero() bool { return v.LenSq() <= Epsilon }
func (v Vec2) Equal(o Vec2) bool { return v.X == o.X && v.Y == o.Y }

// Normalized returns the unit vector of v, or Zero when v is near zero.
func (v Vec2) Normalized() Vec2 {
	if v.NearZero() {
		return Zero
	}
	l := v.Len()
	return Vec2{v.X / l, v.Y / l}
}

// Or returns v normalized, or fallback when v is near zero.
func (v Vec2) Or(fallback Vec2) Vec2 {
	if v.NearZero() {
		return fallback
	}
	return v.Normalized()
}

// RayCircle returns the distance along a unit ray at which it first enters
// the circle (center, radius), and whether it does so within maxDist.
// A ray starting inside the circle hits at distance 0.
func RayCircle(origin, dir Vec2, maxDist float64, center Vec2, radius float64) (float64, bool) {
	m := origin.Sub(center)
	c := m.LenSq() - radius*radius
	if c <= 0 {
		return 0, true
	}
	b := m.Dot(dir)
	if b > 0 {
		return 0, false
	}
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	t := -b - math.Sqrt(disc)
	if t < 0 || t > maxDist {
		return 0, false
	}
	return t, true
}

// SegmentCircle reports whether the segment a→b touches the circle.
func SegmentCircle(a, b, center Vec2, radius float64) bool {
	ab := b.Sub(a)
	l := ab.LenSq()
	if l == 0 {
		return a.Sub(center).LenSq() <= radius*radius
	}
	t := center.Sub(a).Dot(ab) / l
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	p := a.Add(ab.Scale(t))
	return p.Sub(center).LenSq() <= radius*radius
}
