package world

import (
	"math"

	"github.com/lastdescent/actorsim/internal/core/geom"
	"github.com/lastdescent/actorsim/internal/core/ident"
)

// DefaultCellSize is the broadphase cell edge in world units.
const DefaultCellSize = 4.0

type cellKey struct {
	cx int32
	cy int32
}

// Grid is a uniform cell broadphase over actor centers.
// Accessed only from the simulation loop goroutine, no locks.
type Grid struct {
	size  float64
	cells map[cellKey]map[ident.ActorID]struct{}
}

func NewGrid(size float64) *Grid {
	if size <= 0 {
		size = DefaultCellSize
	}
	return &Grid{
		size:  size,
		cells: make(map[cellKey]map[ident.ActorID]struct{}),
	}
}

func (g *Grid) coord(v float64) int32 {
	return int32(math.Floor(v / g.size))
}

func (g *Grid) key(p geom.Vec2) cellKey {
	return cellKey{cx: g.coord(p.X), cy: g.coord(p.Y)}
}

// Add places an actor into the grid.
func (g *Grid) Add(id ident.ActorID, p geom.Vec2) {
	k := g.key(p)
	cell := g.cells[k]
	if cell == nil {
		cell = make(map[ident.ActorID]struct{})
		g.cells[k] = cell
	}
	cell[id] = struct{}{}
}

// Remove takes an actor out of the grid.
func (g *Grid) Remove(id ident.ActorID, p geom.Vec2) {
	k := g.key(p)
	cell := g.cells[k]
	if cell != nil {
		delete(cell, id)
		if len(cell) == 0 {
			delete(g.cells, k)
		}
	}
}

// Move updates an actor's cell when its position changes.
func (g *Grid) Move(id ident.ActorID, from, to geom.Vec2) {
	if g.key(from) == g.key(to) {
		return
	}
	g.Remove(id, from)
	g.Add(id, to)
}

// NearbyInto returns every actor whose cell intersects the square of
// half-size reach around center, appending into buf[:0]. Caller does
// fine-grained distance filtering; the order is unspecified.
func (g *Grid) NearbyInto(center geom.Vec2, reach float64, buf []ident.ActorID) []ident.ActorID {
	if reach < 0 {
		reach = 0
	}
	x0, x1 := g.coord(center.X-reach), g.coord(center.X+reach)
	y0, y1 := g.coord(center.Y-reach), g.coord(center.Y+reach)
	result := buf[:0]
	for cx := x0; cx <= x1; cx++ {
		for cy := y0; cy <= y1; cy++ {
			for id := range g.cells[cellKey{cx: cx, cy: cy}] {
				result = append(result, id)
			}
		}
	}
	return result
}
