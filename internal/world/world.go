// Package world owns the actors of one simulation: their kernels, their
// bodies, the spatial queries abilities and brains run against, and the
// deferred destroy queue.
package world

import (
	"errors"
	"fmt"
	"sort"

	"github.com/lastdescent/actorsim/internal/ability"
	"github.com/lastdescent/actorsim/internal/actor"
	"github.com/lastdescent/actorsim/internal/core/geom"
	"github.com/lastdescent/actorsim/internal/core/ident"
	"go.uber.org/zap"
)

var (
	ErrNoBody       = errors.New("actor has no body")
	ErrBodyDisabled = errors.New("actor body failed to initialize")
)

// Obstacle is a static circle that blocks rays, line of sight and movement.
type Obstacle struct {
	Center geom.Vec2
	Radius float64
}

// Actor is one spawned kernel and the body that places it in the world.
type Actor struct {
	Name   string
	Kernel *actor.Kernel
	Body   *Body
}

func (a *Actor) ID() ident.ActorID { return a.Kernel.ID() }

// World tracks every live actor.
// Single-goroutine access only (simulation loop).
type World struct {
	log       *zap.Logger
	grid      *Grid
	byID      map[ident.ActorID]*Actor
	order     []*Actor // spawn order, for deterministic iteration
	obstacles []Obstacle
	maxRadius float64

	destroyQueue []ident.ActorID
	nearbyBuf    []ident.ActorID
}

func New(log *zap.Logger, cellSize float64) *World {
	if log == nil {
		log = zap.NewNop()
	}
	return &World{
		log:          log,
		grid:         NewGrid(cellSize),
		byID:         make(map[ident.ActorID]*Actor),
		destroyQueue: make([]ident.ActorID, 0, 16),
	}
}

// AddObstacle places a static circle. Non-positive radii are ignored.
func (w *World) AddObstacle(center geom.Vec2, radius float64) {
	if radius <= 0 {
		return
	}
	w.obstacles = append(w.obstacles, Obstacle{Center: center, Radius: radius})
}

func (w *World) Obstacles() []Obstacle { return w.obstacles }

// Spawn initializes k and registers it. body must already be attached to k.
func (w *World) Spawn(name string, k *actor.Kernel, body *Body) (*Actor, error) {
	if body == nil {
		return nil, fmt.Errorf("spawn %s: %w", name, ErrNoBody)
	}
	k.Initialize()
	if !k.Enabled(body) {
		k.Shutdown()
		return nil, fmt.Errorf("spawn %s: %w", name, ErrBodyDisabled)
	}
	a := &Actor{Name: name, Kernel: k, Body: body}
	id := k.ID()
	w.byID[id] = a
	w.order = append(w.order, a)
	w.grid.Add(id, body.pos)
	if body.radius > w.maxRadius {
		w.maxRadius = body.radius
	}
	w.log.Info("actor spawned",
		zap.Uint64("actor_id", uint64(id)),
		zap.String("name", name),
		zap.Float64("x", body.pos.X),
		zap.Float64("y", body.pos.Y))
	return a, nil
}

// Actor returns a live actor by id.
func (w *World) Actor(id ident.ActorID) (*Actor, bool) {
	a, ok := w.byID[id]
	return a, ok
}

// Actors returns live actors in spawn order. The slice is owned by the world;
// do not modify it.
func (w *World) Actors() []*Actor { return w.order }

func (w *World) Len() int { return len(w.order) }

// Lookup resolves id to a target while its body still collides.
func (w *World) Lookup(id ident.ActorID) (ability.Target, bool) {
	a, ok := w.byID[id]
	if !ok || !a.Body.collidable {
		return nil, false
	}
	return a.Body, true
}

// Overlap returns every collidable body on a layer in mask whose circle
// touches (center, radius), ordered by id.
func (w *World) Overlap(center geom.Vec2, radius float64, mask ability.Mask) []ability.Target {
	w.nearbyBuf = w.grid.NearbyInto(center, radius+w.maxRadius, w.nearbyBuf)
	hits := make([]*Body, 0, len(w.nearbyBuf))
	for _, id := range w.nearbyBuf {
		a := w.byID[id]
		if a == nil || !hittable(a.Body, mask) {
			continue
		}
		if a.Body.pos.Dist(center) <= radius+a.Body.radius {
			hits = append(hits, a.Body)
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].ID() < hits[j].ID() })
	out := make([]ability.Target, len(hits))
	for i, b := range hits {
		out[i] = b
	}
	return out
}

// Raycast returns every body on a layer in mask and every obstacle the ray
// enters within maxDist, nearest first. Obstacles come back with a nil Target.
func (w *World) Raycast(origin, dir geom.Vec2, maxDist float64, mask ability.Mask) []ability.RayHit {
	dir = dir.Or(geom.Right)
	var hits []ability.RayHit
	for _, a := range w.order {
		if !hittable(a.Body, mask) {
			continue
		}
		if d, ok := geom.RayCircle(origin, dir, maxDist, a.Body.pos, a.Body.radius); ok {
			hits = append(hits, ability.RayHit{Target: a.Body, Dist: d})
		}
	}
	for _, o := range w.obstacles {
		if d, ok := geom.RayCircle(origin, dir, maxDist, o.Center, o.Radius); ok {
			hits = append(hits, ability.RayHit{Dist: d})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Dist < hits[j].Dist })
	return hits
}

// LineOfSight reports whether no obstacle touches the segment from→to.
func (w *World) LineOfSight(from, to geom.Vec2) bool {
	for _, o := range w.obstacles {
		if geom.SegmentCircle(from, to, o.Center, o.Radius) {
			return false
		}
	}
	return true
}

func hittable(b *Body, mask ability.Mask) bool {
	return b.collidable && b.layer&mask != 0
}

// Integrate moves every body by its velocity and pushes it out of any
// obstacle it ends up inside. Bodies do not collide with each other.
func (w *World) Integrate(dt float64) {
	if dt <= 0 {
		return
	}
	for _, a := range w.order {
		b := a.Body
		if b.vel.NearZero() {
			continue
		}
		next := b.pos.Add(b.vel.Scale(dt))
		for _, o := range w.obstacles {
			reach := o.Radius + b.radius
			off := next.Sub(o.Center)
			if off.LenSq() >= reach*reach {
				continue
			}
			next = o.Center.Add(off.Or(b.vel.Scale(-1).Or(geom.Right)).Scale(reach))
		}
		w.grid.Move(a.ID(), b.pos, next)
		b.pos = next
	}
}

// MarkForDestruction queues an actor for end-of-step cleanup.
func (w *World) MarkForDestruction(id ident.ActorID) {
	w.destroyQueue = append(w.destroyQueue, id)
}

// Pending returns how many despawns are queued.
func (w *World) Pending() int { return len(w.destroyQueue) }

// FlushDestroyQueue shuts down and removes every queued actor.
// Called by the cleanup system at the end of each step.
func (w *World) FlushDestroyQueue() {
	for _, id := range w.destroyQueue {
		a, ok := w.byID[id]
		if !ok {
			continue
		}
		a.Kernel.Shutdown()
		w.grid.Remove(id, a.Body.pos)
		delete(w.byID, id)
		for i, o := range w.order {
			if o == a {
				w.order = append(w.order[:i:i], w.order[i+1:]...)
				break
			}
		}
		w.log.Info("actor despawned", zap.Uint64("actor_id", uint64(id)), zap.String("name", a.Name))
	}
	w.destroyQueue = w.destroyQueue[:0]
}

// Shutdown despawns every remaining actor in spawn order.
func (w *World) Shutdown() {
	for _, a := range w.order {
		w.MarkForDestruction(a.ID())
	}
	w.FlushDestroyQueue()
}

// ActorState is a copy of one actor's body for observers.
type ActorState struct {
	ID       ident.ActorID `json:"id"`
	Name     string        `json:"name"`
	Position geom.Vec2     `json:"pos"`
	Velocity geom.Vec2     `json:"vel"`
	Radius   float64       `json:"radius"`
	Alive    bool          `json:"alive"`
}

// Snapshot copies every live actor's body state in spawn order.
func (w *World) Snapshot() []ActorState {
	out := make([]ActorState, len(w.order))
	for i, a := range w.order {
		out[i] = ActorState{
			ID:       a.ID(),
			Name:     a.Name,
			Position: a.Body.pos,
			Velocity: a.Body.vel,
			Radius:   a.Body.radius,
			Alive:    a.Body.collidable,
		}
	}
	return out
}
