// Package archetype wires the feature set of each kind of actor. Wiring is
// explicit: every collaborator is passed by constructor, nothing is found at
// runtime.
package archetype

import (
	"fmt"

	"github.com/lastdescent/actorsim/internal/actor"
	"github.com/lastdescent/actorsim/internal/core/clock"
	"github.com/lastdescent/actorsim/internal/core/geom"
	"github.com/lastdescent/actorsim/internal/data"
	"github.com/lastdescent/actorsim/internal/feature/abilities"
	"github.com/lastdescent/actorsim/internal/feature/attributes"
	"github.com/lastdescent/actorsim/internal/feature/brain"
	"github.com/lastdescent/actorsim/internal/feature/control"
	"github.com/lastdescent/actorsim/internal/feature/life"
	"github.com/lastdescent/actorsim/internal/feature/motor"
	"github.com/lastdescent/actorsim/internal/feature/present"
	"github.com/lastdescent/actorsim/internal/feature/team"
	"github.com/lastdescent/actorsim/internal/input"
	"github.com/lastdescent/actorsim/internal/scripting"
	"github.com/lastdescent/actorsim/internal/world"
	"go.uber.org/zap"
)

// Env is everything the actors of one simulation share.
type Env struct {
	Log          *zap.Logger
	Clock        clock.Clock
	World        *world.World
	Catalog      *data.Catalog     // behavior lookup; nil means chase for every AI
	Scripts      *scripting.Engine // nil disables scripted behaviors
	Sink         present.Sink      // nil logs cues at Debug
	Abilities    abilities.Config
	Brain        brain.Config
	StopBuffer   float64
	DespawnDelay float64
}

// Actor is a built actor with handles to the features tests and drivers poke.
type Actor struct {
	*world.Actor
	Team       *team.Team
	Attributes *attributes.Attributes
	Life       *life.Life
	Death      *life.Coordinator
	Motor      *motor.Motor
	Runner     *abilities.Runner
	Control    *control.Processor
	Brain      *brain.Brain // nil unless AI-controlled
	Presenter  *present.Presenter
	Timer      *present.DeathTimer
}

// Spawn builds the actor described by s and places it in env.World.
// src drives player-controlled actors and is ignored otherwise.
func Spawn(env Env, s data.Spawn, src input.Producer) (*Actor, error) {
	if s.Actor == nil {
		return nil, fmt.Errorf("spawn: %w", data.ErrUnknownActor)
	}
	log := env.Log
	if log == nil {
		log = zap.NewNop()
	}

	k := actor.NewKernel(log.With(zap.String("actor", s.Actor.Name)), s.Actor)
	a := &Actor{
		Team:       team.New(),
		Attributes: attributes.New(),
	}
	body := world.NewBody(s.At, a.Team)
	a.Life = life.New(a.Attributes.Provider())
	a.Motor = motor.New(body, a.Attributes.Provider())
	a.Motor.SetAim(s.Facing)
	a.Runner = abilities.New(env.Abilities, env.Clock, env.World, body, a.Motor, a.Team)

	switch s.Control {
	case data.ControlPlayer:
		if src == nil {
			src = input.Null{}
		}
	case data.ControlIdle:
		src = input.Null{}
	default:
		a.Brain = brain.New(env.Brain, env.Clock, env.World, a.Runner, body, a.Motor, a.Team, behavior(env, s.Actor.Name, log))
		src = a.Brain
	}
	a.Control = control.New(src, a.Motor, a.Runner, body)
	a.Death = life.NewCoordinator(env.World.MarkForDestruction, a.Control, a.Motor, a.Runner, body)
	a.Presenter = present.New(env.Sink, a.Motor, a.Runner)
	a.Timer = present.NewDeathTimer(env.Clock, env.DespawnDelay)

	k.Attach(a.Team)
	k.Attach(a.Attributes)
	k.Attach(body)
	k.Attach(a.Motor)
	k.Attach(a.Runner)
	if a.Brain != nil {
		k.Attach(a.Brain)
	}
	k.Attach(a.Control)
	k.Attach(a.Life)
	k.Attach(a.Death)
	k.Attach(a.Presenter)
	k.Attach(a.Timer)

	wa, err := env.World.Spawn(s.Actor.Name, k, body)
	if err != nil {
		return nil, err
	}
	a.Actor = wa
	return a, nil
}

// SpawnScenario places the obstacles and every spawn of sc. The first
// player-controlled spawn is driven by player; the rest of them idle.
func SpawnScenario(env Env, sc *data.Scenario, player input.Producer) ([]*Actor, error) {
	for _, o := range sc.Obstacles {
		env.World.AddObstacle(o.At, o.Radius)
	}
	out := make([]*Actor, 0, len(sc.Spawns))
	for i, s := range sc.Spawns {
		src := player
		if s.Control == data.ControlPlayer {
			player = nil
		}
		a, err := Spawn(env, s, src)
		if err != nil {
			return out, fmt.Errorf("scenario %s spawn %d: %w", sc.Name, i, err)
		}
		out = append(out, a)
	}
	return out, nil
}

func behavior(env Env, name string, log *zap.Logger) brain.Behavior {
	chase := brain.NewChase(env.StopBuffer)
	if env.Catalog == nil {
		return chase
	}
	p := env.Catalog.Behavior(name)
	switch p.Kind {
	case data.BehaviorHold:
		return brain.Hold{}
	case data.BehaviorScripted:
		if env.Scripts == nil || !env.Scripts.Has(p.Script) {
			log.Warn("behavior script unavailable, chasing instead", zap.String("script", p.Script))
			return chase
		}
		return brain.NewScripted(env.Scripts, p.Script, chase, log)
	default:
		return chase
	}
}

// Facing returns the actor's current facing.
func (a *Actor) Facing() geom.Vec2 { return a.Motor.Facing() }
