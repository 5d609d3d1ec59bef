package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/lastdescent/actorsim/internal/ability"
	"github.com/lastdescent/actorsim/internal/archetype"
	"github.com/lastdescent/actorsim/internal/attr"
	"github.com/lastdescent/actorsim/internal/config"
	"github.com/lastdescent/actorsim/internal/core/clock"
	"github.com/lastdescent/actorsim/internal/core/geom"
	coresys "github.com/lastdescent/actorsim/internal/core/system"
	"github.com/lastdescent/actorsim/internal/data"
	"github.com/lastdescent/actorsim/internal/debugview"
	"github.com/lastdescent/actorsim/internal/feature/abilities"
	"github.com/lastdescent/actorsim/internal/feature/brain"
	"github.com/lastdescent/actorsim/internal/feature/present"
	"github.com/lastdescent/actorsim/internal/input"
	"github.com/lastdescent/actorsim/internal/scripting"
	"github.com/lastdescent/actorsim/internal/system"
	"github.com/lastdescent/actorsim/internal/world"
	"go.uber.org/zap"
)

// spawnJitter is the largest offset a seeded run adds to spawn positions.
const spawnJitter = 0.25

type arena struct {
	cfg    *config.Config
	log    *zap.Logger
	clock  *clock.Sim
	world  *world.World
	runner *coresys.Runner
	actors []*archetype.Actor
	player input.Producer
}

func newArena(cfg *config.Config, catalog *data.Catalog, scripts *scripting.Engine, sc *data.Scenario, player input.Producer, hub *debugview.Hub, log *zap.Logger) (*arena, error) {
	a := &arena{
		cfg:    cfg,
		log:    log,
		clock:  clock.NewSim(),
		world:  world.New(log.Named("world"), cfg.Simulation.CellSize),
		runner: coresys.NewRunner(),
		player: player,
	}

	var sink present.Sink = present.LogSink{Log: log.Named("cue")}
	var frames system.FrameSink
	if hub != nil {
		sink = present.Multi{sink, hub}
		frames = hub
	}

	brainCfg := brain.Config{
		ReacquireInterval:  cfg.AI.ReacquireInterval,
		RequireLineOfSight: cfg.AI.RequireLineOfSight,
		TargetMask:         ability.Mask(cfg.AI.TargetMask),
	}
	env := archetype.Env{
		Log:          log,
		Clock:        a.clock,
		World:        a.world,
		Catalog:      catalog,
		Scripts:      scripts,
		Sink:         sink,
		Abilities:    abilities.Config{GlobalCooldown: cfg.Simulation.GlobalCooldown},
		Brain:        brainCfg,
		StopBuffer:   cfg.AI.StopBuffer,
		DespawnDelay: cfg.Simulation.DespawnDelay,
	}
	actors, err := archetype.SpawnScenario(env, jitter(sc, cfg.Simulation.Seed), player)
	if err != nil {
		return nil, fmt.Errorf("spawn scenario: %w", err)
	}
	a.actors = actors

	a.runner.Register(system.NewFixedActorSystem(a.world))
	a.runner.Register(system.NewPhysicsSystem(a.world))
	a.runner.Register(system.NewClockSystem(a.clock))
	a.runner.Register(system.NewUpdateActorSystem(a.world))
	if frames != nil {
		a.runner.Register(system.NewOutputSystem(a.world, a.clock, frames, cfg.Debug.FrameEvery))
	}
	a.runner.Register(system.NewCleanupSystem(a.world))
	return a, nil
}

// jitter returns a copy of sc with spawn positions offset by a seeded
// random amount. Seed 0 returns sc unchanged.
func jitter(sc *data.Scenario, seed int64) *data.Scenario {
	if seed == 0 {
		return sc
	}
	rng := rand.New(rand.NewSource(seed))
	out := *sc
	out.Spawns = make([]data.Spawn, len(sc.Spawns))
	for i, s := range sc.Spawns {
		s.At = s.At.Add(geom.V((rng.Float64()*2-1)*spawnJitter, (rng.Float64()*2-1)*spawnJitter))
		out.Spawns[i] = s
	}
	return &out
}

// step runs one frame.
func (a *arena) step() {
	fixed := a.cfg.Simulation.FixedStep
	a.runner.Step(fixed, fixed)
}

// loop steps the simulation until ctx ends, max_ticks is reached or only
// one team is left standing. A zero tick_rate runs unthrottled.
func (a *arena) loop(ctx context.Context) (uint64, string) {
	var tick <-chan time.Time
	if rate := a.cfg.Simulation.TickRate; rate > 0 {
		ticker := time.NewTicker(rate)
		defer ticker.Stop()
		tick = ticker.C
	}
	limit := uint64(a.cfg.Simulation.MaxTicks)
	for {
		if tick != nil {
			select {
			case <-ctx.Done():
				return a.runner.Steps(), "interrupted"
			case <-tick:
			}
		} else if ctx.Err() != nil {
			return a.runner.Steps(), "interrupted"
		}

		a.step()

		if limit > 0 && a.runner.Steps() >= limit {
			return a.runner.Steps(), "max ticks"
		}
		if resolved(a.world) && a.replayDone() {
			return a.runner.Steps(), "resolved"
		}
	}
}

func (a *arena) replayDone() bool {
	rp, ok := a.player.(*input.Replay)
	return !ok || rp.Done()
}

// resolved reports whether every actor still alive is on one team.
func resolved(w *world.World) bool {
	team, seen := 0, false
	for _, act := range w.Actors() {
		if !act.Body.Collidable() {
			continue
		}
		t, ok := act.Body.Team()
		if !ok {
			continue
		}
		if seen && t != team {
			return false
		}
		team, seen = t, true
	}
	return true
}

// report logs how every spawned actor ended up.
func (a *arena) report() {
	for _, act := range a.actors {
		_, live := a.world.Actor(act.ID())
		a.log.Info("actor summary",
			zap.Uint64("actor_id", uint64(act.ID())),
			zap.String("name", act.Name),
			zap.Float64("health", act.Attributes.Provider().Current(attr.Health)),
			zap.Bool("dying", act.Life.Dying()),
			zap.Bool("despawned", !live),
			zap.Int("casts", act.Control.Casts()))
	}
}
