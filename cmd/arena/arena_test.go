package main

import (
	"context"
	"testing"
	"time"

	"github.com/lastdescent/actorsim/internal/config"
	"github.com/lastdescent/actorsim/internal/core/geom"
	"github.com/lastdescent/actorsim/internal/data"
	"github.com/lastdescent/actorsim/internal/input"
	"github.com/lastdescent/actorsim/internal/scripting"
	"go.uber.org/zap/zaptest"
)

func headlessConfig() *config.Config {
	return &config.Config{
		Simulation: config.SimulationConfig{
			FixedStep:      20 * time.Millisecond,
			GlobalCooldown: 0.2,
			MaxTicks:       3000,
			CellSize:       4,
			DespawnDelay:   1,
		},
		AI: config.AIConfig{ReacquireInterval: 0.25, StopBuffer: 0.05},
	}
}

func TestJitter(t *testing.T) {
	sc := &data.Scenario{Name: "s", Spawns: []data.Spawn{{At: geom.V(1, 1)}, {At: geom.V(-2, 0)}}}
	if jitter(sc, 0) != sc {
		t.Error("seed 0 copied the scenario")
	}
	a, b := jitter(sc, 7), jitter(sc, 7)
	for i := range sc.Spawns {
		if !a.Spawns[i].At.Equal(b.Spawns[i].At) {
			t.Errorf("spawn %d not reproducible: %v vs %v", i, a.Spawns[i].At, b.Spawns[i].At)
		}
		if d := a.Spawns[i].At.Sub(sc.Spawns[i].At); d.Len() > spawnJitter*1.5 {
			t.Errorf("spawn %d moved %v", i, d)
		}
	}
	if !sc.Spawns[0].At.Equal(geom.V(1, 1)) {
		t.Error("jitter mutated its input")
	}
}

func TestGauntletRunsHeadless(t *testing.T) {
	log := zaptest.NewLogger(t)
	catalog, err := data.LoadCatalog("../../data/yaml/catalog.yaml")
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	sc, err := catalog.Scenario("gauntlet")
	if err != nil {
		t.Fatal(err)
	}
	scripts, err := scripting.NewEngine("../../scripts/ai", log)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer scripts.Close()

	a, err := newArena(headlessConfig(), catalog, scripts, sc, input.Null{}, nil, log)
	if err != nil {
		t.Fatalf("newArena: %v", err)
	}
	defer a.world.Shutdown()
	if a.world.Len() != len(sc.Spawns) {
		t.Fatalf("spawned %d actors, want %d", a.world.Len(), len(sc.Spawns))
	}

	steps, reason := a.loop(context.Background())
	if steps == 0 {
		t.Fatal("loop did not step")
	}
	if reason != "resolved" && reason != "max ticks" {
		t.Errorf("reason = %q", reason)
	}
	if reason == "resolved" && !resolved(a.world) {
		t.Error("reported resolved with two teams standing")
	}
	if a.clock.Now() <= 0 {
		t.Error("sim clock did not advance")
	}
	a.report()
}

func TestLoopStopsWhenCancelled(t *testing.T) {
	sc := &data.Scenario{Name: "empty"}
	a, err := newArena(headlessConfig(), nil, nil, sc, input.Null{}, nil, zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, reason := a.loop(ctx); reason != "interrupted" {
		t.Errorf("reason = %q, want interrupted", reason)
	}
}
