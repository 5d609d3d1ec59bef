package brain

import (
	"testing"

	"github.com/lastdescent/actorsim/internal/ability"
	"github.com/lastdescent/actorsim/internal/actor"
	"github.com/lastdescent/actorsim/internal/core/clock"
	"github.com/lastdescent/actorsim/internal/core/event"
	"github.com/lastdescent/actorsim/internal/core/geom"
	"github.com/lastdescent/actorsim/internal/core/ident"
	"github.com/lastdescent/actorsim/internal/data"
	teamfeature "github.com/lastdescent/actorsim/internal/feature/team"
	"github.com/lastdescent/actorsim/internal/input"
	"github.com/lastdescent/actorsim/internal/scripting"
	"go.uber.org/zap/zaptest"
)

type mob struct {
	id    ident.ActorID
	pos   geom.Vec2
	team  int
	layer ability.Mask // 0 matches every mask
}

func (m *mob) ID() ident.ActorID { return m.id }
func (m *mob) Position() geom.Vec2 { return m.pos }
func (m *mob) Team() (int, bool) { return m.team, true }
func (m *mob) Events() *event.Bus { return nil }

type world struct {
	mobs    map[ident.ActorID]*mob
	order   []*mob
	blocked bool
	queries int
}

func newWorld(mobs ...*mob) *world {
	w := &world{mobs: map[ident.ActorID]*mob{}}
	for _, m := range mobs {
		w.add(m)
	}
	return w
}

func (w *world) add(m *mob) {
	w.mobs[m.id] = m
	w.order = append(w.order, m)
}

func (w *world) remove(id ident.ActorID) {
	delete(w.mobs, id)
	kept := w.order[:0]
	for _, m := range w.order {
		if m.id != id {
			kept = append(kept, m)
		}
	}
	w.order = kept
}

func (w *world) Overlap(center geom.Vec2, radius float64, mask ability.Mask) []ability.Target {
	w.queries++
	var out []ability.Target
	for _, m := range w.order {
		if m.layer != 0 && m.layer&mask == 0 {
			continue
		}
		if m.pos.Dist(center) <= radius {
			out = append(out, m)
		}
	}
	return out
}

func (w *world) Raycast(geom.Vec2, geom.Vec2, float64, ability.Mask) []ability.RayHit { return nil }

func (w *world) Lookup(id ident.ActorID) (ability.Target, bool) {
	m, ok := w.mobs[id]
	if !ok {
		return nil, false
	}
	return m, true
}

func (w *world) LineOfSight(geom.Vec2, geom.Vec2) bool { return !w.blocked }

type readiness map[int]bool

func (r readiness) IsReady(slot int) bool { return r[slot] }

type at geom.Vec2

func (a at) Position() geom.Vec2 { return geom.Vec2(a) }

type team int

func (t team) Team() (int, bool) { return int(t), true }

func (t team) IsFriendly(other ability.TeamTag) bool {
	theirs, ok := other.Team()
	return ok && theirs == int(t)
}

type rig struct {
	clk   *clock.Manual
	world *world
	ready readiness
	brain *Brain
}

func newRig(t *testing.T, cfg Config, defs ...*ability.Definition) *rig {
	t.Helper()
	r := &rig{clk: &clock.Manual{}, world: newWorld(), ready: readiness{}}
	for i := range defs {
		r.ready[i] = true
	}
	r.brain = New(cfg, r.clk, r.world, r.ready, at(geom.Zero), nil, team(0), nil)
	def := &data.ActorDefinition{Abilities: defs, DetectionRange: 10}
	k := actor.NewKernel(zaptest.NewLogger(t), def)
	k.Attach(r.brain)
	k.Initialize()
	if !k.Enabled(r.brain) {
		t.Fatal("brain failed to initialize")
	}
	return r
}

func TestNoTargetGivesEmptyCommand(t *testing.T) {
	r := newRig(t, Config{}, &ability.Definition{ID: "bite", Range: 1})
	r.world.add(&mob{id: 900, pos: geom.V(1, 0), team: 0})  // friendly
	r.world.add(&mob{id: 901, pos: geom.V(30, 0), team: 1}) // out of range

	for i := 0; i < 5; i++ {
		r.clk.Add(0.1)
		if got := r.brain.ReadCommand(); got != input.Empty() {
			t.Fatalf("read %d: %+v, want the empty command", i, got)
		}
	}

	r.world.add(&mob{id: 902, pos: geom.V(0.5, 0), team: 1})
	got := r.brain.ReadCommand()
	if !got.AttackPressed || got.Slot != 0 || !got.Aiming || !got.AimWorld.Equal(geom.V(0.5, 0)) {
		t.Errorf("command once a target appears = %+v", got)
	}
}

func TestSelectAbilityTieBreaks(t *testing.T) {
	defs := []*ability.Definition{
		{ID: "long", Range: 6},
		{ID: "short-a", Range: 2},
		{ID: "short-b", Range: 2},
		{ID: "long-b", Range: 6},
	}
	r := newRig(t, Config{}, defs...)

	cases := []struct {
		name     string
		distance float64
		ready    readiness
		want     int
	}{
		{"smallest reaching range, lowest slot", 1.5, readiness{0: true, 1: true, 2: true, 3: true}, 1},
		{"next smallest when the best is cooling", 1.5, readiness{0: true, 2: true, 3: true}, 2},
		{"only long ranges reach", 4, readiness{0: true, 1: true, 2: true, 3: true}, 0},
		{"nothing ready: longest range, lowest slot", 1, readiness{}, 0},
		{"nothing reaches: longest range, lowest slot", 50, readiness{0: true, 1: true, 2: true, 3: true}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r.brain.runner = tc.ready
			for i := 0; i < 3; i++ {
				def, slot := r.brain.SelectAbility(tc.distance)
				if slot != tc.want || def != defs[tc.want] {
					t.Fatalf("SelectAbility(%v) = %v/%d, want slot %d", tc.distance, def, slot, tc.want)
				}
			}
		})
	}
}

func TestSelectAbilityWithoutAbilities(t *testing.T) {
	r := newRig(t, Config{})
	if def, slot := r.brain.SelectAbility(1); def != nil || slot != input.NoSlot {
		t.Errorf("got %v/%d", def, slot)
	}
	r.world.add(&mob{id: 505, pos: geom.V(3, 0), team: 1})
	cmd := r.brain.ReadCommand()
	if cmd.AttackPressed || !cmd.Move.Equal(geom.V(1, 0)) {
		t.Errorf("unarmed brain should chase without attacking: %+v", cmd)
	}
}

func TestChaseAndCast(t *testing.T) {
	r := newRig(t, Config{}, &ability.Definition{ID: "strike", Range: 2, Cooldown: 1})
	enemy := &mob{id: 510, pos: geom.V(5, 0), team: 1}
	r.world.add(enemy)

	cmd := r.brain.ReadCommand()
	if cmd.AttackPressed || !cmd.Move.Equal(geom.V(1, 0)) {
		t.Errorf("out of range: %+v", cmd)
	}

	enemy.pos = geom.V(1.5, 0)
	cmd = r.brain.ReadCommand()
	if !cmd.AttackPressed || cmd.Slot != 0 || !cmd.Move.NearZero() {
		t.Errorf("in range: %+v", cmd)
	}

	r.ready[0] = false
	cmd = r.brain.ReadCommand()
	if cmd.AttackPressed {
		t.Error("attacked while the slot was cooling down")
	}
}

func TestLineOfSightGatesCasting(t *testing.T) {
	r := newRig(t, Config{RequireLineOfSight: true}, &ability.Definition{ID: "bolt", Range: 8})
	r.world.add(&mob{id: 511, pos: geom.V(4, 0), team: 1})

	if cmd := r.brain.ReadCommand(); !cmd.AttackPressed {
		t.Fatalf("clear sight: %+v", cmd)
	}
	r.world.blocked = true
	r.clk.Add(1) // force a re-acquire
	if cmd := r.brain.ReadCommand(); cmd != input.Empty() {
		t.Errorf("hidden target was acquired: %+v", cmd)
	}
}

func TestReacquireInterval(t *testing.T) {
	r := newRig(t, Config{ReacquireInterval: 0.5}, &ability.Definition{ID: "a", Range: 1})
	far := &mob{id: 520, pos: geom.V(6, 0), team: 1}
	r.world.add(far)

	r.brain.ReadCommand()
	if r.brain.Target() != 520 {
		t.Fatalf("target = %d", r.brain.Target())
	}
	near := &mob{id: 521, pos: geom.V(2, 0), team: 1}
	r.world.add(near)

	r.clk.Add(0.2)
	r.brain.ReadCommand()
	if r.brain.Target() != 520 {
		t.Error("switched target before the interval elapsed")
	}
	r.clk.Add(0.4)
	r.brain.ReadCommand()
	if r.brain.Target() != 521 {
		t.Errorf("target after the interval = %d, want the nearer 521", r.brain.Target())
	}

	r.world.remove(521)
	r.brain.ReadCommand()
	if r.brain.Target() != 520 {
		t.Errorf("lost target was not replaced immediately: %d", r.brain.Target())
	}
}

func TestNearestTieBreaksOnID(t *testing.T) {
	r := newRig(t, Config{}, &ability.Definition{ID: "a", Range: 1})
	r.world.add(&mob{id: 531, pos: geom.V(0, 3), team: 1})
	r.world.add(&mob{id: 530, pos: geom.V(3, 0), team: 1})
	r.brain.ReadCommand()
	if r.brain.Target() != 530 {
		t.Errorf("target = %d, want the lower id at equal distance", r.brain.Target())
	}
}

func TestBrainWithoutRunnerIsDisabled(t *testing.T) {
	b := New(Config{}, &clock.Manual{}, newWorld(), nil, at(geom.Zero), nil, nil, nil)
	k := actor.NewKernel(zaptest.NewLogger(t), &data.ActorDefinition{})
	k.Attach(b)
	k.Initialize()
	if k.Enabled(b) {
		t.Error("brain without a runner should be disabled")
	}
	if b.ReadCommand() != input.Empty() {
		t.Error("uninitialized brain produced a command")
	}
}

func TestChaseBehavior(t *testing.T) {
	c := NewChase(0)
	dir := geom.V(0, 1)
	def := &ability.Definition{Range: 2}
	cases := []struct {
		name     string
		def      *ability.Definition
		distance float64
		moving   bool
	}{
		{"out of range", def, 3, true},
		{"inside the stop buffer", def, 1.96, true},
		{"in range", def, 1.9, false},
		{"unarmed far", nil, 2, true},
		{"unarmed close", nil, 1, false},
		{"zero range clamps", &ability.Definition{}, 0.04, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := c.DecideMovement(tc.def, tc.distance, dir)
			if moving := !got.NearZero(); moving != tc.moving {
				t.Errorf("moving = %v, want %v", moving, tc.moving)
			}
		})
	}
	if !(Hold{}).DecideMovement(def, 10, dir).NearZero() {
		t.Error("Hold moved")
	}
}

func TestScriptedBehavior(t *testing.T) {
	e, err := scripting.NewEngine("", zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()
	if err := e.LoadString("flee.lua", `function decide_movement(ctx) return {x = -ctx.dir.x * 3, y = -ctx.dir.y * 3} end`); err != nil {
		t.Fatal(err)
	}

	s := NewScripted(e, "flee.lua", Hold{}, zaptest.NewLogger(t))
	got := s.DecideMovement(nil, 2, geom.V(1, 0))
	if !got.Equal(geom.V(-1, 0)) {
		t.Errorf("scripted move = %v, want (-1,0) clamped", got)
	}

	broken := NewScripted(e, "missing.lua", Hold{}, zaptest.NewLogger(t))
	if !broken.DecideMovement(nil, 2, geom.V(1, 0)).NearZero() || broken.Failures() != 1 {
		t.Error("missing script did not fall back")
	}
}

func TestTargetMaskFiltersAcquisition(t *testing.T) {
	cases := []struct {
		name string
		mask ability.Mask
		want ident.ActorID
	}{
		{"unset mask sees every layer", 0, 950},
		{"ground only", 1, 951},
		{"air only", 2, 950},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newRig(t, Config{TargetMask: tc.mask}, &ability.Definition{ID: "a", Range: 1})
			r.world.add(&mob{id: 950, pos: geom.V(1, 0), team: 1, layer: 2})
			r.world.add(&mob{id: 951, pos: geom.V(3, 0), team: 1, layer: 1})
			r.brain.ReadCommand()
			if r.brain.Target() != tc.want {
				t.Errorf("target = %d, want %d", r.brain.Target(), tc.want)
			}
		})
	}
}

func TestTeamFeatureDecidesFriendlies(t *testing.T) {
	tm := teamfeature.New()
	w := newWorld(
		&mob{id: 960, pos: geom.V(1, 0), team: 3},
		&mob{id: 961, pos: geom.V(2, 0), team: 4},
	)
	b := New(Config{}, &clock.Manual{}, w, readiness{0: true}, at(geom.Zero), nil, tm, nil)
	def := &data.ActorDefinition{
		Team:           3,
		DetectionRange: 10,
		Abilities:      []*ability.Definition{{ID: "a", Range: 1}},
	}
	k := actor.NewKernel(zaptest.NewLogger(t), def)
	k.Attach(tm)
	k.Attach(b)
	k.Initialize()

	b.ReadCommand()
	if b.Target() != 961 {
		t.Errorf("target = %d, want the nearest enemy 961 past the teammate", b.Target())
	}
}
