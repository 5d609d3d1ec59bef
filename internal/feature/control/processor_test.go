package control

import (
	"testing"

	"github.com/lastdescent/actorsim/internal/ability"
	"github.com/lastdescent/actorsim/internal/actor"
	"github.com/lastdescent/actorsim/internal/core/geom"
	"github.com/lastdescent/actorsim/internal/input"
)

type motor struct {
	move, aim geom.Vec2
	aims      int
}

func (m *motor) Move(dir geom.Vec2) { m.move = dir }

func (m *motor) SetAim(dir geom.Vec2) {
	m.aim = dir
	m.aims++
}

type cast struct {
	def  *ability.Definition
	slot int
	aim  geom.Vec2
}

type caster struct {
	defs  []*ability.Definition
	casts []cast
}

func (c *caster) Definition(slot int) *ability.Definition {
	if slot < 0 || slot >= len(c.defs) {
		return nil
	}
	return c.defs[slot]
}

func (c *caster) TryCast(def *ability.Definition, slot int, aim geom.Vec2) bool {
	if def == nil {
		return false
	}
	c.casts = append(c.casts, cast{def, slot, aim})
	return true
}

type at geom.Vec2

func (a at) Position() geom.Vec2 { return geom.Vec2(a) }

func run(t *testing.T, cmds ...input.Command) (*Processor, *motor, *caster) {
	t.Helper()
	m := &motor{}
	c := &caster{defs: []*ability.Definition{{ID: "first"}, {ID: "second"}}}
	p := New(input.NewScripted(cmds...), m, c, at(geom.V(1, 1)))
	k := actor.NewKernel(nil, nil)
	k.Attach(p)
	k.Initialize()
	for range cmds {
		k.Tick(0.016)
	}
	return p, m, c
}

func TestAttackWithoutSlotUsesSlotZero(t *testing.T) {
	p, _, c := run(t, input.Command{AimWorld: geom.V(4, 5), Aiming: true, AttackPressed: true, Slot: input.NoSlot})
	if len(c.casts) != 1 || c.casts[0].slot != 0 || c.casts[0].def.ID != "first" {
		t.Fatalf("casts = %+v", c.casts)
	}
	if !c.casts[0].aim.Equal(geom.V(3, 4)) {
		t.Errorf("aim = %v, want aim point minus position", c.casts[0].aim)
	}
	if p.Casts() != 1 {
		t.Errorf("Casts() = %d", p.Casts())
	}
}

func TestRequestedSlot(t *testing.T) {
	_, _, c := run(t,
		input.Command{AttackPressed: true, Slot: 1},
		input.Command{AttackPressed: true, Slot: 5},
		input.Command{Slot: 1},
	)
	if len(c.casts) != 1 || c.casts[0].def.ID != "second" {
		t.Fatalf("casts = %+v", c.casts)
	}
	if !c.casts[0].aim.NearZero() {
		t.Error("command without aim should leave aim to the runner's facing")
	}
}

func TestMoveAndFacing(t *testing.T) {
	_, m, _ := run(t, input.Command{Move: geom.V(0, 1), Slot: input.NoSlot})
	if !m.move.Equal(geom.V(0, 1)) || !m.aim.Equal(geom.V(0, 1)) {
		t.Errorf("move=%v aim=%v", m.move, m.aim)
	}

	_, m, _ = run(t, input.Command{Move: geom.V(0.001, 0), Slot: input.NoSlot})
	if !m.move.NearZero() || m.aims != 0 {
		t.Errorf("jitter moved or turned the actor: move=%v aims=%d", m.move, m.aims)
	}

	_, m, _ = run(t, input.Command{Move: geom.V(1, 0), AimWorld: geom.V(1, -3), Aiming: true, Slot: input.NoSlot})
	if !m.aim.Equal(geom.V(0, -4)) {
		t.Errorf("aim should win over move direction, got %v", m.aim)
	}
}

func TestNoSourceDisables(t *testing.T) {
	k := actor.NewKernel(nil, nil)
	p := New(nil, nil, nil, nil)
	k.Attach(p)
	k.Initialize()
	if k.Enabled(p) {
		t.Error("processor without a producer should be disabled")
	}
}
