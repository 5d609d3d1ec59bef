package input

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lastdescent/actorsim/internal/core/geom"
)

func TestEmpty(t *testing.T) {
	c := Empty()
	if !c.Move.NearZero() || !c.AimWorld.NearZero() || c.AttackPressed || c.HasSlot() {
		t.Errorf("Empty() = %+v", c)
	}
	if (Null{}).ReadCommand() != c {
		t.Error("Null should produce the empty command")
	}
}

func TestScriptedDrains(t *testing.T) {
	s := NewScripted(Command{Move: geom.V(1, 0), Slot: NoSlot}, Command{AttackPressed: true, Slot: 1})
	if got := s.ReadCommand(); !got.Move.Equal(geom.V(1, 0)) {
		t.Errorf("first = %+v", got)
	}
	if got := s.ReadCommand(); !got.AttackPressed || got.Slot != 1 {
		t.Errorf("second = %+v", got)
	}
	if got := s.ReadCommand(); got != Empty() {
		t.Errorf("drained = %+v", got)
	}
	s.Push(Command{Slot: 0})
	if s.Len() != 1 {
		t.Errorf("Len = %d", s.Len())
	}
}

func TestDeviceAdapterRisingEdge(t *testing.T) {
	states := []DeviceState{
		{AttackDown: true, Pointer: geom.V(3, 4), PointerValid: true},
		{AttackDown: true},
		{},
		{AttackDown: true},
		{SlotKey: 2},
		{SlotKey: 2},
		{Move: geom.V(3, 4)},
	}
	i := 0
	a := NewDeviceAdapter(DeviceFunc(func() DeviceState {
		s := states[i]
		i++
		return s
	}))

	var got []Command
	for range states {
		got = append(got, a.ReadCommand())
	}

	attacks := []bool{true, false, false, true, true, false, false}
	for n, want := range attacks {
		if got[n].AttackPressed != want {
			t.Errorf("tick %d: attack = %v, want %v", n, got[n].AttackPressed, want)
		}
	}
	if got[4].Slot != 1 {
		t.Errorf("slot key 2 mapped to slot %d", got[4].Slot)
	}
	if got[0].HasSlot() || got[3].HasSlot() {
		t.Error("plain attack requested a slot")
	}
	if !got[1].AimWorld.Equal(geom.V(3, 4)) || !got[1].Aiming {
		t.Errorf("aim not retained while pointer invalid: %v", got[1].AimWorld)
	}
	if l := got[6].Move.Len(); l > 1+1e-9 {
		t.Errorf("move not clamped: len %v", l)
	}
}

func TestReplayRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.jsonl.zst")
	src := NewScripted(
		Command{Move: geom.V(0, 1), Slot: NoSlot},
		Command{AimWorld: geom.V(5, 5), Aiming: true, AttackPressed: true, Slot: 0},
		Command{Move: geom.V(-1, 0), Slot: NoSlot},
	)
	rec, err := NewRecorder(path, "hero", src)
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	var live []Command
	for i := 0; i < 3; i++ {
		live = append(live, rec.ReadCommand())
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if rec.Err() != nil {
		t.Fatalf("record error: %v", rec.Err())
	}

	rp, err := LoadReplay(path)
	if err != nil {
		t.Fatalf("LoadReplay: %v", err)
	}
	if rp.ID != rec.ID() || rp.Actor != "hero" || rp.Len() != 3 {
		t.Fatalf("header mismatch: id=%v actor=%q len=%d", rp.ID, rp.Actor, rp.Len())
	}
	for i, want := range live {
		if got := rp.ReadCommand(); got != want {
			t.Errorf("frame %d = %+v, want %+v", i, got, want)
		}
	}
	if !rp.Done() || rp.ReadCommand() != Empty() {
		t.Error("exhausted replay should idle")
	}
}

func TestLoadReplayRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.zst")
	if err := os.WriteFile(path, []byte("not zstd"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadReplay(path); err == nil {
		t.Error("garbage accepted")
	}
	if _, err := LoadReplay(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("missing file accepted")
	}
}
