package team

import (
	"testing"

	"github.com/lastdescent/actorsim/internal/actor"
	"github.com/lastdescent/actorsim/internal/data"
)

func spawn(t *testing.T, def *data.ActorDefinition) *Team {
	t.Helper()
	k := actor.NewKernel(nil, def)
	tm := New()
	k.Attach(tm)
	k.Initialize()
	return tm
}

func TestTeam(t *testing.T) {
	red := spawn(t, &data.ActorDefinition{Team: 1})
	red2 := spawn(t, &data.ActorDefinition{Team: 1})
	blue := spawn(t, &data.ActorDefinition{Team: 2})
	orphan := spawn(t, nil)

	if id, ok := red.Team(); !ok || id != 1 {
		t.Errorf("Team() = %d, %v", id, ok)
	}
	if !red.IsFriendly(red2) || red.IsFriendly(blue) {
		t.Error("friendliness wrong")
	}
	if _, ok := orphan.Team(); ok {
		t.Error("feature without a definition resolved a team")
	}
	if red.IsFriendly(orphan) || orphan.IsFriendly(red) {
		t.Error("an unresolved team counted as friendly")
	}
	var none *Team
	if _, ok := none.Team(); ok {
		t.Error("nil team resolved")
	}
}
