// Package team tags an actor with the team id from its definition.
package team

import (
	"github.com/lastdescent/actorsim/internal/ability"
	"github.com/lastdescent/actorsim/internal/actor"
)

type Team struct {
	actor.Base
	id    int
	ready bool
}

func New() *Team { return &Team{} }

func (t *Team) String() string { return "team" }

func (t *Team) Initialize(ctx *actor.Context) error {
	t.Ctx = ctx
	t.ready = false
	if ctx.Definition == nil {
		return actor.ErrNoDefinition
	}
	t.id = ctx.Definition.Team
	t.ready = true
	return nil
}

// Team returns the team id. Unresolved on a nil or uninitialized feature.
func (t *Team) Team() (int, bool) {
	if t == nil || !t.ready {
		return 0, false
	}
	return t.id, true
}

// IsFriendly reports whether other resolves to the same team.
func (t *Team) IsFriendly(other ability.TeamTag) bool {
	if other == nil {
		return false
	}
	mine, ok := t.Team()
	if !ok {
		return false
	}
	theirs, ok := other.Team()
	return ok && theirs == mine
}
