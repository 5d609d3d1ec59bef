package event

import (
	"github.com/lastdescent/actorsim/internal/core/geom"
	"github.com/lastdescent/actorsim/internal/core/ident"
)

// Damage is raised on the target's bus.
type Damage struct {
	SourceID  ident.ActorID
	AbilityID string
	Amount    float64
}

// AbilityCast is raised on the caster's own bus after a successful cast.
type AbilityCast struct {
	AbilityID string
	Slot      int
	Aim       geom.Vec2
}

// DeathRequested is raised once health crosses to zero.
type DeathRequested struct {
	SourceID ident.ActorID
}

// DeathStarted is raised after gameplay features have been frozen.
type DeathStarted struct{}

// DeathFinished is raised by whatever owns the death presentation.
type DeathFinished struct{}

// Revived is raised when health climbs back above zero after a death request.
type Revived struct{}
