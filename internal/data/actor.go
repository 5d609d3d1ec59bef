package data

import (
	"github.com/lastdescent/actorsim/internal/ability"
	"github.com/lastdescent/actorsim/internal/attr"
)

// AttributeProfile holds the base values an actor spawns with.
type AttributeProfile struct {
	Name string
	Base map[attr.ID]float64
}

// ActorDefinition is the static configuration of one actor archetype.
// Read-only at runtime; swap the whole value instead of editing it.
type ActorDefinition struct {
	Name           string
	Attributes     *AttributeProfile
	Abilities      []*ability.Definition // slot = index
	Team           int
	DetectionRange float64
	BodyRadius     float64
	Layer          ability.Mask
}

// Ability returns the definition in slot, or nil when the slot is empty or
// out of range.
func (d *ActorDefinition) Ability(slot int) *ability.Definition {
	if d == nil || slot < 0 || slot >= len(d.Abilities) {
		return nil
	}
	return d.Abilities[slot]
}

// Slots returns the number of ability slots.
func (d *ActorDefinition) Slots() int {
	if d == nil {
		return 0
	}
	return len(d.Abilities)
}
