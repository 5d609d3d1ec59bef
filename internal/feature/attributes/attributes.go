// Package attributes owns an actor's attribute set.
package attributes

import (
	"github.com/lastdescent/actorsim/internal/actor"
	"github.com/lastdescent/actorsim/internal/attr"
)

// Attributes seeds an attr.Set from the definition's profile on every
// initialization cycle.
type Attributes struct {
	actor.Base
	set *attr.Set
}

func New() *Attributes { return &Attributes{set: attr.NewSet()} }

func (a *Attributes) String() string { return "attributes" }

func (a *Attributes) Initialize(ctx *actor.Context) error {
	a.Ctx = ctx
	if ctx.Definition == nil || ctx.Definition.Attributes == nil {
		ctx.Log.Debug("no attribute profile, using defaults")
		a.set.Seed(nil)
		return nil
	}
	a.set.Seed(ctx.Definition.Attributes.Base)
	return nil
}

// Provider returns the actor's attributes. Valid before Initialize; values
// are seeded by it.
func (a *Attributes) Provider() attr.Provider { return a.set }
