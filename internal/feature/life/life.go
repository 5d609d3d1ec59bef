// Package life turns health changes into death requests and coordinates the
// freeze and retirement of dying actors.
package life

import (
	"errors"

	"github.com/lastdescent/actorsim/internal/actor"
	"github.com/lastdescent/actorsim/internal/attr"
	"github.com/lastdescent/actorsim/internal/core/event"
	"github.com/lastdescent/actorsim/internal/core/ident"
	"go.uber.org/zap"
)

var errNoAttributes = errors.New("life needs an attribute provider")

// Life applies Damage to health and raises DeathRequested once when health
// reaches zero. Health climbing back above zero clears the latch and raises
// Revived.
type Life struct {
	actor.Base
	attrs      attr.Provider
	dying      bool
	lastSource ident.ActorID
	dmgTok     event.Token
	attrTok    int
}

func New(attrs attr.Provider) *Life { return &Life{attrs: attrs} }

func (l *Life) String() string { return "life" }

func (l *Life) Initialize(ctx *actor.Context) error {
	l.Ctx = ctx
	if l.attrs == nil {
		return errNoAttributes
	}
	l.dying = false
	l.dmgTok = event.Subscribe(ctx.Bus, l.onDamage)
	l.attrTok = l.attrs.Subscribe(l.onChange)
	return nil
}

func (l *Life) Shutdown() {
	if l.Ctx != nil {
		l.Ctx.Bus.Unsubscribe(l.dmgTok)
	}
	if l.attrs != nil && l.attrTok != 0 {
		l.attrs.Unsubscribe(l.attrTok)
		l.attrTok = 0
	}
}

// Dying reports whether a death request is outstanding.
func (l *Life) Dying() bool { return l.dying }

func (l *Life) onDamage(d event.Damage) {
	if l.dying || d.Amount <= 0 {
		return
	}
	l.lastSource = d.SourceID
	l.attrs.ApplyDelta(attr.Health, -d.Amount)
}

func (l *Life) onChange(c attr.Change) {
	if c.ID != attr.Health || c.Base {
		return
	}
	switch {
	case !l.dying && c.New <= 0:
		l.dying = true
		l.Ctx.Log.Debug("death requested", zap.Uint64("source", uint64(l.lastSource)))
		event.Publish(l.Ctx.Bus, event.DeathRequested{SourceID: l.lastSource})
	case l.dying && c.New > 0:
		l.dying = false
		event.Publish(l.Ctx.Bus, event.Revived{})
	}
}
