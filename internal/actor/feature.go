package actor

import (
	"github.com/lastdescent/actorsim/internal/core/event"
	"github.com/lastdescent/actorsim/internal/core/ident"
	"github.com/lastdescent/actorsim/internal/data"
	"go.uber.org/zap"
)

// Feature is one pluggable capability attached to an actor kernel.
//
// Initialize runs once per initialization cycle, in attach order. A returned
// error (or a panic) leaves the feature out of every later tick. Tick and
// FixedTick run only while the feature is enabled. Shutdown runs once per
// cycle and must tolerate a feature whose Initialize failed.
type Feature interface {
	Initialize(ctx *Context) error
	Tick(dt float64)
	FixedTick(dt float64)
	Shutdown()
}

// Context is the immutable bundle shared by the features of one actor for
// one initialization cycle.
type Context struct {
	ID         ident.ActorID
	Definition *data.ActorDefinition
	Bus        *event.Bus
	Kernel     *Kernel
	Log        *zap.Logger
}

// Base gives a feature no-op lifecycle methods. Embed it and override what
// the feature needs.
type Base struct {
	Ctx *Context
}

func (b *Base) Initialize(ctx *Context) error {
	b.Ctx = ctx
	return nil
}

func (b *Base) Tick(float64) {}
func (b *Base) FixedTick(float64) {}
func (b *Base) Shutdown() {}
