package actor

import (
	"errors"
	"fmt"

	"github.com/lastdescent/actorsim/internal/core/event"
	"github.com/lastdescent/actorsim/internal/core/ident"
	"github.com/lastdescent/actorsim/internal/data"
	"go.uber.org/zap"
)

// ErrNoDefinition is returned by features that cannot run without one.
var ErrNoDefinition = errors.New("actor has no definition")

type entry struct {
	f        Feature
	ready    bool // Initialize succeeded this cycle
	disabled bool
}

// Kernel owns one actor's features and drives their lifecycle.
//
// Attach, Detach and SetDefinition only change the configuration used by the
// next Initialize; the running cycle keeps the features and definition it
// started with.
type Kernel struct {
	log      *zap.Logger
	attached []Feature
	def      *data.ActorDefinition

	id      ident.ActorID
	ctx     *Context
	active  []*entry
	running bool
	retired bool
}

// NewKernel creates a kernel for def. def may be nil; features that need one
// fail their Initialize.
func NewKernel(log *zap.Logger, def *data.ActorDefinition) *Kernel {
	if log == nil {
		log = zap.NewNop()
	}
	return &Kernel{log: log, def: def}
}

// Attach appends f to the feature list.
func (k *Kernel) Attach(f Feature) {
	if f != nil {
		k.attached = append(k.attached, f)
	}
}

// Detach removes f from the feature list. Reports whether it was attached.
func (k *Kernel) Detach(f Feature) bool {
	for i, a := range k.attached {
		if a == f {
			k.attached = append(k.attached[:i:i], k.attached[i+1:]...)
			return true
		}
	}
	return false
}

// SetDefinition swaps the actor definition for the next initialization cycle.
func (k *Kernel) SetDefinition(def *data.ActorDefinition) { k.def = def }

// Definition returns the definition of the running cycle, or the pending one
// before the first Initialize.
func (k *Kernel) Definition() *data.ActorDefinition {
	if k.ctx != nil {
		return k.ctx.Definition
	}
	return k.def
}

// ID returns the actor identity. Zero until the first Initialize.
func (k *Kernel) ID() ident.ActorID { return k.id }

// Context returns the context of the running cycle, or nil.
func (k *Kernel) Context() *Context { return k.ctx }

func (k *Kernel) Running() bool { return k.running }
func (k *Kernel) Retired() bool { return k.retired }

// Initialize starts a cycle: builds the Context and initializes every attached
// feature in attach order. A no-op while a cycle is running or after Retire.
func (k *Kernel) Initialize() {
	if k.running || k.retired {
		return
	}
	if k.id.IsZero() {
		k.id = ident.Next()
		k.log = k.log.With(zap.Uint64("actor_id", uint64(k.id)))
	}
	k.ctx = &Context{
		ID:         k.id,
		Definition: k.def,
		Bus:        event.NewBus(k.log),
		Kernel:     k,
		Log:        k.log,
	}
	k.active = k.active[:0]
	for _, f := range k.attached {
		e := &entry{f: f}
		if err := k.initFeature(f); err != nil {
			k.log.Warn("feature disabled",
				zap.String("feature", featureName(f)), zap.Error(err))
		} else {
			e.ready = true
		}
		k.active = append(k.active, e)
	}
	k.running = true
}

func (k *Kernel) initFeature(f Feature) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("initialize panicked: %v", r)
		}
	}()
	return f.Initialize(k.ctx)
}

// Tick runs the variable-step update of every enabled feature.
func (k *Kernel) Tick(dt float64) {
	if !k.running || k.retired {
		return
	}
	for _, e := range k.active {
		if e.ready && !e.disabled {
			e.f.Tick(dt)
		}
		if k.retired {
			return
		}
	}
}

// FixedTick runs the fixed-step update of every enabled feature.
func (k *Kernel) FixedTick(dt float64) {
	if !k.running || k.retired {
		return
	}
	for _, e := range k.active {
		if e.ready && !e.disabled {
			e.f.FixedTick(dt)
		}
		if k.retired {
			return
		}
	}
}

// Shutdown ends the cycle: every feature is shut down once in attach order,
// then the bus drops all subscriptions.
func (k *Kernel) Shutdown() {
	if !k.running {
		return
	}
	k.running = false
	for _, e := range k.active {
		e.f.Shutdown()
	}
	k.ctx.Bus.Close()
}

// Disable stops f from ticking. Reports whether f is part of the running cycle.
func (k *Kernel) Disable(f Feature) bool { return k.setDisabled(f, true) }

// Enable resumes ticks for a disabled feature.
func (k *Kernel) Enable(f Feature) bool { return k.setDisabled(f, false) }

func (k *Kernel) setDisabled(f Feature, v bool) bool {
	for _, e := range k.active {
		if e.f == f {
			e.disabled = v
			return true
		}
	}
	return false
}

// Enabled reports whether f initialized this cycle and is not disabled.
func (k *Kernel) Enabled(f Feature) bool {
	for _, e := range k.active {
		if e.f == f {
			return e.ready && !e.disabled
		}
	}
	return false
}

// Retire latches the kernel: no further ticks run and Initialize is refused.
func (k *Kernel) Retire() {
	if !k.retired {
		k.retired = true
		k.log.Debug("actor retired")
	}
}

func featureName(f Feature) string {
	if s, ok := f.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", f)
}
