package life

import (
	"context"

	"github.com/lastdescent/actorsim/internal/actor"
	"github.com/lastdescent/actorsim/internal/core/event"
	"github.com/lastdescent/actorsim/internal/core/ident"
	"github.com/looplab/fsm"
	"go.uber.org/zap"
)

// Death states.
const (
	StateAlive          = "alive"
	StateDyingRequested = "dying_requested"
	StateDyingStarted   = "dying_started"
	StateFinished       = "finished"
)

const (
	evRequest = "request"
	evStart   = "start"
	evFinish  = "finish"
)

// Halter is implemented by frozen features that hold motion state.
type Halter interface {
	Halt()
}

// Coordinator freezes gameplay features once on DeathRequested and retires
// the actor on DeathFinished. One way: a revive does not bring it back.
type Coordinator struct {
	actor.Base
	freeze  []actor.Feature
	despawn func(ident.ActorID)
	machine *fsm.FSM
	tokens  []event.Token
}

// NewCoordinator freezes the given features on death. despawn hands the actor
// to its world once death finishes and may be nil.
func NewCoordinator(despawn func(ident.ActorID), freeze ...actor.Feature) *Coordinator {
	return &Coordinator{freeze: freeze, despawn: despawn}
}

func (c *Coordinator) String() string { return "death" }

func (c *Coordinator) Initialize(ctx *actor.Context) error {
	c.Ctx = ctx
	c.machine = fsm.NewFSM(StateAlive,
		fsm.Events{
			{Name: evRequest, Src: []string{StateAlive}, Dst: StateDyingRequested},
			{Name: evStart, Src: []string{StateDyingRequested}, Dst: StateDyingStarted},
			{Name: evFinish, Src: []string{StateDyingStarted}, Dst: StateFinished},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				ctx.Log.Info("death state", zap.String("from", e.Src), zap.String("to", e.Dst))
			},
		},
	)
	c.tokens = append(c.tokens[:0],
		event.Subscribe(ctx.Bus, c.onRequested),
		event.Subscribe(ctx.Bus, c.onFinished),
	)
	return nil
}

func (c *Coordinator) Shutdown() {
	if c.Ctx == nil {
		return
	}
	for _, tok := range c.tokens {
		c.Ctx.Bus.Unsubscribe(tok)
	}
	c.tokens = c.tokens[:0]
}

// State returns the current death state.
func (c *Coordinator) State() string {
	if c.machine == nil {
		return StateAlive
	}
	return c.machine.Current()
}

func (c *Coordinator) fire(name string) bool {
	if !c.machine.Can(name) {
		return false
	}
	if err := c.machine.Event(context.Background(), name); err != nil {
		c.Ctx.Log.Warn("death transition failed", zap.String("event", name), zap.Error(err))
		return false
	}
	return true
}

func (c *Coordinator) onRequested(event.DeathRequested) {
	if !c.fire(evRequest) {
		return
	}
	for _, f := range c.freeze {
		c.Ctx.Kernel.Disable(f)
		if h, ok := f.(Halter); ok {
			h.Halt()
		}
	}
	c.fire(evStart)
	event.Publish(c.Ctx.Bus, event.DeathStarted{})
}

func (c *Coordinator) onFinished(event.DeathFinished) {
	if !c.fire(evFinish) {
		return
	}
	c.Ctx.Kernel.Retire()
	if c.despawn != nil {
		c.despawn(c.Ctx.ID)
	}
}
