// Package present turns an actor's gameplay events into presentation cues.
// Nothing here feeds back into the simulation.
package present

import (
	"math"

	"github.com/lastdescent/actorsim/internal/ability"
	"github.com/lastdescent/actorsim/internal/actor"
	"github.com/lastdescent/actorsim/internal/core/event"
	"github.com/lastdescent/actorsim/internal/core/geom"
	"github.com/lastdescent/actorsim/internal/core/ident"
	"go.uber.org/zap"
)

// Cue kinds.
const (
	CueAttack    = "attack"
	CueHurt      = "hurt"
	CueDie       = "die"
	CueDespawn   = "despawn"
	CueMoveSpeed = "move_speed"
	CueFlip      = "flip"
)

// flipThreshold is the horizontal facing magnitude below which the sprite
// keeps its last orientation.
const flipThreshold = 0.01

// speedEpsilon suppresses move-speed cues for changes nobody would see.
const speedEpsilon = 1e-3

// Cue is one presentation signal. Value carries the move speed for
// CueMoveSpeed, 1 for a left-facing CueFlip, and the damage amount for CueHurt.
type Cue struct {
	Actor   ident.ActorID    `json:"actor"`
	Kind    string           `json:"kind"`
	Value   float64          `json:"value,omitempty"`
	Preview *ability.Preview `json:"preview,omitempty"`
}

// Sink receives cues. Implementations must not block the simulation.
type Sink interface {
	Emit(c Cue)
}

type SinkFunc func(Cue)

func (f SinkFunc) Emit(c Cue) { f(c) }

// LogSink writes cues to a zap logger at Debug.
type LogSink struct {
	Log *zap.Logger
}

func (s LogSink) Emit(c Cue) {
	if s.Log == nil {
		return
	}
	fields := []zap.Field{
		zap.Uint64("actor", uint64(c.Actor)),
		zap.String("cue", c.Kind),
	}
	if c.Value != 0 {
		fields = append(fields, zap.Float64("value", c.Value))
	}
	if c.Preview != nil {
		fields = append(fields, zap.String("ability", c.Preview.AbilityID), zap.String("shape", c.Preview.Shape))
	}
	s.Log.Debug("cue", fields...)
}

// Multi fans cues out to several sinks in order.
type Multi []Sink

func (m Multi) Emit(c Cue) {
	for _, s := range m {
		if s != nil {
			s.Emit(c)
		}
	}
}

// Motion is the read side of the motor.
type Motion interface {
	Desired() geom.Vec2
	Facing() geom.Vec2
}

// Previewer exposes the geometry of the last cast.
type Previewer interface {
	LastPreview() (ability.Preview, bool)
}

// Presenter listens to the actor bus and samples motion every Tick.
type Presenter struct {
	actor.Base
	sink    Sink
	motion  Motion
	preview Previewer

	speed   float64
	left    bool
	sampled bool
	tokens  []event.Token
}

// New creates a presenter. motion and preview may be nil.
func New(sink Sink, motion Motion, preview Previewer) *Presenter {
	return &Presenter{sink: sink, motion: motion, preview: preview}
}

func (p *Presenter) String() string { return "presenter" }

func (p *Presenter) Initialize(ctx *actor.Context) error {
	p.Ctx = ctx
	if p.sink == nil {
		p.sink = LogSink{Log: ctx.Log}
	}
	p.speed, p.left, p.sampled = 0, false, false
	bus := ctx.Bus
	p.tokens = append(p.tokens[:0],
		event.Subscribe(bus, p.onCast),
		event.Subscribe(bus, p.onDamage),
		event.Subscribe(bus, func(event.DeathStarted) { p.emit(Cue{Kind: CueDie}) }),
		event.Subscribe(bus, func(event.DeathFinished) { p.emit(Cue{Kind: CueDespawn}) }),
	)
	return nil
}

func (p *Presenter) Shutdown() {
	if p.Ctx == nil {
		return
	}
	for _, tok := range p.tokens {
		p.Ctx.Bus.Unsubscribe(tok)
	}
	p.tokens = p.tokens[:0]
}

func (p *Presenter) Tick(float64) {
	if p.motion == nil {
		return
	}
	speed := p.motion.Desired().Len()
	if !p.sampled || math.Abs(speed-p.speed) > speedEpsilon {
		p.speed = speed
		p.emit(Cue{Kind: CueMoveSpeed, Value: speed})
	}
	face := p.motion.Facing()
	if math.Abs(face.X) > flipThreshold {
		left := face.X < 0
		if !p.sampled || left != p.left {
			p.left = left
			v := 0.0
			if left {
				v = 1
			}
			p.emit(Cue{Kind: CueFlip, Value: v})
		}
	}
	p.sampled = true
}

func (p *Presenter) onCast(event.AbilityCast) {
	c := Cue{Kind: CueAttack}
	if p.preview != nil {
		if pv, ok := p.preview.LastPreview(); ok {
			c.Preview = &pv
		}
	}
	p.emit(c)
}

func (p *Presenter) onDamage(d event.Damage) {
	p.emit(Cue{Kind: CueHurt, Value: d.Amount})
}

func (p *Presenter) emit(c Cue) {
	c.Actor = p.Ctx.ID
	p.sink.Emit(c)
}
