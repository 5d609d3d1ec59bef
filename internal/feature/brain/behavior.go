package brain

import (
	"math"

	"github.com/lastdescent/actorsim/internal/ability"
	"github.com/lastdescent/actorsim/internal/core/geom"
	"github.com/lastdescent/actorsim/internal/scripting"
	"go.uber.org/zap"
)

const (
	DefaultStopBuffer = 0.05
	unarmedReach      = 1.5
	minReach          = 0.1
)

// Chase walks toward the target until it is inside the selected ability's
// range, less a small buffer that keeps it from jittering on the edge.
type Chase struct {
	StopBuffer float64
}

func NewChase(stopBuffer float64) *Chase {
	if stopBuffer <= 0 {
		stopBuffer = DefaultStopBuffer
	}
	return &Chase{StopBuffer: stopBuffer}
}

func (c *Chase) DecideMovement(def *ability.Definition, distance float64, dir geom.Vec2) geom.Vec2 {
	desired := unarmedReach
	if def != nil {
		desired = math.Max(minReach, def.Range)
	}
	if distance > desired-c.StopBuffer {
		return dir
	}
	return geom.Zero
}

// Hold never moves; the actor only turns and casts.
type Hold struct{}

func (Hold) DecideMovement(*ability.Definition, float64, geom.Vec2) geom.Vec2 { return geom.Zero }

// Scripted asks a Lua behavior for the move vector and falls back when the
// script fails.
type Scripted struct {
	engine   *scripting.Engine
	script   string
	fallback Behavior
	log      *zap.Logger
	failures int
}

func NewScripted(engine *scripting.Engine, script string, fallback Behavior, log *zap.Logger) *Scripted {
	if fallback == nil {
		fallback = NewChase(0)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scripted{engine: engine, script: script, fallback: fallback, log: log}
}

// Failures counts calls that fell back.
func (s *Scripted) Failures() int { return s.failures }

func (s *Scripted) DecideMovement(def *ability.Definition, distance float64, dir geom.Vec2) geom.Vec2 {
	if s.engine == nil {
		return s.fallback.DecideMovement(def, distance, dir)
	}
	ctx := scripting.MovementContext{Distance: distance, DirX: dir.X, DirY: dir.Y}
	if def != nil {
		ctx.HasAbility = true
		ctx.AbilityID = def.ID
		ctx.Range = def.Range
		ctx.Cooldown = def.Cooldown
		ctx.Shape = def.Shape.String()
	}
	x, y, err := s.engine.DecideMovement(s.script, ctx)
	if err != nil {
		s.failures++
		if s.failures == 1 {
			s.log.Error("lua behavior failed, falling back", zap.String("script", s.script), zap.Error(err))
		}
		return s.fallback.DecideMovement(def, distance, dir)
	}
	move := geom.V(x, y)
	if move.LenSq() > 1 {
		move = move.Normalized()
	}
	return move
}
