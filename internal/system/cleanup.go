package system

import (
	"time"

	coresys "github.com/lastdescent/actorsim/internal/core/system"
	"github.com/lastdescent/actorsim/internal/world"
)

// CleanupSystem flushes the deferred actor destruction queue at step end.
// Phase 5 (Cleanup).
type CleanupSystem struct {
	world *world.World
}

func NewCleanupSystem(w *world.World) *CleanupSystem {
	return &CleanupSystem{world: w}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	s.world.FlushDestroyQueue()
}
