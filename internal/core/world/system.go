package world

import (
	"time"

	"github.com/zeusync/tiltbox/internal/core/system"
)

const SystemName = "physics"

var _ system.System = (*StepSystem)(nil)

// StepSystem advances the world by the frame time after everything else has
// posed and pushed it.
type StepSystem struct {
	world *World
}

func NewStepSystem(w *World) *StepSystem {
	return &StepSystem{world: w}
}

func (s *StepSystem) Name() string                 { return SystemName }
func (s *StepSystem) Phase() system.ExecutionPhase { return system.PhasePhysics }
func (s *StepSystem) Priority() system.Priority    { return system.PriorityNormal }

func (s *StepSystem) Update(dt time.Duration) error {
	return s.world.Advance(dt)
}
