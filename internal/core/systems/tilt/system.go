package tilt

import (
	"sync"
	"time"

	"github.com/zeusync/tiltbox/internal/core/orientation"
	"github.com/zeusync/tiltbox/internal/core/sensor"
	"github.com/zeusync/tiltbox/internal/core/system"
)

const SystemName = "tilt"

var _ system.System = (*System)(nil)

// System runs the synchronizer once per frame before anything else moves.
type System struct {
	synchronizer *Synchronizer

	mu     sync.RWMutex
	frame  FrameContext
	last   FrameResult
	frames uint64
}

func NewSystem(s *Synchronizer, device sensor.Reader) *System {
	return &System{synchronizer: s, frame: FrameContext{Device: device}}
}

func (s *System) Name() string                 { return SystemName }
func (s *System) Phase() system.ExecutionPhase { return system.PhasePreUpdate }
func (s *System) Priority() system.Priority    { return system.PriorityHighest }

func (s *System) Update(time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.synchronizer.SynchronizeFrame(&s.frame)
	if err != nil {
		return err
	}
	s.last = res
	s.frames++
	return nil
}

// Last returns the result of the most recent successful frame.
func (s *System) Last() FrameResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Applied returns the rotation currently held by the plate.
func (s *System) Applied() orientation.Rotation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frame.Applied
}

// Frames counts successful frames.
func (s *System) Frames() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frames
}
