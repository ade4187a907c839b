// Package telemetry reports the simulation state every few frames.
package telemetry

import (
	"sync"
	"time"

	"github.com/zeusync/tiltbox/internal/core/events/bus"
	"github.com/zeusync/tiltbox/internal/core/observability/log"
	"github.com/zeusync/tiltbox/internal/core/system"
	"github.com/zeusync/tiltbox/internal/core/systems/physics"
	"github.com/zeusync/tiltbox/internal/core/systems/tilt"
	"github.com/zeusync/tiltbox/internal/core/world"
)

const (
	SystemName = "telemetry"
	// EventFrame carries a Snapshot.
	EventFrame = "telemetry.frame"
)

// Snapshot is what gets reported for a frame.
type Snapshot struct {
	Frame    uint64
	Tilt     tilt.FrameResult
	Stats    world.Stats
	Digest   uint64
	Recorded time.Time
}

type TiltState interface {
	Last() tilt.FrameResult
	Frames() uint64
}

type WorldState interface {
	Digest() uint64
	Stats() world.Stats
}

var _ system.System = (*System)(nil)

// System logs and publishes a Snapshot every Every frames.
type System struct {
	tilt   TiltState
	world  WorldState
	bus    bus.EventBus
	logger log.Log
	every  uint64

	mu    sync.RWMutex
	frame uint64
	last  Snapshot
}

// NewSystem reports every n frames. n of zero reports nothing; b may be nil.
func NewSystem(every int, t TiltState, w WorldState, b bus.EventBus, logger log.Log) *System {
	if logger == nil {
		logger = log.NewNop()
	}
	n := uint64(0)
	if every > 0 {
		n = uint64(every)
	}
	return &System{
		tilt:   t,
		world:  w,
		bus:    b,
		logger: logger.With(log.String("system", SystemName)),
		every:  n,
	}
}

func (s *System) Name() string                 { return SystemName }
func (s *System) Phase() system.ExecutionPhase { return system.PhasePostUpdate }
func (s *System) Priority() system.Priority    { return system.PriorityLowest }

func (s *System) Update(time.Duration) error {
	s.mu.Lock()
	s.frame++
	frame := s.frame
	s.mu.Unlock()
	if s.every == 0 || frame%s.every != 0 {
		return nil
	}

	snap := Snapshot{
		Frame:    frame,
		Tilt:     s.tilt.Last(),
		Stats:    s.world.Stats(),
		Digest:   s.world.Digest(),
		Recorded: time.Now(),
	}
	s.mu.Lock()
	s.last = snap
	s.mu.Unlock()

	s.logger.Info("frame",
		log.Uint64("frame", snap.Frame),
		log.Uint64("tilt_frames", s.tilt.Frames()),
		log.Int("sub_steps", snap.Tilt.SubSteps),
		log.Stringer("rotation", snap.Tilt.Target),
		log.Float64s("gravity", physics.Floats(snap.Tilt.Gravity)...),
		log.Uint64("physics_steps", snap.Stats.Steps),
		log.Uint64("settle_steps", snap.Stats.SettleSteps),
		log.Duration("sim_time", snap.Stats.SimTime),
		log.Int("lost", snap.Stats.Lost),
		log.Uint64("digest", snap.Digest),
	)

	if s.bus != nil {
		if err := s.bus.Publish(bus.NewEvent(EventFrame, SystemName, snap)); err != nil {
			s.logger.Warn("snapshot delivery failed", log.Error(err))
		}
	}
	return nil
}

// Last returns the most recent snapshot.
func (s *System) Last() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}
