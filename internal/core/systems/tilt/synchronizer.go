// Package tilt keeps the simulated plate in step with the device pose.
package tilt

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/tiltbox/internal/core/observability/log"
	"github.com/zeusync/tiltbox/internal/core/orientation"
	"github.com/zeusync/tiltbox/internal/core/sensor"
	"github.com/zeusync/tiltbox/internal/core/systems/physics"
)

// Config controls how a frame's pose change is applied.
type Config struct {
	// MaxStep is the largest MagnitudeSum allowed between two poses handed to
	// the physics engine.
	MaxStep float64
	// Baseline is added to the rotated device acceleration to form gravity.
	Baseline mgl64.Vec3
}

func DefaultConfig() Config {
	return Config{
		MaxStep:  orientation.DefaultMaxStep,
		Baseline: mgl64.Vec3{0, -1, 0},
	}
}

// FrameContext is the state carried from one frame to the next.
type FrameContext struct {
	Device sensor.Reader
	// Applied is the rotation last handed to the plate in full.
	Applied orientation.Rotation
}

// FrameResult describes one synchronized frame.
type FrameResult struct {
	Target      orientation.Rotation
	SubSteps    int
	SettleSteps int
	Gravity     mgl64.Vec3
}

// Synchronizer applies the device rotation to the plate once per frame.
type Synchronizer struct {
	cfg     Config
	body    physics.Orientable
	stepper physics.Stepper
	gravity physics.GravityField
	logger  log.Log
}

// NewSynchronizer wires a synchronizer to the plate body, the stepper used for
// settle steps and the gravity owner.
func NewSynchronizer(cfg Config, body physics.Orientable, stepper physics.Stepper, gravity physics.GravityField, logger log.Log) (*Synchronizer, error) {
	if !(cfg.MaxStep > 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStep, cfg.MaxStep)
	}
	if body == nil || stepper == nil || gravity == nil {
		return nil, ErrMissingCollaborator
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Synchronizer{
		cfg:     cfg,
		body:    body,
		stepper: stepper,
		gravity: gravity,
		logger:  logger,
	}, nil
}

// SynchronizeFrame moves the plate from fc.Applied to the device rotation in
// sub-steps, issuing a zero-length settle step after every sub-step but the
// last, then points gravity along the rotated device acceleration.
//
// On error the frame is abandoned and fc.Applied keeps its previous value; the
// plate may be left at an intermediate sub-step.
func (s *Synchronizer) SynchronizeFrame(fc *FrameContext) (FrameResult, error) {
	if fc == nil || fc.Device == nil {
		return FrameResult{}, ErrNoDevice
	}

	target := fc.Device.Rotation()
	motion := fc.Device.Motion()

	steps := orientation.SubSteps(s.cfg.MaxStep, fc.Applied, target)
	last := len(steps) - 1
	for i, step := range steps {
		if err := s.body.SetOrientation(step.Quat()); err != nil {
			return FrameResult{}, fmt.Errorf("apply sub-step %d/%d: %w", i+1, len(steps), err)
		}
		if i == last {
			break
		}
		if err := s.stepper.Advance(0); err != nil {
			return FrameResult{}, fmt.Errorf("settle step %d/%d: %w", i+1, last, err)
		}
	}

	g := target.Quat().Rotate(motion).Add(s.cfg.Baseline)
	if err := s.gravity.SetGravity(g); err != nil {
		return FrameResult{}, fmt.Errorf("set gravity: %w", err)
	}
	fc.Applied = target

	if last > 0 {
		s.logger.Debug("plate sub-stepped",
			log.Int("sub_steps", len(steps)),
			log.Stringer("target", target),
		)
	}

	return FrameResult{
		Target:      target,
		SubSteps:    len(steps),
		SettleSteps: last,
		Gravity:     g,
	}, nil
}
