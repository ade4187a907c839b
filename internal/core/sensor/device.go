package sensor

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/tiltbox/internal/core/events/bus"
	"github.com/zeusync/tiltbox/internal/core/observability/log"
	"github.com/zeusync/tiltbox/internal/core/orientation"
)

// Reader is the frame loop's read-only view of the device.
type Reader interface {
	Rotation() orientation.Rotation
	Motion() mgl64.Vec3
}

var _ Reader = (*Device)(nil)

// DeviceOption configures a Device.
type DeviceOption func(*Device)

// WithZeroMotionAxes makes the device accept motion samples with zero axes.
func WithZeroMotionAxes(accept bool) DeviceOption {
	return func(d *Device) { d.acceptZeroMotion = accept }
}

// WithLogger sets the device logger.
func WithLogger(l log.Log) DeviceOption {
	return func(d *Device) { d.logger = l }
}

// Device holds the latest converted orientation and acceleration. Its handlers
// are the only code that writes them.
type Device struct {
	rotation *Mailbox[orientation.Rotation]
	motion   *Mailbox[mgl64.Vec3]

	acceptZeroMotion bool
	logger           log.Log

	subs []bus.Subscription
}

// NewDevice starts at identity rotation and zero acceleration.
func NewDevice(opts ...DeviceOption) *Device {
	d := &Device{
		rotation: NewMailbox(orientation.Rotation{}),
		motion:   NewMailbox(mgl64.Vec3{}),
		logger:   log.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Device) Rotation() orientation.Rotation { return d.rotation.Latest() }
func (d *Device) Motion() mgl64.Vec3             { return d.motion.Latest() }

// RotationVersion and MotionVersion count accepted samples.
func (d *Device) RotationVersion() uint64 { return d.rotation.Version() }
func (d *Device) MotionVersion() uint64   { return d.motion.Version() }

// HandleOrientation converts and stores a sample. Incomplete samples are
// dropped and the previous rotation stays. It reports whether the sample was
// accepted.
func (d *Device) HandleOrientation(s OrientationSample) bool {
	if !s.Complete() {
		d.logger.Debug("orientation sample dropped")
		return false
	}
	d.rotation.Post(ConvertOrientation(*s.Alpha, *s.Beta, *s.Gamma))
	return true
}

// HandleMotion converts and stores a sample, keeping the previous value when
// the sample is rejected.
func (d *Device) HandleMotion(s MotionSample) bool {
	v, ok := convertMotion(s, d.acceptZeroMotion)
	if !ok {
		d.logger.Debug("motion sample dropped")
		return false
	}
	d.motion.Post(v)
	return true
}

// Attach subscribes the device to sensor events on b.
func (d *Device) Attach(b bus.EventBus) error {
	orient, err := b.Subscribe(EventOrientation, func(e bus.Event) error {
		s, ok := orientationPayload(e.Data())
		if !ok {
			return fmt.Errorf("%w: %T on %s", ErrInvalidPayload, e.Data(), e.Type())
		}
		d.HandleOrientation(s)
		return nil
	})
	if err != nil {
		return fmt.Errorf("subscribe orientation: %w", err)
	}

	motion, err := b.Subscribe(EventMotion, func(e bus.Event) error {
		s, ok := motionPayload(e.Data())
		if !ok {
			return fmt.Errorf("%w: %T on %s", ErrInvalidPayload, e.Data(), e.Type())
		}
		d.HandleMotion(s)
		return nil
	})
	if err != nil {
		_ = orient.Cancel()
		return fmt.Errorf("subscribe motion: %w", err)
	}

	d.subs = append(d.subs, orient, motion)
	return nil
}

// Detach cancels the bus subscriptions made by Attach.
func (d *Device) Detach() {
	for _, s := range d.subs {
		_ = s.Cancel()
	}
	d.subs = nil
}

func orientationPayload(v any) (OrientationSample, bool) {
	switch s := v.(type) {
	case OrientationSample:
		return s, true
	case *OrientationSample:
		if s == nil {
			return OrientationSample{}, false
		}
		return *s, true
	default:
		return OrientationSample{}, false
	}
}

func motionPayload(v any) (MotionSample, bool) {
	switch s := v.(type) {
	case MotionSample:
		return s, true
	case *MotionSample:
		if s == nil {
			return MotionSample{}, false
		}
		return *s, true
	default:
		return MotionSample{}, false
	}
}
