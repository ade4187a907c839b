package sensor

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/tiltbox/internal/core/events/bus"
	"github.com/zeusync/tiltbox/internal/core/orientation"
)

func TestDeviceStartsAtIdentity(t *testing.T) {
	d := NewDevice()
	assert.Equal(t, orientation.Rotation{}, d.Rotation())
	assert.Equal(t, mgl64.Vec3{}, d.Motion())
}

func TestDeviceKeepsStaleValueOnBadSamples(t *testing.T) {
	d := NewDevice()
	require.True(t, d.HandleOrientation(*Orientation(180, 10, 0)))
	before := d.Rotation()

	assert.False(t, d.HandleOrientation(OrientationSample{Alpha: Float(90)}))
	assert.Equal(t, before, d.Rotation())
	assert.Equal(t, uint64(1), d.RotationVersion())

	require.True(t, d.HandleMotion(*Motion(1, 2, 3)))
	assert.False(t, d.HandleMotion(*Motion(0, 2, 3)))
	assert.Equal(t, mgl64.Vec3{-1, 3, -2}, d.Motion())
	assert.Equal(t, uint64(1), d.MotionVersion())
}

func TestDeviceZeroMotionOption(t *testing.T) {
	d := NewDevice(WithZeroMotionAxes(true))
	assert.True(t, d.HandleMotion(*Motion(0, 0, 1)))
	assert.Equal(t, mgl64.Vec3{0, 1, 0}, d.Motion())
}

func TestDeviceAttachedToBus(t *testing.T) {
	b := bus.New()
	d := NewDevice()
	require.NoError(t, d.Attach(b))

	require.NoError(t, b.Publish(bus.NewEvent(EventOrientation, "test", *Orientation(0, 0, 0))))
	assert.InDelta(t, math.Pi, d.Rotation().Alpha, 1e-12)

	require.NoError(t, b.Publish(bus.NewEvent(EventMotion, "test", Motion(2, 4, 6))))
	assert.Equal(t, mgl64.Vec3{-2, 6, -4}, d.Motion())

	err := b.Publish(bus.NewEvent(EventMotion, "test", "garbage"))
	assert.ErrorIs(t, err, ErrInvalidPayload)

	d.Detach()
	require.NoError(t, b.Publish(bus.NewEvent(EventOrientation, "test", *Orientation(180, 0, 0))))
	assert.InDelta(t, math.Pi, d.Rotation().Alpha, 1e-12, "detached device must not change")
}
