package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/tiltbox/internal/config"
	"github.com/zeusync/tiltbox/internal/core/events/bus"
	"github.com/zeusync/tiltbox/internal/core/observability/log"
	"github.com/zeusync/tiltbox/internal/core/orientation"
	"github.com/zeusync/tiltbox/internal/core/sensor"
	"github.com/zeusync/tiltbox/internal/core/systems/telemetry"
)

func quietConfig() *config.Config {
	cfg := config.Default()
	cfg.Sensor.Source = config.SourceNone
	cfg.TelemetryEvery = 0
	return cfg
}

func newApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	a, err := NewWithSource(cfg, log.NewNop(), bus.New(), nil)
	require.NoError(t, err)
	return a
}

func TestNewPopulatesWorld(t *testing.T) {
	a := newApp(t, quietConfig())

	names := []string{}
	for _, b := range a.World().Bodies() {
		names = append(names, b.Name())
	}
	assert.Equal(t, []string{"dice0", "dice1", "dice2", "dice3", "rover"}, names)
	require.Len(t, a.Movers(), 1)
	assert.Equal(t, []string{"tilt", "movement", "physics", "telemetry"}, a.Manager().GetExecutionOrder())
}

func TestStepAppliesDevicePose(t *testing.T) {
	a := newApp(t, quietConfig())
	dt := a.cfg.FrameDuration()

	require.NoError(t, a.Bus().Publish(bus.NewEvent(sensor.EventOrientation, "test", *sensor.Orientation(170, 10, -5))))
	require.NoError(t, a.Bus().Publish(bus.NewEvent(sensor.EventMotion, "test", *sensor.Motion(0.1, 0.2, 0.3))))
	require.NoError(t, a.Step(dt))

	want := sensor.ConvertOrientation(170, 10, -5)
	frame := a.LastFrame()
	assert.Equal(t, want, frame.Target)
	assert.Equal(t, orientation.StepCount(0.03, orientation.Rotation{}, want), frame.SubSteps)
	assert.Equal(t, want.Quat().Normalize(), a.World().Orientation())
	assert.Equal(t, frame.Gravity, a.World().Gravity())
	assert.Equal(t, uint64(frame.SettleSteps), a.World().Stats().SettleSteps)

	wantGravity := want.Quat().Rotate(mgl64.Vec3{-0.1, 0.3, -0.2}).Add(mgl64.Vec3{0, -1, 0})
	for i := range wantGravity {
		assert.InDelta(t, wantGravity[i], frame.Gravity[i], 1e-12)
	}

	require.NoError(t, a.Step(dt))
	assert.Equal(t, 1, a.LastFrame().SubSteps, "no new sample, nothing to sub-step")
	assert.Equal(t, uint64(2), a.Frames())
}

func TestMoversAdvanceEachFrame(t *testing.T) {
	a := newApp(t, quietConfig())
	rover := a.Movers()[0]
	start := rover.Position()

	for i := 0; i < 30; i++ {
		require.NoError(t, a.Step(a.cfg.FrameDuration()))
	}
	assert.Greater(t, rover.Position()[0], start[0])
	assert.LessOrEqual(t, rover.Mover().Speed().Len(), rover.Mover().MaxSpeed)
}

func TestTelemetryPublishesSnapshots(t *testing.T) {
	cfg := quietConfig()
	cfg.TelemetryEvery = 2
	a := newApp(t, cfg)

	var frames []uint64
	_, err := a.Bus().Subscribe(telemetry.EventFrame, func(e bus.Event) error {
		frames = append(frames, e.Data().(telemetry.Snapshot).Frame)
		return nil
	})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, a.Step(cfg.FrameDuration()))
	}
	assert.Equal(t, []uint64{2, 4}, frames)
	assert.Equal(t, uint64(4), a.Telemetry().Frame)
}

func TestRunStopsAfterMaxFrames(t *testing.T) {
	cfg := quietConfig()
	cfg.FrameRate = 1000
	cfg.MaxFrames = 5

	trace := &sensor.Trace{Samples: []sensor.Reading{{Orientation: sensor.Orientation(90, 0, 0)}}}
	a, err := NewWithSource(cfg, log.NewNop(), nil, sensor.NewReplay(trace))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, a.Run(ctx))
	assert.Equal(t, uint64(5), a.Frames())
	assert.Equal(t, uint64(1), a.Device().RotationVersion())
}

func TestRunRejectsSecondRun(t *testing.T) {
	cfg := quietConfig()
	cfg.FrameRate = 1000
	a := newApp(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	require.Eventually(t, func() bool { return a.Frames() > 0 }, 2*time.Second, time.Millisecond)
	assert.ErrorIs(t, a.Run(context.Background()), ErrAlreadyRunning)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("run did not stop")
	}
}

func TestNewRejectsBadSensorConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Sensor.Source = config.SourceReplay
	cfg.Sensor.TracePath = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := New(cfg, nil, nil)
	assert.Error(t, err)

	_, err = newSource(config.SensorConfig{Source: "bluetooth"})
	assert.ErrorIs(t, err, sensor.ErrUnknownSource)

	cfg = config.Default()
	cfg.FrameRate = 0
	_, err = New(cfg, nil, nil)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}
