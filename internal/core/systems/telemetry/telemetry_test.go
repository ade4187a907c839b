package telemetry

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zeusync/tiltbox/internal/core/events/bus"
	"github.com/zeusync/tiltbox/internal/core/observability/log"
	"github.com/zeusync/tiltbox/internal/core/systems/tilt"
	"github.com/zeusync/tiltbox/internal/core/world"
)

type stubTilt struct{ res tilt.FrameResult }

func (s stubTilt) Last() tilt.FrameResult { return s.res }
func (s stubTilt) Frames() uint64         { return 7 }

type stubWorld struct{}

func (stubWorld) Digest() uint64     { return 42 }
func (stubWorld) Stats() world.Stats { return world.Stats{Steps: 3, Bodies: 4} }

func TestReportsEveryNFrames(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	b := bus.New()

	var got []Snapshot
	_, err := b.Subscribe(EventFrame, func(e bus.Event) error {
		got = append(got, e.Data().(Snapshot))
		return nil
	})
	require.NoError(t, err)

	res := tilt.FrameResult{SubSteps: 5, Gravity: mgl64.Vec3{0, -1, 0}}
	s := NewSystem(3, stubTilt{res: res}, stubWorld{}, b, log.NewWithCore(core, log.LevelInfo))

	for i := 0; i < 7; i++ {
		require.NoError(t, s.Update(16*time.Millisecond))
	}

	require.Len(t, got, 2)
	assert.Equal(t, uint64(3), got[0].Frame)
	assert.Equal(t, uint64(6), got[1].Frame)
	assert.Equal(t, uint64(42), got[1].Digest)
	assert.Equal(t, 5, got[1].Tilt.SubSteps)
	assert.Equal(t, got[1], s.Last())

	require.Equal(t, 2, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "telemetry", fields["system"])
	assert.EqualValues(t, 5, fields["sub_steps"])
}

func TestZeroIntervalIsSilent(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	s := NewSystem(0, stubTilt{}, stubWorld{}, nil, log.NewWithCore(core, log.LevelDebug))
	for i := 0; i < 10; i++ {
		require.NoError(t, s.Update(time.Millisecond))
	}
	assert.Zero(t, logs.Len())
	assert.Zero(t, s.Last().Frame)
}

func TestLastIsSafeWhileFramesRun(t *testing.T) {
	s := NewSystem(1, stubTilt{}, stubWorld{}, nil, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			_ = s.Update(time.Millisecond)
		}
	}()

	var prev uint64
	for running := true; running; {
		select {
		case <-done:
			running = false
		default:
		}
		frame := s.Last().Frame
		assert.GreaterOrEqual(t, frame, prev)
		prev = frame
	}
	assert.Equal(t, uint64(500), s.Last().Frame)
}
