package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, time.Second/60, cfg.FrameDuration())
	assert.Len(t, cfg.Dice, 4)
	assert.Equal(t, mgl64.Vec3{0, -1, 0}, Vec(cfg.GravityBaseline))
}

func TestDecodeOverridesDefaults(t *testing.T) {
	in := `
log_level: debug
frame_rate: 30
max_step_angle: 0.05
plate:
  half_extent: 1
  fixed_step: 5ms
dice:
  - name: red
    position: [0.1, 0.05, 0.1]
    size: 0.1
    mass: 2
sensor:
  source: replay
  trace_path: trace.yaml
  accept_zero_motion: true
`
	cfg, err := Decode(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 30, cfg.FrameRate)
	assert.Equal(t, 0.05, cfg.MaxStepAngle)
	assert.Equal(t, 1.0, cfg.Plate.HalfExtent)
	assert.Equal(t, 0.9, cfg.Plate.Restitution, "untouched keys keep their defaults")
	assert.Equal(t, 5*time.Millisecond, cfg.Plate.FixedStep)
	require.Len(t, cfg.Dice, 1, "lists are replaced, not merged")
	assert.Equal(t, "red", cfg.Dice[0].Name)
	assert.Equal(t, SourceReplay, cfg.Sensor.Source)
	assert.True(t, cfg.Sensor.AcceptZeroMotion)
	assert.Len(t, cfg.Movers, 1)
}

func TestDecodeEmptyInput(t *testing.T) {
	cfg, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"log level":       func(c *Config) { c.LogLevel = "chatty" },
		"frame rate":      func(c *Config) { c.FrameRate = 0 },
		"step angle":      func(c *Config) { c.MaxStepAngle = 0 },
		"baseline":        func(c *Config) { c.GravityBaseline = []float64{0, -1} },
		"restitution":     func(c *Config) { c.Plate.Restitution = 2 },
		"fixed step":      func(c *Config) { c.Plate.FixedStep = 0 },
		"dice position":   func(c *Config) { c.Dice[0].Position = nil },
		"dice mass":       func(c *Config) { c.Dice[1].Mass = 0 },
		"mover direction": func(c *Config) { c.Movers[0].Direction = []float64{1} },
		"source":          func(c *Config) { c.Sensor.Source = "bluetooth" },
		"trace path":      func(c *Config) { c.Sensor.Source = SourceReplay },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.FrameRate = -1
	cfg.MaxStepAngle = -1
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frame_rate")
	assert.Contains(t, err.Error(), "max_step_angle")
}

func TestEncodeLoadRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Default().Encode(&buf))
	assert.Contains(t, buf.String(), "max_step_angle: 0.03")
	assert.Contains(t, buf.String(), "sample_interval: 20ms")

	path := filepath.Join(t.TempDir(), "tiltbox.yaml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestExampleConfigLoads(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "examples", "tiltbox.yaml"))
	require.NoError(t, err)
	assert.Equal(t, SourceReplay, cfg.Sensor.Source)
	assert.Equal(t, 4*time.Millisecond, cfg.Plate.FixedStep)
	require.Len(t, cfg.Dice, 3)
	assert.Equal(t, "heavy", cfg.Dice[2].Name)
}
