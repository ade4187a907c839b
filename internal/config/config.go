// Package config holds the tiltbox settings file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/tiltbox/internal/core/observability/log"
)

var ErrInvalidConfig = errors.New("invalid config")

// Sensor sources.
const (
	SourceSynthetic = "synthetic"
	SourceReplay    = "replay"
	SourceNone      = "none"
)

type Config struct {
	LogLevel string `yaml:"log_level"`
	// FrameRate is frames per second of the frame loop.
	FrameRate int `yaml:"frame_rate"`
	// MaxFrames stops the run after that many frames. Zero runs until
	// interrupted.
	MaxFrames       int       `yaml:"max_frames"`
	MaxStepAngle    float64   `yaml:"max_step_angle"`
	GravityBaseline []float64 `yaml:"gravity_baseline,flow"`
	// TelemetryEvery logs a snapshot every n frames. Zero disables it.
	TelemetryEvery int `yaml:"telemetry_every"`

	Plate  PlateConfig   `yaml:"plate"`
	Dice   []DiceConfig  `yaml:"dice"`
	Movers []MoverConfig `yaml:"movers"`
	Sensor SensorConfig  `yaml:"sensor"`
}

type PlateConfig struct {
	HalfExtent  float64       `yaml:"half_extent"`
	WallHeight  float64       `yaml:"wall_height"`
	Friction    float64       `yaml:"friction"`
	Restitution float64       `yaml:"restitution"`
	FixedStep   time.Duration `yaml:"fixed_step"`
}

type DiceConfig struct {
	// Name may be empty; dice are then numbered.
	Name     string    `yaml:"name,omitempty"`
	Position []float64 `yaml:"position,flow"`
	Size     float64   `yaml:"size"`
	Mass     float64   `yaml:"mass"`
}

type MoverConfig struct {
	Name            string    `yaml:"name,omitempty"`
	Position        []float64 `yaml:"position,flow"`
	Size            float64   `yaml:"size"`
	MaxSpeed        float64   `yaml:"max_speed"`
	MaxAcceleration float64   `yaml:"max_acceleration"`
	Direction       []float64 `yaml:"direction,flow"`
}

type SensorConfig struct {
	Source           string        `yaml:"source"`
	TracePath        string        `yaml:"trace_path,omitempty"`
	SampleInterval   time.Duration `yaml:"sample_interval"`
	AcceptZeroMotion bool          `yaml:"accept_zero_motion"`
	// Amplitude is the synthetic source's peak tilt in degrees.
	Amplitude   float64 `yaml:"amplitude"`
	GlitchEvery int     `yaml:"glitch_every"`
}

// Default is a level plate with four dice in the corners and one mover.
func Default() *Config {
	return &Config{
		LogLevel:        "info",
		FrameRate:       60,
		MaxStepAngle:    0.03,
		GravityBaseline: []float64{0, -1, 0},
		TelemetryEvery:  60,
		Plate: PlateConfig{
			HalfExtent:  0.5,
			WallHeight:  0.6,
			Friction:    0.02,
			Restitution: 0.9,
			FixedStep:   time.Second / 120,
		},
		Dice: []DiceConfig{
			{Position: []float64{0.2, 0.05, 0.2}, Size: 0.1, Mass: 1},
			{Position: []float64{-0.2, 0.05, 0.2}, Size: 0.1, Mass: 1},
			{Position: []float64{-0.2, 0.05, -0.2}, Size: 0.1, Mass: 1},
			{Position: []float64{0.2, 0.05, -0.2}, Size: 0.1, Mass: 1},
		},
		Movers: []MoverConfig{
			{
				Name:            "rover",
				Position:        []float64{0, 0.05, 0},
				Size:            0.08,
				MaxSpeed:        0.01,
				MaxAcceleration: 0.001,
				Direction:       []float64{1, 0, 0},
			},
		},
		Sensor: SensorConfig{
			Source:         SourceSynthetic,
			SampleInterval: 20 * time.Millisecond,
			Amplitude:      15,
			GlitchEvery:    0,
		},
	}
}

// Load reads a YAML file on top of the defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads YAML on top of the defaults and validates the result. Lists in
// the input replace the default lists.
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := yaml.NewDecoder(r).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Encode writes cfg as YAML.
func (c *Config) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}

func (c *Config) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		fail("log_level: %v", err)
	}
	if c.FrameRate <= 0 {
		fail("frame_rate must be positive, got %d", c.FrameRate)
	}
	if c.MaxFrames < 0 {
		fail("max_frames must not be negative, got %d", c.MaxFrames)
	}
	if !(c.MaxStepAngle > 0) {
		fail("max_step_angle must be positive, got %v", c.MaxStepAngle)
	}
	if len(c.GravityBaseline) != 3 {
		fail("gravity_baseline needs 3 components, got %d", len(c.GravityBaseline))
	}
	if c.TelemetryEvery < 0 {
		fail("telemetry_every must not be negative, got %d", c.TelemetryEvery)
	}

	p := c.Plate
	if !(p.HalfExtent > 0) {
		fail("plate.half_extent must be positive, got %v", p.HalfExtent)
	}
	if p.Restitution < 0 || p.Restitution > 1 {
		fail("plate.restitution must be within [0, 1], got %v", p.Restitution)
	}
	if p.Friction < 0 || p.WallHeight < 0 {
		fail("plate friction and wall_height must not be negative")
	}
	if p.FixedStep <= 0 {
		fail("plate.fixed_step must be positive, got %s", p.FixedStep)
	}

	for i, d := range c.Dice {
		if len(d.Position) != 3 {
			fail("dice[%d].position needs 3 components", i)
		}
		if !(d.Mass > 0) || !(d.Size > 0) {
			fail("dice[%d] needs positive mass and size", i)
		}
	}
	for i, m := range c.Movers {
		if len(m.Position) != 3 || (len(m.Direction) != 0 && len(m.Direction) != 3) {
			fail("movers[%d] position and direction need 3 components", i)
		}
		if !(m.Size > 0) || m.MaxSpeed < 0 || m.MaxAcceleration < 0 {
			fail("movers[%d] needs positive size and non-negative limits", i)
		}
	}

	switch c.Sensor.Source {
	case SourceSynthetic, SourceNone:
	case SourceReplay:
		if c.Sensor.TracePath == "" {
			fail("sensor.trace_path is required for the replay source")
		}
	default:
		fail("sensor.source %q is not one of synthetic, replay, none", c.Sensor.Source)
	}
	if c.Sensor.SampleInterval < 0 {
		fail("sensor.sample_interval must not be negative")
	}

	return errors.Join(errs...)
}

// FrameDuration is the target time between frames.
func (c *Config) FrameDuration() time.Duration {
	return time.Second / time.Duration(c.FrameRate)
}

// Vec converts a validated 3 component list.
func Vec(v []float64) mgl64.Vec3 {
	var out mgl64.Vec3
	copy(out[:], v)
	return out
}
