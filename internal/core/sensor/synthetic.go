package sensor

import (
	"context"
	"io"
	"math"
	"time"
)

// SyntheticConfig shapes the generated wobble.
type SyntheticConfig struct {
	Interval time.Duration
	// Amplitude is the peak tilt in degrees.
	Amplitude float64
	// GlitchEvery flips the heading by half a turn every n readings. Zero disables.
	GlitchEvery int
	// Limit stops the source after n readings. Zero means endless.
	Limit int
}

// Synthetic produces a smooth, deterministic tilt pattern plus a gentle
// acceleration, as a stand-in for real hardware.
type Synthetic struct {
	cfg     SyntheticConfig
	elapsed time.Duration
	count   int
}

func NewSynthetic(cfg SyntheticConfig) *Synthetic {
	if cfg.Interval <= 0 {
		cfg.Interval = 20 * time.Millisecond
	}
	return &Synthetic{cfg: cfg}
}

func (s *Synthetic) Name() string { return "synthetic" }

func (s *Synthetic) Next(ctx context.Context) (Reading, error) {
	if s.cfg.Limit > 0 && s.count >= s.cfg.Limit {
		return Reading{}, io.EOF
	}
	if err := sleep(ctx, s.cfg.Interval); err != nil {
		return Reading{}, err
	}
	r := s.at(s.elapsed, s.count)
	s.elapsed += s.cfg.Interval
	s.count++
	return r, nil
}

// at is the reading for elapsed time t and sequence number n.
func (s *Synthetic) at(t time.Duration, n int) Reading {
	sec := t.Seconds()
	amp := s.cfg.Amplitude

	alpha := 180 + amp*math.Sin(sec*0.25)
	if s.cfg.GlitchEvery > 0 && n > 0 && (n/s.cfg.GlitchEvery)%2 == 1 {
		alpha += 180
	}
	alpha = math.Mod(alpha, 360)
	beta := amp * math.Sin(sec)
	gamma := amp * 0.7 * math.Cos(sec*0.7)

	return Reading{
		Orientation: Orientation(alpha, beta, gamma),
		Motion:      Motion(0.05*math.Sin(sec*1.3), 0.05*math.Cos(sec*1.1), 0.02*math.Sin(sec*0.9)+0.01),
	}
}
