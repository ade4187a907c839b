package sensor

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Trace is a recorded sequence of readings.
//
//	interval: 16ms
//	loop: false
//	samples:
//	  - orientation: {alpha: 10, beta: 5, gamma: 1}
//	    motion: {x: 0.1, y: 0.2, z: 0.3}
//	  - orientation: {alpha: 12}
//	    wait: 40ms
type Trace struct {
	Interval time.Duration `yaml:"interval"`
	Loop     bool          `yaml:"loop"`
	Samples  []Reading     `yaml:"samples"`
}

// DecodeTrace reads a YAML trace.
func DecodeTrace(r io.Reader) (*Trace, error) {
	var t Trace
	if err := yaml.NewDecoder(r).Decode(&t); err != nil {
		return nil, fmt.Errorf("decode trace: %w", err)
	}
	if len(t.Samples) == 0 {
		return nil, ErrEmptyTrace
	}
	return &t, nil
}

// LoadTrace reads a YAML trace from path.
func LoadTrace(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trace: %w", err)
	}
	defer f.Close()
	return DecodeTrace(f)
}

// MinLoopDelay paces a looping trace that carries no delays at all.
const MinLoopDelay = time.Millisecond

// Replay plays a Trace back, waiting each sample's own delay or the trace
// interval before yielding it.
type Replay struct {
	trace *Trace
	next  int
	// spins is set for a looping trace with no interval and no waits.
	spins bool
}

func NewReplay(t *Trace) *Replay {
	spins := t.Loop && t.Interval <= 0
	for _, s := range t.Samples {
		if s.Wait > 0 {
			spins = false
			break
		}
	}
	return &Replay{trace: t, spins: spins}
}

func (r *Replay) Name() string { return "replay" }

func (r *Replay) Next(ctx context.Context) (Reading, error) {
	if r.next >= len(r.trace.Samples) {
		if !r.trace.Loop || len(r.trace.Samples) == 0 {
			return Reading{}, io.EOF
		}
		r.next = 0
	}
	sample := r.trace.Samples[r.next]

	delay := sample.Wait
	if delay == 0 {
		delay = r.trace.Interval
	}
	if r.spins {
		delay = MinLoopDelay
	}
	if err := sleep(ctx, delay); err != nil {
		return Reading{}, err
	}
	r.next++
	return sample, nil
}
