// Package sensor turns raw device orientation and acceleration samples into
// simulation values and keeps the latest of each for the frame loop.
package sensor

import "time"

// Event types published on the bus by sources.
const (
	EventOrientation = "sensor.orientation"
	EventMotion      = "sensor.motion"
)

// OrientationSample is one device orientation reading in degrees. Any axis may be
// missing.
type OrientationSample struct {
	Alpha *float64 `yaml:"alpha,omitempty" json:"alpha,omitempty"`
	Beta  *float64 `yaml:"beta,omitempty" json:"beta,omitempty"`
	Gamma *float64 `yaml:"gamma,omitempty" json:"gamma,omitempty"`
}

// Complete reports whether all three angles are present.
func (s OrientationSample) Complete() bool {
	return s.Alpha != nil && s.Beta != nil && s.Gamma != nil
}

// MotionSample is one linear acceleration reading in the device frame. Any axis
// may be missing.
type MotionSample struct {
	X *float64 `yaml:"x,omitempty" json:"x,omitempty"`
	Y *float64 `yaml:"y,omitempty" json:"y,omitempty"`
	Z *float64 `yaml:"z,omitempty" json:"z,omitempty"`
}

// Reading is what a Source yields per poll: either or both samples, plus an
// optional delay before the next poll.
type Reading struct {
	Orientation *OrientationSample `yaml:"orientation,omitempty"`
	Motion      *MotionSample      `yaml:"motion,omitempty"`
	Wait        time.Duration      `yaml:"wait,omitempty"`
}

// Float returns a pointer to v, for building samples.
func Float(v float64) *float64 {
	return &v
}

// Orientation builds a complete orientation sample.
func Orientation(alpha, beta, gamma float64) *OrientationSample {
	return &OrientationSample{Alpha: Float(alpha), Beta: Float(beta), Gamma: Float(gamma)}
}

// Motion builds a complete motion sample.
func Motion(x, y, z float64) *MotionSample {
	return &MotionSample{X: Float(x), Y: Float(y), Z: Float(z)}
}
