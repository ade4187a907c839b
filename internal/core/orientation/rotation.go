// Package orientation holds the three-axis angular value used to pose the plate
// and the sub-stepping that keeps large pose changes numerically gentle.
package orientation

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// FullTurn is one revolution in radians.
const FullTurn = 2 * math.Pi

// Rotation is an immutable triple of angles in radians. Alpha is yaw, Beta is
// pitch and Gamma is roll. Every method returns a new value.
type Rotation struct {
	Alpha float64
	Beta  float64
	Gamma float64
}

func New(alpha, beta, gamma float64) Rotation {
	return Rotation{Alpha: alpha, Beta: beta, Gamma: gamma}
}

func (r Rotation) operate(o Rotation, fn func(a, b float64) float64) Rotation {
	return Rotation{
		Alpha: fn(r.Alpha, o.Alpha),
		Beta:  fn(r.Beta, o.Beta),
		Gamma: fn(r.Gamma, o.Gamma),
	}
}

func (r Rotation) operateScalar(fn func(a float64) float64) Rotation {
	return Rotation{Alpha: fn(r.Alpha), Beta: fn(r.Beta), Gamma: fn(r.Gamma)}
}

func (r Rotation) Add(o Rotation) Rotation {
	return r.operate(o, func(a, b float64) float64 { return a + b })
}

func (r Rotation) Sub(o Rotation) Rotation {
	return r.operate(o, func(a, b float64) float64 { return a - b })
}

func (r Rotation) Mul(o Rotation) Rotation {
	return r.operate(o, func(a, b float64) float64 { return a * b })
}

// Div divides per axis. A zero axis in o is the caller's problem.
func (r Rotation) Div(o Rotation) Rotation {
	return r.operate(o, func(a, b float64) float64 { return a / b })
}

func (r Rotation) AddScalar(v float64) Rotation {
	return r.operateScalar(func(a float64) float64 { return a + v })
}

func (r Rotation) SubScalar(v float64) Rotation {
	return r.operateScalar(func(a float64) float64 { return a - v })
}

func (r Rotation) MulScalar(v float64) Rotation {
	return r.operateScalar(func(a float64) float64 { return a * v })
}

// DivScalar divides every axis by v. v must not be zero.
func (r Rotation) DivScalar(v float64) Rotation {
	return r.operateScalar(func(a float64) float64 { return a / v })
}

// Normalize wraps every axis into [0, 2π).
func (r Rotation) Normalize() Rotation {
	return r.operateScalar(Wrap)
}

// MagnitudeSum is |alpha| + |beta| + |gamma|. It is a step-count heuristic, not a
// metric on rotations.
func (r Rotation) MagnitudeSum() float64 {
	return math.Abs(r.Alpha) + math.Abs(r.Beta) + math.Abs(r.Gamma)
}

// Distance returns the signed per-axis delta from r to o, taking the short way
// around the circle. Beta and gamma are treated as full circles too even though
// device pitch and roll do not wrap that way.
func (r Rotation) Distance(o Rotation) Rotation {
	return r.operate(o, shortestDelta)
}

// Quat composes the rotation as yaw (Y) * pitch (X) * roll (Z).
func (r Rotation) Quat() mgl64.Quat {
	yaw := mgl64.QuatRotate(r.Alpha, mgl64.Vec3{0, 1, 0})
	pitch := mgl64.QuatRotate(r.Beta, mgl64.Vec3{1, 0, 0})
	roll := mgl64.QuatRotate(r.Gamma, mgl64.Vec3{0, 0, 1})
	return yaw.Mul(pitch).Mul(roll)
}

// Floats returns the axes in alpha, beta, gamma order.
func (r Rotation) Floats() []float64 {
	return []float64{r.Alpha, r.Beta, r.Gamma}
}

func (r Rotation) String() string {
	return fmt.Sprintf("(%.4f, %.4f, %.4f)", r.Alpha, r.Beta, r.Gamma)
}

// Wrap brings a single angle into [0, 2π).
func Wrap(a float64) float64 {
	w := math.Mod(a, FullTurn)
	if w < 0 {
		w += FullTurn
	}
	// -tiny + 2π rounds to exactly 2π, and whole negative turns leave -0
	if w >= FullTurn || w == 0 {
		w = 0
	}
	return w
}

func shortestDelta(a, b float64) float64 {
	if a-b > math.Pi {
		return FullTurn - a + b
	}
	if b-a > math.Pi && a <= b {
		return b - FullTurn - a
	}
	return b - a
}
