package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Floats flattens a vector for logging.
func Floats(v mgl64.Vec3) []float64 {
	return []float64{v[0], v[1], v[2]}
}

// NormalizeOrZero returns the unit vector of v, or the zero vector when v has no
// length.
func NormalizeOrZero(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l == 0 || math.IsNaN(l) {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}

// Distance computes the Euclidean distance between two positions.
func Distance(a, b Positioned) float64 {
	return a.Position().Sub(b.Position()).Len()
}
