package sensor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/tiltbox/internal/core/orientation"
)

// ConvertOrientation maps device angles in degrees onto the plate's reference
// frame. Alpha is shifted by half a turn, wrapped, mirrored and wrapped again so
// it lands in [0, 2π). Beta and gamma only get a full turn added when negative.
func ConvertOrientation(alpha, beta, gamma float64) orientation.Rotation {
	a := radians(alpha)
	b := radians(beta)
	g := radians(gamma)

	a -= math.Pi
	if a < 0 {
		a += orientation.FullTurn
	}
	a = orientation.Wrap(orientation.FullTurn - a)

	if b < 0 {
		b += orientation.FullTurn
	}
	if g < 0 {
		g += orientation.FullTurn
	}

	return orientation.New(a, b, g)
}

// ConvertMotion remaps device acceleration (x, y, z) to world (-x, z, -y).
//
// A zero axis counts as missing, same as an absent one. This mirrors how the
// reading was historically filtered and decides which frames update gravity, so
// it is kept; use ConvertMotionLenient to accept zeros.
func ConvertMotion(raw MotionSample) (mgl64.Vec3, bool) {
	return convertMotion(raw, false)
}

// ConvertMotionLenient is ConvertMotion that only rejects absent or NaN axes.
func ConvertMotionLenient(raw MotionSample) (mgl64.Vec3, bool) {
	return convertMotion(raw, true)
}

func convertMotion(raw MotionSample, acceptZero bool) (mgl64.Vec3, bool) {
	if !usable(raw.X, acceptZero) || !usable(raw.Y, acceptZero) || !usable(raw.Z, acceptZero) {
		return mgl64.Vec3{}, false
	}
	return mgl64.Vec3{-*raw.X, *raw.Z, -*raw.Y}, true
}

func usable(v *float64, acceptZero bool) bool {
	if v == nil || math.IsNaN(*v) {
		return false
	}
	return acceptZero || *v != 0
}

func radians(deg float64) float64 {
	return deg / 180 * math.Pi
}
