package orientation

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotationArithmetic(t *testing.T) {
	a := New(1, 2, 3)
	b := New(4, 5, 6)

	assert.Equal(t, New(5, 7, 9), a.Add(b))
	assert.Equal(t, New(-3, -3, -3), a.Sub(b))
	assert.Equal(t, New(4, 10, 18), a.Mul(b))
	assert.Equal(t, New(0.25, 0.4, 0.5), a.Div(b))

	assert.Equal(t, New(2, 3, 4), a.AddScalar(1))
	assert.Equal(t, New(0, 1, 2), a.SubScalar(1))
	assert.Equal(t, New(2, 4, 6), a.MulScalar(2))
	assert.Equal(t, New(0.5, 1, 1.5), a.DivScalar(2))

	// receiver untouched
	assert.Equal(t, New(1, 2, 3), a)
}

func TestNormalizeRangeAndIdempotence(t *testing.T) {
	values := []float64{
		0, 1, math.Pi, FullTurn, FullTurn + 0.5, 3 * FullTurn,
		-0.1, -math.Pi, -FullTurn, -7, -100, -1e-18, 1e-18, 123.456,
	}
	for _, alpha := range values {
		for _, beta := range values[:5] {
			r := New(alpha, beta, -alpha).Normalize()
			for _, axis := range r.Floats() {
				assert.GreaterOrEqual(t, axis, 0.0, "input %v", alpha)
				assert.Less(t, axis, FullTurn, "input %v", alpha)
			}
			assert.Equal(t, r, r.Normalize(), "normalize must be idempotent for %v", alpha)
		}
	}
}

func TestNormalizeMatchesShiftThenMod(t *testing.T) {
	// for inputs in [-2π, ∞) wrapping is ((a < 0) ? a + 2π : a) mod 2π
	for _, a := range []float64{-6, -3, -0.5, 0.5, 4, 7, 20} {
		shifted := a
		if shifted < 0 {
			shifted += FullTurn
		}
		assert.InDelta(t, math.Mod(shifted, FullTurn), Wrap(a), 1e-12, "a=%v", a)
	}
}

func TestWrapWholeTurnsToPositiveZero(t *testing.T) {
	for _, a := range []float64{math.Copysign(0, -1), -FullTurn, -2 * FullTurn, FullTurn} {
		w := Wrap(a)
		assert.Zero(t, w, "a=%v", a)
		assert.False(t, math.Signbit(w), "a=%v wrapped to -0", a)
	}
	assert.Equal(t, "(0.0000, 0.0000, 0.0000)", New(-FullTurn, -FullTurn, -FullTurn).Normalize().String())
}

func TestMagnitudeSum(t *testing.T) {
	assert.Equal(t, 6.0, New(-1, 2, -3).MagnitudeSum())
	assert.Equal(t, 0.0, Rotation{}.MagnitudeSum())
}

func TestDistanceWraparound(t *testing.T) {
	t.Run("backward across zero", func(t *testing.T) {
		d := New(0.1, 0, 0).Distance(New(6.2, 0, 0))
		assert.InDelta(t, 6.2-FullTurn-0.1, d.Alpha, 1e-12)
		assert.Less(t, d.Alpha, 0.0)
		assert.Greater(t, d.Alpha, -0.2)
	})

	t.Run("forward across zero", func(t *testing.T) {
		d := New(6.2, 0, 0).Distance(New(0.1, 0, 0))
		assert.InDelta(t, FullTurn-6.2+0.1, d.Alpha, 1e-12)
		assert.Greater(t, d.Alpha, 0.0)
	})

	t.Run("plain delta", func(t *testing.T) {
		d := New(1, 2, 3).Distance(New(1.5, 1, 3))
		assert.Equal(t, New(0.5, -1, 0), d)
	})

	t.Run("every axis wraps the same way", func(t *testing.T) {
		d := New(0.1, 0.1, 6.2).Distance(New(6.2, 6.2, 0.1))
		assert.InDelta(t, d.Alpha, d.Beta, 1e-12)
		assert.InDelta(t, -d.Alpha, d.Gamma, 1e-12)
	})

	t.Run("never longer than half a turn", func(t *testing.T) {
		for a := 0.0; a < FullTurn; a += 0.37 {
			for b := 0.0; b < FullTurn; b += 0.41 {
				d := New(a, 0, 0).Distance(New(b, 0, 0))
				assert.LessOrEqual(t, math.Abs(d.Alpha), math.Pi+1e-12, "a=%v b=%v", a, b)
			}
		}
	})
}

func TestQuatYawPitchRoll(t *testing.T) {
	t.Run("identity", func(t *testing.T) {
		q := Rotation{}.Quat()
		assertVec(t, mgl64.Vec3{1, 2, 3}, q.Rotate(mgl64.Vec3{1, 2, 3}))
	})

	t.Run("yaw turns about Y", func(t *testing.T) {
		assertVec(t, mgl64.Vec3{0, 0, -1}, New(math.Pi/2, 0, 0).Quat().Rotate(mgl64.Vec3{1, 0, 0}))
	})

	t.Run("pitch turns about X", func(t *testing.T) {
		assertVec(t, mgl64.Vec3{0, 0, 1}, New(0, math.Pi/2, 0).Quat().Rotate(mgl64.Vec3{0, 1, 0}))
	})

	t.Run("roll turns about Z", func(t *testing.T) {
		assertVec(t, mgl64.Vec3{0, 1, 0}, New(0, 0, math.Pi/2).Quat().Rotate(mgl64.Vec3{1, 0, 0}))
	})

	t.Run("matches closed form", func(t *testing.T) {
		yaw, pitch, roll := 0.3, -0.7, 1.1
		sy, cy := math.Sincos(yaw / 2)
		sp, cp := math.Sincos(pitch / 2)
		sr, cr := math.Sincos(roll / 2)
		want := mgl64.Quat{
			W: cy*cp*cr + sy*sp*sr,
			V: mgl64.Vec3{
				cy*sp*cr + sy*cp*sr,
				sy*cp*cr - cy*sp*sr,
				cy*cp*sr - sy*sp*cr,
			},
		}
		got := New(yaw, pitch, roll).Quat()
		require.InDelta(t, want.W, got.W, 1e-12)
		for i := 0; i < 3; i++ {
			assert.InDelta(t, want.V[i], got.V[i], 1e-12)
		}
	})
}

func assertVec(t *testing.T, want, got mgl64.Vec3) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-12, "axis %d of %v", i, got)
	}
}
