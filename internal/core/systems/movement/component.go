// Package movement integrates speed and acceleration for free-roaming bodies.
// Speeds are displacements per frame.
package movement

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/tiltbox/internal/core/systems/physics"
)

// RestSpeed is the speed below which a body is not moved at all.
const RestSpeed = 0.001

// Component is the movement state of one body. Position lives in the body.
type Component struct {
	MaxSpeed        float64
	MaxAcceleration float64

	speed        mgl64.Vec3
	acceleration mgl64.Vec3
}

func NewComponent(maxSpeed, maxAcceleration float64) *Component {
	return &Component{MaxSpeed: maxSpeed, MaxAcceleration: maxAcceleration}
}

func (c *Component) Speed() mgl64.Vec3        { return c.speed }
func (c *Component) Acceleration() mgl64.Vec3 { return c.acceleration }

// ApplyAcceleration sets the acceleration to MaxAcceleration along dir. A zero
// direction stops accelerating.
func (c *Component) ApplyAcceleration(dir mgl64.Vec3) {
	c.acceleration = physics.NormalizeOrZero(dir).Mul(c.MaxAcceleration)
}

// Tick advances one frame: accelerate unless that would exceed MaxSpeed, apply
// friction, then move the body if it is not at rest.
func (c *Component) Tick(body physics.Displacer) error {
	if c.speed.Len()+c.acceleration.Len() <= c.MaxSpeed {
		c.speed = c.speed.Add(c.acceleration)
	}
	c.speed = c.speed.Add(c.friction())

	if c.speed.Len() > RestSpeed {
		if err := body.MoveWithCollisions(c.speed); err != nil {
			return fmt.Errorf("move: %w", err)
		}
	}
	return nil
}

// friction opposes the current speed with half the max acceleration, never
// more than the speed on any axis.
func (c *Component) friction() mgl64.Vec3 {
	if c.speed.Len() == 0 {
		return mgl64.Vec3{}
	}
	f := physics.NormalizeOrZero(c.speed).Mul(-c.MaxAcceleration / 2)
	for i := range f {
		if math.Abs(f[i]) > math.Abs(c.speed[i]) {
			f[i] = -c.speed[i]
		}
	}
	return f
}
