// Package physics defines the contracts of the rigid-body engine the tilt bridge
// drives. The engine itself lives outside the core; internal/core/world provides
// a small reference one.
package physics

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// Stepper advances the simulation. A zero duration is a settle step: contacts
// and constraints react to pose changes without simulated time passing.
type Stepper interface {
	Advance(d time.Duration) error
}

// Orientable is a body whose orientation can be assigned directly.
type Orientable interface {
	SetOrientation(q mgl64.Quat) error
}

// GravityField owns the global gravity vector.
type GravityField interface {
	SetGravity(g mgl64.Vec3) error
	Gravity() mgl64.Vec3
}

// Positioned exposes a body position.
type Positioned interface {
	Position() mgl64.Vec3
}

// Displacer moves a body by a displacement, stopping at obstacles.
type Displacer interface {
	Positioned
	MoveWithCollisions(displacement mgl64.Vec3) error
}
