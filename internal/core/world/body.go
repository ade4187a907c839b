package world

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/zeusync/tiltbox/internal/core/systems/physics"
)

// Kind tells how a body is driven.
type Kind uint8

const (
	// KindDynamic bodies are moved by gravity and contacts.
	KindDynamic Kind = iota
	// KindKinematic bodies only move when told to.
	KindKinematic
)

func (k Kind) String() string {
	switch k {
	case KindDynamic:
		return "dynamic"
	case KindKinematic:
		return "kinematic"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

var (
	_ physics.Positioned = (*Body)(nil)
	_ physics.Displacer  = (*Body)(nil)
)

// Body is a cube resting on or above the plate. Coordinates are plate-local:
// y is the height above the plate surface, x and z span the plate.
type Body struct {
	world *World

	id   uuid.UUID
	name string
	kind Kind
	half float64
	mass float64

	pos  mgl64.Vec3
	vel  mgl64.Vec3
	lost bool
}

func (b *Body) ID() uuid.UUID     { return b.id }
func (b *Body) Name() string      { return b.name }
func (b *Body) Kind() Kind        { return b.kind }
func (b *Body) HalfSize() float64 { return b.half }
func (b *Body) Mass() float64     { return b.mass }

// Position is the plate-local centre of the body.
func (b *Body) Position() mgl64.Vec3 {
	b.world.mu.RLock()
	defer b.world.mu.RUnlock()
	return b.pos
}

// WorldPosition is Position expressed in world space. Dynamic bodies use the
// pose they were last resolved against.
func (b *Body) WorldPosition() mgl64.Vec3 {
	b.world.mu.RLock()
	defer b.world.mu.RUnlock()
	if b.kind == KindDynamic {
		return b.world.resolved.Rotate(b.pos)
	}
	return b.world.plate.Rotate(b.pos)
}

func (b *Body) Velocity() mgl64.Vec3 {
	b.world.mu.RLock()
	defer b.world.mu.RUnlock()
	return b.vel
}

// Lost reports whether the body fell off the plate.
func (b *Body) Lost() bool {
	b.world.mu.RLock()
	defer b.world.mu.RUnlock()
	return b.lost
}

// MoveWithCollisions displaces a kinematic body, stopping it at the walls and
// the plate surface.
func (b *Body) MoveWithCollisions(d mgl64.Vec3) error {
	if b.kind != KindKinematic {
		return fmt.Errorf("%w: %s", ErrNotKinematic, b.name)
	}
	b.world.mu.Lock()
	defer b.world.mu.Unlock()
	b.pos = b.pos.Add(d)
	b.world.resolve(b)
	return nil
}
