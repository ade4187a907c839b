package movement

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/zeusync/tiltbox/internal/core/systems/physics"
)

// Movable is an entity that can be driven.
type Movable interface {
	physics.Positioned
	ApplyAcceleration(dir mgl64.Vec3)
	Tick() error
}

var (
	_ physics.Positioned = (*Entity)(nil)
	_ Movable            = (*Entity)(nil)
)

// Entity is a body handle with an optional movement component.
type Entity struct {
	id    uuid.UUID
	name  string
	body  physics.Displacer
	mover *Component
}

// NewEntity wraps body. mover may be nil for entities that never move on their
// own.
func NewEntity(name string, body physics.Displacer, mover *Component) *Entity {
	return &Entity{id: uuid.New(), name: name, body: body, mover: mover}
}

func (e *Entity) ID() uuid.UUID        { return e.id }
func (e *Entity) Name() string         { return e.name }
func (e *Entity) Position() mgl64.Vec3 { return e.body.Position() }
func (e *Entity) Mover() *Component    { return e.mover }
func (e *Entity) CanMove() bool        { return e.mover != nil }

func (e *Entity) ApplyAcceleration(dir mgl64.Vec3) {
	if e.mover != nil {
		e.mover.ApplyAcceleration(dir)
	}
}

// Tick integrates one frame of movement. It does nothing without a mover.
func (e *Entity) Tick() error {
	if e.mover == nil {
		return nil
	}
	return e.mover.Tick(e.body)
}
