package world

import "errors"

var (
	ErrNegativeStep  = errors.New("world: negative step")
	ErrBodyExists    = errors.New("world: body name taken")
	ErrInvalidBody   = errors.New("world: invalid body")
	ErrNotKinematic  = errors.New("world: body is not kinematic")
	ErrInvalidConfig = errors.New("world: invalid config")
)
