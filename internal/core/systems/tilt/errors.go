package tilt

import "errors"

var (
	ErrInvalidStep         = errors.New("tilt: max step angle must be positive")
	ErrMissingCollaborator = errors.New("tilt: missing physics collaborator")
	ErrNoDevice            = errors.New("tilt: frame has no device")
)
