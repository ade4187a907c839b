package sensor

import "errors"

var (
	ErrUnknownSource  = errors.New("sensor: unknown source kind")
	ErrEmptyTrace     = errors.New("sensor: trace has no samples")
	ErrInvalidPayload = errors.New("sensor: unexpected event payload")
)
