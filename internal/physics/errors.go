package physics

import "errors"

var (
	ErrCapacity        = errors.New("physics: capacity exhausted")
	ErrInvalidHandle   = errors.New("physics: invalid handle")
	ErrInvalidShape    = errors.New("physics: invalid shape")
	ErrInvalidConfig   = errors.New("physics: invalid config")
	ErrInvalidTopology = errors.New("physics: invalid topology")
)
