package script

import "errors"

var (
	// ErrClosed is returned when running on a closed Engine.
	ErrClosed = errors.New("script engine is closed")

	// ErrInstructionLimit is returned when a script exceeds its call budget.
	ErrInstructionLimit = errors.New("script instruction limit exceeded")

	// ErrTimeout is returned when a script's context ends before it does.
	ErrTimeout = errors.New("script timed out")

	// ErrSyntax wraps Lua compile errors.
	ErrSyntax = errors.New("script syntax error")
)
