package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when a bill cannot be moved by the given trigger
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrInvalidState is returned when a bill carries an unknown status
	ErrInvalidState = errors.New("invalid state")
)
