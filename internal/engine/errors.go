package engine

import "errors"

var (
	// ErrSessionNotActive is returned when input arrives for a session
	// that cannot accept it (paused, completed or abandoned).
	ErrSessionNotActive = errors.New("session is not active")

	// ErrInvalidStateTransition is returned for lifecycle operations that
	// are not allowed from the session's current state.
	ErrInvalidStateTransition = errors.New("invalid session state transition")
)
