package domain

import "errors"

// Domain errors represent error conditions in the meetbot domain.
// These errors are returned by the controller and can be checked with errors.Is.
var (
	// ErrAlreadyRunning is returned when the event loop is started a second time.
	ErrAlreadyRunning = errors.New("meetbot: already running")

	// ErrInvalidTransition is returned when a lifecycle transition is not allowed
	// from the current state.
	ErrInvalidTransition = errors.New("meetbot: invalid lifecycle transition")

	// ErrTerminated is returned for any lifecycle operation after termination.
	ErrTerminated = errors.New("meetbot: terminated")

	// ErrNotConfigured is returned when the client is used before Configure succeeded.
	ErrNotConfigured = errors.New("meetbot: client not configured")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("meetbot: invalid configuration")
)
