package domain

import "errors"

// Errors returned by the public tracker API. Check with errors.Is.
var (
	// ErrAlreadyRunning is returned when Start() is called on a running tracker.
	ErrAlreadyRunning = errors.New("headtrack: already running")

	// ErrNotRunning is returned when Stop() is called on a stopped tracker.
	ErrNotRunning = errors.New("headtrack: not running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("headtrack: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("headtrack: invalid configuration")
)
