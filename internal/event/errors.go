package event

import "errors"

// Domain errors for the event package.
var (
	// ErrEventNotFound is returned when an event does not exist or, for
	// owner-scoped operations, belongs to a device the caller does not own.
	ErrEventNotFound = errors.New("event: not found")
)
