package observation

import "errors"

// Domain errors for the observation package.
var (
	// ErrObservationNotFound is returned when an observation does not exist
	// or is not owned by the caller.
	ErrObservationNotFound = errors.New("observation: not found")

	// ErrObservationExists is returned when a client-chosen id is taken.
	ErrObservationExists = errors.New("observation: id already exists")
)
