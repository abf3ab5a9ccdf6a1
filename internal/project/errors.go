package project

import "errors"

// Domain errors for the project package.
var (
	// ErrProjectNotFound is returned when a project does not exist.
	ErrProjectNotFound = errors.New("project: not found")

	// ErrUnknownDevice is returned when deviceIds names a device that does
	// not exist.
	ErrUnknownDevice = errors.New("project: unknown device")
)
