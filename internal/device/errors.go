package device

import "errors"

// Domain errors for the device package.
//
//	if errors.Is(err, device.ErrDeviceNotFound) {
//	    // 404
//	}
var (
	// ErrDeviceNotFound is returned when a device does not exist or is not
	// owned by the caller.
	ErrDeviceNotFound = errors.New("device: not found")

	// ErrSerialExists is returned when a serial number is already registered.
	ErrSerialExists = errors.New("device: serial already registered")
)
