// Package device stores field devices, their owners and their sensors.
//
// A device is registered by an authenticated user, who becomes its owner
// through the device_owners link table. Only the owner may delete it; for
// anyone else the device behaves as if it did not exist.
package device
