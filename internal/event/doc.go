// Package event reads and maintains detection events recorded by devices.
//
// Events arrive through an external ingest path. This package lists and
// fetches them with their regions (and region labels), sensor readings and
// media attached, and lets a device owner delete an event or any
// authenticated user verify it.
package event
