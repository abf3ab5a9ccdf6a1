// Package observation stores citizen-science field observations and their
// sightings.
//
// Observations are keyed by UUID and belong to the user who created them.
// Only that user may delete one or add sightings to it; for anyone else the
// observation behaves as if it did not exist.
package observation
