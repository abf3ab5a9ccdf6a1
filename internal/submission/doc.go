// Package submission stores survey submissions and their sightings.
//
// A submission is the free-text form of a field record: date, time and
// location are stored as entered. Ownership rules match field
// observations.
package submission
