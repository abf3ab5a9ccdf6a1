package observation

import (
	"time"

	"github.com/wildtrace/wildtrace-api/internal/geo"
	"github.com/wildtrace/wildtrace-api/internal/query"
	"github.com/wildtrace/wildtrace-api/internal/sighting"
)

// FieldObservation is one survey walk or timed count made by a user.
type FieldObservation struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Type        string    `json:"type"`
	Time        time.Time `json:"time"`
	Location    geo.Point `json:"location"`
	Weather     *string   `json:"weather"`
	Temperature *int      `json:"temperature"`
	Wind        *string   `json:"wind"`
	Season      *string   `json:"season"`
	Consent     bool      `json:"consent"`
	CreatedAt   time.Time `json:"created_at"`
}

// Sighting is a sighting recorded under a field observation.
type Sighting struct {
	sighting.Record
	FieldObservationID string `json:"fieldObservationId"`
}

// Detail is an observation together with its sightings.
type Detail struct {
	FieldObservation
	Sightings []Sighting `json:"sightings"`
}

// CreateRequest is the body accepted when recording an observation.
// ID is optional; a random UUID is assigned when it is absent.
type CreateRequest struct {
	ID          *string          `json:"id" validate:"omitempty,uuid"`
	Type        string           `json:"type" validate:"required,oneof=transect fit"`
	Time        *time.Time       `json:"time" validate:"required"`
	Location    *geo.PointInput  `json:"location" validate:"required"`
	Weather     *string          `json:"weather" validate:"omitempty,max=255"`
	Temperature *int             `json:"temperature" validate:"omitempty,gte=-90,lte=60"`
	Wind        *string          `json:"wind" validate:"omitempty,oneof=calm light moderate strong"`
	Season      *string          `json:"season" validate:"omitempty,oneof=Spring Summer Autumn Winter"`
	Consent     bool             `json:"consent"`
	Sightings   []sighting.Input `json:"sightings" validate:"omitempty,max=500,dive"`
}

// ListParams pages one user's observations.
type ListParams struct {
	UserID string

	Page   query.Page
	SortBy string
	Order  string
}

// Sort allow-list for observation listings.
var sortSpec = query.SortSpec{
	Columns: map[string]string{
		"time":       "o.time",
		"created_at": "o.created_at",
		"type":       "o.type",
	},
	Default: "created_at",
}

var sightings = sighting.Table{Name: "field_observation_sightings", ParentColumn: "observation_id"}

func (p ListParams) where() query.Where {
	var w query.Where
	w.And("o.user_id = ?", p.UserID)
	return w
}
