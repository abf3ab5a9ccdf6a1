package submission

import (
	"time"

	"github.com/wildtrace/wildtrace-api/internal/query"
	"github.com/wildtrace/wildtrace-api/internal/sighting"
)

// Submission is a survey record entered by a user.
type Submission struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Type        string    `json:"type"`
	Date        string    `json:"date"`
	Time        *string   `json:"time"`
	Location    *string   `json:"location"`
	Weather     *string   `json:"weather"`
	Temperature *int      `json:"temperature"`
	Wind        *string   `json:"wind"`
	Season      *string   `json:"season"`
	Consent     bool      `json:"consent"`
	CreatedAt   time.Time `json:"created_at"`
}

// Sighting is a sighting recorded under a submission.
type Sighting struct {
	sighting.Record
	SubmissionID string `json:"submission_id"`
}

// Detail is a submission together with its sightings.
type Detail struct {
	Submission
	Sightings []Sighting `json:"sightings"`
}

// CreateRequest is the body accepted when creating a submission.
type CreateRequest struct {
	Type        string           `json:"type" validate:"required,oneof=transect fit"`
	Date        string           `json:"date" validate:"required,isodate"`
	Time        *string          `json:"time" validate:"omitempty,clocktime"`
	Location    *string          `json:"location" validate:"omitempty,max=500"`
	Weather     *string          `json:"weather" validate:"omitempty,max=255"`
	Temperature *int             `json:"temperature" validate:"omitempty,gte=-90,lte=60"`
	Wind        *string          `json:"wind" validate:"omitempty,max=64"`
	Season      *string          `json:"season" validate:"omitempty,max=64"`
	Consent     bool             `json:"consent"`
	Sightings   []sighting.Input `json:"sightings" validate:"omitempty,max=500,dive"`
}

// ListParams pages one user's submissions.
type ListParams struct {
	UserID string

	Page   query.Page
	SortBy string
	Order  string
}

// Sort allow-list for submission listings.
var sortSpec = query.SortSpec{
	Columns: map[string]string{
		"date":       "s.date",
		"created_at": "s.created_at",
		"type":       "s.type",
	},
	Default: "created_at",
}

var sightings = sighting.Table{Name: "submission_sightings", ParentColumn: "submission_id"}

func (p ListParams) where() query.Where {
	var w query.Where
	w.And("s.user_id = ?", p.UserID)
	return w
}
