package project

import (
	"time"

	"github.com/wildtrace/wildtrace-api/internal/device"
	"github.com/wildtrace/wildtrace-api/internal/geo"
	"github.com/wildtrace/wildtrace-api/internal/query"
)

// Project groups devices deployed for a common purpose.
type Project struct {
	ID               int64           `json:"id"`
	Title            string          `json:"title"`
	ShortDescription *string         `json:"short_description"`
	LongDescription  *string         `json:"long_description"`
	Latitude         *float64        `json:"latitude"`
	Longitude        *float64        `json:"longitude"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Devices          []device.Device `json:"devices"`
}

// ListParams filters and pages a project listing.
type ListParams struct {
	Title *string

	Page   query.Page
	SortBy string
	Order  string
}

// CreateRequest is the body accepted when creating a project.
type CreateRequest struct {
	Title            string          `json:"title" validate:"required,max=255"`
	ShortDescription *string         `json:"short_description" validate:"omitempty,max=255"`
	LongDescription  *string         `json:"long_description" validate:"omitempty,max=20000"`
	Location         *geo.PointInput `json:"location"`
	DeviceIDs        []int64         `json:"deviceIds" validate:"omitempty,max=500,dive,gt=0"`
}

// UpdateRequest is the body accepted when updating a project. Nil fields
// keep their current value; a non-nil DeviceIDs replaces the assignment.
type UpdateRequest struct {
	Title            *string         `json:"title" validate:"omitempty,min=1,max=255"`
	ShortDescription *string         `json:"short_description" validate:"omitempty,max=255"`
	LongDescription  *string         `json:"long_description" validate:"omitempty,max=20000"`
	Location         *geo.PointInput `json:"location"`
	DeviceIDs        *[]int64        `json:"deviceIds" validate:"omitempty,max=500,dive,gt=0"`
}

// Sort allow-list for project listings.
var sortSpec = query.SortSpec{
	Columns: map[string]string{
		"id":        "p.id",
		"title":     "p.title",
		"createdAt": "p.created_at",
		"updatedAt": "p.updated_at",
	},
	Default: "createdAt",
}

func (p ListParams) where() query.Where {
	var w query.Where
	if p.Title != nil {
		w.And(`p.title LIKE ? ESCAPE '\'`, query.Contains(*p.Title))
	}
	return w
}
