package event

import (
	"time"

	"github.com/wildtrace/wildtrace-api/internal/geo"
	"github.com/wildtrace/wildtrace-api/internal/infrastructure/database"
	"github.com/wildtrace/wildtrace-api/internal/query"
)

// Event is one detection recorded by a device.
type Event struct {
	ID         int64        `json:"id"`
	Time       time.Time    `json:"time"`
	Type       *string      `json:"type"`
	DeviceID   int64        `json:"deviceId"`
	DeviceName *string      `json:"deviceName"`
	Location   *geo.GeoJSON `json:"location"`
	VerifiedBy *string      `json:"verifiedBy"`
	VerifiedAt *time.Time   `json:"verifiedAt"`
	UpdatedBy  *string      `json:"updatedBy"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`

	Regions    []Region     `json:"regions"`
	SensorData []SensorData `json:"sensorData"`
	Media      []Media      `json:"media"`
}

// Region is a bounding box within an event's image.
type Region struct {
	ID     int64   `json:"id"`
	W      float64 `json:"w"`
	H      float64 `json:"h"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Labels []Label `json:"labels"`
}

// Label classifies the contents of a region.
type Label struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	LatinName *string `json:"latinName"`
	Count     int     `json:"count"`
}

// SensorData is one sensor reading taken with an event. Name is the
// sensor's type name.
type SensorData struct {
	ID       int64   `json:"id"`
	SensorID int64   `json:"sensorId"`
	Value    float64 `json:"value"`
	Name     *string `json:"name"`
}

// Media references a stored file captured with an event.
type Media struct {
	ID     int64   `json:"id"`
	FileID string  `json:"fileId"`
	Source *string `json:"source"`
}

// ListParams filters and pages an event listing. Nil filters are ignored.
// DeviceID takes precedence over DeviceName when both are set.
type ListParams struct {
	DeviceID   *int64
	DeviceName *string
	OwnerID    *string

	// HasMedia true keeps events with at least one media row. False keeps
	// events without media that have at least one positive sensor reading.
	HasMedia *bool

	Start *time.Time
	End   *time.Time

	Page   query.Page
	SortBy string
	Order  string
}

// Sort allow-list for event listings.
var sortSpec = query.SortSpec{
	Columns: map[string]string{
		"time":      "e.time",
		"type":      "e.type",
		"deviceId":  "e.device_id",
		"createdAt": "e.created_at",
		"updatedAt": "e.updated_at",
	},
	Default: "time",
}

const (
	hasMediaCond      = "EXISTS (SELECT 1 FROM event_media em WHERE em.event_id = e.id)"
	noMediaCond       = "NOT EXISTS (SELECT 1 FROM event_media em WHERE em.event_id = e.id)"
	positiveValueCond = "EXISTS (SELECT 1 FROM sensor_data sd WHERE sd.event_id = e.id AND sd.value > 0)"
)

// where maps the filters onto predicate fragments.
func (p ListParams) where() query.Where {
	var w query.Where
	switch {
	case p.DeviceID != nil:
		w.And("e.device_id = ?", *p.DeviceID)
	case p.DeviceName != nil:
		w.And("d.name = ?", *p.DeviceName)
	}
	if p.OwnerID != nil {
		w.And("e.device_id IN (SELECT device_id FROM device_owners WHERE user_id = ?)", *p.OwnerID)
	}
	if p.HasMedia != nil {
		if *p.HasMedia {
			w.And(hasMediaCond)
		} else {
			w.And(noMediaCond).And(positiveValueCond)
		}
	}
	if p.Start != nil {
		w.And("e.time >= ?", database.FormatTime(ceilSecond(*p.Start)))
	}
	if p.End != nil {
		w.And("e.time <= ?", database.FormatTime(*p.End))
	}
	return w
}

// ceilSecond rounds t up to a whole second. Event times are stored at
// second precision, so a fractional lower bound must not match the second
// it falls in. Upper bounds need no adjustment since formatting truncates.
func ceilSecond(t time.Time) time.Time {
	whole := t.Truncate(time.Second)
	if whole.Before(t) {
		return whole.Add(time.Second)
	}
	return whole
}
