package device

import (
	"time"

	"github.com/wildtrace/wildtrace-api/internal/query"
)

// Device is a field-deployed sensing unit (camera trap, sensor node).
type Device struct {
	ID        int64      `json:"id"`
	TypeID    *int64     `json:"typeId"`
	Name      *string    `json:"name"`
	Serial    *string    `json:"serial"`
	Notes     *string    `json:"notes"`
	IP        *string    `json:"ip"`
	LastSeen  *time.Time `json:"lastSeen"`
	CreatedBy string     `json:"createdBy"`
	UpdatedBy *string    `json:"updatedBy"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Sensor is one sensor mounted on a device.
type Sensor struct {
	ID          int64     `json:"id"`
	Type        *string   `json:"type"`
	Name        *string   `json:"name"`
	Model       *string   `json:"model"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Detail is a device together with its sensors.
type Detail struct {
	Device
	Sensors []Sensor `json:"sensors"`
}

// ListParams filters and pages a device listing. Nil filters are ignored.
type ListParams struct {
	OwnerID *string
	Name    *string
	TypeID  *int64

	Page   query.Page
	SortBy string
	Order  string
}

// CreateRequest is the body accepted when a user registers a device.
type CreateRequest struct {
	Name   string  `json:"name" validate:"required,max=255"`
	TypeID *int64  `json:"typeId" validate:"omitempty,gt=0"`
	Serial *string `json:"serial" validate:"omitempty,min=1,max=128"`
	Notes  *string `json:"notes" validate:"omitempty,max=4000"`
	IP     *string `json:"ip" validate:"omitempty,ip"`
}

// Sort allow-list for device listings.
var sortSpec = query.SortSpec{
	Columns: map[string]string{
		"id":        "d.id",
		"name":      "d.name",
		"typeId":    "d.type_id",
		"createdAt": "d.created_at",
		"updatedAt": "d.updated_at",
		"lastSeen":  "d.last_seen",
	},
	Default: "createdAt",
}

// where maps the filters onto predicate fragments.
func (p ListParams) where() query.Where {
	var w query.Where
	if p.OwnerID != nil {
		w.And("d.id IN (SELECT device_id FROM device_owners WHERE user_id = ?)", *p.OwnerID)
	}
	if p.Name != nil {
		w.And(`d.name LIKE ? ESCAPE '\'`, query.Contains(*p.Name))
	}
	if p.TypeID != nil {
		w.And("d.type_id = ?", *p.TypeID)
	}
	return w
}
