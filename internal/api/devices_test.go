package api

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildtrace/wildtrace-api/internal/device"
	"github.com/wildtrace/wildtrace-api/internal/infrastructure/mqtt"
	"github.com/wildtrace/wildtrace-api/internal/query"
	"github.com/wildtrace/wildtrace-api/internal/testdb"
)

func createDevice(t *testing.T, env *testEnv, owner, name string) device.Device {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/my/device", token(t, owner), map[string]any{"name": name})
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
	return decode[dataEnvelope[device.Device]](t, rec).Data
}

func TestCreateDevice(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/my/device", token(t, "u1"), map[string]any{"name": "Trap A"})
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())

	dev := decode[dataEnvelope[device.Device]](t, rec).Data
	assert.NotZero(t, dev.ID)
	require.NotNil(t, dev.Name)
	assert.Equal(t, "Trap A", *dev.Name)
	assert.Equal(t, "u1", dev.CreatedBy)
	require.NotNil(t, dev.Serial)
	_, err := uuid.Parse(*dev.Serial)
	assert.NoError(t, err)

	changes := env.notifier.all()
	require.Len(t, changes, 1)
	assert.Equal(t, mqtt.Change{
		Entity:    entityDevice,
		Action:    mqtt.ActionCreated,
		ID:        fmt.Sprint(dev.ID),
		UserID:    "u1",
		Timestamp: changes[0].Timestamp,
	}, changes[0])
}

func TestCreateDevice_Validation(t *testing.T) {
	env := newTestEnv(t)
	tok := token(t, "u1")

	tests := []struct {
		name string
		body any
	}{
		{"missing name", map[string]any{"notes": "x"}},
		{"bad ip", map[string]any{"name": "Trap", "ip": "not-an-ip"}},
		{"wrong type", map[string]any{"name": 12}},
		{"malformed json", `{"name":`},
		{"empty body", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/my/device", tok, tt.body)
			assertError(t, rec, http.StatusBadRequest, ErrCategoryValidation, "")
		})
	}

	assert.Equal(t, 0, testdb.Count(t, env.db, "devices"))
	assert.Empty(t, env.notifier.all())
}

func TestCreateDevice_DuplicateSerial(t *testing.T) {
	env := newTestEnv(t)
	tok := token(t, "u1")
	body := map[string]any{"name": "Trap", "serial": "SN-1"}

	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/my/device", tok, body).Code)
	assertError(t, env.do(t, http.MethodPost, "/my/device", tok, body), http.StatusConflict, ErrCategoryConflict, "")
}

func TestListDevices_Pagination(t *testing.T) {
	env := newTestEnv(t)
	for i := 1; i <= 25; i++ {
		createDevice(t, env, "u1", fmt.Sprintf("Device %02d", i))
	}

	rec := env.do(t, http.MethodGet, "/devices?page=2&limit=10&sortBy=name&order=asc", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	page := decode[pageEnvelope[device.Device]](t, rec)
	require.Len(t, page.Data, 10)
	for i, d := range page.Data {
		assert.Equal(t, fmt.Sprintf("Device %02d", i+11), *d.Name)
	}
	assert.Equal(t, query.Pagination{
		CurrentPage: 2,
		TotalPages:  3,
		TotalCount:  25,
		HasNextPage: true,
		HasPrevPage: true,
	}, page.Pagination)
}

func TestListDevices_TotalMatchesTable(t *testing.T) {
	env := newTestEnv(t)
	for i := range 7 {
		createDevice(t, env, "u1", fmt.Sprintf("Cam %d", i))
	}

	rec := env.do(t, http.MethodGet, "/devices?limit=3", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[pageEnvelope[device.Device]](t, rec)
	assert.Equal(t, testdb.Count(t, env.db, "devices"), page.Pagination.TotalCount)
	assert.Len(t, page.Data, 3)
}

func TestListDevices_Params(t *testing.T) {
	env := newTestEnv(t)
	createDevice(t, env, "u1", "Heron cam")

	tests := []struct {
		name   string
		query  string
		status int
	}{
		{"page zero", "page=0", http.StatusBadRequest},
		{"page not a number", "page=abc", http.StatusBadRequest},
		{"limit zero", "limit=0", http.StatusBadRequest},
		{"typeId not a number", "typeId=x", http.StatusBadRequest},
		{"limit above max is capped", "limit=1000", http.StatusOK},
		{"unknown sort falls back", "sortBy=password&order=sideways", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/devices?"+tt.query, "", nil)
			assert.Equal(t, tt.status, rec.Code, "body: %s", rec.Body.String())
		})
	}

	rec := env.do(t, http.MethodGet, "/devices?limit=1000", "", nil)
	page := decode[pageEnvelope[device.Device]](t, rec)
	assert.Equal(t, 1, page.Pagination.TotalPages)
}

func TestListDevices_ByOwner(t *testing.T) {
	env := newTestEnv(t)
	createDevice(t, env, "alice", "Alice 1")
	createDevice(t, env, "alice", "Alice 2")
	createDevice(t, env, "bob", "Bob 1")

	rec := env.do(t, http.MethodGet, "/devices/user/alice", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[pageEnvelope[device.Device]](t, rec).Pagination.TotalCount)

	rec = env.do(t, http.MethodGet, "/my/devices?name=bob", token(t, "bob"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	mine := decode[pageEnvelope[device.Device]](t, rec)
	require.Len(t, mine.Data, 1)
	assert.Equal(t, "Bob 1", *mine.Data[0].Name)
}

func TestGetDevice(t *testing.T) {
	env := newTestEnv(t)
	dev := createDevice(t, env, "u1", "Trap A")

	rec := env.do(t, http.MethodGet, fmt.Sprintf("/devices/%d", dev.ID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[dataEnvelope[device.Detail]](t, rec).Data
	assert.Equal(t, dev.ID, got.ID)
	assert.NotNil(t, got.Sensors)
	assert.Contains(t, rec.Body.String(), `"sensors":[]`)

	assertError(t, env.do(t, http.MethodGet, "/devices/999", "", nil), http.StatusNotFound, ErrCategoryNotFound, "Device not found")
	assertError(t, env.do(t, http.MethodGet, "/devices/abc", "", nil), http.StatusBadRequest, ErrCategoryValidation, "")
}

func TestDeleteDevice(t *testing.T) {
	env := newTestEnv(t)
	dev := createDevice(t, env, "alice", "Trap A")
	path := fmt.Sprintf("/my/devices/%d", dev.ID)

	assertError(t, env.do(t, http.MethodDelete, path, token(t, "bob"), nil), http.StatusNotFound, ErrCategoryNotFound, "Device not found")
	assert.Equal(t, 1, testdb.Count(t, env.db, "devices"))

	rec := env.do(t, http.MethodDelete, path, token(t, "alice"), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.Bytes())

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, fmt.Sprintf("/devices/%d", dev.ID), "", nil).Code)
	assert.Equal(t, 0, testdb.Count(t, env.db, "device_owners"))

	changes := env.notifier.all()
	require.Len(t, changes, 2)
	assert.Equal(t, mqtt.ActionDeleted, changes[1].Action)
}

func TestDeleteDevice_WithEvents(t *testing.T) {
	env := newTestEnv(t)
	dev := createDevice(t, env, "alice", "Trap A")
	withMedia := seedEvent(t, env, dev.ID, 0, true, 0)
	withReading := seedEvent(t, env, dev.ID, time.Hour, false, 2.5)

	rec := env.do(t, http.MethodDelete, fmt.Sprintf("/my/devices/%d", dev.ID), token(t, "alice"), nil)
	require.Equal(t, http.StatusNoContent, rec.Code, "body: %s", rec.Body.String())

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, fmt.Sprintf("/devices/%d", dev.ID), "", nil).Code)
	for _, id := range []int64{withMedia, withReading} {
		assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, fmt.Sprintf("/event/%d", id), "", nil).Code)
	}
	for _, table := range []string{"events", "event_media", "sensor_data", "sensors", "device_owners"} {
		assert.Equal(t, 0, testdb.Count(t, env.db, table), table)
	}
}
