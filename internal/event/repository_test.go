package event

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildtrace/wildtrace-api/internal/infrastructure/database"
	"github.com/wildtrace/wildtrace-api/internal/query"
	"github.com/wildtrace/wildtrace-api/internal/testdb"
)

var base = time.Date(2026, 5, 1, 6, 0, 0, 0, time.UTC)

type fixture struct {
	db *database.DB
}

func (f fixture) device(t *testing.T, owner, name string) int64 {
	t.Helper()
	now := database.FormatTime(base)
	id := testdb.Exec(t, f.db, `INSERT INTO devices (name, created_by, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		name, owner, now, now)
	testdb.Exec(t, f.db, `INSERT INTO device_owners (device_id, user_id, created_at) VALUES (?, ?, ?)`, id, owner, now)
	return id
}

func (f fixture) sensor(t *testing.T, deviceID int64, typeName string) int64 {
	t.Helper()
	now := database.FormatTime(base)
	return testdb.Exec(t, f.db, `INSERT INTO sensors (device_id, type_id, created_at, updated_at)
		VALUES (?, (SELECT id FROM sensor_types WHERE name = ?), ?, ?)`, deviceID, typeName, now, now)
}

func (f fixture) event(t *testing.T, deviceID int64, at time.Time) int64 {
	t.Helper()
	ts := database.FormatTime(at)
	return testdb.Exec(t, f.db, `INSERT INTO events (time, type, device_id, latitude, longitude, created_at, updated_at)
		VALUES (?, 'motion', ?, 51.5, -0.12, ?, ?)`, ts, deviceID, ts, ts)
}

func (f fixture) media(t *testing.T, eventID int64, fileID string) {
	t.Helper()
	testdb.Exec(t, f.db, `INSERT INTO event_media (event_id, file_id, source) VALUES (?, ?, 'camera')`, eventID, fileID)
}

func (f fixture) reading(t *testing.T, eventID, sensorID int64, value float64) {
	t.Helper()
	testdb.Exec(t, f.db, `INSERT INTO sensor_data (event_id, sensor_id, value) VALUES (?, ?, ?)`, eventID, sensorID, value)
}

func (f fixture) region(t *testing.T, eventID int64, labels ...string) int64 {
	t.Helper()
	rid := testdb.Exec(t, f.db, `INSERT INTO regions (event_id, w, h, x, y) VALUES (?, 0.5, 0.25, 0.1, 0.2)`, eventID)
	for _, l := range labels {
		testdb.Exec(t, f.db, `INSERT INTO labels (region_id, name, latin_name, count) VALUES (?, ?, NULL, 2)`, rid, l)
	}
	return rid
}

func setup(t *testing.T) (*SQLiteRepository, fixture) {
	t.Helper()
	db := testdb.Open(t)
	return NewSQLiteRepository(db), fixture{db: db}
}

func boolPtr(b bool) *bool { return &b }

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

func timePtr(v time.Time) *time.Time { return &v }

func ids(events []Event) []int64 {
	out := make([]int64, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}

func TestGetByID_Children(t *testing.T) {
	repo, f := setup(t)
	ctx := context.Background()

	dev := f.device(t, "u1", "cam-1")
	temp := f.sensor(t, dev, "temperature")
	ev := f.event(t, dev, base)
	f.region(t, ev, "fox", "badger")
	f.region(t, ev)
	f.reading(t, ev, temp, 12.5)
	f.media(t, ev, "a.jpg")

	got, err := repo.GetByID(ctx, ev)
	require.NoError(t, err)

	assert.Equal(t, "cam-1", *got.DeviceName)
	assert.Equal(t, base, got.Time)
	require.NotNil(t, got.Location)
	assert.Equal(t, "Point", got.Location.Type)
	assert.Equal(t, [2]float64{-0.12, 51.5}, got.Location.Coordinates)

	require.Len(t, got.Regions, 2)
	require.Len(t, got.Regions[0].Labels, 2)
	assert.Equal(t, "fox", got.Regions[0].Labels[0].Name)
	assert.Equal(t, 2, got.Regions[0].Labels[0].Count)
	assert.NotNil(t, got.Regions[1].Labels)
	assert.Empty(t, got.Regions[1].Labels)

	require.Len(t, got.SensorData, 1)
	assert.Equal(t, 12.5, got.SensorData[0].Value)
	assert.Equal(t, "temperature", *got.SensorData[0].Name)

	require.Len(t, got.Media, 1)
	assert.Equal(t, "a.jpg", got.Media[0].FileID)
}

func TestGetByID_EmptyCollections(t *testing.T) {
	repo, f := setup(t)
	ev := f.event(t, f.device(t, "u1", "cam"), base)

	got, err := repo.GetByID(context.Background(), ev)
	require.NoError(t, err)
	assert.NotNil(t, got.Regions)
	assert.NotNil(t, got.SensorData)
	assert.NotNil(t, got.Media)
	assert.Empty(t, got.Regions)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, _ := setup(t)
	_, err := repo.GetByID(context.Background(), 77)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestList_Filters(t *testing.T) {
	repo, f := setup(t)
	ctx := context.Background()

	camA := f.device(t, "alice", "cam-a")
	camB := f.device(t, "bob", "cam-b")
	sensA := f.sensor(t, camA, "temperature")
	sensB := f.sensor(t, camB, "humidity")

	withMedia := f.event(t, camA, base)
	f.media(t, withMedia, "m1.jpg")
	positive := f.event(t, camA, base.Add(time.Hour))
	f.reading(t, positive, sensA, 3)
	zero := f.event(t, camB, base.Add(2*time.Hour))
	f.reading(t, zero, sensB, 0)
	bare := f.event(t, camB, base.Add(3*time.Hour))

	tests := []struct {
		name   string
		params ListParams
		want   []int64
	}{
		{"all newest first", ListParams{}, []int64{bare, zero, positive, withMedia}},
		{"by device id", ListParams{DeviceID: &camA}, []int64{positive, withMedia}},
		{"by device name", ListParams{DeviceName: strPtr("cam-b")}, []int64{bare, zero}},
		{"device id wins over name", ListParams{DeviceID: &camA, DeviceName: strPtr("cam-b")}, []int64{positive, withMedia}},
		{"by owner", ListParams{OwnerID: strPtr("bob")}, []int64{bare, zero}},
		{"with media", ListParams{HasMedia: boolPtr(true)}, []int64{withMedia}},
		{"without media needs positive reading", ListParams{HasMedia: boolPtr(false)}, []int64{positive}},
		{"date range", ListParams{Start: timePtr(base.Add(30 * time.Minute)), End: timePtr(base.Add(2 * time.Hour))}, []int64{zero, positive}},
		{"fractional start excludes its second", ListParams{Start: timePtr(base.Add(time.Hour + 900*time.Millisecond))}, []int64{bare, zero}},
		{"fractional end includes its second", ListParams{End: timePtr(base.Add(time.Hour + 900*time.Millisecond))}, []int64{positive, withMedia}},
		{"whole-second start is inclusive", ListParams{Start: timePtr(base.Add(time.Hour))}, []int64{bare, zero, positive}},
		{"unknown device", ListParams{DeviceID: int64Ptr(999)}, []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.params.Page = query.NewPage(1, 20)
			res, err := repo.List(ctx, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(res.Items))
			assert.Equal(t, len(tt.want), res.TotalCount)
		})
	}
}

func TestList_NoMediaNeverReturnsMedia(t *testing.T) {
	repo, f := setup(t)
	dev := f.device(t, "u1", "cam")
	s := f.sensor(t, dev, "temperature")
	for i := range 6 {
		ev := f.event(t, dev, base.Add(time.Duration(i)*time.Minute))
		f.reading(t, ev, s, float64(i%3))
		if i%2 == 0 {
			f.media(t, ev, "x.jpg")
		}
	}

	res, err := repo.List(context.Background(), ListParams{HasMedia: boolPtr(false), Page: query.NewPage(1, 50)})
	require.NoError(t, err)
	require.NotEmpty(t, res.Items)
	for _, e := range res.Items {
		assert.Empty(t, e.Media)
		positive := false
		for _, sd := range e.SensorData {
			if sd.Value > 0 {
				positive = true
			}
		}
		assert.True(t, positive, "event %d has no positive reading", e.ID)
	}
}

func TestList_SortAndPaging(t *testing.T) {
	repo, f := setup(t)
	dev := f.device(t, "u1", "cam")
	var all []int64
	for i := range 5 {
		all = append(all, f.event(t, dev, base.Add(time.Duration(i)*time.Hour)))
	}

	res, err := repo.List(context.Background(), ListParams{Page: query.NewPage(2, 2), SortBy: "time", Order: "asc"})
	require.NoError(t, err)
	assert.Equal(t, 5, res.TotalCount)
	assert.Equal(t, all[2:4], ids(res.Items))
}

func TestDelete(t *testing.T) {
	repo, f := setup(t)
	ctx := context.Background()

	dev := f.device(t, "owner", "cam")
	s := f.sensor(t, dev, "temperature")
	ev := f.event(t, dev, base)
	rid := f.region(t, ev, "deer")
	f.reading(t, ev, s, 1)
	f.media(t, ev, "d.jpg")

	t.Run("non-owner gets not found", func(t *testing.T) {
		assert.ErrorIs(t, repo.Delete(ctx, ev, "intruder"), ErrEventNotFound)
		_, err := repo.GetByID(ctx, ev)
		assert.NoError(t, err)
	})

	t.Run("owner removes event and children", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, ev, "owner"))

		_, err := repo.GetByID(ctx, ev)
		assert.ErrorIs(t, err, ErrEventNotFound)
		assert.Equal(t, 0, testdb.Count(t, f.db, "labels WHERE region_id = ?", rid))
		assert.Equal(t, 0, testdb.Count(t, f.db, "regions WHERE event_id = ?", ev))
		assert.Equal(t, 0, testdb.Count(t, f.db, "sensor_data WHERE event_id = ?", ev))
		assert.Equal(t, 0, testdb.Count(t, f.db, "event_media WHERE event_id = ?", ev))
	})

	t.Run("already deleted", func(t *testing.T) {
		assert.ErrorIs(t, repo.Delete(ctx, ev, "owner"), ErrEventNotFound)
	})
}

func TestVerify(t *testing.T) {
	repo, f := setup(t)
	ctx := context.Background()
	at := base.Add(48 * time.Hour)
	repo.now = func() time.Time { return at }

	ev := f.event(t, f.device(t, "u1", "cam"), base)

	got, err := repo.Verify(ctx, ev, "reviewer")
	require.NoError(t, err)
	assert.Equal(t, "reviewer", *got.VerifiedBy)
	assert.Equal(t, "reviewer", *got.UpdatedBy)
	require.NotNil(t, got.VerifiedAt)
	assert.Equal(t, at, *got.VerifiedAt)
	assert.Equal(t, at, got.UpdatedAt)

	_, err = repo.Verify(ctx, 4040, "reviewer")
	assert.ErrorIs(t, err, ErrEventNotFound)
}
