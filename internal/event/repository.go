package event

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/wildtrace/wildtrace-api/internal/geo"
	"github.com/wildtrace/wildtrace-api/internal/infrastructure/database"
	"github.com/wildtrace/wildtrace-api/internal/query"
)

// Repository defines event persistence operations.
type Repository interface {
	// List returns one page of events matching p.
	List(ctx context.Context, p ListParams) (query.Result[Event], error)

	// GetByID returns an event with its children.
	// Returns ErrEventNotFound if the event does not exist.
	GetByID(ctx context.Context, id int64) (*Event, error)

	// Delete removes an event and its labels, regions, sensor readings and
	// media. Only the owner of the event's device may delete it; anyone
	// else gets ErrEventNotFound.
	Delete(ctx context.Context, id int64, ownerID string) error

	// Verify marks an event as verified by userID and returns it.
	Verify(ctx context.Context, id int64, userID string) (*Event, error)
}

// SQLiteRepository implements Repository on a request-scoped connection.
type SQLiteRepository struct {
	conn database.Conn
	now  func() time.Time
}

// NewSQLiteRepository creates a repository bound to conn.
func NewSQLiteRepository(conn database.Conn) *SQLiteRepository {
	return &SQLiteRepository{conn: conn, now: time.Now}
}

const eventFrom = "events e LEFT JOIN devices d ON d.id = e.device_id"

// eventColumns selects the event row, its device name and the three child
// collections as JSON arrays. Label arrays are nested inside regions; the
// inner aggregate is wrapped in json() so it embeds as an array and not as
// a string.
const eventColumns = `e.id, e.time, e.type, e.device_id, d.name, e.latitude, e.longitude,
	e.verified_by, e.verified_at, e.updated_by, e.created_at, e.updated_at,
	COALESCE((
		SELECT json_group_array(json_object(
			'id', r.id, 'w', r.w, 'h', r.h, 'x', r.x, 'y', r.y,
			'labels', json(COALESCE((
				SELECT json_group_array(json_object(
					'id', l.id,
					'name', l.name,
					'latinName', l.latin_name,
					'count', l.count))
				FROM labels l
				WHERE l.region_id = r.id
			), '[]'))))
		FROM regions r
		WHERE r.event_id = e.id
	), '[]'),
	COALESCE((
		SELECT json_group_array(json_object(
			'id', sd.id,
			'sensorId', sd.sensor_id,
			'value', sd.value,
			'name', st.name))
		FROM sensor_data sd
		LEFT JOIN sensors s ON s.id = sd.sensor_id
		LEFT JOIN sensor_types st ON st.id = s.type_id
		WHERE sd.event_id = e.id
	), '[]'),
	COALESCE((
		SELECT json_group_array(json_object(
			'id', em.id,
			'fileId', em.file_id,
			'source', em.source))
		FROM event_media em
		WHERE em.event_id = e.id
	), '[]')`

// List returns one page of events matching p.
func (r *SQLiteRepository) List(ctx context.Context, p ListParams) (query.Result[Event], error) {
	sel := query.Select{
		Columns:    eventColumns,
		From:       eventFrom,
		Where:      p.where(),
		TieBreaker: "e.id",
	}
	res, err := query.List(ctx, r.conn, sel, sortSpec.Resolve(p.SortBy, p.Order), p.Page, scanEventRows)
	if err != nil {
		return res, fmt.Errorf("listing events: %w", err)
	}
	return res, nil
}

// GetByID returns an event with its children.
func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*Event, error) {
	return getEvent(ctx, r.conn, id)
}

func getEvent(ctx context.Context, q database.Querier, id int64) (*Event, error) {
	row := q.QueryRowContext(ctx, "SELECT "+eventColumns+" FROM "+eventFrom+" WHERE e.id = ?", id)

	var e Event
	if err := scanEvent(row, &e); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("querying event: %w", err)
	}
	return &e, nil
}

// Delete removes an event owned through its device by ownerID.
func (r *SQLiteRepository) Delete(ctx context.Context, id int64, ownerID string) error {
	return database.WithTx(ctx, r.conn, func(tx database.Querier) error {
		var owned int
		if err := tx.QueryRowContext(ctx, `
			SELECT COUNT(*) FROM events e
			JOIN device_owners o ON o.device_id = e.device_id
			WHERE e.id = ? AND o.user_id = ?`, id, ownerID,
		).Scan(&owned); err != nil {
			return fmt.Errorf("checking event owner: %w", err)
		}
		if owned == 0 {
			return ErrEventNotFound
		}

		n, err := deleteEvents(ctx, tx, "?", id)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrEventNotFound
		}
		return nil
	})
}

// DeleteForDevice removes every event recorded by deviceID together with
// its children. It runs on q so callers can include it in their own
// transaction.
func DeleteForDevice(ctx context.Context, q database.Querier, deviceID int64) error {
	_, err := deleteEvents(ctx, q, "SELECT id FROM events WHERE device_id = ?", deviceID)
	return err
}

// eventDeletes remove events children first. Each statement takes the
// same fragment selecting the affected event ids.
var eventDeletes = []string{
	"DELETE FROM labels WHERE region_id IN (SELECT id FROM regions WHERE event_id IN (%s))",
	"DELETE FROM regions WHERE event_id IN (%s)",
	"DELETE FROM sensor_data WHERE event_id IN (%s)",
	"DELETE FROM event_media WHERE event_id IN (%s)",
	"DELETE FROM events WHERE id IN (%s)",
}

// deleteEvents runs eventDeletes with selector bound to arg and reports
// how many events were removed.
func deleteEvents(ctx context.Context, q database.Querier, selector string, arg any) (int64, error) {
	var res sql.Result
	for _, stmt := range eventDeletes {
		var err error
		res, err = q.ExecContext(ctx, fmt.Sprintf(stmt, selector), arg) //nolint:gosec // selector is a fixed fragment
		if err != nil {
			return 0, fmt.Errorf("deleting events: %w", err)
		}
	}
	n, _ := res.RowsAffected() //nolint:errcheck // sqlite always reports rows affected
	return n, nil
}

// Verify marks an event as verified by userID.
func (r *SQLiteRepository) Verify(ctx context.Context, id int64, userID string) (*Event, error) {
	now := database.FormatTime(r.now())

	var verified *Event
	err := database.WithTx(ctx, r.conn, func(tx database.Querier) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE events
			SET verified_by = ?, verified_at = ?, updated_by = ?, updated_at = ?
			WHERE id = ?`,
			userID, now, userID, now, id,
		)
		if err != nil {
			return fmt.Errorf("verifying event: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 { //nolint:errcheck // sqlite always reports rows affected
			return ErrEventNotFound
		}

		verified, err = getEvent(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return verified, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(s rowScanner, e *Event) error {
	var (
		eventTime, createdAt, updatedAt   string
		eventType, deviceName             sql.NullString
		verifiedBy, verifiedAt, updatedBy sql.NullString
		lat, lon                          sql.NullFloat64
		regions, sensorData, media        sql.NullString
	)
	if err := s.Scan(
		&e.ID, &eventTime, &eventType, &e.DeviceID, &deviceName, &lat, &lon,
		&verifiedBy, &verifiedAt, &updatedBy, &createdAt, &updatedAt,
		&regions, &sensorData, &media,
	); err != nil {
		return err
	}

	e.Time = database.ParseTime(eventTime)
	e.Type = database.NullString(eventType)
	e.DeviceName = database.NullString(deviceName)
	e.Location = geo.GeoJSONFromNullable(database.NullFloat(lat), database.NullFloat(lon))
	e.VerifiedBy = database.NullString(verifiedBy)
	e.VerifiedAt = database.NullTime(verifiedAt)
	e.UpdatedBy = database.NullString(updatedBy)
	e.CreatedAt = database.ParseTime(createdAt)
	e.UpdatedAt = database.ParseTime(updatedAt)

	var err error
	if e.Regions, err = database.JSONArray[Region](regions); err != nil {
		return err
	}
	if e.SensorData, err = database.JSONArray[SensorData](sensorData); err != nil {
		return err
	}
	if e.Media, err = database.JSONArray[Media](media); err != nil {
		return err
	}
	sortChildren(e)
	return nil
}

// sortChildren orders child collections by id. json_group_array does not
// guarantee element order.
func sortChildren(e *Event) {
	for i := range e.Regions {
		if e.Regions[i].Labels == nil {
			e.Regions[i].Labels = []Label{}
		}
		slices.SortFunc(e.Regions[i].Labels, func(a, b Label) int { return cmp.Compare(a.ID, b.ID) })
	}
	slices.SortFunc(e.Regions, func(a, b Region) int { return cmp.Compare(a.ID, b.ID) })
	slices.SortFunc(e.SensorData, func(a, b SensorData) int { return cmp.Compare(a.ID, b.ID) })
	slices.SortFunc(e.Media, func(a, b Media) int { return cmp.Compare(a.ID, b.ID) })
}

func scanEventRows(rows *sql.Rows) (Event, error) {
	var e Event
	err := scanEvent(rows, &e)
	return e, err
}
