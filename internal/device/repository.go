package device

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/wildtrace/wildtrace-api/internal/event"
	"github.com/wildtrace/wildtrace-api/internal/infrastructure/database"
	"github.com/wildtrace/wildtrace-api/internal/query"
)

// Repository defines device persistence operations.
type Repository interface {
	// List returns one page of devices matching p.
	List(ctx context.Context, p ListParams) (query.Result[Device], error)

	// GetByID returns a device with its sensors.
	// Returns ErrDeviceNotFound if the device does not exist.
	GetByID(ctx context.Context, id int64) (*Detail, error)

	// Create registers a device owned by ownerID. The device row and the
	// owner link are written in one transaction.
	Create(ctx context.Context, ownerID string, req CreateRequest) (*Device, error)

	// Delete removes a device owned by ownerID together with its events
	// (and their children), owner links, project links and sensors, in one
	// transaction.
	// Returns ErrDeviceNotFound if the device does not exist or belongs to
	// someone else.
	Delete(ctx context.Context, id int64, ownerID string) error
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

const deviceColumns = `d.id, d.type_id, d.name, d.serial, d.notes, d.ip, d.last_seen,
	d.created_by, d.updated_by, d.created_at, d.updated_at`

// sensorsAggregate yields the device's sensors as a JSON array.
const sensorsAggregate = `COALESCE((
		SELECT json_group_array(json_object(
			'id', s.id,
			'type', st.name,
			'name', s.name,
			'model', s.model,
			'lastUpdated', s.updated_at))
		FROM sensors s
		LEFT JOIN sensor_types st ON st.id = s.type_id
		WHERE s.device_id = d.id
	), '[]')`

// List returns one page of devices matching p.
func (r *SQLiteRepository) List(ctx context.Context, p ListParams) (query.Result[Device], error) {
	sel := query.Select{
		Columns:    deviceColumns,
		From:       "devices d",
		Where:      p.where(),
		TieBreaker: "d.id",
	}
	res, err := query.List(ctx, r.conn, sel, sortSpec.Resolve(p.SortBy, p.Order), p.Page, scanDeviceRows)
	if err != nil {
		return res, fmt.Errorf("listing devices: %w", err)
	}
	return res, nil
}

// GetByID returns a device with its sensors.
func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*Detail, error) {
	return r.getDetail(ctx, r.conn, id)
}

func (r *SQLiteRepository) getDetail(ctx context.Context, q database.Querier, id int64) (*Detail, error) {
	row := q.QueryRowContext(ctx,
		"SELECT "+deviceColumns+", "+sensorsAggregate+" FROM devices d WHERE d.id = ?", id)

	var (
		detail  Detail
		sensors sql.NullString
	)
	if err := scanDevice(row, &detail.Device, &sensors); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("querying device: %w", err)
	}

	list, err := database.JSONArray[Sensor](sensors)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(list, func(a, b Sensor) int { return cmp.Compare(a.ID, b.ID) })
	detail.Sensors = list

	return &detail, nil
}

// Create registers a device owned by ownerID.
func (r *SQLiteRepository) Create(ctx context.Context, ownerID string, req CreateRequest) (*Device, error) {
	now := database.FormatTime(r.now())
	serial := uuid.NewString()
	if req.Serial != nil {
		serial = *req.Serial
	}

	var created *Device
	err := database.WithTx(ctx, r.conn, func(tx database.Querier) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO devices (type_id, name, serial, notes, ip, created_by, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			database.IntArg(req.TypeID), req.Name, serial, database.StringArg(req.Notes),
			database.StringArg(req.IP), ownerID, now, now,
		)
		if err != nil {
			if database.IsUniqueViolation(err) {
				return ErrSerialExists
			}
			return fmt.Errorf("inserting device: %w", err)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading device id: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO device_owners (device_id, user_id, created_at) VALUES (?, ?, ?)",
			id, ownerID, now,
		); err != nil {
			return fmt.Errorf("linking device owner: %w", err)
		}

		detail, err := r.getDetail(ctx, tx, id)
		if err != nil {
			return err
		}
		created = &detail.Device
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Delete removes a device owned by ownerID.
func (r *SQLiteRepository) Delete(ctx context.Context, id int64, ownerID string) error {
	return database.WithTx(ctx, r.conn, func(tx database.Querier) error {
		var owned int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM device_owners WHERE device_id = ? AND user_id = ?", id, ownerID,
		).Scan(&owned); err != nil {
			return fmt.Errorf("checking device owner: %w", err)
		}
		if owned == 0 {
			return ErrDeviceNotFound
		}

		if err := event.DeleteForDevice(ctx, tx, id); err != nil {
			return err
		}

		for _, stmt := range []string{
			"DELETE FROM sensor_data WHERE sensor_id IN (SELECT id FROM sensors WHERE device_id = ?)",
			"DELETE FROM device_owners WHERE device_id = ?",
			"DELETE FROM project_devices WHERE device_id = ?",
			"DELETE FROM sensors WHERE device_id = ?",
		} {
			if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
				return fmt.Errorf("deleting device dependents: %w", err)
			}
		}

		res, err := tx.ExecContext(ctx, "DELETE FROM devices WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("deleting device: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 { //nolint:errcheck // sqlite always reports rows affected
			return ErrDeviceNotFound
		}
		return nil
	})
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanDevice reads deviceColumns, followed by any extra destinations.
func scanDevice(s rowScanner, d *Device, extra ...any) error {
	var (
		typeID                  sql.NullInt64
		name, serial, notes, ip sql.NullString
		lastSeen, updatedBy     sql.NullString
		createdAt, updatedAt    string
	)
	dest := append([]any{
		&d.ID, &typeID, &name, &serial, &notes, &ip, &lastSeen,
		&d.CreatedBy, &updatedBy, &createdAt, &updatedAt,
	}, extra...)
	if err := s.Scan(dest...); err != nil {
		return err
	}

	d.TypeID = database.NullInt(typeID)
	d.Name = database.NullString(name)
	d.Serial = database.NullString(serial)
	d.Notes = database.NullString(notes)
	d.IP = database.NullString(ip)
	d.LastSeen = database.NullTime(lastSeen)
	d.UpdatedBy = database.NullString(updatedBy)
	d.CreatedAt = database.ParseTime(createdAt)
	d.UpdatedAt = database.ParseTime(updatedAt)
	return nil
}

func scanDeviceRows(rows *sql.Rows) (Device, error) {
	var d Device
	err := scanDevice(rows, &d)
	return d, err
}
