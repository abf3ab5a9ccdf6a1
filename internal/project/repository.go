package project

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/wildtrace/wildtrace-api/internal/device"
	"github.com/wildtrace/wildtrace-api/internal/infrastructure/database"
	"github.com/wildtrace/wildtrace-api/internal/query"
)

// Repository defines project persistence operations.
type Repository interface {
	List(ctx context.Context, p ListParams) (query.Result[Project], error)

	// GetByID returns ErrProjectNotFound if the project does not exist.
	GetByID(ctx context.Context, id int64) (*Project, error)

	// Create inserts the project and its device assignment in one
	// transaction. Returns ErrUnknownDevice if a device id does not exist.
	Create(ctx context.Context, req CreateRequest) (*Project, error)

	// Update applies the non-nil fields of req.
	Update(ctx context.Context, id int64, req UpdateRequest) (*Project, error)

	// Delete removes the project and its device assignment.
	Delete(ctx context.Context, id int64) error
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

const projectColumns = `p.id, p.title, p.short_description, p.long_description,
	p.latitude, p.longitude, p.created_at, p.updated_at,
	COALESCE((
		SELECT json_group_array(json_object(
			'id', d.id,
			'typeId', d.type_id,
			'name', d.name,
			'serial', d.serial,
			'notes', d.notes,
			'ip', d.ip,
			'lastSeen', d.last_seen,
			'createdBy', d.created_by,
			'updatedBy', d.updated_by,
			'createdAt', d.created_at,
			'updatedAt', d.updated_at))
		FROM project_devices pd
		JOIN devices d ON d.id = pd.device_id
		WHERE pd.project_id = p.id
	), '[]')`

// List returns one page of projects matching p.
func (r *SQLiteRepository) List(ctx context.Context, p ListParams) (query.Result[Project], error) {
	sel := query.Select{
		Columns:    projectColumns,
		From:       "projects p",
		Where:      p.where(),
		TieBreaker: "p.id",
	}
	res, err := query.List(ctx, r.conn, sel, sortSpec.Resolve(p.SortBy, p.Order), p.Page, scanProjectRows)
	if err != nil {
		return res, fmt.Errorf("listing projects: %w", err)
	}
	return res, nil
}

// GetByID returns a project with its devices.
func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*Project, error) {
	return getProject(ctx, r.conn, id)
}

func getProject(ctx context.Context, q database.Querier, id int64) (*Project, error) {
	row := q.QueryRowContext(ctx, "SELECT "+projectColumns+" FROM projects p WHERE p.id = ?", id)

	var p Project
	if err := scanProject(row, &p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("querying project: %w", err)
	}
	return &p, nil
}

// Create inserts a project.
func (r *SQLiteRepository) Create(ctx context.Context, req CreateRequest) (*Project, error) {
	now := database.FormatTime(r.now())

	var lat, lon any
	if req.Location != nil {
		p := req.Location.Point()
		lat, lon = p.Latitude, p.Longitude
	}

	var created *Project
	err := database.WithTx(ctx, r.conn, func(tx database.Querier) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO projects (title, short_description, long_description, latitude, longitude, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			req.Title, database.StringArg(req.ShortDescription), database.StringArg(req.LongDescription),
			lat, lon, now, now,
		)
		if err != nil {
			return fmt.Errorf("inserting project: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading project id: %w", err)
		}

		if err := assignDevices(ctx, tx, id, req.DeviceIDs); err != nil {
			return err
		}

		created, err = getProject(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update applies the non-nil fields of req.
func (r *SQLiteRepository) Update(ctx context.Context, id int64, req UpdateRequest) (*Project, error) {
	var updated *Project
	err := database.WithTx(ctx, r.conn, func(tx database.Querier) error {
		current, err := getProject(ctx, tx, id)
		if err != nil {
			return err
		}

		if req.Title != nil {
			current.Title = *req.Title
		}
		if req.ShortDescription != nil {
			current.ShortDescription = req.ShortDescription
		}
		if req.LongDescription != nil {
			current.LongDescription = req.LongDescription
		}
		if req.Location != nil {
			p := req.Location.Point()
			current.Latitude = &p.Latitude
			current.Longitude = &p.Longitude
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE projects
			SET title = ?, short_description = ?, long_description = ?,
				latitude = ?, longitude = ?, updated_at = ?
			WHERE id = ?`,
			current.Title, database.StringArg(current.ShortDescription), database.StringArg(current.LongDescription),
			database.FloatArg(current.Latitude), database.FloatArg(current.Longitude),
			database.FormatTime(r.now()), id,
		); err != nil {
			return fmt.Errorf("updating project: %w", err)
		}

		if req.DeviceIDs != nil {
			if _, err := tx.ExecContext(ctx, "DELETE FROM project_devices WHERE project_id = ?", id); err != nil {
				return fmt.Errorf("clearing project devices: %w", err)
			}
			if err := assignDevices(ctx, tx, id, *req.DeviceIDs); err != nil {
				return err
			}
		}

		updated, err = getProject(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a project.
func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	return database.WithTx(ctx, r.conn, func(tx database.Querier) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM project_devices WHERE project_id = ?", id); err != nil {
			return fmt.Errorf("deleting project devices: %w", err)
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("deleting project: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 { //nolint:errcheck // sqlite always reports rows affected
			return ErrProjectNotFound
		}
		return nil
	})
}

// assignDevices links each distinct device id to the project.
func assignDevices(ctx context.Context, tx database.Querier, projectID int64, deviceIDs []int64) error {
	ids := slices.Clone(deviceIDs)
	slices.Sort(ids)
	for _, deviceID := range slices.Compact(ids) {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO project_devices (project_id, device_id) VALUES (?, ?)", projectID, deviceID,
		); err != nil {
			if database.IsForeignKeyViolation(err) {
				return fmt.Errorf("%w: %d", ErrUnknownDevice, deviceID)
			}
			return fmt.Errorf("assigning device %d: %w", deviceID, err)
		}
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(s rowScanner, p *Project) error {
	var (
		short, long          sql.NullString
		lat, lon             sql.NullFloat64
		createdAt, updatedAt string
		devices              sql.NullString
	)
	if err := s.Scan(&p.ID, &p.Title, &short, &long, &lat, &lon, &createdAt, &updatedAt, &devices); err != nil {
		return err
	}

	p.ShortDescription = database.NullString(short)
	p.LongDescription = database.NullString(long)
	p.Latitude = database.NullFloat(lat)
	p.Longitude = database.NullFloat(lon)
	p.CreatedAt = database.ParseTime(createdAt)
	p.UpdatedAt = database.ParseTime(updatedAt)

	list, err := database.JSONArray[device.Device](devices)
	if err != nil {
		return err
	}
	slices.SortFunc(list, func(a, b device.Device) int { return cmp.Compare(a.ID, b.ID) })
	p.Devices = list
	return nil
}

func scanProjectRows(rows *sql.Rows) (Project, error) {
	var p Project
	err := scanProject(rows, &p)
	return p, err
}
