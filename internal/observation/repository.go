package observation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wildtrace/wildtrace-api/internal/infrastructure/database"
	"github.com/wildtrace/wildtrace-api/internal/query"
	"github.com/wildtrace/wildtrace-api/internal/sighting"
)

// Repository defines field observation persistence operations.
type Repository interface {
	// Create records an observation for userID together with any sightings
	// in one transaction.
	Create(ctx context.Context, userID string, req CreateRequest) (*Detail, error)

	// GetByID returns ErrObservationNotFound if the observation does not exist.
	GetByID(ctx context.Context, id string) (*Detail, error)

	// ListByUser returns one page of a user's observations without sightings.
	ListByUser(ctx context.Context, p ListParams) (query.Result[FieldObservation], error)

	// Delete removes an observation owned by userID and its sightings.
	Delete(ctx context.Context, id, userID string) error

	// AddSighting appends a sighting to an observation owned by userID.
	AddSighting(ctx context.Context, id, userID string, in sighting.Input) (*Sighting, error)
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

const observationColumns = `o.id, o.user_id, o.type, o.time, o.latitude, o.longitude,
	o.weather, o.temperature, o.wind, o.season, o.consent, o.created_at`

// Create records an observation for userID.
func (r *SQLiteRepository) Create(ctx context.Context, userID string, req CreateRequest) (*Detail, error) {
	id := uuid.NewString()
	if req.ID != nil {
		parsed, err := uuid.Parse(*req.ID)
		if err != nil {
			return nil, fmt.Errorf("parsing observation id: %w", err)
		}
		id = parsed.String()
	}
	now := r.now()

	loc := req.Location.Point()

	var created *Detail
	err := database.WithTx(ctx, r.conn, func(tx database.Querier) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO field_observations
				(id, user_id, type, time, latitude, longitude, weather, temperature, wind, season, consent, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, userID, req.Type, database.TimeArg(req.Time),
			loc.Latitude, loc.Longitude,
			database.StringArg(req.Weather), database.IntArg(req.Temperature),
			database.StringArg(req.Wind), database.StringArg(req.Season),
			database.BoolToInt(req.Consent), database.FormatTime(now),
		); err != nil {
			if database.IsUniqueViolation(err) {
				return ErrObservationExists
			}
			return fmt.Errorf("inserting observation: %w", err)
		}

		for _, in := range req.Sightings {
			if _, err := sightings.Insert(ctx, tx, id, in, now); err != nil {
				return err
			}
		}

		var err error
		created, err = getDetail(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetByID returns an observation with its sightings.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Detail, error) {
	return getDetail(ctx, r.conn, id)
}

func getDetail(ctx context.Context, q database.Querier, id string) (*Detail, error) {
	row := q.QueryRowContext(ctx, "SELECT "+observationColumns+" FROM field_observations o WHERE o.id = ?", id)

	var d Detail
	if err := scanObservation(row, &d.FieldObservation); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrObservationNotFound
		}
		return nil, fmt.Errorf("querying observation: %w", err)
	}

	records, err := sightings.List(ctx, q, id)
	if err != nil {
		return nil, err
	}
	d.Sightings = make([]Sighting, 0, len(records))
	for _, rec := range records {
		d.Sightings = append(d.Sightings, Sighting{Record: rec, FieldObservationID: id})
	}
	return &d, nil
}

// ListByUser returns one page of a user's observations.
func (r *SQLiteRepository) ListByUser(ctx context.Context, p ListParams) (query.Result[FieldObservation], error) {
	sel := query.Select{
		Columns:    observationColumns,
		From:       "field_observations o",
		Where:      p.where(),
		TieBreaker: "o.rowid",
	}
	res, err := query.List(ctx, r.conn, sel, sortSpec.Resolve(p.SortBy, p.Order), p.Page, scanObservationRows)
	if err != nil {
		return res, fmt.Errorf("listing observations: %w", err)
	}
	return res, nil
}

// Delete removes an observation owned by userID.
func (r *SQLiteRepository) Delete(ctx context.Context, id, userID string) error {
	return database.WithTx(ctx, r.conn, func(tx database.Querier) error {
		if err := checkOwner(ctx, tx, id, userID); err != nil {
			return err
		}
		if err := sightings.DeleteAll(ctx, tx, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM field_observations WHERE id = ? AND user_id = ?", id, userID)
		if err != nil {
			return fmt.Errorf("deleting observation: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 { //nolint:errcheck // sqlite always reports rows affected
			return ErrObservationNotFound
		}
		return nil
	})
}

// AddSighting appends a sighting to an observation owned by userID.
func (r *SQLiteRepository) AddSighting(ctx context.Context, id, userID string, in sighting.Input) (*Sighting, error) {
	var added *Sighting
	err := database.WithTx(ctx, r.conn, func(tx database.Querier) error {
		if err := checkOwner(ctx, tx, id, userID); err != nil {
			return err
		}
		rec, err := sightings.Insert(ctx, tx, id, in, r.now())
		if err != nil {
			return err
		}
		added = &Sighting{Record: rec, FieldObservationID: id}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

func checkOwner(ctx context.Context, q database.Querier, id, userID string) error {
	var n int
	if err := q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM field_observations WHERE id = ? AND user_id = ?", id, userID,
	).Scan(&n); err != nil {
		return fmt.Errorf("checking observation owner: %w", err)
	}
	if n == 0 {
		return ErrObservationNotFound
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanObservation(s rowScanner, o *FieldObservation) error {
	var (
		obsTime, createdAt    string
		weather, wind, season sql.NullString
		temperature           sql.NullInt64
		consent               int
	)
	if err := s.Scan(&o.ID, &o.UserID, &o.Type, &obsTime, &o.Location.Latitude, &o.Location.Longitude,
		&weather, &temperature, &wind, &season, &consent, &createdAt); err != nil {
		return err
	}

	o.Time = database.ParseTime(obsTime)
	o.Weather = database.NullString(weather)
	if temperature.Valid {
		t := int(temperature.Int64)
		o.Temperature = &t
	}
	o.Wind = database.NullString(wind)
	o.Season = database.NullString(season)
	o.Consent = consent != 0
	o.CreatedAt = database.ParseTime(createdAt)
	return nil
}

func scanObservationRows(rows *sql.Rows) (FieldObservation, error) {
	var o FieldObservation
	err := scanObservation(rows, &o)
	return o, err
}
