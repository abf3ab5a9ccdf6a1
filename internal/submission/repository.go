package submission

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

// Repository defines submission persistence operations.
type Repository interface {
	// Create stores a submission for userID together with any sightings in
	// one transaction.
	Create(ctx context.Context, userID string, req CreateRequest) (*Detail, error)

	// GetByID returns ErrSubmissionNotFound if the submission does not exist.
	GetByID(ctx context.Context, id string) (*Detail, error)

	// ListByUser returns one page of a user's submissions without sightings.
	ListByUser(ctx context.Context, p ListParams) (query.Result[Submission], error)

	// Delete removes a submission owned by userID and its sightings.
	Delete(ctx context.Context, id, userID string) error

	// AddSighting appends a sighting to a submission owned by userID.
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

const submissionColumns = `s.id, s.user_id, s.type, s.date, s.time, s.location,
	s.weather, s.temperature, s.wind, s.season, s.consent, s.created_at`

// Create stores a submission for userID.
func (r *SQLiteRepository) Create(ctx context.Context, userID string, req CreateRequest) (*Detail, error) {
	id := uuid.NewString()
	now := r.now()

	var created *Detail
	err := database.WithTx(ctx, r.conn, func(tx database.Querier) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO submissions
				(id, user_id, type, date, time, location, weather, temperature, wind, season, consent, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, userID, req.Type, req.Date, database.StringArg(req.Time), database.StringArg(req.Location),
			database.StringArg(req.Weather), database.IntArg(req.Temperature),
			database.StringArg(req.Wind), database.StringArg(req.Season),
			database.BoolToInt(req.Consent), database.FormatTime(now),
		); err != nil {
			return fmt.Errorf("inserting submission: %w", err)
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

// GetByID returns a submission with its sightings.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Detail, error) {
	return getDetail(ctx, r.conn, id)
}

func getDetail(ctx context.Context, q database.Querier, id string) (*Detail, error) {
	row := q.QueryRowContext(ctx, "SELECT "+submissionColumns+" FROM submissions s WHERE s.id = ?", id)

	var d Detail
	if err := scanSubmission(row, &d.Submission); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("querying submission: %w", err)
	}

	records, err := sightings.List(ctx, q, id)
	if err != nil {
		return nil, err
	}
	d.Sightings = make([]Sighting, 0, len(records))
	for _, rec := range records {
		d.Sightings = append(d.Sightings, Sighting{Record: rec, SubmissionID: id})
	}
	return &d, nil
}

// ListByUser returns one page of a user's submissions.
func (r *SQLiteRepository) ListByUser(ctx context.Context, p ListParams) (query.Result[Submission], error) {
	sel := query.Select{
		Columns:    submissionColumns,
		From:       "submissions s",
		Where:      p.where(),
		TieBreaker: "s.rowid",
	}
	res, err := query.List(ctx, r.conn, sel, sortSpec.Resolve(p.SortBy, p.Order), p.Page, scanSubmissionRows)
	if err != nil {
		return res, fmt.Errorf("listing submissions: %w", err)
	}
	return res, nil
}

// Delete removes a submission owned by userID.
func (r *SQLiteRepository) Delete(ctx context.Context, id, userID string) error {
	return database.WithTx(ctx, r.conn, func(tx database.Querier) error {
		if err := checkOwner(ctx, tx, id, userID); err != nil {
			return err
		}
		if err := sightings.DeleteAll(ctx, tx, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM submissions WHERE id = ? AND user_id = ?", id, userID)
		if err != nil {
			return fmt.Errorf("deleting submission: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 { //nolint:errcheck // sqlite always reports rows affected
			return ErrSubmissionNotFound
		}
		return nil
	})
}

// AddSighting appends a sighting to a submission owned by userID.
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
		added = &Sighting{Record: rec, SubmissionID: id}
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
		"SELECT COUNT(*) FROM submissions WHERE id = ? AND user_id = ?", id, userID,
	).Scan(&n); err != nil {
		return fmt.Errorf("checking submission owner: %w", err)
	}
	if n == 0 {
		return ErrSubmissionNotFound
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(rs rowScanner, s *Submission) error {
	var (
		clock, location, weather sql.NullString
		wind, season             sql.NullString
		temperature              sql.NullInt64
		consent                  int
		createdAt                string
	)
	if err := rs.Scan(&s.ID, &s.UserID, &s.Type, &s.Date, &clock, &location,
		&weather, &temperature, &wind, &season, &consent, &createdAt); err != nil {
		return err
	}

	s.Time = database.NullString(clock)
	s.Location = database.NullString(location)
	s.Weather = database.NullString(weather)
	if temperature.Valid {
		t := int(temperature.Int64)
		s.Temperature = &t
	}
	s.Wind = database.NullString(wind)
	s.Season = database.NullString(season)
	s.Consent = consent != 0
	s.CreatedAt = database.ParseTime(createdAt)
	return nil
}

func scanSubmissionRows(rows *sql.Rows) (Submission, error) {
	var s Submission
	err := scanSubmission(rows, &s)
	return s, err
}
