// Package sighting stores animal-group sightings recorded under a parent
// record. Field observations and submissions keep their sightings in
// separate tables with the same shape; Table addresses one of them.
package sighting

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/wildtrace/wildtrace-api/internal/infrastructure/database"
)

// Record is a stored sighting without its parent reference.
type Record struct {
	ID             int64     `json:"id"`
	GroupName      string    `json:"group_name"`
	EstimatedCount int       `json:"estimated_count"`
	Behavior       *string   `json:"behavior"`
	LocationSeen   *string   `json:"location_seen"`
	Notes          *string   `json:"notes"`
	PhotoURL       *string   `json:"photo_url"`
	CreatedAt      time.Time `json:"created_at"`
}

// Input is the body accepted for a new sighting.
type Input struct {
	GroupName      string  `json:"group_name" validate:"required,max=255"`
	EstimatedCount *int    `json:"estimated_count" validate:"required,gte=0,lte=1000000"`
	Behavior       *string `json:"behavior" validate:"omitempty,max=1000"`
	LocationSeen   *string `json:"location_seen" validate:"omitempty,max=1000"`
	Notes          *string `json:"notes" validate:"omitempty,max=4000"`
	PhotoURL       *string `json:"photo_url" validate:"omitempty,max=2048"`
}

// Table is a sighting table and the column referencing its parent.
// Both names are fixed by the caller, never taken from input.
type Table struct {
	Name         string
	ParentColumn string
}

// Insert stores in under parentID and returns the new record.
func (t Table) Insert(ctx context.Context, q database.Querier, parentID string, in Input, now time.Time) (Record, error) {
	count := 0
	if in.EstimatedCount != nil {
		count = *in.EstimatedCount
	}
	created := database.FormatTime(now)

	res, err := q.ExecContext(ctx, fmt.Sprintf( //nolint:gosec // table and column are fixed identifiers
		`INSERT INTO %s (%s, group_name, estimated_count, behavior, location_seen, notes, photo_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, t.Name, t.ParentColumn),
		parentID, in.GroupName, count, database.StringArg(in.Behavior), database.StringArg(in.LocationSeen),
		database.StringArg(in.Notes), database.StringArg(in.PhotoURL), created,
	)
	if err != nil {
		return Record{}, fmt.Errorf("inserting sighting: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Record{}, fmt.Errorf("reading sighting id: %w", err)
	}

	return Record{
		ID:             id,
		GroupName:      in.GroupName,
		EstimatedCount: count,
		Behavior:       in.Behavior,
		LocationSeen:   in.LocationSeen,
		Notes:          in.Notes,
		PhotoURL:       in.PhotoURL,
		CreatedAt:      database.ParseTime(created),
	}, nil
}

// List returns the sightings under parentID ordered by id.
func (t Table) List(ctx context.Context, q database.Querier, parentID string) ([]Record, error) {
	rows, err := q.QueryContext(ctx, fmt.Sprintf( //nolint:gosec // table and column are fixed identifiers
		`SELECT id, group_name, estimated_count, behavior, location_seen, notes, photo_url, created_at
		FROM %s WHERE %s = ? ORDER BY id`, t.Name, t.ParentColumn), parentID)
	if err != nil {
		return nil, fmt.Errorf("querying sightings: %w", err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var (
			r                                    Record
			behavior, locationSeen, notes, photo sql.NullString
			createdAt                            string
		)
		if err := rows.Scan(&r.ID, &r.GroupName, &r.EstimatedCount, &behavior, &locationSeen,
			&notes, &photo, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning sighting: %w", err)
		}
		r.Behavior = database.NullString(behavior)
		r.LocationSeen = database.NullString(locationSeen)
		r.Notes = database.NullString(notes)
		r.PhotoURL = database.NullString(photo)
		r.CreatedAt = database.ParseTime(createdAt)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sightings: %w", err)
	}
	return out, nil
}

// DeleteAll removes every sighting under parentID.
func (t Table) DeleteAll(ctx context.Context, q database.Querier, parentID string) error {
	if _, err := q.ExecContext(ctx, fmt.Sprintf( //nolint:gosec // table and column are fixed identifiers
		"DELETE FROM %s WHERE %s = ?", t.Name, t.ParentColumn), parentID); err != nil {
		return fmt.Errorf("deleting sightings: %w", err)
	}
	return nil
}
