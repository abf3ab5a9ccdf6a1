package query

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/wildtrace/wildtrace-api/internal/infrastructure/database"
)

// Select describes a list statement. Columns and From are fixed SQL written
// by the repository; Where carries the user-driven predicate.
type Select struct {
	Columns string
	From    string
	Where   Where

	// TieBreaker is appended to ORDER BY for deterministic paging.
	TieBreaker string
}

// RowsSQL returns the page-fetch statement and its arguments.
func (s Select) RowsSQL(sort Sort, page Page) (string, []any) {
	stmt := fmt.Sprintf("SELECT %s FROM %s %s %s LIMIT ? OFFSET ?", //nolint:gosec // WHERE is parameterised, sort column is allow-listed
		s.Columns, s.From, s.Where.SQL(), sort.SQL(s.TieBreaker))
	return stmt, append(s.Where.Args(), page.Limit, page.Offset())
}

// CountSQL returns the COUNT statement sharing RowsSQL's predicate.
func (s Select) CountSQL() (string, []any) {
	stmt := fmt.Sprintf("SELECT COUNT(*) FROM %s %s", s.From, s.Where.SQL()) //nolint:gosec // WHERE is parameterised
	return stmt, s.Where.Args()
}

// ScanFunc reads one record from the current row.
type ScanFunc[T any] func(rows *sql.Rows) (T, error)

// List runs the count and page statements on q and scans the rows.
// Both statements run on the same connection one after the other.
func List[T any](ctx context.Context, q database.Querier, s Select, sort Sort, page Page, scan ScanFunc[T]) (Result[T], error) {
	countStmt, countArgs := s.CountSQL()
	var total int
	if err := q.QueryRowContext(ctx, countStmt, countArgs...).Scan(&total); err != nil {
		return Result[T]{}, fmt.Errorf("counting rows: %w", err)
	}

	rowsStmt, rowsArgs := s.RowsSQL(sort, page)
	rows, err := q.QueryContext(ctx, rowsStmt, rowsArgs...)
	if err != nil {
		return Result[T]{}, fmt.Errorf("querying rows: %w", err)
	}
	defer rows.Close()

	items := make([]T, 0, page.Limit)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return Result[T]{}, fmt.Errorf("scanning row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return Result[T]{}, fmt.Errorf("iterating rows: %w", err)
	}

	return Result[T]{Items: items, TotalCount: total}, nil
}
