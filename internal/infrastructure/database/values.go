package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// TimeLayout is the storage format for every timestamp column.
// Values are always written in UTC so lexical order matches time order.
const TimeLayout = time.RFC3339

// FormatTime renders t for storage.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a stored timestamp, returning the zero time for
// values that are empty or malformed.
func ParseTime(s string) time.Time {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// NullTime converts a nullable timestamp column into a pointer.
func NullTime(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	t := ParseTime(ns.String)
	if t.IsZero() {
		return nil
	}
	return &t
}

// NullString converts a nullable text column into a pointer.
func NullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// NullInt converts a nullable integer column into a pointer.
func NullInt(ni sql.NullInt64) *int64 {
	if !ni.Valid {
		return nil
	}
	v := ni.Int64
	return &v
}

// NullFloat converts a nullable real column into a pointer.
func NullFloat(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	v := nf.Float64
	return &v
}

// StringArg converts an optional string into a bind argument, mapping
// nil to SQL NULL.
func StringArg(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// IntArg converts an optional integer into a bind argument.
func IntArg[T ~int | ~int64](v *T) any {
	if v == nil {
		return nil
	}
	return int64(*v)
}

// FloatArg converts an optional float into a bind argument.
func FloatArg(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

// TimeArg converts an optional timestamp into a bind argument.
func TimeArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return FormatTime(*t)
}

// BoolToInt maps a Go bool onto SQLite's integer booleans.
func BoolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// JSONArray decodes a column produced by json_group_array into a slice.
// NULL and empty values decode to an empty, non-nil slice.
func JSONArray[T any](raw sql.NullString) ([]T, error) {
	out := []T{}
	if !raw.Valid || raw.String == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(raw.String), &out); err != nil {
		return nil, fmt.Errorf("decoding aggregated column: %w", err)
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}
