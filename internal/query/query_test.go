package query

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildtrace/wildtrace-api/internal/infrastructure/database"
)

func TestNewPage(t *testing.T) {
	assert.Equal(t, Page{Number: 1, Limit: 20}, NewPage(0, 0))
	assert.Equal(t, Page{Number: 3, Limit: 100}, NewPage(3, 500))
	assert.Equal(t, 20, NewPage(3, 10).Offset())
	assert.Equal(t, 0, NewPage(1, 10).Offset())
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name  string
		page  Page
		total int
		want  Pagination
	}{
		{"middle page", Page{2, 10}, 25, Pagination{2, 3, 25, true, true}},
		{"first page", Page{1, 10}, 25, Pagination{1, 3, 25, true, false}},
		{"last page", Page{3, 10}, 25, Pagination{3, 3, 25, false, true}},
		{"exact multiple", Page{2, 10}, 20, Pagination{2, 2, 20, false, true}},
		{"empty", Page{1, 20}, 0, Pagination{1, 0, 0, false, false}},
		{"past the end", Page{5, 10}, 25, Pagination{5, 3, 25, false, true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewPagination(tt.page, tt.total)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got.CurrentPage < got.TotalPages, got.HasNextPage)
		})
	}
}

func TestSortSpecResolve(t *testing.T) {
	spec := SortSpec{
		Columns: map[string]string{"name": "d.name", "createdAt": "d.created_at"},
		Default: "createdAt",
	}

	assert.Equal(t, Sort{Column: "d.name", Order: Asc}, spec.Resolve("name", "ASC"))
	assert.Equal(t, Sort{Column: "d.created_at", Order: Desc}, spec.Resolve("", ""))
	assert.Equal(t, Sort{Column: "d.created_at", Order: Desc}, spec.Resolve("name; DROP TABLE devices", "sideways"))
	assert.True(t, spec.Allowed("name"))
	assert.False(t, spec.Allowed("serial"))
}

func TestSortSQL(t *testing.T) {
	assert.Equal(t, "ORDER BY d.name ASC, d.id ASC", Sort{"d.name", Asc}.SQL("d.id"))
	assert.Equal(t, "ORDER BY d.id DESC", Sort{"d.id", Desc}.SQL("d.id"))
	assert.Equal(t, "ORDER BY d.id DESC", Sort{"d.id", Desc}.SQL(""))
}

func TestWhere(t *testing.T) {
	var w Where
	assert.True(t, w.Empty())
	assert.Equal(t, "", w.SQL())
	assert.Empty(t, w.Args())

	w.And("a = ?", 1).And("b BETWEEN ? AND ?", 2, 3)
	assert.Equal(t, "WHERE a = ? AND b BETWEEN ? AND ?", w.SQL())
	assert.Equal(t, []any{1, 2, 3}, w.Args())

	args := w.Args()
	args[0] = 99
	assert.Equal(t, 1, w.Args()[0], "Args must return a copy")
}

func TestContains(t *testing.T) {
	assert.Equal(t, "%trap%", Contains("trap"))
	assert.Equal(t, `%50\% \_off\\%`, Contains(`50% _off\`))
}

func TestSelectStatementsShareWhere(t *testing.T) {
	var w Where
	w.And("type_id = ?", 4)
	s := Select{Columns: "id, name", From: "devices", Where: w, TieBreaker: "id"}

	rows, rowArgs := s.RowsSQL(Sort{"name", Asc}, Page{Number: 2, Limit: 10})
	count, countArgs := s.CountSQL()

	assert.Equal(t, "SELECT id, name FROM devices WHERE type_id = ? ORDER BY name ASC, id ASC LIMIT ? OFFSET ?", rows)
	assert.Equal(t, []any{4, 10, 10}, rowArgs)
	assert.Equal(t, "SELECT COUNT(*) FROM devices WHERE type_id = ?", count)
	assert.Equal(t, []any{4}, countArgs)
}

func TestList(t *testing.T) {
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "q.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	ctx := context.Background()
	_, err = db.ExecContext(ctx, "CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT, kind INTEGER)")
	require.NoError(t, err)
	for i := 1; i <= 25; i++ {
		_, err = db.ExecContext(ctx, "INSERT INTO items (name, kind) VALUES (?, ?)",
			string(rune('a'+i-1)), i%2)
		require.NoError(t, err)
	}

	scan := func(rows *sql.Rows) (string, error) {
		var id int
		var name string
		err := rows.Scan(&id, &name)
		return name, err
	}

	t.Run("unfiltered count matches table", func(t *testing.T) {
		res, err := List(ctx, db, Select{Columns: "id, name", From: "items", TieBreaker: "id"},
			Sort{"name", Asc}, Page{Number: 2, Limit: 10}, scan)
		require.NoError(t, err)

		var manual int
		require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM items").Scan(&manual))
		assert.Equal(t, manual, res.TotalCount)
		assert.Equal(t, []string{"k", "l", "m", "n", "o", "p", "q", "r", "s", "t"}, res.Items)
	})

	t.Run("filtered count uses same predicate", func(t *testing.T) {
		var w Where
		w.And("kind = ?", 0)
		res, err := List(ctx, db, Select{Columns: "id, name", From: "items", Where: w},
			Sort{"id", Desc}, Page{Number: 1, Limit: 5}, scan)
		require.NoError(t, err)
		assert.Equal(t, 12, res.TotalCount)
		assert.Len(t, res.Items, 5)
	})

	t.Run("empty page returns empty slice", func(t *testing.T) {
		res, err := List(ctx, db, Select{Columns: "id, name", From: "items"},
			Sort{"id", Asc}, Page{Number: 9, Limit: 10}, scan)
		require.NoError(t, err)
		assert.NotNil(t, res.Items)
		assert.Empty(t, res.Items)
	})
}
