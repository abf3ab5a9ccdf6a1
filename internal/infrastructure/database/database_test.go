package database

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// openTestDB creates a temporary file-backed database for testing.
func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(Config{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	return db
}

func TestOpen(t *testing.T) {
	t.Run("creates nested directory and file", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "subdir", "nested", "test.db")

		db, err := Open(Config{Path: dbPath, WALMode: true, BusyTimeout: 5})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer db.Close() //nolint:errcheck // Test cleanup

		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != dbPath {
			t.Errorf("Path() = %v, want %v", db.Path(), dbPath)
		}
	})

	t.Run("pool size follows config", func(t *testing.T) {
		db, err := Open(Config{Path: filepath.Join(t.TempDir(), "pool.db"), MaxOpenConns: 4})
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer db.Close() //nolint:errcheck // Test cleanup

		if got := db.Stats().MaxOpenConnections; got != 4 {
			t.Errorf("MaxOpenConnections = %d, want 4", got)
		}
	})

	t.Run("zero pool size means one connection", func(t *testing.T) {
		db := openTestDB(t)
		if got := db.Stats().MaxOpenConnections; got != 1 {
			t.Errorf("MaxOpenConnections = %d, want 1", got)
		}
	})
}

func TestForeignKeysEnforced(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE parent (id INTEGER PRIMARY KEY);
		CREATE TABLE child (id INTEGER PRIMARY KEY, parent_id INTEGER NOT NULL REFERENCES parent(id));
	`); err != nil {
		t.Fatalf("CREATE error = %v", err)
	}

	if _, err := db.ExecContext(ctx, "INSERT INTO child (parent_id) VALUES (?)", 42); err == nil {
		t.Error("expected foreign key violation inserting orphan child")
	}
}

func TestHealthCheck(t *testing.T) {
	db := openTestDB(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestClose(t *testing.T) {
	db := openTestDB(t)

	if err := db.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	db.DB = nil
	if err := db.Close(); err != nil {
		t.Errorf("Close() on nil DB error = %v", err)
	}
}

func TestWithConn(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	t.Run("connection is returned to the pool", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			err := db.WithConn(ctx, func(conn Conn) error {
				var one int
				return conn.QueryRowContext(ctx, "SELECT 1").Scan(&one)
			})
			if err != nil {
				t.Fatalf("WithConn() iteration %d error = %v", i, err)
			}
		}
		if inUse := db.Stats().InUse; inUse != 0 {
			t.Errorf("InUse = %d after WithConn, want 0", inUse)
		}
	})

	t.Run("callback error is returned and connection released", func(t *testing.T) {
		sentinel := errors.New("boom")
		err := db.WithConn(ctx, func(Conn) error { return sentinel })
		if !errors.Is(err, sentinel) {
			t.Errorf("WithConn() error = %v, want sentinel", err)
		}
		if inUse := db.Stats().InUse; inUse != 0 {
			t.Errorf("InUse = %d after failed WithConn, want 0", inUse)
		}
	})

	t.Run("cancelled context fails acquisition", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		called := false
		err := db.WithConn(cctx, func(Conn) error { called = true; return nil })
		if err == nil {
			t.Error("expected error for cancelled context")
		}
		if called {
			t.Error("callback must not run without a connection")
		}
	})
}

func TestWithTx(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, "CREATE TABLE tx_test (id INTEGER PRIMARY KEY, value TEXT)"); err != nil {
		t.Fatalf("CREATE TABLE error = %v", err)
	}

	count := func(value string) int {
		t.Helper()
		var n int
		if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tx_test WHERE value = ?", value).Scan(&n); err != nil {
			t.Fatalf("SELECT error = %v", err)
		}
		return n
	}

	t.Run("commits on success", func(t *testing.T) {
		err := db.WithConn(ctx, func(conn Conn) error {
			return WithTx(ctx, conn, func(tx Querier) error {
				_, err := tx.ExecContext(ctx, "INSERT INTO tx_test (value) VALUES (?)", "committed")
				return err
			})
		})
		if err != nil {
			t.Fatalf("WithTx() error = %v", err)
		}
		if n := count("committed"); n != 1 {
			t.Errorf("committed rows = %d, want 1", n)
		}
	})

	t.Run("rolls back on error", func(t *testing.T) {
		sentinel := errors.New("abort")
		err := WithTx(ctx, db, func(tx Querier) error {
			if _, err := tx.ExecContext(ctx, "INSERT INTO tx_test (value) VALUES (?)", "rolled_back"); err != nil {
				return err
			}
			return sentinel
		})
		if !errors.Is(err, sentinel) {
			t.Fatalf("WithTx() error = %v, want sentinel", err)
		}
		if n := count("rolled_back"); n != 0 {
			t.Errorf("rolled back rows = %d, want 0", n)
		}
	})
}

func TestValueHelpers(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 30, 0, 0, time.FixedZone("CET", 3600))

	if got := FormatTime(ts); got != "2026-03-01T11:30:00Z" {
		t.Errorf("FormatTime() = %q", got)
	}
	if got := ParseTime("2026-03-01T11:30:00Z"); !got.Equal(ts) {
		t.Errorf("ParseTime() = %v, want %v", got, ts)
	}
	if !ParseTime("garbage").IsZero() {
		t.Error("ParseTime() of garbage should be zero")
	}
	if NullTime(sql.NullString{}) != nil {
		t.Error("NullTime() of NULL should be nil")
	}
	if p := NullString(sql.NullString{String: "x", Valid: true}); p == nil || *p != "x" {
		t.Errorf("NullString() = %v", p)
	}
	if NullInt(sql.NullInt64{}) != nil || NullFloat(sql.NullFloat64{}) != nil {
		t.Error("null numeric columns should map to nil")
	}
	if StringArg(nil) != nil || FloatArg(nil) != nil || TimeArg(nil) != nil {
		t.Error("nil optional args should bind NULL")
	}
	n := 7
	if IntArg(&n) != int64(7) {
		t.Errorf("IntArg() = %v", IntArg(&n))
	}
	if BoolToInt(true) != 1 || BoolToInt(false) != 0 {
		t.Error("BoolToInt mismatch")
	}
}

func TestJSONArray(t *testing.T) {
	type item struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}

	got, err := JSONArray[item](sql.NullString{String: `[{"id":1,"name":"a"},{"id":2,"name":"b"}]`, Valid: true})
	if err != nil {
		t.Fatalf("JSONArray() error = %v", err)
	}
	if len(got) != 2 || got[1].Name != "b" {
		t.Errorf("JSONArray() = %+v", got)
	}

	for _, raw := range []sql.NullString{{}, {String: "", Valid: true}, {String: "[]", Valid: true}, {String: "null", Valid: true}} {
		empty, err := JSONArray[item](raw)
		if err != nil {
			t.Fatalf("JSONArray(%q) error = %v", raw.String, err)
		}
		if empty == nil || len(empty) != 0 {
			t.Errorf("JSONArray(%q) = %#v, want empty non-nil slice", raw.String, empty)
		}
	}

	if _, err := JSONArray[item](sql.NullString{String: "{broken", Valid: true}); err == nil {
		t.Error("JSONArray() expected error for malformed JSON")
	}
}

func TestConstraintClassification(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE owners (id INTEGER PRIMARY KEY, code TEXT UNIQUE);
		CREATE TABLE pets (id INTEGER PRIMARY KEY, owner_id INTEGER NOT NULL REFERENCES owners(id));
		INSERT INTO owners (id, code) VALUES (1, 'a');
	`); err != nil {
		t.Fatalf("setup error = %v", err)
	}

	_, err := db.ExecContext(ctx, "INSERT INTO owners (code) VALUES (?)", "a")
	if !IsUniqueViolation(err) || IsForeignKeyViolation(err) {
		t.Errorf("duplicate code: unique=%v fk=%v (%v)", IsUniqueViolation(err), IsForeignKeyViolation(err), err)
	}

	_, err = db.ExecContext(ctx, "INSERT INTO pets (owner_id) VALUES (?)", 99)
	if !IsForeignKeyViolation(err) || IsUniqueViolation(err) {
		t.Errorf("orphan pet: unique=%v fk=%v (%v)", IsUniqueViolation(err), IsForeignKeyViolation(err), err)
	}

	if IsUniqueViolation(errors.New("plain")) || IsForeignKeyViolation(nil) {
		t.Error("non-sqlite errors must not be classified")
	}
}
