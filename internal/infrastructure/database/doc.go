// Package database provides SQLite connectivity for the WildTrace API.
//
// This package manages:
//   - The connection pool (WAL mode, busy timeout, foreign keys on)
//   - Versioned schema migrations with .up.sql and .down.sql files
//   - Scoped connection and transaction helpers (WithConn, WithTx)
//   - Conversions between Go values and nullable columns
//
// All queries use bound parameters. Timestamps are stored as RFC 3339 text
// in UTC.
//
// Usage:
//
//	db, err := database.Open(database.Config{Path: cfg.Database.Path, WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    return err
//	}
package database
