// Package database provides the SQLite connection used by the database-backed
// topology store.
//
// This package manages:
//   - Opening file or in-memory databases with busy timeout and optional WAL
//   - Versioned schema migrations read from an fs.FS (see the migrations package)
//   - Transaction helpers and health checks
//
// The database is only opened when topology.source is "database"; the report
// endpoint itself never touches it.
//
// Usage:
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS, "."); err != nil {
//	    return err
//	}
//
// Migration files are named YYYYMMDD_HHMMSS_description.up.sql with an
// optional matching .down.sql.
package database
