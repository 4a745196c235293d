// Package db opens and migrates the swipekit SQLite database.
//
// Only the evaluation harness and the CLI tools persist anything; the
// recognition core never touches SQL. One database file, WAL journal,
// schema managed by embedded golang-migrate migrations.
package db

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"

	_ "modernc.org/sqlite"
)

// DevMode switches getMigrationsFS to read migrations from the local
// source tree instead of the embedded copy, so schema edits during
// development do not require a rebuild.
var DevMode = false

//go:embed migrations
var migrationsFS embed.FS

// getMigrationsFS returns the migrations filesystem rooted at the
// directory containing the *.sql files.
func getMigrationsFS() (fs.FS, error) {
	if DevMode {
		return os.DirFS("internal/db/migrations"), nil
	}
	return fs.Sub(migrationsFS, "migrations")
}

// MigrationsFS exposes the embedded migrations for callers that drive
// migrations themselves (the migrate subcommand, tests).
func MigrationsFS() (fs.FS, error) {
	return getMigrationsFS()
}

// DB wraps the sql connection pool with migration helpers.
type DB struct {
	*sql.DB
}

// OpenDB opens (creating if absent) the database at path and applies the
// connection pragmas. The schema is left untouched; use NewDB or the
// migrate subcommand to bring it current.
func OpenDB(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db := &DB{sqlDB}
	if err := db.applyPragmas(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// NewDB opens the database at path and applies all pending embedded
// migrations.
func NewDB(path string) (*DB, error) {
	db, err := OpenDB(path)
	if err != nil {
		return nil, err
	}

	migFS, err := getMigrationsFS()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("load migrations: %w", err)
	}
	if err := db.MigrateUp(migFS); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// applyPragmas sets the connection pragmas every swipekit database uses.
// WAL keeps readers unblocked during eval inserts; synchronous=NORMAL is
// safe under WAL; the busy timeout covers overlapping tool invocations.
func (db *DB) applyPragmas() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("apply %q: %w", pragma, err)
		}
	}
	return nil
}
