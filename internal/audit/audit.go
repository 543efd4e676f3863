// Package audit implements the append-only fix audit log: a single
// audit_log table recording every fix attempt with before/after geometry
// and rationale, backed by SQLite (modernc.org/sqlite, pure Go, no CGo).
package audit

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver
)

// Store owns the durable audit_log table. It is the sole writer to its
// backing database file.
type Store struct {
	db *sql.DB
}

// Open creates (or reopens) a SQLite-backed audit store at path. Schema
// creation is idempotent, so reopening an existing store never loses
// rows.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma %q: %w", pragma, err)
		}
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create audit schema: %w", err)
	}

	return &Store{db: db}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS audit_log (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp       TEXT    NOT NULL,
	session_id      TEXT    NOT NULL DEFAULT '',
	feature_id      TEXT    NOT NULL,
	error_kind      TEXT    NOT NULL,
	error_id        TEXT    NOT NULL,
	fix_kind        TEXT    NOT NULL,
	tier            TEXT    NOT NULL,
	confidence      REAL    NOT NULL,
	rationale       TEXT,
	before_wkt      TEXT,
	after_wkt       TEXT,
	action          TEXT    NOT NULL,
	validation_ok   INTEGER NOT NULL DEFAULT 1,
	new_errors      INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_audit_session ON audit_log(session_id);
CREATE INDEX IF NOT EXISTS idx_audit_feature ON audit_log(feature_id);
CREATE INDEX IF NOT EXISTS idx_audit_error_kind ON audit_log(error_kind);
`

func createSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
