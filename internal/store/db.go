// Package store provides the agent's local persistence: a single
// SQLite table of cached credentials used for offline login.
package store

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite" // pure-Go sqlite driver, no cgo on the kiosk image
)

const schema = `
CREATE TABLE IF NOT EXISTS credentials (
    identifier     TEXT PRIMARY KEY,
    user_id        TEXT NOT NULL DEFAULT '',
    full_name      TEXT NOT NULL DEFAULT '',
    phone          TEXT NOT NULL DEFAULT '',
    password_hash  TEXT NOT NULL,
    role           TEXT NOT NULL,
    is_active      INTEGER NOT NULL DEFAULT 1,
    last_sync_at   INTEGER NOT NULL DEFAULT 0,
    synced         INTEGER NOT NULL DEFAULT 0,
    address        TEXT NOT NULL DEFAULT '',
    date_of_birth  TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_credentials_role ON credentials(role);
CREATE INDEX IF NOT EXISTS idx_credentials_synced ON credentials(synced);
`

// Open opens (or creates) the credential database at path and applies
// the schema.  Use ":memory:" for tests.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// The store serializes writes at the statement level; a single
	// connection avoids SQLITE_BUSY between concurrent writers.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
