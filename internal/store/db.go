// Package store provides SQLite persistence for birthlog: a key-value table
// for whole-blob engine state and a table of birth records.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// busyTimeoutMillis is how long a writer waits on a lock held by another
// process (a running `serve` next to a CLI invocation) before SQLITE_BUSY.
const busyTimeoutMillis = 5000

// DB wraps the birthlog SQLite database. All access goes through a single
// connection, so writers from one process never contend for the file lock.
type DB struct {
	conn *sql.DB
}

// Open opens or creates the SQLite database at dbPath, creating the parent
// directory if needed, and applies migrations.
func Open(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}
	return open(fileDSN(dbPath, "journal_mode(WAL)", fmt.Sprintf("busy_timeout(%d)", busyTimeoutMillis)))
}

// OpenInMemory opens a private in-memory database, useful for testing.
func OpenInMemory() (*DB, error) {
	return open(":memory:")
}

// fileDSN builds a modernc.org/sqlite URI. Pragmas passed as _pragma query
// parameters run on every connection the pool opens, not just the first.
func fileDSN(path string, pragmas ...string) string {
	q := url.Values{}
	for _, p := range pragmas {
		q.Add("_pragma", p)
	}
	u := url.URL{Scheme: "file", Opaque: filepath.ToSlash(path), RawQuery: q.Encode()}
	return u.String()
}

func open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// One connection serializes every statement in the process. It also keeps
	// an in-memory database from splitting into one database per connection.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.Migrate(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return db, nil
}

// Ping reports whether the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
