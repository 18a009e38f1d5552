// Package sqlite is the Store implementation backed by
// github.com/ncruces/go-sqlite3, the teacher's pure-Go SQLite driver. A
// single *sql.DB handles reads and non-conflicting writes; exclusive
// writers acquire a dedicated *sql.Conn and issue BEGIN IMMEDIATE
// themselves (see retry.go), since database/sql's own transaction pooling
// can silently hand out a connection that never gets the write lock.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// SQLiteStorage implements storage.Store.
type SQLiteStorage struct {
	db   *sql.DB
	path string

	busyTimeout time.Duration
	maxRetries  int
}

// Options configures Open. Zero values fall back to the package defaults.
// The busy-timeout default matches internal/config's StoreBusyTimeoutMS;
// MaxRetries here counts BEGIN IMMEDIATE retries and is unrelated to the
// per-task max_retries knob in internal/config.
type Options struct {
	BusyTimeoutMS int
	MaxRetries    int
}

const (
	defaultBusyTimeoutMS = 5000
	defaultMaxRetries    = 5
)

// sqliteConnString builds the ncruces/go-sqlite3 DSN, encoding pragmas as
// query parameters the way the teacher's doctor/fix tooling does: WAL mode
// for concurrent readers during a writer's transaction, foreign keys on,
// a driver-level busy timeout as a backstop behind the application-level
// retry loop, and SQLite-native time formatting so DATETIME columns
// round-trip through database/sql as time.Time without manual parsing.
func sqliteConnString(path string, busyTimeoutMS int) string {
	q := url.Values{}
	q.Set("_pragma", fmt.Sprintf("busy_timeout(%d)", busyTimeoutMS))
	q.Add("_pragma", "foreign_keys(ON)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Set("_time_format", "sqlite")
	return "file:" + path + "?" + q.Encode()
}

// Open opens (creating if necessary) the SQLite-backed store at path,
// applies the schema, and runs pending migrations.
func Open(ctx context.Context, path string, opts Options) (*SQLiteStorage, error) {
	if opts.BusyTimeoutMS == 0 {
		opts.BusyTimeoutMS = defaultBusyTimeoutMS
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = defaultMaxRetries
	}

	db, err := sql.Open("sqlite3", sqliteConnString(path, opts.BusyTimeoutMS))
	if err != nil {
		return nil, wrapDBError("open database", err)
	}
	// A single exclusive writer at a time; BEGIN IMMEDIATE serializes the
	// rest through the retry loop in retry.go rather than through the
	// pool, so this only needs to be large enough for concurrent readers.
	db.SetMaxOpenConns(8)

	s := &SQLiteStorage{
		db:          db,
		path:        path,
		busyTimeout: time.Duration(opts.BusyTimeoutMS) * time.Millisecond,
		maxRetries:  opts.MaxRetries,
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, wrapDBError("apply schema", err)
	}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, wrapDBError("run migrations", err)
	}
	return s, nil
}

// Close closes the underlying database handle.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
