package datastore

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/jbweber/homelab/nbdhcp/internal/migrations"
	_ "modernc.org/sqlite"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite
const DriverName = "sqlite"

// DefaultBusyTimeout is how long, in milliseconds, a connection waits on a
// locked database before a write fails with SQLITE_BUSY.
const DefaultBusyTimeout = "5000"

// Datastore owns the SQLite handle shared by the repositories.
type Datastore struct {
	DB *sql.DB
}

// WithPragma appends a _pragma parameter to dsn. The driver runs it on every
// connection the pool opens, unlike a one-off PRAGMA statement which only
// reaches the connection that executed it. A pragma already present in dsn
// is left alone.
func WithPragma(dsn, name, value string) string {
	if strings.Contains(dsn, "_pragma="+name+"(") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=" + name + "(" + value + ")"
}

// WithForeignKeys returns dsn with foreign key enforcement requested for
// every connection the pool opens. Cascading deletes depend on it.
func WithForeignKeys(dsn string) string {
	return WithPragma(dsn, "foreign_keys", "1")
}

// Open opens the database without running migrations. Every connection gets
// foreign keys and a busy timeout; busy_timeout goes first so the pragmas
// after it wait for locks too.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, WithForeignKeys(WithPragma(dsn, "busy_timeout", DefaultBusyTimeout)))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// New creates a new Datastore and runs migrations.
func New(dsn string) (*Datastore, error) {
	db, err := Open(dsn)
	if err != nil {
		return nil, err
	}
	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return &Datastore{DB: db}, nil
}

// Close releases the underlying database handle.
func (ds *Datastore) Close() error {
	return ds.DB.Close()
}
