package config

import (
	"database/sql"
	"time"

	"github.com/jbweber/homelab/nbdhcp/internal/datastore"
)

// connectionPragmas are per-connection settings, so they travel in the DSN
// and reach every connection in the pool. busy_timeout must stay first.
var connectionPragmas = []struct{ name, value string }{
	{"busy_timeout", datastore.DefaultBusyTimeout},
	{"journal_mode", "WAL"},   // readers do not block the writer
	{"synchronous", "NORMAL"}, // safe with WAL
	{"temp_store", "MEMORY"},
}

// connectionDSN returns the DSN for the database file at path with the
// connection pragmas applied.
func connectionDSN(path string) string {
	dsn := path
	for _, p := range connectionPragmas {
		dsn = datastore.WithPragma(dsn, p.name, p.value)
	}
	return dsn
}

// OptimizeDatabaseConnection sizes the connection pool shared by the HTTP handlers
func OptimizeDatabaseConnection(db *sql.DB) {
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)
}

// ApplyPragmaOptimizations runs the database-wide maintenance pragmas.
// Per-connection pragmas belong in connectionPragmas.
func ApplyPragmaOptimizations(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA optimize",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return err
		}
	}

	return nil
}
