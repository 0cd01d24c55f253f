// Package storage contains storage-agnostic contracts for persisting the
// keyed variant table, plus the writer that enforces overwrite semantics.
// Concrete engines (sqlite, postgres) live in subpackages and register
// themselves with the factory at init time.
package storage

import (
	"context"
	"errors"
)

// ErrOutputExists is returned when the destination already holds a table and
// the caller did not request a forced write.
var ErrOutputExists = errors.New("storage: output already exists")

// Config selects and configures a storage backend.
type Config struct {
	// Kind names the backend, e.g. "sqlite" or "postgres".
	Kind string

	// DSN is the backend connection string. For sqlite this is the output
	// database file path.
	DSN string

	// Table is the destination table name.
	Table string

	// Options carries engine-specific knobs, passed through from
	// storage.db.options untouched.
	Options map[string]any
}

// Repository is the narrow contract the pipeline needs from a table engine.
// Any engine satisfying it is substitutable.
type Repository interface {
	// Exists reports whether the destination table already holds data from
	// a previous run.
	Exists(ctx context.Context) (bool, error)

	// Reset removes any prior content at the destination so a forced write
	// can replace it.
	Reset(ctx context.Context) error

	// CreateTable applies the DDL for the given definition.
	CreateTable(ctx context.Context, def TableDef) error

	// CopyFrom bulk-inserts rows aligned to the given column order and
	// returns the number of rows inserted.
	CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error)

	// Close releases the underlying connection.
	Close()
}
