// Package sqlite implements a SQLite-backed storage.Repository using
// database/sql. The output database file is the pipeline's output path, so a
// written table is a single self-contained artifact. Inserts run batched
// inside transactions; SQLite has no dedicated bulk-load API but
// transactions keep performance acceptable for reference-dataset volumes.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // cgo-free SQLite driver

	"mitoref/internal/config"
	"mitoref/internal/storage"
)

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return NewRepository(ctx, Config{DSN: cfg.DSN, Table: cfg.Table, Options: cfg.Options})
	})
}

// Config holds SQLite repository configuration derived from storage.Config.
type Config struct {
	// DSN is the database file path (the pipeline's output_path).
	DSN string

	// Table is the destination table name, e.g. "mito_variants".
	Table string

	// Options tunes the connection:
	//   busy_timeout_ms  int     PRAGMA busy_timeout (default 5000)
	//   journal_mode     string  PRAGMA journal_mode (default: driver's)
	Options config.Options
}

// Repository is a SQLite-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository opens the SQLite database at cfg.DSN.
func NewRepository(ctx context.Context, cfg Config) (*Repository, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	if strings.TrimSpace(cfg.Table) == "" {
		return nil, fmt.Errorf("sqlite: table must not be empty")
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	if err := applyPragmas(pingCtx, db, cfg.Options); err != nil {
		db.Close()
		return nil, err
	}

	return &Repository{db: db, cfg: cfg}, nil
}

// applyPragmas tunes the connection from the engine-specific options.
func applyPragmas(ctx context.Context, db *sql.DB, opts config.Options) error {
	timeout := opts.Int("busy_timeout_ms", 5000)
	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout = %d", timeout)); err != nil {
		return fmt.Errorf("sqlite: busy_timeout: %w", err)
	}
	if mode := opts.String("journal_mode", ""); mode != "" {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = "+mode); err != nil {
			return fmt.Errorf("sqlite: journal_mode: %w", err)
		}
	}
	return nil
}

// Exists reports whether the destination table is already present in the
// database file.
func (r *Repository) Exists(ctx context.Context) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?",
		r.cfg.Table,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("sqlite: check table: %w", err)
	}
	return n > 0, nil
}

// Reset drops the destination table so a forced write can replace it.
func (r *Repository) Reset(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(r.cfg.Table)); err != nil {
		return fmt.Errorf("sqlite: drop table: %w", err)
	}
	return nil
}

// CreateTable applies the DDL for def, including the composite primary key.
func (r *Repository) CreateTable(ctx context.Context, def storage.TableDef) error {
	if _, err := r.db.ExecContext(ctx, renderDDL(def)); err != nil {
		return fmt.Errorf("sqlite: create table: %w", err)
	}
	return nil
}

// renderDDL renders a CREATE TABLE statement in the SQLite dialect. Column
// names come from input file headers, so every identifier is quoted.
func renderDDL(def storage.TableDef) string {
	parts := make([]string, 0, len(def.Columns)+1)
	for _, c := range def.Columns {
		parts = append(parts, fmt.Sprintf("%s %s", quoteIdent(c.Name), mapType(c.Type)))
	}
	if len(def.Key) > 0 {
		parts = append(parts, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(quoteIdents(def.Key), ", ")))
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(def.Name), strings.Join(parts, ", "))
}

// quoteIdent quotes a single identifier.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteIdents(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = quoteIdent(n)
	}
	return out
}

// mapType maps logical column types onto SQLite storage classes.
func mapType(logical string) string {
	switch logical {
	case "integer", "boolean":
		return "INTEGER"
	case "real":
		return "REAL"
	default:
		return "TEXT"
	}
}

// CopyFrom inserts the given rows into the configured table using a single
// transaction and a prepared INSERT statement.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("sqlite: CopyFrom: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	placeholders := make([]string, len(columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	stmtSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(r.cfg.Table),
		strings.Join(quoteIdents(columns), ", "),
		strings.Join(placeholders, ", "),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, row := range rows {
		if len(row) != len(columns) {
			_ = tx.Rollback()
			return 0, fmt.Errorf("sqlite: CopyFrom: row length %d != columns length %d", len(row), len(columns))
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("sqlite: insert: %w", err)
		}
		inserted++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit: %w", err)
	}
	return inserted, nil
}

// Close releases the database handle.
func (r *Repository) Close() { _ = r.db.Close() }

// Ensure Repository satisfies the interface at compile time.
var _ storage.Repository = (*Repository)(nil)
