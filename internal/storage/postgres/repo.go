// Package postgres implements a Postgres-backed storage.Repository using
// pgx v5. Rows land via the COPY protocol, which is the fastest bulk path
// Postgres offers.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mitoref/internal/storage"
)

func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return NewRepository(ctx, Config{DSN: cfg.DSN, Table: cfg.Table})
	})
}

// Config holds Postgres repository configuration.
type Config struct {
	// DSN is the pgxpool connection string.
	DSN string

	// Table is the target table name, optionally schema-qualified
	// ("public.mito_variants").
	Table string
}

// Repository is a Postgres-backed implementation of storage.Repository.
type Repository struct {
	pool *pgxpool.Pool
	cfg  Config
}

// NewRepository connects to the database described by cfg.DSN.
func NewRepository(ctx context.Context, cfg Config) (*Repository, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("postgres: DSN must not be empty")
	}
	if strings.TrimSpace(cfg.Table) == "" {
		return nil, fmt.Errorf("postgres: table must not be empty")
	}
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	return &Repository{pool: pool, cfg: cfg}, nil
}

// Exists reports whether the destination table is already present.
func (r *Repository) Exists(ctx context.Context) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		"SELECT to_regclass($1) IS NOT NULL", r.cfg.Table,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("postgres: check table: %w", err)
	}
	return exists, nil
}

// Reset drops the destination table so a forced write can replace it.
func (r *Repository) Reset(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, "DROP TABLE IF EXISTS "+pgFQN(r.cfg.Table)); err != nil {
		return fmt.Errorf("postgres: drop table: %w", err)
	}
	return nil
}

// CreateTable applies the DDL for def, including the composite primary key.
func (r *Repository) CreateTable(ctx context.Context, def storage.TableDef) error {
	if _, err := r.pool.Exec(ctx, renderDDL(r.cfg.Table, def)); err != nil {
		return fmt.Errorf("postgres: create table: %w", err)
	}
	return nil
}

// renderDDL renders a CREATE TABLE statement in the Postgres dialect.
func renderDDL(table string, def storage.TableDef) string {
	parts := make([]string, 0, len(def.Columns)+1)
	for _, c := range def.Columns {
		parts = append(parts, fmt.Sprintf("%s %s", pgIdent(c.Name), mapType(c.Type)))
	}
	if len(def.Key) > 0 {
		parts = append(parts, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(mapIdent(def.Key), ", ")))
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", pgFQN(table), strings.Join(parts, ", "))
}

// mapType maps logical column types onto Postgres types.
func mapType(logical string) string {
	switch logical {
	case "integer":
		return "BIGINT"
	case "real":
		return "DOUBLE PRECISION"
	case "boolean":
		return "BOOLEAN"
	default:
		return "TEXT"
	}
}

// CopyFrom bulk-inserts rows using the COPY protocol.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("postgres: CopyFrom: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}
	n, err := r.pool.CopyFrom(ctx, tableIdent(r.cfg.Table), columns, pgx.CopyFromRows(rows))
	if err != nil {
		return n, fmt.Errorf("postgres: copy: %w", err)
	}
	return n, nil
}

// Close releases the connection pool.
func (r *Repository) Close() { r.pool.Close() }

// tableIdent splits a dotted table name into a pgx.Identifier.
func tableIdent(table string) pgx.Identifier {
	return pgx.Identifier(strings.Split(table, "."))
}

// pgIdent quotes a single identifier.
func pgIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// pgFQN quotes each part of a dotted table name.
func pgFQN(table string) string {
	return strings.Join(mapIdent(strings.Split(table, ".")), ".")
}

func mapIdent(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = pgIdent(n)
	}
	return out
}

// Ensure Repository satisfies the interface at compile time.
var _ storage.Repository = (*Repository)(nil)
