package storage

import (
	"fmt"

	"mitoref/pkg/records"
)

// ColumnDef describes a single column in a table definition using simple,
// database-agnostic logical types ("text", "integer", "real", "boolean").
// Backends map them to their own SQL types at render time.
type ColumnDef struct {
	Name string
	Type string
}

// TableDef holds the destination table name, its ordered columns, and the
// key columns forming the composite primary key.
type TableDef struct {
	Name    string
	Columns []ColumnDef
	Key     []string
}

// InferTableDef derives a TableDef from a row table: one column per table
// column, typed by the first non-nil value seen in that column, defaulting
// to text. The table's established key becomes the primary key.
func InferTableDef(name string, t *records.Table) (TableDef, error) {
	if name == "" {
		return TableDef{}, fmt.Errorf("storage: missing table name")
	}
	defs := make([]ColumnDef, len(t.Columns))
	for i, col := range t.Columns {
		defs[i] = ColumnDef{Name: col, Type: inferType(t, col)}
	}
	return TableDef{Name: name, Columns: defs, Key: t.Key()}, nil
}

func inferType(t *records.Table, col string) string {
	for _, r := range t.Rows {
		switch r[col].(type) {
		case nil:
			continue
		case int64, int, uint64:
			return "integer"
		case float64:
			return "real"
		case bool:
			return "boolean"
		default:
			return "text"
		}
	}
	return "text"
}
