package records

import (
	"fmt"
	"sort"
)

// Table is an in-memory row table with a stable column order and an optional
// composite key. It is the single currency between pipeline stages: parsers
// produce it, transforms rewrite it, storage consumes it.
//
// A Table is owned by exactly one pipeline at a time and is not safe for
// concurrent use.
type Table struct {
	Columns []string
	Rows    []Record

	key []string
}

// NewTable builds a Table from an ordered column list and rows.
func NewTable(columns []string, rows []Record) *Table {
	return &Table{Columns: columns, Rows: rows}
}

// Key returns the established key columns, or nil when KeyBy has not run.
func (t *Table) Key() []string { return t.key }

// HasColumn reports whether name is a declared column.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Filter returns a table containing only the rows for which keep returns
// true. Column order and key are preserved; rows are shared, not copied.
func (t *Table) Filter(keep func(Record) bool) *Table {
	out := &Table{Columns: t.Columns, key: t.key}
	for _, r := range t.Rows {
		if keep(r) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// Derivation computes a new column value from a row.
type Derivation func(Record) any

// WithColumns adds one derived column per entry in derive. Every derivation
// is evaluated against a snapshot of the row as it existed before this call,
// so derivations in the same batch never observe each other's output.
// Derivations are applied in sorted column-name order for determinism, but
// because evaluation is non-cumulative the order carries no semantics.
//
// Redefining an existing column is an error.
func (t *Table) WithColumns(derive map[string]Derivation) (*Table, error) {
	if len(derive) == 0 {
		return t, nil
	}

	names := make([]string, 0, len(derive))
	for name := range derive {
		if t.HasColumn(name) {
			return nil, fmt.Errorf("records: column %q already exists", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	out := &Table{
		Columns: append(append([]string{}, t.Columns...), names...),
		Rows:    make([]Record, len(t.Rows)),
		key:     t.key,
	}
	for i, row := range t.Rows {
		snapshot := row.Clone()
		next := row.Clone()
		for _, name := range names {
			next[name] = derive[name](snapshot)
		}
		out.Rows[i] = next
	}
	return out, nil
}

// KeyBy establishes a composite key over the named columns. The columns must
// exist; uniqueness is not checked here and is left to the storage layer.
func (t *Table) KeyBy(columns ...string) error {
	if len(columns) == 0 {
		return fmt.Errorf("records: KeyBy requires at least one column")
	}
	for _, c := range columns {
		if !t.HasColumn(c) {
			return fmt.Errorf("records: key column %q not in table", c)
		}
	}
	t.key = append([]string{}, columns...)
	return nil
}
