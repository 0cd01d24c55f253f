// Package records defines the row-oriented table model shared by the parser,
// transform, and storage layers. A Record is a loosely-typed map of column
// name to value; a Table is an ordered collection of Records with an optional
// composite key.
package records

// Record is a single row keyed by column name. Values are the parser's best
// typed representation (string, int64, float64, bool, []string, nil).
type Record map[string]any

// Clone returns a shallow copy of the record. Column values are shared;
// callers that mutate slice values must copy them first.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// String returns the value for col as a string, or "" when absent or not a
// string.
func (r Record) String(col string) string {
	if v, ok := r[col]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Strings returns the value for col as a []string, or nil when absent or of
// another type.
func (r Record) Strings(col string) []string {
	if v, ok := r[col]; ok {
		if ss, ok := v.([]string); ok {
			return ss
		}
	}
	return nil
}
