// Package table parses delimited tabular text (TSV or whitespace separated)
// into row tables, applying caller-supplied scalar type hints per column.
package table

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"mitoref/pkg/records"
)

// ErrMalformedTable is returned for inputs whose rows do not line up with
// the header or whose values contradict a type hint.
var ErrMalformedTable = errors.New("table: malformed input")

// Options configures the tabular parser.
type Options struct {
	// Types maps column name to a type hint: "str", "int", "float", "bool",
	// or "list" (comma-separated strings, used for allele sets). Columns
	// without a hint are loaded as text.
	Types map[string]string
}

// Parser parses delimited text according to Options. It is safe to reuse
// across inputs, but Parser itself is not concurrency-safe.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// Parse reads the whole stream: the first line is the header, every
// following non-empty line one row. Lines are split on tabs when the header
// contains one, otherwise on runs of whitespace.
func (p *Parser) Parse(r io.Reader) (*records.Table, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, fmt.Errorf("table: read header: %w", err)
		}
		return nil, fmt.Errorf("%w: empty input", ErrMalformedTable)
	}
	headerLine := sc.Text()
	split := splitWhitespace
	if strings.ContainsRune(headerLine, '\t') {
		split = splitTabs
	}
	header := split(headerLine)

	var rows []records.Record
	line := 1
	for sc.Scan() {
		line++
		text := sc.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		fields := split(text)
		if len(fields) != len(header) {
			return nil, fmt.Errorf("%w: line %d has %d fields, header has %d", ErrMalformedTable, line, len(fields), len(header))
		}
		rec := make(records.Record, len(header))
		for i, col := range header {
			v, err := coerce(fields[i], p.opt.Types[col])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d, column %q: %v", ErrMalformedTable, line, col, err)
			}
			rec[col] = v
		}
		rows = append(rows, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("table: read: %w", err)
	}
	return records.NewTable(header, rows), nil
}

func splitTabs(s string) []string       { return strings.Split(s, "\t") }
func splitWhitespace(s string) []string { return strings.Fields(s) }

// coerce applies one type hint to a raw cell. Empty cells become nil
// regardless of hint.
func coerce(raw, hint string) (any, error) {
	if raw == "" {
		return nil, nil
	}
	switch hint {
	case "int":
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not an int", raw)
		}
		return n, nil
	case "float":
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a float", raw)
		}
		return f, nil
	case "bool":
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%q is not a bool", raw)
		}
		return b, nil
	case "list":
		return strings.Split(raw, ","), nil
	default:
		return raw, nil
	}
}
