package parser

import (
	"io"

	"mitoref/pkg/records"
)

// Parser turns a byte stream into a row table. Implementations exist for
// variant-call files (vcf) and delimited tabular text (table); JSON inputs
// are first rewritten to TSV by the normalize package and then parsed as
// tabular text.
type Parser interface {
	Parse(r io.Reader) (*records.Table, error)
}
