// Package vcf parses Variant Call Format files into row tables.
//
// Only the row-level portion of the data is materialized: CHROM, POS, ID,
// REF, ALT, QUAL, FILTER, and INFO. FORMAT and per-sample columns are
// ignored. Chromosome labels are normalized through the contig recoding map
// as they are read, so downstream stages only ever see canonical names.
//
// Input may be plain text or gzip/bgzip compressed; compression is detected
// by magic number, so block-gzipped ".bgz" files need no special flag.
package vcf

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"mitoref/internal/contig"
	"mitoref/pkg/records"
)

// ErrMalformedVCF is returned for rows that do not carry the fixed VCF
// columns.
var ErrMalformedVCF = errors.New("vcf: malformed input")

// Columns is the fixed column order of the row table produced by Parse.
var Columns = []string{"locus", "alleles", "rsid", "qual", "filters", "info"}

// fixedFields is the number of row-level VCF columns (CHROM..INFO).
const fixedFields = 8

// Parser parses VCF input. The zero value is ready to use.
type Parser struct{}

// NewParser constructs a Parser.
func NewParser() *Parser { return &Parser{} }

// Parse reads the VCF stream and returns its row table. Each record has:
//
//	locus   string   recoded contig + ":" + position
//	alleles []string reference allele followed by the alternate alleles
//	rsid    string   ID column ("." becomes nil)
//	qual    float64  QUAL column ("." becomes nil)
//	filters string   FILTER column ("." becomes nil)
//	info    string   raw INFO column
func (p *Parser) Parse(r io.Reader) (*records.Table, error) {
	body, err := maybeGunzip(r)
	if err != nil {
		return nil, err
	}

	sc := bufio.NewScanner(body)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var rows []records.Record
	sawHeader := false
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		switch {
		case strings.HasPrefix(text, "##"):
			continue
		case strings.HasPrefix(text, "#"):
			sawHeader = true
			continue
		case strings.TrimSpace(text) == "":
			continue
		}
		rec, err := parseRow(text, line)
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("vcf: read: %w", err)
	}
	if !sawHeader && len(rows) == 0 {
		return nil, fmt.Errorf("%w: no #CHROM header and no data rows", ErrMalformedVCF)
	}
	return records.NewTable(Columns, rows), nil
}

// parseRow parses one data line into a record.
func parseRow(text string, line int) (records.Record, error) {
	fields := strings.Split(text, "\t")
	if len(fields) < fixedFields {
		return nil, fmt.Errorf("%w: line %d has %d fields, want at least %d", ErrMalformedVCF, line, len(fields), fixedFields)
	}

	chrom := contig.Recode(fields[0])
	pos, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: line %d: bad position %q", ErrMalformedVCF, line, fields[1])
	}

	alleles := []string{fields[3]}
	if alt := fields[4]; alt != "." && alt != "" {
		alleles = append(alleles, strings.Split(alt, ",")...)
	}

	rec := records.Record{
		"locus":   fmt.Sprintf("%s:%d", chrom, pos),
		"alleles": alleles,
		"rsid":    dotToNil(fields[2]),
		"filters": dotToNil(fields[6]),
		"info":    fields[7],
		"qual":    nil,
	}
	if fields[5] != "." && fields[5] != "" {
		q, err := strconv.ParseFloat(fields[5], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad qual %q", ErrMalformedVCF, line, fields[5])
		}
		rec["qual"] = q
	}
	return rec, nil
}

func dotToNil(s string) any {
	if s == "." || s == "" {
		return nil
	}
	return s
}

// maybeGunzip wraps r in a gzip reader when the stream starts with the gzip
// magic number. bgzip files are gzip multistream files, which compress/gzip
// decodes transparently.
func maybeGunzip(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	sig, err := br.Peek(2)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("vcf: read: %w", err)
	}
	if len(sig) == 2 && sig[0] == 0x1f && sig[1] == 0x8b {
		gr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("vcf: gunzip: %w", err)
		}
		return gr, nil
	}
	return br, nil
}
