package table

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestParse_TSVWithTypeHints(t *testing.T) {
	in := "locus\talleles\tac\taf\tpass\nchrM:1\tA,G\t12\t0.5\ttrue\nchrM:2\tC,T\t\t0.1\tfalse\n"
	p := NewParser(Options{Types: map[string]string{
		"alleles": "list", "ac": "int", "af": "float", "pass": "bool",
	}})

	tbl, err := p.Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !reflect.DeepEqual(tbl.Columns, []string{"locus", "alleles", "ac", "af", "pass"}) {
		t.Fatalf("columns = %v", tbl.Columns)
	}

	r := tbl.Rows[0]
	if r.String("locus") != "chrM:1" {
		t.Fatalf("locus = %q", r.String("locus"))
	}
	if !reflect.DeepEqual(r.Strings("alleles"), []string{"A", "G"}) {
		t.Fatalf("alleles = %#v", r["alleles"])
	}
	if r["ac"] != int64(12) || r["af"] != 0.5 || r["pass"] != true {
		t.Fatalf("typed values wrong: %#v", r)
	}
	// Empty cell becomes nil even with an int hint.
	if tbl.Rows[1]["ac"] != nil {
		t.Fatalf("empty cell should be nil: %#v", tbl.Rows[1])
	}
}

func TestParse_WhitespaceDelimited(t *testing.T) {
	in := "locus  ac\nchrM:5   7\n"
	tbl, err := NewParser(Options{Types: map[string]string{"ac": "int"}}).Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if tbl.Rows[0]["ac"] != int64(7) || tbl.Rows[0].String("locus") != "chrM:5" {
		t.Fatalf("row = %#v", tbl.Rows[0])
	}
}

func TestParse_UnhintedColumnsStayText(t *testing.T) {
	in := "a\tb\n1\t2\n"
	tbl, err := NewParser(Options{}).Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if tbl.Rows[0]["a"] != "1" || tbl.Rows[0]["b"] != "2" {
		t.Fatalf("row = %#v", tbl.Rows[0])
	}
}

func TestParse_Failures(t *testing.T) {
	cases := []struct {
		name string
		in   string
		opt  Options
	}{
		{"empty input", "", Options{}},
		{"ragged row", "a\tb\n1\n", Options{}},
		{"bad int", "a\nx\n", Options{Types: map[string]string{"a": "int"}}},
		{"bad float", "a\nx\n", Options{Types: map[string]string{"a": "float"}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := NewParser(c.opt).Parse(strings.NewReader(c.in))
			if !errors.Is(err, ErrMalformedTable) {
				t.Fatalf("got %v, want ErrMalformedTable", err)
			}
		})
	}
}
