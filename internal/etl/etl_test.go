package etl

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"mitoref/internal/config"
	"mitoref/internal/storage"
	_ "mitoref/internal/storage/sqlite"
)

const datasetJSON = `[
  {"locus": "chrM:152", "alleles": ["T", "C"], "qual": 3.5},
  {"locus": "chr1:100", "alleles": ["A", "G"], "qual": 1.0},
  {"locus": "chrM:8701", "alleles": ["A", "G", "T"], "qual": 2.25}
]`

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/mito.json" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(datasetJSON))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testPipeline(t *testing.T, srv *httptest.Server) config.Pipeline {
	t.Helper()
	dir := t.TempDir()
	return config.Pipeline{
		Job:         "mito-test",
		InputPath:   srv.URL + "/mito.json",
		InputType:   "json",
		OutputPath:  filepath.Join(dir, "out.db"),
		DownloadDir: dir,
		FieldTypes:  map[string]string{"qual": "float"},
		Annotate:    map[string]string{"variant_id": "variant_id"},
	}
}

func quietOpts() Options {
	return Options{
		Logger:   log.New(io.Discard, "", 0),
		Progress: io.Discard,
	}
}

func TestRun_EndToEnd(t *testing.T) {
	srv := testServer(t)
	cfg := testPipeline(t, srv)

	sum, err := Run(context.Background(), cfg, quietOpts())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if sum.Parsed != 3 {
		t.Errorf("Parsed = %d, want 3", sum.Parsed)
	}
	if sum.FilteredOut != 1 {
		t.Errorf("FilteredOut = %d, want 1", sum.FilteredOut)
	}
	if sum.Written != 2 {
		t.Errorf("Written = %d, want 2", sum.Written)
	}
	if sum.Table != "mito_variants" {
		t.Errorf("Table = %q, want mito_variants", sum.Table)
	}

	db, err := sql.Open("sqlite", cfg.OutputPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var locus, alleles, variantID string
	var qual float64
	err = db.QueryRow(
		"SELECT locus, alleles, variant_id, qual FROM mito_variants WHERE locus = ?",
		"chrM:152",
	).Scan(&locus, &alleles, &variantID, &qual)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if alleles != `["T","C"]` {
		t.Errorf("alleles = %q, want [\"T\",\"C\"]", alleles)
	}
	if variantID != "chrM:152:T>C" {
		t.Errorf("variant_id = %q", variantID)
	}
	if qual != 3.5 {
		t.Errorf("qual = %v, want 3.5", qual)
	}

	var keyHash int64
	if err := db.QueryRow("SELECT key_hash FROM mito_variants WHERE locus = 'chrM:8701'").Scan(&keyHash); err != nil {
		t.Fatalf("key_hash query: %v", err)
	}
	if keyHash == 0 {
		t.Errorf("key_hash not populated")
	}
}

func TestRun_ExistingOutputNeedsForce(t *testing.T) {
	srv := testServer(t)
	cfg := testPipeline(t, srv)
	ctx := context.Background()

	if _, err := Run(ctx, cfg, quietOpts()); err != nil {
		t.Fatalf("first Run: %v", err)
	}

	_, err := Run(ctx, cfg, quietOpts())
	if !errors.Is(err, storage.ErrOutputExists) {
		t.Fatalf("second Run err = %v, want ErrOutputExists", err)
	}

	opts := quietOpts()
	opts.Force = true
	sum, err := Run(ctx, cfg, opts)
	if err != nil {
		t.Fatalf("forced Run: %v", err)
	}
	if sum.Written != 2 {
		t.Errorf("forced Written = %d, want 2", sum.Written)
	}
}

func TestRun_RejectsInvalidConfig(t *testing.T) {
	cfg := config.Pipeline{Job: "bad", InputPath: "ftp://example.com/x", OutputPath: "out.db"}
	if _, err := Run(context.Background(), cfg, quietOpts()); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestDestinationTable(t *testing.T) {
	cases := []struct {
		name string
		cfg  config.Pipeline
		want string
	}{
		{"sqlite default", config.Pipeline{OutputPath: "out.db"}, "mito_variants"},
		{"explicit table", config.Pipeline{Storage: config.Storage{DB: config.DBConfig{Table: "custom"}}}, "custom"},
		{"postgres output path", config.Pipeline{
			OutputPath: "public.mito",
			Storage:    config.Storage{Kind: "postgres"},
		}, "public.mito"},
	}
	for _, tc := range cases {
		if got := destinationTable(tc.cfg); got != tc.want {
			t.Errorf("%s: destinationTable = %q, want %q", tc.name, got, tc.want)
		}
	}
}
