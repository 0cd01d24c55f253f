package postgres

import (
	"reflect"
	"testing"

	"mitoref/internal/storage"
)

// Connection-level behavior needs a live server; these tests pin the pure
// SQL-rendering helpers.

func TestRenderDDL(t *testing.T) {
	def := storage.TableDef{
		Columns: []storage.ColumnDef{
			{Name: "locus", Type: "text"},
			{Name: "alleles", Type: "text"},
			{Name: "qual", Type: "real"},
			{Name: "key_hash", Type: "integer"},
			{Name: "pass", Type: "boolean"},
		},
		Key: []string{"locus", "alleles"},
	}
	got := renderDDL("public.mito_variants", def)
	want := `CREATE TABLE "public"."mito_variants" ("locus" TEXT, "alleles" TEXT, "qual" DOUBLE PRECISION, "key_hash" BIGINT, "pass" BOOLEAN, PRIMARY KEY ("locus", "alleles"))`
	if got != want {
		t.Fatalf("ddl = %q\nwant %q", got, want)
	}
}

func TestTableIdent(t *testing.T) {
	if got := tableIdent("public.mito_variants"); !reflect.DeepEqual([]string(got), []string{"public", "mito_variants"}) {
		t.Fatalf("ident = %v", got)
	}
	if got := tableIdent("mito_variants"); !reflect.DeepEqual([]string(got), []string{"mito_variants"}) {
		t.Fatalf("ident = %v", got)
	}
}

func TestPgIdentQuoting(t *testing.T) {
	if got := pgIdent(`wei"rd`); got != `"wei""rd"` {
		t.Fatalf("pgIdent = %q", got)
	}
}
