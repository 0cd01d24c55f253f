package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeZip(t *testing.T, path string, members map[string]string) {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range members {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestMaybeExtractZip(t *testing.T) {
	dir := t.TempDir()
	zipPath := filepath.Join(dir, "dataset.tsv.zip")
	writeZip(t, zipPath, map[string]string{"dataset.tsv": "locus\talleles\nchrM:1\tA,G\n"})

	got, err := MaybeExtractZip(zipPath)
	if err != nil {
		t.Fatalf("MaybeExtractZip: %v", err)
	}
	want := filepath.Join(dir, "dataset.tsv")
	if got != want {
		t.Fatalf("working path = %q, want %q", got, want)
	}
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("extracted file missing: %v", err)
	}
	if string(data) != "locus\talleles\nchrM:1\tA,G\n" {
		t.Fatalf("extracted content = %q", data)
	}
}

func TestMaybeExtractZip_NoOpForOtherSuffixes(t *testing.T) {
	got, err := MaybeExtractZip("/tmp/whatever.vcf.gz")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/tmp/whatever.vcf.gz" {
		t.Fatalf("path rewritten for non-zip input: %q", got)
	}
}

func TestMaybeExtractZip_CorruptArchive(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.zip")
	if err := os.WriteFile(bad, []byte("this is not a zip"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := MaybeExtractZip(bad)
	if !errors.Is(err, ErrCorruptArchive) {
		t.Fatalf("got %v, want ErrCorruptArchive", err)
	}
}
