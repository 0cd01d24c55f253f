package httpds

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

func quietLogger() *log.Logger { return log.New(io.Discard, "", 0) }

func TestFetch_RejectsNonHTTPURL(t *testing.T) {
	c := NewClient(Config{})
	_, err := c.Fetch(context.Background(), "ftp://example.org/x.vcf", FetchOptions{Logger: quietLogger()})
	if !errors.Is(err, ErrInvalidURL) {
		t.Fatalf("got %v, want ErrInvalidURL", err)
	}
	_, err = c.Fetch(context.Background(), "", FetchOptions{Logger: quietLogger()})
	if !errors.Is(err, ErrInvalidURL) {
		t.Fatalf("empty url: got %v, want ErrInvalidURL", err)
	}
}

/*
TestFetch_ReusesFileMatchingContentLength verifies the cache-hit rule: when a
local file already has exactly the size announced by HEAD, Fetch must return
that path without issuing a GET.
*/
func TestFetch_ReusesFileMatchingContentLength(t *testing.T) {
	body := []byte("chrM\t1\t.\tA\tG\n")
	var gets atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodHead:
			w.Header().Set("Content-Length", "13")
		case http.MethodGet:
			gets.Add(1)
			w.Write(body)
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "test.tsv"), body, 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewClient(Config{})
	got, err := c.Fetch(context.Background(), srv.URL+"/test.tsv", FetchOptions{Dir: dir, Logger: quietLogger(), Progress: io.Discard})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got != filepath.Join(dir, "test.tsv") {
		t.Fatalf("path = %q", got)
	}
	if gets.Load() != 0 {
		t.Fatalf("download was invoked despite cache hit (%d GETs)", gets.Load())
	}
}

func TestFetch_DownloadsWhenSizeDiffers(t *testing.T) {
	body := []byte("locus\talleles\nchrM:1\tA,G\n")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	dir := t.TempDir()
	// Stale partial file of the wrong size.
	if err := os.WriteFile(filepath.Join(dir, "test.tsv"), []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewClient(Config{})
	got, err := c.Fetch(context.Background(), srv.URL+"/test.tsv", FetchOptions{Dir: dir, Logger: quietLogger(), Progress: io.Discard})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	data, err := os.ReadFile(got)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(body) {
		t.Fatalf("downloaded content = %q", data)
	}
}

func TestFetch_SkipVerifySkipsHead(t *testing.T) {
	var heads atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			heads.Add(1)
		}
		w.Write([]byte("x\n"))
	}))
	defer srv.Close()

	c := NewClient(Config{})
	_, err := c.Fetch(context.Background(), srv.URL+"/data.txt", FetchOptions{
		Dir: t.TempDir(), SkipVerify: true, Logger: quietLogger(), Progress: io.Discard,
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if heads.Load() != 0 {
		t.Fatalf("HEAD issued despite skip_verify")
	}
}

// Servers that reject HEAD (405 etc.) only lose the reuse check; the
// download itself must still go through.
func TestFetch_HeadRejectionFallsThroughToGet(t *testing.T) {
	body := []byte("locus\talleles\nchrM:1\tA,G\n")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Write(body)
	}))
	defer srv.Close()

	dir := t.TempDir()
	c := NewClient(Config{})
	got, err := c.Fetch(context.Background(), srv.URL+"/test.tsv", FetchOptions{Dir: dir, Logger: quietLogger(), Progress: io.Discard})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	data, err := os.ReadFile(got)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(body) {
		t.Fatalf("downloaded %q, want %q", data, body)
	}
}

// The copy path is chosen by URL suffix: compressed artifacts stream in
// chunks, everything else is buffered whole and counted in lines. The
// reporter's final status line names the unit, which pins the chosen path.
func TestFetch_TransferModeMatchesSuffix(t *testing.T) {
	body := []byte("line one\nline two\n")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	cases := []struct {
		name string
		unit string
	}{
		{"data.gz", "chunks"},
		{"data.zip", "chunks"},
		{"data.tsv", "lines"},
	}
	c := NewClient(Config{})
	for _, tc := range cases {
		var progress bytes.Buffer
		_, err := c.Fetch(context.Background(), srv.URL+"/"+tc.name, FetchOptions{
			Dir:        t.TempDir(),
			SkipVerify: true,
			Logger:     quietLogger(),
			Progress:   &progress,
		})
		if err != nil {
			t.Fatalf("%s: Fetch: %v", tc.name, err)
		}
		if !strings.Contains(progress.String(), tc.unit) {
			t.Errorf("%s: progress %q does not report in %q", tc.name, progress.String(), tc.unit)
		}
	}
}

func TestIsStreaming(t *testing.T) {
	cases := []struct {
		url  string
		want bool
	}{
		{"https://x/file.vcf.gz", true},
		{"https://x/bundle.zip", true},
		{"https://x/table.tsv", false},
		{"https://x/data.json", false},
	}
	for _, c := range cases {
		if got := isStreaming(c.url); got != c.want {
			t.Errorf("isStreaming(%q) = %v, want %v", c.url, got, c.want)
		}
	}
}

func TestLocalFileName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"https://example.org/d/test.vcf.gz", "test.vcf.gz"},
		{"https://example.org/d/test.json/", "test.json"},
		{"https://example.org", HashString("https://example.org")},
	}
	for _, c := range cases {
		if got := LocalFileName(c.in); got != c.want {
			t.Errorf("LocalFileName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
