// Package progress implements a small textual progress reporter for long
// running transfers. It prints throttled status lines (items transferred,
// bytes, rate) to an injected writer so tests and quiet runs can capture or
// discard the output.
package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
)

// Options configures a Reporter.
type Options struct {
	// Label prefixes every line, typically the URL or file being moved.
	Label string

	// Unit names the counted items, e.g. "chunks" or "lines".
	Unit string

	// Output is where status lines go. Default: os.Stderr.
	Output io.Writer

	// UpdateInterval throttles status lines. Default: 1s.
	UpdateInterval time.Duration
}

// Reporter accumulates transfer counts and emits throttled status lines.
// It is used from a single goroutine; the pipeline never transfers
// concurrently.
type Reporter struct {
	opts  Options
	items int64
	bytes int64
	start time.Time
	last  time.Time

	// now is injectable for deterministic tests.
	now func() time.Time
}

// NewReporter constructs a Reporter, applying defaults for zero values.
func NewReporter(opts Options) *Reporter {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	if opts.UpdateInterval <= 0 {
		opts.UpdateInterval = time.Second
	}
	if opts.Unit == "" {
		opts.Unit = "items"
	}
	r := &Reporter{opts: opts, now: time.Now}
	r.start = r.now()
	r.last = r.start
	return r
}

// Add records n transferred items totaling size bytes and prints a status
// line when the update interval has elapsed.
func (r *Reporter) Add(n, size int64) {
	r.items += n
	r.bytes += size
	now := r.now()
	if now.Sub(r.last) < r.opts.UpdateInterval {
		return
	}
	r.last = now
	r.print(now, false)
}

// Done prints the final status line with overall totals.
func (r *Reporter) Done() {
	r.print(r.now(), true)
}

// Items returns the number of items recorded so far.
func (r *Reporter) Items() int64 { return r.items }

// Bytes returns the number of bytes recorded so far.
func (r *Reporter) Bytes() int64 { return r.bytes }

func (r *Reporter) print(now time.Time, final bool) {
	elapsed := now.Sub(r.start).Seconds()
	if elapsed <= 0 {
		elapsed = 1e-9
	}
	rate := float64(r.bytes) / elapsed
	state := "..."
	if final {
		state = "done"
	}
	fmt.Fprintf(r.opts.Output, "%s: %d %s, %s (%s/s) %s\n",
		r.opts.Label,
		r.items,
		r.opts.Unit,
		humanize.Bytes(uint64(r.bytes)),
		humanize.Bytes(uint64(rate)),
		state,
	)
}
