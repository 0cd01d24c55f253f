package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"mitoref/pkg/records"
)

// DefaultBatchSize is the number of rows per bulk insert. Operators can
// lower it via the MITOREF_BATCH_SIZE environment variable when the engine
// runs out of memory on wide tables.
const DefaultBatchSize = 500

// WriteOptions configures a Write call.
type WriteOptions struct {
	// Force replaces an existing output instead of failing.
	Force bool

	// BatchSize overrides the per-insert row count. Zero means
	// MITOREF_BATCH_SIZE or DefaultBatchSize.
	BatchSize int

	// Logger is the diagnostics sink. Default: log.Default().
	Logger *log.Logger
}

// Write persists the table through repo. When the destination already holds
// data, it fails with ErrOutputExists unless opts.Force is set, in which
// case the prior content is replaced. Returns the number of rows written.
//
// This is the pipeline's sole side-effecting terminal step; there is no
// partial-write recovery beyond what the engine's transactions provide.
func Write(ctx context.Context, repo Repository, def TableDef, t *records.Table, opts WriteOptions) (int64, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = batchSizeFromEnv()
	}

	exists, err := repo.Exists(ctx)
	if err != nil {
		return 0, err
	}
	if exists {
		if !opts.Force {
			return 0, fmt.Errorf("%w: table %s (use --force-write to overwrite)", ErrOutputExists, def.Name)
		}
		if err := repo.Reset(ctx); err != nil {
			return 0, err
		}
	}
	if err := repo.CreateTable(ctx, def); err != nil {
		return 0, err
	}

	columns := t.Columns
	var (
		total   int64
		batches int64
		batch   = make([][]any, 0, batchSize)
		start   = time.Now()
	)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := repo.CopyFrom(ctx, columns, batch)
		total += n
		batch = batch[:0]
		if err != nil {
			return err
		}
		batches++
		logger.Printf("write: batch #%d inserted=%d total=%d elapsed=%s",
			batches, n, total, time.Since(start).Truncate(time.Millisecond))
		return nil
	}

	for _, row := range t.Rows {
		batch = append(batch, encodeRow(columns, row))
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	if err := flush(); err != nil {
		return total, err
	}
	return total, nil
}

func batchSizeFromEnv() int {
	if s := os.Getenv("MITOREF_BATCH_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return DefaultBatchSize
}

// encodeRow renders a record as positional values aligned to columns.
func encodeRow(columns []string, r records.Record) []any {
	row := make([]any, len(columns))
	for i, col := range columns {
		row[i] = encodeValue(r[col])
	}
	return row
}

// encodeValue maps in-memory values onto driver-friendly ones. Allele lists
// become JSON array text so the composite key stays readable and stable;
// unsigned digests are bit-cast into the signed integer column type.
func encodeValue(v any) any {
	switch x := v.(type) {
	case []string:
		b, _ := json.Marshal(x)
		return string(b)
	case uint64:
		return int64(x)
	default:
		return v
	}
}
