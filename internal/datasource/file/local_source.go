// Package file implements a local filesystem-backed data source. The fetch
// stage materializes every input as a local file, so this is the source the
// parse stage always reads from.
package file

import (
	"context"
	"fmt"
	"io"
	"os"

	"mitoref/internal/datasource"
)

// Local opens files from the local disk.
type Local struct{ path string }

// NewLocal returns a Local source bound to path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Open opens the configured path for reading. A context already canceled at
// call time returns the context error without touching the filesystem.
// Filesystem errors are wrapped with the path while keeping errors.Is/As
// checks working (e.g., errors.Is(err, os.ErrNotExist)).
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return f, nil
}

// Size returns the current size of the underlying file in bytes.
func (l *Local) Size() (int64, error) {
	fi, err := os.Stat(l.path)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", l.path, err)
	}
	return fi.Size(), nil
}

var _ datasource.Source = (*Local)(nil)
