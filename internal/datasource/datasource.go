package datasource

import (
	"context"
	"io"
)

// Source is anything that can yield a byte stream for the pipeline to parse.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}
