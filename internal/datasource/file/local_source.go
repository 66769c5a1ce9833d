// Package file implements a local filesystem-backed report source.
package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"covidstats/internal/datasource"
)

// Local is a report stored on the local disk.
type Local struct{ path string }

var _ datasource.Source = (*Local)(nil)

// NewLocal returns a Local source bound to path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Name returns the path the source reads.
func (l *Local) Name() string { return l.path }

// Open opens the configured path for reading.
//
// If ctx is already done, Open returns its error without touching the
// filesystem. A missing file yields an error matching both
// datasource.ErrNotFound and os.ErrNotExist; other filesystem errors are
// wrapped with the path.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("open %s: %w: %w", l.path, datasource.ErrNotFound, err)
		}
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return f, nil
}
