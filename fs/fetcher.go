package fs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tasmanium/reportview"
)

// Compile-time interface verification.
var _ reportview.Fetcher = (*Fetcher)(nil)

// Fetcher reads attachments from the directory holding the report. Paths
// that escape the directory are rejected.
type Fetcher struct {
	dir string
}

// NewFetcher creates a fetcher rooted at dir.
func NewFetcher(dir string) *Fetcher {
	return &Fetcher{dir: dir}
}

// Fetch reads the file at the slash-separated path p relative to the root.
func (f *Fetcher) Fetch(ctx context.Context, p string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root, err := os.OpenRoot(f.dir)
	if err != nil {
		return nil, fmt.Errorf("open report root: %w", err)
	}
	defer root.Close()

	file, err := root.Open(filepath.FromSlash(p))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	return data, ctx.Err()
}
