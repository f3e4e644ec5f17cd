package mock

import (
	"context"

	"github.com/tasmanium/reportview"
)

// Compile-time interface verification.
var _ reportview.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of reportview.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, path string) ([]byte, error)
}

func (f *Fetcher) Fetch(ctx context.Context, path string) ([]byte, error) {
	return f.FetchFn(ctx, path)
}
