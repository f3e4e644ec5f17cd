package mock

import (
	"context"

	"github.com/tasmanium/reportview"
)

// Compile-time interface verification.
var _ reportview.Viewer = (*Viewer)(nil)

// Viewer is a mock implementation of reportview.Viewer.
type Viewer struct {
	ViewFn func(ctx context.Context, report *reportview.Report) error
}

func (v *Viewer) View(ctx context.Context, report *reportview.Report) error {
	return v.ViewFn(ctx, report)
}
