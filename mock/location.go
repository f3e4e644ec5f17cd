package mock

import (
	"context"

	"github.com/tasmanium/reportview"
)

// Compile-time interface verification.
var (
	_ reportview.Location  = (*Location)(nil)
	_ reportview.Clipboard = (*Clipboard)(nil)
)

// Location is a mock implementation of reportview.Location.
type Location struct {
	FragmentFn    func() string
	SetFragmentFn func(scenarioID string) error
}

func (l *Location) Fragment() string {
	return l.FragmentFn()
}

func (l *Location) SetFragment(scenarioID string) error {
	return l.SetFragmentFn(scenarioID)
}

// Clipboard is a mock implementation of reportview.Clipboard.
type Clipboard struct {
	CopyFn func(content string) error
}

func (c *Clipboard) Copy(content string) error {
	return c.CopyFn(content)
}

// Compile-time interface verification.
var _ reportview.LocationWatcher = (*LocationWatcher)(nil)

// LocationWatcher is a mock implementation of reportview.LocationWatcher.
type LocationWatcher struct {
	WatchFn func(ctx context.Context, onChange func(fragment string)) error
}

func (w *LocationWatcher) Watch(ctx context.Context, onChange func(fragment string)) error {
	return w.WatchFn(ctx, onChange)
}
