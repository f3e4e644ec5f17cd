// Package bubbletea provides a terminal report browser using the Bubble Tea framework.
package bubbletea

import (
	"context"
	"slices"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tasmanium/reportview"
	"github.com/tasmanium/reportview/logger"
	"golang.org/x/sync/errgroup"
)

// Compile-time interface verification.
var _ reportview.Viewer = (*Viewer)(nil)

// Viewer implements reportview.Viewer using a Bubble Tea TUI.
type Viewer struct {
	location    reportview.Location
	watcher     reportview.LocationWatcher
	modelOpts   []ModelOption
	programOpts []tea.ProgramOption
}

// ViewerOption configures a Viewer.
type ViewerOption func(*Viewer)

// WithLocation sets where the open scenario is persisted. The initial
// selection is read from it.
func WithLocation(l reportview.Location) ViewerOption {
	return func(v *Viewer) {
		v.location = l
	}
}

// WithWatcher makes the viewer follow fragments written by other processes.
func WithWatcher(w reportview.LocationWatcher) ViewerOption {
	return func(v *Viewer) {
		v.watcher = w
	}
}

// WithModelOptions sets the options of the model the viewer runs.
func WithModelOptions(opts ...ModelOption) ViewerOption {
	return func(v *Viewer) {
		v.modelOpts = append(v.modelOpts, opts...)
	}
}

// WithProgramOptions appends Bubble Tea program options.
func WithProgramOptions(opts ...tea.ProgramOption) ViewerOption {
	return func(v *Viewer) {
		v.programOpts = append(v.programOpts, opts...)
	}
}

// NewViewer creates a new Viewer.
func NewViewer(opts ...ViewerOption) *Viewer {
	v := &Viewer{}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// View displays the report and blocks until the user exits.
func (v *Viewer) View(ctx context.Context, report *reportview.Report) error {
	cfg := &modelConfig{}
	for _, opt := range v.modelOpts {
		opt(cfg)
	}
	log := cfg.log
	if log == nil {
		log = logger.Discard()
	}

	c := reportview.NewController(report, v.location)
	if err := c.Start(); err != nil {
		logger.Diagnostic(log, reportview.Startup{Fragment: c.Location().Fragment()}, err)
	}

	g, ctx := errgroup.WithContext(ctx)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := NewModel(c, append(slices.Clip(v.modelOpts), WithContext(ctx))...)
	p := tea.NewProgram(m, append([]tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	}, v.programOpts...)...)

	if v.watcher != nil {
		g.Go(func() error {
			return v.watcher.Watch(ctx, func(fragment string) {
				p.Send(FragmentChangedMsg{Fragment: fragment})
			})
		})
	}
	g.Go(func() error {
		defer cancel()
		_, err := p.Run()
		return err
	})
	return g.Wait()
}
