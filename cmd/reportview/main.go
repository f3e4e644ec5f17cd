package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/tasmanium/reportview"
	"github.com/tasmanium/reportview/html"

	// Image decoders for attachments beyond the standard library's formats.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Build information, set with -ldflags.
var (
	version = "dev"
	commit  = "none"
)

// ErrEmptyReport is returned when the document lists no scenarios.
var ErrEmptyReport = errors.New("report contains no scenarios")

// App encapsulates the interactive command for testing.
type App struct {
	Input  io.Reader
	Parser reportview.DocumentParser
	Viewer reportview.Viewer
}

// Run parses the report and displays it.
func (a *App) Run(ctx context.Context) error {
	report, err := a.Parser.Parse(a.Input)
	if err != nil {
		return err
	}
	if len(report.Scenarios) == 0 {
		return ErrEmptyReport
	}
	return a.Viewer.View(ctx, report)
}

// RenderApp writes a report with a snapshot state applied to its nodes.
type RenderApp struct {
	Input    io.Reader
	Output   io.Writer
	Snapshot reportview.Snapshot
	Log      logrus.FieldLogger
}

// Run parses the document, reconciles the snapshot onto it and renders it.
// Parts of the snapshot that match nothing are logged and skipped.
func (a *RenderApp) Run() error {
	doc, err := html.NewParser().ParseDocument(a.Input)
	if err != nil {
		return err
	}
	for _, diag := range doc.Diagnostics() {
		a.Log.WithError(diag).Warn("document diagnostic")
	}

	state, err := a.Snapshot.State(doc.Report())
	if err != nil {
		a.Log.WithError(err).Warn("snapshot partially applied")
	}
	doc.Reconcile(state)
	return doc.Render(a.Output)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := NewRootCommand(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
