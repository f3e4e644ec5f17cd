package main_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tasmanium/reportview"
	main "github.com/tasmanium/reportview/cmd/reportview"
	"github.com/tasmanium/reportview/mock"
	htmllib "golang.org/x/net/html"
)

const fixture = "../../html/testdata/report.html"

func TestApp_Run_Success(t *testing.T) {
	t.Parallel()

	input := "<html></html>"
	expected := &reportview.Report{Scenarios: []*reportview.Scenario{{ID: "s1"}}}

	var parsedInput string
	var viewed *reportview.Report

	app := &main.App{
		Input: strings.NewReader(input),
		Parser: &mock.DocumentParser{
			ParseFn: func(r io.Reader) (*reportview.Report, error) {
				data, _ := io.ReadAll(r)
				parsedInput = string(data)
				return expected, nil
			},
		},
		Viewer: &mock.Viewer{
			ViewFn: func(ctx context.Context, report *reportview.Report) error {
				viewed = report
				return nil
			},
		},
	}

	err := app.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, input, parsedInput, "parser should receive the document")
	assert.Same(t, expected, viewed, "viewer should receive the parsed report")
}

func TestApp_Run_ParseError(t *testing.T) {
	t.Parallel()

	parseErr := errors.New("broken document")
	app := &main.App{
		Input: strings.NewReader("garbage"),
		Parser: &mock.DocumentParser{
			ParseFn: func(io.Reader) (*reportview.Report, error) {
				return nil, parseErr
			},
		},
		Viewer: &mock.Viewer{},
	}

	err := app.Run(context.Background())

	assert.ErrorIs(t, err, parseErr)
}

func TestApp_Run_EmptyReport(t *testing.T) {
	t.Parallel()

	viewCalled := false
	app := &main.App{
		Input: strings.NewReader(""),
		Parser: &mock.DocumentParser{
			ParseFn: func(io.Reader) (*reportview.Report, error) {
				return &reportview.Report{}, nil
			},
		},
		Viewer: &mock.Viewer{
			ViewFn: func(context.Context, *reportview.Report) error {
				viewCalled = true
				return nil
			},
		},
	}

	err := app.Run(context.Background())

	assert.ErrorIs(t, err, main.ErrEmptyReport)
	assert.False(t, viewCalled, "viewer should not be called for an empty report")
}

func TestApp_Run_ViewError(t *testing.T) {
	t.Parallel()

	viewErr := errors.New("terminal error")
	app := &main.App{
		Input: strings.NewReader(""),
		Parser: &mock.DocumentParser{
			ParseFn: func(io.Reader) (*reportview.Report, error) {
				return &reportview.Report{Scenarios: []*reportview.Scenario{{ID: "s1"}}}, nil
			},
		},
		Viewer: &mock.Viewer{
			ViewFn: func(context.Context, *reportview.Report) error {
				return viewErr
			},
		},
	}

	err := app.Run(context.Background())

	assert.ErrorIs(t, err, viewErr)
}

// classes parses rendered output and returns the classes of the node with id.
func classes(t *testing.T, raw, id string) []string {
	t.Helper()
	root, err := htmllib.Parse(strings.NewReader(raw))
	require.NoError(t, err)

	var found *htmllib.Node
	var visit func(*htmllib.Node)
	visit = func(n *htmllib.Node) {
		if found != nil {
			return
		}
		if n.Type == htmllib.ElementNode {
			for _, a := range n.Attr {
				if a.Key == "id" && a.Val == id {
					found = n
					return
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(root)
	require.NotNil(t, found, "node %q not found", id)
	for _, a := range found.Attr {
		if a.Key == "class" {
			return strings.Fields(a.Val)
		}
	}
	return nil
}

func runRender(t *testing.T, snap reportview.Snapshot) (string, *test.Hook) {
	t.Helper()
	f, err := os.Open(fixture)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	log, hook := test.NewNullLogger()
	var out bytes.Buffer
	app := &main.RenderApp{Input: f, Output: &out, Snapshot: snap, Log: log}

	require.NoError(t, app.Run())
	return out.String(), hook
}

func TestRenderApp_Run_ViewMode(t *testing.T) {
	t.Parallel()

	out, _ := runRender(t, reportview.Snapshot{Mode: reportview.ViewOutline})

	assert.Contains(t, classes(t, out, "show-outlines"), "selected")
	assert.NotContains(t, classes(t, out, "show-flat"), "selected")
	assert.NotContains(t, classes(t, out, "test-list-outlines"), "hidden")
	assert.Contains(t, classes(t, out, "test-list-flat"), "hidden")
}

func TestRenderApp_Run_FragmentOpensScenario(t *testing.T) {
	t.Parallel()

	out, _ := runRender(t, reportview.Snapshot{Fragment: "s2"})

	assert.Contains(t, classes(t, out, "single-test-placeholder"), "hidden")
	assert.NotContains(t, classes(t, out, "scenario-s2"), "hidden")
	assert.Contains(t, classes(t, out, "scenario-s1"), "hidden")
}

func TestRenderApp_Run_HiddenStatus(t *testing.T) {
	t.Parallel()

	out, _ := runRender(t, reportview.Snapshot{Hidden: []reportview.Status{reportview.StatusPassed}})

	assert.Contains(t, classes(t, out, "toggle-passed"), "off")
	assert.Contains(t, out, "Show passed")
	assert.Contains(t, classes(t, out, "entry-flat-s1"), "hidden")
	assert.NotContains(t, classes(t, out, "entry-flat-s2"), "hidden")
}

func TestRenderApp_Run_LogsUnmatchedFragment(t *testing.T) {
	t.Parallel()

	out, hook := runRender(t, reportview.Snapshot{Fragment: "nope"})

	assert.NotContains(t, classes(t, out, "single-test-placeholder"), "hidden")
	var messages []string
	for _, e := range hook.AllEntries() {
		assert.Equal(t, logrus.WarnLevel, e.Level)
		messages = append(messages, e.Message)
	}
	assert.True(t, slices.Contains(messages, "snapshot partially applied"), "got %v", messages)
}

func TestRenderApp_Run_ParseError(t *testing.T) {
	t.Parallel()

	log, _ := test.NewNullLogger()
	app := &main.RenderApp{
		Input:  strings.NewReader("<html><body></body></html>"),
		Output: io.Discard,
		Log:    log,
	}

	assert.Error(t, app.Run())
}

func TestRootCommand_Render(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	cmd := main.NewRootCommand(&stdout, &stderr)
	cmd.SetArgs([]string{"render", "--view", "features", "--hide", "failed", "--log-level", "error", fixture + "#s1"})

	require.NoError(t, cmd.ExecuteContext(context.Background()))

	out := stdout.String()
	assert.Contains(t, classes(t, out, "show-features"), "selected")
	assert.Contains(t, classes(t, out, "toggle-failed"), "off")
	assert.NotContains(t, classes(t, out, "scenario-s1"), "hidden")
	assert.Empty(t, stderr.String())
}

func TestRootCommand_RenderToFile(t *testing.T) {
	t.Parallel()

	dst := filepath.Join(t.TempDir(), "snapshot.html")
	var stdout, stderr bytes.Buffer
	cmd := main.NewRootCommand(&stdout, &stderr)
	cmd.SetArgs([]string{"render", "-o", dst, "--fragment", "#s3", "--log-level", "error", fixture})

	require.NoError(t, cmd.ExecuteContext(context.Background()))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.NotContains(t, classes(t, string(data), "scenario-s3"), "hidden")
	assert.Empty(t, stdout.String())
}

func TestRootCommand_RenderRejectsUnknownView(t *testing.T) {
	t.Parallel()

	cmd := main.NewRootCommand(io.Discard, io.Discard)
	cmd.SetArgs([]string{"render", "--view", "tree", fixture})

	err := cmd.ExecuteContext(context.Background())

	assert.ErrorIs(t, err, reportview.ErrUnknownViewMode)
}

func TestRootCommand_RenderRejectsUnknownStatus(t *testing.T) {
	t.Parallel()

	cmd := main.NewRootCommand(io.Discard, io.Discard)
	cmd.SetArgs([]string{"render", "--hide", "flaky", fixture})

	err := cmd.ExecuteContext(context.Background())

	assert.ErrorIs(t, err, reportview.ErrUnknownStatus)
}

func TestRootCommand_RequiresReport(t *testing.T) {
	t.Parallel()

	cmd := main.NewRootCommand(io.Discard, io.Discard)
	cmd.SetArgs([]string{})

	err := cmd.ExecuteContext(context.Background())

	assert.ErrorIs(t, err, main.ErrNoReport)
}

func TestRootCommand_Version(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer
	cmd := main.NewRootCommand(&stdout, io.Discard)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.ExecuteContext(context.Background()))

	assert.Equal(t, "reportview dev (commit: none)\n", stdout.String())
}
