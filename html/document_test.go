package html_test

import (
	"bytes"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tasmanium/reportview"
	"github.com/tasmanium/reportview/html"
	htmllib "golang.org/x/net/html"
)

// rendered renders doc and reparses it so assertions see the serialized
// output.
type rendered struct {
	root *htmllib.Node
	raw  string
}

func render(t *testing.T, doc *html.Document) rendered {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, doc.Render(&buf))
	root, err := htmllib.Parse(strings.NewReader(buf.String()))
	require.NoError(t, err)
	return rendered{root: root, raw: buf.String()}
}

func (r rendered) byID(t *testing.T, id string) *htmllib.Node {
	t.Helper()
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
	visit(r.root)
	require.NotNil(t, found, "node %q not found", id)
	return found
}

func (r rendered) hasClass(t *testing.T, id, class string) bool {
	t.Helper()
	n := r.byID(t, id)
	for _, a := range n.Attr {
		if a.Key == "class" {
			return slices.Contains(strings.Fields(a.Val), class)
		}
	}
	return false
}

func (r rendered) text(t *testing.T, id string) string {
	t.Helper()
	var sb strings.Builder
	var visit func(*htmllib.Node)
	visit = func(n *htmllib.Node) {
		if n.Type == htmllib.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(r.byID(t, id))
	return strings.TrimSpace(sb.String())
}

func reduce(t *testing.T, doc *html.Document, events ...reportview.Event) reportview.State {
	t.Helper()
	s := reportview.NewState()
	for _, ev := range events {
		var err error
		s, _, err = reportview.Reduce(doc.Report(), s, ev)
		require.NoError(t, err, "event %T", ev)
	}
	return s
}

func TestDocument_Reconcile_Initial(t *testing.T) {
	t.Parallel()

	doc := parseFixture(t)
	doc.Reconcile(reportview.NewState())
	out := render(t, doc)

	assert.False(t, out.hasClass(t, "single-test-placeholder", "hidden"))
	for _, id := range []string{"scenario-s1", "scenario-s2", "scenario-s3", "scenario-repeat-list-r3", "file-modal"} {
		assert.True(t, out.hasClass(t, id, "hidden"), "%s should be hidden", id)
	}
	assert.True(t, out.hasClass(t, "show-flat", "selected"))
	assert.False(t, out.hasClass(t, "test-list-flat", "hidden"))
	assert.True(t, out.hasClass(t, "test-list-outlines", "hidden"))
	assert.Equal(t, "Hide passed", out.text(t, "toggle-passed"))
	assert.Equal(t, "Expand all", out.text(t, "toggle-steps-s1"))
	assert.True(t, out.hasClass(t, "toggle-steps-s1", "off"))
}

func TestDocument_Reconcile_Selection(t *testing.T) {
	t.Parallel()

	doc := parseFixture(t)
	s := reduce(t, doc,
		reportview.SetViewMode{Mode: reportview.ViewFeature},
		reportview.SelectEntry{Key: reportview.EntryKey(reportview.ViewFeature, "s2")},
		reportview.ToggleAllSteps{ScenarioID: "s2"},
	)
	doc.Reconcile(s)
	out := render(t, doc)

	assert.True(t, out.hasClass(t, "single-test-placeholder", "hidden"))
	assert.False(t, out.hasClass(t, "scenario-s2", "hidden"))
	assert.True(t, out.hasClass(t, "scenario-s1", "hidden"))

	assert.True(t, out.hasClass(t, "show-features", "selected"))
	assert.False(t, out.hasClass(t, "show-flat", "selected"))
	assert.False(t, out.hasClass(t, "test-list-features", "hidden"))
	assert.True(t, out.hasClass(t, "test-list-flat", "hidden"))

	assert.True(t, out.hasClass(t, "st2a", "active"))
	assert.False(t, out.hasClass(t, "toggle-steps-s2", "off"))
	assert.Equal(t, "Collapse all", out.text(t, "toggle-steps-s2"))
	assert.True(t, out.hasClass(t, "test-repeat-button-r3-s2", "selected"), "latest attempt is active")
}

func TestDocument_Reconcile_Repeats(t *testing.T) {
	t.Parallel()

	doc := parseFixture(t)
	s := reduce(t, doc,
		reportview.SelectEntry{Key: reportview.EntryKey(reportview.ViewFlat, "s2")},
		reportview.ShowRepeats{Key: reportview.Key{Kind: reportview.KindShowRepeats, RepeatID: "r3", ScenarioID: "s2"}},
	)
	doc.Reconcile(s)
	out := render(t, doc)

	assert.True(t, out.hasClass(t, "scenario-s2", "hidden"))
	assert.False(t, out.hasClass(t, "scenario-repeat-list-r3", "hidden"))

	s, _, err := reportview.Reduce(doc.Report(), s, reportview.SelectRepeat{Key: reportview.Key{Kind: reportview.KindRepeatButton, RepeatID: "r1", ScenarioID: "s2"}})
	require.NoError(t, err)
	doc.Reconcile(s)
	out = render(t, doc)

	assert.False(t, out.hasClass(t, "scenario-s2", "hidden"))
	assert.True(t, out.hasClass(t, "scenario-repeat-list-r3", "hidden"))
	assert.True(t, out.hasClass(t, "test-repeat-button-r1-s2", "selected"))
	assert.False(t, out.hasClass(t, "test-repeat-button-r3-s2", "selected"))
}

func TestDocument_Reconcile_HiddenStatus(t *testing.T) {
	t.Parallel()

	doc := parseFixture(t)
	s := reduce(t, doc,
		reportview.ToggleCollapsible{ID: "f1"},
		reportview.ToggleStatus{Status: reportview.StatusFailed},
	)
	doc.Reconcile(s)
	out := render(t, doc)

	assert.True(t, out.hasClass(t, "toggle-failed", "off"))
	assert.Equal(t, "Show failed", out.text(t, "toggle-failed"))
	assert.True(t, out.hasClass(t, "entry-flat-s2", "hidden"))
	assert.False(t, out.hasClass(t, "entry-flat-s1", "hidden"))
	assert.True(t, out.hasClass(t, "f1", "hidden"))
	assert.False(t, out.hasClass(t, "f1", "active"), "hiding a status closes its collapsibles")
	assert.False(t, out.hasClass(t, "o1", "hidden"))
}

func TestDocument_Reconcile_Modal(t *testing.T) {
	t.Parallel()

	ref := reportview.AttachmentRef{Folder: "r3/st2a", Filename: "response.json", ContentType: reportview.ContentPlaintext, Description: "Payment response"}

	t.Run("metadata and download link while loading", func(t *testing.T) {
		t.Parallel()

		doc := parseFixture(t)
		doc.Reconcile(reduce(t, doc, reportview.OpenAttachment{Ref: ref}))
		out := render(t, doc)

		assert.False(t, out.hasClass(t, "file-modal", "hidden"))
		assert.Equal(t, "response.json", out.text(t, "file-modal-filename"))
		assert.Equal(t, "plaintext", out.text(t, "file-modal-type"))
		assert.Equal(t, "Payment response", out.text(t, "file-modal-description"))
		assert.Contains(t, out.raw, `<a href="r3/st2a/response.json" download="response.json">`)
		assert.Empty(t, out.text(t, "file-modal-file-contents"))
	})

	t.Run("plaintext is escaped", func(t *testing.T) {
		t.Parallel()

		doc := parseFixture(t)
		s := reduce(t, doc, reportview.OpenAttachment{Ref: ref})
		s = reduce(t, doc, reportview.OpenAttachment{Ref: ref}, reportview.AttachmentLoaded{
			Token:   s.Modal.Token,
			Content: &reportview.AttachmentContent{Type: reportview.ContentPlaintext, Text: `{"error": "<b>boom</b>"}`},
		})
		doc.Reconcile(s)
		out := render(t, doc)

		assert.Equal(t, `{"error": "<b>boom</b>"}`, out.text(t, "file-modal-contents-plaintext"))
		assert.Contains(t, out.raw, "&lt;b&gt;boom&lt;/b&gt;")
	})

	t.Run("image uses the display reference", func(t *testing.T) {
		t.Parallel()

		img := reportview.AttachmentRef{Folder: "s1/st1b", Filename: "dashboard.png", ContentType: reportview.ContentImage}
		doc := parseFixture(t)
		s := reduce(t, doc, reportview.OpenAttachment{Ref: img})
		s = reduce(t, doc, reportview.OpenAttachment{Ref: img}, reportview.AttachmentLoaded{
			Token:   s.Modal.Token,
			Content: &reportview.AttachmentContent{Type: reportview.ContentImage, DisplayRef: "data:image/png;base64,AAAA"},
		})
		doc.Reconcile(s)
		out := render(t, doc)

		assert.Contains(t, out.raw, `<img id="file-modal-contents-image" src="data:image/png;base64,AAAA"/>`)
	})

	t.Run("unsupported type shows a message", func(t *testing.T) {
		t.Parallel()

		doc := parseFixture(t)
		doc.Reconcile(reduce(t, doc, reportview.OpenAttachment{Ref: reportview.AttachmentRef{Folder: "r3/st2a", Filename: "trace.zip", ContentType: "archive"}}))
		out := render(t, doc)

		assert.Equal(t, "unsupported attachment type", out.text(t, "file-modal-contents-error"))
		assert.Contains(t, out.raw, `href="r3/st2a/trace.zip"`)
	})

	t.Run("closing clears the modal", func(t *testing.T) {
		t.Parallel()

		doc := parseFixture(t)
		doc.Reconcile(reduce(t, doc, reportview.OpenAttachment{Ref: ref}))
		doc.Reconcile(reduce(t, doc, reportview.OpenAttachment{Ref: ref}, reportview.CloseModal{}))
		out := render(t, doc)

		assert.True(t, out.hasClass(t, "file-modal", "hidden"))
		assert.Empty(t, out.text(t, "file-modal-filename"))
		assert.NotContains(t, out.raw, "download=")
	})
}

func TestDocument_NestedCollapsibleIsNotAStep(t *testing.T) {
	t.Parallel()

	nested := `<div class="hidden">ok
    <button id="req" class="collapsible collapsible-passed">Request</button>
    <div class="hidden">
      <div class="step-attachment">
        <span class="step-attachment-folder">s1/st1a</span>
        <span class="step-attachment-filename">request.txt</span>
        <span class="step-attachment-type">plaintext</span>
      </div>
    </div>
  </div>`
	src := strings.Replace(readFixture(t), `<div class="hidden">ok</div>`, nested, 1)
	doc, err := html.NewParser().ParseDocument(strings.NewReader(src))
	require.NoError(t, err)
	r := doc.Report()

	var steps []string
	for _, c := range r.StepCollapsibles("s1") {
		steps = append(steps, c.ID)
	}
	assert.Equal(t, []string{"st1a", "st1b"}, steps)

	req, ok := r.Collapsible("req")
	require.True(t, ok)
	assert.Equal(t, reportview.CollapsibleDetail, req.Kind)
	assert.Empty(t, req.ScenarioID)

	sc, ok := r.Scenario("s1")
	require.True(t, ok)
	require.Len(t, sc.Steps, 2)
	require.Len(t, sc.Steps[0].Attachments, 1, "attachments in a nested section belong to the enclosing step")
	assert.Equal(t, "request.txt", sc.Steps[0].Attachments[0].Filename)

	s := reduce(t, doc,
		reportview.SelectEntry{Key: reportview.EntryKey(reportview.ViewFlat, "s1")},
		reportview.ToggleAllSteps{ScenarioID: "s1"},
	)
	assert.True(t, s.IsOpen("st1a"))
	assert.False(t, s.IsOpen("req"), "expand all leaves nested sections alone")

	s, _, err = reportview.Reduce(r, s, reportview.ToggleCollapsible{ID: "req"})
	require.NoError(t, err)
	s, _, err = reportview.Reduce(r, s, reportview.ToggleAllSteps{ScenarioID: "s1"})
	require.NoError(t, err)
	assert.False(t, s.IsOpen("st1a"))
	assert.True(t, s.IsOpen("req"), "collapse all leaves nested sections alone")

	doc.Reconcile(s)
	out := render(t, doc)
	assert.True(t, out.hasClass(t, "req", "active"))
	assert.False(t, out.hasClass(t, "st1a", "active"))
}
