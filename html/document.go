package html

import (
	"fmt"
	"io"

	"github.com/tasmanium/reportview"
	htmllib "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type panelNode struct {
	id   string
	node *htmllib.Node
}

type entryNode struct {
	entry reportview.Entry
	node  *htmllib.Node
}

type collapsibleNode struct {
	c       reportview.Collapsible
	header  *htmllib.Node
	content *htmllib.Node // nil when the header has no next sibling
}

type repeatListNode struct {
	node *htmllib.Node
}

type repeatButtonNode struct {
	key  reportview.Key
	node *htmllib.Node
}

// Document is a parsed report together with the nodes the view state is
// reconciled onto.
type Document struct {
	root        *htmllib.Node
	report      *reportview.Report
	diagnostics []error

	placeholder   *htmllib.Node
	modalRoot     *htmllib.Node
	modal         map[string]*htmllib.Node
	viewButtons   map[reportview.ViewMode]*htmllib.Node
	lists         map[reportview.ViewMode]*htmllib.Node
	toggles       map[reportview.Status]*htmllib.Node
	stepToggles   map[string]*htmllib.Node
	panels        []panelNode
	entries       []entryNode
	collapsibles  []collapsibleNode
	repeatLists   map[string]repeatListNode
	repeatButtons []repeatButtonNode
}

// Report returns the report model read from the document.
func (d *Document) Report() *reportview.Report {
	return d.report
}

// Diagnostics returns the problems found in nodes that were skipped while
// parsing, such as malformed identifiers.
func (d *Document) Diagnostics() []error {
	return d.diagnostics
}

// Reconcile rewrites the state classes, labels and modal content of the
// document so that it displays s. It can be applied repeatedly.
func (d *Document) Reconcile(s reportview.State) {
	setClass(d.placeholder, classHidden, !s.PlaceholderVisible())

	revealed := false
	for _, p := range d.panels {
		show := !revealed && s.PanelVisible(p.id)
		revealed = revealed || show
		setClass(p.node, classHidden, !show)
	}

	for _, v := range reportview.ViewModes {
		setClass(d.viewButtons[v], classSelected, s.Filter.ListVisible(v))
		setClass(d.lists[v], classHidden, !s.Filter.ListVisible(v))
	}

	for _, st := range reportview.Statuses {
		n := d.toggles[st]
		setClass(n, classOff, !s.Filter.Visible(st))
		setText(n, s.Filter.StatusLabel(st))
	}

	for _, e := range d.entries {
		setClass(e.node, classHidden, !s.Filter.Visible(e.entry.Status))
	}

	for _, c := range d.collapsibles {
		open := s.IsOpen(c.c.ID)
		setClass(c.header, classHidden, !s.Filter.Visible(c.c.Status))
		setClass(c.header, classActive, open)
		if c.content != nil {
			setClass(c.content, classHidden, !open)
		}
	}

	for id, n := range d.stepToggles {
		setClass(n, classOff, !s.Expanded[id])
		setText(n, s.StepsLabel(id))
	}

	// Lists no show-repeats button points at have no group and stay hidden.
	for id, l := range d.repeatLists {
		g, ok := d.report.RepeatGroup(id)
		setClass(l.node, classHidden, !ok || !s.RepeatListVisible(g.ScenarioID))
	}
	for _, rb := range d.repeatButtons {
		sc, ok := d.report.Scenario(rb.key.ScenarioID)
		active, _ := s.ActiveAttempt(sc)
		setClass(rb.node, classSelected, ok && active.ID == rb.key.RepeatID)
	}

	d.reconcileModal(s.Modal)
}

func (d *Document) reconcileModal(m reportview.Modal) {
	setClass(d.modalRoot, classHidden, !m.Open)

	setText(d.modal["filename"], m.Ref.Filename)
	setText(d.modal["type"], string(m.Ref.ContentType))
	setText(d.modal["description"], m.Ref.Description)

	download := d.modal["download"]
	removeChildren(download)
	if m.Open {
		link := element(atom.A,
			htmllib.Attribute{Key: "href", Val: m.DownloadPath()},
			htmllib.Attribute{Key: "download", Val: m.Ref.Filename},
		)
		setText(link, "💾")
		download.AppendChild(link)
	}

	contents := d.modal["file-contents"]
	removeChildren(contents)
	if !m.Open {
		return
	}
	switch m.Phase {
	case reportview.PhaseLoaded:
		if m.Content == nil {
			return
		}
		if m.Content.Type == reportview.ContentImage {
			contents.AppendChild(element(atom.Img,
				htmllib.Attribute{Key: "id", Val: "file-modal-contents-image"},
				htmllib.Attribute{Key: "src", Val: m.Content.DisplayRef},
			))
			return
		}
		div := element(atom.Div, htmllib.Attribute{Key: "id", Val: "file-modal-contents-plaintext"})
		setText(div, m.Content.Text)
		contents.AppendChild(div)
	case reportview.PhaseFailed, reportview.PhaseUnsupported:
		div := element(atom.Div, htmllib.Attribute{Key: "id", Val: "file-modal-contents-error"})
		setText(div, modalError(m))
		contents.AppendChild(div)
	}
}

func modalError(m reportview.Modal) string {
	if m.Phase == reportview.PhaseUnsupported {
		return reportview.ErrUnsupportedContentType.Error()
	}
	if m.Err == nil {
		return "attachment could not be loaded"
	}
	return m.Err.Error()
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	if err := htmllib.Render(w, d.root); err != nil {
		return fmt.Errorf("render document: %w", err)
	}
	return nil
}
