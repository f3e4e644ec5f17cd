// Package html reads generated report documents and reconciles view state
// back onto them using golang.org/x/net/html.
package html

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tasmanium/reportview"
	htmllib "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Compile-time interface verification.
var _ reportview.DocumentParser = (*Parser)(nil)

// Document node identifiers and classes.
const (
	placeholderID = "single-test-placeholder"
	modalID       = "file-modal"

	classPanel       = "single-test-content"
	classEntry       = "test-list-entry-default"
	classCollapsible = "collapsible"
	classOutline     = "scenario-outline"
	classAttachment  = "step-attachment"
	classRepeatBtn   = "test-repeat-button"
	className        = "scenario-name"
	classFeature     = "scenario-feature"

	classHidden   = "hidden"
	classActive   = "active"
	classSelected = "selected"
	classOff      = "off"
)

var modalParts = []string{"filename", "type", "description", "file-contents", "download", "close"}

// ErrMissingNode is matched by every MissingNodeError.
var ErrMissingNode = errors.New("missing document node")

// MissingNodeError reports a node the document contract requires but the
// document does not contain.
type MissingNodeError struct {
	ID string
}

func (e *MissingNodeError) Error() string {
	return fmt.Sprintf("missing document node %q", e.ID)
}

// Is reports whether target is ErrMissingNode.
func (e *MissingNodeError) Is(target error) bool {
	return target == ErrMissingNode
}

// Parser reads generated report documents.
type Parser struct{}

// NewParser creates a new document parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse reads a report document and returns its model.
func (p *Parser) Parse(r io.Reader) (*reportview.Report, error) {
	doc, err := p.ParseDocument(r)
	if err != nil {
		return nil, err
	}
	return doc.Report(), nil
}

// ParseDocument reads a report document and keeps its node tree so state can
// be reconciled onto it.
func (p *Parser) ParseDocument(r io.Reader) (*Document, error) {
	root, err := htmllib.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	b := newBuilder(root)
	if err := b.build(); err != nil {
		return nil, err
	}
	return b.doc, nil
}

// scope is what encloses a node during the walk.
type scope struct {
	view    reportview.ViewMode
	inList  bool
	panel   *reportview.Scenario
	group   string // id of the list collapsible whose content encloses the node
	stepIdx int    // index+1 of the enclosing step, 0 for none
}

type builder struct {
	doc         *Document
	byID        map[string]*htmllib.Node
	contentOf   map[*htmllib.Node]string // content node -> collapsible id
	showRepeats map[string]reportview.Key
	collapsible int
}

func newBuilder(root *htmllib.Node) *builder {
	return &builder{
		doc: &Document{
			root:        root,
			report:      &reportview.Report{},
			viewButtons: make(map[reportview.ViewMode]*htmllib.Node),
			lists:       make(map[reportview.ViewMode]*htmllib.Node),
			toggles:     make(map[reportview.Status]*htmllib.Node),
			stepToggles: make(map[string]*htmllib.Node),
			repeatLists: make(map[string]repeatListNode),
			modal:       make(map[string]*htmllib.Node),
		},
		byID:        make(map[string]*htmllib.Node),
		contentOf:   make(map[*htmllib.Node]string),
		showRepeats: make(map[string]reportview.Key),
	}
}

func (b *builder) build() error {
	walk(b.doc.root, func(n *htmllib.Node) bool {
		if isElement(n) {
			if id := attr(n, "id"); id != "" {
				if _, dup := b.byID[id]; !dup {
					b.byID[id] = n
				}
			}
			if n.DataAtom == atom.Title && b.doc.report.Title == "" {
				b.doc.report.Title = textContent(n)
			}
		}
		return true
	})

	if err := b.fixedNodes(); err != nil {
		return err
	}

	b.visitChildren(b.doc.root, scope{})

	if err := b.repeatGroups(); err != nil {
		return err
	}
	return b.finishScenarios()
}

func (b *builder) require(id string) (*htmllib.Node, error) {
	n, ok := b.byID[id]
	if !ok {
		return nil, &MissingNodeError{ID: id}
	}
	return n, nil
}

func (b *builder) fixedNodes() error {
	var err error
	if b.doc.placeholder, err = b.require(placeholderID); err != nil {
		return err
	}
	if b.doc.modalRoot, err = b.require(modalID); err != nil {
		return err
	}
	for _, part := range modalParts {
		n, err := b.require(modalID + "-" + part)
		if err != nil {
			return err
		}
		b.doc.modal[part] = n
	}
	for _, v := range reportview.ViewModes {
		button, err := b.require("show-" + v.String())
		if err != nil {
			return err
		}
		list, err := b.require("test-list-" + v.String())
		if err != nil {
			return err
		}
		b.doc.viewButtons[v] = button
		b.doc.lists[v] = list
	}
	for _, s := range reportview.Statuses {
		n, err := b.require("toggle-" + string(s))
		if err != nil {
			return err
		}
		b.doc.toggles[s] = n
	}
	return nil
}

func (b *builder) visitChildren(n *htmllib.Node, sc scope) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !isElement(c) {
			continue
		}
		b.visit(c, sc)
	}
}

func (b *builder) visit(n *htmllib.Node, sc scope) {
	id := attr(n, "id")

	if owner, ok := b.contentOf[n]; ok {
		if sc.panel != nil {
			// Content of a nested section stays within its enclosing step.
			if idx := b.stepIndex(sc.panel, owner); idx > 0 {
				sc.stepIdx = idx
			}
		} else {
			sc.group = owner
		}
	}

	for _, v := range reportview.ViewModes {
		if n == b.doc.lists[v] {
			sc.view, sc.inList = v, true
		}
	}

	switch {
	case hasClass(n, classPanel):
		if sc = b.panel(n, id, sc); sc.panel == nil {
			return
		}
	case hasClass(n, classEntry):
		b.entry(n, id, sc)
	case hasClass(n, classCollapsible):
		b.collapsibleHeader(n, id, sc)
	case hasClass(n, classAttachment):
		b.attachment(n, sc)
		return
	case hasClass(n, classRepeatBtn):
		b.repeatButton(n, id)
	}

	if key, err := reportview.ParseID(id); err == nil {
		b.keyed(n, key, sc)
	}

	b.visitChildren(n, sc)
}

func (b *builder) diagnose(err error) {
	b.doc.diagnostics = append(b.doc.diagnostics, err)
}

func (b *builder) panel(n *htmllib.Node, id string, sc scope) scope {
	key, err := reportview.Decode(id, reportview.KindScenario)
	if err != nil {
		b.diagnose(err)
		sc.panel = nil
		return sc
	}
	b.doc.panels = append(b.doc.panels, panelNode{id: key.ScenarioID, node: n})
	if _, dup := b.doc.report.Scenario(key.ScenarioID); dup {
		// Only the first panel with an id can be revealed; later ones stay hidden.
		sc.panel = nil
		return sc
	}

	scenario := &reportview.Scenario{
		ID:      key.ScenarioID,
		Feature: attr(n, "data-feature"),
	}
	if s, err := reportview.ParseStatus(attr(n, "data-status")); err == nil {
		scenario.Status = s
	}
	if name := findClass(n, className); name != nil {
		scenario.Name = textContent(name)
	}
	if scenario.Feature == "" {
		if f := findClass(n, classFeature); f != nil {
			scenario.Feature = textContent(f)
		}
	}
	b.doc.report.Scenarios = append(b.doc.report.Scenarios, scenario)

	sc.panel = scenario
	sc.stepIdx = 0
	return sc
}

func (b *builder) entry(n *htmllib.Node, id string, sc scope) {
	key, err := reportview.ParseID(id)
	if err == nil {
		if _, ok := key.Kind.View(); !ok {
			err = &reportview.MalformedIDError{ID: id, Reason: "not a list entry"}
		}
	}
	if err != nil {
		b.diagnose(err)
		return
	}
	e := reportview.Entry{
		Key:    key,
		Name:   textContent(n),
		Status: statusClass(n, "test-list-entry-"),
		Group:  sc.group,
	}
	b.doc.report.Entries = append(b.doc.report.Entries, e)
	b.doc.entries = append(b.doc.entries, entryNode{entry: e, node: n})
}

func (b *builder) collapsibleHeader(n *htmllib.Node, id string, sc scope) {
	if id == "" {
		b.collapsible++
		id = fmt.Sprintf("collapsible-%d", b.collapsible)
	}
	c := reportview.Collapsible{
		ID:     id,
		Title:  textContent(n),
		Status: statusClass(n, "collapsible-"),
	}
	switch {
	case sc.panel != nil && stepOf(n, sc.panel.ID):
		c.Kind = reportview.CollapsibleStep
		c.ScenarioID = sc.panel.ID
		sc.panel.Steps = append(sc.panel.Steps, reportview.Step{ID: id, Text: c.Title, Status: c.Status})
	case sc.panel != nil:
		// Expand-all only reaches headers tagged scenario-<id>.
		c.Kind = reportview.CollapsibleDetail
	case hasClass(n, classOutline):
		c.Kind = reportview.CollapsibleOutline
		c.View = sc.view
	default:
		c.Kind = reportview.CollapsibleGroup
		c.View = sc.view
	}

	content := nextElement(n)
	if content == nil {
		b.diagnose(&MissingNodeError{ID: id + " content"})
	} else {
		b.contentOf[content] = id
	}

	b.doc.report.Collapsibles = append(b.doc.report.Collapsibles, c)
	b.doc.collapsibles = append(b.doc.collapsibles, collapsibleNode{c: c, header: n, content: content})
}

// stepOf reports whether the collapsible header n carries the
// scenario-<scenarioID> class that marks the steps of a scenario.
func stepOf(n *htmllib.Node, scenarioID string) bool {
	for _, class := range classes(n) {
		if key, err := reportview.Decode(class, reportview.KindScenario); err == nil && key.ScenarioID == scenarioID {
			return true
		}
	}
	return false
}

func (b *builder) stepIndex(sc *reportview.Scenario, id string) int {
	for i, st := range sc.Steps {
		if st.ID == id {
			return i + 1
		}
	}
	return 0
}

func (b *builder) attachment(n *htmllib.Node, sc scope) {
	part := func(name string) string {
		if c := findClass(n, classAttachment+"-"+name); c != nil {
			return textContent(c)
		}
		return ""
	}
	ref := reportview.AttachmentRef{
		Folder:      part("folder"),
		Filename:    part("filename"),
		ContentType: reportview.ContentType(part("type")),
		Description: part("description"),
	}
	if ref.Filename == "" {
		b.diagnose(&MissingNodeError{ID: classAttachment + "-filename"})
		return
	}
	if sc.panel == nil || sc.stepIdx == 0 {
		b.diagnose(fmt.Errorf("attachment %s outside a step", ref.Path()))
		return
	}
	step := &sc.panel.Steps[sc.stepIdx-1]
	step.Attachments = append(step.Attachments, ref)
}

func (b *builder) repeatButton(n *htmllib.Node, id string) {
	key, err := reportview.Decode(id, reportview.KindRepeatButton)
	if err != nil {
		b.diagnose(err)
		return
	}
	b.doc.repeatButtons = append(b.doc.repeatButtons, repeatButtonNode{key: key, node: n})
}

func (b *builder) keyed(n *htmllib.Node, key reportview.Key, sc scope) {
	switch key.Kind {
	case reportview.KindRepeatList:
		b.doc.repeatLists[key.RepeatID] = repeatListNode{node: n}
	case reportview.KindToggleSteps:
		b.doc.stepToggles[key.ScenarioID] = n
	case reportview.KindShowLog:
		if sc.panel != nil && sc.panel.LogFolder == "" {
			sc.panel.LogFolder = key.Folder
		}
	case reportview.KindShowRepeats:
		if sc.panel != nil {
			b.showRepeats[sc.panel.ID] = key
		}
	}
}

func (b *builder) repeatGroups() error {
	for _, sc := range b.doc.report.Scenarios {
		key, ok := b.showRepeats[sc.ID]
		if !ok {
			continue
		}
		list, ok := b.doc.repeatLists[key.RepeatID]
		if !ok {
			return &MissingNodeError{ID: reportview.Key{Kind: reportview.KindRepeatList, RepeatID: key.RepeatID}.ID()}
		}

		g := &reportview.RepeatGroup{ID: key.RepeatID, ScenarioID: key.ScenarioID}
		for _, rb := range b.doc.repeatButtons {
			if rb.key.ScenarioID != key.ScenarioID || !contains(list.node, rb.node) {
				continue
			}
			g.Attempts = append(g.Attempts, reportview.Repeat{
				ID:        rb.key.RepeatID,
				Status:    statusClass(rb.node, classRepeatBtn+"-"),
				LogFolder: rb.key.RepeatID,
			})
		}
		sc.Repeats = g
	}
	return nil
}

func (b *builder) finishScenarios() error {
	for _, sc := range b.doc.report.Scenarios {
		if _, ok := b.doc.stepToggles[sc.ID]; !ok {
			return &MissingNodeError{ID: reportview.Key{Kind: reportview.KindToggleSteps, ScenarioID: sc.ID}.ID()}
		}
		for _, e := range b.doc.report.Entries {
			if e.Key.ScenarioID != sc.ID {
				continue
			}
			if sc.Name == "" {
				sc.Name = e.Name
			}
			if sc.Status == "" {
				sc.Status = e.Status
			}
		}
	}
	return nil
}

// statusClass returns the status named by the first class "<prefix><status>".
func statusClass(n *htmllib.Node, prefix string) reportview.Status {
	for _, c := range classes(n) {
		rest, ok := strings.CutPrefix(c, prefix)
		if !ok {
			continue
		}
		if s, err := reportview.ParseStatus(rest); err == nil {
			return s
		}
	}
	return ""
}

func contains(ancestor, n *htmllib.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == ancestor {
			return true
		}
	}
	return false
}
