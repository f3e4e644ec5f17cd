// Package reportview provides domain types and the state controller for
// browsing a pre-rendered test execution report.
package reportview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
)

// Status is the outcome category of a scenario, step or list wrapper.
type Status string

// Statuses in display order.
const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusPassed, StatusFailed, StatusSkipped}

// ErrUnknownStatus is returned when a status string is not recognized.
var ErrUnknownStatus = errors.New("unknown status")

// ParseStatus converts a status class suffix into a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPassed, StatusFailed, StatusSkipped:
		return Status(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// ViewMode selects which grouping of scenarios the list shows.
type ViewMode int

// View modes.
const (
	ViewFlat ViewMode = iota
	ViewOutline
	ViewFeature
	ViewException
)

// ViewModes lists every view mode in toolbar order.
var ViewModes = []ViewMode{ViewFlat, ViewOutline, ViewFeature, ViewException}

// String returns the toolbar name of the view mode.
func (v ViewMode) String() string {
	switch v {
	case ViewFlat:
		return "flat"
	case ViewOutline:
		return "outlines"
	case ViewFeature:
		return "features"
	case ViewException:
		return "exceptions"
	}
	return fmt.Sprintf("ViewMode(%d)", int(v))
}

// ErrUnknownViewMode is returned when a view mode name is not recognized.
var ErrUnknownViewMode = errors.New("unknown view mode")

// ParseViewMode converts a toolbar name ("flat", "outlines", ...) into a ViewMode.
func ParseViewMode(s string) (ViewMode, error) {
	for _, v := range ViewModes {
		if v.String() == s {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownViewMode, s)
}

// ContentType identifies how attachment content is decoded.
type ContentType string

// Supported content types.
const (
	ContentPlaintext ContentType = "plaintext"
	ContentImage     ContentType = "image"
)

// Supported reports whether content of this type can be displayed.
func (c ContentType) Supported() bool {
	return c == ContentPlaintext || c == ContentImage
}

// AttachmentRef points at an artifact stored next to the report.
// The reference is known statically; content is fetched on demand.
type AttachmentRef struct {
	Folder      string
	Filename    string
	ContentType ContentType
	Description string
}

// Path returns the retrieval path relative to the report root.
func (a AttachmentRef) Path() string {
	return path.Join(a.Folder, a.Filename)
}

// Scenario log attachments are synthesized from the log folder.
const (
	ScenarioLogFilename    = "scenario.log"
	ScenarioLogDescription = "Scenario log."
)

// ScenarioLogRef returns the reference for the scenario log stored in folder.
func ScenarioLogRef(folder string) AttachmentRef {
	return AttachmentRef{
		Folder:      folder,
		Filename:    ScenarioLogFilename,
		ContentType: ContentPlaintext,
		Description: ScenarioLogDescription,
	}
}

// Step is one step of a scenario. Its details live in a step collapsible.
type Step struct {
	ID          string // collapsible id
	Text        string
	Status      Status
	Attachments []AttachmentRef
}

// Repeat is one execution attempt of a scenario.
type Repeat struct {
	ID        string
	Status    Status
	LogFolder string
}

// RepeatGroup is the repeat history of a scenario. ID is the id of the most
// recent attempt; Attempts are ordered oldest first.
type RepeatGroup struct {
	ID         string
	ScenarioID string
	Attempts   []Repeat
}

// Latest returns the most recent attempt.
func (g *RepeatGroup) Latest() Repeat {
	if len(g.Attempts) == 0 {
		return Repeat{ID: g.ID}
	}
	return g.Attempts[len(g.Attempts)-1]
}

// Attempt returns the attempt with the given id.
func (g *RepeatGroup) Attempt(id string) (Repeat, bool) {
	for _, r := range g.Attempts {
		if r.ID == id {
			return r, true
		}
	}
	return Repeat{}, false
}

// Scenario is a scenario detail panel.
type Scenario struct {
	ID        string
	Name      string
	Feature   string
	Status    Status
	Steps     []Step
	LogFolder string       // empty when the scenario has no log
	Repeats   *RepeatGroup // nil when the scenario ran once
}

// Entry is one list entry pointing at a scenario. A scenario is listed once
// per view it belongs to.
type Entry struct {
	Key    Key
	Name   string
	Status Status
	Group  string // id of the wrapping list collapsible, if any
}

// View returns the view mode the entry is listed in.
func (e Entry) View() ViewMode {
	v, _ := e.Key.Kind.View()
	return v
}

// CollapsibleKind distinguishes collapsible sections.
type CollapsibleKind int

// Collapsible kinds.
const (
	CollapsibleStep    CollapsibleKind = iota // step details inside a scenario panel
	CollapsibleOutline                        // scenario outline group in a list
	CollapsibleGroup                          // feature or exception group in a list
	CollapsibleDetail                         // nested section inside a scenario panel that is not a step
)

// Collapsible is a header/content pair whose content visibility toggles.
type Collapsible struct {
	ID         string
	Kind       CollapsibleKind
	Title      string
	Status     Status
	View       ViewMode // list collapsibles only
	ScenarioID string   // step collapsibles only
}

// Report is the document model produced by the report generator.
type Report struct {
	Title        string
	Scenarios    []*Scenario
	Entries      []Entry
	Collapsibles []Collapsible
}

// Scenario returns the first scenario panel with the given id.
func (r *Report) Scenario(id string) (*Scenario, bool) {
	for _, s := range r.Scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}

// RepeatGroup returns the repeat group whose most recent attempt has the given id.
func (r *Report) RepeatGroup(id string) (*RepeatGroup, bool) {
	for _, s := range r.Scenarios {
		if s.Repeats != nil && s.Repeats.ID == id {
			return s.Repeats, true
		}
	}
	return nil, false
}

// Collapsible returns the collapsible with the given id.
func (r *Report) Collapsible(id string) (Collapsible, bool) {
	for _, c := range r.Collapsibles {
		if c.ID == id {
			return c, true
		}
	}
	return Collapsible{}, false
}

// EntriesIn returns the entries listed in the given view, in document order.
func (r *Report) EntriesIn(v ViewMode) []Entry {
	var entries []Entry
	for _, e := range r.Entries {
		if e.View() == v {
			entries = append(entries, e)
		}
	}
	return entries
}

// StepCollapsibles returns the step collapsibles belonging to a scenario.
func (r *Report) StepCollapsibles(scenarioID string) []Collapsible {
	var cs []Collapsible
	for _, c := range r.Collapsibles {
		if c.Kind == CollapsibleStep && c.ScenarioID == scenarioID {
			cs = append(cs, c)
		}
	}
	return cs
}

// DocumentParser reads a generated report document.
type DocumentParser interface {
	Parse(r io.Reader) (*Report, error)
}

// Fetcher retrieves attachment bytes by path relative to the report root.
type Fetcher interface {
	Fetch(ctx context.Context, path string) ([]byte, error)
}

// Location holds the deep-link fragment.
type Location interface {
	// Fragment returns the current fragment without the leading "#".
	Fragment() string
	// SetFragment replaces the fragment.
	SetFragment(scenarioID string) error
}

// LocationWatcher reports fragments written to a location by other processes.
type LocationWatcher interface {
	// Watch calls onChange with each new fragment until ctx is done.
	Watch(ctx context.Context, onChange func(fragment string)) error
}

// Clipboard provides access to the system clipboard.
type Clipboard interface {
	Copy(content string) error
}

// Viewer displays a report and blocks until the user exits.
type Viewer interface {
	View(ctx context.Context, report *Report) error
}
