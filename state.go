package reportview

import (
	"errors"
	"fmt"
	"maps"
)

// Panel selects what the open scenario shows.
type Panel int

// Panels.
const (
	PanelScenario Panel = iota
	PanelRepeats
)

// State is the complete interactive state of a report view.
// Use NewState for a usable zero state; Reduce never mutates its input.
type State struct {
	Filter       FilterState
	Selected     string            // open scenario id, empty for none
	Panel        Panel             // what the open scenario shows
	Open         map[string]bool   // collapsible id -> open
	Expanded     map[string]bool   // scenario id -> expand-all is "on"
	ActiveRepeat map[string]string // scenario id -> active attempt id
	Modal        Modal
	LastToken    uint64
}

// NewState returns the initial state: flat view, every status visible,
// nothing selected, every collapsible closed.
func NewState() State {
	return State{
		Filter:       FilterState{Mode: ViewFlat, Hidden: map[Status]bool{}},
		Open:         map[string]bool{},
		Expanded:     map[string]bool{},
		ActiveRepeat: map[string]string{},
	}
}

func (s State) clone() State {
	c := s
	c.Filter.Hidden = cloneMap(s.Filter.Hidden)
	c.Open = cloneMap(s.Open)
	c.Expanded = cloneMap(s.Expanded)
	c.ActiveRepeat = cloneMap(s.ActiveRepeat)
	return c
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	c := make(map[K]V, len(m))
	maps.Copy(c, m)
	return c
}

// PlaceholderVisible reports whether the "no scenario selected" panel shows.
func (s State) PlaceholderVisible() bool {
	return s.Selected == ""
}

// PanelVisible reports whether the detail panel of scenarioID shows.
func (s State) PanelVisible(scenarioID string) bool {
	return s.Selected != "" && s.Selected == scenarioID && s.Panel == PanelScenario
}

// RepeatListVisible reports whether the repeat list of scenarioID shows.
func (s State) RepeatListVisible(scenarioID string) bool {
	return s.Selected != "" && s.Selected == scenarioID && s.Panel == PanelRepeats
}

// IsOpen reports whether the collapsible with the given id is open.
func (s State) IsOpen(id string) bool {
	return s.Open[id]
}

// CollapsibleVisible reports whether the wrapper of c is shown. List
// collapsibles also need their view to be active.
func (s State) CollapsibleVisible(c Collapsible) bool {
	if !s.Filter.Visible(c.Status) {
		return false
	}
	if c.Kind == CollapsibleStep || c.Kind == CollapsibleDetail {
		return true
	}
	return s.Filter.ListVisible(c.View)
}

// StepsLabel returns the expand-all button label for scenarioID.
func (s State) StepsLabel(scenarioID string) string {
	if s.Expanded[scenarioID] {
		return "Collapse all"
	}
	return "Expand all"
}

// ActiveAttempt returns the attempt of sc currently shown. It is the latest
// attempt unless another one was selected from the repeat list.
func (s State) ActiveAttempt(sc *Scenario) (Repeat, bool) {
	if sc == nil || sc.Repeats == nil {
		return Repeat{}, false
	}
	if id, ok := s.ActiveRepeat[sc.ID]; ok {
		if r, ok := sc.Repeats.Attempt(id); ok {
			return r, true
		}
	}
	return sc.Repeats.Latest(), true
}

// Event is a user action or asynchronous completion applied by Reduce.
type Event interface {
	event()
}

// SelectEntry opens the scenario a list entry points at.
type SelectEntry struct{ Key Key }

// SetViewMode activates one of the four list groupings.
type SetViewMode struct{ Mode ViewMode }

// ToggleStatus hides or shows a status category.
type ToggleStatus struct{ Status Status }

// ToggleCollapsible flips one collapsible section.
type ToggleCollapsible struct{ ID string }

// ToggleAllSteps is the per-scenario expand all / collapse all button.
type ToggleAllSteps struct{ ScenarioID string }

// ShowRepeats switches the open scenario to its repeat history.
type ShowRepeats struct{ Key Key }

// SelectRepeat picks an attempt from the repeat history.
type SelectRepeat struct{ Key Key }

// OpenAttachment opens the attachment modal for a step attachment.
type OpenAttachment struct{ Ref AttachmentRef }

// ShowLog opens the attachment modal for the scenario log in Folder.
type ShowLog struct{ Folder string }

// AttachmentLoaded delivers the result of a retrieval started by a
// FetchAttachment effect.
type AttachmentLoaded struct {
	Token   uint64
	Content *AttachmentContent
	Err     error
}

// CloseModal hides the attachment modal.
type CloseModal struct{}

// Startup applies the location fragment read on initial load.
type Startup struct{ Fragment string }

// FragmentChanged applies a fragment changed outside the view.
type FragmentChanged struct{ Fragment string }

func (SelectEntry) event()       {}
func (SetViewMode) event()       {}
func (ToggleStatus) event()      {}
func (ToggleCollapsible) event() {}
func (ToggleAllSteps) event()    {}
func (ShowRepeats) event()       {}
func (SelectRepeat) event()      {}
func (OpenAttachment) event()    {}
func (ShowLog) event()           {}
func (AttachmentLoaded) event()  {}
func (CloseModal) event()        {}
func (Startup) event()           {}
func (FragmentChanged) event()   {}

// Effect is a side effect requested by a transition. The caller performs it.
type Effect interface {
	effect()
}

// SetFragment asks for the location fragment to become ScenarioID.
type SetFragment struct{ ScenarioID string }

// FetchAttachment asks for Ref to be retrieved and delivered back as
// AttachmentLoaded with the same Token.
type FetchAttachment struct {
	Token uint64
	Ref   AttachmentRef
}

// CancelFetch asks for the retrieval with Token to be abandoned.
type CancelFetch struct{ Token uint64 }

// ReflowOutlines asks the view layer to re-measure outline groups after the
// set of visible entries changed.
type ReflowOutlines struct{}

func (SetFragment) effect()     {}
func (FetchAttachment) effect() {}
func (CancelFetch) effect()     {}
func (ReflowOutlines) effect()  {}

// ErrUnmatched is matched by every UnmatchedError.
var ErrUnmatched = errors.New("no matching node")

// ErrStaleResponse is returned when an attachment result no longer matches
// the open modal.
var ErrStaleResponse = errors.New("stale attachment response")

// UnmatchedError reports an event that refers to a node the report does not
// contain, or that is not applicable in the current state.
type UnmatchedError struct {
	What   string
	ID     string
	Reason string
}

func (e *UnmatchedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s %q not found", e.What, e.ID)
	}
	return fmt.Sprintf("%s %q: %s", e.What, e.ID, e.Reason)
}

// Is reports whether target is ErrUnmatched.
func (e *UnmatchedError) Is(target error) bool {
	return target == ErrUnmatched
}

// Reduce applies ev to s against report r and returns the next state with
// the effects the caller must perform.
//
// A non-nil error is a diagnostic: the event did not apply, the returned
// state equals s and there are no effects.
func Reduce(r *Report, s State, ev Event) (State, []Effect, error) {
	next := s.clone()
	effects, err := next.apply(r, ev)
	if err != nil {
		return s, nil, err
	}
	return next, effects, nil
}

func (s *State) apply(r *Report, ev Event) ([]Effect, error) {
	switch ev := ev.(type) {
	case SelectEntry:
		return s.selectEntry(r, ev.Key)
	case SetViewMode:
		s.Filter = s.Filter.WithMode(ev.Mode)
		return nil, nil
	case ToggleStatus:
		return s.toggleStatus(r, ev.Status)
	case ToggleCollapsible:
		if _, ok := r.Collapsible(ev.ID); !ok {
			return nil, &UnmatchedError{What: "collapsible", ID: ev.ID}
		}
		s.toggle(ev.ID)
		return nil, nil
	case ToggleAllSteps:
		return s.toggleAllSteps(r, ev.ScenarioID)
	case ShowRepeats:
		return s.showRepeats(r, ev.Key)
	case SelectRepeat:
		return s.selectRepeat(r, ev.Key)
	case OpenAttachment:
		return s.openModal(ev.Ref), nil
	case ShowLog:
		if ev.Folder == "" {
			return nil, &MalformedIDError{ID: KindShowLog.Prefix(), Reason: "empty folder"}
		}
		return s.openModal(ScenarioLogRef(ev.Folder)), nil
	case AttachmentLoaded:
		return s.attachmentLoaded(ev)
	case CloseModal:
		return s.closeModal(), nil
	case Startup:
		return s.readFragment(r, ev.Fragment, false)
	case FragmentChanged:
		return s.readFragment(r, ev.Fragment, true)
	}
	return nil, fmt.Errorf("unsupported event %T", ev)
}

// toggle is the single open/close transition shared by manual clicks,
// expand all and the outline reflow pass.
func (s *State) toggle(id string) {
	if s.Open[id] {
		delete(s.Open, id)
		return
	}
	s.Open[id] = true
}

func (s *State) selectEntry(r *Report, key Key) ([]Effect, error) {
	if _, ok := key.Kind.View(); !ok {
		return nil, &MalformedIDError{ID: key.ID(), Reason: "not a list entry"}
	}
	sc, ok := r.Scenario(key.ScenarioID)
	if !ok {
		return nil, &UnmatchedError{What: "scenario", ID: key.ScenarioID}
	}
	s.Selected = sc.ID
	s.Panel = PanelScenario
	return []Effect{SetFragment{ScenarioID: sc.ID}}, nil
}

func (s *State) toggleStatus(r *Report, status Status) ([]Effect, error) {
	if _, err := ParseStatus(string(status)); err != nil {
		return nil, err
	}
	s.Filter = s.Filter.WithStatusToggled(status)

	// Wrappers tagged with the status close in both directions.
	for _, c := range r.Collapsibles {
		if c.Status == status {
			delete(s.Open, c.ID)
		}
	}

	for _, c := range r.Collapsibles {
		if c.Kind == CollapsibleOutline {
			s.toggle(c.ID)
			s.toggle(c.ID)
		}
	}
	return []Effect{ReflowOutlines{}}, nil
}

func (s *State) toggleAllSteps(r *Report, scenarioID string) ([]Effect, error) {
	if _, ok := r.Scenario(scenarioID); !ok {
		return nil, &UnmatchedError{What: "scenario", ID: scenarioID}
	}
	expand := !s.Expanded[scenarioID]
	for _, c := range r.StepCollapsibles(scenarioID) {
		if s.Open[c.ID] != expand {
			s.toggle(c.ID)
		}
	}
	if expand {
		s.Expanded[scenarioID] = true
	} else {
		delete(s.Expanded, scenarioID)
	}
	return nil, nil
}

func (s *State) repeatGroup(r *Report, key Key, want Kind) (*RepeatGroup, error) {
	if key.Kind != want {
		return nil, &MalformedIDError{ID: key.ID(), Reason: "want prefix " + want.Prefix()}
	}
	sc, ok := r.Scenario(key.ScenarioID)
	if !ok {
		return nil, &UnmatchedError{What: "scenario", ID: key.ScenarioID}
	}
	if sc.Repeats == nil {
		return nil, &UnmatchedError{What: "scenario", ID: sc.ID, Reason: "has no repeats"}
	}
	return sc.Repeats, nil
}

func (s *State) showRepeats(r *Report, key Key) ([]Effect, error) {
	g, err := s.repeatGroup(r, key, KindShowRepeats)
	if err != nil {
		return nil, err
	}
	if g.ID != key.RepeatID {
		return nil, &UnmatchedError{What: "repeat list", ID: key.RepeatID}
	}
	if s.Selected != key.ScenarioID {
		return nil, &UnmatchedError{What: "scenario", ID: key.ScenarioID, Reason: "not open"}
	}
	s.Panel = PanelRepeats
	return nil, nil
}

func (s *State) selectRepeat(r *Report, key Key) ([]Effect, error) {
	g, err := s.repeatGroup(r, key, KindRepeatButton)
	if err != nil {
		return nil, err
	}
	if _, ok := g.Attempt(key.RepeatID); !ok && g.ID != key.RepeatID {
		return nil, &UnmatchedError{What: "repeat", ID: key.RepeatID}
	}
	s.ActiveRepeat[key.ScenarioID] = key.RepeatID
	s.Selected = key.ScenarioID
	s.Panel = PanelScenario
	return []Effect{SetFragment{ScenarioID: key.ScenarioID}}, nil
}
