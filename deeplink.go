package reportview

import (
	"strings"
	"sync"
)

// ParseFragment returns the scenario id held by a location fragment.
// The leading "#" is optional.
func ParseFragment(fragment string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(fragment), "#"))
}

// FormatFragment returns the fragment for scenarioID, "#<scenarioID>".
func FormatFragment(scenarioID string) string {
	if scenarioID == "" {
		return ""
	}
	return "#" + scenarioID
}

// SplitLink splits "report.html#abc" into the document path and scenario id.
func SplitLink(link string) (document, scenarioID string) {
	document, fragment, _ := strings.Cut(link, "#")
	return document, ParseFragment(fragment)
}

// readFragment reveals the scenario named by fragment. At startup an empty
// fragment leaves the placeholder up; a followed change to an empty fragment
// closes the open scenario.
func (s *State) readFragment(r *Report, fragment string, follow bool) ([]Effect, error) {
	id := ParseFragment(fragment)
	if id == "" {
		if follow {
			s.Selected = ""
			s.Panel = PanelScenario
		}
		return nil, nil
	}
	if follow && id == s.Selected {
		return nil, nil
	}
	sc, ok := r.Scenario(id)
	if !ok {
		return nil, &UnmatchedError{What: "scenario", ID: id, Reason: "fragment matches no scenario"}
	}
	s.Selected = sc.ID
	s.Panel = PanelScenario
	return nil, nil
}

// Compile-time interface verification.
var _ Location = (*MemoryLocation)(nil)

// MemoryLocation is a Location held in memory.
type MemoryLocation struct {
	mu       sync.Mutex
	fragment string
}

// NewMemoryLocation returns a location holding fragment.
func NewMemoryLocation(fragment string) *MemoryLocation {
	return &MemoryLocation{fragment: ParseFragment(fragment)}
}

// Fragment returns the current fragment.
func (l *MemoryLocation) Fragment() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fragment
}

// SetFragment replaces the fragment.
func (l *MemoryLocation) SetFragment(scenarioID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fragment = scenarioID
	return nil
}
