package reportview

import "fmt"

// FilterState holds the active view mode and the hidden status categories.
// The zero value shows the flat view with every status visible.
type FilterState struct {
	Mode   ViewMode
	Hidden map[Status]bool
}

// Visible reports whether entries with the given status are shown.
func (f FilterState) Visible(s Status) bool {
	return !f.Hidden[s]
}

// ListVisible reports whether the list container of view v is shown.
// Exactly one list is visible at a time.
func (f FilterState) ListVisible(v ViewMode) bool {
	return f.Mode == v
}

// EntryVisible reports whether e is shown: its view is active and its status
// is not hidden.
func (f FilterState) EntryVisible(e Entry) bool {
	return f.ListVisible(e.View()) && f.Visible(e.Status)
}

// WithMode returns a copy with v as the active view.
func (f FilterState) WithMode(v ViewMode) FilterState {
	f.Mode = v
	return f
}

// WithStatusToggled returns a copy with the visibility of s flipped.
func (f FilterState) WithStatusToggled(s Status) FilterState {
	hidden := make(map[Status]bool, len(f.Hidden)+1)
	for k, v := range f.Hidden {
		if v {
			hidden[k] = true
		}
	}
	if hidden[s] {
		delete(hidden, s)
	} else {
		hidden[s] = true
	}
	f.Hidden = hidden
	return f
}

// StatusLabel returns the toggle button label for s: "Hide passed" while
// passed entries are shown and "Show passed" while they are hidden.
func (f FilterState) StatusLabel(s Status) string {
	if f.Visible(s) {
		return fmt.Sprintf("Hide %s", s)
	}
	return fmt.Sprintf("Show %s", s)
}
