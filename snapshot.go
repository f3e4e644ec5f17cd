package reportview

import "errors"

// Snapshot describes a static view of a report: the active grouping, the
// hidden statuses and the deep-link fragment.
type Snapshot struct {
	Mode     ViewMode
	Hidden   []Status
	Fragment string
}

// Events returns the events that produce the snapshot from the initial state.
func (s Snapshot) Events() []Event {
	events := []Event{Startup{Fragment: s.Fragment}, SetViewMode{Mode: s.Mode}}
	seen := make(map[Status]bool, len(s.Hidden))
	for _, st := range s.Hidden {
		if seen[st] {
			continue
		}
		seen[st] = true
		events = append(events, ToggleStatus{Status: st})
	}
	return events
}

// State replays the snapshot against r. Events that do not apply are
// skipped and their diagnostics joined into the returned error; the state is
// usable either way.
func (s Snapshot) State(r *Report) (State, error) {
	state := NewState()
	var errs []error
	for _, ev := range s.Events() {
		next, _, err := Reduce(r, state, ev)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		state = next
	}
	return state, errors.Join(errs...)
}
