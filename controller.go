package reportview

import "fmt"

// Controller owns the state of one report view. It commits the result of
// Reduce and keeps the Location in sync with the selection.
//
// A Controller is not safe for concurrent use; events are expected to arrive
// from a single event loop.
type Controller struct {
	report   *Report
	state    State
	location Location
}

// NewController returns a controller for report. A nil location keeps the
// fragment in memory.
func NewController(report *Report, location Location) *Controller {
	if location == nil {
		location = NewMemoryLocation("")
	}
	return &Controller{
		report:   report,
		state:    NewState(),
		location: location,
	}
}

// Report returns the report being viewed.
func (c *Controller) Report() *Report {
	return c.report
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// Location returns the location the controller writes selections to.
func (c *Controller) Location() Location {
	return c.location
}

// Start applies the fragment held by the location on initial load.
func (c *Controller) Start() error {
	_, err := c.Dispatch(Startup{Fragment: c.location.Fragment()})
	return err
}

// Dispatch applies ev. SetFragment effects are performed against the
// location; every other effect is returned for the caller to perform.
//
// Errors from Reduce are diagnostics and leave the state unchanged. A failure
// to write the location is returned after the new state has been committed.
func (c *Controller) Dispatch(ev Event) ([]Effect, error) {
	next, effects, err := Reduce(c.report, c.state, ev)
	if err != nil {
		return nil, err
	}
	c.state = next

	var rest []Effect
	var locErr error
	for _, e := range effects {
		if sf, ok := e.(SetFragment); ok {
			if err := c.location.SetFragment(sf.ScenarioID); err != nil && locErr == nil {
				locErr = fmt.Errorf("set fragment: %w", err)
			}
			continue
		}
		rest = append(rest, e)
	}
	return rest, locErr
}
