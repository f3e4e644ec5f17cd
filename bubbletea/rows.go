package bubbletea

import (
	"strconv"

	"github.com/tasmanium/reportview"
)

type rowKind int

const (
	rowGroup rowKind = iota
	rowEntry
	rowStepsToggle
	rowLog
	rowRepeats
	rowStep
	rowAttachment
	rowAttempt
)

// row is one selectable line of the list or detail pane.
type row struct {
	kind   rowKind
	depth  int
	title  string
	status reportview.Status

	entry       reportview.Entry
	collapsible string
	attachment  reportview.AttachmentRef
	key         reportview.Key
	folder      string
	active      bool
	open        bool
}

// listRows returns the rows of the active list. Grouped entries follow their
// group header and show only while the group is open.
func listRows(r *reportview.Report, s reportview.State) []row {
	var rows []row
	emitted := map[string]bool{}
	for _, e := range r.EntriesIn(s.Filter.Mode) {
		if e.Group == "" {
			if s.Filter.EntryVisible(e) {
				rows = append(rows, entryRow(e, s, 0))
			}
			continue
		}
		if emitted[e.Group] {
			continue
		}
		emitted[e.Group] = true

		c, ok := r.Collapsible(e.Group)
		if !ok || !s.CollapsibleVisible(c) {
			continue
		}
		rows = append(rows, row{
			kind:        rowGroup,
			title:       c.Title,
			status:      c.Status,
			collapsible: c.ID,
			open:        s.IsOpen(c.ID),
		})
		if !s.IsOpen(c.ID) {
			continue
		}
		for _, member := range r.EntriesIn(s.Filter.Mode) {
			if member.Group == c.ID && s.Filter.EntryVisible(member) {
				rows = append(rows, entryRow(member, s, 1))
			}
		}
	}
	return rows
}

func entryRow(e reportview.Entry, s reportview.State, depth int) row {
	return row{
		kind:   rowEntry,
		depth:  depth,
		title:  e.Name,
		status: e.Status,
		entry:  e,
		active: s.Selected == e.Key.ScenarioID,
	}
}

// detailRows returns the rows of the open scenario, or nil when the
// placeholder shows.
func detailRows(r *reportview.Report, s reportview.State) []row {
	if s.Selected == "" {
		return nil
	}
	sc, ok := r.Scenario(s.Selected)
	if !ok {
		return nil
	}
	if s.RepeatListVisible(sc.ID) {
		return attemptRows(sc, s)
	}

	rows := []row{{
		kind:   rowStepsToggle,
		title:  s.StepsLabel(sc.ID),
		key:    reportview.Key{Kind: reportview.KindToggleSteps, ScenarioID: sc.ID},
		active: s.Expanded[sc.ID],
	}}
	if folder := logFolder(sc, s); folder != "" {
		rows = append(rows, row{kind: rowLog, title: "Show log", folder: folder})
	}
	if sc.Repeats != nil {
		rows = append(rows, row{
			kind:  rowRepeats,
			title: "Show repeats",
			key:   reportview.Key{Kind: reportview.KindShowRepeats, RepeatID: sc.Repeats.ID, ScenarioID: sc.ID},
		})
	}

	for _, st := range sc.Steps {
		c, ok := r.Collapsible(st.ID)
		if ok && !s.CollapsibleVisible(c) {
			continue
		}
		rows = append(rows, row{
			kind:        rowStep,
			title:       st.Text,
			status:      st.Status,
			collapsible: st.ID,
			open:        s.IsOpen(st.ID),
		})
		if !s.IsOpen(st.ID) {
			continue
		}
		for _, a := range st.Attachments {
			rows = append(rows, row{
				kind:       rowAttachment,
				depth:      1,
				title:      attachmentTitle(a),
				attachment: a,
			})
		}
	}
	return rows
}

func attemptRows(sc *reportview.Scenario, s reportview.State) []row {
	active, _ := s.ActiveAttempt(sc)
	rows := make([]row, 0, len(sc.Repeats.Attempts))
	for i, a := range sc.Repeats.Attempts {
		rows = append(rows, row{
			kind:   rowAttempt,
			title:  attemptTitle(i, len(sc.Repeats.Attempts)),
			status: a.Status,
			key:    reportview.Key{Kind: reportview.KindRepeatButton, RepeatID: a.ID, ScenarioID: sc.ID},
			active: a.ID == active.ID,
		})
	}
	return rows
}

// logFolder returns the log folder of the attempt being shown.
func logFolder(sc *reportview.Scenario, s reportview.State) string {
	if a, ok := s.ActiveAttempt(sc); ok && a.LogFolder != "" {
		return a.LogFolder
	}
	return sc.LogFolder
}

func attachmentTitle(a reportview.AttachmentRef) string {
	if a.Description != "" {
		return a.Filename + " (" + a.Description + ")"
	}
	return a.Filename
}

func attemptTitle(i, n int) string {
	if i == n-1 {
		return "Attempt " + strconv.Itoa(i+1) + " (latest)"
	}
	return "Attempt " + strconv.Itoa(i+1)
}
