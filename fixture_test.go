package reportview_test

import "github.com/tasmanium/reportview"

// newTestReport builds a small report:
//
//	s1 passed, two steps, listed flat and in outline o1
//	s2 failed, one step with attachments, three attempts, listed flat, in feature f1 and exception e1
//	s3 skipped, one step, listed flat and in outline o1
func newTestReport() *reportview.Report {
	return &reportview.Report{
		Title: "Test Report",
		Scenarios: []*reportview.Scenario{
			{
				ID:        "s1",
				Name:      "Login works",
				Feature:   "Login",
				Status:    reportview.StatusPassed,
				LogFolder: "s1",
				Steps: []reportview.Step{
					{ID: "st1a", Text: "Given a user", Status: reportview.StatusPassed},
					{ID: "st1b", Text: "Then they log in", Status: reportview.StatusPassed},
				},
			},
			{
				ID:        "s2",
				Name:      "Checkout fails",
				Feature:   "Checkout",
				Status:    reportview.StatusFailed,
				LogFolder: "r3",
				Steps: []reportview.Step{
					{
						ID:     "st2a",
						Text:   "When paying",
						Status: reportview.StatusFailed,
						Attachments: []reportview.AttachmentRef{
							{Folder: "r3/st2a", Filename: "response.txt", ContentType: reportview.ContentPlaintext, Description: "HTTP response"},
							{Folder: "r3/st2a", Filename: "screen.png", ContentType: reportview.ContentImage, Description: "Screenshot"},
						},
					},
				},
				Repeats: &reportview.RepeatGroup{
					ID:         "r3",
					ScenarioID: "s2",
					Attempts: []reportview.Repeat{
						{ID: "r1", Status: reportview.StatusFailed, LogFolder: "r1"},
						{ID: "r2", Status: reportview.StatusFailed, LogFolder: "r2"},
						{ID: "r3", Status: reportview.StatusFailed, LogFolder: "r3"},
					},
				},
			},
			{
				ID:      "s3",
				Name:    "Logout skipped",
				Feature: "Login",
				Status:  reportview.StatusSkipped,
				Steps: []reportview.Step{
					{ID: "st3a", Text: "Given nothing", Status: reportview.StatusSkipped},
				},
			},
		},
		Entries: []reportview.Entry{
			{Key: reportview.EntryKey(reportview.ViewFlat, "s1"), Name: "Login works", Status: reportview.StatusPassed},
			{Key: reportview.EntryKey(reportview.ViewFlat, "s2"), Name: "Checkout fails", Status: reportview.StatusFailed},
			{Key: reportview.EntryKey(reportview.ViewFlat, "s3"), Name: "Logout skipped", Status: reportview.StatusSkipped},
			{Key: reportview.EntryKey(reportview.ViewOutline, "s1"), Name: "Login works", Status: reportview.StatusPassed, Group: "o1"},
			{Key: reportview.EntryKey(reportview.ViewOutline, "s3"), Name: "Logout skipped", Status: reportview.StatusSkipped, Group: "o1"},
			{Key: reportview.EntryKey(reportview.ViewFeature, "s2"), Name: "Checkout fails", Status: reportview.StatusFailed, Group: "f1"},
			{Key: reportview.EntryKey(reportview.ViewException, "s2"), Name: "Checkout fails", Status: reportview.StatusFailed, Group: "e1"},
		},
		Collapsibles: []reportview.Collapsible{
			{ID: "o1", Kind: reportview.CollapsibleOutline, Title: "Login outline", Status: reportview.StatusPassed, View: reportview.ViewOutline},
			{ID: "f1", Kind: reportview.CollapsibleGroup, Title: "Checkout", Status: reportview.StatusFailed, View: reportview.ViewFeature},
			{ID: "e1", Kind: reportview.CollapsibleGroup, Title: "PaymentError", Status: reportview.StatusFailed, View: reportview.ViewException},
			{ID: "st1a", Kind: reportview.CollapsibleStep, Title: "Given a user", Status: reportview.StatusPassed, ScenarioID: "s1"},
			{ID: "st1b", Kind: reportview.CollapsibleStep, Title: "Then they log in", Status: reportview.StatusPassed, ScenarioID: "s1"},
			{ID: "st2a", Kind: reportview.CollapsibleStep, Title: "When paying", Status: reportview.StatusFailed, ScenarioID: "s2"},
			{ID: "st3a", Kind: reportview.CollapsibleStep, Title: "Given nothing", Status: reportview.StatusSkipped, ScenarioID: "s3"},
		},
	}
}

// reduce applies events in order and fails on the first diagnostic.
func reduce(r *reportview.Report, s reportview.State, events ...reportview.Event) (reportview.State, []reportview.Effect, error) {
	var all []reportview.Effect
	for _, ev := range events {
		next, effects, err := reportview.Reduce(r, s, ev)
		if err != nil {
			return s, all, err
		}
		s = next
		all = append(all, effects...)
	}
	return s, all, nil
}
