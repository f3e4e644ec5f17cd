package reportview_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tasmanium/reportview"
	"pgregory.net/rapid"
)

func TestParseID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want reportview.Key
	}{
		{"flat entry", "entry-flat-abc", reportview.Key{Kind: reportview.KindFlatEntry, ScenarioID: "abc"}},
		{"outline entry", "entry-outline-abc", reportview.Key{Kind: reportview.KindOutlineEntry, ScenarioID: "abc"}},
		{"feature entry", "entry-features-abc", reportview.Key{Kind: reportview.KindFeatureEntry, ScenarioID: "abc"}},
		{"exception entry", "entry-exceptions-abc", reportview.Key{Kind: reportview.KindExceptionEntry, ScenarioID: "abc"}},
		{"scenario panel", "scenario-abc", reportview.Key{Kind: reportview.KindScenario, ScenarioID: "abc"}},
		{"repeat list", "scenario-repeat-list-r9", reportview.Key{Kind: reportview.KindRepeatList, RepeatID: "r9"}},
		{"show repeats", "show-repeats-r9-abc", reportview.Key{Kind: reportview.KindShowRepeats, RepeatID: "r9", ScenarioID: "abc"}},
		{"repeat button", "test-repeat-button-r1-abc", reportview.Key{Kind: reportview.KindRepeatButton, RepeatID: "r1", ScenarioID: "abc"}},
		{"toggle steps", "toggle-steps-abc", reportview.Key{Kind: reportview.KindToggleSteps, ScenarioID: "abc"}},
		{"show log", "show-log-r9", reportview.Key{Kind: reportview.KindShowLog, Folder: "r9"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := reportview.ParseID(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.raw, got.ID(), "ID should rebuild the raw identifier")
		})
	}
}

func TestParseID_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{"unknown prefix", "entry-tree-abc"},
		{"empty key", "entry-flat-"},
		{"repeat without separator", "show-repeats-abc"},
		{"repeat missing scenario", "test-repeat-button-r1-"},
		{"repeat missing repeat", "test-repeat-button--abc"},
		{"repeat with extra part", "show-repeats-r1-abc-def"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := reportview.ParseID(tt.raw)
			require.Error(t, err)
			assert.ErrorIs(t, err, reportview.ErrMalformedID)

			var malformed *reportview.MalformedIDError
			require.True(t, errors.As(err, &malformed))
			assert.Equal(t, tt.raw, malformed.ID)
		})
	}
}

func TestDecode_WrongPrefix(t *testing.T) {
	t.Parallel()

	_, err := reportview.Decode("entry-flat-abc", reportview.KindOutlineEntry)

	assert.ErrorIs(t, err, reportview.ErrMalformedID)
}

func TestKind_View(t *testing.T) {
	t.Parallel()

	for _, v := range reportview.ViewModes {
		got, ok := reportview.EntryKind(v).View()
		assert.True(t, ok)
		assert.Equal(t, v, got)
	}

	_, ok := reportview.KindScenario.View()
	assert.False(t, ok, "scenario panels belong to no view")
}

func TestKey_RoundTrip(t *testing.T) {
	t.Parallel()

	idGen := rapid.StringMatching(`[0-9a-f]{1,40}`)
	kinds := []reportview.Kind{
		reportview.KindFlatEntry,
		reportview.KindOutlineEntry,
		reportview.KindFeatureEntry,
		reportview.KindExceptionEntry,
		reportview.KindScenario,
		reportview.KindRepeatList,
		reportview.KindShowRepeats,
		reportview.KindRepeatButton,
		reportview.KindToggleSteps,
		reportview.KindShowLog,
	}

	rapid.Check(t, func(t *rapid.T) {
		kind := rapid.SampledFrom(kinds).Draw(t, "kind")
		key := reportview.Key{Kind: kind}
		switch kind {
		case reportview.KindShowRepeats, reportview.KindRepeatButton:
			key.RepeatID = idGen.Draw(t, "repeat")
			key.ScenarioID = idGen.Draw(t, "scenario")
		case reportview.KindRepeatList:
			key.RepeatID = idGen.Draw(t, "repeat")
		case reportview.KindShowLog:
			key.Folder = idGen.Draw(t, "folder")
		default:
			key.ScenarioID = idGen.Draw(t, "scenario")
		}

		got, err := reportview.ParseID(key.ID())
		if err != nil {
			t.Fatalf("ParseID(%q): %v", key.ID(), err)
		}
		if got != key {
			t.Fatalf("round trip: got %+v, want %+v", got, key)
		}
	})
}
