package reportview

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies which document node an identifier names.
type Kind int

// Identifier kinds.
const (
	KindUnknown Kind = iota
	KindFlatEntry
	KindOutlineEntry
	KindFeatureEntry
	KindExceptionEntry
	KindScenario
	KindRepeatList
	KindShowRepeats
	KindRepeatButton
	KindToggleSteps
	KindShowLog
)

// Prefix returns the identifier prefix for the kind.
func (k Kind) Prefix() string {
	switch k {
	case KindFlatEntry:
		return "entry-flat-"
	case KindOutlineEntry:
		return "entry-outline-"
	case KindFeatureEntry:
		return "entry-features-"
	case KindExceptionEntry:
		return "entry-exceptions-"
	case KindScenario:
		return "scenario-"
	case KindRepeatList:
		return "scenario-repeat-list-"
	case KindShowRepeats:
		return "show-repeats-"
	case KindRepeatButton:
		return "test-repeat-button-"
	case KindToggleSteps:
		return "toggle-steps-"
	case KindShowLog:
		return "show-log-"
	}
	return ""
}

// View returns the view mode an entry kind belongs to.
func (k Kind) View() (ViewMode, bool) {
	switch k {
	case KindFlatEntry:
		return ViewFlat, true
	case KindOutlineEntry:
		return ViewOutline, true
	case KindFeatureEntry:
		return ViewFeature, true
	case KindExceptionEntry:
		return ViewException, true
	}
	return 0, false
}

// EntryKind returns the entry kind for a view mode.
func EntryKind(v ViewMode) Kind {
	switch v {
	case ViewOutline:
		return KindOutlineEntry
	case ViewFeature:
		return KindFeatureEntry
	case ViewException:
		return KindExceptionEntry
	}
	return KindFlatEntry
}

// isPair reports whether identifiers of this kind carry (repeatID, scenarioID).
func (k Kind) isPair() bool {
	return k == KindShowRepeats || k == KindRepeatButton
}

// Longer prefixes first so "scenario-repeat-list-" wins over "scenario-".
var kindsByPrefix = []Kind{
	KindRepeatList,
	KindRepeatButton,
	KindExceptionEntry,
	KindFeatureEntry,
	KindOutlineEntry,
	KindShowRepeats,
	KindToggleSteps,
	KindFlatEntry,
	KindScenario,
	KindShowLog,
}

// repeatSeparator splits the (repeatID, scenarioID) pair.
const repeatSeparator = "-"

// Key is a decoded identifier.
//
// Entry, scenario and toggle-steps kinds set ScenarioID. Repeat list kinds set
// RepeatID. Show-repeats and repeat-button kinds set both. Show-log kinds set
// Folder.
type Key struct {
	Kind       Kind
	ScenarioID string
	RepeatID   string
	Folder     string
}

// EntryKey returns the key of the list entry for scenarioID in view v.
func EntryKey(v ViewMode, scenarioID string) Key {
	return Key{Kind: EntryKind(v), ScenarioID: scenarioID}
}

// ID rebuilds the raw identifier.
func (k Key) ID() string {
	switch {
	case k.Kind.isPair():
		return k.Kind.Prefix() + k.RepeatID + repeatSeparator + k.ScenarioID
	case k.Kind == KindRepeatList:
		return k.Kind.Prefix() + k.RepeatID
	case k.Kind == KindShowLog:
		return k.Kind.Prefix() + k.Folder
	}
	return k.Kind.Prefix() + k.ScenarioID
}

// ErrMalformedID is matched by every MalformedIDError.
var ErrMalformedID = errors.New("malformed identifier")

// MalformedIDError reports an identifier that does not decode.
type MalformedIDError struct {
	ID     string
	Reason string
}

func (e *MalformedIDError) Error() string {
	return fmt.Sprintf("malformed identifier %q: %s", e.ID, e.Reason)
}

// Is reports whether target is ErrMalformedID.
func (e *MalformedIDError) Is(target error) bool {
	return target == ErrMalformedID
}

// ParseID decodes a raw identifier, detecting its kind from the prefix.
func ParseID(raw string) (Key, error) {
	for _, k := range kindsByPrefix {
		if strings.HasPrefix(raw, k.Prefix()) {
			return Decode(raw, k)
		}
	}
	return Key{}, &MalformedIDError{ID: raw, Reason: "unknown prefix"}
}

// Decode strips the prefix of kind from raw and decodes the remainder.
func Decode(raw string, kind Kind) (Key, error) {
	prefix := kind.Prefix()
	if prefix == "" {
		return Key{}, &MalformedIDError{ID: raw, Reason: "unknown kind"}
	}
	rest, ok := strings.CutPrefix(raw, prefix)
	if !ok {
		return Key{}, &MalformedIDError{ID: raw, Reason: "missing prefix " + prefix}
	}
	if rest == "" {
		return Key{}, &MalformedIDError{ID: raw, Reason: "empty key"}
	}

	key := Key{Kind: kind}
	switch {
	case kind.isPair():
		repeatID, scenarioID, found := strings.Cut(rest, repeatSeparator)
		if !found || repeatID == "" || scenarioID == "" || strings.Contains(scenarioID, repeatSeparator) {
			return Key{}, &MalformedIDError{ID: raw, Reason: "want <repeat>-<scenario>"}
		}
		key.RepeatID = repeatID
		key.ScenarioID = scenarioID
	case kind == KindRepeatList:
		key.RepeatID = rest
	case kind == KindShowLog:
		key.Folder = rest
	default:
		key.ScenarioID = rest
	}
	return key, nil
}
