package reportview

// ColorPair represents a foreground and background color combination.
// Colors should be hex strings in "#RRGGBB" format (e.g., "#ff0000" for red).
// Empty strings are valid and indicate no color override (use terminal default).
type ColorPair struct {
	Foreground string
	Background string
}

// Styles contains color pairs for the visual elements of a report view.
type Styles struct {
	Passed      ColorPair // Passed entries, steps and wrappers
	Failed      ColorPair // Failed entries, steps and wrappers
	Skipped     ColorPair // Skipped entries, steps and wrappers
	Selected    ColorPair // The list entry of the open scenario
	Header      ColorPair // Panel and group headers
	Toolbar     ColorPair // Inactive toolbar buttons
	ToolbarOn   ColorPair // The active view button
	Muted       ColorPair // Placeholders, hints, metadata
	ModalBorder ColorPair // Attachment modal frame
	Error       ColorPair // Retrieval failures and diagnostics
}

// Status returns the color pair for entries with status s.
func (s Styles) Status(status Status) ColorPair {
	switch status {
	case StatusPassed:
		return s.Passed
	case StatusFailed:
		return s.Failed
	case StatusSkipped:
		return s.Skipped
	}
	return s.Muted
}

// Palette holds the base and syntax colors of a theme.
type Palette struct {
	Background string
	Foreground string

	// Syntax highlighting colors for plaintext attachments.
	Keyword     string
	String      string
	Number      string
	Comment     string
	Operator    string
	Function    string
	Type        string
	Constant    string
	Punctuation string

	// UI colors.
	UIBackground string
	UIForeground string
	UIAccent     string
}

// Theme provides styles for rendering reports.
// Different implementations can provide light/dark variants.
type Theme interface {
	Styles() Styles
	Palette() Palette
}
