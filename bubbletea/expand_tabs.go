package bubbletea

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// tabWidth is the column interval of tab stops.
const tabWidth = 8

// ExpandTabs replaces tabs in one line of attachment text with spaces up to
// the next 8-column stop. startCol is the column the text starts at, so a
// highlighted token continues the stops of the tokens before it. Carriage
// returns are dropped; CRLF logs would otherwise corrupt the modal.
func ExpandTabs(s string, startCol int) string {
	if !strings.ContainsAny(s, "\t\r") {
		return s
	}

	var sb strings.Builder
	col := startCol
	for _, r := range s {
		switch r {
		case '\r':
		case '\t':
			next := (col/tabWidth + 1) * tabWidth
			sb.WriteString(strings.Repeat(" ", next-col))
			col = next
		default:
			sb.WriteRune(r)
			col += runewidth.RuneWidth(r)
		}
	}
	return sb.String()
}
