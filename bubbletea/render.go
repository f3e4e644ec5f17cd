package bubbletea

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/tasmanium/reportview"
	rvlipgloss "github.com/tasmanium/reportview/lipgloss"
)

const (
	toolbarHeight = 1
	minListWidth  = 24
	paneGap       = " │ "
	modalHeader   = 5 // filename, type, description, download, blank
)

// resize recomputes pane geometry from the window size.
func (m *Model) resize() {
	if !m.ready {
		return
	}
	m.help.Width = m.width
	bodyH := m.paneHeight()

	listW := min(max(minListWidth, m.width/3), m.width)
	detailW := max(1, m.width-listW-lipgloss.Width(paneGap))
	modalW := max(1, m.modalWidth()-4)
	modalH := max(1, bodyH-2-modalHeader)

	if m.listVP.Width == 0 && m.listVP.Height == 0 {
		m.listVP = viewport.New(listW, bodyH)
		m.detailVP = viewport.New(detailW, bodyH)
		m.modalVP = viewport.New(modalW, modalH)
		return
	}
	m.listVP.Width, m.listVP.Height = listW, bodyH
	m.detailVP.Width, m.detailVP.Height = detailW, bodyH
	m.modalVP.Width, m.modalVP.Height = modalW, modalH
}

// paneHeight returns the height shared by the list, detail and modal panes.
func (m Model) paneHeight() int {
	return max(1, m.height-toolbarHeight-lipgloss.Height(m.statusBarView()))
}

func (m Model) modalWidth() int {
	return max(20, m.width-4)
}

// refresh re-renders pane content from the controller state and keeps the
// cursors on screen.
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	s := m.state()
	r := m.report()

	list := listRows(r, s)
	m.listCursor = clamp(m.listCursor, 0, len(list)-1)
	m.listVP.SetContent(m.renderRows(list, m.listCursor, m.focus == paneList, m.listVP.Width))
	scrollTo(&m.listVP, m.listCursor)

	header := m.detailHeader()
	detail := detailRows(r, s)
	m.detailCursor = clamp(m.detailCursor, 0, len(detail)-1)
	content := strings.Join(header, "\n")
	if len(detail) > 0 {
		content += "\n" + m.renderRows(detail, m.detailCursor, m.focus == paneDetail, m.detailVP.Width)
	}
	m.detailVP.SetContent(content)
	scrollTo(&m.detailVP, len(header)+m.detailCursor)

	if s.Modal.Open {
		if s.Modal.Token != m.modalToken {
			m.modalToken = s.Modal.Token
			m.modalVP.GotoTop()
		}
		m.modalVP.SetContent(m.modalContent(s.Modal))
	}
}

// scrollTo moves the viewport the least amount that brings line into view.
func scrollTo(vp *viewport.Model, line int) {
	switch {
	case line < vp.YOffset:
		vp.SetYOffset(line)
	case line >= vp.YOffset+vp.Height:
		vp.SetYOffset(line - vp.Height + 1)
	}
}

func (m Model) newStyle() lipgloss.Style {
	if m.renderer != nil {
		return m.renderer.NewStyle()
	}
	return lipgloss.NewStyle()
}

func (m Model) style(cp reportview.ColorPair) lipgloss.Style {
	return rvlipgloss.Style(m.renderer, cp)
}

func (m Model) toolbarView() string {
	s := m.state()

	parts := []string{m.style(m.styles.Header).Bold(true).Render(m.report().Title)}
	for i, v := range reportview.ViewModes {
		label := fmt.Sprintf(" %d %s ", i+1, v)
		if s.Filter.ListVisible(v) {
			parts = append(parts, m.style(m.styles.ToolbarOn).Render(label))
		} else {
			parts = append(parts, m.style(m.styles.Toolbar).Render(label))
		}
	}
	for _, st := range reportview.Statuses {
		label := s.Filter.StatusLabel(st)
		if s.Filter.Visible(st) {
			parts = append(parts, m.style(m.styles.Status(st)).Render(label))
		} else {
			parts = append(parts, m.style(m.styles.Muted).Strikethrough(true).Render(label))
		}
	}
	return m.newStyle().MaxWidth(m.width).Render(strings.Join(parts, " "))
}

func (m Model) bodyView() string {
	if m.state().Modal.Open {
		return lipgloss.Place(m.width, m.paneHeight(), lipgloss.Center, lipgloss.Center, m.modalView())
	}
	sep := m.style(m.styles.Muted).Render(strings.TrimSuffix(strings.Repeat(paneGap+"\n", m.paneHeight()), "\n"))
	return lipgloss.JoinHorizontal(lipgloss.Top, m.listVP.View(), sep, m.detailVP.View())
}

// renderRows renders rows one per line, truncated to width.
func (m Model) renderRows(rows []row, cursor int, focused bool, width int) string {
	if len(rows) == 0 {
		return m.style(m.styles.Muted).Render(runewidth.Truncate("  nothing to show", width, "…"))
	}
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = m.renderRow(r, i == cursor, focused, width)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderRow(r row, cursor, focused bool, width int) string {
	marker := "  "
	if cursor {
		markerStyle := m.style(m.styles.Muted)
		if focused {
			markerStyle = m.newStyle().Foreground(lipgloss.Color(m.palette.UIAccent)).Bold(true)
		}
		marker = markerStyle.Render("› ")
	}

	var icon string
	style := m.style(m.styles.Status(r.status))
	switch r.kind {
	case rowGroup, rowStep:
		icon = "▸ "
		if r.open {
			icon = "▾ "
		}
		if r.kind == rowGroup {
			style = style.Bold(true)
		}
	case rowEntry, rowAttempt:
		icon = "● "
		if r.active {
			style = m.style(m.styles.Selected)
		}
	case rowStepsToggle, rowLog, rowRepeats:
		r.title = "[" + r.title + "]"
		style = m.style(m.styles.Toolbar)
		if r.active {
			style = m.style(m.styles.ToolbarOn)
		}
	case rowAttachment:
		icon = "+ "
		style = m.newStyle().Foreground(lipgloss.Color(m.palette.Foreground))
	}

	text := strings.Repeat("  ", r.depth) + icon + r.title
	text = runewidth.Truncate(text, max(0, width-lipgloss.Width(marker)), "…")
	return marker + style.Render(text)
}

// detailHeader returns the lines above the detail rows.
func (m Model) detailHeader() []string {
	s := m.state()
	muted := m.style(m.styles.Muted)
	width := m.detailVP.Width

	sc, ok := m.selectedScenario()
	if !ok {
		return []string{muted.Render(runewidth.Truncate("No scenario selected. Pick one from the list.", width, "…"))}
	}
	title := m.style(m.styles.Header).Bold(true)

	if s.RepeatListVisible(sc.ID) {
		return []string{
			title.Render(runewidth.Truncate("Repeats: "+sc.Name, width, "…")),
			muted.Render(runewidth.Truncate("enter shows an attempt, esc goes back", width, "…")),
			"",
		}
	}

	meta := string(sc.Status)
	if sc.Feature != "" {
		meta = sc.Feature + " · " + meta
	}
	if active, ok := s.ActiveAttempt(sc); ok {
		for i, a := range sc.Repeats.Attempts {
			if a.ID == active.ID {
				meta += " · " + attemptTitle(i, len(sc.Repeats.Attempts))
			}
		}
	}
	return []string{
		title.Render(runewidth.Truncate(sc.Name, width, "…")),
		m.style(m.styles.Status(sc.Status)).Render(runewidth.Truncate(meta, width, "…")),
		"",
	}
}

func (m Model) modalView() string {
	modal := m.state().Modal
	muted := m.style(m.styles.Muted)
	width := m.modalVP.Width

	desc := modal.Ref.Description
	if desc == "" {
		desc = "-"
	}
	lines := []string{
		m.style(m.styles.Header).Bold(true).Render(runewidth.Truncate(modal.Ref.Filename, width, "…")),
		muted.Render(runewidth.Truncate("Type: "+string(modal.Ref.ContentType), width, "…")),
		muted.Render(runewidth.Truncate("Description: "+desc, width, "…")),
		muted.Render(runewidth.Truncate("Download: "+modal.DownloadPath()+" (S saves, esc closes)", width, "…")),
		"",
		m.modalVP.View(),
	}

	return m.newStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.styles.ModalBorder.Foreground)).
		Padding(0, 1).
		Width(m.modalWidth() - 2).
		Render(strings.Join(lines, "\n"))
}

// modalContent renders the content area of the attachment modal.
func (m Model) modalContent(modal reportview.Modal) string {
	switch modal.Phase {
	case reportview.PhaseLoading:
		return m.spinner.View() + " Loading " + modal.Ref.Filename + "..."
	case reportview.PhaseFailed, reportview.PhaseUnsupported:
		msg := "attachment unavailable"
		if modal.Err != nil {
			msg = modal.Err.Error()
		}
		return m.style(m.styles.Error).Width(m.modalVP.Width).Render(msg)
	}

	c := modal.Content
	if c == nil {
		return ""
	}
	switch c.Type {
	case reportview.ContentImage:
		if c.Format == "" {
			return m.style(m.styles.Muted).Render(fmt.Sprintf("image, unrecognized format, %d bytes", len(c.Data)))
		}
		return m.newStyle().Foreground(lipgloss.Color(m.palette.Foreground)).Render(
			fmt.Sprintf("%s image, %dx%d pixels (%s, %d bytes)", c.Format, c.Width, c.Height, c.MIMEType, len(c.Data)))
	default:
		return m.highlight(modal.Ref.Filename, c.Text)
	}
}

// highlight renders plaintext with syntax colors when the filename names a
// known language, and verbatim otherwise.
func (m Model) highlight(filename, text string) string {
	if m.tokenizer != nil && m.languageDetector != nil {
		if lang := m.languageDetector.DetectFromPath(filename); lang != "" {
			if lines := m.tokenizer.TokenizeLines(lang, text); lines != nil {
				return m.renderTokens(lines)
			}
		}
	}

	base := m.newStyle().Foreground(lipgloss.Color(m.palette.Foreground))
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = base.Render(ExpandTabs(line, 0))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderTokens(lines [][]reportview.Token) string {
	out := make([]string, len(lines))
	for i, toks := range lines {
		var sb strings.Builder
		col := 0
		for _, tok := range toks {
			style := m.newStyle()
			if tok.Style.Foreground != "" {
				style = style.Foreground(lipgloss.Color(tok.Style.Foreground))
			} else {
				style = style.Foreground(lipgloss.Color(m.palette.Foreground))
			}
			if tok.Style.Bold {
				style = style.Bold(true)
			}
			expanded := ExpandTabs(tok.Text, col)
			col += lipgloss.Width(expanded)
			sb.WriteString(style.Render(expanded))
		}
		out[i] = sb.String()
	}
	return strings.Join(out, "\n")
}

// statusBarView renders the flash message or position, followed by help.
func (m Model) statusBarView() string {
	barStyle := m.newStyle().
		Background(lipgloss.Color(m.palette.UIBackground)).
		Foreground(lipgloss.Color(m.palette.UIForeground))

	left := m.flash
	if left == "" {
		left = m.position()
	}

	if m.help.ShowAll {
		return lipgloss.JoinVertical(lipgloss.Left, barStyle.Render(left), m.help.View(m.keymap))
	}

	content := barStyle.Render(left+" │ ") + m.help.View(m.keymap)
	if w := lipgloss.Width(content); m.width > w {
		content += barStyle.Render(strings.Repeat(" ", m.width-w))
	}
	return content
}

// position describes where the list cursor is.
func (m Model) position() string {
	s := m.state()
	n := 0
	for _, e := range m.report().EntriesIn(s.Filter.Mode) {
		if s.Filter.EntryVisible(e) {
			n++
		}
	}
	return fmt.Sprintf("%s · %d scenarios", s.Filter.Mode, n)
}
