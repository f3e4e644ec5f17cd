package bubbletea

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
	"github.com/tasmanium/reportview"
	rvlipgloss "github.com/tasmanium/reportview/lipgloss"
	"github.com/tasmanium/reportview/logger"
)

// ErrNoFetcher is reported in the modal when attachments cannot be retrieved.
var ErrNoFetcher = errors.New("no attachment source configured")

type pane int

const (
	paneList pane = iota
	paneDetail
)

// FragmentChangedMsg reports a location fragment written outside the viewer.
type FragmentChangedMsg struct {
	Fragment string
}

type attachmentLoadedMsg struct {
	token   uint64
	content *reportview.AttachmentContent
	err     error
}

type savedMsg struct {
	path string
	err  error
}

// Model is the Bubble Tea model for browsing a report. Every interaction is
// dispatched to a reportview.Controller; the model only renders its state and
// performs the effects it returns.
type Model struct {
	controller *reportview.Controller

	// Collaborators
	ctx              context.Context
	fetcher          reportview.Fetcher
	clipboard        reportview.Clipboard
	tokenizer        reportview.Tokenizer
	languageDetector reportview.LanguageDetector
	log              logrus.FieldLogger
	document         string
	saveDir          string

	// In-flight retrievals by token. Shared between copies of the model.
	fetches map[uint64]context.CancelFunc

	// UI state
	focus        pane
	listCursor   int
	detailCursor int
	listVP       viewport.Model
	detailVP     viewport.Model
	modalVP      viewport.Model
	modalToken   uint64
	spinner      spinner.Model
	help         help.Model
	keymap       KeyMap
	styles       reportview.Styles
	palette      reportview.Palette
	renderer     *lipgloss.Renderer
	width        int
	height       int
	ready        bool
	flash        string
}

// ModelOption configures a Model.
type ModelOption func(*modelConfig)

type modelConfig struct {
	ctx              context.Context
	renderer         *lipgloss.Renderer
	theme            reportview.Theme
	tokenizer        reportview.Tokenizer
	languageDetector reportview.LanguageDetector
	fetcher          reportview.Fetcher
	clipboard        reportview.Clipboard
	log              logrus.FieldLogger
	document         string
	saveDir          string
}

// WithContext sets the parent context of attachment retrievals.
func WithContext(ctx context.Context) ModelOption {
	return func(cfg *modelConfig) {
		cfg.ctx = ctx
	}
}

// WithRenderer sets a custom lipgloss renderer for the model.
func WithRenderer(r *lipgloss.Renderer) ModelOption {
	return func(cfg *modelConfig) {
		cfg.renderer = r
	}
}

// WithTheme sets the theme for the model.
func WithTheme(t reportview.Theme) ModelOption {
	return func(cfg *modelConfig) {
		cfg.theme = t
	}
}

// WithTokenizer sets the tokenizer for highlighting plaintext attachments.
func WithTokenizer(t reportview.Tokenizer) ModelOption {
	return func(cfg *modelConfig) {
		cfg.tokenizer = t
	}
}

// WithLanguageDetector sets the language detector for plaintext attachments.
func WithLanguageDetector(d reportview.LanguageDetector) ModelOption {
	return func(cfg *modelConfig) {
		cfg.languageDetector = d
	}
}

// WithFetcher sets where attachment content is retrieved from.
func WithFetcher(f reportview.Fetcher) ModelOption {
	return func(cfg *modelConfig) {
		cfg.fetcher = f
	}
}

// WithClipboard sets the clipboard used to copy deep links.
func WithClipboard(c reportview.Clipboard) ModelOption {
	return func(cfg *modelConfig) {
		cfg.clipboard = c
	}
}

// WithLogger sets the logger diagnostics are written to.
func WithLogger(log logrus.FieldLogger) ModelOption {
	return func(cfg *modelConfig) {
		cfg.log = log
	}
}

// WithDocument sets the document path deep links are built from.
func WithDocument(path string) ModelOption {
	return func(cfg *modelConfig) {
		cfg.document = path
	}
}

// WithSaveDir sets the directory attachments are saved to.
func WithSaveDir(dir string) ModelOption {
	return func(cfg *modelConfig) {
		cfg.saveDir = dir
	}
}

// NewModel creates a Model driven by c. The controller should already have
// been started.
func NewModel(c *reportview.Controller, opts ...ModelOption) Model {
	cfg := &modelConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	theme := cfg.theme
	if theme == nil {
		theme = rvlipgloss.DefaultTheme()
	}
	ctx := cfg.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	log := cfg.log
	if log == nil {
		log = logger.Discard()
	}
	saveDir := cfg.saveDir
	if saveDir == "" {
		saveDir = "."
	}

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	return Model{
		controller:       c,
		ctx:              ctx,
		fetcher:          cfg.fetcher,
		clipboard:        cfg.clipboard,
		tokenizer:        cfg.tokenizer,
		languageDetector: cfg.languageDetector,
		log:              log,
		document:         cfg.document,
		saveDir:          saveDir,
		fetches:          make(map[uint64]context.CancelFunc),
		spinner:          sp,
		help:             help.New(),
		keymap:           DefaultKeyMap(),
		styles:           theme.Styles(),
		palette:          theme.Palette(),
		renderer:         cfg.renderer,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.flash = ""
		var cmd tea.Cmd
		if m.state().Modal.Open {
			m, cmd = m.handleModalKeys(msg)
		} else {
			m, cmd = m.handleKeys(msg)
		}
		m.refresh()
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		m.refresh()
		return m, nil

	case attachmentLoadedMsg:
		if cancel, ok := m.fetches[msg.token]; ok {
			cancel()
			delete(m.fetches, msg.token)
		}
		cmd := m.dispatch(reportview.AttachmentLoaded{Token: msg.token, Content: msg.content, Err: msg.err})
		m.refresh()
		return m, cmd

	case FragmentChangedMsg:
		cmd := m.dispatch(reportview.FragmentChanged{Fragment: msg.Fragment})
		m.refresh()
		return m, cmd

	case savedMsg:
		if msg.err != nil {
			m.log.WithError(msg.err).Warn("save attachment")
			m.flash = "save failed: " + msg.err.Error()
		} else {
			m.flash = "saved " + msg.path
		}
		return m, nil

	case spinner.TickMsg:
		modal := m.state().Modal
		if !modal.Open || modal.Phase != reportview.PhaseLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	body := m.bodyView()
	return lipgloss.JoinVertical(lipgloss.Left, m.toolbarView(), body, m.statusBarView())
}

func (m Model) state() reportview.State {
	return m.controller.State()
}

func (m Model) report() *reportview.Report {
	return m.controller.Report()
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.cancelAll()
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
	case key.Matches(msg, m.keymap.SwitchPane):
		if m.focus == paneList {
			m.focus = paneDetail
		} else {
			m.focus = paneList
		}
	case key.Matches(msg, m.keymap.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keymap.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keymap.HalfPageUp):
		m.moveCursor(-m.paneHeight() / 2)
	case key.Matches(msg, m.keymap.HalfPageDown):
		m.moveCursor(m.paneHeight() / 2)
	case key.Matches(msg, m.keymap.GotoTop):
		m.moveCursor(-len(m.rows()))
	case key.Matches(msg, m.keymap.GotoBottom):
		m.moveCursor(len(m.rows()))

	case key.Matches(msg, m.keymap.ViewFlat):
		return m, m.dispatch(reportview.SetViewMode{Mode: reportview.ViewFlat})
	case key.Matches(msg, m.keymap.ViewOutlines):
		return m, m.dispatch(reportview.SetViewMode{Mode: reportview.ViewOutline})
	case key.Matches(msg, m.keymap.ViewFeatures):
		return m, m.dispatch(reportview.SetViewMode{Mode: reportview.ViewFeature})
	case key.Matches(msg, m.keymap.ViewException):
		return m, m.dispatch(reportview.SetViewMode{Mode: reportview.ViewException})
	case key.Matches(msg, m.keymap.TogglePassed):
		return m, m.dispatch(reportview.ToggleStatus{Status: reportview.StatusPassed})
	case key.Matches(msg, m.keymap.ToggleFailed):
		return m, m.dispatch(reportview.ToggleStatus{Status: reportview.StatusFailed})
	case key.Matches(msg, m.keymap.ToggleSkipped):
		return m, m.dispatch(reportview.ToggleStatus{Status: reportview.StatusSkipped})

	case key.Matches(msg, m.keymap.Select), key.Matches(msg, m.keymap.Toggle):
		r, ok := m.currentRow()
		if !ok {
			return m, nil
		}
		return m, m.activate(r)

	case key.Matches(msg, m.keymap.ExpandAll):
		if sel := m.state().Selected; sel != "" {
			return m, m.dispatch(reportview.ToggleAllSteps{ScenarioID: sel})
		}
	case key.Matches(msg, m.keymap.ShowRepeats):
		if sc, ok := m.selectedScenario(); ok && sc.Repeats != nil {
			return m, m.dispatch(reportview.ShowRepeats{Key: reportview.Key{
				Kind:       reportview.KindShowRepeats,
				RepeatID:   sc.Repeats.ID,
				ScenarioID: sc.ID,
			}})
		}
	case key.Matches(msg, m.keymap.ShowLog):
		if sc, ok := m.selectedScenario(); ok {
			if folder := logFolder(sc, m.state()); folder != "" {
				return m, m.dispatch(reportview.ShowLog{Folder: folder})
			}
		}
	case key.Matches(msg, m.keymap.Close):
		// Leaving the repeat list goes back to the attempt being shown.
		s := m.state()
		if sc, ok := m.selectedScenario(); ok && s.RepeatListVisible(sc.ID) {
			active, _ := s.ActiveAttempt(sc)
			return m, m.dispatch(reportview.SelectRepeat{Key: reportview.Key{
				Kind:       reportview.KindRepeatButton,
				RepeatID:   active.ID,
				ScenarioID: sc.ID,
			}})
		}
	case key.Matches(msg, m.keymap.CopyLink):
		m.copy(m.link())
	}
	return m, nil
}

func (m Model) handleModalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.cancelAll()
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Close):
		return m, m.dispatch(reportview.CloseModal{})
	case key.Matches(msg, m.keymap.Save):
		return m, m.saveCmd(m.state().Modal)
	case key.Matches(msg, m.keymap.CopyLink):
		m.copy(m.state().Modal.DownloadPath())
	case key.Matches(msg, m.keymap.Up):
		m.modalVP.ScrollUp(1)
	case key.Matches(msg, m.keymap.Down):
		m.modalVP.ScrollDown(1)
	case key.Matches(msg, m.keymap.HalfPageUp):
		m.modalVP.HalfPageUp()
	case key.Matches(msg, m.keymap.HalfPageDown):
		m.modalVP.HalfPageDown()
	case key.Matches(msg, m.keymap.GotoTop):
		m.modalVP.GotoTop()
	case key.Matches(msg, m.keymap.GotoBottom):
		m.modalVP.GotoBottom()
	}
	return m, nil
}

// activate performs the action of a row, the way a click on the matching
// node would.
func (m *Model) activate(r row) tea.Cmd {
	switch r.kind {
	case rowGroup, rowStep:
		return m.dispatch(reportview.ToggleCollapsible{ID: r.collapsible})
	case rowEntry:
		return m.dispatch(reportview.SelectEntry{Key: r.entry.Key})
	case rowStepsToggle:
		return m.dispatch(reportview.ToggleAllSteps{ScenarioID: r.key.ScenarioID})
	case rowLog:
		return m.dispatch(reportview.ShowLog{Folder: r.folder})
	case rowRepeats:
		return m.dispatch(reportview.ShowRepeats{Key: r.key})
	case rowAttachment:
		return m.dispatch(reportview.OpenAttachment{Ref: r.attachment})
	case rowAttempt:
		return m.dispatch(reportview.SelectRepeat{Key: r.key})
	}
	return nil
}

// dispatch applies ev and performs the returned effects.
func (m *Model) dispatch(ev reportview.Event) tea.Cmd {
	effects, err := m.controller.Dispatch(ev)
	if err != nil {
		logger.Diagnostic(m.log, ev, err)
	}

	var cmds []tea.Cmd
	for _, e := range effects {
		switch e := e.(type) {
		case reportview.FetchAttachment:
			cmds = append(cmds, m.fetchCmd(e), m.spinner.Tick)
		case reportview.CancelFetch:
			if cancel, ok := m.fetches[e.Token]; ok {
				cancel()
				delete(m.fetches, e.Token)
			}
		case reportview.ReflowOutlines:
			// Rows are rebuilt from state on every refresh.
			m.log.Debug("reflow outlines")
		}
	}
	return tea.Batch(cmds...)
}

// fetchCmd retrieves an attachment off the update loop. The retrieval is
// cancelled when a newer one supersedes it or the modal closes.
func (m *Model) fetchCmd(e reportview.FetchAttachment) tea.Cmd {
	fetcher := m.fetcher
	if fetcher == nil {
		return func() tea.Msg {
			return attachmentLoadedMsg{token: e.Token, err: &reportview.RetrievalError{Path: e.Ref.Path(), Err: ErrNoFetcher}}
		}
	}
	ctx, cancel := context.WithCancel(m.ctx)
	m.fetches[e.Token] = cancel
	return func() tea.Msg {
		content, err := reportview.LoadAttachment(ctx, fetcher, e.Ref)
		return attachmentLoadedMsg{token: e.Token, content: content, err: err}
	}
}

func (m *Model) cancelAll() {
	for token, cancel := range m.fetches {
		cancel()
		delete(m.fetches, token)
	}
}

// saveCmd writes the modal's attachment into the save directory. Content that
// was never loaded is retrieved first.
func (m Model) saveCmd(modal reportview.Modal) tea.Cmd {
	dest := filepath.Join(m.saveDir, filepath.Base(modal.Ref.Filename))
	ctx := m.ctx
	fetcher := m.fetcher
	var data []byte
	if modal.Phase == reportview.PhaseLoaded && modal.Content != nil {
		data = modal.Content.Data
		if data == nil {
			data = []byte(modal.Content.Text)
		}
	}
	path := modal.DownloadPath()
	return func() tea.Msg {
		if data == nil {
			if fetcher == nil {
				return savedMsg{err: ErrNoFetcher}
			}
			var err error
			data, err = fetcher.Fetch(ctx, path)
			if err != nil {
				return savedMsg{err: fmt.Errorf("fetch %s: %w", path, err)}
			}
		}
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return savedMsg{err: err}
		}
		return savedMsg{path: dest}
	}
}

func (m *Model) copy(content string) {
	if m.clipboard == nil {
		m.flash = "clipboard unavailable"
		return
	}
	if err := m.clipboard.Copy(content); err != nil {
		m.log.WithError(err).Warn("copy to clipboard")
		m.flash = "copy failed: " + err.Error()
		return
	}
	m.flash = "copied " + content
}

// link returns the deep link of the open scenario.
func (m Model) link() string {
	sel := m.state().Selected
	if sel == "" {
		return m.document
	}
	return m.document + reportview.FormatFragment(sel)
}

func (m Model) selectedScenario() (*reportview.Scenario, bool) {
	sel := m.state().Selected
	if sel == "" {
		return nil, false
	}
	return m.report().Scenario(sel)
}

// rows returns the rows of the focused pane.
func (m Model) rows() []row {
	if m.focus == paneDetail {
		return detailRows(m.report(), m.state())
	}
	return listRows(m.report(), m.state())
}

func (m Model) currentRow() (row, bool) {
	rows := m.rows()
	cursor := m.listCursor
	if m.focus == paneDetail {
		cursor = m.detailCursor
	}
	if cursor < 0 || cursor >= len(rows) {
		return row{}, false
	}
	return rows[cursor], true
}

func (m *Model) moveCursor(delta int) {
	n := len(m.rows())
	cursor := &m.listCursor
	if m.focus == paneDetail {
		cursor = &m.detailCursor
	}
	*cursor = clamp(*cursor+delta, 0, n-1)
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return max(lo, min(v, hi))
}
