package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tharmeritta/BrainTrade-Flow-VN/internal/coach"
	"github.com/tharmeritta/BrainTrade-Flow-VN/internal/db"
	"github.com/tharmeritta/BrainTrade-Flow-VN/internal/logging"
	"github.com/tharmeritta/BrainTrade-Flow-VN/internal/script"
	"github.com/tharmeritta/BrainTrade-Flow-VN/internal/session"
)

// historyLimit caps how many archived calls the history view loads.
const historyLimit = 200

// ViewMode selects what the main area shows.
type ViewMode int

const (
	ViewCall ViewMode = iota
	ViewMap
	ViewHistory
)

// PanelFocus tracks which panel has keyboard focus in the call view.
type PanelFocus int

const (
	FocusScript PanelFocus = iota
	FocusNotes
	FocusCoach
)

// HistoryReader reads archived calls.
type HistoryReader interface {
	CallHistory(ctx context.Context, limit int) ([]db.CallRecord, error)
}

// Deps are the collaborators the model drives. Session and Catalog are
// required. A nil Coach behaves as not configured and a nil History shows an
// empty list.
type Deps struct {
	Session  *session.Controller
	Catalog  *script.Catalog
	Coach    *coach.Service
	History  HistoryReader
	Logger   *logging.Logger
	Language script.Locale
}

type coachRole int

const (
	roleWelcome coachRole = iota
	roleUser
	roleCoach
)

type coachEntry struct {
	role coachRole
	text string
}

// Model is the root bubbletea model for the teleflow TUI.
type Model struct {
	ctrl    *session.Controller
	catalog *script.Catalog
	coach   *coach.Service
	history HistoryReader
	logger  *logging.Logger

	lang script.Locale
	keys keyMap
	help help.Model

	// UI state
	mode      ViewMode
	focus     PanelFocus
	cursor    int
	mapCursor int
	width     int
	height    int

	// Notes
	notes       textarea.Model
	noteSession string

	// Coach
	input        textinput.Model
	coachLog     []coachEntry
	coachPending bool

	// History
	historyList    list.Model
	historyRecords []db.CallRecord
	historyLoading bool

	// New call
	confirming bool
	archiving  bool

	// Messages
	errorMessage   string
	errorTransient bool
	infoMessage    string

	quitting bool
}

// New creates the model. The session must already be started so the draft
// note can be shown.
func New(deps Deps) Model {
	lang := deps.Language
	if lang == "" {
		lang = script.LocaleVN
	}

	notes := textarea.New()
	notes.ShowLineNumbers = false
	notes.CharLimit = 0
	notes.MaxHeight = 0
	notes.Placeholder = tr(lang, "notes.placeholder")
	notes.SetValue(deps.Session.Note())
	notes.Blur()

	input := textinput.New()
	input.Placeholder = tr(lang, "coach.placeholder")
	input.CharLimit = 500
	input.Prompt = "> "

	delegate := list.NewDefaultDelegate()
	delegate.SetSpacing(0)
	historyList := list.New(nil, delegate, 0, 0)
	historyList.Title = tr(lang, "history.title")
	historyList.SetShowStatusBar(false)
	historyList.SetFilteringEnabled(false)
	historyList.SetShowHelp(false)

	return Model{
		ctrl:        deps.Session,
		catalog:     deps.Catalog,
		coach:       deps.Coach,
		history:     deps.History,
		logger:      deps.Logger,
		lang:        lang,
		keys:        newKeyMap(lang),
		help:        help.New(),
		notes:       notes,
		noteSession: deps.Session.SessionID(),
		input:       input,
		coachLog:    []coachEntry{{role: roleWelcome}},
		historyList: historyList,
	}
}

// Init starts the repaint ticker.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(), textarea.Blink)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// newCallCmd archives the call off the UI loop.
func newCallCmd(ctrl *session.Controller) tea.Cmd {
	return func() tea.Msg {
		rec, err := ctrl.NewCall(context.Background())
		return NewCallDoneMsg{Record: rec, Err: err}
	}
}

// coachQueryCmd asks the coach without blocking the UI.
func coachQueryCmd(svc *coach.Service, stageContext, query string, lang script.Locale) tea.Cmd {
	return func() tea.Msg {
		return CoachReplyMsg{Reply: svc.Query(context.Background(), stageContext, query, lang), Lang: lang}
	}
}

// loadHistoryCmd reads the archived calls.
func loadHistoryCmd(reader HistoryReader) tea.Cmd {
	return func() tea.Msg {
		if reader == nil {
			return HistoryLoadedMsg{}
		}
		records, err := reader.CallHistory(context.Background(), historyLimit)
		return HistoryLoadedMsg{Records: records, Err: err}
	}
}

// flushNoteCmd writes any unsaved note edit.
func flushNoteCmd(ctrl *session.Controller) tea.Cmd {
	return func() tea.Msg {
		return NoteFlushedMsg{Err: ctrl.FlushNote(context.Background())}
	}
}

// clearTransientErrorCmd fires after a delay to clear transient messages.
func clearTransientErrorCmd() tea.Cmd {
	return tea.Tick(5*time.Second, func(time.Time) tea.Msg {
		return ClearTransientErrorMsg{}
	})
}

// Update processes messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case TickMsg:
		m.syncNotes()
		return m, tickCmd()

	case NewCallDoneMsg:
		m.archiving = false
		if msg.Err != nil {
			m.logger.Printf("app: new call failed: %v", msg.Err)
			m.errorMessage = tr(m.lang, "newCall.failed") + ": " + msg.Err.Error()
			m.errorTransient = true
			return m, clearTransientErrorCmd()
		}
		m.syncNotes()
		m.cursor = 0
		m.mapCursor = 0
		m.errorMessage = ""
		m.infoMessage = tr(m.lang, "newCall.done")
		cmds := []tea.Cmd{clearTransientErrorCmd()}
		if m.historyRecords != nil {
			cmds = append(cmds, loadHistoryCmd(m.history))
		}
		return m, tea.Batch(cmds...)

	case CoachReplyMsg:
		m.coachPending = false
		m.coachLog = append(m.coachLog, coachEntry{role: roleCoach, text: msg.Reply.Message(msg.Lang)})
		return m, nil

	case HistoryLoadedMsg:
		m.historyLoading = false
		if msg.Err != nil {
			m.errorMessage = msg.Err.Error()
			m.errorTransient = true
			return m, clearTransientErrorCmd()
		}
		m.historyRecords = msg.Records
		if m.historyRecords == nil {
			m.historyRecords = []db.CallRecord{}
		}
		m.refreshHistoryItems()
		return m, nil

	case NoteFlushedMsg:
		if msg.Err != nil {
			m.logger.Printf("app: final note flush failed: %v", msg.Err)
		}
		return m, nil

	case ClearTransientErrorMsg:
		if m.errorTransient {
			m.errorMessage = ""
			m.errorTransient = false
		}
		m.infoMessage = ""
		return m, nil
	}

	// Cursor blink and other component messages.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.notes, cmd = m.notes.Update(msg)
	cmds = append(cmds, cmd)
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// syncNotes reloads the editor when the session has moved on.
func (m *Model) syncNotes() {
	sid := m.ctrl.SessionID()
	if sid == m.noteSession {
		return
	}
	m.noteSession = sid
	m.notes.SetValue(m.ctrl.Note())
	m.cursor = 0
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == KeyCtrlC {
		return m.quit()
	}
	if m.archiving {
		return m, nil
	}
	if m.confirming {
		m.confirming = false
		if msg.String() == KeyConfirm {
			m.archiving = true
			m.infoMessage = tr(m.lang, "newCall.running")
			return m, newCallCmd(m.ctrl)
		}
		return m, nil
	}

	switch m.mode {
	case ViewMap:
		return m.handleMapKey(msg)
	case ViewHistory:
		return m.handleHistoryKey(msg)
	}

	switch m.focus {
	case FocusNotes:
		return m.handleNotesKey(msg)
	case FocusCoach:
		return m.handleCoachKey(msg)
	}
	return m.handleScriptKey(msg)
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	return m, tea.Sequence(flushNoteCmd(m.ctrl), tea.Quit)
}

func (m Model) handleScriptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Next):
		m.ctrl.Advance()
		m.cursor = 0
		return m, nil

	case key.Matches(msg, m.keys.Prev):
		if m.ctrl.Retreat() {
			m.cursor = 0
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.ctrl.ActiveStage().Points)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		points := m.ctrl.ActiveStage().Points
		if m.cursor < len(points) {
			if _, err := m.ctrl.TogglePoint(points[m.cursor].ID); err != nil {
				m.errorMessage = err.Error()
				m.errorTransient = true
				return m, clearTransientErrorCmd()
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.Focus):
		return m.setFocus(FocusNotes)

	case key.Matches(msg, m.keys.Map):
		m.mode = ViewMap
		m.mapCursor = m.ctrl.ActiveIndex()
		return m, nil

	case key.Matches(msg, m.keys.History):
		m.mode = ViewHistory
		m.historyLoading = true
		return m, loadHistoryCmd(m.history)

	case key.Matches(msg, m.keys.NewCall):
		m.confirming = true
		return m, nil

	case key.Matches(msg, m.keys.Language):
		m.toggleLanguage()
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	return m, nil
}

func (m Model) handleNotesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyTab:
		return m.setFocus(FocusCoach)
	case KeyEsc:
		return m.setFocus(FocusScript)
	}

	before := m.notes.Value()
	var cmd tea.Cmd
	m.notes, cmd = m.notes.Update(msg)
	if after := m.notes.Value(); after != before {
		m.ctrl.EditNote(after)
	}
	return m, cmd
}

func (m Model) handleCoachKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyTab:
		return m.setFocus(FocusScript)
	case KeyEsc:
		return m.setFocus(FocusScript)
	case KeyEnter:
		return m.sendCoachQuery()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// canSend reports whether the coach input may be dispatched.
func (m Model) canSend() bool {
	return !m.coachPending && strings.TrimSpace(m.input.Value()) != ""
}

func (m Model) sendCoachQuery() (tea.Model, tea.Cmd) {
	if !m.canSend() {
		return m, nil
	}
	query := strings.TrimSpace(m.input.Value())
	m.coachLog = append(m.coachLog, coachEntry{role: roleUser, text: query})
	m.input.SetValue("")
	m.coachPending = true
	stage := m.ctrl.ActiveStage()
	return m, coachQueryCmd(m.coach, stage.Context(m.lang), query, m.lang)
}

func (m Model) handleMapKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := msg.String()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Map):
		m.mode = ViewCall
		return m, nil
	case key.Matches(msg, m.keys.Up):
		if m.mapCursor > 0 {
			m.mapCursor--
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		if m.mapCursor < m.catalog.Len()-1 {
			m.mapCursor++
		}
		return m, nil
	case key.Matches(msg, m.keys.Language):
		m.toggleLanguage()
		return m, nil
	case s == KeyEnter:
		return m.jumpTo(m.mapCursor)
	case len(s) == 1 && s[0] >= '1' && s[0] <= '9':
		return m.jumpTo(int(s[0] - '1'))
	}
	return m, nil
}

func (m Model) jumpTo(i int) (tea.Model, tea.Cmd) {
	if i < 0 || i >= m.catalog.Len() {
		return m, nil
	}
	if err := m.ctrl.Jump(m.catalog.At(i).ID); err != nil {
		m.errorMessage = err.Error()
		m.errorTransient = true
		return m, clearTransientErrorCmd()
	}
	m.mode = ViewCall
	m.cursor = 0
	return m, nil
}

func (m Model) handleHistoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.History):
		m.mode = ViewCall
		return m, nil
	case key.Matches(msg, m.keys.Language):
		m.toggleLanguage()
		return m, nil
	}

	var cmd tea.Cmd
	m.historyList, cmd = m.historyList.Update(msg)
	return m, cmd
}

func (m Model) setFocus(f PanelFocus) (tea.Model, tea.Cmd) {
	m.focus = f
	m.notes.Blur()
	m.input.Blur()
	switch f {
	case FocusNotes:
		return m, m.notes.Focus()
	case FocusCoach:
		return m, m.input.Focus()
	}
	return m, nil
}

func (m *Model) toggleLanguage() {
	m.lang = m.lang.Other()
	m.keys = newKeyMap(m.lang)
	m.notes.Placeholder = tr(m.lang, "notes.placeholder")
	m.input.Placeholder = tr(m.lang, "coach.placeholder")
	m.historyList.Title = tr(m.lang, "history.title")
	m.refreshHistoryItems()
}

func (m *Model) refreshHistoryItems() {
	items := make([]list.Item, len(m.historyRecords))
	for i, rec := range m.historyRecords {
		items[i] = historyItem{rec: rec, lang: m.lang}
	}
	m.historyList.SetItems(items)
}

// resize lays out the editors for the current terminal size.
func (m *Model) resize() {
	contentH := m.contentHeight()
	rightW := m.sidePanelWidth()

	m.notes.SetWidth(max(10, rightW-1))
	m.notes.SetHeight(max(3, contentH/2-2))
	m.input.Width = max(10, rightW-4)
	m.historyList.SetSize(max(20, m.width/2), contentH)
	m.help.Width = m.width
}

func (m Model) contentHeight() int {
	if m.height == 0 {
		return 20
	}
	// header, stage strip, two dividers, message bar, footer
	reserved := 6
	return max(8, m.height-reserved)
}

func (m Model) scriptPanelWidth() int {
	if m.width == 0 {
		return 60
	}
	return max(30, m.width*55/100)
}

func (m Model) sidePanelWidth() int {
	if m.width == 0 {
		return 40
	}
	return max(20, m.width-m.scriptPanelWidth()-1)
}

// historyItem adapts a CallRecord to the list component.
type historyItem struct {
	rec  db.CallRecord
	lang script.Locale
}

func (i historyItem) Title() string {
	return i.rec.Date.Local().Format("2006-01-02 15:04") + "  " + formatClock(time.Duration(i.rec.Duration)*time.Second)
}

func (i historyItem) Description() string {
	desc := fmt.Sprintf(tr(i.lang, "history.stages"), len(i.rec.CompletedStages))
	note := strings.TrimSpace(i.rec.Notes)
	if note == "" {
		return desc + " · " + tr(i.lang, "history.noNotes")
	}
	first, _, _ := strings.Cut(note, "\n")
	return desc + " · " + first
}

func (i historyItem) FilterValue() string { return i.rec.Notes }
