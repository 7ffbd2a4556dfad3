package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/pitlane/internal/model"
)

// Section identifies which pane receives navigation keys.
type Section int

const (
	SectionPicker Section = iota // session picker
	SectionLaps                  // lap table
)

// Options configures a DashboardModel.
type Options struct {
	// DataSource labels the transport in the status line ("HTTP", "Socket").
	DataSource string
	// RequestTimeout bounds every fetch. Zero means model.DefaultRequestTimeout.
	RequestTimeout     time.Duration
	ReverseScrollWheel bool
}

// sessionsLoadedMsg carries the result of a session list fetch.
type sessionsLoadedMsg struct {
	sessions []model.Session
	err      error
}

// lapsLoadedMsg carries the result of a lap fetch for one selection.
// sessionID and seq identify the request that produced it.
type lapsLoadedMsg struct {
	sessionID int64
	seq       uint64
	laps      []model.Lap
	err       error
}

// DashboardModel is the session picker plus lap table screen.
type DashboardModel struct {
	store          model.TelemetryQuerier
	dataSource     string
	requestTimeout time.Duration

	keys KeyMap
	help help.Model

	width  int
	height int

	sessions     []model.Session
	cursor       int // 0 is the placeholder entry
	pickerOffset int
	selectedID   *int64

	laps     []model.Lap
	lapTable table.Model

	// Shared loading state is derived from these; see Loading.
	sessionsInFlight bool
	lapsInFlight     bool
	lapsSeq          uint64
	spinning         bool

	// lastError is the single error slot shown in the status line.
	lastError string

	focus              Section
	reverseScrollWheel bool
}

// NewDashboardModel creates a dashboard reading from store.
func NewDashboardModel(store model.TelemetryQuerier, opts Options) *DashboardModel {
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = model.DefaultRequestTimeout
	}

	t := table.New(
		table.WithColumns(lapColumns()),
		table.WithFocused(false),
		table.WithHeight(10),
	)
	t.SetStyles(lapTableStyles())

	return &DashboardModel{
		store:              store,
		dataSource:         opts.DataSource,
		requestTimeout:     timeout,
		keys:               DefaultKeyMap(),
		help:               help.New(),
		sessions:           []model.Session{},
		laps:               []model.Lap{},
		lapTable:           t,
		focus:              SectionPicker,
		reverseScrollWheel: opts.ReverseScrollWheel,
	}
}

// Init fetches the session list.
func (m *DashboardModel) Init() tea.Cmd {
	return tea.Batch(m.loadSessions(), m.startSpinnerIfNeeded())
}

// Loading reports whether any fetch is in flight.
func (m *DashboardModel) Loading() bool {
	return m.sessionsInFlight || m.lapsInFlight
}

// Err returns the current error message, or "" when there is none.
func (m *DashboardModel) Err() string {
	return m.lastError
}

// Sessions returns the loaded sessions.
func (m *DashboardModel) Sessions() []model.Session {
	return m.sessions
}

// Laps returns the laps of the selected session.
func (m *DashboardModel) Laps() []model.Lap {
	return m.laps
}

// SelectedSessionID returns the selected session id, or nil.
func (m *DashboardModel) SelectedSessionID() *int64 {
	if m.selectedID == nil {
		return nil
	}
	id := *m.selectedID
	return &id
}

// loadSessions starts a session list fetch. It is a no-op while one is
// already in flight.
func (m *DashboardModel) loadSessions() tea.Cmd {
	if m.sessionsInFlight {
		return nil
	}
	m.sessionsInFlight = true
	m.lastError = ""

	store := m.store
	timeout := m.requestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		sessions, err := store.ListSessions(ctx)
		return sessionsLoadedMsg{sessions: sessions, err: err}
	}
}

// SelectSession changes the selected session. A nil id clears the
// selection and the laps without a request. Selecting the id that is
// already selected does nothing. Otherwise the laps are cleared and one
// fetch for the new id is returned.
func (m *DashboardModel) SelectSession(id *int64) tea.Cmd {
	if sameSession(m.selectedID, id) {
		return nil
	}

	// Any response still in flight now belongs to an older selection.
	m.lapsSeq++
	m.setLaps([]model.Lap{})

	if id == nil {
		m.selectedID = nil
		m.lapsInFlight = false
		return nil
	}

	sessionID := *id
	m.selectedID = &sessionID
	m.lapsInFlight = true
	m.lastError = ""
	return m.fetchLapsCmd(sessionID, m.lapsSeq)
}

func (m *DashboardModel) fetchLapsCmd(sessionID int64, seq uint64) tea.Cmd {
	store := m.store
	timeout := m.requestTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		laps, err := store.LapsForSession(ctx, sessionID)
		return lapsLoadedMsg{sessionID: sessionID, seq: seq, laps: laps, err: err}
	}
}

func (m *DashboardModel) setLaps(laps []model.Lap) {
	if laps == nil {
		laps = []model.Lap{}
	}
	m.laps = laps
	m.lapTable.SetRows(lapRows(laps))
	m.lapTable.GotoTop()
}

func sameSession(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// resize records the terminal size and re-lays out sized widgets.
func (m *DashboardModel) resize(width, height int) {
	if width == m.width && height == m.height {
		return
	}
	m.width = width
	m.height = height
	m.help.Width = width
	m.lapTable.SetWidth(max(m.layout().contentWidth, 0))
	m.resizeTable()
}

func (m *DashboardModel) setFocus(s Section) {
	m.focus = s
	if s == SectionLaps {
		m.lapTable.Focus()
	} else {
		m.lapTable.Blur()
	}
}

// frame returns the style bounding the whole dashboard to the terminal.
func (m *DashboardModel) frame() lipgloss.Style {
	return lipgloss.NewStyle().MaxWidth(m.width).MaxHeight(m.height)
}
