package tui

import (
	"log"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles messages
func (m *DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.MouseMsg:
		return m.handleMouseEvent(msg)

	case SpinnerTickMsg:
		return m.handleSpinnerTick()

	case sessionsLoadedMsg:
		m.sessionsInFlight = false
		if msg.err != nil {
			log.Printf("tui: load sessions: %v", msg.err)
			m.lastError = msg.err.Error()
			return m, nil
		}
		m.lastError = ""
		m.applySessions(msg.sessions)
		return m, nil

	case lapsLoadedMsg:
		if m.selectedID == nil || *m.selectedID != msg.sessionID || msg.seq != m.lapsSeq {
			log.Printf("tui: discarding laps for session %d (request %d), selection moved on", msg.sessionID, msg.seq)
			return m, nil
		}
		m.lapsInFlight = false
		if msg.err != nil {
			log.Printf("tui: load laps for session %d: %v", msg.sessionID, msg.err)
			m.lastError = msg.err.Error()
			return m, nil
		}
		m.lastError = ""
		m.setLaps(msg.laps)
		return m, nil
	}

	return m, nil
}

func (m *DashboardModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.ForceQuit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resizeTable()
		return m, nil

	case key.Matches(msg, m.keys.NextSection), key.Matches(msg, m.keys.PrevSection):
		if m.focus == SectionPicker && m.selectedID != nil {
			m.setFocus(SectionLaps)
		} else {
			m.setFocus(SectionPicker)
		}
		return m, nil

	case key.Matches(msg, m.keys.Reload):
		return m, tea.Batch(m.loadSessions(), m.startSpinnerIfNeeded())

	case key.Matches(msg, m.keys.Clear):
		m.cursor = 0
		m.moveCursor(0)
		m.setFocus(SectionPicker)
		return m, m.SelectSession(nil)
	}

	if m.focus == SectionLaps {
		var cmd tea.Cmd
		m.lapTable, cmd = m.lapTable.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.PageUp):
		m.moveCursor(-max(m.layout().pickerRows, 1))
	case key.Matches(msg, m.keys.PageDown):
		m.moveCursor(max(m.layout().pickerRows, 1))
	case key.Matches(msg, m.keys.Home):
		m.moveCursor(-m.pickerLen())
	case key.Matches(msg, m.keys.End):
		m.moveCursor(m.pickerLen())
	case key.Matches(msg, m.keys.Select):
		return m, tea.Batch(m.selectUnderCursor(), m.startSpinnerIfNeeded())
	}
	return m, nil
}

// handleMouseEvent scrolls the focused pane with the wheel.
func (m *DashboardModel) handleMouseEvent(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress {
		return m, nil
	}

	step := 0
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		step = -1
	case tea.MouseButtonWheelDown:
		step = 1
	default:
		return m, nil
	}
	if m.reverseScrollWheel {
		step = -step
	}

	if m.focus == SectionLaps {
		if step < 0 {
			m.lapTable.MoveUp(1)
		} else {
			m.lapTable.MoveDown(1)
		}
		return m, nil
	}
	m.moveCursor(step)
	return m, nil
}
