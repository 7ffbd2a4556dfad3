package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/pitlane/internal/model"
)

const pickerPlaceholder = "-- Please choose a session --"

// sessionLabel renders a session as "2023 Bahrain Grand Prix - Race (2023-03-05)".
func sessionLabel(s model.Session) string {
	return fmt.Sprintf("%d %s - %s (%s)", s.Year, s.GPName, s.SessionType, s.Date)
}

// pickerLen is the number of picker entries, placeholder included.
func (m *DashboardModel) pickerLen() int {
	return len(m.sessions) + 1
}

// sessionAt maps a picker index to a session id; index 0 and out of range
// indexes map to nil.
func (m *DashboardModel) sessionAt(idx int) *int64 {
	if idx <= 0 || idx > len(m.sessions) {
		return nil
	}
	id := m.sessions[idx-1].SessionID
	return &id
}

// indexOf returns the picker index of a session id, or 0.
func (m *DashboardModel) indexOf(id *int64) int {
	if id == nil {
		return 0
	}
	for i, s := range m.sessions {
		if s.SessionID == *id {
			return i + 1
		}
	}
	return 0
}

func (m *DashboardModel) moveCursor(delta int) {
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if last := m.pickerLen() - 1; m.cursor > last {
		m.cursor = last
	}
	m.ensureCursorVisible()
}

func (m *DashboardModel) ensureCursorVisible() {
	rows := m.layout().pickerRows
	if rows <= 0 {
		m.pickerOffset = 0
		return
	}
	if m.cursor < m.pickerOffset {
		m.pickerOffset = m.cursor
	}
	if m.cursor >= m.pickerOffset+rows {
		m.pickerOffset = m.cursor - rows + 1
	}
	if maxOffset := max(m.pickerLen()-rows, 0); m.pickerOffset > maxOffset {
		m.pickerOffset = maxOffset
	}
}

// selectUnderCursor applies the picker entry under the cursor.
func (m *DashboardModel) selectUnderCursor() tea.Cmd {
	return m.SelectSession(m.sessionAt(m.cursor))
}

// applySessions replaces the session list and keeps the cursor on the
// selected session when it is still present. A selection that vanished
// from the list is cleared.
func (m *DashboardModel) applySessions(sessions []model.Session) {
	if sessions == nil {
		sessions = []model.Session{}
	}
	m.sessions = sessions

	if m.selectedID != nil && m.indexOf(m.selectedID) == 0 {
		m.SelectSession(nil)
	}
	if idx := m.indexOf(m.selectedID); idx > 0 {
		m.cursor = idx
	}
	m.cursor = min(m.cursor, m.pickerLen()-1)
	m.resizeTable()
}

func (m *DashboardModel) renderPicker(width, rows int) string {
	var b strings.Builder

	title := sectionTitleStyle.Render("Select Session")
	if len(m.sessions) > 0 {
		title += placeholderStyle.Render(fmt.Sprintf("  %d available", len(m.sessions)))
	}
	b.WriteString(title)

	end := min(m.pickerOffset+rows, m.pickerLen())
	for i := m.pickerOffset; i < end; i++ {
		b.WriteByte('\n')

		label := pickerPlaceholder
		if i > 0 {
			label = sessionLabel(m.sessions[i-1])
		}

		mark := "  "
		if i > 0 && sameSession(m.selectedID, m.sessionAt(i)) {
			mark = selectedMarkStyle.Render("● ")
		}

		line := mark + label
		switch {
		case i == m.cursor && m.focus == SectionPicker:
			line = cursorStyle.Render("> ") + line
		case i == m.cursor:
			line = "> " + line
		default:
			line = "  " + line
		}
		if i == 0 {
			line = placeholderStyle.Render(line)
		}
		b.WriteString(lipgloss.NewStyle().MaxWidth(width).Render(line))
	}

	style := sectionStyle
	if m.focus == SectionPicker {
		style = focusedSectionStyle
	}
	return style.Width(width + 2).Render(b.String())
}
