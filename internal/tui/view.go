package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

const (
	minWidth  = 60
	minHeight = 16

	chartRows = 9 // legend plus bars and labels
)

// dashboardLayout is the single source of truth for pane sizes, shared by
// View and the navigation code.
type dashboardLayout struct {
	contentWidth int // text width inside a bordered pane
	pickerRows   int
	tableHeight  int
	chartHeight  int
}

func (m *DashboardModel) layout() dashboardLayout {
	l := dashboardLayout{contentWidth: m.width - 4}

	// header + status line + help
	avail := m.height - 2 - lipgloss.Height(m.help.View(m.keys))

	// picker pane: border (2) + title (1) + rows
	l.pickerRows = min(m.pickerLen(), max(3, avail/3))
	avail -= l.pickerRows + 3

	// lap pane: border (2) + title (1) + body
	avail -= 3
	if avail >= 2*chartRows {
		l.chartHeight = chartRows
		avail -= chartRows
	}
	l.tableHeight = max(avail, 2)
	return l
}

func (m *DashboardModel) resizeTable() {
	l := m.layout()
	m.lapTable.SetHeight(max(l.tableHeight, 2))
	m.ensureCursorVisible()
}

// View renders the dashboard
func (m *DashboardModel) View() string {
	if m.width <= 0 || m.height <= 0 {
		return "Initializing dashboard..."
	}
	if m.width < minWidth || m.height < minHeight {
		return fmt.Sprintf("Terminal too small. Resize to at least %dx%d.", minWidth, minHeight)
	}

	l := m.layout()
	sections := []string{
		headerStyle.Width(m.width).Render("F1 Data Dashboard"),
		m.renderPicker(l.contentWidth, l.pickerRows),
	}

	if m.selectedID != nil {
		lapPane := m.renderLapSection(l.contentWidth, l.tableHeight)
		if l.chartHeight > 0 && !m.lapsInFlight {
			if chart := renderBestLapChart(m.laps, l.contentWidth, l.chartHeight-1); chart != "" {
				lapPane = lipgloss.JoinVertical(lipgloss.Left, lapPane, chart)
			}
		}
		sections = append(sections, lapPane)
	} else if len(m.sessions) == 0 && m.sessionsInFlight {
		sections = append(sections, renderLoadingPlaceholder("Loading data...", m.width, 3))
	}

	main := lipgloss.JoinVertical(lipgloss.Left, sections...)
	mainHeight := m.height - 1 - lipgloss.Height(m.help.View(m.keys))
	main = lipgloss.NewStyle().Height(mainHeight).MaxHeight(mainHeight).Render(main)

	return m.frame().Render(lipgloss.JoinVertical(lipgloss.Left,
		main,
		m.renderStatusLine(),
		m.help.View(m.keys),
	))
}

// statusText is the centre of the status line: loading, then error, then
// a summary of what is on screen.
func (m *DashboardModel) statusText() string {
	switch {
	case m.Loading():
		return spinnerFrame() + " Loading data..."
	case m.lastError != "":
		return "Error: " + m.lastError
	case m.selectedID != nil:
		return fmt.Sprintf("%s laps", humanize.Comma(int64(len(m.laps))))
	default:
		return fmt.Sprintf("%s sessions", humanize.Comma(int64(len(m.sessions))))
	}
}

func (m *DashboardModel) renderStatusLine() string {
	section := "[Sessions]"
	if m.focus == SectionLaps {
		section = "[Laps]"
	}

	center := m.statusText()
	if m.lastError != "" && !m.Loading() {
		center = errorStyle.Background(ColorNavy).Render(center)
	}

	right := ""
	if m.dataSource != "" {
		right = m.dataSource
	}

	gap := m.width - lipgloss.Width(section) - lipgloss.Width(center) - lipgloss.Width(right) - 4
	if gap < 1 {
		gap = 1
	}
	left := statusLineStyle.Render(" " + section + "  ")
	mid := statusLineStyle.Render(center)
	pad := statusLineStyle.Render(fmt.Sprintf("%*s", gap, ""))
	end := statusLineStyle.Render(right + " ")
	return lipgloss.NewStyle().MaxWidth(m.width).Render(left + mid + pad + end)
}
