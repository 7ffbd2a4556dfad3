package tui

import (
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/pitlane/internal/laptime"
	"github.com/tinytelemetry/pitlane/internal/model"
)

const noLapData = "No lap data available for this session."

func lapColumns() []table.Column {
	return []table.Column{
		{Title: "Driver", Width: 6},
		{Title: "Lap No.", Width: 7},
		{Title: "Lap Time", Width: 10},
		{Title: "Sector 1", Width: 10},
		{Title: "Sector 2", Width: 10},
		{Title: "Sector 3", Width: 10},
		{Title: "Speed Trap (km/h)", Width: 17},
		{Title: "Tyre Compound", Width: 13},
	}
}

// lapRow formats one lap in column order.
func lapRow(lap model.Lap) table.Row {
	return table.Row{
		lap.Driver,
		strconv.Itoa(lap.LapNumber),
		laptime.Format(lap.LapTimeMs),
		laptime.Format(lap.Sector1TimeMs),
		laptime.Format(lap.Sector2TimeMs),
		laptime.Format(lap.Sector3TimeMs),
		laptime.FormatSpeed(lap.SpeedTrapKmh),
		laptime.FormatText(lap.TyreCompound),
	}
}

func lapRows(laps []model.Lap) []table.Row {
	rows := make([]table.Row, len(laps))
	for i, lap := range laps {
		rows[i] = lapRow(lap)
	}
	return rows
}

func lapTableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorGray).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(ColorWhite).
		Background(ColorNavy).
		Bold(false)
	return s
}

// renderLapSection renders the lap table pane for the selected session.
func (m *DashboardModel) renderLapSection(width, height int) string {
	title := sectionTitleStyle.Render("Lap Data")
	if idx := m.indexOf(m.selectedID); idx > 0 {
		title += placeholderStyle.Render("  " + sessionLabel(m.sessions[idx-1]))
	}

	var body string
	switch {
	case m.lapsInFlight:
		body = renderLoadingPlaceholder("Loading data...", width, height)
	case len(m.laps) == 0:
		body = lipgloss.Place(width, height, lipgloss.Left, lipgloss.Top, placeholderStyle.Render(noLapData))
	default:
		body = m.lapTable.View()
	}

	style := sectionStyle
	if m.focus == SectionLaps {
		style = focusedSectionStyle
	}
	return style.Width(width + 2).Render(lipgloss.JoinVertical(lipgloss.Left, title, body))
}

// lapUnderCursor returns the lap highlighted in the table with its
// session context. ok is false unless the table has focus and shows laps.
func (m *DashboardModel) lapUnderCursor() (LapDetail, bool) {
	if m.focus != SectionLaps || m.lapsInFlight || len(m.laps) == 0 {
		return LapDetail{}, false
	}
	i := m.lapTable.Cursor()
	if i < 0 || i >= len(m.laps) {
		return LapDetail{}, false
	}
	var sess model.Session
	if idx := m.indexOf(m.selectedID); idx > 0 {
		sess = m.sessions[idx-1]
	}
	return buildLapDetail(sess, m.laps, m.laps[i]), true
}
