package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const spinnerInterval = 120 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinnerFrame picks the frame from the wall clock so it animates on re-render.
func spinnerFrame() string {
	return spinnerFrames[time.Now().UnixMilli()/spinnerInterval.Milliseconds()%int64(len(spinnerFrames))]
}

// renderLoadingPlaceholder renders an animated loading indicator.
func renderLoadingPlaceholder(text string, width, height int) string {
	loadingStyle := lipgloss.NewStyle().
		Foreground(ColorGray).
		Italic(true)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		loadingStyle.Render(spinnerFrame()+" "+text))
}

// SpinnerTickMsg triggers a re-render for loading spinners.
type SpinnerTickMsg struct{}

func spinnerTick() tea.Cmd {
	return tea.Tick(spinnerInterval, func(_ time.Time) tea.Msg {
		return SpinnerTickMsg{}
	})
}

// handleSpinnerTick re-schedules spinner ticks while a fetch is in flight.
func (m *DashboardModel) handleSpinnerTick() (tea.Model, tea.Cmd) {
	if m.Loading() {
		return m, spinnerTick()
	}
	m.spinning = false
	return m, nil
}

// startSpinnerIfNeeded schedules a spinner tick unless one is already pending.
func (m *DashboardModel) startSpinnerIfNeeded() tea.Cmd {
	if m.Loading() && !m.spinning {
		m.spinning = true
		return spinnerTick()
	}
	return nil
}
