package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColorNavy   = lipgloss.Color("17")
	ColorWhite  = lipgloss.Color("15")
	ColorGray   = lipgloss.Color("8")
	ColorBlue   = lipgloss.Color("39")
	ColorRed    = lipgloss.Color("196")
	ColorGreen  = lipgloss.Color("42")
	ColorYellow = lipgloss.Color("220")
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite).
			Background(ColorNavy).
			Padding(0, 1)

	sectionTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorBlue)

	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorGray).
			Padding(0, 1)

	focusedSectionStyle = sectionStyle.
				BorderForeground(ColorBlue)

	placeholderStyle = lipgloss.NewStyle().
				Foreground(ColorGray).
				Italic(true)

	cursorStyle = lipgloss.NewStyle().
			Foreground(ColorBlue).
			Bold(true)

	selectedMarkStyle = lipgloss.NewStyle().
				Foreground(ColorGreen)

	errorStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	statusLineStyle = lipgloss.NewStyle().
			Background(ColorNavy).
			Foreground(ColorWhite)

	chartBarStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Background(ColorYellow)

	chartFastestStyle = lipgloss.NewStyle().
				Foreground(ColorGreen).
				Background(ColorGreen)
)
