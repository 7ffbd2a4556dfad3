package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tinytelemetry/pitlane/internal/laptime"
	"github.com/tinytelemetry/pitlane/internal/model"
)

// LapDetail is one lap plus the session references it is compared with.
type LapDetail struct {
	Session     model.Session
	Lap         model.Lap
	DriverLaps  int
	DriverBest  *int64
	SessionBest *int64
	SectorBests [3]*int64
}

// buildLapDetail compares lap against the rest of the session's laps.
func buildLapDetail(sess model.Session, laps []model.Lap, lap model.Lap) LapDetail {
	d := LapDetail{Session: sess, Lap: lap}
	for _, l := range laps {
		if l.Driver == lap.Driver {
			d.DriverLaps++
			d.DriverBest = minTime(d.DriverBest, l.LapTimeMs)
		}
		d.SessionBest = minTime(d.SessionBest, l.LapTimeMs)
		for i, v := range sectors(l) {
			d.SectorBests[i] = minTime(d.SectorBests[i], v)
		}
	}
	return d
}

func sectors(l model.Lap) [3]*int64 {
	return [3]*int64{l.Sector1TimeMs, l.Sector2TimeMs, l.Sector3TimeMs}
}

// minTime ignores nil and non-positive times.
func minTime(cur, v *int64) *int64 {
	if v == nil || *v <= 0 {
		return cur
	}
	if cur == nil || *v < *cur {
		x := *v
		return &x
	}
	return cur
}

// gap describes v against ref: the best label when equal, otherwise the
// delta. It returns "" when either time is missing.
func gap(v, ref *int64, best, against string) (text string, isBest bool) {
	if v == nil || ref == nil {
		return "", false
	}
	if *v == *ref {
		return best, true
	}
	return laptime.FormatDelta(*v-*ref) + " " + against, false
}

// LapDetailPage shows one lap with its gaps to the driver's and the
// session's best.
type LapDetailPage struct {
	keys   KeyMap
	help   help.Model
	detail LapDetail
	ok     bool
}

// NewLapDetailPage creates an empty lap page; SetParams fills it.
func NewLapDetailPage() *LapDetailPage {
	return &LapDetailPage{keys: DefaultKeyMap(), help: help.New()}
}

func (p *LapDetailPage) ID() string { return LapDetailPageID }

func (p *LapDetailPage) Init() tea.Cmd { return nil }

// SetParams takes a LapDetail; anything else leaves the page empty.
func (p *LapDetailPage) SetParams(params interface{}) {
	p.detail, p.ok = params.(LapDetail)
}

func (p *LapDetailPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil, nil
	}
	switch {
	case key.Matches(km, p.keys.Quit), key.Matches(km, p.keys.ForceQuit):
		return tea.Quit, nil
	case key.Matches(km, p.keys.Back), key.Matches(km, p.keys.Select):
		return nil, &PageNav{PageID: DashboardPageID}
	}
	return nil, nil
}

var (
	detailLabelStyle = lipgloss.NewStyle().Foreground(ColorGray).Width(12)
	detailValueStyle = lipgloss.NewStyle().Bold(true).Width(12)
	detailBestStyle  = lipgloss.NewStyle().Foreground(ColorGreen)
)

func (p *LapDetailPage) View(width, height int) string {
	header := headerStyle.Width(max(width, 1)).Render("F1 Data Dashboard  ›  Lap detail")
	footer := p.help.ShortHelpView([]key.Binding{p.keys.Back, p.keys.Quit})

	if !p.ok {
		body := placeholderStyle.Render("No lap selected.")
		return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
	}

	d := p.detail
	lap := d.Lap
	var rows []string
	row := func(label, value, note string, isBest bool) {
		line := detailLabelStyle.Render(label) + detailValueStyle.Render(value)
		if note != "" {
			style := placeholderStyle
			if isBest {
				style = detailBestStyle
			}
			line += " " + style.Render(note)
		}
		rows = append(rows, line)
	}

	row("Session", sessionLabel(d.Session), "", false)
	row("Driver", lap.Driver, "", false)
	row("Lap", strconv.Itoa(lap.LapNumber), fmt.Sprintf("of %d by %s", d.DriverLaps, lap.Driver), false)
	note, best := gap(lap.LapTimeMs, d.DriverBest, "personal best", "to personal best")
	row("Lap Time", laptime.Format(lap.LapTimeMs), note, best)
	if note, best := gap(lap.LapTimeMs, d.SessionBest, "fastest lap", "to fastest lap"); note != "" {
		row("", "", note, best)
	}
	for i, v := range sectors(lap) {
		note, best := gap(v, d.SectorBests[i], "fastest", "to fastest")
		row(fmt.Sprintf("Sector %d", i+1), laptime.Format(v), note, best)
	}
	row("Speed Trap", laptime.FormatSpeed(lap.SpeedTrapKmh), "", false)
	row("Tyre", laptime.FormatText(lap.TyreCompound), "", false)

	box := focusedSectionStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		sectionTitleStyle.Render(lap.Driver+" lap "+strconv.Itoa(lap.LapNumber)),
		strings.Join(rows, "\n"),
	))
	return lipgloss.JoinVertical(lipgloss.Left, header, box, footer)
}
