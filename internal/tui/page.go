package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Page ids.
const (
	DashboardPageID = "dashboard"
	LapDetailPageID = "lap"
)

// Page represents a top-level screen in the TUI.
type Page interface {
	ID() string
	Init() tea.Cmd
	Update(msg tea.Msg) (tea.Cmd, *PageNav)
	View(width, height int) string
}

// PageNav is returned from Update to request a page switch. Params is
// handed to the target page when it implements ParamReceiver.
type PageNav struct {
	PageID string
	Params interface{}
}

// ParamReceiver is implemented by pages that take navigation params.
type ParamReceiver interface {
	SetParams(params interface{})
}

// DashboardPage adapts DashboardModel to the Page interface.
type DashboardPage struct {
	Model *DashboardModel
}

// NewDashboardPage wraps a DashboardModel as a Page.
func NewDashboardPage(m *DashboardModel) *DashboardPage {
	return &DashboardPage{Model: m}
}

func (p *DashboardPage) ID() string { return DashboardPageID }

func (p *DashboardPage) Init() tea.Cmd {
	return p.Model.Init()
}

// Update opens the lap page when enter is pressed on a lap row.
func (p *DashboardPage) Update(msg tea.Msg) (tea.Cmd, *PageNav) {
	if km, ok := msg.(tea.KeyMsg); ok && key.Matches(km, p.Model.keys.Select) {
		if detail, ok := p.Model.lapUnderCursor(); ok {
			return nil, &PageNav{PageID: LapDetailPageID, Params: detail}
		}
	}
	_, cmd := p.Model.Update(msg)
	return cmd, nil
}

func (p *DashboardPage) View(width, height int) string {
	p.Model.resize(width, height)
	return p.Model.View()
}
