package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tinytelemetry/pitlane/internal/model"
)

// feedApp runs cmd through the app, dropping spinner ticks.
func feedApp(a *App, cmd tea.Cmd) {
	for _, msg := range runCmd(cmd) {
		if _, ok := msg.(SpinnerTickMsg); ok {
			continue
		}
		_, next := a.Update(msg)
		feedApp(a, next)
	}
}

func press(a *App, msg tea.KeyMsg) {
	_, cmd := a.Update(msg)
	feedApp(a, cmd)
}

func TestBuildLapDetail(t *testing.T) {
	laps := []model.Lap{
		{Driver: "VER", LapNumber: 1, LapTimeMs: model.Int64(93456), Sector1TimeMs: model.Int64(30000)},
		{Driver: "VER", LapNumber: 2, LapTimeMs: model.Int64(92000), Sector1TimeMs: model.Int64(30500)},
		{Driver: "HAM", LapNumber: 1, LapTimeMs: model.Int64(91500), Sector1TimeMs: model.Int64(29900)},
		{Driver: "HAM", LapNumber: 2},
	}

	d := buildLapDetail(bahrain, laps, laps[0])

	if d.DriverLaps != 2 {
		t.Errorf("DriverLaps = %d, want 2", d.DriverLaps)
	}
	if d.DriverBest == nil || *d.DriverBest != 92000 {
		t.Errorf("DriverBest = %v, want 92000", d.DriverBest)
	}
	if d.SessionBest == nil || *d.SessionBest != 91500 {
		t.Errorf("SessionBest = %v, want 91500", d.SessionBest)
	}
	if d.SectorBests[0] == nil || *d.SectorBests[0] != 29900 {
		t.Errorf("SectorBests[0] = %v, want 29900", d.SectorBests[0])
	}
	if d.SectorBests[1] != nil {
		t.Errorf("SectorBests[1] = %v, want nil", *d.SectorBests[1])
	}
}

func TestGap(t *testing.T) {
	tests := []struct {
		name     string
		v, ref   *int64
		want     string
		wantBest bool
	}{
		{"missing value", nil, model.Int64(1), "", false},
		{"missing ref", model.Int64(1), nil, "", false},
		{"equal", model.Int64(92000), model.Int64(92000), "best", true},
		{"slower", model.Int64(93456), model.Int64(92000), "+1.456 to best", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, best := gap(tt.v, tt.ref, "best", "to best")
			if got != tt.want || best != tt.wantBest {
				t.Errorf("gap = (%q, %v), want (%q, %v)", got, best, tt.want, tt.wantBest)
			}
		})
	}
}

func TestApp_OpensLapDetailAndReturns(t *testing.T) {
	store := newFakeStore()
	store.laps[1] = []model.Lap{
		verLap,
		{LapID: 11, Driver: "VER", LapNumber: 2, LapTimeMs: model.Int64(92000)},
	}
	m := NewDashboardModel(store, Options{DataSource: "HTTP"})
	app := NewApp(NewDashboardPage(m), NewLapDetailPage())

	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	feedApp(app, app.Init())

	// Enter in the picker selects a session and stays on the dashboard.
	press(app, tea.KeyMsg{Type: tea.KeyDown})
	press(app, tea.KeyMsg{Type: tea.KeyEnter})
	if app.ActivePage() != DashboardPageID {
		t.Fatalf("active page = %q after selecting a session", app.ActivePage())
	}
	if len(m.Laps()) != 2 {
		t.Fatalf("laps = %d, want 2", len(m.Laps()))
	}

	press(app, tea.KeyMsg{Type: tea.KeyTab})
	press(app, tea.KeyMsg{Type: tea.KeyEnter})
	if app.ActivePage() != LapDetailPageID {
		t.Fatalf("active page = %q, want %q", app.ActivePage(), LapDetailPageID)
	}

	view := app.View()
	for _, s := range []string{"Lap detail", "VER lap 1", "1:33.456", "+1.456 to personal best", "+1.456 to fastest lap", "of 2 by VER", "SOFT"} {
		if !strings.Contains(view, s) {
			t.Errorf("lap view missing %q", s)
		}
	}

	// Fetch results still reach the dashboard while it is hidden.
	app.Update(sessionsLoadedMsg{sessions: append(store.sessions, model.Session{SessionID: 3, Year: 2023, GPName: "Jeddah", SessionType: "Race", Date: "2023-03-19"})})
	if len(m.Sessions()) != 3 {
		t.Errorf("sessions = %d, want 3 after background load", len(m.Sessions()))
	}

	press(app, tea.KeyMsg{Type: tea.KeyEsc})
	if app.ActivePage() != DashboardPageID {
		t.Fatalf("active page = %q after esc, want %q", app.ActivePage(), DashboardPageID)
	}
	if store.sessionCalls != 1 {
		t.Errorf("session requests = %d, returning to the dashboard should not refetch", store.sessionCalls)
	}
	if id := m.SelectedSessionID(); id == nil || *id != 1 {
		t.Errorf("selection = %v, want 1 kept across navigation", id)
	}
	if len(m.Laps()) != 2 {
		t.Errorf("laps = %d, want 2 kept across navigation", len(m.Laps()))
	}
}

func TestApp_EnterOnEmptyLapTableStays(t *testing.T) {
	store := newFakeStore()
	store.laps[1] = nil
	m := NewDashboardModel(store, Options{})
	app := NewApp(NewDashboardPage(m), NewLapDetailPage())
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	feedApp(app, app.Init())

	press(app, tea.KeyMsg{Type: tea.KeyDown})
	press(app, tea.KeyMsg{Type: tea.KeyEnter})
	press(app, tea.KeyMsg{Type: tea.KeyTab})
	press(app, tea.KeyMsg{Type: tea.KeyEnter})

	if app.ActivePage() != DashboardPageID {
		t.Errorf("active page = %q, want dashboard when there are no laps", app.ActivePage())
	}
}

func TestApp_UnknownPageIgnored(t *testing.T) {
	m := NewDashboardModel(newFakeStore(), Options{})
	app := NewApp(NewDashboardPage(m))

	if cmd := app.navigate(PageNav{PageID: "nope"}); cmd != nil {
		t.Error("navigate to unknown page returned a cmd")
	}
	if app.ActivePage() != DashboardPageID {
		t.Errorf("active page = %q, want dashboard", app.ActivePage())
	}
}

func TestLapDetailPage_WithoutParams(t *testing.T) {
	p := NewLapDetailPage()
	p.SetParams("not a lap")

	if view := p.View(80, 24); !strings.Contains(view, "No lap selected.") {
		t.Errorf("view = %q", view)
	}
	if _, nav := p.Update(tea.KeyMsg{Type: tea.KeyBackspace}); nav == nil || nav.PageID != DashboardPageID {
		t.Errorf("backspace nav = %+v, want dashboard", nav)
	}
	if cmd, _ := p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}); cmd == nil {
		t.Error("q did not quit")
	}
}
