package tui

import (
	"log"

	tea "github.com/charmbracelet/bubbletea"
)

// App is the top-level Bubble Tea model that routes between pages. Key and
// mouse input goes to the active page only; every other message reaches
// all pages so fetches started on one page still land after navigating
// away from it.
type App struct {
	pages   map[string]Page
	order   []string
	active  string
	started map[string]bool
	width   int
	height  int
}

// NewApp creates a new App with the given pages. The first page is the default.
func NewApp(pages ...Page) *App {
	a := &App{
		pages:   make(map[string]Page, len(pages)),
		started: make(map[string]bool, len(pages)),
	}
	for _, p := range pages {
		a.pages[p.ID()] = p
		a.order = append(a.order, p.ID())
	}
	if len(a.order) > 0 {
		a.active = a.order[0]
	}
	return a
}

// Init starts the default page.
func (a *App) Init() tea.Cmd {
	return a.start(a.active)
}

// ActivePage returns the id of the page receiving input.
func (a *App) ActivePage() string {
	return a.active
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		a.width = wsm.Width
		a.height = wsm.Height
	}

	switch msg.(type) {
	case tea.KeyMsg, tea.MouseMsg:
		p, ok := a.pages[a.active]
		if !ok {
			return a, nil
		}
		cmd, nav := p.Update(msg)
		if nav == nil {
			return a, cmd
		}
		return a, tea.Batch(cmd, a.navigate(*nav))
	}

	cmds := make([]tea.Cmd, 0, len(a.order)+1)
	var nav *PageNav
	for _, id := range a.order {
		cmd, n := a.pages[id].Update(msg)
		cmds = append(cmds, cmd)
		if id == a.active && n != nil {
			nav = n
		}
	}
	if nav != nil {
		cmds = append(cmds, a.navigate(*nav))
	}
	return a, tea.Batch(cmds...)
}

// navigate switches the active page, hands it nav.Params, and runs its
// Init the first time it is shown.
func (a *App) navigate(nav PageNav) tea.Cmd {
	p, ok := a.pages[nav.PageID]
	if !ok {
		log.Printf("tui: navigation to unknown page %q", nav.PageID)
		return nil
	}
	if r, ok := p.(ParamReceiver); ok {
		r.SetParams(nav.Params)
	}
	a.active = nav.PageID
	return a.start(nav.PageID)
}

func (a *App) start(id string) tea.Cmd {
	p, ok := a.pages[id]
	if !ok || a.started[id] {
		return nil
	}
	a.started[id] = true
	return p.Init()
}

func (a *App) View() string {
	if p, ok := a.pages[a.active]; ok {
		return p.View(a.width, a.height)
	}
	return "No active page"
}
