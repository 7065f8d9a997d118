// Package tui is the terminal rendering of the factory dashboard.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/emiliopalmerini/factoryvision/internal/dashboard"
	"github.com/emiliopalmerini/factoryvision/internal/domain"
	"github.com/emiliopalmerini/factoryvision/internal/monitor"
	"github.com/emiliopalmerini/factoryvision/internal/pkg/tui/components"
	"github.com/emiliopalmerini/factoryvision/internal/pkg/tui/theme"
)

// Monitor is the part of *monitor.Monitor the terminal view drives.
type Monitor interface {
	State() monitor.State
	Refresh(ctx context.Context) error
	Subscribe() (<-chan struct{}, func())
}

// stateChangedMsg is sent whenever the monitor publishes a new state.
type stateChangedMsg struct{}

// refreshDoneMsg carries the result of a manual refresh.
type refreshDoneMsg struct{ err error }

// App is the root bubbletea model.
type App struct {
	monitor Monitor
	updates <-chan struct{}
	cancel  func()

	page    dashboard.Page
	sel     domain.Selection
	cursor  int
	spinner spinner.Model
	keys    keyMap
	help    components.HelpBar
	bar     components.Bar
	styles  *theme.Styles
	now     func() time.Time
	width   int
	height  int
}

// NewApp subscribes to m. Call Close once the program exits.
func NewApp(m Monitor) *App {
	updates, cancel := m.Subscribe()
	keys := defaultKeys()
	a := &App{
		monitor: m,
		updates: updates,
		cancel:  cancel,
		sel:     domain.Selection{Kind: domain.SelectAll},
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		keys:    keys,
		help:    components.NewHelpBar(keys.Up, keys.Down, keys.Focus, keys.Release, keys.Refresh, keys.Quit),
		bar:     components.NewBar(20),
		styles:  theme.Default(),
		now:     time.Now,
	}
	a.rebuild()
	return a
}

// Close releases the monitor subscription.
func (a *App) Close() {
	a.cancel()
}

// Selection returns the focused entity.
func (a *App) Selection() domain.Selection {
	return a.sel
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.waitForUpdate())
}

func (a *App) waitForUpdate() tea.Cmd {
	updates := a.updates
	return func() tea.Msg {
		if _, ok := <-updates; !ok {
			return nil
		}
		return stateChangedMsg{}
	}
}

func (a *App) refresh() tea.Cmd {
	return func() tea.Msg {
		return refreshDoneMsg{err: a.monitor.Refresh(context.Background())}
	}
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a, a.handleKey(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case stateChangedMsg:
		a.rebuild()
		return a, a.waitForUpdate()

	case refreshDoneMsg:
		a.rebuild()

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, a.keys.Quit):
		return tea.Quit
	case key.Matches(msg, a.keys.Refresh):
		return a.refresh()
	case key.Matches(msg, a.keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}
	case key.Matches(msg, a.keys.Down):
		if a.cursor < a.entityCount()-1 {
			a.cursor++
		}
	case key.Matches(msg, a.keys.Focus):
		if kind, id, ok := a.entityAt(a.cursor); ok {
			a.sel.Select(kind, id)
			a.rebuild()
		}
	case key.Matches(msg, a.keys.Release):
		a.sel.Reset()
		a.rebuild()
	}
	return nil
}

// rebuild derives the page from the latest state and keeps the cursor
// inside the current entity list.
func (a *App) rebuild() {
	a.page = dashboard.Build(a.monitor.State(), a.sel, a.now())
	a.keys.Release.SetEnabled(a.sel.Active())
	a.help.Bindings[3] = a.keys.Release

	n := a.entityCount()
	if a.cursor >= n {
		a.cursor = max(n-1, 0)
	}
}

// entityCount is the number of cursor positions: workers then stations.
func (a *App) entityCount() int {
	return len(a.page.Workers) + len(a.page.Stations)
}

func (a *App) entityAt(i int) (domain.SelectionKind, string, bool) {
	switch {
	case i < 0:
		return "", "", false
	case i < len(a.page.Workers):
		return domain.SelectWorker, a.page.Workers[i].ID, true
	case i < a.entityCount():
		return domain.SelectStation, a.page.Stations[i-len(a.page.Workers)].ID, true
	default:
		return "", "", false
	}
}
