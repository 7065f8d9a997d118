package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/emiliopalmerini/factoryvision/internal/domain"
	"github.com/emiliopalmerini/factoryvision/internal/monitor"
)

type mockMonitor struct {
	StateFunc   func() monitor.State
	RefreshFunc func(ctx context.Context) error
	updates     chan struct{}
	cancelled   bool
}

func (m *mockMonitor) State() monitor.State { return m.StateFunc() }

func (m *mockMonitor) Refresh(ctx context.Context) error {
	if m.RefreshFunc == nil {
		return nil
	}
	return m.RefreshFunc(ctx)
}

func (m *mockMonitor) Subscribe() (<-chan struct{}, func()) {
	if m.updates == nil {
		m.updates = make(chan struct{}, 1)
	}
	return m.updates, func() { m.cancelled = true }
}

func sampleSnapshot() *domain.Snapshot {
	return &domain.Snapshot{
		Factory: domain.FactoryStats{TotalProduction: 160, AvgUtilization: 72, ActiveWorkers: 18},
		Workers: []domain.Worker{
			{ID: "w1", Name: "Ann", Utilization: 85, Units: 40, UPH: 5},
			{ID: "w2", Name: "Bo", Utilization: 30, Units: 10, UPH: 1.5},
		},
		Stations: []domain.Station{
			{StationID: "s1", Name: "Press A", Status: domain.StatusWorking, Units: 60},
		},
	}
}

func liveApp() (*App, *mockMonitor) {
	m := &mockMonitor{StateFunc: func() monitor.State {
		return monitor.State{Snapshot: sampleSnapshot()}
	}}
	return NewApp(m), m
}

func press(a *App, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, cmd = a.Update(msg)
	}
	return cmd
}

func TestApp_CursorMovesAcrossWorkersThenStations(t *testing.T) {
	a, _ := liveApp()

	press(a, "k")
	if a.cursor != 0 {
		t.Errorf("cursor = %d, want 0 at top", a.cursor)
	}
	press(a, "j", "down", "j", "j")
	if a.cursor != 2 {
		t.Errorf("cursor = %d, want 2 (last station)", a.cursor)
	}
}

func TestApp_FocusAndRelease(t *testing.T) {
	a, _ := liveApp()

	press(a, "j", "enter")
	sel := a.Selection()
	if sel.Kind != domain.SelectWorker || sel.ID != "w2" {
		t.Fatalf("selection = %+v, want worker w2", sel)
	}
	if a.page.Banner == nil || !strings.Contains(a.View(), "Investigating Entity: w2") {
		t.Error("banner should be shown")
	}

	press(a, "j", "enter")
	if sel := a.Selection(); sel.Kind != domain.SelectStation || sel.ID != "s1" {
		t.Fatalf("selection = %+v, want station s1", sel)
	}

	press(a, "esc")
	if a.Selection().Active() {
		t.Error("esc should release the filter")
	}
	if a.page.Banner != nil {
		t.Error("banner should be hidden after release")
	}

	press(a, "enter", "x")
	if a.Selection().Active() {
		t.Error("x should release the filter")
	}
}

func TestApp_RefreshKeyCallsMonitor(t *testing.T) {
	a, m := liveApp()
	called := false
	m.RefreshFunc = func(context.Context) error {
		called = true
		return nil
	}

	cmd := press(a, "r")
	if cmd == nil {
		t.Fatal("expected a refresh command")
	}
	msg := cmd()
	if !called {
		t.Error("Refresh not called")
	}
	if _, ok := msg.(refreshDoneMsg); !ok {
		t.Errorf("msg = %T, want refreshDoneMsg", msg)
	}
}

func TestApp_Quit(t *testing.T) {
	a, _ := liveApp()
	cmd := press(a, "q")
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestApp_StateChangeRebuildsAndClampsCursor(t *testing.T) {
	snap := sampleSnapshot()
	m := &mockMonitor{StateFunc: func() monitor.State { return monitor.State{Snapshot: snap} }}
	a := NewApp(m)
	press(a, "j", "j")

	snap = &domain.Snapshot{Workers: []domain.Worker{{ID: "w9", Name: "Zed"}}}
	_, cmd := a.Update(stateChangedMsg{})
	if cmd == nil {
		t.Error("expected to keep waiting for updates")
	}
	if a.cursor != 0 {
		t.Errorf("cursor = %d, want clamped to 0", a.cursor)
	}
	if !strings.Contains(a.View(), "Zed") {
		t.Error("view should show the new snapshot")
	}
}

func TestApp_WaitForUpdate(t *testing.T) {
	a, m := liveApp()
	m.updates <- struct{}{}
	if _, ok := a.waitForUpdate()().(stateChangedMsg); !ok {
		t.Error("expected stateChangedMsg")
	}

	close(m.updates)
	if msg := a.waitForUpdate()(); msg != nil {
		t.Errorf("closed subscription should yield nil, got %T", msg)
	}

	a.Close()
	if !m.cancelled {
		t.Error("Close should cancel the subscription")
	}
}

func TestApp_View(t *testing.T) {
	tests := []struct {
		name  string
		state monitor.State
		want  []string
	}{
		{"loading", monitor.State{Loading: true}, []string{"Initializing Factory AI Analytics..."}},
		{"offline", monitor.State{Err: domain.OfflineMessage}, []string{domain.OfflineMessage, "RETRY SYNC"}},
		{"live", monitor.State{Snapshot: sampleSnapshot()}, []string{"20.0 u/hr", "Ann", "WORKING", "THROUGHPUT 60 UNITS", "SYSTEM LIVE"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewApp(&mockMonitor{StateFunc: func() monitor.State { return tt.state }})
			out := a.View()
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("view missing %q", want)
				}
			}
		})
	}
}
