package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/emiliopalmerini/factoryvision/internal/dashboard"
	"github.com/emiliopalmerini/factoryvision/internal/pkg/tui/theme"
)

// View implements tea.Model
func (a *App) View() string {
	var content string
	switch a.page.Phase {
	case "loading":
		content = a.spinner.View() + " " + a.styles.Body.Render(dashboard.LoadingText)
	case "offline":
		content = lipgloss.JoinVertical(lipgloss.Left,
			a.styles.Error.Render(a.page.Error),
			"",
			a.styles.Muted.Render("press r to "+dashboard.RetryLabel),
		)
	default:
		content = a.renderLive()
	}

	return a.styles.Container.Render(lipgloss.JoinVertical(lipgloss.Left,
		a.renderHeader(),
		"",
		content,
		a.styles.Help.Render(a.help.View()),
	))
}

func (a *App) renderHeader() string {
	title := a.styles.Title.Render("FACTORY VISION")

	var status string
	switch {
	case a.page.Phase != "live":
		status = ""
	case a.page.Syncing:
		status = a.spinner.View() + " " + a.styles.Live.Render(a.page.Status)
	case a.page.Stale:
		status = a.styles.Stale.Render(a.page.Status)
	default:
		status = a.styles.Live.Render("● " + a.page.Status)
	}

	return lipgloss.JoinHorizontal(lipgloss.Bottom, title, "  ", status)
}

func (a *App) renderLive() string {
	cards := make([]string, 0, len(a.page.Cards))
	for _, c := range a.page.Cards {
		cards = append(cards, a.renderCard(c))
	}

	sections := []string{
		lipgloss.JoinHorizontal(lipgloss.Top, cards...),
		a.styles.Subtitle.Render("WORKER PERFORMANCE"),
	}
	for i, w := range a.page.Workers {
		sections = append(sections, a.renderWorker(i, w))
	}

	sections = append(sections, a.styles.Subtitle.Render("WORKSTATIONS"))
	offset := len(a.page.Workers)
	for i, st := range a.page.Stations {
		sections = append(sections, a.renderStation(offset+i, st))
	}

	if b := a.page.Banner; b != nil {
		sections = append(sections, a.styles.Banner.Render(
			a.styles.Bold.Render(b.Text)+"  "+a.styles.Muted.Render("esc: "+b.Action),
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (a *App) renderCard(c dashboard.Card) string {
	accent := theme.Accent(string(c.Accent))
	return a.styles.Card.BorderForeground(accent).Render(lipgloss.JoinVertical(lipgloss.Left,
		a.styles.Muted.Render(strings.ToUpper(c.Title)),
		lipgloss.NewStyle().Bold(true).Foreground(accent).Render(c.Value),
		a.styles.Muted.Render(c.Subtitle),
	))
}

func (a *App) marker(i int) string {
	if i == a.cursor {
		return a.styles.Cursor.Render("▶ ")
	}
	return "  "
}

func (a *App) renderWorker(i int, w dashboard.WorkerRow) string {
	line := fmt.Sprintf("%s %-18s %s %6s  %8s units  %6s uph",
		a.styles.BoldMuted.Render("("+w.Initial+")"),
		truncate(w.Name, 18),
		a.bar.View(w.BarWidth, theme.Accent(string(w.Accent))),
		w.Label,
		w.Units,
		w.UPH,
	)
	if w.Selected {
		line = a.styles.Selected.Render(line)
	}
	return a.marker(i) + line
}

func (a *App) renderStation(i int, st dashboard.StationCard) string {
	badge := lipgloss.NewStyle().Bold(true).Foreground(theme.Accent(string(st.Accent))).Render(st.Status)
	line := fmt.Sprintf("%-8s %-18s %s  %s",
		st.ID,
		truncate(st.Name, 18),
		badge,
		a.styles.Muted.Render(st.Throughput),
	)
	if st.Selected {
		line = a.styles.Selected.Render(line)
	}
	return a.marker(i) + line
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
