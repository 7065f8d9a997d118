package theme

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Styles contains all shared TUI styles
type Styles struct {
	// Text styles
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Body      lipgloss.Style
	Muted     lipgloss.Style
	Bold      lipgloss.Style
	BoldMuted lipgloss.Style

	// Interactive elements
	Cursor   lipgloss.Style
	Selected lipgloss.Style

	// Help and hints
	Help    lipgloss.Style
	HelpKey lipgloss.Style

	// Layout
	Container lipgloss.Style
	Card      lipgloss.Style
	Banner    lipgloss.Style

	// Status indicators
	Live  lipgloss.Style
	Stale lipgloss.Style
	Error lipgloss.Style
}

var (
	defaultStyles *Styles
	once          sync.Once
)

// Default returns the singleton default Styles instance
func Default() *Styles {
	once.Do(func() {
		defaultStyles = newStyles()
	})
	return defaultStyles
}

func newStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(White),

		Subtitle: lipgloss.NewStyle().
			Foreground(Blue).
			Bold(true).
			MarginTop(1),

		Body: lipgloss.NewStyle().
			Foreground(LightGray),

		Muted: lipgloss.NewStyle().
			Foreground(DimGray),

		Bold: lipgloss.NewStyle().
			Bold(true).
			Foreground(White),

		BoldMuted: lipgloss.NewStyle().
			Bold(true).
			Foreground(DimGray),

		Cursor: lipgloss.NewStyle().
			Foreground(Blue).
			Bold(true),

		Selected: lipgloss.NewStyle().
			Foreground(White).
			Background(DarkGray).
			Bold(true),

		Help: lipgloss.NewStyle().
			Foreground(DimGray).
			MarginTop(1),

		HelpKey: lipgloss.NewStyle().
			Foreground(LightGray).
			Bold(true),

		Container: lipgloss.NewStyle().
			Padding(1, 2),

		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(DarkGray).
			Padding(0, 1).
			Width(24),

		Banner: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Blue).
			Padding(0, 2).
			MarginTop(1),

		Live: lipgloss.NewStyle().
			Foreground(Green).
			Bold(true),

		Stale: lipgloss.NewStyle().
			Foreground(Orange).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(Red).
			Bold(true),
	}
}
