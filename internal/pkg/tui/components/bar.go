package components

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/emiliopalmerini/factoryvision/internal/pkg/tui/theme"
)

// Bar is a fixed-width horizontal fill gauge
type Bar struct {
	Width int
}

// NewBar creates a bar of the given cell width
func NewBar(width int) Bar {
	if width < 1 {
		width = 1
	}
	return Bar{Width: width}
}

// Filled returns how many cells a 0-100 percentage fills
func (b Bar) Filled(percent float64) int {
	p := math.Max(0, math.Min(100, percent))
	return int(math.Round(p / 100 * float64(b.Width)))
}

// View renders the bar for percent in color
func (b Bar) View(percent float64, color lipgloss.Color) string {
	n := b.Filled(percent)
	fill := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", n))
	rest := lipgloss.NewStyle().Foreground(theme.DarkGray).Render(strings.Repeat("░", b.Width-n))
	return fill + rest
}
