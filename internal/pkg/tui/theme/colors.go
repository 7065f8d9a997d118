package theme

import "github.com/charmbracelet/lipgloss"

// Color palette matching the web dashboard
var (
	// Accent colors
	Blue   = lipgloss.Color("#3B82F6")
	Green  = lipgloss.Color("#22C55E")
	Purple = lipgloss.Color("#A855F7")
	Orange = lipgloss.Color("#F97316")
	Red    = lipgloss.Color("#EF4444")

	// Neutrals
	White     = lipgloss.Color("#FFFFFF")
	LightGray = lipgloss.Color("#9CA3AF")
	DimGray   = lipgloss.Color("#6B7280")
	DarkGray  = lipgloss.Color("#374151")
	Black     = lipgloss.Color("#111827")
)

// Accent resolves an accent name ("blue", "green", ...) to its color.
// Unknown names fall back to DimGray.
func Accent(name string) lipgloss.Color {
	switch name {
	case "blue":
		return Blue
	case "green":
		return Green
	case "purple":
		return Purple
	case "orange":
		return Orange
	case "red":
		return Red
	default:
		return DimGray
	}
}
