package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/emiliopalmerini/factoryvision/internal/pkg/tui/theme"
)

// HelpBar renders a horizontal help bar from key bindings
type HelpBar struct {
	Bindings []key.Binding
	styles   *theme.Styles
}

// NewHelpBar creates a new help bar
func NewHelpBar(bindings ...key.Binding) HelpBar {
	return HelpBar{
		Bindings: bindings,
		styles:   theme.Default(),
	}
}

// View renders the enabled bindings as "key:desc" pairs
func (h HelpBar) View() string {
	var parts []string
	for _, kb := range h.Bindings {
		if !kb.Enabled() {
			continue
		}
		help := kb.Help()
		parts = append(parts,
			h.styles.HelpKey.Render(help.Key)+
				h.styles.Muted.Render(":"+help.Desc))
	}
	return strings.Join(parts, " ")
}
