package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	title    lipgloss.Style
	subtle   lipgloss.Style
	selected lipgloss.Style
	label    lipgloss.Style
	value    lipgloss.Style
	keyHint  lipgloss.Style
	running  lipgloss.Style
	err      lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		subtle:   lipgloss.NewStyle().Foreground(t.Muted),
		selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff")),
		label:    lipgloss.NewStyle().Foreground(lipgloss.Color("#888899")),
		value:    lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		keyHint:  lipgloss.NewStyle().Italic(true).Foreground(t.Muted),
		running:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff88")),
		err:      lipgloss.NewStyle().Bold(true).Foreground(t.Error),
	}
}

// SliderBar draws the position of v within [lo, hi] as a bar of the given
// width.
func SliderBar(v, lo, hi float64, width int) string {
	if width <= 0 {
		return ""
	}
	frac := 0.0
	if hi > lo {
		frac = (v - lo) / (hi - lo)
	}
	filled := int(frac*float64(width) + 0.5)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func separator(s styles, width int) string {
	if width < 8 {
		width = 8
	}
	mid := width / 2
	return s.subtle.Render(strings.Repeat("─", mid-3) + " ◆ " + strings.Repeat("─", width-mid-3))
}
