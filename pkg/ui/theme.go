package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/poolnav/pkg/tree"
)

// Theme holds the colours and base styles of the console.
type Theme struct {
	Renderer *lipgloss.Renderer

	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor
	Border    lipgloss.AdaptiveColor
	Running   lipgloss.AdaptiveColor
	Stopped   lipgloss.AdaptiveColor
	Warning   lipgloss.AdaptiveColor

	Base     lipgloss.Style
	Selected lipgloss.Style
}

// DefaultTheme builds the theme for r.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer:  r,
		Primary:   lipgloss.AdaptiveColor{Light: "#1F5FAD", Dark: "#7AA2F7"},
		Secondary: lipgloss.AdaptiveColor{Light: "#8A6D00", Dark: "#E0AF68"},
		Highlight: lipgloss.AdaptiveColor{Light: "#5B2D90", Dark: "#BB9AF7"},
		Muted:     lipgloss.AdaptiveColor{Light: "#8C8C8C", Dark: "#565F89"},
		Subtext:   lipgloss.AdaptiveColor{Light: "#3C3C3C", Dark: "#A9B1D6"},
		Border:    lipgloss.AdaptiveColor{Light: "#C8C8C8", Dark: "#3B4261"},
		Running:   lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#9ECE6A"},
		Stopped:   lipgloss.AdaptiveColor{Light: "#B71C1C", Dark: "#F7768E"},
		Warning:   lipgloss.AdaptiveColor{Light: "#E65100", Dark: "#FF9E64"},
	}
	t.Base = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#1A1B26", Dark: "#C0CAF5"})
	t.Selected = r.NewStyle().
		Background(lipgloss.AdaptiveColor{Light: "#DDE6F5", Dark: "#283457"}).
		Bold(true)
	return t
}

// Icon returns the glyph and colour for an icon key.
func (t Theme) Icon(key tree.IconKey) (string, lipgloss.AdaptiveColor) {
	switch key {
	case tree.IconPool:
		return "◆", t.Primary
	case tree.IconHost:
		return "▣", t.Primary
	case tree.IconHostDisconnected:
		return "▣", t.Stopped
	case tree.IconVMRunning:
		return "●", t.Running
	case tree.IconVMPaused:
		return "‖", t.Secondary
	case tree.IconVMSuspended:
		return "◐", t.Secondary
	case tree.IconVMHalted:
		return "○", t.Stopped
	case tree.IconTemplate:
		return "◇", t.Highlight
	case tree.IconSR:
		return "▤", t.Subtext
	case tree.IconSRShared:
		return "▥", t.Subtext
	case tree.IconConnectionDisconnected:
		return "⊘", t.Stopped
	case tree.IconPlaceholder:
		return "…", t.Muted
	}
	return "▸", t.Muted
}
