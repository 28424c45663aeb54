package components

import (
	"github.com/Digital-Shane/marquee/internal/tui/theme"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
)

// NewViewport builds a borderless viewport that uses the theme's panel
// padding.
func NewViewport(width, height int, th theme.Theme) *viewport.Model {
	vp := viewport.New(width, height)
	vp.Style = th.PanelStyle().
		BorderStyle(lipgloss.Border{}).
		BorderForeground(lipgloss.Color(""))
	return &vp
}

// SizedPanel returns the theme panel style sized so that its outer box is
// width by height. Non-positive sizes are left unconstrained.
func SizedPanel(th theme.Theme, width, height int, border lipgloss.Color) lipgloss.Style {
	style := th.PanelStyle()
	if border != "" {
		style = style.BorderForeground(border)
	}
	if width > 0 {
		style = style.Width(max(width-style.GetHorizontalFrameSize(), 0))
	}
	if height > 0 {
		style = style.Height(max(height-style.GetVerticalFrameSize(), 0))
	}
	return style.Padding(0, 1)
}

// PanelTitle renders a centered, bold panel heading.
func PanelTitle(text string, width int, color lipgloss.Color) string {
	w := width - 4
	if w < 0 {
		w = width
	}
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(color).
		Width(w).
		Align(lipgloss.Center).
		Render(text)
}
