// Package theme holds the palette, icons and shared lipgloss styles of the
// marquee TUI.
package theme

import (
	"maps"
	"os"
	"runtime"

	"github.com/charmbracelet/lipgloss"
)

// IconSet maps an icon name (movie, tv, heart...) to its glyph.
type IconSet map[string]string

// Colors is the palette shared by every screen.
type Colors struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Accent     lipgloss.Color
	Background lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Error      lipgloss.Color
}

// marqueeColors is the default palette: theater red with a gold accent.
var marqueeColors = Colors{
	Primary:    "#8c1c2c",
	Secondary:  "#b23a48",
	Accent:     "#e8b923",
	Background: "#fbf7ef",
	Muted:      "#a09a92",
	Success:    "#5dc796",
	Error:      "#f04c56",
}

// Good and poor vote averages for RatingStyle.
const (
	goodRating = 7.0
	poorRating = 5.0
)

// Theme is immutable once built; copy it freely.
type Theme struct {
	colors Colors
	icons  IconSet
}

type Option func(*Theme)

// WithIconSet replaces the icon set. Names missing from set fall back to
// the ASCII glyphs.
func WithIconSet(set IconSet) Option {
	return func(t *Theme) { t.icons = maps.Clone(set) }
}

// WithColors replaces the palette.
func WithColors(c Colors) Option {
	return func(t *Theme) { t.colors = c }
}

func New(opts ...Option) Theme {
	t := Theme{colors: marqueeColors, icons: defaultIconSet()}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// Default is New without options.
func Default() Theme {
	return New()
}

func (t Theme) Colors() Colors {
	return t.colors
}

// Icon returns the glyph for name, the ASCII glyph when the set lacks it,
// or "" for unknown names.
func (t Theme) Icon(name string) string {
	if icon, ok := t.icons[name]; ok {
		return icon
	}
	return asciiIcons[name]
}

// IconSet returns a copy of the active icons.
func (t Theme) IconSet() IconSet {
	return maps.Clone(t.icons)
}

func (t Theme) HeaderStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Align(lipgloss.Center).
		Foreground(t.colors.Background).
		Background(t.colors.Primary)
}

func (t Theme) StatusBarStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(t.colors.Background).
		Background(t.colors.Secondary)
}

// PanelStyle is the rounded, padded box around the list and details panels.
func (t Theme) PanelStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.colors.Accent).
		Padding(1)
}

// RatingStyle colors a vote average. Missing ratings are muted.
func (t Theme) RatingStyle(rating *float64) lipgloss.Style {
	s := lipgloss.NewStyle().Bold(true)
	switch {
	case rating == nil:
		return s.Foreground(t.colors.Muted)
	case *rating >= goodRating:
		return s.Foreground(t.colors.Accent)
	case *rating < poorRating:
		return s.Foreground(t.colors.Error)
	}
	return s.Foreground(t.colors.Secondary)
}

// defaultIconSet picks ASCII glyphs over ssh and on Windows consoles, where
// emoji widths are unreliable.
func defaultIconSet() IconSet {
	remote := os.Getenv("SSH_CLIENT") != "" || os.Getenv("SSH_TTY") != "" || os.Getenv("SSH_CONNECTION") != ""
	if remote || runtime.GOOS == "windows" {
		return maps.Clone(asciiIcons)
	}
	return maps.Clone(emojiIcons)
}

var emojiIcons = IconSet{
	"movie":     "🎬",
	"tv":        "📺",
	"heart":     "❤",
	"star":      "★",
	"search":    "🔎",
	"page":      "📄",
	"loading":   "⏳",
	"add":       "➕",
	"remove":    "➖",
	"error":     "❌",
	"unknown":   "❓",
	"separator": "·",
}

var asciiIcons = IconSet{
	"movie":     "[M]",
	"tv":        "[TV]",
	"heart":     "<3",
	"star":      "*",
	"search":    "[?]",
	"page":      "[#]",
	"loading":   "[..]",
	"add":       "[+]",
	"remove":    "[-]",
	"error":     "[!]",
	"unknown":   "[?]",
	"separator": "|",
}
