package components

import (
	"fmt"

	"github.com/Digital-Shane/marquee/internal/media"
	"github.com/Digital-Shane/marquee/internal/tui/theme"

	"github.com/Digital-Shane/treeview"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// maxLabelWidth caps list labels so long titles don't wrap the panel.
const maxLabelWidth = 48

func itemIs(cond func(media.Item) bool) func(*treeview.Node[media.Item]) bool {
	return func(n *treeview.Node[media.Item]) bool {
		if d := n.Data(); d != nil {
			return cond(*d)
		}
		return false
	}
}

// NewMediaNode wraps item in a list node keyed by kind and id.
func NewMediaNode(item media.Item) *treeview.Node[media.Item] {
	return treeview.NewNode(item.Key(), item.DisplayTitle(), item)
}

// MediaNodes converts items to list nodes, preserving order.
func MediaNodes(items []media.Item) []*treeview.Node[media.Item] {
	nodes := make([]*treeview.Node[media.Item], len(items))
	for i, item := range items {
		nodes[i] = NewMediaNode(item)
	}
	return nodes
}

// NewMediaProvider builds the node provider for media lists. Saved items get
// the heart icon and accent color; otherwise the icon follows the media kind.
// saved may be nil.
func NewMediaProvider(th theme.Theme, saved func(id int) bool) *treeview.DefaultNodeProvider[media.Item] {
	if saved == nil {
		saved = func(int) bool { return false }
	}
	colors := th.Colors()
	isSaved := itemIs(func(i media.Item) bool { return saved(i.ID) })

	return treeview.NewDefaultNodeProvider(
		treeview.WithIconRule(isSaved, th.Icon("heart")),
		treeview.WithIconRule(itemIs(media.Item.IsTV), th.Icon("tv")),
		treeview.WithDefaultIcon[media.Item](th.Icon("movie")),

		treeview.WithStyleRule(
			isSaved,
			lipgloss.NewStyle().Foreground(colors.Secondary).Bold(true),
			lipgloss.NewStyle().Foreground(colors.Background).Bold(true).Background(colors.Secondary).PaddingRight(1),
		),
		treeview.WithStyleRule(
			func(*treeview.Node[media.Item]) bool { return true },
			lipgloss.NewStyle().Foreground(colors.Primary),
			lipgloss.NewStyle().Foreground(colors.Background).Background(colors.Primary).PaddingRight(1),
		),

		treeview.WithFormatter(MediaLabel),
	)
}

// MediaLabel formats a list row as "Title (Year)  7.5".
func MediaLabel(node *treeview.Node[media.Item]) (string, bool) {
	d := node.Data()
	if d == nil {
		return node.Name(), true
	}
	title := d.DisplayTitle()
	if title == "" {
		title = "Untitled"
	}
	title = runewidth.Truncate(title, maxLabelWidth, "…")
	if year := d.Year(); year != "" {
		title = fmt.Sprintf("%s (%s)", title, year)
	}
	return fmt.Sprintf("%s  %s", title, d.RatingLabel()), true
}
