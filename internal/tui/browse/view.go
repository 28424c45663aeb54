package browse

import (
	"fmt"
	"strings"

	"github.com/Digital-Shane/marquee/internal/core"
	"github.com/Digital-Shane/marquee/internal/media"
	"github.com/Digital-Shane/marquee/internal/provider"
	"github.com/Digital-Shane/marquee/internal/tui/components"
	"github.com/charmbracelet/lipgloss"
)

func (m *Model) View() string {
	var b strings.Builder
	state := m.catalog.Snapshot()
	colors := m.theme.Colors()

	b.WriteString(m.theme.HeaderStyle().Width(m.width).Render(m.header(state)))
	b.WriteByte('\n')
	b.WriteString(m.renderSearchBar())
	b.WriteByte('\n')

	leftWidth := int(float64(m.width) * m.splitRatio)
	rightWidth := m.width - leftWidth
	height := m.listHeight() + 2
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderList(state, leftWidth, height),
		m.renderDetails(rightWidth, height),
	))
	b.WriteByte('\n')
	b.WriteString(m.renderStatus(state))
	b.WriteByte('\n')
	b.WriteString(lipgloss.NewStyle().
		Italic(true).
		Width(m.width).
		Align(lipgloss.Center).
		Foreground(colors.Muted).
		Render(m.hints()))
	return b.String()
}

func (m *Model) header(state core.CatalogState) string {
	text := "MARQUEE " + m.theme.Icon("separator") + " " + m.title
	if m.route == core.RouteWatchlist {
		return text
	}
	if info := m.pageInfo(state); info.TotalPages > 0 {
		text += fmt.Sprintf("  %s page %d/%d", m.theme.Icon("page"), info.Page, info.TotalPages)
	}
	return text
}

func (m *Model) renderSearchBar() string {
	colors := m.theme.Colors()
	label := lipgloss.NewStyle().Bold(true).Foreground(colors.Accent)
	if m.mode == inputNone {
		if q := m.catalog.Snapshot().SearchQuery; q != "" {
			return label.Render(m.theme.Icon("search")+" ") + fmt.Sprintf("%q (esc to clear)", q)
		}
		return ""
	}

	prompt := "Search: "
	if m.mode == inputFilter {
		prompt = "Filter watchlist: "
	}
	line := label.Render(m.theme.Icon("search")+" "+prompt) + m.input.View()
	if m.mode != inputSearch || len(m.suggestions) == 0 {
		return line
	}

	titles := make([]string, len(m.suggestions))
	for i, s := range m.suggestions {
		titles[i] = s.DisplayTitle()
	}
	return line + "\n" + lipgloss.NewStyle().Foreground(colors.Muted).Render("  "+strings.Join(titles, " "+m.theme.Icon("separator")+" "))
}

func (m *Model) renderList(state core.CatalogState, width, height int) string {
	colors := m.theme.Colors()
	var body string
	switch {
	case len(m.items) > 0:
		body = m.TuiTreeModel.View()
	case m.route != core.RouteWatchlist && m.listStatus(state) == core.StatusLoading:
		body = m.theme.Icon("loading") + " Loading..."
	case m.route != core.RouteWatchlist && m.listStatus(state) == core.StatusFailed:
		body = lipgloss.NewStyle().Foreground(colors.Error).Render(m.listError(state))
	case m.route == core.RouteWatchlist:
		body = "Your watchlist is empty. Press space on any title to save it."
	default:
		body = "Nothing to show."
	}
	content := components.PanelTitle(m.title, width, colors.Primary) + "\n" + body
	return components.SizedPanel(m.theme, width, height, colors.Primary).Render(content)
}

func (m *Model) listSlot(state core.CatalogState) core.Slot {
	if m.route == core.RouteSearch && state.Searching() {
		return core.SlotActive
	}
	return core.SlotFor(core.FetchKind(m.activeCategory()))
}

func (m *Model) listStatus(state core.CatalogState) core.Status {
	return state.SlotStatus(m.listSlot(state))
}

func (m *Model) listError(state core.CatalogState) string {
	if msg := state.ListError[m.listSlot(state)]; msg != "" {
		return msg
	}
	return provider.FallbackMessage
}

func (m *Model) renderDetails(width, height int) string {
	colors := m.theme.Colors()
	if item, ok := m.focusedItem(); ok {
		m.detailsViewport.SetContent(m.formatItem(item, max(m.detailsViewport.Width-2, 10)))
	} else {
		m.detailsViewport.SetContent(lipgloss.NewStyle().
			Italic(true).
			Foreground(colors.Muted).
			Render("Select a title to see its details"))
	}

	title := "Details"
	if m.detailsViewport.TotalLineCount() > m.detailsViewport.Height {
		if m.detailsFocused {
			title += " [↑↓ to scroll]"
		} else {
			title += " [Tab to scroll]"
		}
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		components.PanelTitle(title, width, colors.Secondary),
		m.detailsViewport.View(),
	)
	return components.SizedPanel(m.theme, width, height, colors.Secondary).Render(content)
}

func (m *Model) formatItem(item media.Item, width int) string {
	var b strings.Builder
	colors := m.theme.Colors()
	label := lipgloss.NewStyle().Bold(true).Foreground(colors.Accent)
	value := lipgloss.NewStyle().Foreground(colors.Primary)
	line := func(name, text string) {
		if text == "" {
			return
		}
		b.WriteString(label.Render(name+": ") + value.Render(text) + "\n")
	}

	kindIcon := m.theme.Icon("movie")
	if item.IsTV() {
		kindIcon = m.theme.Icon("tv")
	}
	heading := kindIcon + " " + item.DisplayTitle()
	if year := item.Year(); year != "" {
		heading += " (" + year + ")"
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(colors.Primary).Width(width).Render(heading))
	b.WriteString("\n")
	if m.watchlist.Contains(item.ID) {
		b.WriteString(lipgloss.NewStyle().Foreground(colors.Secondary).Render(m.theme.Icon("heart") + " On your watchlist"))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	rating := m.theme.RatingStyle(item.VoteAverage).Render(m.theme.Icon("star") + " " + item.RatingLabel())
	if item.VoteCount != nil {
		rating += value.Render(fmt.Sprintf(" (%d votes)", *item.VoteCount))
	}
	b.WriteString(label.Render("Rating: ") + rating + "\n")
	line("Popularity", item.PopularityLabel())
	line("Released", item.Date())
	line("Genres", strings.Join(media.GenreNames(item), ", "))

	key := item.Key()
	d := m.detailCache[key]
	if d != nil {
		line("Tagline", d.Tagline)
		if d.Runtime != "?" {
			line("Runtime", d.Runtime+" min")
		}
		if d.Seasons > 0 {
			line("Seasons", fmt.Sprint(d.Seasons))
		}
		line("Director", d.Director)
		line("Cast", strings.Join(d.Cast, ", "))
		line("IMDb", d.ImdbRating)
		line("Homepage", d.Homepage)
	}

	if item.Overview != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Width(width).Render(item.Overview))
		b.WriteString("\n")
	}

	switch {
	case m.loadingKey == key:
		b.WriteString("\n" + m.theme.Icon("loading") + " Loading details...")
	case m.detailErr[key] != "":
		b.WriteString("\n" + lipgloss.NewStyle().Foreground(colors.Error).Render(m.detailErr[key]))
	case d == nil && m.details != nil:
		b.WriteString("\n" + lipgloss.NewStyle().Italic(true).Foreground(colors.Muted).Render("Press enter for cast and crew"))
	}
	return b.String()
}

func (m *Model) renderStatus(state core.CatalogState) string {
	text := m.status
	isErr := m.statusErr
	if m.pending > 0 {
		text = m.theme.Icon("loading") + " Loading..."
		isErr = false
	} else if text == "" && state.Status == core.StatusFailed {
		text = state.Error
		isErr = true
	}
	if text == "" {
		text = fmt.Sprintf("%s %d saved", m.theme.Icon("heart"), m.watchlist.Len())
	}
	style := m.theme.StatusBarStyle().Width(m.width)
	if isErr {
		style = style.Background(m.theme.Colors().Error)
	}
	return style.Render(text)
}

func (m *Model) hints() string {
	if m.mode != inputNone {
		return "Enter: Submit | Tab: Complete | Esc: Cancel"
	}
	focus := "Tab: Details"
	if m.detailsFocused {
		focus = "Tab: List"
	}
	if m.route == core.RouteWatchlist {
		return focus + " | Space: Remove | g: Genre | r/R: Rating | o/O: Popularity | f: Filter | Esc: Reset | h: Home | q: Quit"
	}
	return focus + " | 1-4: Category | /: Search | n/p: Page | Space: Save | Enter: Details | w: Watchlist | q: Quit"
}
