// Package browse is the interactive catalog browser behind `marquee browse`.
package browse

import (
	"context"
	"errors"
	"fmt"

	"github.com/Digital-Shane/marquee/internal/core"
	"github.com/Digital-Shane/marquee/internal/log"
	"github.com/Digital-Shane/marquee/internal/media"
	"github.com/Digital-Shane/marquee/internal/provider"
	"github.com/Digital-Shane/marquee/internal/tui/components"
	"github.com/Digital-Shane/marquee/internal/tui/theme"
	"github.com/Digital-Shane/treeview"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type inputMode int

const (
	inputNone inputMode = iota
	inputSearch
	inputFilter
)

// Model is the bubbletea model for the browser. The list panel shows the
// current view and the details panel the focused item.
type Model struct {
	*treeview.TuiTreeModel[media.Item]

	ctx       context.Context
	catalog   *core.CatalogStore
	watchlist *core.WatchlistStore
	details   provider.DetailsProvider
	ratings   provider.RatingProvider
	changes   <-chan struct{}

	route    core.Route
	category core.Category
	title    string
	items    []media.Item

	mode        inputMode
	input       textinput.Model
	suggestions []media.Item

	sortField core.SortField
	sortDir   core.SortDirection

	detailCache map[string]*provider.Details
	detailErr   map[string]string
	loadingKey  string

	pending   int
	status    string
	statusErr bool

	width           int
	height          int
	splitRatio      float64
	theme           theme.Theme
	detailsViewport *viewport.Model
	detailsFocused  bool
}

// Option configures a Model during construction.
type Option func(*Model)

// WithTheme overrides the default theme.
func WithTheme(th theme.Theme) Option {
	return func(m *Model) { m.theme = th }
}

// WithContext sets the context used for every request the browser makes.
func WithContext(ctx context.Context) Option {
	return func(m *Model) { m.ctx = ctx }
}

// WithRoute sets the starting route.
func WithRoute(r core.Route) Option {
	return func(m *Model) { m.route = r }
}

// WithDetails enables the details panel enrichment.
func WithDetails(p provider.DetailsProvider) Option {
	return func(m *Model) { m.details = p }
}

// WithRatings enables IMDb ratings in the details panel.
func WithRatings(p provider.RatingProvider) Option {
	return func(m *Model) { m.ratings = p }
}

// New creates a browser over the given stores.
func New(catalog *core.CatalogStore, watchlist *core.WatchlistStore, opts ...Option) *Model {
	m := &Model{
		ctx:         context.Background(),
		catalog:     catalog,
		watchlist:   watchlist,
		route:       core.RouteHome,
		category:    core.CategoryPopular,
		detailCache: make(map[string]*provider.Details),
		detailErr:   make(map[string]string),
		width:       100,
		height:      30,
		splitRatio:  0.5,
	}
	for _, opt := range append([]Option{WithTheme(theme.Default())}, opts...) {
		opt(m)
	}

	tree := treeview.NewTree([]*treeview.Node[media.Item]{},
		treeview.WithProvider(components.NewMediaProvider(m.theme, watchlist.Contains)),
	)
	keyMap := treeview.DefaultKeyMap()
	keyMap.SearchStart = []string{}
	keyMap.Reset = []string{}
	m.TuiTreeModel = treeview.NewTuiTreeModel(tree,
		treeview.WithTuiWidth[media.Item](m.treeWidth()),
		treeview.WithTuiHeight[media.Item](m.listHeight()),
		treeview.WithTuiAllowResize[media.Item](true),
		treeview.WithTuiDisableNavBar[media.Item](true),
		treeview.WithTuiKeyMap[media.Item](keyMap),
	)
	m.detailsViewport = components.NewViewport(m.width-m.treeWidth()-6, m.listHeight()-2, m.theme)
	m.input = newSearchInput(m.theme)

	if c, ok := core.CategoryForRoute(m.route); ok {
		m.category = c
	}
	if m.route == core.RouteSearch {
		m.startInput(inputSearch, "")
	}
	m.refresh()
	return m
}

func newSearchInput(th theme.Theme) textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "title, show or person"
	ti.CharLimit = 128
	colors := th.Colors()
	ti.CursorStyle = lipgloss.NewStyle().Foreground(colors.Background).Background(colors.Accent)
	ti.TextStyle = lipgloss.NewStyle().Foreground(colors.Primary)
	ti.Width = 48
	ti.Blur()
	return ti
}

func (m *Model) treeWidth() int {
	return int(float64(m.width)*m.splitRatio) - 2
}

// listHeight leaves room for the header, search bar, status and hint lines.
func (m *Model) listHeight() int {
	return max(m.height-6, 3)
}

func (m *Model) Init() tea.Cmd {
	m.changes = m.catalog.Subscribe()
	cmds := []tea.Cmd{waitForChange(m.changes)}
	if m.route != core.RouteWatchlist && m.route != core.RouteSearch {
		m.pending++
		cmds = append(cmds, loadHomeCmd(m.ctx, m.catalog))
	}
	if m.mode != inputNone {
		cmds = append(cmds, textinput.Blink)
	}
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		treeModel, cmd := m.TuiTreeModel.Update(tea.WindowSizeMsg{Width: m.treeWidth(), Height: m.listHeight()})
		m.TuiTreeModel = treeModel.(*treeview.TuiTreeModel[media.Item])
		m.detailsViewport.Width = m.width - m.treeWidth() - 6
		m.detailsViewport.Height = m.listHeight() - 2
		return m, cmd

	case fetchDoneMsg:
		if m.pending > 0 {
			m.pending--
		}
		switch {
		case msg.err == nil:
		case errors.Is(msg.err, core.ErrStaleResponse):
		default:
			m.setError(provider.UserMessage(msg.err))
			log.Warnf("browse: %v", msg.err)
		}
		m.refresh()
		return m, nil

	case storeChangedMsg:
		m.refresh()
		return m, waitForChange(m.changes)

	case suggestMsg:
		if m.mode == inputSearch && msg.query == m.input.Value() {
			m.suggestions = m.catalog.Suggestions(msg.query, core.SuggestionLimit)
		}
		return m, nil

	case detailsMsg:
		if m.loadingKey == msg.key {
			m.loadingKey = ""
		}
		if msg.err != nil {
			m.detailErr[msg.key] = provider.UserMessage(msg.err)
			return m, nil
		}
		delete(m.detailErr, msg.key)
		m.detailCache[msg.key] = msg.details
		if m.ratings != nil && msg.details != nil && msg.details.ImdbID != "" && msg.details.ImdbRating == "" {
			return m, ratingCmd(m.ctx, m.ratings, msg.key, msg.details.ImdbID)
		}
		return m, nil

	case ratingMsg:
		if msg.err != nil {
			log.Warnf("browse: rating for %s: %v", msg.key, msg.err)
			return m, nil
		}
		if d := m.detailCache[msg.key]; d != nil {
			d.ImdbRating = msg.rating
		}
		return m, nil

	case tea.KeyMsg:
		if m.mode != inputNone {
			return m.updateInput(msg)
		}
		return m.updateKeys(msg)
	}

	if m.detailsFocused {
		return m, nil
	}
	treeModel, cmd := m.TuiTreeModel.Update(msg)
	m.TuiTreeModel = treeModel.(*treeview.TuiTreeModel[media.Item])
	return m, cmd
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.stopInput()
		return m, nil
	case "tab":
		if m.mode == inputSearch && len(m.suggestions) > 0 {
			m.input.SetValue(m.suggestions[0].SearchTitle())
			m.input.CursorEnd()
		}
		return m, nil
	case "enter":
		value := m.input.Value()
		mode := m.mode
		m.stopInput()
		if mode == inputFilter {
			m.watchlist.SetSearchTerm(value)
			m.refresh()
			return m, nil
		}
		m.route = core.RouteSearch
		m.pending++
		m.setStatus(fmt.Sprintf("Searching for %q", value))
		return m, searchCmd(m.ctx, m.catalog, value, 1)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.mode != inputSearch {
		return m, cmd
	}
	return m, tea.Batch(cmd, components.DebounceMsg(suggestDelay, suggestMsg{query: m.input.Value()}))
}

func (m *Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "1", "2", "3", "4":
		m.category = core.Categories[int(key[0]-'1')]
		m.route = core.RouteHome
		m.refresh()
		kind := core.FetchKind(m.category)
		if m.catalog.Snapshot().SlotStatus(core.SlotFor(kind)) == core.StatusIdle {
			m.pending++
			return m, fetchCmd(m.ctx, m.catalog, kind, 1)
		}
		return m, nil

	case "h":
		m.route = core.RouteHome
		m.refresh()
		return m, nil

	case "w":
		m.route = core.RouteWatchlist
		m.refresh()
		return m, nil

	case "/":
		m.startInput(inputSearch, "")
		return m, textinput.Blink

	case "f":
		if m.route != core.RouteWatchlist {
			return m, nil
		}
		m.startInput(inputFilter, m.watchlist.SearchTerm())
		return m, textinput.Blink

	case "esc":
		if m.route == core.RouteWatchlist {
			m.watchlist.SetFilterGenre("")
			m.watchlist.SetSearchTerm("")
			m.refresh()
			return m, nil
		}
		if m.catalog.Snapshot().Searching() {
			m.catalog.ClearSearch()
			m.route = core.RouteHome
			m.setStatus("Search cleared")
			m.refresh()
		}
		return m, nil

	case "n":
		return m, m.paginate(1)
	case "p":
		return m, m.paginate(-1)

	case " ":
		m.toggleFocused()
		return m, nil

	case "g":
		if m.route == core.RouteWatchlist {
			m.cycleGenre()
		}
		return m, nil

	case "r", "R", "o", "O":
		if m.route != core.RouteWatchlist {
			return m, nil
		}
		m.sortField = core.SortByRating
		if key == "o" || key == "O" {
			m.sortField = core.SortByPopularity
		}
		m.sortDir = core.Ascending
		if key == "R" || key == "O" {
			m.sortDir = core.Descending
		}
		m.watchlist.SortBy(m.sortField, m.sortDir)
		m.refresh()
		return m, nil

	case "enter":
		return m, m.loadDetails()

	case "tab":
		m.detailsFocused = !m.detailsFocused
		return m, nil

	case "up", "k":
		if m.detailsFocused {
			m.detailsViewport.ScrollUp(1)
		} else {
			m.TuiTreeModel.Tree.Move(m.ctx, -1)
		}
		return m, nil

	case "down", "j":
		if m.detailsFocused {
			m.detailsViewport.ScrollDown(1)
		} else {
			m.TuiTreeModel.Tree.Move(m.ctx, 1)
		}
		return m, nil

	case "pgup":
		if m.detailsFocused {
			m.detailsViewport.HalfPageUp()
		} else {
			m.TuiTreeModel.Tree.Move(m.ctx, -m.listHeight()/2)
		}
		return m, nil

	case "pgdown":
		if m.detailsFocused {
			m.detailsViewport.HalfPageDown()
		} else {
			m.TuiTreeModel.Tree.Move(m.ctx, m.listHeight()/2)
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) startInput(mode inputMode, value string) {
	m.mode = mode
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
	if mode == inputSearch {
		m.suggestions = m.catalog.Suggestions("", core.SuggestionLimit)
	}
}

func (m *Model) stopInput() {
	m.mode = inputNone
	m.input.Blur()
	m.suggestions = nil
}

// activeCategory is the category whose list the current route shows.
func (m *Model) activeCategory() core.Category {
	if c, ok := core.CategoryForRoute(m.route); ok {
		return c
	}
	return m.category
}

// pageInfo returns the page the list panel is showing.
func (m *Model) pageInfo(state core.CatalogState) core.PageInfo {
	if m.route == core.RouteSearch && state.Searching() {
		return core.PageInfo{Page: state.CurrentPage, TotalPages: state.TotalPages}
	}
	if p, ok := state.ListPages[core.SlotFor(core.FetchKind(m.activeCategory()))]; ok {
		return p
	}
	return core.PageInfo{Page: 1}
}

// paginate records the target page and pairs it with the fetch that fills it.
func (m *Model) paginate(dir int) tea.Cmd {
	if m.route == core.RouteWatchlist {
		return nil
	}
	state := m.catalog.Snapshot()
	info := m.pageInfo(state)
	next := core.Paginate(info.Page, dir)
	switch {
	case next == info.Page:
		m.setStatus("Already on the first page")
		return nil
	case info.TotalPages > 0 && next > info.TotalPages:
		m.setStatus("Already on the last page")
		return nil
	}

	m.catalog.SetCurrentPage(next)
	m.pending++
	if m.route == core.RouteSearch && state.Searching() {
		return searchCmd(m.ctx, m.catalog, state.SearchQuery, next)
	}
	return fetchCmd(m.ctx, m.catalog, core.FetchKind(m.activeCategory()), next)
}

func (m *Model) focusedItem() (media.Item, bool) {
	node := m.TuiTreeModel.Tree.GetFocusedNode()
	if node == nil || node.Data() == nil {
		return media.Item{}, false
	}
	return *node.Data(), true
}

func (m *Model) toggleFocused() {
	item, ok := m.focusedItem()
	if !ok {
		return
	}
	saved, err := m.watchlist.Toggle(item)
	switch {
	case err != nil:
		m.setError(fmt.Sprintf("Watchlist not saved: %v", err))
	case saved:
		m.setStatus(fmt.Sprintf("Added %s to the watchlist", item.DisplayTitle()))
	default:
		m.setStatus(fmt.Sprintf("Removed %s from the watchlist", item.DisplayTitle()))
	}
	m.refresh()
}

func (m *Model) cycleGenre() {
	genres := m.watchlist.Genres()
	current := m.watchlist.FilterGenre()
	next := genres[0]
	for i, g := range genres {
		if g == current {
			next = genres[(i+1)%len(genres)]
			break
		}
	}
	m.watchlist.SetFilterGenre(next)
	m.refresh()
}

func (m *Model) loadDetails() tea.Cmd {
	item, ok := m.focusedItem()
	if !ok || m.details == nil {
		return nil
	}
	key := item.Key()
	if _, cached := m.detailCache[key]; cached || m.loadingKey == key {
		return nil
	}
	m.loadingKey = key
	delete(m.detailErr, key)
	return detailsCmd(m.ctx, m.details, item)
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *Model) setError(s string) {
	m.status = s
	m.statusErr = true
}

// refresh rebuilds the list panel from the stores, keeping focus on the same
// item when it is still listed.
func (m *Model) refresh() {
	if m.route == core.RouteWatchlist {
		m.items = m.watchlist.Filtered()
		m.title = m.watchlistTitle()
	} else {
		view := core.SelectView(m.route, m.category, m.catalog.Snapshot())
		m.items = view.Items
		m.title = view.Title
	}

	focused := ""
	if node := m.TuiTreeModel.Tree.GetFocusedNode(); node != nil {
		focused = node.ID()
	}

	nodes := components.MediaNodes(m.items)
	m.TuiTreeModel.Tree.SetNodes(nodes)
	if len(nodes) == 0 {
		return
	}
	target := nodes[0].ID()
	for _, n := range nodes {
		if n.ID() == focused {
			target = focused
			break
		}
	}
	if _, err := m.TuiTreeModel.Tree.SetFocusedID(m.ctx, target); err != nil {
		log.Warnf("browse: focus %s: %v", target, err)
	}
}

func (m *Model) watchlistTitle() string {
	title := fmt.Sprintf("WATCHLIST (%d)", m.watchlist.Len())
	if g := m.watchlist.FilterGenre(); g != media.AllGenres {
		title += " " + m.theme.Icon("separator") + " " + g
	}
	if term := m.watchlist.SearchTerm(); term != "" {
		title += fmt.Sprintf(" %s %q", m.theme.Icon("separator"), term)
	}
	if m.sortField != "" {
		title += fmt.Sprintf(" %s by %s %s", m.theme.Icon("separator"), m.sortField, m.sortDir)
	}
	return title
}
