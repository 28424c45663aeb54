package browse

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Digital-Shane/marquee/internal/core"
	"github.com/Digital-Shane/marquee/internal/media"
	"github.com/Digital-Shane/marquee/internal/provider"
	"github.com/Digital-Shane/marquee/internal/storage"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/google/go-cmp/cmp"
)

type fakeCatalog struct {
	mu       sync.Mutex
	lists    map[provider.EndpointKind][]media.Item
	search   []media.Item
	total    int
	fail     error
	requests []provider.Request
}

func (f *fakeCatalog) FetchPage(ctx context.Context, req provider.Request) (*provider.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.fail != nil {
		return nil, f.fail
	}
	results := f.lists[req.Kind]
	if req.Kind == provider.SearchMulti {
		results = f.search
	}
	return &provider.Page{Page: req.Page, TotalPages: f.total, Results: results}, nil
}

func (f *fakeCatalog) lastRequest() provider.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

type fakeDetails struct {
	DetailsFunc func(ctx context.Context, id int, kind media.Kind) (*provider.Details, error)
}

func (f *fakeDetails) Details(ctx context.Context, id int, kind media.Kind) (*provider.Details, error) {
	return f.DetailsFunc(ctx, id, kind)
}

type fakeRatings struct{ rating string }

func (f fakeRatings) Rating(ctx context.Context, imdbID string) (string, error) {
	return f.rating, nil
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		total: 3,
		lists: map[provider.EndpointKind][]media.Item{
			provider.PopularMovies: {
				{ID: 949, Title: "Heat", ReleaseDate: "1995-12-15", VoteAverage: media.Float(8.3), GenreIDs: []int{80}},
				{ID: 268, Title: "Batman", ReleaseDate: "1989-06-23", VoteAverage: media.Float(7.2), GenreIDs: []int{28}},
			},
			provider.PopularTV: {{ID: 1396, Kind: media.KindTV, Name: "Breaking Bad", GenreIDs: []int{18}}},
			provider.NewMovies: {{ID: 1, Title: "Fresh"}},
			provider.NewTV:     {{ID: 2, Kind: media.KindTV, Name: "Pilot"}},
		},
		search: []media.Item{{ID: 438631, Title: "Dune", VoteAverage: media.Float(7.8)}},
	}
}

func newTestModel(t *testing.T, client *fakeCatalog, opts ...Option) *Model {
	t.Helper()
	watchlist, err := core.NewWatchlistStore(storage.NewMemoryStore())
	if err != nil {
		t.Fatalf("NewWatchlistStore() error = %v", err)
	}
	return New(core.NewCatalogStore(client), watchlist, opts...)
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m *Model, msg tea.KeyMsg) tea.Cmd {
	t.Helper()
	_, cmd := m.Update(msg)
	return cmd
}

// run executes cmd and feeds its message back into the model.
func run(t *testing.T, m *Model, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	_, next := m.Update(cmd())
	return next
}

func loadHome(t *testing.T, m *Model) {
	t.Helper()
	m.pending++
	run(t, m, loadHomeCmd(m.ctx, m.catalog))
}

func itemIDs(items []media.Item) []int {
	out := []int{}
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestLoadHomeShowsTrendingMovies(t *testing.T) {
	m := newTestModel(t, newFakeCatalog())
	loadHome(t, m)

	if m.title != "TRENDING MOVIES" {
		t.Errorf("title = %q, want TRENDING MOVIES", m.title)
	}
	if diff := cmp.Diff([]int{949, 268}, itemIDs(m.items)); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
	if item, ok := m.focusedItem(); !ok || item.ID != 949 {
		t.Errorf("focused item = %+v, want Heat", item)
	}
	if m.pending != 0 {
		t.Errorf("pending = %d, want 0", m.pending)
	}
	if view := m.View(); !strings.Contains(view, "page 1/3") {
		t.Error("header should show the page")
	}
}

func TestCategoryKeysSwitchLists(t *testing.T) {
	m := newTestModel(t, newFakeCatalog())
	loadHome(t, m)

	tests := []struct {
		key   string
		title string
		ids   []int
	}{
		{"2", "TRENDING TV SHOWS", []int{1396}},
		{"3", "NEW RELEASES - MOVIES", []int{1}},
		{"4", "NEW RELEASES - TV SHOWS", []int{2}},
		{"1", "TRENDING MOVIES", []int{949, 268}},
	}
	for _, tt := range tests {
		if cmd := press(t, m, keyRunes(tt.key)); cmd != nil {
			t.Errorf("key %s: loaded category should not refetch", tt.key)
		}
		if m.title != tt.title {
			t.Errorf("key %s: title = %q, want %q", tt.key, m.title, tt.title)
		}
		if diff := cmp.Diff(tt.ids, itemIDs(m.items)); diff != "" {
			t.Errorf("key %s: items mismatch (-want +got):\n%s", tt.key, diff)
		}
	}
}

func TestCategoryKeyFetchesUnloadedList(t *testing.T) {
	client := newFakeCatalog()
	m := newTestModel(t, client)

	cmd := press(t, m, keyRunes("3"))
	run(t, m, cmd)

	if got := client.lastRequest(); got.Kind != provider.NewMovies || got.Page != 1 {
		t.Errorf("request = %+v, want new-movies page 1", got)
	}
	if diff := cmp.Diff([]int{1}, itemIDs(m.items)); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchAndClear(t *testing.T) {
	client := newFakeCatalog()
	m := newTestModel(t, client)
	loadHome(t, m)

	press(t, m, keyRunes("/"))
	if m.mode != inputSearch {
		t.Fatal("slash should open the search input")
	}
	press(t, m, keyRunes("dune"))
	if m.input.Value() != "dune" {
		t.Fatalf("input = %q, want dune", m.input.Value())
	}

	run(t, m, press(t, m, tea.KeyMsg{Type: tea.KeyEnter}))

	if got := client.lastRequest(); got.Kind != provider.SearchMulti || got.Query != "dune" {
		t.Errorf("request = %+v", got)
	}
	if m.route != core.RouteSearch || m.title != `SEARCH RESULTS FOR "DUNE"` {
		t.Errorf("route=%s title=%q", m.route, m.title)
	}
	if diff := cmp.Diff([]int{438631}, itemIDs(m.items)); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}

	press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.catalog.Snapshot().Searching() {
		t.Error("esc should clear the search")
	}
	if m.route != core.RouteHome || m.title != "TRENDING MOVIES" {
		t.Errorf("after clear route=%s title=%q", m.route, m.title)
	}
}

func TestSearchInputEscCancels(t *testing.T) {
	m := newTestModel(t, newFakeCatalog())
	press(t, m, keyRunes("/"))
	press(t, m, keyRunes("abc"))
	if cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEsc}); cmd != nil {
		t.Error("cancel should not fetch")
	}
	if m.mode != inputNone || m.suggestions != nil {
		t.Error("esc should close the search input")
	}
}

func TestSuggestions(t *testing.T) {
	m := newTestModel(t, newFakeCatalog())
	loadHome(t, m)

	press(t, m, keyRunes("/"))
	if len(m.suggestions) != 2 {
		t.Fatalf("suggestions on open = %d, want 2", len(m.suggestions))
	}
	press(t, m, keyRunes("bat"))

	m.Update(suggestMsg{query: "ba"})
	if len(m.suggestions) != 2 {
		t.Error("stale suggestion request should be ignored")
	}

	m.Update(suggestMsg{query: "bat"})
	if diff := cmp.Diff([]int{268}, itemIDs(m.suggestions)); diff != "" {
		t.Errorf("suggestions mismatch (-want +got):\n%s", diff)
	}

	press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.input.Value() != "Batman" {
		t.Errorf("tab completion = %q, want Batman", m.input.Value())
	}
}

func TestPagination(t *testing.T) {
	client := newFakeCatalog()
	m := newTestModel(t, client)
	loadHome(t, m)

	if cmd := press(t, m, keyRunes("p")); cmd != nil {
		t.Error("previous on page 1 should not fetch")
	}
	if m.status != "Already on the first page" {
		t.Errorf("status = %q", m.status)
	}

	cmd := press(t, m, keyRunes("n"))
	if got := m.catalog.Snapshot().CurrentPage; got != 2 {
		t.Errorf("CurrentPage = %d before fetch, want 2", got)
	}
	run(t, m, cmd)
	if got := client.lastRequest(); got.Kind != provider.PopularMovies || got.Page != 2 {
		t.Errorf("request = %+v, want popular page 2", got)
	}

	run(t, m, press(t, m, keyRunes("n")))
	if cmd := press(t, m, keyRunes("n")); cmd != nil {
		t.Error("next past the last page should not fetch")
	}
}

func TestSpaceTogglesWatchlist(t *testing.T) {
	m := newTestModel(t, newFakeCatalog())
	loadHome(t, m)

	press(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if !m.watchlist.Contains(949) {
		t.Fatal("space should save the focused item")
	}
	if !strings.Contains(m.status, "Added Heat") {
		t.Errorf("status = %q", m.status)
	}

	press(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if m.watchlist.Contains(949) {
		t.Fatal("second space should remove the item")
	}
}

func TestMoveChangesFocus(t *testing.T) {
	m := newTestModel(t, newFakeCatalog())
	loadHome(t, m)

	press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if item, _ := m.focusedItem(); item.ID != 268 {
		t.Errorf("focused = %d after down, want 268", item.ID)
	}

	// Focus survives a refresh.
	m.refresh()
	if item, _ := m.focusedItem(); item.ID != 268 {
		t.Errorf("focused = %d after refresh, want 268", item.ID)
	}
}

func TestWatchlistRoute(t *testing.T) {
	m := newTestModel(t, newFakeCatalog())
	for _, it := range []media.Item{
		{ID: 1, Title: "Heat", VoteAverage: media.Float(8.3), Popularity: media.Float(20), GenreIDs: []int{80}},
		{ID: 2, Title: "Up", VoteAverage: media.Float(8.0), Popularity: media.Float(90), GenreIDs: []int{16}},
		{ID: 3, Title: "Ronin", VoteAverage: media.Float(7.0), Popularity: media.Float(5), GenreIDs: []int{80}},
	} {
		if _, err := m.watchlist.Add(it); err != nil {
			t.Fatal(err)
		}
	}

	press(t, m, keyRunes("w"))
	if m.route != core.RouteWatchlist || !strings.HasPrefix(m.title, "WATCHLIST (3)") {
		t.Fatalf("route=%s title=%q", m.route, m.title)
	}

	press(t, m, keyRunes("g"))
	if m.watchlist.FilterGenre() != "Crime" {
		t.Errorf("FilterGenre() = %q, want Crime", m.watchlist.FilterGenre())
	}
	if diff := cmp.Diff([]int{1, 3}, itemIDs(m.items)); diff != "" {
		t.Errorf("filtered items mismatch (-want +got):\n%s", diff)
	}

	press(t, m, keyRunes("r"))
	if diff := cmp.Diff([]int{3, 1}, itemIDs(m.items)); diff != "" {
		t.Errorf("rating asc mismatch (-want +got):\n%s", diff)
	}

	press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	press(t, m, keyRunes("O"))
	if diff := cmp.Diff([]int{2, 1, 3}, itemIDs(m.items)); diff != "" {
		t.Errorf("popularity desc mismatch (-want +got):\n%s", diff)
	}

	press(t, m, keyRunes("f"))
	press(t, m, keyRunes("on"))
	press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.watchlist.SearchTerm() != "on" {
		t.Errorf("SearchTerm() = %q, want on", m.watchlist.SearchTerm())
	}
	if diff := cmp.Diff([]int{3}, itemIDs(m.items)); diff != "" {
		t.Errorf("term filter mismatch (-want +got):\n%s", diff)
	}
}

func TestEnterLoadsDetailsAndRating(t *testing.T) {
	calls := 0
	details := &fakeDetails{
		DetailsFunc: func(ctx context.Context, id int, kind media.Kind) (*provider.Details, error) {
			calls++
			if id != 949 || kind != media.KindMovie {
				t.Errorf("Details(%d, %q)", id, kind)
			}
			return &provider.Details{ID: id, Runtime: "170", Director: "Michael Mann", ImdbID: "tt0113277"}, nil
		},
	}
	m := newTestModel(t, newFakeCatalog(), WithDetails(details), WithRatings(fakeRatings{rating: "8.3"}))
	loadHome(t, m)

	next := run(t, m, press(t, m, tea.KeyMsg{Type: tea.KeyEnter}))
	run(t, m, next)

	d := m.detailCache["movie-949"]
	if d == nil || d.ImdbRating != "8.3" {
		t.Fatalf("cached details = %+v", d)
	}
	text := m.formatItem(m.items[0], 60)
	for _, want := range []string{"Michael Mann", "170 min", "8.3"} {
		if !strings.Contains(text, want) {
			t.Errorf("details panel missing %q", want)
		}
	}

	if cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Error("cached details should not refetch")
	}
	if calls != 1 {
		t.Errorf("Details called %d times, want 1", calls)
	}
}

func TestDetailsErrorShown(t *testing.T) {
	details := &fakeDetails{
		DetailsFunc: func(ctx context.Context, id int, kind media.Kind) (*provider.Details, error) {
			return nil, &provider.CatalogError{Kind: provider.ErrAPI, Payload: &provider.APIPayload{StatusMessage: "The resource you requested could not be found."}}
		},
	}
	m := newTestModel(t, newFakeCatalog(), WithDetails(details))
	loadHome(t, m)
	run(t, m, press(t, m, tea.KeyMsg{Type: tea.KeyEnter}))

	if !strings.Contains(m.formatItem(m.items[0], 80), "could not be found") {
		t.Error("details error not rendered")
	}
}

func TestFetchFailureShowsError(t *testing.T) {
	client := newFakeCatalog()
	client.fail = &provider.CatalogError{Kind: provider.ErrAPI, Code: "AUTH_FAILED", Payload: &provider.APIPayload{StatusMessage: "Invalid API key"}}
	m := newTestModel(t, client)
	loadHome(t, m)

	if !m.statusErr || m.status != "Invalid API key" {
		t.Errorf("status = %q (err=%v)", m.status, m.statusErr)
	}
	if !strings.Contains(m.View(), "Invalid API key") {
		t.Error("view should show the error")
	}
}

func TestStaleResponseIsNotAnError(t *testing.T) {
	m := newTestModel(t, newFakeCatalog())
	m.pending = 1
	m.Update(fetchDoneMsg{err: core.ErrStaleResponse})
	if m.statusErr {
		t.Error("stale responses should not surface as errors")
	}
	if m.pending != 0 {
		t.Errorf("pending = %d", m.pending)
	}
}

func TestStartOnWatchlistRoute(t *testing.T) {
	m := newTestModel(t, newFakeCatalog(), WithRoute(core.RouteWatchlist))
	if m.route != core.RouteWatchlist || !strings.HasPrefix(m.title, "WATCHLIST") {
		t.Errorf("route=%s title=%q", m.route, m.title)
	}
}

func TestStartOnCategoryRoute(t *testing.T) {
	m := newTestModel(t, newFakeCatalog(), WithRoute(core.RouteNewShows))
	loadHome(t, m)
	if m.title != "NEW RELEASES - TV SHOWS" {
		t.Errorf("title = %q", m.title)
	}
}

func TestBrowseTeatest(t *testing.T) {
	m := newTestModel(t, newFakeCatalog())
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(120, 30))

	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("TRENDING MOVIES")) && bytes.Contains(b, []byte("Heat"))
	}, teatest.WithDuration(3*time.Second), teatest.WithCheckInterval(25*time.Millisecond))

	tm.Send(keyRunes("q"))
	tm.WaitFinished(t, teatest.WithFinalTimeout(2*time.Second))

	final, ok := tm.FinalModel(t).(*Model)
	if !ok {
		t.Fatalf("final model type %T", tm.FinalModel(t))
	}
	if len(final.items) != 2 {
		t.Errorf("final items = %d, want 2", len(final.items))
	}
}

func TestQuitFromSearchInput(t *testing.T) {
	m := newTestModel(t, newFakeCatalog())
	press(t, m, keyRunes("/"))
	cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("ctrl+c should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should produce tea.QuitMsg")
	}
}
