package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Digital-Shane/marquee/internal/log"
	"github.com/Digital-Shane/marquee/internal/media"
	"github.com/Digital-Shane/marquee/internal/provider"
	"github.com/sourcegraph/conc"
)

// SuggestionLimit is the number of search suggestions offered.
const SuggestionLimit = 5

// ErrStaleResponse is returned when a response was dropped because a newer
// request for the same list was dispatched after it.
var ErrStaleResponse = errors.New("stale response dropped")

// HomeKinds are fetched together when the home view opens.
var HomeKinds = []provider.EndpointKind{
	provider.PopularMovies,
	provider.PopularTV,
	provider.NewMovies,
	provider.NewTV,
}

// CatalogStore owns CatalogState. Every mutation goes through Reduce under a
// single lock, so updates apply one at a time in the order requests settle.
type CatalogStore struct {
	client provider.CatalogClient

	mu          sync.Mutex
	state       CatalogState
	seq         map[Slot]uint64
	staleGuard  bool
	subscribers []chan struct{}
}

// CatalogOption configures a CatalogStore.
type CatalogOption func(*CatalogStore)

// WithStaleResponseGuard drops a response when a newer request for the same
// list has been dispatched since it started. Without it every response is
// applied as it arrives.
func WithStaleResponseGuard() CatalogOption {
	return func(s *CatalogStore) {
		s.staleGuard = true
	}
}

// NewCatalogStore creates a store backed by client.
func NewCatalogStore(client provider.CatalogClient, opts ...CatalogOption) *CatalogStore {
	s := &CatalogStore{
		client: client,
		state:  InitialCatalogState(),
		seq:    make(map[Slot]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a copy of the current state.
func (s *CatalogStore) Snapshot() CatalogState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Dispatch applies action to the state.
func (s *CatalogStore) Dispatch(action Action) {
	s.mu.Lock()
	s.state = Reduce(s.state, action)
	s.mu.Unlock()
	s.notify()
}

// Subscribe returns a channel that receives a signal after every state
// change. Signals coalesce: a slow reader sees at most one pending signal.
func (s *CatalogStore) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.subscribers = append(s.subscribers, ch)
	s.mu.Unlock()
	return ch
}

func (s *CatalogStore) notify() {
	s.mu.Lock()
	subs := s.subscribers
	s.mu.Unlock()
	for _, ch := range subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// FetchCategory fetches page of a category listing. A PopularMovies result
// also becomes the active list unless a search is showing.
func (s *CatalogStore) FetchCategory(ctx context.Context, kind provider.EndpointKind, page int) error {
	if kind == provider.SearchMulti || !kind.Valid() {
		return fmt.Errorf("not a category: %q", kind)
	}
	if page < 1 {
		page = 1
	}
	err := s.run(ctx, provider.Request{Kind: kind, Page: page})
	if err != nil && !errors.Is(err, ErrStaleResponse) {
		log.LogFetch(string(kind), page, err)
	}
	return err
}

// Search runs a multi search. The query is forwarded as given, empty or not.
func (s *CatalogStore) Search(ctx context.Context, query string, page int) error {
	if page < 1 {
		page = 1
	}
	err := s.run(ctx, provider.Request{Kind: provider.SearchMulti, Page: page, Query: query})
	if !errors.Is(err, ErrStaleResponse) {
		log.LogSearch(query, page, err)
	}
	return err
}

// ClearSearch leaves search mode. With the stale guard on, a search still in
// flight is dropped when it answers.
func (s *CatalogStore) ClearSearch() {
	s.mu.Lock()
	if s.staleGuard {
		s.seq[SlotActive]++
	}
	s.state = Reduce(s.state, ClearSearch{})
	s.mu.Unlock()
	s.notify()
}

// SetCurrentPage records the page the UI is showing. It never fetches.
func (s *CatalogStore) SetCurrentPage(page int) {
	s.Dispatch(SetCurrentPage{Page: page})
}

// LoadHome fetches the first page of every home category concurrently and
// returns the joined errors.
func (s *CatalogStore) LoadHome(ctx context.Context) error {
	var (
		wg   conc.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, kind := range HomeKinds {
		wg.Go(func() {
			if err := s.FetchCategory(ctx, kind, 1); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", kind, err))
				mu.Unlock()
			}
		})
	}
	wg.Wait()
	return errors.Join(errs...)
}

// Suggestions returns up to limit popular movies whose title contains query,
// ignoring case and surrounding whitespace. An empty query returns the first
// limit popular movies.
func (s *CatalogStore) Suggestions(query string, limit int) []media.Item {
	if limit <= 0 {
		limit = SuggestionLimit
	}
	s.mu.Lock()
	popular := cloneItems(s.state.TrendingMovies)
	s.mu.Unlock()

	query = strings.TrimSpace(query)
	out := make([]media.Item, 0, limit)
	for _, item := range popular {
		if len(out) == limit {
			break
		}
		if query == "" || item.MatchesTitle(query) {
			out = append(out, item)
		}
	}
	return out
}

func (s *CatalogStore) run(ctx context.Context, req provider.Request) error {
	slot := SlotFor(req.Kind)

	s.mu.Lock()
	s.seq[slot]++
	seq := s.seq[slot]
	s.mu.Unlock()

	s.Dispatch(FetchPending{Kind: req.Kind})

	page, err := s.client.FetchPage(ctx, req)
	if err == nil && page == nil {
		err = &provider.CatalogError{Kind: provider.ErrMalformed, Code: "MALFORMED", Err: errors.New("empty page")}
	}

	var action Action
	if err != nil {
		action = FetchRejected{Kind: req.Kind, Message: provider.UserMessage(err)}
	} else {
		action = FetchFulfilled{Kind: req.Kind, Query: req.Query, Page: *page}
	}

	s.mu.Lock()
	if s.staleGuard && s.seq[slot] != seq {
		s.mu.Unlock()
		return ErrStaleResponse
	}
	s.state = Reduce(s.state, action)
	s.mu.Unlock()
	s.notify()

	return err
}
