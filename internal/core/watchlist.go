package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/Digital-Shane/marquee/internal/log"
	"github.com/Digital-Shane/marquee/internal/media"
	"github.com/Digital-Shane/marquee/internal/storage"
	csmap "github.com/mhmtszr/concurrent-swiss-map"
)

// WatchlistKey is the storage key holding the serialized watchlist.
const WatchlistKey = "watchlist"

// SortField selects the value watchlist sorting compares.
type SortField string

const (
	SortByRating     SortField = "rating"
	SortByPopularity SortField = "popularity"
)

// SortDirection is ascending or descending.
type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// ParseSortField validates a user supplied sort field.
func ParseSortField(s string) (SortField, error) {
	switch SortField(strings.ToLower(s)) {
	case SortByRating:
		return SortByRating, nil
	case SortByPopularity:
		return SortByPopularity, nil
	}
	return "", fmt.Errorf("unknown sort field %q (want rating or popularity)", s)
}

// WatchlistStore holds the user's saved items. Items, the genre filter and
// the search term live in memory; every add or remove rewrites the full list
// to storage before returning. Sort order is not persisted.
type WatchlistStore struct {
	store storage.Persistence

	mu          sync.Mutex
	items       []media.Item
	filterGenre string
	searchTerm  string
	index       *csmap.CsMap[int, struct{}]
}

// NewWatchlistStore loads the watchlist from p. A missing key yields an empty
// list; an unreadable payload is an error.
func NewWatchlistStore(p storage.Persistence) (*WatchlistStore, error) {
	w := &WatchlistStore{
		store:       p,
		items:       []media.Item{},
		filterGenre: media.AllGenres,
		index:       csmap.Create[int, struct{}](),
	}

	data, err := p.Get(WatchlistKey)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return w, nil
	case err != nil:
		return nil, fmt.Errorf("failed to load watchlist: %w", err)
	}

	var items []media.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse watchlist: %w", err)
	}
	for _, item := range items {
		// Older payloads may hold duplicates; keep the first occurrence.
		if _, dup := w.index.Load(item.ID); dup {
			continue
		}
		w.index.Store(item.ID, struct{}{})
		w.items = append(w.items, item)
	}
	return w, nil
}

// Add appends item unless an item with the same id is already saved. It
// reports whether the list changed.
func (w *WatchlistStore) Add(item media.Item) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.index.Load(item.ID); ok {
		return false, nil
	}

	next := append(cloneItems(w.items), item)
	if err := w.persist(next); err != nil {
		log.LogWatchlist(log.OpWatchlistAdd, item.ID, item.DisplayTitle(), err)
		return false, err
	}
	w.items = next
	w.index.Store(item.ID, struct{}{})
	log.LogWatchlist(log.OpWatchlistAdd, item.ID, item.DisplayTitle(), nil)
	return true, nil
}

// Remove deletes every item with item's id. Absent ids are a no-op.
func (w *WatchlistStore) Remove(item media.Item) (bool, error) {
	return w.RemoveID(item.ID)
}

// RemoveID deletes every item with id.
func (w *WatchlistStore) RemoveID(id int) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.index.Load(id); !ok {
		return false, nil
	}

	title := ""
	next := make([]media.Item, 0, len(w.items))
	for _, it := range w.items {
		if it.ID == id {
			title = it.DisplayTitle()
			continue
		}
		next = append(next, it)
	}

	if err := w.persist(next); err != nil {
		log.LogWatchlist(log.OpWatchlistRemove, id, title, err)
		return false, err
	}
	w.items = next
	w.index.Delete(id)
	log.LogWatchlist(log.OpWatchlistRemove, id, title, nil)
	return true, nil
}

// Toggle removes item when saved and adds it otherwise. It returns whether
// the item is saved afterwards.
func (w *WatchlistStore) Toggle(item media.Item) (bool, error) {
	if w.Contains(item.ID) {
		_, err := w.Remove(item)
		return err != nil, err
	}
	_, err := w.Add(item)
	return err == nil, err
}

// Contains reports whether id is saved.
func (w *WatchlistStore) Contains(id int) bool {
	_, ok := w.index.Load(id)
	return ok
}

// Len returns the number of saved items.
func (w *WatchlistStore) Len() int {
	return w.index.Count()
}

// Items returns a copy of the saved items in their current order.
func (w *WatchlistStore) Items() []media.Item {
	w.mu.Lock()
	defer w.mu.Unlock()
	return cloneItems(w.items)
}

// SetFilterGenre sets the genre filter. An empty genre means all genres.
func (w *WatchlistStore) SetFilterGenre(genre string) {
	if genre == "" {
		genre = media.AllGenres
	}
	w.mu.Lock()
	w.filterGenre = genre
	w.mu.Unlock()
}

// FilterGenre returns the current genre filter.
func (w *WatchlistStore) FilterGenre() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.filterGenre
}

// SetSearchTerm sets the title filter.
func (w *WatchlistStore) SetSearchTerm(term string) {
	w.mu.Lock()
	w.searchTerm = term
	w.mu.Unlock()
}

// SearchTerm returns the current title filter.
func (w *WatchlistStore) SearchTerm() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.searchTerm
}

// SortBy reorders the in-memory list. The sort is stable and items without
// the field sort as lowest, so they come first ascending and last descending.
func (w *WatchlistStore) SortBy(field SortField, dir SortDirection) {
	w.mu.Lock()
	defer w.mu.Unlock()
	SortItems(w.items, field, dir)
}

// SortItems stably sorts items in place.
func SortItems(items []media.Item, field SortField, dir SortDirection) {
	value := func(it media.Item) float64 {
		var v *float64
		switch field {
		case SortByPopularity:
			v = it.Popularity
		default:
			v = it.VoteAverage
		}
		if v == nil {
			return math.Inf(-1)
		}
		return *v
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := value(items[i]), value(items[j])
		if dir == Descending {
			return a > b
		}
		return a < b
	})
}

// Filtered returns the items that pass the genre filter and whose title
// contains the search term, ignoring case. It does not modify the store.
func (w *WatchlistStore) Filtered() []media.Item {
	w.mu.Lock()
	defer w.mu.Unlock()
	return FilterItems(w.items, w.filterGenre, w.searchTerm)
}

// FilterItems applies the watchlist genre and title filters to items.
func FilterItems(items []media.Item, genre, term string) []media.Item {
	out := make([]media.Item, 0, len(items))
	for _, it := range items {
		if genre != "" && genre != media.AllGenres && media.PrimaryGenre(it) != genre {
			continue
		}
		if !it.MatchesTitle(term) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// Genres returns "All Genres" followed by each distinct primary genre in list
// order.
func (w *WatchlistStore) Genres() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	genres := []string{media.AllGenres}
	seen := map[string]bool{}
	for _, it := range w.items {
		g := media.PrimaryGenre(it)
		if g == "" || seen[g] {
			continue
		}
		seen[g] = true
		genres = append(genres, g)
	}
	return genres
}

func (w *WatchlistStore) persist(items []media.Item) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode watchlist: %w", err)
	}
	if err := w.store.Set(WatchlistKey, data); err != nil {
		return fmt.Errorf("failed to save watchlist: %w", err)
	}
	return nil
}
