package core

import (
	"github.com/Digital-Shane/marquee/internal/media"
	"github.com/Digital-Shane/marquee/internal/provider"
)

// Status is the lifecycle of the most recent request.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Slot names one of the lists held by the catalog.
type Slot string

const (
	SlotTrendingMovies Slot = "trendingMovies"
	SlotTrendingShows  Slot = "trendingShows"
	SlotNewMovies      Slot = "newMovies"
	SlotNewShows       Slot = "newShows"
	// SlotActive holds search results, or popular movies when not searching.
	SlotActive Slot = "active"
)

// Slots lists every slot in display order.
var Slots = []Slot{SlotTrendingMovies, SlotTrendingShows, SlotNewMovies, SlotNewShows, SlotActive}

// SlotFor returns the list a fetch of kind lands in.
func SlotFor(kind provider.EndpointKind) Slot {
	switch kind {
	case provider.PopularMovies:
		return SlotTrendingMovies
	case provider.PopularTV:
		return SlotTrendingShows
	case provider.NewMovies:
		return SlotNewMovies
	case provider.NewTV:
		return SlotNewShows
	default:
		return SlotActive
	}
}

// PageInfo is the pagination reported by the last successful fetch of a slot.
type PageInfo struct {
	Page       int
	TotalPages int
}

// CatalogState is the catalog snapshot rendered by the UI.
//
// Status and Error are shared by every request: the last request to settle
// wins. ListStatus, ListError and ListPages track each slot independently.
type CatalogState struct {
	TrendingMovies []media.Item
	TrendingShows  []media.Item
	NewMovies      []media.Item
	NewShows       []media.Item
	Active         []media.Item

	Status      Status
	Error       string
	CurrentPage int
	TotalPages  int
	SearchQuery string

	ListStatus map[Slot]Status
	ListError  map[Slot]string
	ListPages  map[Slot]PageInfo
}

// InitialCatalogState returns the empty, idle state.
func InitialCatalogState() CatalogState {
	return CatalogState{
		Status:      StatusIdle,
		CurrentPage: 1,
		ListStatus:  map[Slot]Status{},
		ListError:   map[Slot]string{},
		ListPages:   map[Slot]PageInfo{},
	}
}

// Searching reports whether the active list holds search results.
func (s CatalogState) Searching() bool {
	return s.SearchQuery != ""
}

// List returns the items held in slot.
func (s CatalogState) List(slot Slot) []media.Item {
	switch slot {
	case SlotTrendingMovies:
		return s.TrendingMovies
	case SlotTrendingShows:
		return s.TrendingShows
	case SlotNewMovies:
		return s.NewMovies
	case SlotNewShows:
		return s.NewShows
	default:
		return s.Active
	}
}

// SlotStatus returns the status of slot, idle when it was never fetched.
func (s CatalogState) SlotStatus(slot Slot) Status {
	if st, ok := s.ListStatus[slot]; ok {
		return st
	}
	return StatusIdle
}

// clone copies the state deeply enough that callers can't mutate the store.
func (s CatalogState) clone() CatalogState {
	c := s
	c.TrendingMovies = cloneItems(s.TrendingMovies)
	c.TrendingShows = cloneItems(s.TrendingShows)
	c.NewMovies = cloneItems(s.NewMovies)
	c.NewShows = cloneItems(s.NewShows)
	c.Active = cloneItems(s.Active)
	c.ListStatus = make(map[Slot]Status, len(s.ListStatus))
	for k, v := range s.ListStatus {
		c.ListStatus[k] = v
	}
	c.ListError = make(map[Slot]string, len(s.ListError))
	for k, v := range s.ListError {
		c.ListError[k] = v
	}
	c.ListPages = make(map[Slot]PageInfo, len(s.ListPages))
	for k, v := range s.ListPages {
		c.ListPages[k] = v
	}
	return c
}

func (s *CatalogState) setList(slot Slot, items []media.Item) {
	switch slot {
	case SlotTrendingMovies:
		s.TrendingMovies = items
	case SlotTrendingShows:
		s.TrendingShows = items
	case SlotNewMovies:
		s.NewMovies = items
	case SlotNewShows:
		s.NewShows = items
	default:
		s.Active = items
	}
}

func cloneItems(items []media.Item) []media.Item {
	if items == nil {
		return nil
	}
	out := make([]media.Item, len(items))
	copy(out, items)
	return out
}
