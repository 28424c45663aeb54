package core

import (
	"github.com/Digital-Shane/marquee/internal/media"
	"github.com/Digital-Shane/marquee/internal/provider"
)

// Action is a catalog state transition.
type Action interface {
	isAction()
}

// FetchPending marks a request for kind as in flight.
type FetchPending struct {
	Kind provider.EndpointKind
}

// FetchFulfilled applies a successful page for kind.
type FetchFulfilled struct {
	Kind  provider.EndpointKind
	Query string // search query, SearchMulti only
	Page  provider.Page
}

// FetchRejected records a failed request for kind.
type FetchRejected struct {
	Kind    provider.EndpointKind
	Message string
}

// ClearSearch leaves search mode and empties the active list.
type ClearSearch struct{}

// SetCurrentPage sets the page number without fetching anything.
type SetCurrentPage struct {
	Page int
}

func (FetchPending) isAction()   {}
func (FetchFulfilled) isAction() {}
func (FetchRejected) isAction()  {}
func (ClearSearch) isAction()    {}
func (SetCurrentPage) isAction() {}

// Reduce returns the state that results from applying action to state. It
// never mutates its input.
func Reduce(state CatalogState, action Action) CatalogState {
	next := state.clone()

	switch a := action.(type) {
	case FetchPending:
		next.Status = StatusLoading
		next.ListStatus[SlotFor(a.Kind)] = StatusLoading

	case FetchFulfilled:
		slot := SlotFor(a.Kind)
		results := a.Page.Results
		if results == nil {
			results = []media.Item{}
		}

		next.Status = StatusSucceeded
		next.ListStatus[slot] = StatusSucceeded
		delete(next.ListError, slot)
		next.ListPages[slot] = PageInfo{Page: a.Page.Page, TotalPages: a.Page.TotalPages}
		next.setList(slot, results)

		switch a.Kind {
		case provider.SearchMulti:
			next.TotalPages = a.Page.TotalPages
			next.CurrentPage = a.Page.Page
			next.SearchQuery = a.Query
		case provider.PopularMovies:
			if next.SearchQuery == "" {
				next.Active = cloneItems(results)
				next.TotalPages = a.Page.TotalPages
				next.CurrentPage = a.Page.Page
				next.ListPages[SlotActive] = PageInfo{Page: a.Page.Page, TotalPages: a.Page.TotalPages}
				next.ListStatus[SlotActive] = StatusSucceeded
				delete(next.ListError, SlotActive)
			}
		}

	case FetchRejected:
		msg := a.Message
		if msg == "" {
			msg = provider.FallbackMessage
		}
		slot := SlotFor(a.Kind)
		next.Status = StatusFailed
		next.Error = msg
		next.ListStatus[slot] = StatusFailed
		next.ListError[slot] = msg

	case ClearSearch:
		next.SearchQuery = ""
		next.Active = []media.Item{}

	case SetCurrentPage:
		next.CurrentPage = a.Page
	}

	return next
}
