package browse

import (
	"context"
	"time"

	"github.com/Digital-Shane/marquee/internal/core"
	"github.com/Digital-Shane/marquee/internal/media"
	"github.com/Digital-Shane/marquee/internal/provider"
	tea "github.com/charmbracelet/bubbletea"
)

// suggestDelay debounces suggestion lookups while typing.
const suggestDelay = 150 * time.Millisecond

// fetchDoneMsg reports the end of a catalog request.
type fetchDoneMsg struct{ err error }

// storeChangedMsg is sent whenever the catalog state changes.
type storeChangedMsg struct{}

// suggestMsg asks for suggestions for query once typing pauses.
type suggestMsg struct{ query string }

type detailsMsg struct {
	key     string
	details *provider.Details
	err     error
}

type ratingMsg struct {
	key    string
	rating string
	err    error
}

func loadHomeCmd(ctx context.Context, catalog *core.CatalogStore) tea.Cmd {
	return func() tea.Msg {
		return fetchDoneMsg{err: catalog.LoadHome(ctx)}
	}
}

func fetchCmd(ctx context.Context, catalog *core.CatalogStore, kind provider.EndpointKind, page int) tea.Cmd {
	return func() tea.Msg {
		return fetchDoneMsg{err: catalog.FetchCategory(ctx, kind, page)}
	}
}

func searchCmd(ctx context.Context, catalog *core.CatalogStore, query string, page int) tea.Cmd {
	return func() tea.Msg {
		return fetchDoneMsg{err: catalog.Search(ctx, query, page)}
	}
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return storeChangedMsg{}
	}
}

func detailsCmd(ctx context.Context, p provider.DetailsProvider, item media.Item) tea.Cmd {
	kind := item.Kind
	if kind == "" {
		kind = media.KindMovie
	}
	key := item.Key()
	return func() tea.Msg {
		d, err := p.Details(ctx, item.ID, kind)
		return detailsMsg{key: key, details: d, err: err}
	}
}

func ratingCmd(ctx context.Context, p provider.RatingProvider, key, imdbID string) tea.Cmd {
	return func() tea.Msg {
		r, err := p.Rating(ctx, imdbID)
		return ratingMsg{key: key, rating: r, err: err}
	}
}
