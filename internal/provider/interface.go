package provider

import (
	"context"

	"github.com/Digital-Shane/marquee/internal/media"
)

// EndpointKind names one of the catalog listings the client can page through.
type EndpointKind string

const (
	PopularMovies EndpointKind = "popular-movies"
	PopularTV     EndpointKind = "popular-tv"
	NewMovies     EndpointKind = "new-movies"
	NewTV         EndpointKind = "new-tv"
	SearchMulti   EndpointKind = "search-multi"
)

// Kinds lists every endpoint kind in a stable order.
var Kinds = []EndpointKind{PopularMovies, PopularTV, NewMovies, NewTV, SearchMulti}

// DefaultKind returns the media kind implied by the endpoint. Multi search
// carries its own media_type so it has no default.
func (k EndpointKind) DefaultKind() media.Kind {
	switch k {
	case PopularMovies, NewMovies:
		return media.KindMovie
	case PopularTV, NewTV:
		return media.KindTV
	default:
		return ""
	}
}

// Valid reports whether k is a known endpoint kind.
func (k EndpointKind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Request describes a single catalog page fetch.
type Request struct {
	Kind  EndpointKind
	Page  int
	Query string // only used by SearchMulti
}

// Page is one page of catalog results.
type Page struct {
	Results    []media.Item
	Page       int
	TotalPages int
}

// CatalogClient fetches catalog pages. Implementations must be safe for
// concurrent use.
type CatalogClient interface {
	FetchPage(ctx context.Context, req Request) (*Page, error)
}

// Details is the enrichment shown for a single item.
type Details struct {
	ID         int
	Kind       media.Kind
	Title      string
	Tagline    string
	Overview   string
	Runtime    string // minutes, or "?" when unknown
	Genres     []string
	Cast       []string
	Director   string
	Homepage   string
	ImdbID     string
	ImdbRating string
	Year       string
	Seasons    int
}

// DetailsProvider loads secondary details for a movie or show.
type DetailsProvider interface {
	Details(ctx context.Context, id int, kind media.Kind) (*Details, error)
}

// RatingProvider supplies an external rating keyed by IMDb id.
type RatingProvider interface {
	Rating(ctx context.Context, imdbID string) (string, error)
}
