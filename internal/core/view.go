package core

import (
	"fmt"
	"strings"

	"github.com/Digital-Shane/marquee/internal/media"
	"github.com/Digital-Shane/marquee/internal/provider"
)

// Route identifies a screen of the browser.
type Route string

const (
	RouteHome           Route = "/"
	RouteTrendingMovies Route = "/trending-movies"
	RouteTrendingShows  Route = "/trending-shows"
	RouteNewMovies      Route = "/new-movies"
	RouteNewShows       Route = "/new-shows"
	RouteSearch         Route = "/search"
	RouteWatchlist      Route = "/watchlist"
)

// Routes lists every known route.
var Routes = []Route{RouteHome, RouteTrendingMovies, RouteTrendingShows, RouteNewMovies, RouteNewShows, RouteSearch, RouteWatchlist}

// ParseRoute accepts a route with or without its leading slash.
func ParseRoute(s string) (Route, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "home" {
		return RouteHome, nil
	}
	if !strings.HasPrefix(s, "/") {
		s = "/" + s
	}
	for _, r := range Routes {
		if Route(s) == r {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown route %q", s)
}

// Category is the browse category selected on the home screen.
type Category string

const (
	CategoryPopular       Category = "popular"
	CategoryTrendingShows Category = "trendingShows"
	CategoryNewMovies     Category = "newMovies"
	CategoryNewShows      Category = "newShows"
)

// Categories in the order the home screen offers them.
var Categories = []Category{CategoryPopular, CategoryTrendingShows, CategoryNewMovies, CategoryNewShows}

var categoryTitles = map[Category]string{
	CategoryPopular:       "TRENDING MOVIES",
	CategoryTrendingShows: "TRENDING TV SHOWS",
	CategoryNewMovies:     "NEW RELEASES - MOVIES",
	CategoryNewShows:      "NEW RELEASES - TV SHOWS",
}

// Title returns the heading used for the category.
func (c Category) Title() string {
	if t, ok := categoryTitles[c]; ok {
		return t
	}
	return strings.ToUpper(string(c))
}

// FetchKind maps a category to the endpoint that fills it.
func FetchKind(c Category) provider.EndpointKind {
	switch c {
	case CategoryTrendingShows:
		return provider.PopularTV
	case CategoryNewMovies:
		return provider.NewMovies
	case CategoryNewShows:
		return provider.NewTV
	default:
		return provider.PopularMovies
	}
}

// CategoryForRoute returns the category a route displays. Routes without a
// fixed category return ok false.
func CategoryForRoute(r Route) (Category, bool) {
	switch r {
	case RouteTrendingMovies:
		return CategoryPopular, true
	case RouteTrendingShows:
		return CategoryTrendingShows, true
	case RouteNewMovies:
		return CategoryNewMovies, true
	case RouteNewShows:
		return CategoryNewShows, true
	}
	return "", false
}

// ViewDescriptor is what the main list should show.
type ViewDescriptor struct {
	Items     []media.Item
	Title     string
	Searching bool
}

// SelectView decides which list to render. The search route with a non-empty
// query shows the active list. Category routes use their own category, every
// other route uses the selected one. Unknown categories fall back to trending
// movies.
func SelectView(route Route, category Category, state CatalogState) ViewDescriptor {
	if route == RouteSearch && state.Searching() {
		return ViewDescriptor{
			Items:     cloneItems(state.Active),
			Title:     fmt.Sprintf("SEARCH RESULTS FOR %q", strings.ToUpper(state.SearchQuery)),
			Searching: true,
		}
	}

	if c, ok := CategoryForRoute(route); ok {
		category = c
	}

	var items []media.Item
	switch category {
	case CategoryTrendingShows:
		items = state.TrendingShows
	case CategoryNewMovies:
		items = state.NewMovies
	case CategoryNewShows:
		items = state.NewShows
	default:
		items = state.TrendingMovies
	}

	title, ok := categoryTitles[category]
	if !ok {
		title = routeTitle(route)
	}
	return ViewDescriptor{Items: cloneItems(items), Title: title}
}

func routeTitle(r Route) string {
	name := strings.Trim(string(r), "/")
	if name == "" {
		return categoryTitles[CategoryPopular]
	}
	return strings.ToUpper(strings.ReplaceAll(name, "-", " "))
}

// Paginate steps current by dir and never returns a page below 1.
func Paginate(current, dir int) int {
	next := current + dir
	if next < 1 {
		return 1
	}
	return next
}
