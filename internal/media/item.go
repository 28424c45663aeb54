package media

import (
	"fmt"
	"strings"
)

// Kind identifies whether a catalog entry is a movie or a TV show.
type Kind string

const (
	KindMovie Kind = "movie"
	KindTV    Kind = "tv"
	// KindPerson only appears in multi-search payloads and is dropped during normalization.
	KindPerson Kind = "person"
)

// Item is a single movie or TV show as returned by the catalog API.
//
// Field names follow the upstream JSON so persisted watchlists round trip
// without a translation layer. Ratings and popularity are pointers because the
// API omits them for some entries and an absent value must not be read as 0.
type Item struct {
	ID            int      `json:"id"`
	Kind          Kind     `json:"media_type,omitempty"`
	Title         string   `json:"title,omitempty"`
	Name          string   `json:"name,omitempty"`
	OriginalTitle string   `json:"original_title,omitempty"`
	OriginalName  string   `json:"original_name,omitempty"`
	PosterPath    string   `json:"poster_path,omitempty"`
	VoteAverage   *float64 `json:"vote_average,omitempty"`
	VoteCount     *int     `json:"vote_count,omitempty"`
	Popularity    *float64 `json:"popularity,omitempty"`
	ReleaseDate   string   `json:"release_date,omitempty"`
	FirstAirDate  string   `json:"first_air_date,omitempty"`
	GenreIDs      []int    `json:"genre_ids,omitempty"`
	Overview      string   `json:"overview,omitempty"`
}

// DisplayTitle returns the first non-empty of title, name, original title and
// original name.
func (i Item) DisplayTitle() string {
	for _, s := range []string{i.Title, i.Name, i.OriginalTitle, i.OriginalName} {
		if s != "" {
			return s
		}
	}
	return ""
}

// SearchTitle is the title used for substring matching. Only the localized
// title and name participate.
func (i Item) SearchTitle() string {
	if i.Title != "" {
		return i.Title
	}
	return i.Name
}

// Date returns the release date for movies or the first air date for shows.
func (i Item) Date() string {
	if i.ReleaseDate != "" {
		return i.ReleaseDate
	}
	return i.FirstAirDate
}

// Year returns the four digit year of Date, or "" when unknown.
func (i Item) Year() string {
	d := i.Date()
	if len(d) < 4 {
		return ""
	}
	return d[:4]
}

// IsTV reports whether the item is a TV show.
func (i Item) IsTV() bool {
	return i.Kind == KindTV
}

// RatingLabel formats the vote average with one decimal or "N/A".
func (i Item) RatingLabel() string {
	if i.VoteAverage == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.1f", *i.VoteAverage)
}

// PopularityLabel formats popularity with one decimal or "N/A".
func (i Item) PopularityLabel() string {
	if i.Popularity == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.1f", *i.Popularity)
}

// Key returns a stable identifier for UI nodes, e.g. "movie-603".
func (i Item) Key() string {
	kind := i.Kind
	if kind == "" {
		kind = KindMovie
	}
	return fmt.Sprintf("%s-%d", kind, i.ID)
}

// MatchesTitle reports whether the search title contains term case-insensitively.
func (i Item) MatchesTitle(term string) bool {
	return strings.Contains(strings.ToLower(i.SearchTitle()), strings.ToLower(term))
}

// Float returns a pointer to v. Handy for building fixtures and decoded values.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }
