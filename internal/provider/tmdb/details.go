package tmdb

import (
	"context"
	"encoding/gob"
	"fmt"

	"github.com/Digital-Shane/marquee/internal/media"
	"github.com/Digital-Shane/marquee/internal/provider"
	"github.com/avast/retry-go/v4"
	"github.com/patrickmn/go-cache"
	"github.com/ryanbradynd05/go-tmdb"
)

// maxCast caps the number of cast members kept on Details.
const maxCast = 8

func init() {
	// The details cache is saved with gob.
	gob.Register(&provider.Details{})
}

// Details fetches runtime, credits, genres and links for a movie or show.
// Results are memoized per id, kind and language.
func (p *Provider) Details(ctx context.Context, id int, kind media.Kind) (*provider.Details, error) {
	if p.client == nil {
		return nil, fmt.Errorf("provider not configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("%s:%d:%s", kind, id, p.language)
	if p.cache != nil {
		if cached, found := p.cache.Get(cacheKey); found {
			if details, ok := cached.(*provider.Details); ok {
				return details, nil
			}
		}
	}

	details, err := retry.DoWithData(
		func() (*provider.Details, error) {
			if err := p.rateLimiter.wait(ctx); err != nil {
				return nil, networkError(err, false)
			}
			return p.fetchDetails(id, kind)
		},
		retry.Context(ctx),
		retry.Attempts(max(p.attempts, 1)),
		retry.Delay(p.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(provider.IsRetryable),
	)
	if err != nil {
		return nil, p.mapError(err)
	}

	if p.cache != nil {
		p.cache.Set(cacheKey, details, cache.DefaultExpiration)
	}
	return details, nil
}

func (p *Provider) fetchDetails(id int, kind media.Kind) (*provider.Details, error) {
	if kind == media.KindTV {
		options := map[string]string{
			"language":           p.language,
			"append_to_response": "credits,external_ids",
		}
		show, err := p.client.GetTvInfo(id, options)
		if err != nil {
			return nil, p.mapError(err)
		}
		if show == nil {
			return nil, malformedError(fmt.Errorf("empty tv response for %d", id))
		}
		return tvToDetails(show), nil
	}

	options := map[string]string{
		"language":           p.language,
		"append_to_response": "credits",
	}
	movie, err := p.client.GetMovieInfo(id, options)
	if err != nil {
		return nil, p.mapError(err)
	}
	if movie == nil {
		return nil, malformedError(fmt.Errorf("empty movie response for %d", id))
	}
	return movieToDetails(movie), nil
}

func movieToDetails(movie *tmdb.Movie) *provider.Details {
	d := &provider.Details{
		ID:       movie.ID,
		Kind:     media.KindMovie,
		Title:    movie.Title,
		Tagline:  movie.Tagline,
		Overview: movie.Overview,
		Runtime:  "?",
		Homepage: movie.Homepage,
		ImdbID:   movie.ImdbID,
	}
	if len(movie.ReleaseDate) >= 4 {
		d.Year = movie.ReleaseDate[:4]
	}
	if movie.Runtime > 0 {
		d.Runtime = fmt.Sprint(movie.Runtime)
	}
	for _, g := range movie.Genres {
		d.Genres = append(d.Genres, g.Name)
	}
	if movie.Credits != nil {
		for _, c := range movie.Credits.Cast {
			if len(d.Cast) == maxCast {
				break
			}
			d.Cast = append(d.Cast, c.Name)
		}
		for _, c := range movie.Credits.Crew {
			if c.Job == "Director" {
				d.Director = c.Name
				break
			}
		}
	}
	return d
}

func tvToDetails(show *tmdb.TV) *provider.Details {
	d := &provider.Details{
		ID:       show.ID,
		Kind:     media.KindTV,
		Title:    show.Name,
		Overview: show.Overview,
		Runtime:  "?",
		Homepage: show.Homepage,
		Seasons:  int(show.NumberOfSeasons),
	}
	if len(show.FirstAirDate) >= 4 {
		d.Year = show.FirstAirDate[:4]
	}
	if len(show.EpisodeRunTime) > 0 && show.EpisodeRunTime[0] > 0 {
		d.Runtime = fmt.Sprint(show.EpisodeRunTime[0])
	}
	for _, g := range show.Genres {
		d.Genres = append(d.Genres, g.Name)
	}
	if show.ExternalIDs != nil {
		d.ImdbID = show.ExternalIDs.ImdbID
	}
	if show.Credits != nil {
		for _, c := range show.Credits.Cast {
			if len(d.Cast) == maxCast {
				break
			}
			d.Cast = append(d.Cast, c.Name)
		}
		for _, c := range show.Credits.Crew {
			if c.Job == "Director" {
				d.Director = c.Name
				break
			}
		}
	}
	return d
}
