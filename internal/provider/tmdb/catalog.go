package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Digital-Shane/marquee/internal/log"
	"github.com/Digital-Shane/marquee/internal/media"
	"github.com/Digital-Shane/marquee/internal/provider"
	"github.com/avast/retry-go/v4"
)

// newReleaseWindowDays bounds the discover queries for new releases.
const newReleaseWindowDays = 90

// pageResponse is the envelope shared by every list endpoint.
type pageResponse struct {
	Page       int           `json:"page"`
	TotalPages int           `json:"total_pages"`
	Results    *[]media.Item `json:"results"`
}

// FetchPage fetches a single catalog page. Transient failures (network
// errors, 429 and 5xx) are retried with exponential backoff; everything else
// is returned on the first attempt.
func (p *Provider) FetchPage(ctx context.Context, req provider.Request) (*provider.Page, error) {
	if p.apiKey == "" || p.httpClient == nil {
		return nil, fmt.Errorf("provider not configured")
	}
	if !req.Kind.Valid() {
		return nil, fmt.Errorf("unsupported endpoint kind: %q", req.Kind)
	}
	if req.Page < 1 {
		req.Page = 1
	}

	endpoint := p.endpointURL(req)

	attempts := p.attempts
	if attempts == 0 {
		attempts = 1
	}

	page, err := retry.DoWithData(
		func() (*provider.Page, error) {
			if err := p.rateLimiter.wait(ctx); err != nil {
				return nil, networkError(err, false)
			}
			return p.fetchOnce(ctx, endpoint, req.Kind)
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(p.retryDelay),
		retry.MaxDelay(8*p.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(provider.IsRetryable),
		retry.OnRetry(func(n uint, err error) {
			log.Warnf("tmdb %s page %d attempt %d failed: %v", req.Kind, req.Page, n+1, err)
		}),
	)
	if err != nil {
		var ce *provider.CatalogError
		if !errors.As(err, &ce) {
			// Context cancellation surfaces from the retry loop unwrapped.
			return nil, networkError(err, false)
		}
		return nil, err
	}
	return page, nil
}

// endpointURL builds the request URL for req.
func (p *Provider) endpointURL(req provider.Request) string {
	params := url.Values{}
	params.Set("api_key", p.apiKey)
	params.Set("language", p.language)
	params.Set("page", strconv.Itoa(req.Page))

	var path string
	switch req.Kind {
	case provider.PopularMovies:
		path = "/movie/popular"
	case provider.PopularTV:
		path = "/tv/popular"
	case provider.NewMovies:
		path = "/discover/movie"
		from, to := p.releaseWindow()
		params.Set("primary_release_date.gte", from)
		params.Set("primary_release_date.lte", to)
		params.Set("sort_by", "release_date.desc")
	case provider.NewTV:
		path = "/discover/tv"
		from, to := p.releaseWindow()
		params.Set("first_air_date.gte", from)
		params.Set("first_air_date.lte", to)
		params.Set("sort_by", "first_air_date.desc")
	case provider.SearchMulti:
		path = "/search/multi"
		params.Set("query", req.Query)
	}

	return p.baseURL + path + "?" + params.Encode()
}

// releaseWindow returns the inclusive [today-90d, today] range in UTC.
func (p *Provider) releaseWindow() (string, string) {
	today := p.now().UTC()
	from := today.AddDate(0, 0, -newReleaseWindowDays)
	return from.Format("2006-01-02"), today.Format("2006-01-02")
}

func (p *Provider) fetchOnce(ctx context.Context, endpoint string, kind provider.EndpointKind) (*provider.Page, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, networkError(err, false)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, networkError(err, ctx.Err() == nil)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, networkError(err, ctx.Err() == nil)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apiError(resp.StatusCode, body)
	}

	var envelope pageResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, malformedError(err)
	}
	if envelope.Results == nil {
		return nil, malformedError(fmt.Errorf("response has no results"))
	}

	return &provider.Page{
		Results:    normalizeResults(*envelope.Results, kind),
		Page:       envelope.Page,
		TotalPages: envelope.TotalPages,
	}, nil
}

// normalizeResults fills in the media kind implied by the endpoint and drops
// people from multi search results.
func normalizeResults(items []media.Item, kind provider.EndpointKind) []media.Item {
	out := make([]media.Item, 0, len(items))
	for _, item := range items {
		if item.Kind == media.KindPerson {
			continue
		}
		if item.Kind == "" {
			item.Kind = kind.DefaultKind()
		}
		out = append(out, item)
	}
	return out
}

func networkError(err error, retryable bool) *provider.CatalogError {
	return &provider.CatalogError{
		Provider: providerName,
		Kind:     provider.ErrNetwork,
		Code:     "NETWORK",
		Retry:    retryable,
		Err:      err,
	}
}

func malformedError(err error) *provider.CatalogError {
	return &provider.CatalogError{
		Provider: providerName,
		Kind:     provider.ErrMalformed,
		Code:     "MALFORMED",
		Err:      err,
	}
}

func apiError(status int, body []byte) *provider.CatalogError {
	ce := &provider.CatalogError{
		Provider:   providerName,
		Kind:       provider.ErrAPI,
		Code:       apiCode(status),
		StatusCode: status,
		Retry:      status == http.StatusTooManyRequests || status >= 500,
	}
	var payload provider.APIPayload
	if err := json.Unmarshal(body, &payload); err == nil && (payload.StatusMessage != "" || payload.StatusCode != 0) {
		ce.Payload = &payload
	}
	return ce
}

func apiCode(status int) string {
	switch {
	case status == http.StatusUnauthorized:
		return "AUTH_FAILED"
	case status == http.StatusNotFound:
		return "NOT_FOUND"
	case status == http.StatusTooManyRequests:
		return "RATE_LIMITED"
	case status >= 500:
		return "UNAVAILABLE"
	default:
		return "BAD_REQUEST"
	}
}
