package omdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Digital-Shane/marquee/internal/provider"
	"github.com/Digital-Shane/omdb"
)

const providerName = "omdb"

// Provider looks up IMDb ratings through the OMDb API.
type Provider struct {
	client     *omdb.Client
	httpClient *http.Client
	apiKey     string
	config     map[string]interface{}
}

// New creates a new OMDb provider instance.
func New() *Provider {
	return &Provider{config: make(map[string]interface{})}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return providerName
}

// Configure applies configuration to the provider.
func (p *Provider) Configure(config map[string]interface{}) error {
	apiKeyRaw, ok := config["api_key"].(string)
	if !ok {
		return fmt.Errorf("api_key is required")
	}

	apiKey := strings.TrimSpace(apiKeyRaw)
	if apiKey == "" {
		return fmt.Errorf("api_key is required")
	}

	// Allow overriding the HTTP client before configuration (useful for tests).
	if p.httpClient == nil {
		p.httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	p.apiKey = apiKey
	p.config = config
	p.client = omdb.NewClient(p.apiKey, p.httpClient)

	return nil
}

// Rating returns the IMDb rating for imdbID formatted with one decimal.
func (p *Provider) Rating(ctx context.Context, imdbID string) (string, error) {
	if p.client == nil || p.apiKey == "" {
		return "", fmt.Errorf("provider not configured")
	}
	imdbID = strings.TrimSpace(imdbID)
	if imdbID == "" {
		return "", &provider.CatalogError{
			Provider: providerName,
			Kind:     provider.ErrAPI,
			Code:     "INVALID_REQUEST",
			Err:      errors.New("rating lookup requires an IMDb ID"),
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	result, err := p.client.SearchByImdbID(omdb.QueryData{ImdbID: imdbID})
	if err != nil {
		return "", p.mapError(err)
	}

	var raw string
	switch r := result.(type) {
	case omdb.MovieResult:
		raw = r.ImdbRating
	case *omdb.MovieResult:
		raw = r.ImdbRating
	case omdb.SeriesResult:
		raw = r.ImdbRating
	case *omdb.SeriesResult:
		raw = r.ImdbRating
	default:
		return "", &provider.CatalogError{
			Provider: providerName,
			Kind:     provider.ErrAPI,
			Code:     "NOT_FOUND",
			Err:      fmt.Errorf("no title for %s", imdbID),
		}
	}

	rating := omdb.ParseRating(raw)
	if rating <= 0 {
		return "N/A", nil
	}
	return fmt.Sprintf("%.1f", rating), nil
}

func (p *Provider) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	lower := strings.ToLower(err.Error())
	ce := &provider.CatalogError{Provider: providerName, Kind: provider.ErrAPI, Err: err}

	switch {
	case strings.Contains(lower, "invalid api key"), strings.Contains(lower, "missing omdb api key"):
		ce.Code = "AUTH_FAILED"
	case strings.Contains(lower, "not found"):
		ce.Code = "NOT_FOUND"
	case strings.Contains(lower, "limit reached"), strings.Contains(lower, "too many requests"):
		ce.Code = "RATE_LIMITED"
		ce.Retry = true
	default:
		ce.Kind = provider.ErrNetwork
		ce.Code = "UNKNOWN"
	}
	return ce
}
