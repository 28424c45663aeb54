package tmdb

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Digital-Shane/marquee/internal/provider"
	"github.com/patrickmn/go-cache"
	"github.com/ryanbradynd05/go-tmdb"
)

const (
	providerName   = "tmdb"
	defaultBaseURL = "https://api.themoviedb.org/3"
)

// Provider talks to The Movie Database. Catalog pages go over plain HTTP so
// status codes and error bodies survive; details go through go-tmdb.
type Provider struct {
	client      TMDBClient
	httpClient  *http.Client
	baseURL     string
	cache       *cache.Cache
	cacheFile   string
	language    string
	apiKey      string
	attempts    uint
	retryDelay  time.Duration
	now         func() time.Time
	rateLimiter *rateLimiter
	config      map[string]interface{}
}

// TMDBClient is the subset of *tmdb.TMDb used for details lookups.
type TMDBClient interface {
	GetMovieInfo(id int, options map[string]string) (*tmdb.Movie, error)
	GetTvInfo(id int, options map[string]string) (*tmdb.TV, error)
}

// New creates an unconfigured TMDB provider.
func New() *Provider {
	return &Provider{
		baseURL:     defaultBaseURL,
		language:    "en-US",
		attempts:    3,
		retryDelay:  250 * time.Millisecond,
		now:         time.Now,
		rateLimiter: newRateLimiter(38, 10*time.Second), // 38 requests per 10 seconds
		config:      make(map[string]interface{}),
	}
}

// Name returns the provider name
func (p *Provider) Name() string {
	return providerName
}

// Configure applies configuration to the provider.
//
// Recognized keys: api_key (required), language, base_url, retries,
// cache_enabled, cache_duration (hours) and cache_dir. When cache_dir is set
// the details cache is loaded from and saved to disk.
func (p *Provider) Configure(config map[string]interface{}) error {
	apiKey, _ := config["api_key"].(string)
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return fmt.Errorf("api_key is required")
	}
	p.apiKey = apiKey
	p.config = config

	if language, ok := config["language"].(string); ok && language != "" {
		p.language = language
	} else {
		p.language = "en-US"
	}

	if baseURL, ok := config["base_url"].(string); ok && baseURL != "" {
		p.baseURL = strings.TrimRight(baseURL, "/")
	}

	if retries, ok := config["retries"].(int); ok && retries > 0 {
		p.attempts = uint(retries)
	}

	// Allow overriding the HTTP client before configuration (useful for tests).
	if p.httpClient == nil {
		p.httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	p.client = tmdb.Init(tmdb.Config{
		APIKey:   p.apiKey,
		Proxies:  nil,
		UseProxy: false,
	})

	cacheEnabled := true
	if enabled, ok := config["cache_enabled"].(bool); ok {
		cacheEnabled = enabled
	}
	if !cacheEnabled {
		p.cache = nil
		return nil
	}

	cacheDuration := 24
	if duration, ok := config["cache_duration"].(int); ok && duration > 0 {
		cacheDuration = duration
	}
	p.cache = cache.New(time.Duration(cacheDuration)*time.Hour, 10*time.Minute)

	if dir, ok := config["cache_dir"].(string); ok && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create cache directory: %w", err)
		}
		p.cacheFile = filepath.Join(dir, "tmdb_details.gob")
		if _, err := os.Stat(p.cacheFile); err == nil {
			_ = p.cache.LoadFile(p.cacheFile)
		}
	}

	return nil
}

// SaveCache persists the details cache to disk
func (p *Provider) SaveCache() error {
	if p.cache != nil && p.cacheFile != "" {
		return p.cache.SaveFile(p.cacheFile)
	}
	return nil
}

// mapError maps go-tmdb errors onto catalog errors. go-tmdb only exposes the
// error text, so the classification is string based.
func (p *Provider) mapError(err error) error {
	if err == nil {
		return nil
	}
	var ce *provider.CatalogError
	if errors.As(err, &ce) {
		return err
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "401") || strings.Contains(errStr, "unauthorized") || strings.Contains(errStr, "invalid api key"):
		return &provider.CatalogError{
			Provider:   providerName,
			Kind:       provider.ErrAPI,
			Code:       "AUTH_FAILED",
			StatusCode: http.StatusUnauthorized,
			Err:        err,
		}
	case strings.Contains(errStr, "404") || strings.Contains(errStr, "could not be found"):
		return &provider.CatalogError{
			Provider:   providerName,
			Kind:       provider.ErrAPI,
			Code:       "NOT_FOUND",
			StatusCode: http.StatusNotFound,
			Err:        err,
		}
	case strings.Contains(errStr, "429") || strings.Contains(errStr, "rate limit"):
		return &provider.CatalogError{
			Provider:   providerName,
			Kind:       provider.ErrAPI,
			Code:       "RATE_LIMITED",
			StatusCode: http.StatusTooManyRequests,
			Retry:      true,
			Err:        err,
		}
	case strings.Contains(errStr, "invalid character") || strings.Contains(errStr, "cannot unmarshal"):
		return &provider.CatalogError{
			Provider: providerName,
			Kind:     provider.ErrMalformed,
			Code:     "MALFORMED",
			Err:      err,
		}
	default:
		return &provider.CatalogError{
			Provider: providerName,
			Kind:     provider.ErrNetwork,
			Code:     "UNKNOWN",
			Retry:    true,
			Err:      err,
		}
	}
}
