package tmdb

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Digital-Shane/marquee/internal/media"
	"github.com/Digital-Shane/marquee/internal/provider"
	"github.com/google/go-cmp/cmp"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	resp := &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
	resp.Header.Set("Content-Type", "application/json")
	return resp
}

func newTestProvider(t *testing.T, fn roundTripFunc) *Provider {
	t.Helper()
	prov := New()
	prov.httpClient = &http.Client{Transport: fn}
	prov.now = func() time.Time { return time.Date(2024, time.May, 31, 23, 0, 0, 0, time.UTC) }
	if err := prov.Configure(map[string]interface{}{"api_key": "k3y", "cache_enabled": false}); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	prov.retryDelay = time.Millisecond
	return prov
}

func TestConfigureRequiresAPIKey(t *testing.T) {
	prov := New()
	if err := prov.Configure(map[string]interface{}{"api_key": "  "}); err == nil {
		t.Fatal("expected error when api_key is blank")
	}
}

func TestFetchPageBuildsEndpointURLs(t *testing.T) {
	tests := []struct {
		name     string
		req      provider.Request
		wantPath string
		want     map[string]string
	}{
		{
			name:     "popular movies",
			req:      provider.Request{Kind: provider.PopularMovies, Page: 2},
			wantPath: "/3/movie/popular",
			want:     map[string]string{"api_key": "k3y", "page": "2", "language": "en-US"},
		},
		{
			name:     "popular tv",
			req:      provider.Request{Kind: provider.PopularTV, Page: 1},
			wantPath: "/3/tv/popular",
			want:     map[string]string{"page": "1"},
		},
		{
			name:     "new movies",
			req:      provider.Request{Kind: provider.NewMovies, Page: 3},
			wantPath: "/3/discover/movie",
			want: map[string]string{
				"primary_release_date.gte": "2024-03-02",
				"primary_release_date.lte": "2024-05-31",
				"sort_by":                  "release_date.desc",
				"page":                     "3",
			},
		},
		{
			name:     "new tv",
			req:      provider.Request{Kind: provider.NewTV, Page: 1},
			wantPath: "/3/discover/tv",
			want: map[string]string{
				"first_air_date.gte": "2024-03-02",
				"first_air_date.lte": "2024-05-31",
				"sort_by":            "first_air_date.desc",
			},
		},
		{
			name:     "search escapes query",
			req:      provider.Request{Kind: provider.SearchMulti, Page: 1, Query: "fast & furious"},
			wantPath: "/3/search/multi",
			want:     map[string]string{"query": "fast & furious"},
		},
		{
			name:     "page below one is normalized",
			req:      provider.Request{Kind: provider.PopularMovies, Page: 0},
			wantPath: "/3/movie/popular",
			want:     map[string]string{"page": "1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *url.URL
			prov := newTestProvider(t, func(req *http.Request) (*http.Response, error) {
				got = req.URL
				return jsonResponse(200, `{"page":1,"total_pages":1,"results":[]}`), nil
			})

			if _, err := prov.FetchPage(context.Background(), tt.req); err != nil {
				t.Fatalf("FetchPage() error = %v", err)
			}
			if got.Path != tt.wantPath {
				t.Errorf("path = %q, want %q", got.Path, tt.wantPath)
			}
			q := got.Query()
			for k, v := range tt.want {
				if q.Get(k) != v {
					t.Errorf("query[%s] = %q, want %q", k, q.Get(k), v)
				}
			}
		})
	}
}

func TestFetchPageEmptySearchQueryIsForwarded(t *testing.T) {
	var raw string
	prov := newTestProvider(t, func(req *http.Request) (*http.Response, error) {
		raw = req.URL.RawQuery
		return jsonResponse(200, `{"page":1,"total_pages":0,"results":[]}`), nil
	})

	if _, err := prov.FetchPage(context.Background(), provider.Request{Kind: provider.SearchMulti, Page: 1}); err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}
	if !strings.Contains(raw, "query=") {
		t.Errorf("raw query %q does not carry an empty query parameter", raw)
	}
}

func TestFetchPageDecodesResults(t *testing.T) {
	prov := newTestProvider(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{
			"page": 1,
			"total_pages": 10,
			"results": [
				{"id": 1, "title": "Dune", "vote_average": 8.1, "genre_ids": [878]},
				{"id": 2, "media_type": "person", "name": "Someone"},
				{"id": 3, "media_type": "tv", "name": "Shogun"}
			]
		}`), nil
	})

	page, err := prov.FetchPage(context.Background(), provider.Request{Kind: provider.PopularMovies, Page: 1})
	if err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}

	want := &provider.Page{
		Page:       1,
		TotalPages: 10,
		Results: []media.Item{
			{ID: 1, Kind: media.KindMovie, Title: "Dune", VoteAverage: media.Float(8.1), GenreIDs: []int{878}},
			{ID: 3, Kind: media.KindTV, Name: "Shogun"},
		},
	}
	if diff := cmp.Diff(want, page); diff != "" {
		t.Errorf("FetchPage() mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchPageErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		transportErr error
		wantKind     provider.ErrorKind
		wantMessage  string
		wantCalls    int32
	}{
		{
			name:        "api error keeps payload",
			status:      401,
			body:        `{"status_code":7,"status_message":"Invalid API key: You must be granted a valid key.","success":false}`,
			wantKind:    provider.ErrAPI,
			wantMessage: "Invalid API key: You must be granted a valid key.",
			wantCalls:   1,
		},
		{
			name:        "api error without body falls back",
			status:      404,
			body:        `not json`,
			wantKind:    provider.ErrAPI,
			wantMessage: provider.FallbackMessage,
			wantCalls:   1,
		},
		{
			name:        "server errors are retried",
			status:      503,
			body:        `{"status_code":11,"status_message":"Internal error"}`,
			wantKind:    provider.ErrAPI,
			wantMessage: "Internal error",
			wantCalls:   3,
		},
		{
			name:        "malformed body",
			status:      200,
			body:        `[1,2,3]`,
			wantKind:    provider.ErrMalformed,
			wantMessage: provider.FallbackMessage,
			wantCalls:   1,
		},
		{
			name:        "missing results",
			status:      200,
			body:        `{"page":1}`,
			wantKind:    provider.ErrMalformed,
			wantMessage: provider.FallbackMessage,
			wantCalls:   1,
		},
		{
			name:         "network failure is retried",
			transportErr: errors.New("connection reset by peer"),
			wantKind:     provider.ErrNetwork,
			wantMessage:  provider.FallbackMessage,
			wantCalls:    3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			prov := newTestProvider(t, func(req *http.Request) (*http.Response, error) {
				calls.Add(1)
				if tt.transportErr != nil {
					return nil, tt.transportErr
				}
				return jsonResponse(tt.status, tt.body), nil
			})

			_, err := prov.FetchPage(context.Background(), provider.Request{Kind: provider.PopularMovies, Page: 1})
			var ce *provider.CatalogError
			if !errors.As(err, &ce) {
				t.Fatalf("FetchPage() error = %v, want *provider.CatalogError", err)
			}
			if ce.Kind != tt.wantKind {
				t.Errorf("Kind = %s, want %s", ce.Kind, tt.wantKind)
			}
			if got := provider.UserMessage(err); got != tt.wantMessage {
				t.Errorf("UserMessage() = %q, want %q", got, tt.wantMessage)
			}
			if got := calls.Load(); got != tt.wantCalls {
				t.Errorf("round trips = %d, want %d", got, tt.wantCalls)
			}
		})
	}
}

func TestFetchPageRecoversAfterTransientFailure(t *testing.T) {
	var calls atomic.Int32
	prov := newTestProvider(t, func(req *http.Request) (*http.Response, error) {
		if calls.Add(1) == 1 {
			return jsonResponse(429, `{"status_code":25,"status_message":"Request count over limit"}`), nil
		}
		return jsonResponse(200, `{"page":1,"total_pages":2,"results":[{"id":9,"title":"Alien"}]}`), nil
	})

	page, err := prov.FetchPage(context.Background(), provider.Request{Kind: provider.PopularMovies, Page: 1})
	if err != nil {
		t.Fatalf("FetchPage() error = %v", err)
	}
	if len(page.Results) != 1 || page.TotalPages != 2 {
		t.Errorf("FetchPage() = %+v, want one result and two pages", page)
	}
	if calls.Load() != 2 {
		t.Errorf("round trips = %d, want 2", calls.Load())
	}
}

func TestFetchPageCanceledContext(t *testing.T) {
	prov := newTestProvider(t, func(req *http.Request) (*http.Response, error) {
		return nil, req.Context().Err()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := prov.FetchPage(ctx, provider.Request{Kind: provider.PopularTV, Page: 1})
	var ce *provider.CatalogError
	if !errors.As(err, &ce) || ce.Kind != provider.ErrNetwork {
		t.Fatalf("FetchPage() error = %v, want network CatalogError", err)
	}
}

func TestFetchPageRequiresConfiguration(t *testing.T) {
	if _, err := New().FetchPage(context.Background(), provider.Request{Kind: provider.PopularMovies}); err == nil {
		t.Fatal("expected error from unconfigured provider")
	}
}

func TestRateLimiterReserve(t *testing.T) {
	rl := newRateLimiter(2, time.Second)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	if d := rl.reserve(now); d != 0 {
		t.Errorf("first reserve delay = %v, want 0", d)
	}
	if d := rl.reserve(now.Add(100 * time.Millisecond)); d != 0 {
		t.Errorf("second reserve delay = %v, want 0", d)
	}
	if d := rl.reserve(now.Add(200 * time.Millisecond)); d != 810*time.Millisecond {
		t.Errorf("third reserve delay = %v, want 810ms", d)
	}
	if d := rl.reserve(now.Add(1100 * time.Millisecond)); d != 0 {
		t.Errorf("reserve after window delay = %v, want 0", d)
	}
}

func TestRateLimiterWaitHonorsContext(t *testing.T) {
	rl := newRateLimiter(1, time.Hour)
	if err := rl.wait(context.Background()); err != nil {
		t.Fatalf("wait() error = %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := rl.wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("wait() error = %v, want deadline exceeded", err)
	}
}
