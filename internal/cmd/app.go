package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/Digital-Shane/marquee/internal/config"
	"github.com/Digital-Shane/marquee/internal/core"
	"github.com/Digital-Shane/marquee/internal/log"
	"github.com/Digital-Shane/marquee/internal/provider"
	"github.com/Digital-Shane/marquee/internal/provider/omdb"
	"github.com/Digital-Shane/marquee/internal/provider/tmdb"
	"github.com/Digital-Shane/marquee/internal/storage"
)

// app bundles what a command works with.
type app struct {
	catalog   *core.CatalogStore
	details   provider.DetailsProvider
	ratings   provider.RatingProvider
	watchlist *core.WatchlistStore
	closers   []func() error
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func buildApp(cfg *config.Config, needCatalog bool) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	dataPath, err := cfg.DataPath()
	if err != nil {
		return nil, err
	}

	store, closeStore, err := storage.Open(storage.Backend(cfg.StorageBackend), dataPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.StorageBackend, err)
	}
	a := &app{closers: []func() error{closeStore}}

	a.watchlist, err = core.NewWatchlistStore(store)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	if !needCatalog {
		return a, nil
	}

	if err := cfg.RequireTMDBKey(); err != nil {
		_ = a.Close()
		return nil, err
	}
	tp := tmdb.New()
	err = tp.Configure(map[string]interface{}{
		"api_key":        cfg.TMDBAPIKey,
		"language":       cfg.TMDBLanguage,
		"retries":        cfg.RequestRetries,
		"cache_enabled":  cfg.CacheEnabled,
		"cache_duration": cfg.CacheDurationHours,
		"cache_dir":      filepath.Join(dataPath, "cache"),
	})
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to configure TMDB: %w", err)
	}
	a.closers = append(a.closers, tp.SaveCache)
	a.details = tp

	var opts []core.CatalogOption
	if cfg.StaleResponseGuard {
		opts = append(opts, core.WithStaleResponseGuard())
	}
	a.catalog = core.NewCatalogStore(tp, opts...)

	if cfg.EnableOMDB && cfg.OMDBAPIKey != "" {
		op := omdb.New()
		if err := op.Configure(map[string]interface{}{"api_key": cfg.OMDBAPIKey}); err != nil {
			log.Warnf("omdb disabled: %v", err)
		} else {
			a.ratings = op
		}
	}
	return a, nil
}

// open builds the app for the current invocation.
func (s *cliState) open(needCatalog bool) (*app, error) {
	cfg := s.cfg
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return s.newApp(cfg, needCatalog)
}

// catalogFailure logs the full error and returns the user facing one.
func catalogFailure(op string, err error) error {
	log.Warnf("%s: %v", op, err)
	return fmt.Errorf("%s failed: %s", op, provider.UserMessage(err))
}
