package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/Digital-Shane/marquee/internal/storage"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingAPIKey is returned when a catalog command runs without a TMDB key.
var ErrMissingAPIKey = errors.New("TMDB API key is not set (run `marquee config set tmdb_api_key <key>` or export MARQUEE_TMDB_API_KEY)")

// Config holds user settings persisted in ~/.marquee/config.json.
type Config struct {
	TMDBAPIKey   string `json:"tmdb_api_key"`
	TMDBLanguage string `json:"tmdb_language"`
	OMDBAPIKey   string `json:"omdb_api_key"`
	EnableOMDB   bool   `json:"enable_omdb"`

	// DataDir is where the watchlist and caches live. Empty means the
	// data directory next to the config file.
	DataDir            string `json:"data_dir"`
	StorageBackend     string `json:"storage_backend"`
	CacheEnabled       bool   `json:"cache_enabled"`
	CacheDurationHours int    `json:"cache_duration_hours"`
	RequestRetries     int    `json:"request_retries"`
	StaleResponseGuard bool   `json:"stale_response_guard"`

	EnableLogging    bool `json:"enable_logging"`
	LogRetentionDays int  `json:"log_retention_days"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		TMDBLanguage:       "en-US",
		StorageBackend:     string(storage.BackendDisk),
		CacheEnabled:       true,
		CacheDurationHours: 24,
		RequestRetries:     3,
		EnableLogging:      true,
		LogRetentionDays:   30,
	}
}

// Dir returns the marquee home directory. MARQUEE_HOME overrides the default
// ~/.marquee.
func Dir() (string, error) {
	if dir := os.Getenv("MARQUEE_HOME"); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".marquee"), nil
}

// ConfigPath returns the path to the config file
func ConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LogDir returns the directory session journals and diagnostics go to.
func LogDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "logs"), nil
}

// DataPath resolves DataDir, expanding a leading ~.
func (cfg *Config) DataPath() (string, error) {
	if cfg.DataDir == "" {
		dir, err := Dir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "data"), nil
	}
	if cfg.DataDir == "~" || strings.HasPrefix(cfg.DataDir, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(homeDir, strings.TrimPrefix(cfg.DataDir, "~")), nil
	}
	return cfg.DataDir, nil
}

// Load reads the configuration from disk. Missing files yield the defaults
// and missing fields keep their default values.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	defaults := DefaultConfig()
	if cfg.TMDBLanguage == "" {
		cfg.TMDBLanguage = defaults.TMDBLanguage
	}
	if cfg.StorageBackend == "" {
		cfg.StorageBackend = defaults.StorageBackend
	}

	return cfg, nil
}

// LoadWithEnv loads the config file and applies environment overrides.
func LoadWithEnv() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// ApplyEnv overrides file settings from the environment. A .env file in the
// working directory is loaded first; variables already set win over it.
func (cfg *Config) ApplyEnv() {
	// Missing .env is the common case.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("MARQUEE")
	v.AutomaticEnv()

	if key := v.GetString("tmdb_api_key"); key != "" {
		cfg.TMDBAPIKey = key
	} else if cfg.TMDBAPIKey == "" {
		cfg.TMDBAPIKey = os.Getenv("TMDB_API_KEY")
	}
	if lang := v.GetString("tmdb_language"); lang != "" {
		cfg.TMDBLanguage = lang
	}
	if key := v.GetString("omdb_api_key"); key != "" {
		cfg.OMDBAPIKey = key
	}
	if dir := v.GetString("data_dir"); dir != "" {
		cfg.DataDir = dir
	}
	if backend := v.GetString("storage_backend"); backend != "" {
		cfg.StorageBackend = backend
	}
}

// Validate checks settings that would break the stores at startup.
func (cfg *Config) Validate() error {
	switch storage.Backend(cfg.StorageBackend) {
	case storage.BackendDisk, storage.BackendSQLite, storage.BackendMemory:
	default:
		return fmt.Errorf("unknown storage_backend %q (want disk, sqlite or memory)", cfg.StorageBackend)
	}
	if cfg.RequestRetries < 1 {
		return fmt.Errorf("request_retries must be at least 1, got %d", cfg.RequestRetries)
	}
	if cfg.CacheDurationHours < 1 {
		return fmt.Errorf("cache_duration_hours must be at least 1, got %d", cfg.CacheDurationHours)
	}
	return nil
}

// RequireTMDBKey fails when no TMDB key is configured.
func (cfg *Config) RequireTMDBKey() error {
	if strings.TrimSpace(cfg.TMDBAPIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// Save writes the configuration to disk
func (cfg *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The file holds API keys.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

type field struct {
	get func(*Config) string
	set func(*Config, string) error
}

func stringField(p func(*Config) *string) field {
	return field{
		get: func(c *Config) string { return *p(c) },
		set: func(c *Config, v string) error { *p(c) = v; return nil },
	}
}

func boolField(p func(*Config) *bool) field {
	return field{
		get: func(c *Config) string { return strconv.FormatBool(*p(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("expected true or false, got %q", v)
			}
			*p(c) = b
			return nil
		},
	}
}

func intField(p func(*Config) *int) field {
	return field{
		get: func(c *Config) string { return strconv.Itoa(*p(c)) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("expected a number, got %q", v)
			}
			*p(c) = n
			return nil
		},
	}
}

var fields = map[string]field{
	"tmdb_api_key":         stringField(func(c *Config) *string { return &c.TMDBAPIKey }),
	"tmdb_language":        stringField(func(c *Config) *string { return &c.TMDBLanguage }),
	"omdb_api_key":         stringField(func(c *Config) *string { return &c.OMDBAPIKey }),
	"enable_omdb":          boolField(func(c *Config) *bool { return &c.EnableOMDB }),
	"data_dir":             stringField(func(c *Config) *string { return &c.DataDir }),
	"storage_backend":      stringField(func(c *Config) *string { return &c.StorageBackend }),
	"cache_enabled":        boolField(func(c *Config) *bool { return &c.CacheEnabled }),
	"cache_duration_hours": intField(func(c *Config) *int { return &c.CacheDurationHours }),
	"request_retries":      intField(func(c *Config) *int { return &c.RequestRetries }),
	"stale_response_guard": boolField(func(c *Config) *bool { return &c.StaleResponseGuard }),
	"enable_logging":       boolField(func(c *Config) *bool { return &c.EnableLogging }),
	"log_retention_days":   intField(func(c *Config) *int { return &c.LogRetentionDays }),
}

// Keys lists every settable key in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the string form of key.
func (cfg *Config) Get(key string) (string, error) {
	f, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("unknown config key %q", key)
	}
	return f.get(cfg), nil
}

// Set parses value into key and validates the result.
func (cfg *Config) Set(key, value string) error {
	f, ok := fields[key]
	if !ok {
		return fmt.Errorf("unknown config key %q", key)
	}
	next := *cfg
	if err := f.set(&next, value); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*cfg = next
	return nil
}
