package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/tmdb"
)

const envPrefix = "REEL"

// Config holds all application configuration
type Config struct {
	TMDB    TMDBConfig    `mapstructure:"tmdb"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Sync    SyncConfig    `mapstructure:"sync"`
	UI      UIConfig      `mapstructure:"ui"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// TMDBConfig holds catalog API configuration
type TMDBConfig struct {
	APIKey        string        `mapstructure:"api_key"`
	AccessToken   string        `mapstructure:"access_token"` // v4 read access token, preferred over api_key
	BaseURL       string        `mapstructure:"base_url"`
	ImageBaseURL  string        `mapstructure:"image_base_url"`
	Language      string        `mapstructure:"language"`
	Region        string        `mapstructure:"region"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RatePerSecond float64       `mapstructure:"rate_per_second"`
	Burst         int           `mapstructure:"burst"`
}

// CacheConfig holds local cache configuration
type CacheConfig struct {
	Dir              string        `mapstructure:"dir"`
	StaleAfter       time.Duration `mapstructure:"stale_after"` // Lists younger than this are not refetched
	DetailsCacheSize int           `mapstructure:"details_cache_size"`
}

// SyncConfig holds bulk refresh configuration
type SyncConfig struct {
	Workers int `mapstructure:"workers"`
}

// UIConfig holds UI configuration
type UIConfig struct {
	DefaultMediaType string `mapstructure:"default_media_type"`
	DefaultCategory  string `mapstructure:"default_category"`
	PageSize         int    `mapstructure:"page_size"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File       string `mapstructure:"file"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		TMDB: TMDBConfig{
			BaseURL:       tmdb.DefaultBaseURL,
			ImageBaseURL:  tmdb.DefaultImageBaseURL,
			Language:      "en-US",
			Timeout:       15 * time.Second,
			RatePerSecond: 20,
			Burst:         5,
		},
		Cache: CacheConfig{
			Dir:              defaultCachePath(),
			StaleAfter:       6 * time.Hour,
			DetailsCacheSize: 256,
		},
		Sync: SyncConfig{
			Workers: 4,
		},
		UI: UIConfig{
			DefaultMediaType: string(domain.MediaTypeMovie),
			DefaultCategory:  string(domain.CategoryTrending),
			PageSize:         20,
		},
		Logging: LoggingConfig{
			File:       defaultLogPath(),
			Level:      "INFO",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "reel", "reel.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "reel", "reel.log")
	}
}

// DefaultConfigDir returns the default config directory for the current OS
func DefaultConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "reel")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "reel")
	}
}

// defaultCachePath returns the default cache directory path for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "reel", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "reel", "cache")
	}
}

// newViper returns a viper instance with defaults and REEL_ env overrides registered
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Environment variable overrides, e.g. REEL_TMDB_API_KEY
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Every key needs a default so Unmarshal consults the environment
	for key, value := range settings(DefaultConfig()) {
		v.SetDefault(key, value)
	}
	return v
}

// LoadConfig loads configuration from file and environment. Extra dirs are
// searched before the default config directory.
func LoadConfig(dirs ...string) (*Config, error) {
	cfg := DefaultConfig()
	v := newViper()

	for _, dir := range dirs {
		v.AddConfigPath(dir)
	}
	v.AddConfigPath(DefaultConfigDir())
	v.AddConfigPath(".")

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SaveConfig writes cfg to config.yaml inside dir (the default config dir when empty)
func SaveConfig(cfg *Config, dir string) error {
	if dir == "" {
		dir = DefaultConfigDir()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	// Set fields individually to ensure correct key names (snake_case)
	for key, value := range settings(cfg) {
		v.Set(key, value)
	}

	configFile := filepath.Join(dir, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func settings(cfg *Config) map[string]any {
	return map[string]any{
		"tmdb.api_key":         cfg.TMDB.APIKey,
		"tmdb.access_token":    cfg.TMDB.AccessToken,
		"tmdb.base_url":        cfg.TMDB.BaseURL,
		"tmdb.image_base_url":  cfg.TMDB.ImageBaseURL,
		"tmdb.language":        cfg.TMDB.Language,
		"tmdb.region":          cfg.TMDB.Region,
		"tmdb.timeout":         cfg.TMDB.Timeout.String(),
		"tmdb.rate_per_second": cfg.TMDB.RatePerSecond,
		"tmdb.burst":           cfg.TMDB.Burst,

		"cache.dir":                cfg.Cache.Dir,
		"cache.stale_after":        cfg.Cache.StaleAfter.String(),
		"cache.details_cache_size": cfg.Cache.DetailsCacheSize,

		"sync.workers": cfg.Sync.Workers,

		"ui.default_media_type": cfg.UI.DefaultMediaType,
		"ui.default_category":   cfg.UI.DefaultCategory,
		"ui.page_size":          cfg.UI.PageSize,

		"logging.file":         cfg.Logging.File,
		"logging.level":        cfg.Logging.Level,
		"logging.max_size_mb":  cfg.Logging.MaxSizeMB,
		"logging.max_backups":  cfg.Logging.MaxBackups,
		"logging.max_age_days": cfg.Logging.MaxAgeDays,
	}
}

// Validate checks values that would otherwise fail deep inside a command
func (c *Config) Validate() error {
	mt, err := domain.ParseMediaType(c.UI.DefaultMediaType)
	if err != nil {
		return fmt.Errorf("ui.default_media_type: %w", err)
	}
	if !domain.ValidCategory(mt, domain.Category(c.UI.DefaultCategory)) {
		return fmt.Errorf("ui.default_category: %q is not a %s category", c.UI.DefaultCategory, mt)
	}
	if c.UI.PageSize <= 0 {
		return fmt.Errorf("ui.page_size must be positive")
	}
	return nil
}

// IsConfigured returns true if API credentials are set
func (c *Config) IsConfigured() bool {
	return c.TMDB.APIKey != "" || c.TMDB.AccessToken != ""
}

// DefaultMediaType returns the parsed default media type
func (c *Config) DefaultMediaType() domain.MediaType {
	mt, err := domain.ParseMediaType(c.UI.DefaultMediaType)
	if err != nil {
		return domain.MediaTypeMovie
	}
	return mt
}

// CachePath returns the SQLite cache file path
func (c *Config) CachePath() string {
	return filepath.Join(expandHome(c.Cache.Dir), "reel.db")
}

// PrefsDir returns the directory of the preferences store
func (c *Config) PrefsDir() string {
	return expandHome(c.Cache.Dir)
}

// ClientOptions returns the tmdb client options for this configuration
func (c *Config) ClientOptions() tmdb.Options {
	return tmdb.Options{
		BaseURL:       c.TMDB.BaseURL,
		APIKey:        c.TMDB.APIKey,
		AccessToken:   c.TMDB.AccessToken,
		Language:      c.TMDB.Language,
		Region:        c.TMDB.Region,
		Timeout:       c.TMDB.Timeout,
		RatePerSecond: c.TMDB.RatePerSecond,
		Burst:         c.TMDB.Burst,
	}
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
