// Package config loads runtime settings from file, environment, and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Configuration validation errors.
var (
	ErrInvalidTimeout   = errors.New("request_timeout must be positive")
	ErrInvalidLogLevel  = errors.New("log_level must be one of: debug, info, warn, error")
	ErrMissingListen    = errors.New("listen_addr is required")
	ErrMissingOutputDir = errors.New("output_dir is required")
)

// Config holds every runtime setting for the fetcher and the archive server.
type Config struct {
	// APIKey authenticates NewsAPI requests. When empty the NewsAPI
	// source is skipped and the open sources still run.
	APIKey string `mapstructure:"api_key"`

	// ListenAddr is the bind address for the archive web server.
	ListenAddr string `mapstructure:"listen_addr"`

	// OutputDir is where CSV artifacts are written.
	OutputDir string `mapstructure:"output_dir"`

	// ArchiveDB is the bbolt file recording pipeline runs. Empty disables
	// the run journal.
	ArchiveDB string `mapstructure:"archive_db"`

	// PublishersFile points at the YAML publisher registry. Empty disables
	// publishing.
	PublishersFile string `mapstructure:"publishers_file"`

	// RefreshSchedule is a cron expression for regenerating the archive
	// CSV in the background. Empty disables scheduled refreshes.
	RefreshSchedule string `mapstructure:"refresh_schedule"`

	// EnrichDescriptions turns on the article page scraper that fills
	// missing descriptions from og: metadata.
	EnrichDescriptions bool `mapstructure:"enrich_descriptions"`

	LogLevel       string        `mapstructure:"log_level"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// Load reads configuration from the optional file path, the PAPERBOY_*
// environment, and built-in defaults, in that order of precedence.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("output_dir", ".")
	v.SetDefault("archive_db", "paperboy.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("request_timeout", 15*time.Second)
	v.SetDefault("enrich_descriptions", false)

	v.SetEnvPrefix("PAPERBOY")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	if err := v.BindEnv("api_key", "PAPERBOY_API_KEY", "NEWS_API_KEY"); err != nil {
		return nil, fmt.Errorf("bind api_key env: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %q: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the loaded settings for internal consistency.
func (c *Config) Validate() error {
	if c.RequestTimeout <= 0 {
		return ErrInvalidTimeout
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}

	if strings.TrimSpace(c.ListenAddr) == "" {
		return ErrMissingListen
	}

	if strings.TrimSpace(c.OutputDir) == "" {
		return ErrMissingOutputDir
	}
	return nil
}

// Keyed reports whether a NewsAPI key is configured.
func (c *Config) Keyed() bool {
	return strings.TrimSpace(c.APIKey) != ""
}
