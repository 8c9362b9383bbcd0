package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Registry  RegistryConfig  `yaml:"registry" mapstructure:"registry"`
	Feed      FeedConfig      `yaml:"feed" mapstructure:"feed"`
	CROL      CROLConfig      `yaml:"crol" mapstructure:"crol"`
	Fetch     FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Scan      ScanConfig      `yaml:"scan" mapstructure:"scan"`
	Departure DepartureConfig `yaml:"departure" mapstructure:"departure"`
	Rules     RulesConfig     `yaml:"rules" mapstructure:"rules"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// RegistryConfig locates the read-only organizations registry.
type RegistryConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// FeedConfig configures the structured personnel-change feed client.
type FeedConfig struct {
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
	Dataset  string `yaml:"dataset" mapstructure:"dataset"`
	PageSize int    `yaml:"page_size" mapstructure:"page_size"`
	MaxPages int    `yaml:"max_pages" mapstructure:"max_pages"`
}

// CROLConfig configures the notice-board client.
type CROLConfig struct {
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	SectionID string `yaml:"section_id" mapstructure:"section_id"`
	MaxPages  int    `yaml:"max_pages" mapstructure:"max_pages"`
}

// FetchConfig configures the shared rate limiter and cache.
type FetchConfig struct {
	MinDelayMS    int    `yaml:"min_delay_ms" mapstructure:"min_delay_ms"`
	MaxRequests   int    `yaml:"max_requests" mapstructure:"max_requests"`
	CacheBackend  string `yaml:"cache_backend" mapstructure:"cache_backend"`
	CacheDir      string `yaml:"cache_dir" mapstructure:"cache_dir"`
	CacheDSN      string `yaml:"cache_dsn" mapstructure:"cache_dsn"`
	CacheTTLHours int    `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
}

// MinDelay returns the inter-request delay as a duration.
func (f FetchConfig) MinDelay() time.Duration {
	return time.Duration(f.MinDelayMS) * time.Millisecond
}

// CacheTTL returns the cache expiry as a duration.
func (f FetchConfig) CacheTTL() time.Duration {
	return time.Duration(f.CacheTTLHours) * time.Hour
}

// ScanConfig configures the forward scan.
type ScanConfig struct {
	LookbackDays int  `yaml:"lookback_days" mapstructure:"lookback_days"`
	MinScore     int  `yaml:"min_score" mapstructure:"min_score"`
	Corroborate  bool `yaml:"corroborate" mapstructure:"corroborate"`
}

// DepartureConfig configures the departure cross-check.
type DepartureConfig struct {
	LookbackDays int `yaml:"lookback_days" mapstructure:"lookback_days"`
	Concurrency  int `yaml:"concurrency" mapstructure:"concurrency"`
}

// RulesConfig locates the optional YAML rules file extending the built-in
// matching dictionaries.
type RulesConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("APPWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("registry.path", "registry.csv")
	v.SetDefault("feed.base_url", "https://data.cityofnewyork.us")
	v.SetDefault("feed.dataset", "p937-wjvj")
	v.SetDefault("feed.page_size", 1000)
	v.SetDefault("feed.max_pages", 20)
	v.SetDefault("crol.base_url", "https://a856-cityrecord.nyc.gov")
	v.SetDefault("crol.section_id", "personnel-changes")
	v.SetDefault("crol.max_pages", 10)
	v.SetDefault("fetch.min_delay_ms", 1000)
	v.SetDefault("fetch.max_requests", 200)
	v.SetDefault("fetch.cache_backend", "disk")
	v.SetDefault("fetch.cache_dir", ".appwatch-cache")
	v.SetDefault("fetch.cache_dsn", ".appwatch-cache/fetch.db")
	v.SetDefault("fetch.cache_ttl_hours", 24)
	v.SetDefault("scan.lookback_days", 60)
	v.SetDefault("scan.min_score", 20)
	v.SetDefault("scan.corroborate", false)
	v.SetDefault("departure.lookback_days", 365)
	v.SetDefault("departure.concurrency", 1)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
