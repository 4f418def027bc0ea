// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Auth      AuthConfig      `mapstructure:"auth"`
	DB        DBConfig        `mapstructure:"db"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Scraper   ScraperConfig   `mapstructure:"scraper"`
	Headless  HeadlessConfig  `mapstructure:"headless"`
	Snapshots SnapshotsConfig `mapstructure:"snapshots"`
	Events    EventsConfig    `mapstructure:"events"`
	AI        AIConfig        `mapstructure:"ai"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// AuthConfig defines API authentication toggles.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// DBConfig controls access to the relational database.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// CacheConfig configures the read-through cache layer.
type CacheConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	RedisURL   string `mapstructure:"redis_url"`
	TTLSeconds int    `mapstructure:"ttl_seconds"`
}

// ScraperConfig governs the scrape pipeline.
type ScraperConfig struct {
	UserAgent      string `mapstructure:"user_agent"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	PostsLimit     int    `mapstructure:"posts_limit"`
	EmployeesLimit int    `mapstructure:"employees_limit"`
}

// HeadlessConfig configures the headless rendering subsystem.
type HeadlessConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	MaxParallel     int  `mapstructure:"max_parallel"`
	NavTimeoutSec   int  `mapstructure:"nav_timeout_seconds"`
	ScrollCount     int  `mapstructure:"scroll_count"`
	PromotionThresh int  `mapstructure:"promotion_threshold"`
}

// SnapshotsConfig sets where raw fetched HTML is archived.
type SnapshotsConfig struct {
	Provider  string `mapstructure:"provider"`
	GCSBucket string `mapstructure:"gcs_bucket"`
	BaseDir   string `mapstructure:"base_dir"`
	Prefix    string `mapstructure:"prefix"`
}

// EventsConfig holds metadata for scrape-completed notifications.
type EventsConfig struct {
	Provider  string `mapstructure:"provider"`
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// AIConfig configures the Gemini summarizer.
type AIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("INSIGHTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("db.max_conns", 8)
	v.SetDefault("db.min_conns", 1)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.redis_url", "redis://localhost:6379/0")
	v.SetDefault("cache.ttl_seconds", 300)
	v.SetDefault("scraper.user_agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	v.SetDefault("scraper.timeout_seconds", 30)
	v.SetDefault("scraper.posts_limit", 20)
	v.SetDefault("scraper.employees_limit", 20)
	v.SetDefault("headless.enabled", true)
	v.SetDefault("headless.max_parallel", 1)
	v.SetDefault("headless.nav_timeout_seconds", 30)
	v.SetDefault("headless.scroll_count", 3)
	v.SetDefault("headless.promotion_threshold", 2048)
	v.SetDefault("snapshots.provider", "none")
	v.SetDefault("snapshots.prefix", "pages")
	v.SetDefault("events.provider", "none")
	v.SetDefault("ai.model", "gemini-1.5-flash")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key must be set when auth is enabled")
	}
	if c.Cache.Enabled && c.Cache.RedisURL == "" {
		return fmt.Errorf("cache.redis_url must be set when cache is enabled")
	}
	if c.Cache.TTLSeconds <= 0 {
		return fmt.Errorf("cache.ttl_seconds must be > 0")
	}
	if c.Scraper.TimeoutSeconds <= 0 {
		return fmt.Errorf("scraper.timeout_seconds must be > 0")
	}
	if c.Headless.Enabled && c.Headless.MaxParallel <= 0 {
		return fmt.Errorf("headless.max_parallel must be > 0 when headless is enabled")
	}
	switch c.Snapshots.Provider {
	case "", "none", "memory", "local", "gcs":
	default:
		return fmt.Errorf("unknown snapshots.provider %q", c.Snapshots.Provider)
	}
	if c.Snapshots.Provider == "gcs" && c.Snapshots.GCSBucket == "" {
		return fmt.Errorf("snapshots.gcs_bucket must be set when snapshots.provider is gcs")
	}
	if c.Snapshots.Provider == "local" && c.Snapshots.BaseDir == "" {
		return fmt.Errorf("snapshots.base_dir must be set when snapshots.provider is local")
	}
	switch c.Events.Provider {
	case "", "none", "memory", "pubsub":
	default:
		return fmt.Errorf("unknown events.provider %q", c.Events.Provider)
	}
	if c.Events.Provider == "pubsub" && (c.Events.ProjectID == "" || c.Events.TopicName == "") {
		return fmt.Errorf("events.project_id and events.topic_name must be set when events.provider is pubsub")
	}
	return nil
}

// CacheTTL converts the configured TTL into a duration.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// ScrapeTimeout converts the scraper timeout into a duration.
func (c Config) ScrapeTimeout() time.Duration {
	return time.Duration(c.Scraper.TimeoutSeconds) * time.Second
}

// AIEnabled reports whether the Gemini summarizer can be constructed.
func (c Config) AIEnabled() bool {
	return c.AI.APIKey != ""
}
