package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Data     DataConfig     `yaml:"data"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Feeds    FeedsConfig    `yaml:"feeds"`
	Salary   SalaryConfig   `yaml:"salary"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Notify   NotifyConfig   `yaml:"notify"`
	Server   ServerConfig   `yaml:"server"`
}

// DataConfig locates the question data on disk.
type DataConfig struct {
	// Dir holds the dynamic question store.
	Dir string `yaml:"dir"`
	// TaxonomyPath optionally replaces the built-in topic bank with a
	// YAML file.
	TaxonomyPath string `yaml:"taxonomy_path"`
}

// IngestConfig configures the classification and dedup thresholds.
type IngestConfig struct {
	MinConfidence      float64 `yaml:"min_confidence"`
	DuplicateThreshold float64 `yaml:"duplicate_threshold"`
}

// FeedsConfig configures the RSS/Atom question sources.
type FeedsConfig struct {
	Enabled  bool       `yaml:"enabled"`
	Lookback string     `yaml:"lookback"`
	Feeds    []FeedItem `yaml:"feeds"`
}

// ParseLookback returns the feed lookback as time.Duration.
func (f FeedsConfig) ParseLookback() time.Duration {
	d, err := time.ParseDuration(f.Lookback)
	if err != nil {
		return 7 * 24 * time.Hour
	}
	return d
}

// FeedItem is a single feed entry.
type FeedItem struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// SalaryConfig configures SQLite salary storage.
type SalaryConfig struct {
	DBPath string `yaml:"db_path"`
}

// ScheduleConfig configures the daemon intervals.
type ScheduleConfig struct {
	CollectInterval string `yaml:"collect_interval"`
	DigestInterval  string `yaml:"digest_interval"`
	TrendWindowDays int    `yaml:"trend_window_days"`
}

// ParseCollectInterval returns the collect interval as time.Duration.
func (s ScheduleConfig) ParseCollectInterval() time.Duration {
	d, err := time.ParseDuration(s.CollectInterval)
	if err != nil {
		return 6 * time.Hour
	}
	return d
}

// ParseDigestInterval returns the digest interval as time.Duration.
func (s ScheduleConfig) ParseDigestInterval() time.Duration {
	d, err := time.ParseDuration(s.DigestInterval)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// NotifyConfig configures digest destinations.
type NotifyConfig struct {
	Slack   SlackConfig   `yaml:"slack"`
	Discord DiscordConfig `yaml:"discord"`
	Webhook WebhookConfig `yaml:"webhook"`
}

// SlackConfig for Slack webhook digests.
type SlackConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// DiscordConfig for Discord webhook digests.
type DiscordConfig struct {
	Enabled    bool   `yaml:"enabled"`
	WebhookURL string `yaml:"webhook_url"`
}

// WebhookConfig for generic signed webhook digests.
type WebhookConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Secret  string `yaml:"secret"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Data: DataConfig{Dir: "./data"},
		Ingest: IngestConfig{
			MinConfidence:      30,
			DuplicateThreshold: 0.6,
		},
		Feeds: FeedsConfig{
			Enabled:  true,
			Lookback: "168h",
			Feeds: []FeedItem{
				{Name: "devto-interviews", URL: "https://dev.to/feed/tag/interview"},
				{Name: "reddit-cscareerquestions", URL: "https://www.reddit.com/r/cscareerquestions/.rss"},
				{Name: "reddit-experienceddevs", URL: "https://www.reddit.com/r/ExperiencedDevs/.rss"},
			},
		},
		Salary: SalaryConfig{DBPath: "./careerintel.db"},
		Schedule: ScheduleConfig{
			CollectInterval: "6h",
			DigestInterval:  "24h",
			TrendWindowDays: 30,
		},
		Notify: NotifyConfig{},
		Server: ServerConfig{Port: 8080},
	}
}

// Load reads configuration from a YAML file and applies env var overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides overrides config values with environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CAREERINTEL_DATA_DIR"); v != "" {
		cfg.Data.Dir = v
	}
	if v := os.Getenv("CAREERINTEL_TAXONOMY"); v != "" {
		cfg.Data.TaxonomyPath = v
	}
	if v := os.Getenv("CAREERINTEL_SALARY_DB"); v != "" {
		cfg.Salary.DBPath = v
	}
	if v := os.Getenv("SLACK_WEBHOOK_URL"); v != "" {
		cfg.Notify.Slack.WebhookURL = v
		cfg.Notify.Slack.Enabled = true
	}
	if v := os.Getenv("DISCORD_WEBHOOK_URL"); v != "" {
		cfg.Notify.Discord.WebhookURL = v
		cfg.Notify.Discord.Enabled = true
	}
	if v := os.Getenv("CAREERINTEL_WEBHOOK_URL"); v != "" {
		cfg.Notify.Webhook.URL = v
		cfg.Notify.Webhook.Enabled = true
	}
	if v := os.Getenv("CAREERINTEL_WEBHOOK_SECRET"); v != "" {
		cfg.Notify.Webhook.Secret = v
	}
}
