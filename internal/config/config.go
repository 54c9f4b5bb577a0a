// Package config provides configuration loading and validation for the
// ingestion runner.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Defaults for the tunable knobs.
const (
	DefaultConcurrency             = 5
	DefaultRollingWindow           = 200
	DefaultDiscoveryBatch          = 200
	DefaultScrapeDelay             = 2 * time.Second
	DefaultRediscoveryCooldownDays = 30
	DefaultInactiveAfterDays       = 7
	DefaultProxycurlDailyCap       = 100
)

// Config holds everything the ingestion runner needs. Fields can come from
// a JSON file, environment variables, or defaults; environment wins over
// file, file wins over defaults.
type Config struct {
	DatabaseURL  string `json:"database_url,omitempty"`
	GeminiAPIKey string `json:"gemini_api_key,omitempty"`

	AdzunaAppID     string `json:"adzuna_app_id,omitempty"`
	AdzunaAppKey    string `json:"adzuna_app_key,omitempty"`
	ProxycurlAPIKey string `json:"proxycurl_api_key,omitempty"`

	Concurrency             int `json:"concurrency,omitempty"`
	RollingWindow           int `json:"rolling_window,omitempty"`
	DiscoveryBatch          int `json:"discovery_batch,omitempty"`
	ScrapeDelayMillis       int `json:"scrape_delay_ms,omitempty"`
	RediscoveryCooldownDays int `json:"rediscovery_cooldown_days,omitempty"`
	InactiveAfterDays       int `json:"inactive_after_days,omitempty"`
	ProxycurlDailyCap       int `json:"proxycurl_daily_cap,omitempty"`
}

// Load builds a Config from an optional JSON file path plus the process
// environment, with defaults filling the rest.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&c.AdzunaAppID, "ADZUNA_APP_ID")
	setString(&c.AdzunaAppKey, "ADZUNA_APP_KEY")
	setString(&c.ProxycurlAPIKey, "PROXYCURL_API_KEY")
	setInt(&c.Concurrency, "SCRAPE_CONCURRENCY")
	setInt(&c.RollingWindow, "ROLLING_WINDOW")
	setInt(&c.DiscoveryBatch, "DISCOVERY_BATCH")
	setInt(&c.ScrapeDelayMillis, "SCRAPE_DELAY_MS")
	setInt(&c.RediscoveryCooldownDays, "REDISCOVERY_COOLDOWN_DAYS")
	setInt(&c.InactiveAfterDays, "INACTIVE_AFTER_DAYS")
	setInt(&c.ProxycurlDailyCap, "PROXYCURL_DAILY_CAP")
}

func (c *Config) applyDefaults() {
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.RollingWindow <= 0 {
		c.RollingWindow = DefaultRollingWindow
	}
	if c.DiscoveryBatch <= 0 {
		c.DiscoveryBatch = DefaultDiscoveryBatch
	}
	if c.ScrapeDelayMillis <= 0 {
		c.ScrapeDelayMillis = int(DefaultScrapeDelay / time.Millisecond)
	}
	if c.RediscoveryCooldownDays <= 0 {
		c.RediscoveryCooldownDays = DefaultRediscoveryCooldownDays
	}
	if c.InactiveAfterDays <= 0 {
		c.InactiveAfterDays = DefaultInactiveAfterDays
	}
	if c.ProxycurlDailyCap <= 0 {
		c.ProxycurlDailyCap = DefaultProxycurlDailyCap
	}
}

// Validate checks that required credentials are present.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("config error: database_url is required (set DATABASE_URL)")
	}
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("config error: gemini_api_key is required (set GEMINI_API_KEY)")
	}
	return nil
}

// ScrapeDelay returns the per-worker delay between companies.
func (c *Config) ScrapeDelay() time.Duration {
	return time.Duration(c.ScrapeDelayMillis) * time.Millisecond
}

// RediscoveryCooldown returns the cooldown before an auto URL may be reset.
func (c *Config) RediscoveryCooldown() time.Duration {
	return time.Duration(c.RediscoveryCooldownDays) * 24 * time.Hour
}

// InactiveAfter returns the freshness window for the maintenance phase.
func (c *Config) InactiveAfter() time.Duration {
	return time.Duration(c.InactiveAfterDays) * 24 * time.Hour
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return
	}
	*dst = n
}
