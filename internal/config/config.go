package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the dashboard server.
type Config struct {
	Server  ServerConfig
	Backend BackendConfig
	Redis   RedisConfig
	Auth    AuthConfig
	Jobs    JobsConfig
	Page    PageConfig
}

type ServerConfig struct {
	Port     int
	Env      string
	LogLevel slog.Level
}

type BackendConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// RedisConfig is optional. With no URL the rate limiter is disabled.
type RedisConfig struct {
	URL             string
	RateLimitPerMin int
}

type AuthConfig struct {
	PasswordHash string
}

// JobsConfig holds the collection monitor timings.
type JobsConfig struct {
	PollInterval         time.Duration
	RefreshDelay         time.Duration
	RevertDelay          time.Duration
	CommErrorRevertDelay time.Duration
}

// PageConfig describes what the filter bar offers. It can be set from the
// YAML file named by DASHBOARD_CONFIG.
type PageConfig struct {
	PerPage      int      `yaml:"per_page"`
	Categories   []string `yaml:"categories"`
	SortKeys     []string `yaml:"sort_keys"`
	TriggerLabel string   `yaml:"trigger_label"`
	Timezone     string   `yaml:"timezone"`

	location *time.Location
}

// Location returns the timezone date buckets are computed in.
func (p PageConfig) Location() *time.Location {
	if p.location != nil {
		return p.location
	}
	return time.Local
}

const configPathEnv = "DASHBOARD_CONFIG"

var defaultCategories = []string{"LLM", "画像生成", "エージェント", "開発ツール", "研究", "ビジネス", "全般", "未分類"}

// Load reads configuration from environment variables, layered over the
// optional YAML file, and returns a validated Config.
func Load() (*Config, error) {
	page := PageConfig{
		PerPage:      20,
		Categories:   defaultCategories,
		SortKeys:     []string{"published_at", "score"},
		TriggerLabel: "今すぐ収集",
	}

	if path := os.Getenv(configPathEnv); path != "" {
		fileCfg, err := readFile(path)
		if err != nil {
			return nil, err
		}
		page = mergePage(page, fileCfg)
	}

	page.PerPage = envInt("PER_PAGE", page.PerPage)
	page.Timezone = envString("DASHBOARD_TIMEZONE", page.Timezone)

	level, err := parseLevel(envString("DASHBOARD_LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:     envInt("DASHBOARD_PORT", 8080),
			Env:      envString("DASHBOARD_ENV", "development"),
			LogLevel: level,
		},
		Backend: BackendConfig{
			BaseURL: os.Getenv("BACKEND_BASE_URL"),
			Token:   os.Getenv("BACKEND_TOKEN"),
			Timeout: envDuration("BACKEND_TIMEOUT", 15*time.Second),
		},
		Redis: RedisConfig{
			URL:             os.Getenv("REDIS_URL"),
			RateLimitPerMin: envInt("RATE_LIMIT_PER_MIN", 60),
		},
		Auth: AuthConfig{
			PasswordHash: os.Getenv("DASHBOARD_PASSWORD_HASH"),
		},
		Jobs: JobsConfig{
			PollInterval:         envDuration("POLL_INTERVAL", 3*time.Second),
			RefreshDelay:         envDuration("REFRESH_DELAY", time.Second),
			RevertDelay:          envDuration("REVERT_DELAY", 5*time.Second),
			CommErrorRevertDelay: envDuration("COMM_ERROR_REVERT_DELAY", 3*time.Second),
		},
		Page: page,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("BACKEND_BASE_URL is required")
	}
	if !strings.HasPrefix(c.Backend.BaseURL, "http://") && !strings.HasPrefix(c.Backend.BaseURL, "https://") {
		return fmt.Errorf("BACKEND_BASE_URL must start with http:// or https://, got %q", c.Backend.BaseURL)
	}

	if c.Page.PerPage <= 0 {
		return fmt.Errorf("PER_PAGE must be positive, got %d", c.Page.PerPage)
	}
	if len(c.Page.SortKeys) == 0 {
		return fmt.Errorf("at least one sort key is required")
	}

	for name, d := range map[string]time.Duration{
		"POLL_INTERVAL":           c.Jobs.PollInterval,
		"REFRESH_DELAY":           c.Jobs.RefreshDelay,
		"REVERT_DELAY":            c.Jobs.RevertDelay,
		"COMM_ERROR_REVERT_DELAY": c.Jobs.CommErrorRevertDelay,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}

	if c.Page.Timezone != "" {
		loc, err := time.LoadLocation(c.Page.Timezone)
		if err != nil {
			return fmt.Errorf("DASHBOARD_TIMEZONE %q: %w", c.Page.Timezone, err)
		}
		c.Page.location = loc
	}

	return nil
}

func readFile(path string) (PageConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return PageConfig{}, fmt.Errorf("reading %s: %w", path, err)
	}
	var p PageConfig
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return PageConfig{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return p, nil
}

func mergePage(base, override PageConfig) PageConfig {
	if override.PerPage > 0 {
		base.PerPage = override.PerPage
	}
	if len(override.Categories) > 0 {
		base.Categories = override.Categories
	}
	if len(override.SortKeys) > 0 {
		base.SortKeys = override.SortKeys
	}
	if override.TriggerLabel != "" {
		base.TriggerLabel = override.TriggerLabel
	}
	if override.Timezone != "" {
		base.Timezone = override.Timezone
	}
	return base
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("DASHBOARD_LOG_LEVEL: %w", err)
	}
	return l, nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
