package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the job digest pipeline.
type Config struct {
	Discovery DiscoveryConfig
	AI        AIConfig
	SMTP      SMTPConfig
	Digest    DigestConfig
	Store     StoreConfig
	Schedule  ScheduleConfig
}

// DiscoveryConfig controls the JSearch client and post-search filters.
type DiscoveryConfig struct {
	APIKey           string        // RapidAPI key, expanded from env var by Load
	Queries          []string      // search queries, one upstream call each
	MaxAge           time.Duration // freshness window for discovered postings
	MinDelay         time.Duration // minimum gap between requests to the API
	MaxRetries       int
	BlockedEmployers []string // replaces the built-in aggregator list when set
}

// AIConfig controls the OpenAI enrichment layer.
type AIConfig struct {
	Enabled bool
	BaseURL string        // defaults to https://api.openai.com/v1
	Model   string        // OpenAI model identifier, e.g. "gpt-4o-mini"
	APIKey  string        // expanded from env var by Load
	Timeout time.Duration // per-request timeout
}

// SMTPConfig controls digest email delivery.
type SMTPConfig struct {
	Host      string `yaml:"host"`
	Port      string `yaml:"port"`
	User      string `yaml:"user"`
	Password  string `yaml:"password"`
	From      string `yaml:"from"`
	FromName  string `yaml:"from_name"`
	Recipient string `yaml:"recipient"` // empty means preview mode
}

// DigestConfig controls digest composition.
type DigestConfig struct {
	MaxJobs     int    `yaml:"max_jobs"`
	PreviewPath string `yaml:"preview_path"` // HTML output path in preview mode
}

// StoreConfig controls the SQLite store.
type StoreConfig struct {
	Path          string `yaml:"path"`
	RetentionDays int    `yaml:"retention_days"`
}

// ScheduleConfig holds the daily trigger times for the daemon, "HH:MM" 24h.
type ScheduleConfig struct {
	DiscoveryTime string `yaml:"discovery_time"`
	DigestTime    string `yaml:"digest_time"`
}

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	Discovery rawDiscoveryConfig `yaml:"discovery"`
	AI        rawAIConfig        `yaml:"ai"`
	SMTP      SMTPConfig         `yaml:"smtp"`
	Digest    DigestConfig       `yaml:"digest"`
	Store     StoreConfig        `yaml:"store"`
	Schedule  ScheduleConfig     `yaml:"schedule"`
}

type rawDiscoveryConfig struct {
	APIKey           string   `yaml:"api_key"`
	Queries          []string `yaml:"queries"`
	MaxAge           string   `yaml:"max_age"`
	MinDelay         string   `yaml:"min_delay"`
	MaxRetries       int      `yaml:"max_retries"`
	BlockedEmployers []string `yaml:"blocked_employers"`
}

type rawAIConfig struct {
	Enabled bool   `yaml:"enabled"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	APIKey  string `yaml:"api_key"`
	Timeout string `yaml:"timeout"`
}

// LoadDotenv loads a .env style file into the process environment so that
// ${VAR} references in the YAML config resolve. A missing file is not an
// error; an unreadable one is.
func LoadDotenv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	maxAge := 72 * time.Hour // default: postings up to three days old
	if raw.Discovery.MaxAge != "" {
		maxAge, err = time.ParseDuration(raw.Discovery.MaxAge)
		if err != nil {
			return nil, fmt.Errorf("parse discovery.max_age %q: %w", raw.Discovery.MaxAge, err)
		}
	}

	minDelay := 2 * time.Second
	if raw.Discovery.MinDelay != "" {
		minDelay, err = time.ParseDuration(raw.Discovery.MinDelay)
		if err != nil {
			return nil, fmt.Errorf("parse discovery.min_delay %q: %w", raw.Discovery.MinDelay, err)
		}
	}

	maxRetries := 3
	if raw.Discovery.MaxRetries > 0 {
		maxRetries = raw.Discovery.MaxRetries
	}

	aiTimeout := 30 * time.Second // default
	if raw.AI.Timeout != "" {
		aiTimeout, err = time.ParseDuration(raw.AI.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse ai.timeout %q: %w", raw.AI.Timeout, err)
		}
	}

	aiBaseURL := raw.AI.BaseURL
	if aiBaseURL == "" {
		aiBaseURL = defaultOpenAIBaseURL
	}

	cfg := &Config{
		Discovery: DiscoveryConfig{
			APIKey:           raw.Discovery.APIKey,
			Queries:          raw.Discovery.Queries,
			MaxAge:           maxAge,
			MinDelay:         minDelay,
			MaxRetries:       maxRetries,
			BlockedEmployers: raw.Discovery.BlockedEmployers,
		},
		AI: AIConfig{
			Enabled: raw.AI.Enabled,
			BaseURL: aiBaseURL,
			Model:   raw.AI.Model,
			APIKey:  raw.AI.APIKey,
			Timeout: aiTimeout,
		},
		SMTP:     raw.SMTP,
		Digest:   raw.Digest,
		Store:    raw.Store,
		Schedule: raw.Schedule,
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Digest.MaxJobs == 0 {
		cfg.Digest.MaxJobs = 12
	}
	if cfg.Digest.PreviewPath == "" {
		cfg.Digest.PreviewPath = "digest_preview.html"
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = "jobdigest.db"
	}
	if cfg.Store.RetentionDays == 0 {
		cfg.Store.RetentionDays = 30
	}
	if cfg.SMTP.Port == "" {
		cfg.SMTP.Port = "587"
	}
	if cfg.Schedule.DiscoveryTime == "" {
		cfg.Schedule.DiscoveryTime = "08:00"
	}
	if cfg.Schedule.DigestTime == "" {
		cfg.Schedule.DigestTime = "08:30"
	}
}

func validate(cfg *Config) error {
	if cfg.Discovery.APIKey == "" {
		return fmt.Errorf("discovery.api_key is required")
	}
	if len(cfg.Discovery.Queries) == 0 {
		return fmt.Errorf("at least one discovery query must be configured")
	}
	if cfg.Discovery.MaxAge <= 0 {
		return fmt.Errorf("discovery.max_age must be positive, got %v", cfg.Discovery.MaxAge)
	}

	if cfg.AI.Enabled {
		if cfg.AI.APIKey == "" {
			return fmt.Errorf("ai.api_key is required when ai.enabled is true")
		}
		if cfg.AI.Model == "" {
			return fmt.Errorf("ai.model is required when ai.enabled is true")
		}
	}

	if cfg.SMTP.Recipient != "" {
		if cfg.SMTP.Host == "" {
			return fmt.Errorf("smtp.host is required when smtp.recipient is set")
		}
		if cfg.SMTP.From == "" {
			return fmt.Errorf("smtp.from is required when smtp.recipient is set")
		}
	}

	if cfg.Digest.MaxJobs < 1 {
		return fmt.Errorf("digest.max_jobs must be at least 1, got %d", cfg.Digest.MaxJobs)
	}
	if cfg.Store.RetentionDays < 1 {
		return fmt.Errorf("store.retention_days must be at least 1, got %d", cfg.Store.RetentionDays)
	}

	for _, field := range []struct {
		name  string
		value string
	}{
		{"schedule.discovery_time", cfg.Schedule.DiscoveryTime},
		{"schedule.digest_time", cfg.Schedule.DigestTime},
	} {
		if _, err := time.Parse("15:04", field.value); err != nil {
			return fmt.Errorf("%s must be HH:MM, got %q", field.name, field.value)
		}
	}

	return nil
}
