package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the concierge engine.
// Environment variables are parsed from the CONCIERGE_ prefix.
// All engine thresholds live here so tests can shrink TTLs and windows
// without touching component logic.
type Config struct {
	// Build target selects high-level environment: local, cloud
	BuildTarget string `envconfig:"BUILD_TARGET" default:"local"`

	// Derived or override driver: sqlite, postgres
	DBDriver string `envconfig:"DB_DRIVER" default:"auto"`

	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	// HTTP Configuration
	HTTPPort int `envconfig:"HTTP_PORT" default:"8080"`

	// Store drivers. An empty SQLITE_PATH resolves to ~/.concierge/concierge.db.
	SQLitePath  string `envconfig:"SQLITE_PATH" default:""`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// Generative backend (Ollama-compatible /api/generate endpoint)
	GenBackendURL string `envconfig:"GEN_BACKEND_URL" default:"http://localhost:11434"`
	GenModel      string `envconfig:"GEN_MODEL" default:"llama3"`

	// Live lookup backend; empty disables web search fallback
	SearchBaseURL string `envconfig:"SEARCH_BASE_URL" default:"https://api.duckduckgo.com"`

	// Static credential table, "token=user:role" pairs separated by commas.
	// Empty falls back to the permissive dev verifier.
	AuthTokens string `envconfig:"AUTH_TOKENS" default:""`

	// Engine thresholds
	ThreadWindowMinutes  int `envconfig:"THREAD_WINDOW_MINUTES" default:"30"`
	TurnTTLDays          int `envconfig:"TURN_TTL_DAYS" default:"30"`
	ReminderTTLDays      int `envconfig:"REMINDER_TTL_DAYS" default:"30"`
	NoteTTLDays          int `envconfig:"NOTE_TTL_DAYS" default:"30"`
	FactTTLYears         int `envconfig:"FACT_TTL_YEARS" default:"10"`
	DefaultReminderHours int `envconfig:"DEFAULT_REMINDER_HOURS" default:"24"`
	HistoryLimit         int `envconfig:"HISTORY_LIMIT" default:"5"`
	RecentEntriesLimit   int `envconfig:"RECENT_ENTRIES_LIMIT" default:"10"`
}

// ResolveDefaults validates BuildTarget and derives DBDriver when set to "auto" or empty.
func (c *Config) ResolveDefaults() error {
	var defaultDB string

	switch c.BuildTarget {
	case "local":
		defaultDB = "sqlite"
	case "cloud":
		defaultDB = "postgres"
	default:
		return fmt.Errorf("unsupported BUILD_TARGET: %s", c.BuildTarget)
	}

	if c.DBDriver == "" || c.DBDriver == "auto" {
		c.DBDriver = defaultDB
	}

	allowedDB := map[string]bool{"sqlite": true, "postgres": true}
	if !allowedDB[c.DBDriver] {
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	if c.DBDriver == "postgres" && c.PostgresDSN == "" {
		return fmt.Errorf("POSTGRES_DSN is required for the postgres driver")
	}
	return nil
}

// New creates a new Config by parsing environment variables.
// Variables are prefixed with CONCIERGE_, e.g. CONCIERGE_HTTP_PORT.
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("CONCIERGE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// NewForTesting creates a config with short TTLs suited to unit tests.
func NewForTesting() *Config {
	return &Config{
		BuildTarget:          "local",
		DBDriver:             "sqlite",
		Environment:          EnvTesting,
		HTTPPort:             8080,
		SQLitePath:           ":memory:",
		GenBackendURL:        "http://localhost:11434",
		GenModel:             "llama3",
		SearchBaseURL:        "",
		ThreadWindowMinutes:  30,
		TurnTTLDays:          30,
		ReminderTTLDays:      30,
		NoteTTLDays:          30,
		FactTTLYears:         10,
		DefaultReminderHours: 24,
		HistoryLimit:         5,
		RecentEntriesLimit:   10,
	}
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// ThreadWindow is how long a thread stays open between turns.
func (c *Config) ThreadWindow() time.Duration {
	return time.Duration(c.ThreadWindowMinutes) * time.Minute
}

// TurnTTL is the retention period for conversation turns.
func (c *Config) TurnTTL() time.Duration {
	return time.Duration(c.TurnTTLDays) * 24 * time.Hour
}

// ReminderTTL is the retention period for reminders.
func (c *Config) ReminderTTL() time.Duration {
	return time.Duration(c.ReminderTTLDays) * 24 * time.Hour
}

// NoteTTL is the retention period for scratchpad notes.
func (c *Config) NoteTTL() time.Duration {
	return time.Duration(c.NoteTTLDays) * 24 * time.Hour
}

// FactTTL is the retention period for admin facts.
func (c *Config) FactTTL() time.Duration {
	return time.Duration(c.FactTTLYears) * 365 * 24 * time.Hour
}

// DefaultReminderOffset is used when no time expression is recognized.
func (c *Config) DefaultReminderOffset() time.Duration {
	return time.Duration(c.DefaultReminderHours) * time.Hour
}
