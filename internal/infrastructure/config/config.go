// Package config loads application configuration from environment
// variables with sensible defaults for local development.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Store     StoreConfig
	Tasks     TaskConfig
	View      ViewConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// StoreConfig holds persistence configuration. An empty path keeps the
// key-value store in memory.
type StoreConfig struct {
	Path      string `envconfig:"STORE_PATH" default:""`
	BackupDir string `envconfig:"BACKUP_DIR" default:"backups"`
	SeedDemo  bool   `envconfig:"SEED_DEMO_DATA" default:"true"`
}

// TaskConfig tunes the background task simulation.
type TaskConfig struct {
	Tick          time.Duration `envconfig:"TASK_TICK" default:"200ms"`
	Step          float64       `envconfig:"TASK_STEP" default:"10"`
	MaxConcurrent int           `envconfig:"TASK_MAX_CONCURRENT" default:"3"`
}

// ViewConfig holds item view defaults.
type ViewConfig struct {
	PageSize int `envconfig:"VIEW_PAGE_SIZE" default:"10"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Store: StoreConfig{
			BackupDir: "backups",
			SeedDemo:  true,
		},
		Tasks: TaskConfig{
			Tick:          200 * time.Millisecond,
			Step:          10,
			MaxConcurrent: 3,
		},
		View: ViewConfig{
			PageSize: 10,
		},
	}
}
