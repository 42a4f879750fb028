package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/learngrid/internal/readiness"
	"github.com/specialistvlad/learngrid/internal/service"
	"github.com/specialistvlad/learngrid/internal/workflow"
	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendDuckDB = "duckdb"
)

// Config represents the complete learngrid configuration.
type Config struct {
	Readiness   readiness.Weights `yaml:"readiness"`
	Workflow    WorkflowConfig    `yaml:"workflow"`
	Workers     int               `yaml:"workers"`
	Log         LogConfig         `yaml:"log"`
	Store       StoreConfig       `yaml:"store"`
	Healthcheck HealthcheckConfig `yaml:"healthcheck"`
}

// WorkflowConfig configures learner progression.
type WorkflowConfig struct {
	// MasteryThreshold is the minimum mastery test score, out of 100.
	MasteryThreshold float64 `yaml:"mastery_threshold"`
}

// LogConfig configures the logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is text or json.
	Format string `yaml:"format"`
}

// StoreConfig selects and tunes the persistence backend.
type StoreConfig struct {
	// Backend is memory or duckdb.
	Backend string `yaml:"backend"`
	// DSN is the DuckDB database path. Empty means in-memory.
	DSN string `yaml:"dsn"`
	// Threads and MemoryLimitGB tune DuckDB (0 = DuckDB default).
	Threads       int `yaml:"threads"`
	MemoryLimitGB int `yaml:"memory_limit_gb"`
}

// HealthcheckConfig configures the HTTP health and metrics endpoint.
type HealthcheckConfig struct {
	// Port is the listening port. 0 disables the server.
	Port int `yaml:"port"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Readiness: readiness.DefaultWeights,
		Workflow: WorkflowConfig{
			MasteryThreshold: workflow.DefaultMasteryThreshold,
		},
		Workers: 0, // GOMAXPROCS
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Store: StoreConfig{
			Backend: BackendMemory,
		},
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if err := c.Service().Validate(); err != nil {
		return err
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	switch c.Store.Backend {
	case BackendMemory:
		if c.Store.DSN != "" {
			return fmt.Errorf("store.dsn is only valid with the %s backend", BackendDuckDB)
		}
	case BackendDuckDB:
	default:
		return fmt.Errorf("store.backend must be %s or %s, got %q", BackendMemory, BackendDuckDB, c.Store.Backend)
	}
	if c.Store.Threads < 0 || c.Store.MemoryLimitGB < 0 {
		return fmt.Errorf("store.threads and store.memory_limit_gb must not be negative")
	}
	if c.Healthcheck.Port < 0 || c.Healthcheck.Port > 65535 {
		return fmt.Errorf("healthcheck.port must be between 0 and 65535, got %d", c.Healthcheck.Port)
	}
	return nil
}

// Service returns the engine settings.
func (c *Config) Service() service.Config {
	return service.Config{
		Weights:          c.Readiness,
		MasteryThreshold: c.Workflow.MasteryThreshold,
		Workers:          c.Workers,
	}
}

// LoadFromFile loads configuration from a YAML file on top of the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	config.normalize()

	return config, nil
}

// SaveToFile saves configuration to a YAML file.
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Merge merges another config into this one (other takes precedence for
// non-zero values).
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// A weight of zero is meaningful, so the split is taken as a pair.
	if other.Readiness != (readiness.Weights{}) {
		c.Readiness = other.Readiness
	}
	if other.Workflow.MasteryThreshold != 0 {
		c.Workflow.MasteryThreshold = other.Workflow.MasteryThreshold
	}
	if other.Workers != 0 {
		c.Workers = other.Workers
	}

	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
	if other.Log.Format != "" {
		c.Log.Format = other.Log.Format
	}

	if other.Store.Backend != "" {
		c.Store.Backend = other.Store.Backend
	}
	if other.Store.DSN != "" {
		c.Store.DSN = other.Store.DSN
		// A database path implies the duckdb backend.
		if other.Store.Backend == "" {
			c.Store.Backend = BackendDuckDB
		}
	}
	if other.Store.Threads != 0 {
		c.Store.Threads = other.Store.Threads
	}
	if other.Store.MemoryLimitGB != 0 {
		c.Store.MemoryLimitGB = other.Store.MemoryLimitGB
	}

	if other.Healthcheck.Port != 0 {
		c.Healthcheck.Port = other.Healthcheck.Port
	}
	c.normalize()
}

func (c *Config) normalize() {
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
}
