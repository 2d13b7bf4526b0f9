// Package config holds the runtime configuration for mapcheck: where
// mapping records are read from, where the audit store lives, which
// physical database schema checks run against, and how the process logs.
// Configuration is a YAML file with environment overrides for paths, so
// the same file can be shared between a developer laptop and CI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all mapcheck configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Source is where mapping records are read from.
	Source SourceConfig `yaml:"source"`

	// Store is the audit and feedback database.
	Store StoreConfig `yaml:"store"`

	// Schema configures advisory checks against a physical database.
	Schema SchemaConfig `yaml:"schema"`

	// Validation tunes the engine.
	Validation ValidationConfig `yaml:"validation"`

	// Watch configures file watching for continuous validation.
	Watch WatchConfig `yaml:"watch"`

	// Logging controls process logging.
	Logging LoggingConfig `yaml:"logging"`
}

// SourceConfig selects the mapping record source. When both paths are
// set the CSV file wins; a CSV on disk is the editable working copy.
type SourceConfig struct {
	CSVPath      string `yaml:"csv_path"`
	DatabasePath string `yaml:"database_path"`
}

// StoreConfig locates the audit store.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// SchemaConfig locates the physical database for schema checks. Empty
// means schema checks are unavailable.
type SchemaConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// ValidationConfig tunes the validation engine.
type ValidationConfig struct {
	// LegacyExpressionScan restores the historical expression check,
	// which never reported anything. Kept for output-compatible runs
	// against reports produced by the old validator.
	LegacyExpressionScan bool `yaml:"legacy_expression_scan"`
}

// WatchConfig tunes the file watcher.
type WatchConfig struct {
	// Debounce is how long to wait after the last write before
	// revalidating. Editors save in bursts.
	Debounce string `yaml:"debounce"`
}

// LoggingConfig controls process logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "mapcheck",
		Version: "0.1.0",

		Source: SourceConfig{
			CSVPath: "mappings.csv",
		},

		Store: StoreConfig{
			Path: "data/mapcheck.db",
		},

		Validation: ValidationConfig{
			LegacyExpressionScan: false,
		},

		Watch: WatchConfig{
			Debounce: "500ms",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads configuration from a YAML file. A missing file is not an
// error: defaults apply, then environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("MAPCHECK_CSV"); v != "" {
		c.Source.CSVPath = v
	}
	if v := os.Getenv("MAPCHECK_SOURCE_DB"); v != "" {
		c.Source.DatabasePath = v
	}
	if v := os.Getenv("MAPCHECK_STORE"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("MAPCHECK_SCHEMA_DB"); v != "" {
		c.Schema.DatabasePath = v
	}
	if v := os.Getenv("MAPCHECK_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Debounce returns the watcher debounce as a duration, falling back to
// the default on a bad value.
func (c *Config) Debounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil || d <= 0 {
		return 500 * time.Millisecond
	}
	return d
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	if c.Source.CSVPath == "" && c.Source.DatabasePath == "" {
		return fmt.Errorf("no mapping source configured: set source.csv_path or source.database_path")
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	return nil
}
