// Package config loads rowcast settings from YAML with environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/jsnanigans/rowcast/pkg/rowcast"
)

// Bounds accepted by Validate. They mirror what the entry forms allow.
const (
	MinRows       = 10
	MaxRows       = 200
	MaxCols       = 26
	MaxIterations = 50
)

// Config holds all rowcast configuration.
type Config struct {
	Grid       GridConfig       `yaml:"grid"`
	Prediction PredictionConfig `yaml:"prediction"`
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// GridConfig bounds the rows and columns predictions may use.
type GridConfig struct {
	MaxRows int `yaml:"max_rows"`
	MaxCols int `yaml:"max_cols"`
}

// PredictionConfig sets run defaults.
type PredictionConfig struct {
	Iterations int    `yaml:"iterations"`
	Method     string `yaml:"method"` // random, pattern
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	JSON  bool   `yaml:"json"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Grid: GridConfig{
			MaxRows: 90,
			MaxCols: 5,
		},
		Prediction: PredictionConfig{
			Iterations: 10,
			Method:     string(rowcast.MethodRandom),
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML config file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML, creating parent directories.
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

// applyEnvOverrides applies ROWCAST_* variables. PORT is honored for the server
// address when ROWCAST_ADDR is unset.
func (c *Config) applyEnvOverrides() error {
	ints := []struct {
		key string
		dst *int
	}{
		{"ROWCAST_MAX_ROWS", &c.Grid.MaxRows},
		{"ROWCAST_MAX_COLS", &c.Grid.MaxCols},
		{"ROWCAST_ITERATIONS", &c.Prediction.Iterations},
	}
	for _, o := range ints {
		v := os.Getenv(o.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s=%q: %w", o.key, v, err)
		}
		*o.dst = n
	}

	if v := os.Getenv("ROWCAST_METHOD"); v != "" {
		c.Prediction.Method = v
	}
	if v := os.Getenv("ROWCAST_ADDR"); v != "" {
		c.Server.Addr = v
	} else if port := os.Getenv("PORT"); port != "" {
		c.Server.Addr = ":" + port
	}
	if v := os.Getenv("ROWCAST_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return nil
}

// Validate checks that values are within the accepted ranges.
func (c *Config) Validate() error {
	if c.Grid.MaxRows < MinRows || c.Grid.MaxRows > MaxRows {
		return fmt.Errorf("max_rows must be between %d and %d, got %d", MinRows, MaxRows, c.Grid.MaxRows)
	}
	if c.Grid.MaxCols < 1 || c.Grid.MaxCols > MaxCols {
		return fmt.Errorf("max_cols must be between 1 and %d, got %d", MaxCols, c.Grid.MaxCols)
	}
	if c.Prediction.Iterations < 1 || c.Prediction.Iterations > MaxIterations {
		return fmt.Errorf("iterations must be between 1 and %d, got %d", MaxIterations, c.Prediction.Iterations)
	}
	if _, err := rowcast.ParseMethod(c.Prediction.Method); err != nil {
		return fmt.Errorf("prediction.method: %w", err)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}

// CheckOptions applies the Validate bounds to run options assembled from request or
// flag overrides. Failures wrap rowcast.ErrInvalidRange.
func CheckOptions(opts rowcast.Options) error {
	if opts.MaxRows < MinRows || opts.MaxRows > MaxRows {
		return fmt.Errorf("max rows must be between %d and %d, got %d: %w", MinRows, MaxRows, opts.MaxRows, rowcast.ErrInvalidRange)
	}
	if opts.MaxCols < 1 || opts.MaxCols > MaxCols {
		return fmt.Errorf("max cols must be between 1 and %d, got %d: %w", MaxCols, opts.MaxCols, rowcast.ErrInvalidRange)
	}
	if opts.Iterations < 1 || opts.Iterations > MaxIterations {
		return fmt.Errorf("iterations must be between 1 and %d, got %d: %w", MaxIterations, opts.Iterations, rowcast.ErrInvalidRange)
	}
	return nil
}

// Method returns the configured column method.
func (c *Config) Method() rowcast.Method {
	m, err := rowcast.ParseMethod(c.Prediction.Method)
	if err != nil {
		return rowcast.MethodRandom
	}
	return m
}

// Options builds run options from the configuration.
func (c *Config) Options() rowcast.Options {
	return rowcast.Options{
		MaxRows:    c.Grid.MaxRows,
		MaxCols:    c.Grid.MaxCols,
		Iterations: c.Prediction.Iterations,
		Method:     c.Method(),
	}
}
