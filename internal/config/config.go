// Package config loads vgcharts settings from YAML with environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/junkd0g/vgcharts/internal/charts"
)

// Config is the top-level configuration.
type Config struct {
	DataURL     string        `yaml:"data_url"`     // dataset URL the page fetches
	OutputDir   string        `yaml:"output_dir"`   // where build writes the site
	ThemeFile   string        `yaml:"theme_file"`   // persisted theme flag
	DatasetPath string        `yaml:"dataset_path"` // local copy used by preview
	Title       string        `yaml:"title"`
	Logging     LoggingConfig `yaml:"logging"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the defaults used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		DataURL:     charts.DefaultDataURL,
		OutputDir:   "site",
		ThemeFile:   ".vgcharts/theme.yaml",
		DatasetPath: filepath.FromSlash(charts.DefaultDataURL),
		Title:       "Video Game Sales",
		Logging:     LoggingConfig{Level: "info"},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; environment overrides apply either way.
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

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
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
	if v := os.Getenv("VGCHARTS_DATA_URL"); v != "" {
		c.DataURL = v
	}
	if v := os.Getenv("VGCHARTS_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv("VGCHARTS_THEME_FILE"); v != "" {
		c.ThemeFile = v
	}
	if v := os.Getenv("VGCHARTS_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.DataURL == "" {
		return fmt.Errorf("data_url is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}
	if c.ThemeFile == "" {
		return fmt.Errorf("theme_file is required")
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level %q", c.Logging.Level)
	}
	return nil
}
