// Package config loads the optional lair.yml file the CLI reads from the
// working directory.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultFile is the config filename looked up in the working directory.
	DefaultFile = "lair.yml"

	// DefaultRoot is the lair root used when no config file exists and no
	// --root flag is given.
	DefaultRoot = "./lair"
)

// Config represents the top-level lair.yml configuration.
type Config struct {
	Version string `yaml:"version"`
	Root    string `yaml:"root"`
	Archive string `yaml:"archive,omitempty"`
}

// Default returns the configuration used when no lair.yml is present.
func Default() *Config {
	return &Config{Version: "1", Root: DefaultRoot}
}

// Load reads and validates the config file at path. A missing file is not an
// error; the defaults are returned instead.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate performs strict validation on the configuration.
func (c *Config) Validate() error {
	if c.Version != "1" {
		return fmt.Errorf("unsupported version: %s (expected: 1)", c.Version)
	}
	if c.Root == "" {
		return fmt.Errorf("root is required")
	}
	if c.Archive != "" {
		if info, err := os.Stat(c.Archive); err != nil || !info.IsDir() {
			return fmt.Errorf("archive directory does not exist: %s", c.Archive)
		}
	}
	return nil
}
