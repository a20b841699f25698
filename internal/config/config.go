// Package config provides configuration management for insightviz.
// Configuration is loaded from (highest to lowest priority):
// 1. Command-line flags
// 2. Environment variables (INSIGHTVIZ_*)
// 3. Config file (./insightviz.yaml, or INSIGHTVIZ_CONFIG)
// 4. Defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Dataset describes one runs directory to extract.
type Dataset struct {
	// RunsPath is the root directory containing run_* subdirectories.
	RunsPath string `yaml:"runs_path" json:"runs_path"`

	// DisplayName is the human-readable dataset name for the webpage.
	DisplayName string `yaml:"display_name" json:"display_name"`

	// Interval is the sampling stride over the score-sorted sequence.
	// Zero means DefaultInterval.
	Interval int `yaml:"interval" json:"interval"`
}

// Config holds all insightviz configuration.
type Config struct {
	// OutputBase is the webpage root directory artifacts are written under.
	OutputBase string `yaml:"output_base" json:"output_base"`

	// Verbose enables verbose output.
	Verbose bool `yaml:"verbose" json:"verbose"`

	// Datasets maps dataset key to its extraction settings.
	Datasets map[string]Dataset `yaml:"datasets" json:"datasets"`
}

// Default config values (used in resolution and validation).
const (
	defaultOutputBase = "webpage"

	// DefaultInterval is the sampling stride used when a dataset
	// doesn't set one.
	DefaultInterval = 10

	configFileName = "insightviz.yaml"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		OutputBase: defaultOutputBase,
		Datasets:   map[string]Dataset{},
	}
}

// Load loads configuration with proper precedence.
// Priority: flags > env > config file > defaults
func Load(flagOverrides *Config) (*Config, error) {
	cfg := Default()

	fileConfig, err := loadFromPath(configPath())
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if fileConfig != nil {
		cfg = merge(cfg, fileConfig)
	}

	cfg = applyEnv(cfg)

	if flagOverrides != nil {
		cfg = merge(cfg, flagOverrides)
	}

	// Fill in per-dataset defaults
	for key, ds := range cfg.Datasets {
		if ds.Interval == 0 {
			ds.Interval = DefaultInterval
			cfg.Datasets[key] = ds
		}
	}

	return cfg, nil
}

// Keys returns dataset keys in sorted order so batches process
// deterministically.
func (c *Config) Keys() []string {
	keys := make([]string, 0, len(c.Datasets))
	for key := range c.Datasets {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// configPath returns the config file path.
func configPath() string {
	if override := strings.TrimSpace(os.Getenv("INSIGHTVIZ_CONFIG")); override != "" {
		return override
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return filepath.Join(cwd, configFileName)
}

// loadFromPath loads config from a YAML file.
func loadFromPath(path string) (*Config, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return &cfg, nil
}

// applyEnv applies environment variable overrides.
func applyEnv(cfg *Config) *Config {
	if v := os.Getenv("INSIGHTVIZ_OUTPUT_BASE"); v != "" {
		cfg.OutputBase = v
	}
	if v := os.Getenv("INSIGHTVIZ_VERBOSE"); v == "true" || v == "1" {
		cfg.Verbose = true
	}
	return cfg
}

// mergeStr overwrites dst with src when src is non-empty.
func mergeStr(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

// merge merges src into dst, with src values taking precedence.
// Dataset entries from src replace same-keyed entries in dst.
func merge(dst, src *Config) *Config {
	mergeStr(&dst.OutputBase, src.OutputBase)
	if src.Verbose {
		dst.Verbose = true
	}
	for key, ds := range src.Datasets {
		dst.Datasets[key] = ds
	}
	return dst
}
