// Package config provides configuration loading and management for voloctree.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Octree parameters
	Octree struct {
		// MinCubeSize is the smallest allowed octree cell dimension in voxels
		MinCubeSize int `yaml:"minCubeSize"`
	} `yaml:"octree"`

	// Range parameters defining the inside intensity window
	Range struct {
		// Min and Max are the normalized (0..1) intensity bounds
		Min float64 `yaml:"min"`
		Max float64 `yaml:"max"`

		// Auto derives the range from the volume statistics instead of
		// using Min/Max
		Auto bool `yaml:"auto"`

		// DeviationFactor is the number of standard deviations around the
		// mean used when Auto is enabled
		DeviationFactor float64 `yaml:"deviationFactor"`
	} `yaml:"range"`

	// Output parameters
	Output struct {
		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`

		// MaskedSlicesDir is the directory for masked slice renderings;
		// empty disables them
		MaskedSlicesDir string `yaml:"maskedSlicesDir"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Octree.MinCubeSize = 8

	cfg.Range.Min = 0.25
	cfg.Range.Max = 1.0
	cfg.Range.Auto = false
	cfg.Range.DeviationFactor = 1.5

	cfg.Output.Verbose = true
	cfg.Output.MaskedSlicesDir = ""

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}
