// Package config provides configuration loading and management for dicommpr.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Processing parameters
	Processing struct {
		// Workers bounds the parallel slice-extraction fan-out
		Workers int `yaml:"workers"`
	} `yaml:"processing"`

	// Display parameters
	Display struct {
		// WindowCenter and WindowWidth override the per-slice window
		// metadata when WindowWidth is positive
		WindowCenter float64 `yaml:"windowCenter"`
		WindowWidth  float64 `yaml:"windowWidth"`
	} `yaml:"display"`

	// Server parameters
	Server struct {
		// Listen is the host:port the HTTP server binds to
		Listen string `yaml:"listen"`

		// MaxUploadMB caps the size of an uploaded archive
		MaxUploadMB int `yaml:"maxUploadMB"`

		// LogLevel is one of debug, info, warn, error, off
		LogLevel string `yaml:"logLevel"`

		// SessionTTLMinutes is how long an idle session's volume is kept
		// in memory before eviction; 0 disables expiry
		SessionTTLMinutes int `yaml:"sessionTTLMinutes"`
	} `yaml:"server"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Processing.Workers = runtime.NumCPU()

	cfg.Server.Listen = ":5000"
	cfg.Server.MaxUploadMB = 500
	cfg.Server.LogLevel = "info"
	cfg.Server.SessionTTLMinutes = 60

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
