// Package config provides YAML-based configuration for the libreScope
// backend, with defaults applied for every missing field.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// AppConfig is the root configuration structure.
type AppConfig struct {
	Serial  SerialConfig  `yaml:"serial"`
	Data    DataConfig    `yaml:"data"`
	Server  ServerConfig  `yaml:"server"`
	Archive ArchiveConfig `yaml:"archive"`
}

// SerialConfig contains device link settings.
type SerialConfig struct {
	BaudRate      int `yaml:"baud_rate"`
	ReadTimeoutMs int `yaml:"read_timeout_ms"`
}

// DataConfig contains store, logging, and file path settings.
type DataConfig struct {
	MaxPoints         int    `yaml:"max_points"`
	LogTickIntervalMs int    `yaml:"log_tick_interval_ms"`
	DatabaseFile      string `yaml:"database_file"`
	DefaultLayoutFile string `yaml:"default_layout_file"`
	LogDirectory      string `yaml:"log_directory"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port         int    `yaml:"port"`
	BindAddress  string `yaml:"bind_address"`
	EnableCORS   bool   `yaml:"enable_cors"`
	AllowOrigins string `yaml:"allow_origins"`
}

// ArchiveConfig controls the DuckDB telemetry archive.
type ArchiveConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Directory string `yaml:"directory"`
	BatchSize int    `yaml:"batch_size"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Serial: SerialConfig{
			BaudRate:      115200,
			ReadTimeoutMs: 5,
		},
		Data: DataConfig{
			MaxPoints:         5000,
			LogTickIntervalMs: 5,
			DatabaseFile:      "./database.json",
			DefaultLayoutFile: "./default_layout.json",
			LogDirectory:      "./data/logs",
		},
		Server: ServerConfig{
			Port:         8089,
			BindAddress:  "0.0.0.0",
			EnableCORS:   true,
			AllowOrigins: "*",
		},
		Archive: ArchiveConfig{
			Enabled:   false,
			Directory: "./data/archive",
			BatchSize: 500,
		},
	}
}

// LoadConfig loads configuration from a YAML file. A missing file writes the
// defaults so the first run produces an editable config.
func LoadConfig(configPath string) (*AppConfig, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := DefaultConfig()
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		config.resolvePaths(filepath.Dir(configPath))
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Unmarshal over the defaults so omitted fields keep their values.
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyEnvironmentOverrides()
	config.resolvePaths(filepath.Dir(configPath))

	return config, nil
}

// Save writes the configuration as YAML.
func (c *AppConfig) Save(configPath string) error {
	output, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte("# libreScope configuration\n# This file is auto-generated on first run\n\n")
	if err := os.WriteFile(configPath, append(header, output...), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// EnsureDirectories creates the data directories the application writes to.
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{c.Data.LogDirectory}
	if c.Archive.Enabled {
		dirs = append(dirs, c.Archive.Directory)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values.
func (c *AppConfig) applyEnvironmentOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
	if logDir := os.Getenv("LOG_DIR"); logDir != "" {
		c.Data.LogDirectory = logDir
	}
	if baud := os.Getenv("BAUD_RATE"); baud != "" {
		if b, err := strconv.Atoi(baud); err == nil {
			c.Serial.BaudRate = b
		}
	}
}

// resolvePaths converts relative paths to absolute based on the config file
// location, so the working directory does not matter.
func (c *AppConfig) resolvePaths(configDir string) {
	resolve := func(p *string) {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(configDir, *p)
		}
	}
	resolve(&c.Data.DatabaseFile)
	resolve(&c.Data.DefaultLayoutFile)
	resolve(&c.Data.LogDirectory)
	resolve(&c.Archive.Directory)
}
