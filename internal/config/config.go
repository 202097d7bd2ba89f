package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/veldrane/dealdeck/internal/drag"
)

// Config represents the application configuration
type Config struct {
	API         APIConfig   `yaml:"api"`
	Pipeline    string      `yaml:"pipeline"`
	Local       bool        `yaml:"local"`
	Board       BoardConfig `yaml:"board"`
	KeyMappings KeyMappings `yaml:"key_mappings"`
}

// APIConfig holds the CRM server connection settings. Empty base URL with
// Local unset means the embedded store is used.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
}

// BoardConfig tunes the board's interaction behavior.
type BoardConfig struct {
	// DragThreshold is the activation distance in cells before a press
	// becomes a drag.
	DragThreshold int `yaml:"drag_threshold"`
	// PersistTimeoutSeconds bounds each stage-move persist request.
	PersistTimeoutSeconds int `yaml:"persist_timeout_seconds"`
}

// PersistTimeout returns the configured persist timeout as a duration.
func (b BoardConfig) PersistTimeout() time.Duration {
	return time.Duration(b.PersistTimeoutSeconds) * time.Second
}

// Load loads config from the user's config directory.
// Returns default config if the file doesn't exist.
func Load() (*Config, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return Default(), nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return Default(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()
	return &config, nil
}

// Save writes the config to the user's config directory.
func (c *Config) Save() error {
	configPath, err := getConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(configPath, data, 0o644)
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// applyDefaults fills in any missing values.
func (c *Config) applyDefaults() {
	if c.Board.DragThreshold <= 0 {
		c.Board.DragThreshold = drag.DefaultThreshold
	}
	if c.Board.PersistTimeoutSeconds <= 0 {
		c.Board.PersistTimeoutSeconds = 10
	}
	c.KeyMappings.applyDefaults()
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "dealdeck", "config.yaml"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "dealdeck", "config.yaml"), nil
}
