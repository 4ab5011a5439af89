package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/thenoetrevino/tasknote/internal/config/colors"
)

// Environment overrides, applied after the config file
const (
	EnvDataDir   = "TASKNOTE_DATA_DIR"
	EnvDatabase  = "TASKNOTE_DB"
	EnvThemeFile = "TASKNOTE_THEME_FILE"
	EnvMetrics   = "TASKNOTE_METRICS_ADDR"
)

const (
	defaultAutosaveDelayMs = 500
	defaultLogLevel        = "info"
)

// ColorScheme is the CLI color configuration
type ColorScheme = colors.ColorScheme

// Config represents the application configuration
type Config struct {
	// DataDir holds the database, daemon socket and logs
	DataDir  string `yaml:"data_dir"`
	Database string `yaml:"database"`
	Socket   string `yaml:"socket"`

	// AutosaveDelayMs is the quiet period before an edit is written
	AutosaveDelayMs int    `yaml:"autosave_delay_ms" validate:"gte=0,lte=60000"`
	LogLevel        string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`

	// MetricsAddr is where the daemon serves Prometheus metrics; empty
	// disables the endpoint
	MetricsAddr string `yaml:"metrics_addr,omitempty"`

	ColorScheme ColorScheme `yaml:"theme"`
}

var validate = validator.New()

// Default returns the configuration used when no file exists
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// AutosaveDelay returns the autosave quiet period as a duration
func (c *Config) AutosaveDelay() time.Duration {
	return time.Duration(c.AutosaveDelayMs) * time.Millisecond
}

// Validate checks field ranges and color formats
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// loadThemeFile loads and merges theme from TASKNOTE_THEME_FILE environment variable
func loadThemeFile(config *Config) {
	themeFile := os.Getenv(EnvThemeFile)
	if themeFile == "" {
		return
	}

	themeData, err := os.ReadFile(themeFile)
	if err != nil {
		return
	}

	var themeConfig struct {
		Theme ColorScheme `yaml:"theme"`
	}

	if yaml.Unmarshal(themeData, &themeConfig) == nil {
		config.ColorScheme.MergeFrom(themeConfig.Theme)
	}
}

// Load loads config from the user's config directory
// Returns default config if file doesn't exist
func Load() (*Config, error) {
	// A .env file in the working directory may set the TASKNOTE_* overrides
	_ = godotenv.Load()

	configPath, err := getConfigPath()
	if err != nil {
		// Return default config if we can't determine config path
		return finish(&Config{})
	}
	return LoadFile(configPath)
}

// LoadFile loads config from path. A missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return finish(&Config{})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return finish(&config)
}

// finish applies environment overrides and defaults, then validates
func finish(config *Config) (*Config, error) {
	if dir := os.Getenv(EnvDataDir); dir != "" {
		config.DataDir = dir
	}
	if db := os.Getenv(EnvDatabase); db != "" {
		config.Database = db
	}
	if addr := os.Getenv(EnvMetrics); addr != "" {
		config.MetricsAddr = addr
	}

	loadThemeFile(config)

	// Fill in any missing values with defaults
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Save saves the config to the user's config directory
func (c *Config) Save() error {
	configPath, err := getConfigPath()
	if err != nil {
		return err
	}

	// Create config directory if it doesn't exist
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0o644)
}

// Path returns the config file location
func Path() (string, error) {
	return getConfigPath()
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	// Try XDG_CONFIG_HOME first
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "tasknote", "config.yaml"), nil
	}

	// Fall back to ~/.config
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".config", "tasknote", "config.yaml"), nil
}

// applyDefaults fills in missing configuration with defaults
func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.DataDir = filepath.Join(home, ".tasknote")
		} else {
			c.DataDir = ".tasknote"
		}
	}
	if c.Database == "" {
		c.Database = filepath.Join(c.DataDir, "tasknote.db")
	}
	if c.Socket == "" {
		c.Socket = filepath.Join(c.DataDir, "tasknote.sock")
	}
	if c.AutosaveDelayMs == 0 {
		c.AutosaveDelayMs = defaultAutosaveDelayMs
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	c.ColorScheme.ApplyDefaults()
}
