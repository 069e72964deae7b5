package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/arcanaland/deckcheck/internal/urlbuilder"
)

// Environment variables that override the config file
const (
	EnvBaseURL        = "DECKCHECK_BASE_URL"
	EnvTimeoutSeconds = "DECKCHECK_TIMEOUT_SECONDS"
	EnvLogLevel       = "DECKCHECK_LOG_LEVEL"
)

// Config represents the application configuration
type Config struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	LogLevel       string `toml:"log_level"`
	PileName       string `toml:"pile_name"`
}

// Default returns the configuration written on first use
func Default() *Config {
	return &Config{
		BaseURL:        urlbuilder.DefaultBaseURL,
		TimeoutSeconds: 10,
		LogLevel:       "info",
		PileName:       "test_pile",
	}
}

// Timeout returns the request timeout as a duration
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// GetXDGConfigHome returns XDG_CONFIG_HOME or default path
func GetXDGConfigHome() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return xdgConfig
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config")
}

// GetCacheDir returns the deckcheck directory under XDG_CACHE_HOME
func GetCacheDir() string {
	if xdgCache := os.Getenv("XDG_CACHE_HOME"); xdgCache != "" {
		return filepath.Join(xdgCache, "deckcheck")
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "deckcheck")
	}
	return filepath.Join(homeDir, ".cache", "deckcheck")
}

// GetConfigFilePath returns the path to the config file
func GetConfigFilePath() string {
	return filepath.Join(GetXDGConfigHome(), "deckcheck", "config.toml")
}

// GetPresetsFilePath returns the path to user-defined deck presets
func GetPresetsFilePath() string {
	return filepath.Join(GetXDGConfigHome(), "deckcheck", "presets.toml")
}

// LoadEnv loads a .env file from the working directory if there is one
func LoadEnv() error {
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(".env"); err != nil {
		return fmt.Errorf("error loading .env file: %v", err)
	}
	return nil
}

// LoadConfig loads the config file and applies environment overrides
func LoadConfig() (*Config, error) {
	configPath := GetConfigFilePath()

	var config *Config
	// Create default config if it doesn't exist
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config, err = createDefaultConfig()
		if err != nil {
			return nil, err
		}
	} else {
		config = Default()
		if _, err := toml.DecodeFile(configPath, config); err != nil {
			return nil, fmt.Errorf("error decoding config file: %v", err)
		}
	}

	if err := applyEnv(config); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnv overrides fields from DECKCHECK_* variables
func applyEnv(config *Config) error {
	if v := os.Getenv(EnvBaseURL); v != "" {
		config.BaseURL = v
	}
	if v := os.Getenv(EnvTimeoutSeconds); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil || seconds <= 0 {
			return fmt.Errorf("invalid %s: %q", EnvTimeoutSeconds, v)
		}
		config.TimeoutSeconds = seconds
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		config.LogLevel = v
	}
	return nil
}

// createDefaultConfig creates a default config file
func createDefaultConfig() (*Config, error) {
	configPath := GetConfigFilePath()
	configDir := filepath.Dir(configPath)

	// Ensure the config directory exists
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("error creating config directory: %v", err)
	}

	config := Default()

	if err := writeConfig(configPath, config); err != nil {
		return nil, err
	}

	return config, nil
}

// SetBaseURL stores a new base URL in the config file
func SetBaseURL(baseURL string) error {
	configPath := GetConfigFilePath()

	config := Default()
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, config); err != nil {
			return fmt.Errorf("error decoding config file: %v", err)
		}
	} else if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %v", err)
	}

	config.BaseURL = baseURL

	return writeConfig(configPath, config)
}

func writeConfig(path string, config *Config) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating config file: %v", err)
	}
	defer file.Close()

	// Encode the config to TOML
	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("error encoding config: %v", err)
	}

	return nil
}
