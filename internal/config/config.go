// ABOUTME: Lift configuration management.
// ABOUTME: Handles data location, logging settings, the active user and bodyweight fallback.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/harperreed/lift/internal/logging"
	"github.com/harperreed/lift/internal/storage"
)

// Config stores lift configuration.
type Config struct {
	// DataDir is the root directory for data storage. lift.db and the flags/
	// store live here. Supports ~ expansion. Defaults to ~/.local/share/lift.
	DataDir string `json:"data_dir,omitempty"`

	// LogLevel is debug, info, warn or error. Defaults to warn for the CLI.
	LogLevel string `json:"log_level,omitempty"`

	// LogFile, when set, receives a rotated copy of the log.
	LogFile string `json:"log_file,omitempty"`

	// UserID selects the user whose workouts commands act on. Zero means the
	// first user, which is the seeded default user.
	UserID int64 `json:"user_id,omitempty"`

	// DefaultBodyweight is used for bodyweight sets when the profile has no
	// weight. Zero means 150.
	DefaultBodyweight float64 `json:"default_bodyweight,omitempty"`
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// DBPath returns the SQLite database path.
func (c *Config) DBPath() string {
	return filepath.Join(c.GetDataDir(), "lift.db")
}

// FlagsDir returns the directory of the first-launch flag store.
func (c *Config) FlagsDir() string {
	return filepath.Join(c.GetDataDir(), "flags")
}

// GetLogLevel returns the configured log level, defaulting to "warn".
func (c *Config) GetLogLevel() string {
	if c.LogLevel == "" {
		return "warn"
	}
	return c.LogLevel
}

// LoggingOptions converts the config into logger options.
func (c *Config) LoggingOptions() logging.Options {
	return logging.Options{
		Level: c.GetLogLevel(),
		File:  ExpandPath(c.LogFile),
	}
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(strings.ToLower(c.GetLogLevel())); err != nil {
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	if c.UserID < 0 {
		return fmt.Errorf("invalid user_id %d", c.UserID)
	}
	if c.DefaultBodyweight < 0 {
		return fmt.Errorf("invalid default_bodyweight %v", c.DefaultBodyweight)
	}
	return nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStorage opens the SQLite database in the data directory.
func (c *Config) OpenStorage() (*storage.DB, error) {
	return storage.Open(c.DBPath())
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "lift", "config.json")
}

// Load reads config from disk.
func Load() (*Config, error) {
	path := GetConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
