package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/thenoetrevino/tablero/internal/config/colors"
	"github.com/thenoetrevino/tablero/internal/logging"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Table       TableConfig        `yaml:"table"`
	Database    DatabaseConfig     `yaml:"database"`
	Daemon      DaemonConfig       `yaml:"daemon"`
	Events      EventsConfig       `yaml:"events"`
	Logging     logging.Config     `yaml:"logging"`
	KeyMappings KeyMappings        `yaml:"key_mappings"`
	ColorScheme colors.ColorScheme `yaml:"theme"`
}

// TableConfig configures the row collection
type TableConfig struct {
	MaxLength       int           `yaml:"max_length"`       // Create rejects beyond this size
	CreatorPosition string        `yaml:"creator_position"` // top | bottom | hidden
	SaveDelay       time.Duration `yaml:"save_delay"`       // simulated commit latency in the TUI
	IDFormat        string        `yaml:"id_format"`        // numeric | uuid
	MatchKey        string        `yaml:"match_key"`        // id | index
	MetricsAddr     string        `yaml:"metrics_addr"`     // serves TUI collection metrics; empty disables
}

// DatabaseConfig configures the SQLite store
type DatabaseConfig struct {
	Path string `yaml:"path"` // empty uses ~/.tablero/tablero.db
}

// DaemonConfig configures the event daemon and its clients
type DaemonConfig struct {
	Socket       string `yaml:"socket"`        // empty uses ~/.tablero/tablero.sock
	MetricsAddr  string `yaml:"metrics_addr"`  // empty disables /metrics
	ClientBuffer int    `yaml:"client_buffer"` // per-client send buffer
}

// EventsConfig configures the event client
type EventsConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Defaults
const (
	DefaultMaxLength       = 5
	DefaultCreatorPosition = "bottom"
	DefaultSaveDelay       = 2 * time.Second
	DefaultIDFormat        = "numeric"
	DefaultMatchKey        = "id"
	DefaultClientBuffer    = 100
	DefaultDebounce        = 100 * time.Millisecond
)

// Default returns the configuration used when no file exists
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// loadThemeFile merges the theme from TABLERO_THEME_FILE if set
func loadThemeFile(config *Config) {
	themeFile := os.Getenv("TABLERO_THEME_FILE")
	if themeFile == "" {
		return
	}

	themeData, err := os.ReadFile(themeFile)
	if err != nil {
		return
	}

	var themeConfig struct {
		Theme colors.ColorScheme `yaml:"theme"`
	}

	if yaml.Unmarshal(themeData, &themeConfig) == nil {
		config.ColorScheme.MergeFrom(themeConfig.Theme)
	}
}

// applyEnv applies environment overrides
func applyEnv(config *Config) {
	if v := os.Getenv("TABLERO_EVENT_DEBOUNCE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
			config.Events.Debounce = time.Duration(ms) * time.Millisecond
		}
	}
	if v := os.Getenv("TABLERO_DAEMON_CLIENT_BUFFER"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.Daemon.ClientBuffer = n
		}
	}
}

// Load loads config from the user's config directory
// Returns default config if file doesn't exist
func Load() (*Config, error) {
	configPath, err := getConfigPath()
	if err != nil {
		config := Default()
		loadThemeFile(config)
		applyEnv(config)
		return config, nil
	}

	return LoadFile(configPath)
}

// LoadFile loads config from path. A missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	var config Config

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	loadThemeFile(&config)

	// Fill in any missing values with defaults
	config.applyDefaults()
	applyEnv(&config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &config, nil
}

// Validate checks enumerated values
func (c *Config) Validate() error {
	switch c.Table.CreatorPosition {
	case "top", "bottom", "hidden":
	default:
		return fmt.Errorf("table.creator_position must be top, bottom or hidden, got %q", c.Table.CreatorPosition)
	}
	switch c.Table.IDFormat {
	case "numeric", "uuid":
	default:
		return fmt.Errorf("table.id_format must be numeric or uuid, got %q", c.Table.IDFormat)
	}
	switch c.Table.MatchKey {
	case "id", "index":
	default:
		return fmt.Errorf("table.match_key must be id or index, got %q", c.Table.MatchKey)
	}
	if c.Table.MaxLength < 0 {
		return fmt.Errorf("table.max_length must not be negative, got %d", c.Table.MaxLength)
	}
	return nil
}

// Save saves the config to the user's config directory
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

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "tablero", "config.yaml"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".config", "tablero", "config.yaml"), nil
}

// DefaultSocketPath returns ~/.tablero/tablero.sock
func DefaultSocketPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".tablero", "tablero.sock"), nil
}

// SocketPath returns the configured socket or the default one
func (c *Config) SocketPath() (string, error) {
	if c.Daemon.Socket != "" {
		return c.Daemon.Socket, nil
	}
	return DefaultSocketPath()
}

// applyDefaults fills in missing configuration with defaults.
// max_length 0 is treated as unset; use a large value for an effectively unlimited table.
func (c *Config) applyDefaults() {
	if c.Table.MaxLength == 0 {
		c.Table.MaxLength = DefaultMaxLength
	}
	if c.Table.CreatorPosition == "" {
		c.Table.CreatorPosition = DefaultCreatorPosition
	}
	if c.Table.SaveDelay == 0 {
		c.Table.SaveDelay = DefaultSaveDelay
	}
	if c.Table.IDFormat == "" {
		c.Table.IDFormat = DefaultIDFormat
	}
	if c.Table.MatchKey == "" {
		c.Table.MatchKey = DefaultMatchKey
	}
	if c.Daemon.ClientBuffer == 0 {
		c.Daemon.ClientBuffer = DefaultClientBuffer
	}
	if c.Events.Debounce == 0 {
		c.Events.Debounce = DefaultDebounce
	}

	c.KeyMappings.applyDefaults()
	c.ColorScheme.ApplyDefaults()
}
