// Package config loads contactbridge settings from YAML with environment
// overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/spachava753/contactbridge/contactkey"
)

// Environment variables that override file settings.
const (
	EnvDatabase = "CONTACTBRIDGE_DB"
	EnvMode     = "CONTACTBRIDGE_MODE"
	EnvLogLevel = "CONTACTBRIDGE_LOG_LEVEL"
)

// Config holds all contactbridge configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store"`
	Contacts ContactsConfig `yaml:"contacts"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// StoreConfig configures the sqlite contact store.
type StoreConfig struct {
	Path        string `yaml:"path"`
	ReadOnly    bool   `yaml:"read_only"`
	BusyTimeout string `yaml:"busy_timeout"`
}

// ContactsConfig configures contact reads.
type ContactsConfig struct {
	Mode           string `yaml:"mode"` // unified, single
	PageLimit      int    `yaml:"page_limit"`
	WithAvatars    bool   `yaml:"with_avatars"`
	HighResAvatars bool   `yaml:"high_res_avatars"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Path:        "contacts.db",
			BusyTimeout: "5s",
		},
		Contacts: ContactsConfig{
			Mode:      string(contactkey.ModeUnified),
			PageLimit: 50,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("config: reading %s failed: %w", path, err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s failed: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: creating config directory failed: %w", err)
		}
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshaling config failed: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: writing %s failed: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := strings.TrimSpace(os.Getenv(EnvDatabase)); v != "" {
		c.Store.Path = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvMode)); v != "" {
		c.Contacts.Mode = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.Logging.Level = v
	}
}

// BusyTimeout returns the store busy timeout as a duration.
func (c *Config) BusyTimeout() time.Duration {
	d, err := time.ParseDuration(c.Store.BusyTimeout)
	if err != nil || d < 0 {
		return 5 * time.Second
	}
	return d
}

// Mode returns the configured addressing mode, defaulting to unified.
func (c *Config) Mode() contactkey.Mode {
	mode, err := contactkey.ParseMode(c.Contacts.Mode)
	if err != nil {
		return contactkey.ModeUnified
	}
	return mode
}

// ValidLogLevels lists the accepted logging levels.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Store.Path) == "" {
		return fmt.Errorf("config: store path not configured (set store.path or %s)", EnvDatabase)
	}
	if _, err := contactkey.ParseMode(c.Contacts.Mode); err != nil {
		return fmt.Errorf("config: invalid contacts mode %q", c.Contacts.Mode)
	}
	if c.Contacts.PageLimit < 1 {
		return fmt.Errorf("config: page_limit must be positive, got %d", c.Contacts.PageLimit)
	}
	if c.Store.BusyTimeout != "" {
		if _, err := time.ParseDuration(c.Store.BusyTimeout); err != nil {
			return fmt.Errorf("config: invalid busy_timeout %q: %w", c.Store.BusyTimeout, err)
		}
	}

	validLevel := strings.TrimSpace(c.Logging.Level) == ""
	for _, level := range ValidLogLevels {
		if strings.EqualFold(c.Logging.Level, level) {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("config: invalid log level %q (valid: %v)", c.Logging.Level, ValidLogLevels)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "json", "console":
	default:
		return fmt.Errorf("config: invalid log format %q", c.Logging.Format)
	}
	return nil
}
