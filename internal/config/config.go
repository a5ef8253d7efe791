// ABOUTME: Rehab configuration management with backend selection.
// ABOUTME: Reads config.json and REHAB_* environment overrides via viper; opens the storage backend.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/elliot226/1hp-troubleshooter-sub000/internal/charm"
	"github.com/elliot226/1hp-troubleshooter-sub000/internal/storage"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. REHAB_BACKEND=charm.
const EnvPrefix = "REHAB"

const (
	BackendSQLite = "sqlite"
	BackendCharm  = "charm"

	DefaultUserID     = "local"
	DefaultListenAddr = "127.0.0.1:8484"
)

// keys lists every setting so environment overrides reach Unmarshal.
var keys = []string{
	"backend", "data_dir", "user_id", "log_level", "log_format", "log_file", "listen_addr", "charm_host",
}

// Config stores rehab tool configuration.
type Config struct {
	// Backend selects the storage backend: "sqlite" (default) or "charm".
	Backend string `json:"backend,omitempty" mapstructure:"backend"`

	// DataDir is the root directory for data storage. SQLite puts rehab.db here.
	// Supports ~ expansion for home directory. Defaults to ~/.local/share/rehab.
	DataDir string `json:"data_dir,omitempty" mapstructure:"data_dir"`

	// UserID is the user the CLI acts for when --user is not given.
	UserID string `json:"user_id,omitempty" mapstructure:"user_id"`

	LogLevel  string `json:"log_level,omitempty" mapstructure:"log_level"`
	LogFormat string `json:"log_format,omitempty" mapstructure:"log_format"`
	LogFile   string `json:"log_file,omitempty" mapstructure:"log_file"`

	// ListenAddr is the HTTP API address for `rehab serve`.
	ListenAddr string `json:"listen_addr,omitempty" mapstructure:"listen_addr"`

	// CharmHost is the Charm server used by the charm backend.
	CharmHost string `json:"charm_host,omitempty" mapstructure:"charm_host"`
}

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return BackendSQLite
	}
	return strings.ToLower(c.Backend)
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetUserID returns the default user, "local" when unset.
func (c *Config) GetUserID() string {
	if c.UserID == "" {
		return DefaultUserID
	}
	return c.UserID
}

// GetListenAddr returns the HTTP listen address.
func (c *Config) GetListenAddr() string {
	if c.ListenAddr == "" {
		return DefaultListenAddr
	}
	return c.ListenAddr
}

// GetCharmHost returns the Charm server host.
func (c *Config) GetCharmHost() string {
	if c.CharmHost == "" {
		return charm.DefaultHost
	}
	return c.CharmHost
}

// LogJSON reports whether logs should use the JSON formatter.
func (c *Config) LogJSON() bool {
	return strings.EqualFold(c.LogFormat, "json")
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

// OpenStorage creates a Repository implementation based on the configured backend.
func (c *Config) OpenStorage() (storage.Repository, error) {
	return c.OpenBackend(c.GetBackend())
}

// OpenBackend opens the named backend with this config's locations.
func (c *Config) OpenBackend(backend string) (storage.Repository, error) {
	switch backend = strings.ToLower(backend); backend {
	case BackendSQLite:
		return storage.Open(filepath.Join(c.GetDataDir(), storage.DefaultDBName))
	case BackendCharm:
		return charm.InitClient(c.GetCharmHost())
	default:
		return nil, fmt.Errorf("unknown backend: %q", backend)
	}
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "rehab", "config.json")
}

// Load reads config from disk and applies REHAB_* environment overrides.
// A missing config file is not an error.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	for _, k := range keys {
		v.SetDefault(k, "")
	}

	path := GetConfigPath()
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
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
