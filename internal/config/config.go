// ABOUTME: Stride configuration management with backend selection
// ABOUTME: Handles settings, env overrides, and storage/identity factories

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/harper/stride/internal/charm"
	"github.com/harper/stride/internal/identity"
	"github.com/harper/stride/internal/logging"
	"github.com/harper/stride/internal/models"
	"github.com/harper/stride/internal/storage"
)

// Backends understood by OpenStorage.
const (
	BackendSQLite = "sqlite"
	BackendCharm  = "charm"
)

// DefaultUserID scopes data when no account is linked.
const DefaultUserID = "local"

// Config stores stride configuration.
// Environment variables override values read from the file.
type Config struct {
	// Backend selects the storage backend: "sqlite" (default) or "charm".
	Backend string `json:"backend,omitempty" env:"STRIDE_BACKEND"`

	// DataDir is the root directory for local data (database, live session).
	// Supports ~ expansion. Defaults to ~/.local/share/stride.
	DataDir string `json:"data_dir,omitempty" env:"STRIDE_DATA_DIR"`

	// UserID is used when no charm account is linked.
	UserID string `json:"user_id,omitempty" env:"STRIDE_USER"`

	// GoalMeters is the distance goal reported after each activity.
	GoalMeters float64 `json:"goal_meters,omitempty" env:"STRIDE_GOAL_METERS"`

	LogLevel  string `json:"log_level,omitempty" env:"STRIDE_LOG_LEVEL"`
	CharmHost string `json:"charm_host,omitempty" env:"CHARM_HOST"`

	// fromFile and fromEnv snapshot the values before and after environment
	// overrides so Save can keep one-off overrides out of the file.
	fromFile *Config
	fromEnv  *Config
}

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return BackendSQLite
	}
	return c.Backend
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return defaultDataDir()
	}
	return ExpandPath(c.DataDir)
}

func (c *Config) GetUserID() string {
	if strings.TrimSpace(c.UserID) == "" {
		return DefaultUserID
	}
	return c.UserID
}

func (c *Config) GetGoalMeters() float64 {
	if c.GoalMeters <= 0 {
		return models.DefaultGoalMeters
	}
	return c.GoalMeters
}

func (c *Config) GetLogLevel() string {
	if c.LogLevel == "" {
		return logging.DefaultLevel
	}
	return c.LogLevel
}

func (c *Config) GetCharmHost() string {
	if c.CharmHost == "" {
		return charm.DefaultCharmHost
	}
	return c.CharmHost
}

// defaultDataDir returns the default XDG data directory for stride.
func defaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "stride")
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

// DBPath is where the sqlite backend keeps its database.
func (c *Config) DBPath() string {
	return filepath.Join(c.GetDataDir(), "stride.db")
}

// SessionStorePath is the directory of the live session store.
func (c *Config) SessionStorePath() string {
	return filepath.Join(c.GetDataDir(), "session")
}

// OpenStorage creates a Repository implementation based on the configured backend.
func (c *Config) OpenStorage() (storage.Repository, error) {
	switch backend := c.GetBackend(); backend {
	case BackendSQLite:
		return storage.NewSQLiteDB(c.DBPath())
	case BackendCharm:
		return charm.NewClient(&charm.Config{CharmHost: c.GetCharmHost(), AutoSync: true})
	default:
		return nil, fmt.Errorf("unknown backend: %q", backend)
	}
}

// Identity returns the provider that names the current user.
// The charm backend prefers the linked charm account.
func (c *Config) Identity() identity.Provider {
	local := identity.Static(c.GetUserID())
	if c.GetBackend() == BackendCharm {
		return identity.Fallback{identity.NewCharm(), local}
	}
	return local
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "stride", "config.json")
}

// Load reads config from disk, creating a default file on first run,
// then applies environment overrides.
func Load() (*Config, error) {
	path := GetConfigPath()
	cfg := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		cfg = &Config{Backend: BackendSQLite, GoalMeters: models.DefaultGoalMeters}
		if saveErr := cfg.Save(); saveErr != nil {
			fmt.Fprintf(os.Stderr, "warning: could not save default config: %v\n", saveErr)
		}
	case err != nil:
		return nil, err
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	file := *cfg
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	merged := *cfg
	cfg.fromFile, cfg.fromEnv = &file, &merged
	return cfg, nil
}

// Save writes config to disk. Fields still holding an environment override
// are written with their file value; fields changed since Load are written as set.
func (c *Config) Save() error {
	out := c.persisted()
	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return err
	}
	if err := atomicWrite(GetConfigPath(), data); err != nil {
		return err
	}
	if c.fromFile != nil {
		merged := *c
		merged.fromFile, merged.fromEnv = nil, nil
		c.fromFile, c.fromEnv = &out, &merged
	}
	return nil
}

// persisted returns the values that belong in the config file.
func (c *Config) persisted() Config {
	out := *c
	out.fromFile, out.fromEnv = nil, nil
	if c.fromFile == nil || c.fromEnv == nil {
		return out
	}
	file, over := c.fromFile, c.fromEnv
	keepFile := func(dst *string, fileVal, overVal string) {
		if overVal != fileVal && *dst == overVal {
			*dst = fileVal
		}
	}
	keepFile(&out.Backend, file.Backend, over.Backend)
	keepFile(&out.DataDir, file.DataDir, over.DataDir)
	keepFile(&out.UserID, file.UserID, over.UserID)
	keepFile(&out.LogLevel, file.LogLevel, over.LogLevel)
	keepFile(&out.CharmHost, file.CharmHost, over.CharmHost)
	if over.GoalMeters != file.GoalMeters && out.GoalMeters == over.GoalMeters {
		out.GoalMeters = file.GoalMeters
	}
	return out
}

// atomicWrite replaces path with data via a temp file in the same directory.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
