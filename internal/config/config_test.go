// ABOUTME: Tests for stride config functionality
// ABOUTME: Verifies load, save, env overrides, path resolution, defaults, and factories

package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harper/stride/internal/charm"
	"github.com/harper/stride/internal/identity"
	"github.com/harper/stride/internal/storage"
)

// isolate points config and data at a temp dir and clears env overrides.
func isolate(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	t.Setenv("XDG_DATA_HOME", tmpDir)
	for _, key := range []string{"STRIDE_BACKEND", "STRIDE_DATA_DIR", "STRIDE_USER", "STRIDE_GOAL_METERS", "STRIDE_LOG_LEVEL", "CHARM_HOST"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return tmpDir
}

func TestGetConfigPath(t *testing.T) {
	path := GetConfigPath()
	if path == "" {
		t.Error("GetConfigPath returned empty string")
	}
	if !filepath.IsAbs(path) {
		t.Errorf("GetConfigPath returned non-absolute path: %s", path)
	}
}

func TestGetConfigPathWithXDGConfigHome(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	path := GetConfigPath()
	if !strings.HasPrefix(path, tmpDir) {
		t.Errorf("GetConfigPath should use XDG_CONFIG_HOME, got %s", path)
	}
	if !strings.HasSuffix(path, filepath.Join("stride", "config.json")) {
		t.Errorf("GetConfigPath should end with stride/config.json, got %s", path)
	}
}

func TestGetConfigPathWithoutXDGConfigHome(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")

	path := GetConfigPath()
	if !strings.Contains(path, ".config") {
		t.Errorf("GetConfigPath should use .config fallback, got %s", path)
	}
}

func TestLoadNonExistent(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed on non-existent config: %v", err)
	}
	if cfg.GetBackend() != BackendSQLite {
		t.Errorf("expected default backend 'sqlite', got %q", cfg.Backend)
	}
	if cfg.GetGoalMeters() != 5000 {
		t.Errorf("expected default goal 5000, got %v", cfg.GoalMeters)
	}

	data, err := os.ReadFile(GetConfigPath())
	if err != nil {
		t.Fatalf("expected config file to be auto-created: %v", err)
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("auto-created config is not valid JSON: %v", err)
	}
	if raw["goal_meters"] != 5000.0 {
		t.Errorf("expected goal_meters 5000 in file, got %v", raw["goal_meters"])
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	tmpDir := isolate(t)

	configDir := filepath.Join(tmpDir, "stride")
	if err := os.MkdirAll(configDir, 0750); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.json"), []byte("invalid json {{{"), 0600); err != nil {
		t.Fatalf("failed to write invalid config: %v", err)
	}

	if _, err := Load(); err == nil {
		t.Error("Load should fail on invalid JSON")
	}
}

func TestSaveAndLoad(t *testing.T) {
	isolate(t)

	cfg := &Config{
		Backend:    BackendCharm,
		DataDir:    "~/my-data",
		UserID:     "harper",
		GoalMeters: 10000,
		LogLevel:   "debug",
	}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}

	data, _ := os.ReadFile(GetConfigPath())
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal raw JSON: %v", err)
	}
	if raw["data_dir"] != "~/my-data" || raw["user_id"] != "harper" {
		t.Errorf("unexpected JSON keys: %v", raw)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	tmpDir := isolate(t)

	if err := (&Config{}).Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	entries, err := os.ReadDir(filepath.Join(tmpDir, "stride"))
	if err != nil {
		t.Fatalf("read config dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "config.json" {
		t.Errorf("expected only config.json, got %v", entries)
	}
}

func TestEnvOverrides(t *testing.T) {
	isolate(t)

	if err := (&Config{Backend: BackendSQLite, UserID: "file-user", GoalMeters: 3000}).Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Setenv("STRIDE_BACKEND", "charm")
	t.Setenv("STRIDE_USER", "env-user")
	t.Setenv("STRIDE_GOAL_METERS", "7500")
	t.Setenv("STRIDE_LOG_LEVEL", "info")
	t.Setenv("CHARM_HOST", "charm.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Backend != BackendCharm || cfg.UserID != "env-user" || cfg.GoalMeters != 7500 {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
	if cfg.GetLogLevel() != "info" || cfg.GetCharmHost() != "charm.example.com" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestEnvOverrideBadNumber(t *testing.T) {
	isolate(t)
	t.Setenv("STRIDE_GOAL_METERS", "far")

	if _, err := Load(); err == nil {
		t.Error("expected error for non-numeric goal")
	}
}

func TestSaveKeepsEnvOverridesOutOfFile(t *testing.T) {
	isolate(t)

	if err := (&Config{Backend: BackendSQLite, DataDir: "/srv/stride", GoalMeters: 3000}).Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	t.Setenv("STRIDE_BACKEND", "charm")
	t.Setenv("STRIDE_DATA_DIR", "/tmp/scratch")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cfg.GoalMeters = 100
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if cfg.Backend != BackendCharm || cfg.DataDir != "/tmp/scratch" {
		t.Errorf("in-memory overrides lost after Save: %+v", cfg)
	}

	raw := readConfigJSON(t)
	if raw["backend"] != BackendSQLite || raw["data_dir"] != "/srv/stride" {
		t.Errorf("env override written to file: %v", raw)
	}
	if raw["goal_meters"] != float64(100) {
		t.Errorf("goal_meters = %v, want 100", raw["goal_meters"])
	}
}

func TestSaveWritesFieldChangedAfterEnvOverride(t *testing.T) {
	isolate(t)

	if err := (&Config{Backend: BackendSQLite, GoalMeters: 3000}).Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	t.Setenv("STRIDE_GOAL_METERS", "7500")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cfg.GoalMeters = 9000
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if raw := readConfigJSON(t); raw["goal_meters"] != float64(9000) {
		t.Errorf("goal_meters = %v, want 9000", raw["goal_meters"])
	}

	// a second save without changes keeps the new value
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if raw := readConfigJSON(t); raw["goal_meters"] != float64(9000) {
		t.Errorf("goal_meters = %v after resave, want 9000", raw["goal_meters"])
	}
}

func readConfigJSON(t *testing.T) map[string]any {
	t.Helper()
	data, err := os.ReadFile(GetConfigPath())
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal config: %v", err)
	}
	return raw
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	if cfg.GetBackend() != "sqlite" {
		t.Errorf("expected default backend 'sqlite', got %q", cfg.GetBackend())
	}
	if cfg.GetUserID() != DefaultUserID {
		t.Errorf("expected default user %q, got %q", DefaultUserID, cfg.GetUserID())
	}
	if cfg.GetLogLevel() != "warn" {
		t.Errorf("expected default log level 'warn', got %q", cfg.GetLogLevel())
	}
	if cfg.GetCharmHost() != charm.DefaultCharmHost {
		t.Errorf("expected default charm host, got %q", cfg.GetCharmHost())
	}
}

func TestDefaultDataDir(t *testing.T) {
	cfg := &Config{}
	dataDir := cfg.GetDataDir()
	if !filepath.IsAbs(dataDir) {
		t.Errorf("GetDataDir returned non-absolute path: %s", dataDir)
	}
	if filepath.Base(dataDir) != "stride" {
		t.Errorf("GetDataDir should end with 'stride', got %s", dataDir)
	}
}

func TestExplicitDataDir(t *testing.T) {
	cfg := &Config{DataDir: "/custom/data/path"}
	if cfg.GetDataDir() != "/custom/data/path" {
		t.Errorf("expected '/custom/data/path', got %q", cfg.GetDataDir())
	}
	if cfg.SessionStorePath() != "/custom/data/path/session" {
		t.Errorf("unexpected session path %q", cfg.SessionStorePath())
	}
	if cfg.DBPath() != "/custom/data/path/stride.db" {
		t.Errorf("unexpected db path %q", cfg.DBPath())
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("cannot get home dir: %v", err)
	}

	tests := []struct {
		input    string
		expected string
	}{
		{"~/foo", filepath.Join(home, "foo")},
		{"~", home},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
		{"", ""},
	}

	for _, tt := range tests {
		result := ExpandPath(tt.input)
		if result != tt.expected {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestOpenStorageSqliteCreatesDBInDataDir(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := &Config{Backend: "sqlite", DataDir: tmpDir}

	store, err := cfg.OpenStorage()
	if err != nil {
		t.Fatalf("OpenStorage failed: %v", err)
	}
	defer store.Close()

	if _, ok := store.(*storage.SQLiteDB); !ok {
		t.Errorf("expected *storage.SQLiteDB, got %T", store)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "stride.db")); os.IsNotExist(err) {
		t.Error("expected database file in data dir")
	}
}

func TestOpenStorageCharmBackend(t *testing.T) {
	t.Setenv("CHARM_DATA_DIR", t.TempDir())
	// NewClient exports CHARM_HOST; restore it afterwards.
	t.Setenv("CHARM_HOST", "")
	cfg := &Config{Backend: "charm", CharmHost: "localhost"}

	store, err := cfg.OpenStorage()
	if err != nil {
		t.Fatalf("OpenStorage failed for charm backend: %v", err)
	}
	defer store.Close()

	if _, ok := store.(*charm.Client); !ok {
		t.Errorf("expected *charm.Client, got %T", store)
	}
}

func TestOpenStorageUnknownBackend(t *testing.T) {
	cfg := &Config{Backend: "redis", DataDir: t.TempDir()}

	_, err := cfg.OpenStorage()
	if err == nil || !strings.Contains(err.Error(), "unknown backend") {
		t.Errorf("expected 'unknown backend' error, got: %v", err)
	}
}

func TestIdentityProvider(t *testing.T) {
	cfg := &Config{UserID: "harper"}
	if p, ok := cfg.Identity().(identity.Static); !ok || string(p) != "harper" {
		t.Errorf("sqlite backend should use static identity, got %#v", cfg.Identity())
	}

	cfg.Backend = BackendCharm
	if _, ok := cfg.Identity().(identity.Fallback); !ok {
		t.Errorf("charm backend should use fallback identity, got %T", cfg.Identity())
	}
}

func TestSaveToUnwritableDirectory(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0600); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	t.Setenv("XDG_CONFIG_HOME", blocker)

	if err := (&Config{}).Save(); err == nil {
		t.Error("Expected error when saving to unwritable directory")
	}
}
