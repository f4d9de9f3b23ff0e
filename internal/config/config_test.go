package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"roadmap/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("ROADMAP_CONFIG", "")
	t.Setenv("ROADMAP_API_TOKEN", "")
	t.Setenv("ROADMAP_REMOTE_TOKEN", "")
	t.Chdir(tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "roadmap")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.CatalogPath != filepath.Join(tempHome, ".config", "roadmap", "catalog.yaml") {
		t.Fatalf("unexpected catalog path: %q", cfg.Paths.CatalogPath)
	}
	if cfg.API.Bind != "127.0.0.1:7390" {
		t.Fatalf("unexpected api bind: %q", cfg.API.Bind)
	}
	if cfg.Remote.BaseURL != "http://127.0.0.1:7390" {
		t.Fatalf("unexpected remote base url: %q", cfg.Remote.BaseURL)
	}
	if cfg.RemoteTimeout() != 5*time.Second {
		t.Fatalf("expected 5s remote timeout, got %s", cfg.RemoteTimeout())
	}
	if cfg.Remote.WriteAttempts != 2 {
		t.Fatalf("expected 2 write attempts, got %d", cfg.Remote.WriteAttempts)
	}
	if cfg.Storage.Backend != config.StorageSQLite {
		t.Fatalf("expected sqlite backend, got %q", cfg.Storage.Backend)
	}
	if cfg.DatabasePath() != filepath.Join(wantData, "roadmap.db") {
		t.Fatalf("unexpected database path: %q", cfg.DatabasePath())
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir, cfg.Paths.FilesDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "roadmap.toml")

	type payload struct {
		Paths struct {
			CatalogPath string `toml:"catalog_path"`
		} `toml:"paths"`
		Remote struct {
			BaseURL        string `toml:"base_url"`
			TimeoutSeconds int    `toml:"timeout_seconds"`
		} `toml:"remote"`
		Storage struct {
			Backend string `toml:"backend"`
		} `toml:"storage"`
	}
	custom := payload{}
	custom.Paths.CatalogPath = filepath.Join(tempDir, "modules.yaml")
	custom.Remote.BaseURL = "https://roadmap.example.com/"
	custom.Remote.TimeoutSeconds = 9
	custom.Storage.Backend = "Redis"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.CatalogPath != custom.Paths.CatalogPath {
		t.Fatalf("expected catalog path from file, got %q", cfg.Paths.CatalogPath)
	}
	if cfg.Remote.BaseURL != "https://roadmap.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Remote.BaseURL)
	}
	if cfg.Remote.TimeoutSeconds != 9 {
		t.Fatalf("expected timeout 9, got %d", cfg.Remote.TimeoutSeconds)
	}
	if cfg.Storage.Backend != config.StorageRedis {
		t.Fatalf("expected redis backend, got %q", cfg.Storage.Backend)
	}
}

func TestTokensFallBackToEnvironment(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "roadmap.toml")
	if err := os.WriteFile(configPath, []byte("[api]\ntoken = \"file-api\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ROADMAP_API_TOKEN", "env-api")
	t.Setenv("ROADMAP_REMOTE_TOKEN", "")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.API.Token != "file-api" {
		t.Errorf("expected file token to win, got %q", cfg.API.Token)
	}
	if cfg.Remote.Token != "file-api" {
		t.Errorf("expected remote token to fall back to api token, got %q", cfg.Remote.Token)
	}

	t.Setenv("ROADMAP_REMOTE_TOKEN", "env-remote")
	cfg, _, _, err = config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Remote.Token != "env-remote" {
		t.Errorf("expected remote token from env, got %q", cfg.Remote.Token)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "[remote]") {
		t.Fatalf("sample config missing remote section: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Storage.Backend != config.StorageSQLite {
		t.Fatalf("expected sample backend sqlite, got %q", cfg.Storage.Backend)
	}
	if !strings.Contains(cfg.Paths.DataDir, "roadmap") {
		t.Fatalf("expected data dir to contain roadmap, got %q", cfg.Paths.DataDir)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.API.Bind = "localhost"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for bind without port")
	}

	cfg = config.Default()
	cfg.Remote.BaseURL = "ftp://example.com"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-http remote")
	}

	cfg = config.Default()
	cfg.Storage.Backend = "postgres"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown backend")
	}

	cfg = config.Default()
	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown log level")
	}

	cfg = config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}
