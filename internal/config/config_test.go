package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "molbrowse.yaml")
	content := []byte(`token: abc
api:
  base_url: https://molecules.example.org
  timeout: 3s
  rps: 2
  retry_max: 1
search:
  server_side: true
log:
  level: debug
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Token != "abc" || cfg.API.BaseURL != "https://molecules.example.org" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
	if cfg.API.Timeout != 3*time.Second || cfg.API.RPS != 2 || cfg.API.RetryMax != 1 {
		t.Fatalf("unexpected api cfg: %+v", cfg.API)
	}
	if cfg.API.Burst != DefaultBurst {
		t.Fatalf("unset key must keep its default, got burst=%d", cfg.API.Burst)
	}
	if !cfg.ServerSearch || cfg.Log.Level != "debug" {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Token != "" || cfg.API.BaseURL != DefaultBaseURL || cfg.API.Timeout != DefaultTimeout {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.ServerSearch {
		t.Fatal("server search must default to off")
	}
	if cfg.CachePath != DefaultCachePath() {
		t.Fatalf("cache path = %q", cfg.CachePath)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MOLBROWSE_TOKEN", "envtoken")
	t.Setenv("MOLBROWSE_API_BASE_URL", "http://10.0.0.5:8000")
	t.Setenv("MOLBROWSE_SEARCH_SERVER_SIDE", "true")

	path := filepath.Join(t.TempDir(), "molbrowse.yaml")
	if err := os.WriteFile(path, []byte("token: filetoken\n"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Token != "envtoken" {
		t.Fatalf("expected token from env, got %q", cfg.Token)
	}
	if cfg.API.BaseURL != "http://10.0.0.5:8000" || !cfg.ServerSearch {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "molbrowse.yaml")
	if err := os.WriteFile(path, []byte("api:\n  base_url: ftp://nope\n"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "scheme") {
		t.Fatalf("expected scheme error, got %v", err)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "molbrowse.yaml")
	if err := os.WriteFile(path, []byte("token: [unterminated\n"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "molbrowse.yaml")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	cfg.Token = "abc"
	cfg.API.Timeout = 7 * time.Second
	cfg.ServerSearch = true
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("file mode = %v, want 0600", perm)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got.Token != "abc" || got.API.Timeout != 7*time.Second || !got.ServerSearch {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestSaveRequiresToken(t *testing.T) {
	if err := Save(filepath.Join(t.TempDir(), "x.yaml"), Config{}); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestDefaultPathUsesHome(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	if got, want := DefaultPath(), filepath.Join(dir, ".molbrowse.yaml"); got != want {
		t.Fatalf("DefaultPath() = %q, want %q", got, want)
	}
	if got, want := DefaultCachePath(), filepath.Join(dir, ".molbrowse", "cache.db"); got != want {
		t.Fatalf("DefaultCachePath() = %q, want %q", got, want)
	}
}
