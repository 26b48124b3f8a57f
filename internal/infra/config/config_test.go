package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"sitesearch/internal/domain"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.Search.Engine != "google" {
		t.Errorf("Search.Engine = %q, want %q", cfg.Search.Engine, "google")
	}
	if !cfg.Search.PopulateFromClipboard {
		t.Error("PopulateFromClipboard should default to true")
	}
	if cfg.Search.HistoryLimit != 20 {
		t.Errorf("HistoryLimit = %d, want 20", cfg.Search.HistoryLimit)
	}
	if cfg.Browser.Source != "cdp" {
		t.Errorf("Browser.Source = %q, want cdp", cfg.Browser.Source)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadNonExistentReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Search.Dedup != "full" {
		t.Errorf("expected defaults, got Dedup=%q", cfg.Search.Dedup)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
search:
  engine: duckduckgo
  populate_from_clipboard: false
  dedup: term
browser:
  source: applescript
  app: "Google Chrome"
  timeout: 2s
store:
  backend: sqlite
data_dir: ` + dir + `
logger:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Search.Engine != "duckduckgo" {
		t.Errorf("Engine = %q, want duckduckgo", cfg.Search.Engine)
	}
	if cfg.Search.PopulateFromClipboard {
		t.Error("PopulateFromClipboard should be false")
	}
	if cfg.Browser.App != "Google Chrome" || cfg.Browser.Timeout != 2*time.Second {
		t.Errorf("Browser mismatch: %+v", cfg.Browser)
	}
	if cfg.Browser.CDPURL != "http://127.0.0.1:9222" {
		t.Errorf("unset fields keep defaults, got CDPURL=%q", cfg.Browser.CDPURL)
	}
	if got, want := cfg.StorePath(), filepath.Join(dir, "history.db"); got != want {
		t.Errorf("StorePath = %q, want %q", got, want)
	}
}

func TestStorePathDefaultsAndOverride(t *testing.T) {
	cfg := Defaults()
	cfg.DataDir = "/data"
	if got := cfg.StorePath(); got != filepath.Join("/data", "history.json") {
		t.Errorf("StorePath = %q", got)
	}
	cfg.Store.Path = "/elsewhere/h.json"
	if got := cfg.StorePath(); got != "/elsewhere/h.json" {
		t.Errorf("StorePath = %q", got)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("search: [unclosed"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadInsecurePermissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "insecure.yaml")
	if err := os.WriteFile(path, []byte("search:\n  engine: bing\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(path, 0666); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Error("expected error for insecure permissions")
	}
}

func TestLoadValidationFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("search:\n  engine: altavista\n"), 0600); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, domain.ErrConfigLoad) {
		t.Errorf("validation errors should match ErrConfigLoad: %v", err)
	}
	assertContains(t, err.Error(), `search.engine: unknown engine "altavista"`)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SITESEARCH_SEARCH_ENGINE", "bing")
	t.Setenv("SITESEARCH_SEARCH_POPULATE_FROM_CLIPBOARD", "false")
	t.Setenv("SITESEARCH_SEARCH_HISTORY_LIMIT", "7")
	t.Setenv("SITESEARCH_BROWSER_TIMEOUT", "750ms")
	t.Setenv("SITESEARCH_LOGGER_LEVEL", "debug")
	t.Setenv("SITESEARCH_OPENER_COMMAND", "firefox --new-tab")

	cfg := Defaults()
	if err := ApplyEnvOverrides(cfg); err != nil {
		t.Fatalf("ApplyEnvOverrides: %v", err)
	}

	if cfg.Search.Engine != "bing" {
		t.Errorf("Engine = %q, want bing", cfg.Search.Engine)
	}
	if cfg.Search.PopulateFromClipboard {
		t.Error("PopulateFromClipboard should be false")
	}
	if cfg.Search.HistoryLimit != 7 {
		t.Errorf("HistoryLimit = %d, want 7", cfg.Search.HistoryLimit)
	}
	if cfg.Browser.Timeout != 750*time.Millisecond {
		t.Errorf("Timeout = %v", cfg.Browser.Timeout)
	}
	if cfg.Logger.Level != "debug" {
		t.Errorf("Logger.Level = %q, want debug", cfg.Logger.Level)
	}
	if cfg.Opener.Command != "firefox" || len(cfg.Opener.Args) != 1 || cfg.Opener.Args[0] != "--new-tab" {
		t.Errorf("Opener = %+v", cfg.Opener)
	}
}

func TestEnvOverridesMalformed(t *testing.T) {
	t.Setenv("SITESEARCH_SEARCH_POPULATE_FROM_CLIPBOARD", "maybe")
	t.Setenv("SITESEARCH_BROWSER_TIMEOUT", "soon")

	err := ApplyEnvOverrides(Defaults())
	if err == nil {
		t.Fatal("expected error")
	}
	assertContains(t, err.Error(), "SITESEARCH_SEARCH_POPULATE_FROM_CLIPBOARD")
	assertContains(t, err.Error(), "SITESEARCH_BROWSER_TIMEOUT")
}

func TestEnvOverridesAppliedWithoutFile(t *testing.T) {
	t.Setenv("SITESEARCH_SEARCH_ENGINE", "yahoo")
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Search.Engine != "yahoo" {
		t.Errorf("Engine = %q, want yahoo", cfg.Search.Engine)
	}
}

func TestWriteThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Defaults()
	cfg.Search.Engine = "baidu"
	if err := Write(cfg, path); err != nil {
		t.Fatalf("Write: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %o, want 600", info.Mode().Perm())
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Search.Engine != "baidu" {
		t.Errorf("Engine = %q, want baidu", got.Search.Engine)
	}
}

func TestValidatePermissions(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		mode    os.FileMode
		wantErr bool
	}{
		{0o600, false},
		{0o644, false},
		{0o400, false},
		{0o664, true},
		{0o666, true},
		{0o602, true},
	}
	for _, tt := range tests {
		path := filepath.Join(dir, "perm.yaml")
		if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
			t.Fatal(err)
		}
		if err := os.Chmod(path, tt.mode); err != nil {
			t.Fatal(err)
		}
		err := validatePermissions(path)
		if (err != nil) != tt.wantErr {
			t.Errorf("mode %o: err = %v, wantErr %v", tt.mode, err, tt.wantErr)
		}
		os.Remove(path)
	}
}
