package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfigFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestIncludesSingleFile(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "browser.yaml", `
browser:
  source: applescript
  app: Safari
`)
	path := writeConfigFile(t, dir, "config.yaml", `
includes:
  - "browser.yaml"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Browser.Source != "applescript" || cfg.Browser.App != "Safari" {
		t.Errorf("browser not loaded from include: %+v", cfg.Browser)
	}
}

func TestIncludesGlobAndMainPrecedence(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "conf.d")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	writeConfigFile(t, sub, "10-engine.yaml", "search:\n  engine: bing\n  dedup: term\n")
	writeConfigFile(t, sub, "20-log.yaml", "logger:\n  level: debug\n")
	path := writeConfigFile(t, dir, "config.yaml", `
includes:
  - "conf.d/*.yaml"
search:
  engine: yahoo
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Search.Engine != "yahoo" {
		t.Errorf("main file should win, Engine = %q", cfg.Search.Engine)
	}
	if cfg.Search.Dedup != "term" {
		t.Errorf("Dedup = %q, want term", cfg.Search.Dedup)
	}
	if cfg.Logger.Level != "debug" {
		t.Errorf("Logger.Level = %q, want debug", cfg.Logger.Level)
	}
	if len(cfg.Includes) != 0 {
		t.Errorf("includes should be cleared, got %v", cfg.Includes)
	}
}

func TestIncludesGlobNoMatch(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, "config.yaml", "includes:\n  - \"conf.d/*.yaml\"\n")
	if _, err := Load(path); err != nil {
		t.Errorf("empty glob should not fail: %v", err)
	}
}

func TestIncludesCircularDetection(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "a.yaml", "includes:\n  - \"b.yaml\"\n")
	writeConfigFile(t, dir, "b.yaml", "includes:\n  - \"a.yaml\"\n")
	path := writeConfigFile(t, dir, "config.yaml", "includes:\n  - \"a.yaml\"\n")

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected circular include error")
	}
	if !strings.Contains(err.Error(), "circular include") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestIncludesSelfReference(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, "config.yaml", "includes:\n  - \"config.yaml\"\n")
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "circular include") {
		t.Errorf("expected circular include error, got %v", err)
	}
}

func TestIncludesPathTraversal(t *testing.T) {
	dir := t.TempDir()
	inner := filepath.Join(dir, "inner")
	if err := os.Mkdir(inner, 0o755); err != nil {
		t.Fatal(err)
	}
	writeConfigFile(t, dir, "secret.yaml", "search:\n  engine: bing\n")
	path := writeConfigFile(t, inner, "config.yaml", "includes:\n  - \"../secret.yaml\"\n")

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "escapes the config directory") {
		t.Errorf("expected traversal error, got %v", err)
	}
}

func TestIncludesFileNotFound(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, "config.yaml", "includes:\n  - \"missing.yaml\"\n")
	if _, err := Load(path); err == nil {
		t.Error("expected error for missing include")
	}
}

func TestIncludesMaxDepth(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i <= maxIncludeDepth+1; i++ {
		next := "level" + string(rune('a'+i+1)) + ".yaml"
		writeConfigFile(t, dir, "level"+string(rune('a'+i))+".yaml", "includes:\n  - \""+next+"\"\n")
	}
	writeConfigFile(t, dir, "level"+string(rune('a'+maxIncludeDepth+2))+".yaml", "")
	path := writeConfigFile(t, dir, "config.yaml", "includes:\n  - \"levela.yaml\"\n")

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "max depth") {
		t.Errorf("expected max depth error, got %v", err)
	}
}

func TestIncludesEmptyFile(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "empty.yaml", "")
	path := writeConfigFile(t, dir, "config.yaml", "includes:\n  - \"empty.yaml\"\n")
	if _, err := Load(path); err != nil {
		t.Errorf("empty include should be ignored: %v", err)
	}
}
