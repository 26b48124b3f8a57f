package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SITESEARCH_"

// Config is the top-level application configuration.
type Config struct {
	Search   SearchConfig  `yaml:"search"`
	Browser  BrowserConfig `yaml:"browser"`
	Store    StoreConfig   `yaml:"store"`
	Opener   OpenerConfig  `yaml:"opener"`
	MCP      MCPConfig     `yaml:"mcp"`
	Logger   LoggerConfig  `yaml:"logger"`
	Tracer   TracerConfig  `yaml:"tracer"`
	DataDir  string        `yaml:"data_dir"`
	Includes []string      `yaml:"includes,omitempty"`
}

// SearchConfig holds user preferences for building searches.
type SearchConfig struct {
	Engine                string `yaml:"engine"`                  // google|duckduckgo|bing|yahoo|baidu
	PopulateFromClipboard bool   `yaml:"populate_from_clipboard"` // prefill the term from the clipboard
	Dedup                 string `yaml:"dedup"`                   // full|term
	HistoryLimit          int    `yaml:"history_limit"`           // 1..20
	CloseAfterSubmit      bool   `yaml:"close_after_submit"`      // quit the TUI once a search opens
}

// BrowserConfig selects how the active tab is discovered.
type BrowserConfig struct {
	Source    string        `yaml:"source"`  // cdp|applescript|static
	CDPURL    string        `yaml:"cdp_url"` // remote debugging endpoint
	App       string        `yaml:"app"`     // applescript target application
	Timeout   time.Duration `yaml:"timeout"`
	StaticURL string        `yaml:"static_url"`
	Breaker   BreakerConfig `yaml:"breaker"`
}

// BreakerConfig tunes the circuit breaker around the tab source.
type BreakerConfig struct {
	MaxFailures uint32        `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
}

// StoreConfig selects the history backend.
type StoreConfig struct {
	Backend string `yaml:"backend"` // file|sqlite
	Path    string `yaml:"path"`    // empty = derived from data_dir
}

// OpenerConfig overrides the URL opener command.
type OpenerConfig struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

// MCPConfig limits the MCP server.
type MCPConfig struct {
	OpenRatePerMin int `yaml:"open_rate_per_min"`
	Burst          int `yaml:"burst"`
}

// LoggerConfig holds logger settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
	Output string `yaml:"output"` // stdout, stderr, or a file path
}

// TracerConfig holds OpenTelemetry tracer settings.
type TracerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"` // stdout, noop
}

// defaultConfigDir returns $XDG_CONFIG_HOME/sitesearch, or a relative
// fallback when no config directory can be determined.
func defaultConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".sitesearch"
	}
	return filepath.Join(dir, "sitesearch")
}

// defaultDataDir returns $XDG_DATA_HOME/sitesearch or ~/.local/share/sitesearch.
func defaultDataDir() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return filepath.Join(v, "sitesearch")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "./data"
	}
	return filepath.Join(home, ".local", "share", "sitesearch")
}

// DefaultPath returns the config file used when none is given.
func DefaultPath() string {
	return filepath.Join(defaultConfigDir(), "config.yaml")
}

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Search: SearchConfig{
			Engine:                "google",
			PopulateFromClipboard: true,
			Dedup:                 "full",
			HistoryLimit:          20,
			CloseAfterSubmit:      true,
		},
		Browser: BrowserConfig{
			Source:  "cdp",
			CDPURL:  "http://127.0.0.1:9222",
			App:     "Arc",
			Timeout: 5 * time.Second,
			Breaker: BreakerConfig{
				MaxFailures: 3,
				Timeout:     30 * time.Second,
			},
		},
		Store: StoreConfig{
			Backend: "file",
		},
		MCP: MCPConfig{
			OpenRatePerMin: 30,
			Burst:          5,
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Tracer: TracerConfig{
			Enabled:  false,
			Exporter: "noop",
		},
		DataDir: defaultDataDir(),
	}
}

// StorePath returns the configured history path, or the backend's default
// file under DataDir.
func (c *Config) StorePath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	if c.Store.Backend == "sqlite" {
		return filepath.Join(c.DataDir, "history.db")
	}
	return filepath.Join(c.DataDir, "history.json")
}

// LogFilePath is where the TUI logs when the configured output is a terminal stream.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.DataDir, "sitesearch.log")
}

// Load reads a YAML config file and applies env var overrides.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := ApplyEnvOverrides(cfg); err != nil {
				return nil, err
			}
			if err := Validate(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	if err := validatePermissions(absPath); err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if len(cfg.Includes) > 0 {
		visited := map[string]bool{absPath: true}
		if err := processIncludes(cfg, filepath.Dir(absPath), visited, 0); err != nil {
			return nil, err
		}
		// The main file wins over anything it includes.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config (second pass): %w", err)
		}
		cfg.Includes = nil
	}

	if err := ApplyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnvOverrides maps SITESEARCH_* env vars to config fields.
// Malformed boolean, integer or duration values are reported together.
func ApplyEnvOverrides(cfg *Config) error {
	ve := &ValidationError{}

	str := func(name string, dst *string) {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			*dst = v
		}
	}
	boolean := func(name string, dst *bool) {
		v := os.Getenv(EnvPrefix + name)
		if v == "" {
			return
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			ve.Add("%s%s: %q is not a boolean", EnvPrefix, name, v)
			return
		}
		*dst = b
	}
	integer := func(name string, dst *int) {
		v := os.Getenv(EnvPrefix + name)
		if v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			ve.Add("%s%s: %q is not an integer", EnvPrefix, name, v)
			return
		}
		*dst = n
	}
	duration := func(name string, dst *time.Duration) {
		v := os.Getenv(EnvPrefix + name)
		if v == "" {
			return
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			ve.Add("%s%s: %q is not a duration", EnvPrefix, name, v)
			return
		}
		*dst = d
	}

	str("SEARCH_ENGINE", &cfg.Search.Engine)
	boolean("SEARCH_POPULATE_FROM_CLIPBOARD", &cfg.Search.PopulateFromClipboard)
	str("SEARCH_DEDUP", &cfg.Search.Dedup)
	integer("SEARCH_HISTORY_LIMIT", &cfg.Search.HistoryLimit)
	boolean("SEARCH_CLOSE_AFTER_SUBMIT", &cfg.Search.CloseAfterSubmit)

	str("BROWSER_SOURCE", &cfg.Browser.Source)
	str("BROWSER_CDP_URL", &cfg.Browser.CDPURL)
	str("BROWSER_APP", &cfg.Browser.App)
	duration("BROWSER_TIMEOUT", &cfg.Browser.Timeout)
	str("BROWSER_STATIC_URL", &cfg.Browser.StaticURL)

	str("STORE_BACKEND", &cfg.Store.Backend)
	str("STORE_PATH", &cfg.Store.Path)
	str("DATA_DIR", &cfg.DataDir)

	if fields := strings.Fields(os.Getenv(EnvPrefix + "OPENER_COMMAND")); len(fields) > 0 {
		cfg.Opener.Command = fields[0]
		cfg.Opener.Args = fields[1:]
	}

	str("LOGGER_LEVEL", &cfg.Logger.Level)
	str("LOGGER_FORMAT", &cfg.Logger.Format)
	str("LOGGER_OUTPUT", &cfg.Logger.Output)
	boolean("TRACER_ENABLED", &cfg.Tracer.Enabled)
	str("TRACER_EXPORTER", &cfg.Tracer.Exporter)

	if ve.HasErrors() {
		return ve
	}
	return nil
}

// validatePermissions rejects config files writable by group or others.
func validatePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat config: %w", err)
	}
	mode := info.Mode().Perm()
	if mode&0o022 != 0 {
		return fmt.Errorf("config file %s has insecure permissions %o (want 0600 or 0644)", path, mode)
	}
	return nil
}

// Write stores cfg as YAML at path with owner-only permissions.
func Write(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
