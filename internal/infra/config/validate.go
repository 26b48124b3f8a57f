package config

import (
	"fmt"
	"net/url"
	"strings"

	"sitesearch/internal/domain"
)

// ValidationError accumulates config validation errors.
type ValidationError struct {
	Errors []string
}

func (v *ValidationError) Error() string {
	return "config validation failed:\n  - " + strings.Join(v.Errors, "\n  - ")
}

// Unwrap lets callers match validation failures with errors.Is(err, domain.ErrConfigLoad).
func (v *ValidationError) Unwrap() error { return domain.ErrConfigLoad }

// HasErrors reports whether any validation errors have been recorded.
func (v *ValidationError) HasErrors() bool {
	return len(v.Errors) > 0
}

// Add records a formatted validation error.
func (v *ValidationError) Add(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

// Validate checks cfg for structural correctness. It returns a *ValidationError
// when one or more problems are found, allowing callers to inspect all issues.
func Validate(cfg *Config) error {
	ve := &ValidationError{}
	validateSearch(cfg, ve)
	validateBrowser(cfg, ve)
	validateStore(cfg, ve)
	validateMCP(cfg, ve)
	validateLogger(cfg, ve)
	validateTracer(cfg, ve)
	if ve.HasErrors() {
		return ve
	}
	return nil
}

func validateSearch(cfg *Config, ve *ValidationError) {
	s := cfg.Search
	if !domain.EngineID(s.Engine).Valid() {
		ve.Add("search.engine: unknown engine %q (want one of %s)", s.Engine, engineList())
	}
	switch s.Dedup {
	case "full", "term":
	default:
		ve.Add("search.dedup: must be \"full\" or \"term\", got %q", s.Dedup)
	}
	if s.HistoryLimit < 1 || s.HistoryLimit > domain.MaxHistoryEntries {
		ve.Add("search.history_limit: must be between 1 and %d, got %d", domain.MaxHistoryEntries, s.HistoryLimit)
	}
}

func validateBrowser(cfg *Config, ve *ValidationError) {
	b := cfg.Browser
	switch b.Source {
	case "cdp":
		u, err := url.Parse(b.CDPURL)
		if err != nil || u.Host == "" {
			ve.Add("browser.cdp_url: %q is not an absolute URL", b.CDPURL)
		} else {
			switch u.Scheme {
			case "http", "https", "ws", "wss":
			default:
				ve.Add("browser.cdp_url: unsupported scheme %q", u.Scheme)
			}
		}
	case "applescript":
		if strings.TrimSpace(b.App) == "" {
			ve.Add("browser.app: required when browser.source is applescript")
		}
	case "static":
		if strings.TrimSpace(b.StaticURL) == "" {
			ve.Add("browser.static_url: required when browser.source is static")
		}
	default:
		ve.Add("browser.source: must be cdp, applescript or static, got %q", b.Source)
	}
	if b.Timeout <= 0 {
		ve.Add("browser.timeout: must be positive")
	}
	if b.Breaker.MaxFailures == 0 {
		ve.Add("browser.breaker.max_failures: must be at least 1")
	}
	if b.Breaker.Timeout <= 0 {
		ve.Add("browser.breaker.timeout: must be positive")
	}
}

func validateStore(cfg *Config, ve *ValidationError) {
	switch cfg.Store.Backend {
	case "file", "sqlite":
	default:
		ve.Add("store.backend: must be file or sqlite, got %q", cfg.Store.Backend)
	}
	if cfg.Store.Path == "" && cfg.DataDir == "" {
		ve.Add("data_dir: required when store.path is empty")
	}
}

func validateMCP(cfg *Config, ve *ValidationError) {
	if cfg.MCP.OpenRatePerMin < 0 {
		ve.Add("mcp.open_rate_per_min: must not be negative")
	}
	if cfg.MCP.OpenRatePerMin > 0 && cfg.MCP.Burst < 1 {
		ve.Add("mcp.burst: must be at least 1 when a rate is set")
	}
}

func validateLogger(cfg *Config, ve *ValidationError) {
	switch strings.ToLower(cfg.Logger.Level) {
	case "debug", "info", "warn", "warning", "error", "":
	default:
		ve.Add("logger.level: unknown level %q", cfg.Logger.Level)
	}
	switch strings.ToLower(cfg.Logger.Format) {
	case "text", "json", "":
	default:
		ve.Add("logger.format: must be text or json, got %q", cfg.Logger.Format)
	}
}

func validateTracer(cfg *Config, ve *ValidationError) {
	if !cfg.Tracer.Enabled {
		return
	}
	switch cfg.Tracer.Exporter {
	case "stdout", "noop", "":
	default:
		ve.Add("tracer.exporter: unsupported exporter %q", cfg.Tracer.Exporter)
	}
}

func engineList() string {
	names := make([]string, len(domain.EngineIDs))
	for i, id := range domain.EngineIDs {
		names[i] = string(id)
	}
	return strings.Join(names, ", ")
}
