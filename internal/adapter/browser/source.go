// Package browser discovers the URL of the user's active browser tab.
package browser

import (
	"fmt"
	"log/slog"

	"sitesearch/internal/domain"
	"sitesearch/internal/infra/config"
)

// New builds the tab source selected by cfg.Source, wrapped in a
// circuit breaker. A non-empty staticURL overrides the configured source.
func New(cfg config.BrowserConfig, staticURL string, logger *slog.Logger) (domain.TabURLSource, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if staticURL != "" {
		return StaticSource{URL: staticURL}, nil
	}

	var src domain.TabURLSource
	switch cfg.Source {
	case "cdp", "":
		src = NewCDPSource(cfg.CDPURL, cfg.Timeout, logger)
	case "applescript":
		src = NewAppleScriptSource(cfg.App, cfg.Timeout)
	case "static":
		return StaticSource{URL: cfg.StaticURL}, nil
	default:
		return nil, fmt.Errorf("unknown browser source %q: %w", cfg.Source, domain.ErrInvalidInput)
	}
	return Guard(src, cfg.Breaker.MaxFailures, cfg.Breaker.Timeout, logger), nil
}
