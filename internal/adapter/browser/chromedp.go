package browser

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"

	"sitesearch/internal/domain"
)

// CDPSource reads the active tab from a browser started with
// --remote-debugging-port. It only lists targets and never opens a tab.
type CDPSource struct {
	remoteURL string
	timeout   time.Duration
	logger    *slog.Logger

	// targets is swapped in tests.
	targets func(ctx context.Context) ([]*target.Info, error)
}

// NewCDPSource creates a tab source for the DevTools endpoint at remoteURL.
func NewCDPSource(remoteURL string, timeout time.Duration, logger *slog.Logger) *CDPSource {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	s := &CDPSource{remoteURL: remoteURL, timeout: timeout, logger: logger}
	s.targets = s.listTargets
	return s
}

func (s *CDPSource) Name() string { return "cdp" }

func (s *CDPSource) ActiveTabURL(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	infos, err := s.targets(ctx)
	if err != nil {
		return "", fmt.Errorf("cdp %s: %w: %w", s.remoteURL, domain.ErrBrowserUnavailable, err)
	}
	info := pickActiveTarget(infos)
	if info == nil {
		return "", fmt.Errorf("cdp %s: no page target: %w", s.remoteURL, domain.ErrBrowserUnavailable)
	}
	s.logger.Debug("cdp active target", "target", string(info.TargetID), "title", info.Title)
	return info.URL, nil
}

// listTargets connects to the remote browser and returns its targets.
// Only the plain cancel funcs run on return, so the remote browser
// and its tabs stay open.
func (s *CDPSource) listTargets(ctx context.Context) ([]*target.Info, error) {
	allocCtx, allocCancel := chromedp.NewRemoteAllocator(ctx, s.remoteURL)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	return chromedp.Targets(browserCtx)
}

// pickActiveTarget returns the first page target that belongs to the user.
// Chrome lists targets most recently focused first.
func pickActiveTarget(infos []*target.Info) *target.Info {
	for _, info := range infos {
		if info == nil || info.Type != "page" {
			continue
		}
		if strings.HasPrefix(info.URL, "devtools://") || strings.HasPrefix(info.URL, "chrome-extension://") {
			continue
		}
		return info
	}
	return nil
}

var _ domain.TabURLSource = (*CDPSource)(nil)
