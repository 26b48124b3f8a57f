package browser

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"sitesearch/internal/domain"
)

// runFunc runs a command and returns its standard output.
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func execOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// AppleScriptSource asks a macOS browser for its front tab through osascript.
type AppleScriptSource struct {
	app     string
	timeout time.Duration
	run     runFunc
}

// NewAppleScriptSource creates a source for the named application,
// for example "Arc", "Google Chrome" or "Safari".
func NewAppleScriptSource(app string, timeout time.Duration) *AppleScriptSource {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &AppleScriptSource{app: app, timeout: timeout, run: execOutput}
}

func (s *AppleScriptSource) Name() string { return "applescript" }

func (s *AppleScriptSource) ActiveTabURL(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.run(ctx, "osascript", "-e", tabScript(s.app))
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return "", fmt.Errorf("osascript %s: %s: %w", s.app, strings.TrimSpace(string(exitErr.Stderr)), domain.ErrBrowserUnavailable)
		}
		return "", fmt.Errorf("osascript %s: %w: %w", s.app, domain.ErrBrowserUnavailable, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// tabScript returns the AppleScript that prints the front tab URL of app.
func tabScript(app string) string {
	quoted := strings.ReplaceAll(app, `"`, `\"`)
	if strings.EqualFold(app, "Safari") || strings.HasPrefix(strings.ToLower(app), "safari ") {
		return fmt.Sprintf(`tell application "%s" to get URL of front document`, quoted)
	}
	return fmt.Sprintf(`tell application "%s" to get URL of active tab of front window`, quoted)
}

var _ domain.TabURLSource = (*AppleScriptSource)(nil)
