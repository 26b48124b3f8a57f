// Package opener hands URLs to the desktop's default browser.
package opener

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"

	"sitesearch/internal/domain"
)

// Command opens URLs by running an external program with the URL as its
// last argument. The program is started and reaped in the background.
type Command struct {
	name   string
	args   []string
	logger *slog.Logger

	// start is swapped in tests.
	start func(cmd *exec.Cmd) error
}

// New returns an opener running name with args. An empty name picks the
// platform default.
func New(name string, args []string, logger *slog.Logger) *Command {
	if name == "" {
		name, args = platformDefault(runtime.GOOS)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Command{name: name, args: args, logger: logger, start: startAndReap}
}

// platformDefault returns the URL handler command for goos.
func platformDefault(goos string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler"}
	default:
		return "xdg-open", nil
	}
}

// Program is the executable this opener runs.
func (c *Command) Program() string { return c.name }

// LookPath reports whether the program can be found on PATH.
func (c *Command) LookPath() (string, error) {
	return exec.LookPath(c.name)
}

func (c *Command) Open(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	argv := append(append([]string(nil), c.args...), url)
	cmd := exec.Command(c.name, argv...)
	if err := c.start(cmd); err != nil {
		return fmt.Errorf("%s: %w: %w", c.name, domain.ErrOpenFailed, err)
	}
	c.logger.Debug("url opened", "program", c.name)
	return nil
}

func startAndReap(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go cmd.Wait() //nolint:errcheck
	return nil
}

// Discard records nothing and opens nothing. Used for --no-open.
type Discard struct{}

func (Discard) Open(context.Context, string) error { return nil }

var (
	_ domain.URLOpener = (*Command)(nil)
	_ domain.URLOpener = Discard{}
)
