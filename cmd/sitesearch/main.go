// Command sitesearch searches within the website shown in the active browser tab.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"sitesearch/internal/adapter/tui/uxerror"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	cancel()
	if err != nil {
		fmt.Fprintln(os.Stderr, "sitesearch: "+uxerror.Humanize(err).Render())
		os.Exit(1)
	}
}
