package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"sitesearch/internal/domain"
)

const (
	defaultMaxFailures uint32 = 3
	defaultOpenFor            = 30 * time.Second
)

// GuardedSource wraps a TabURLSource with a circuit breaker. Once the
// browser has failed MaxFailures times in a row, lookups fail fast until
// the breaker half-opens.
type GuardedSource struct {
	inner   domain.TabURLSource
	breaker *gobreaker.CircuitBreaker[string]
}

// Guard wraps inner. Zero values fall back to 3 failures and 30s.
func Guard(inner domain.TabURLSource, maxFailures uint32, openFor time.Duration, logger *slog.Logger) *GuardedSource {
	if maxFailures == 0 {
		maxFailures = defaultMaxFailures
	}
	if openFor <= 0 {
		openFor = defaultOpenFor
	}
	if logger == nil {
		logger = slog.Default()
	}
	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "tabs:" + inner.Name(),
		MaxRequests: 1,
		Timeout:     openFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
		// A caller giving up is not a browser failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return &GuardedSource{inner: inner, breaker: cb}
}

func (g *GuardedSource) Name() string { return g.inner.Name() }

func (g *GuardedSource) ActiveTabURL(ctx context.Context) (string, error) {
	url, err := g.breaker.Execute(func() (string, error) {
		return g.inner.ActiveTabURL(ctx)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", fmt.Errorf("tab source %q circuit open: %w", g.inner.Name(), domain.ErrBrowserUnavailable)
	}
	return url, err
}

// State returns the breaker state for the doctor command.
func (g *GuardedSource) State() gobreaker.State {
	return g.breaker.State()
}

var _ domain.TabURLSource = (*GuardedSource)(nil)
