package browser

import (
	"context"

	"sitesearch/internal/domain"
)

// StaticSource always reports the same URL.
type StaticSource struct {
	URL string
}

func (s StaticSource) Name() string { return "static" }

func (s StaticSource) ActiveTabURL(context.Context) (string, error) {
	if s.URL == "" {
		return "", domain.ErrBrowserUnavailable
	}
	return s.URL, nil
}

var _ domain.TabURLSource = StaticSource{}
