package uxerror

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"sitesearch/internal/domain"
)

func TestHumanize(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		title string
	}{
		{"no domain", domain.NewDomainError("Search.Submit", domain.ErrNoDomain, ""), "No Domain Detected"},
		{"browser", fmt.Errorf("cdp: %w", domain.ErrBrowserUnavailable), "Failed to Get Current URL"},
		{"empty", domain.ErrEmptyQuery, "Please Enter a Search Term"},
		{"persistence", domain.NewDomainError("History.Save", domain.ErrPersistence, "disk full"), "Could Not Save Search History"},
		{"open", domain.ErrOpenFailed, "Could Not Open the Browser"},
		{"rate", domain.ErrRateLimit, "Too Many Searches"},
		{"not found", domain.ErrNotFound, "Entry Not Found"},
		{"deadline", fmt.Errorf("tabs: %w", context.DeadlineExceeded), "Timed Out"},
		{"dial", errors.New("dial tcp 127.0.0.1:9222: connection refused"), "Connection Failed"},
		{"other", errors.New("boom"), "Unexpected Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fe := Humanize(tt.err)
			assert.Equal(t, tt.title, fe.Title)
			assert.Equal(t, tt.err.Error(), fe.Raw)
		})
	}
}

func TestHumanizeNil(t *testing.T) {
	assert.Equal(t, "Unknown Error", Humanize(nil).Title)
}

func TestHumanizeConfigKeepsDetail(t *testing.T) {
	err := fmt.Errorf("search.engine: unknown: %w", domain.ErrConfigLoad)
	fe := Humanize(err)
	assert.Equal(t, "Invalid Configuration", fe.Title)
	assert.Contains(t, fe.Message, "search.engine")
}

func TestRender(t *testing.T) {
	fe := FriendlyError{Title: "T", Message: "M", Hints: []string{"h1", "h2"}}
	out := fe.Render()
	assert.Contains(t, out, "T\n  M")
	assert.Contains(t, out, "Suggestions:")
	assert.Contains(t, out, "h2")
	assert.Equal(t, "T", FriendlyError{Title: "T"}.Render())
}
