// Package uxerror translates raw errors into user-friendly messages with
// recovery hints for the TUI.
package uxerror

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sitesearch/internal/adapter/tui/theme"
	"sitesearch/internal/domain"
)

// FriendlyError is a user-facing error with suggestions for recovery.
type FriendlyError struct {
	Title   string   // short heading, e.g. "Browser Not Reachable"
	Message string   // one-liner explanation
	Hints   []string // actionable recovery suggestions
	Raw     string   // original error text (for debug)
}

// Render formats the FriendlyError for display.
func (fe FriendlyError) Render() string {
	var sb strings.Builder
	sb.WriteString(fe.Title)
	if fe.Message != "" {
		sb.WriteString("\n  ")
		sb.WriteString(fe.Message)
	}
	if len(fe.Hints) > 0 {
		sb.WriteString("\n  Suggestions:")
		for _, h := range fe.Hints {
			sb.WriteString(fmt.Sprintf("\n    %s %s", theme.SymbolBullet, h))
		}
	}
	return sb.String()
}

type errorPattern struct {
	match   func(err error) bool
	produce func(err error) FriendlyError
}

func is(target error) func(error) bool {
	return func(err error) bool { return errors.Is(err, target) }
}

// Order matters: ErrNoDomain wraps ErrBrowserUnavailable.
var patterns = []errorPattern{
	{
		match: is(domain.ErrNoDomain),
		produce: constantError("No Domain Detected",
			"The active tab has no hostname to search within.",
			[]string{"Switch to a tab showing a regular website", "Pass --domain to search a site directly"}),
	},
	{
		match: is(domain.ErrBrowserUnavailable),
		produce: constantError("Failed to Get Current URL",
			"The browser could not be asked for its active tab.",
			[]string{
				"Start the browser with --remote-debugging-port=9222",
				"Or set browser.source to applescript on macOS",
				"Pass --url or --domain to skip tab detection",
			}),
	},
	{
		match:   is(domain.ErrEmptyQuery),
		produce: constantError("Please Enter a Search Term", "", nil),
	},
	{
		match: is(domain.ErrPersistence),
		produce: constantError("Could Not Save Search History",
			"The search still ran, but history was not written.",
			[]string{"Check free space and permissions of the data directory", "Run 'sitesearch doctor'"}),
	},
	{
		match: is(domain.ErrOpenFailed),
		produce: constantError("Could Not Open the Browser",
			"The URL was built and recorded but could not be opened.",
			[]string{"Set opener.command in config", "Check that xdg-open or open is installed"}),
	},
	{
		match:   is(domain.ErrRateLimit),
		produce: constantError("Too Many Searches", "Searches are being opened too quickly.", []string{"Wait a moment before retrying"}),
	},
	{
		match:   is(domain.ErrConfigLoad),
		produce: constantError("Invalid Configuration", "", []string{"Fix the listed settings in config.yaml"}),
	},
	{
		match:   is(domain.ErrNotFound),
		produce: constantError("Entry Not Found", "The history entry no longer exists.", nil),
	},
	{
		match: func(err error) bool {
			return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, domain.ErrTimeout)
		},
		produce: constantError("Timed Out", "The browser took too long to answer.", []string{"Increase browser.timeout in config"}),
	},
	{
		match:   containsAny("connection refused", "dial tcp", "no such host"),
		produce: constantError("Connection Failed", "Could not reach the browser's debugging endpoint.", []string{"Check browser.cdp_url in config"}),
	},
}

// Humanize converts a raw error into a FriendlyError with recovery hints.
func Humanize(err error) FriendlyError {
	if err == nil {
		return FriendlyError{Title: "Unknown Error", Raw: "nil"}
	}
	for _, p := range patterns {
		if p.match(err) {
			fe := p.produce(err)
			if fe.Message == "" && errors.Is(err, domain.ErrConfigLoad) {
				fe.Message = err.Error()
			}
			return fe
		}
	}
	return FriendlyError{
		Title:   "Unexpected Error",
		Message: err.Error(),
		Hints:   []string{"Try again", "Run with --log-level debug for more details"},
		Raw:     err.Error(),
	}
}

// containsAny returns a match func that checks if the error string contains
// any of the given substrings (case-insensitive).
func containsAny(substrs ...string) func(error) bool {
	return func(err error) bool {
		lower := strings.ToLower(err.Error())
		for _, s := range substrs {
			if strings.Contains(lower, s) {
				return true
			}
		}
		return false
	}
}

// constantError returns a produce func that always returns the same FriendlyError.
func constantError(title, message string, hints []string) func(error) FriendlyError {
	return func(err error) FriendlyError {
		return FriendlyError{
			Title:   title,
			Message: message,
			Hints:   hints,
			Raw:     err.Error(),
		}
	}
}
