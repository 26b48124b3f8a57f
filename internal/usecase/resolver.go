package usecase

import (
	"net/url"
	"strings"
)

// ResolveDomain extracts the lowercase hostname from a tab URL.
// Input that does not parse as an absolute URL is returned unchanged.
// Absolute URLs without a host (about:blank, file:///x) yield "".
func ResolveDomain(raw string) string {
	trimmed := strings.TrimSpace(raw)
	u, err := url.Parse(trimmed)
	if err != nil || u.Scheme == "" {
		return raw
	}
	return strings.ToLower(u.Hostname())
}

// NormalizeDomain turns a user-supplied domain or URL into a history key.
// Absolute URLs resolve as in ResolveDomain. Bare hostnames are trimmed
// and lowercased.
func NormalizeDomain(raw string) string {
	host := ResolveDomain(raw)
	if isResolvedHost(raw, host) {
		return host
	}
	return strings.ToLower(strings.TrimSpace(host))
}

// isResolvedHost reports whether ResolveDomain produced a hostname from raw
// rather than echoing malformed input.
func isResolvedHost(raw, host string) bool {
	if host == "" {
		return false
	}
	u, err := url.Parse(strings.TrimSpace(raw))
	return err == nil && u.Scheme != ""
}
