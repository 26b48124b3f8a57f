package usecase

import (
	"fmt"

	"sitesearch/internal/domain"
)

// DedupMode selects which fields make two history entries duplicates.
type DedupMode string

const (
	// DedupFull treats entries as duplicates when domain, term, engine and
	// every filter match.
	DedupFull DedupMode = "full"
	// DedupTerm treats entries as duplicates when domain and term match.
	DedupTerm DedupMode = "term"
)

// ParseDedupMode maps s to a DedupMode.
func ParseDedupMode(s string) (DedupMode, error) {
	switch DedupMode(s) {
	case DedupFull, "":
		return DedupFull, nil
	case DedupTerm:
		return DedupTerm, nil
	}
	return "", fmt.Errorf("unknown dedup mode %q: %w", s, domain.ErrInvalidInput)
}

// HistoryPolicy carries the settings the history functions depend on.
type HistoryPolicy struct {
	Mode          DedupMode
	DefaultEngine domain.EngineID
	Limit         int
}

// DefaultHistoryPolicy returns full dedup against Google with the standard cap.
func DefaultHistoryPolicy() HistoryPolicy {
	return HistoryPolicy{Mode: DedupFull, DefaultEngine: domain.EngineGoogle, Limit: domain.MaxHistoryEntries}
}

func (p HistoryPolicy) limit() int {
	if p.Limit <= 0 || p.Limit > domain.MaxHistoryEntries {
		return domain.MaxHistoryEntries
	}
	return p.Limit
}

// Same reports whether a and b collapse into one history slot under p.
func (p HistoryPolicy) Same(a, b domain.SearchHistoryEntry) bool {
	if a.Domain != b.Domain || a.SearchTerm != b.SearchTerm {
		return false
	}
	if p.Mode == DedupTerm {
		return true
	}
	return a.Filters(p.DefaultEngine) == b.Filters(p.DefaultEngine)
}

// RecordSearch returns a new history with entry at the front, any earlier
// duplicate removed and the list truncated to the policy limit.
// The input slice is never modified.
func RecordSearch(history []domain.SearchHistoryEntry, entry domain.SearchHistoryEntry, p HistoryPolicy) []domain.SearchHistoryEntry {
	out := make([]domain.SearchHistoryEntry, 0, len(history)+1)
	out = append(out, entry)
	for _, h := range history {
		if p.Same(h, entry) {
			continue
		}
		out = append(out, h)
	}
	if n := p.limit(); len(out) > n {
		out = out[:n]
	}
	return out
}

// RemoveAt returns a copy of history without the element at index.
// An out-of-range index yields an unchanged copy.
func RemoveAt(history []domain.SearchHistoryEntry, index int) []domain.SearchHistoryEntry {
	out := make([]domain.SearchHistoryEntry, 0, len(history))
	for i, h := range history {
		if i == index {
			continue
		}
		out = append(out, h)
	}
	return out
}

// ClearHistory returns an empty history.
func ClearHistory() []domain.SearchHistoryEntry {
	return []domain.SearchHistoryEntry{}
}
