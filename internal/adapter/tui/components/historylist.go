package components

import (
	"fmt"
	"strings"
	"time"

	"sitesearch/internal/adapter/tui/theme"
	"sitesearch/internal/domain"
	"sitesearch/internal/usecase"
)

// HistoryListModel renders recent searches with a movable cursor.
type HistoryListModel struct {
	Entries       []domain.SearchHistoryEntry
	Cursor        int
	Focused       bool
	DefaultEngine domain.EngineID
	Now           func() time.Time
}

// SetEntries replaces the list and keeps the cursor in range.
func (m *HistoryListModel) SetEntries(entries []domain.SearchHistoryEntry) {
	m.Entries = entries
	m.clamp()
}

// MoveUp moves the cursor one row up.
func (m *HistoryListModel) MoveUp() {
	m.Cursor--
	m.clamp()
}

// MoveDown moves the cursor one row down.
func (m *HistoryListModel) MoveDown() {
	m.Cursor++
	m.clamp()
}

// Selected returns the entry under the cursor.
func (m HistoryListModel) Selected() (domain.SearchHistoryEntry, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Entries) {
		return domain.SearchHistoryEntry{}, false
	}
	return m.Entries[m.Cursor], true
}

func (m *HistoryListModel) clamp() {
	if len(m.Entries) == 0 {
		m.Cursor = 0
		return
	}
	m.Cursor = theme.Clamp(m.Cursor, 0, len(m.Entries)-1)
}

func (m HistoryListModel) View() string {
	if len(m.Entries) == 0 {
		return theme.Dim.Render("No recent searches")
	}
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	var sb strings.Builder
	sb.WriteString(theme.Bold.Render("Recent searches"))
	for i, e := range m.Entries {
		sb.WriteString("\n")
		line := fmt.Sprintf("%s %s %s", e.SearchTerm, theme.SymbolArrowR, e.Domain)
		if f := e.Filters(m.DefaultEngine); !f.IsZero(m.DefaultEngine) {
			line += " (" + usecase.DescribeFilters(f) + ")"
		}
		ago := theme.Timestamp.Render(Ago(now(), time.UnixMilli(e.Timestamp)))
		if m.Focused && i == m.Cursor {
			sb.WriteString(theme.HistorySelected.Render(theme.SymbolCursor+" "+line) + "  " + ago)
		} else {
			sb.WriteString(theme.HistoryRow.Render("  "+line) + "  " + ago)
		}
	}
	return sb.String()
}

// Ago renders the age of t relative to now in coarse units.
func Ago(now, t time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	default:
		return fmt.Sprintf("%dd ago", int(d/(24*time.Hour)))
	}
}
