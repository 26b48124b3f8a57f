package components

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sitesearch/internal/domain"
)

func TestFilterBarCycles(t *testing.T) {
	fb := NewFilterBar(domain.EngineGoogle)

	fb.CycleEngine()
	assert.Equal(t, domain.EngineDuckDuckGo, fb.Filters.Engine)
	for range domain.EngineIDs[1:] {
		fb.CycleEngine()
	}
	assert.Equal(t, domain.EngineGoogle, fb.Filters.Engine, "engine cycle wraps")

	fb.CycleTime()
	assert.Equal(t, domain.TimeDay, fb.Filters.Time)
	fb.CycleFileType()
	assert.Equal(t, domain.FilePDF, fb.Filters.FileType)
	fb.ToggleExact()
	assert.True(t, fb.Filters.ExactMatch)

	fb.Reset()
	assert.Equal(t, domain.SearchFilters{Engine: domain.EngineGoogle}, fb.Filters)
}

func TestFilterBarUnknownValueRestarts(t *testing.T) {
	fb := NewFilterBar(domain.EngineGoogle)
	fb.Filters.Engine = "altavista"
	fb.CycleEngine()
	assert.Equal(t, domain.EngineGoogle, fb.Filters.Engine)
}

func TestFilterBarView(t *testing.T) {
	fb := NewFilterBar(domain.EngineGoogle)
	fb.Filters = domain.SearchFilters{Engine: domain.EngineBing, Time: domain.TimeWeek, FileType: domain.FilePDF, ExactMatch: true}
	view := fb.View()
	for _, want := range []string{"Bing", "Past week", "PDF", "Exact"} {
		assert.Contains(t, view, want)
	}
}

func TestToastExpires(t *testing.T) {
	var toast ToastModel
	now := time.Unix(100, 0)
	toast.Show(domain.NotificationPayload{Title: "Saved", Style: domain.StyleSuccess}, now, time.Second)
	assert.True(t, toast.Visible())
	assert.Contains(t, toast.View(), "Saved")

	toast.Expire(now.Add(500 * time.Millisecond))
	assert.True(t, toast.Visible())
	toast.Expire(now.Add(time.Second))
	assert.False(t, toast.Visible())
	assert.Empty(t, toast.View())
}

func TestToastWithoutTTLStays(t *testing.T) {
	var toast ToastModel
	toast.Show(domain.NotificationPayload{Title: "Failed", Message: "disk full", Style: domain.StyleFailure}, time.Unix(0, 0), 0)
	toast.Expire(time.Unix(1_000_000, 0))
	assert.True(t, toast.Visible())
	assert.Contains(t, toast.View(), "disk full")
}

func TestHistoryListCursor(t *testing.T) {
	var h HistoryListModel
	h.SetEntries([]domain.SearchHistoryEntry{
		{Domain: "a.com", SearchTerm: "one"},
		{Domain: "b.com", SearchTerm: "two"},
	})
	h.MoveUp()
	assert.Equal(t, 0, h.Cursor)
	h.MoveDown()
	h.MoveDown()
	assert.Equal(t, 1, h.Cursor)

	e, ok := h.Selected()
	assert.True(t, ok)
	assert.Equal(t, "two", e.SearchTerm)

	h.SetEntries(h.Entries[:1])
	assert.Equal(t, 0, h.Cursor)

	h.SetEntries(nil)
	_, ok = h.Selected()
	assert.False(t, ok)
	assert.Contains(t, h.View(), "No recent searches")
}

func TestHistoryListView(t *testing.T) {
	now := time.UnixMilli(10 * 60 * 1000)
	h := HistoryListModel{
		DefaultEngine: domain.EngineGoogle,
		Focused:       true,
		Now:           func() time.Time { return now },
	}
	h.SetEntries([]domain.SearchHistoryEntry{
		{Domain: "a.com", SearchTerm: "plain", Timestamp: now.UnixMilli()},
		{Domain: "b.com", SearchTerm: "filtered", Timestamp: 0, SearchEngine: domain.EngineBing},
	})
	view := h.View()
	assert.Contains(t, view, "plain")
	assert.Contains(t, view, "just now")
	assert.Contains(t, view, "10m ago")
	assert.Contains(t, view, "(Bing)")
	assert.Equal(t, 3, len(strings.Split(view, "\n")))
}

func TestAgo(t *testing.T) {
	now := time.Unix(1_000_000, 0)
	tests := []struct {
		d    time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{5 * time.Minute, "5m ago"},
		{3 * time.Hour, "3h ago"},
		{50 * time.Hour, "2d ago"},
	}
	for _, tt := range tests {
		if got := Ago(now, now.Add(-tt.d)); got != tt.want {
			t.Errorf("Ago(-%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestStatusBarView(t *testing.T) {
	sb := NewStatusBar()
	sb.SetWidth(80)
	sb.Hints = []KeyHint{{Key: "enter", Desc: "search"}}
	sb.Engine = "Google"
	sb.Extra = "Searching"
	view := sb.View()
	assert.Contains(t, view, "enter")
	assert.Contains(t, view, "Google")
	assert.Contains(t, view, "Searching")
}
