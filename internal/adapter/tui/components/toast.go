package components

import (
	"time"

	"sitesearch/internal/adapter/tui/theme"
	"sitesearch/internal/domain"
)

// ToastModel shows the most recent notification until it expires.
type ToastModel struct {
	Title   string
	Message string
	Style   domain.NotificationStyle
	until   time.Time
}

// Show replaces the current toast. ttl <= 0 keeps it until the next one.
func (m *ToastModel) Show(p domain.NotificationPayload, now time.Time, ttl time.Duration) {
	m.Title = p.Title
	m.Message = p.Message
	m.Style = p.Style
	m.until = time.Time{}
	if ttl > 0 {
		m.until = now.Add(ttl)
	}
}

// Expire hides the toast once its deadline has passed.
func (m *ToastModel) Expire(now time.Time) {
	if !m.until.IsZero() && !now.Before(m.until) {
		*m = ToastModel{}
	}
}

// Visible reports whether a toast is showing.
func (m ToastModel) Visible() bool { return m.Title != "" }

func (m ToastModel) View() string {
	if !m.Visible() {
		return ""
	}
	var head string
	if m.Style == domain.StyleFailure {
		head = theme.TextError.Render(theme.SymbolError + " " + m.Title)
	} else {
		head = theme.TextSuccess.Render(theme.SymbolSuccess + " " + m.Title)
	}
	if m.Message == "" {
		return head
	}
	return head + " " + theme.TextMuted.Render(m.Message)
}
