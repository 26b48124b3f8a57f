package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"sitesearch/internal/adapter/tui/theme"
)

// KeyHint represents a single keybinding hint shown in the status bar.
type KeyHint struct {
	Key  string // e.g. "enter"
	Desc string // e.g. "search"
}

// StatusBarModel renders a bottom status bar with keybinding hints on the
// left and the engine plus any extra status on the right.
type StatusBarModel struct {
	Hints  []KeyHint
	Engine string
	Extra  string // e.g. "Searching…"
	width  int
}

// NewStatusBar creates an empty status bar.
func NewStatusBar() StatusBarModel {
	return StatusBarModel{}
}

// SetWidth updates the available width.
func (m *StatusBarModel) SetWidth(w int) {
	m.width = w
}

// View renders the status bar as a single line.
func (m StatusBarModel) View() string {
	var hints []string
	for _, h := range m.Hints {
		hints = append(hints, theme.StatusKey.Render(h.Key)+": "+h.Desc)
	}
	left := strings.Join(hints, "  "+theme.Dim.Render("|")+"  ")

	var right string
	if m.Engine != "" {
		right = theme.TextMuted.Render(m.Engine)
	}
	if m.Extra != "" {
		if right != "" {
			right += "  "
		}
		right += theme.TextInfo.Render(m.Extra)
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	if m.width <= 0 {
		return theme.StatusBar.Render(bar)
	}
	return theme.StatusBar.Width(m.width).Render(bar)
}
