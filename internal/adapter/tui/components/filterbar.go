package components

import (
	"strings"

	"sitesearch/internal/adapter/tui/theme"
	"sitesearch/internal/domain"
	"sitesearch/internal/usecase"
)

// FilterBarModel renders the current search filters as chips.
// A chip is highlighted when its filter differs from the default.
type FilterBarModel struct {
	Filters       domain.SearchFilters
	DefaultEngine domain.EngineID
	width         int
}

// NewFilterBar creates a filter bar showing the defaults.
func NewFilterBar(defaultEngine domain.EngineID) FilterBarModel {
	return FilterBarModel{
		Filters:       domain.SearchFilters{Engine: defaultEngine},
		DefaultEngine: defaultEngine,
	}
}

// SetWidth updates the bar width.
func (m *FilterBarModel) SetWidth(w int) {
	m.width = w
}

// CycleEngine moves to the next engine.
func (m *FilterBarModel) CycleEngine() {
	m.Filters.Engine = next(domain.EngineIDs, m.Filters.Engine)
}

// CycleTime moves to the next time filter.
func (m *FilterBarModel) CycleTime() {
	m.Filters.Time = next(domain.TimeFilters, m.Filters.Time)
}

// CycleFileType moves to the next file type.
func (m *FilterBarModel) CycleFileType() {
	m.Filters.FileType = next(domain.FileTypes, m.Filters.FileType)
}

// ToggleExact flips exact matching.
func (m *FilterBarModel) ToggleExact() {
	m.Filters.ExactMatch = !m.Filters.ExactMatch
}

// Reset restores the defaults.
func (m *FilterBarModel) Reset() {
	m.Filters = domain.SearchFilters{Engine: m.DefaultEngine}
}

func next[T comparable](values []T, cur T) T {
	for i, v := range values {
		if v == cur {
			return values[(i+1)%len(values)]
		}
	}
	return values[0]
}

// View renders the chips on one line.
func (m FilterBarModel) View() string {
	f := m.Filters
	engine := usecase.Descriptor(f.Engine).Name

	timeLabel := "Any time"
	if f.Time != domain.TimeAny {
		timeLabel = f.Time.Label()
	}
	typeLabel := "Any type"
	if f.FileType != domain.FileAny {
		typeLabel = f.FileType.Label()
	}
	exactLabel := "Exact off"
	if f.ExactMatch {
		exactLabel = "Exact"
	}

	parts := []string{
		chip("^E "+engine, f.Engine != m.DefaultEngine),
		chip("^T "+timeLabel, f.Time != domain.TimeAny),
		chip("^F "+typeLabel, f.FileType != domain.FileAny),
		chip("^X "+exactLabel, f.ExactMatch),
	}
	return strings.Join(parts, " ")
}

func chip(label string, active bool) string {
	if active {
		return theme.ChipActive.Render(label)
	}
	return theme.Chip.Render(label)
}
