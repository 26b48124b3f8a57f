// Package search implements the interactive site search surface.
package search

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"sitesearch/internal/adapter/tui/components"
	"sitesearch/internal/adapter/tui/theme"
	"sitesearch/internal/adapter/tui/uxerror"
	"sitesearch/internal/domain"
	"sitesearch/internal/usecase"
)

// Service is what the model needs from usecase.SearchService.
type Service interface {
	Load(ctx context.Context) usecase.Snapshot
	Submit(ctx context.Context, req usecase.SubmitRequest) (usecase.SubmitResult, error)
	Rerun(ctx context.Context, index int, noOpen bool) (usecase.SubmitResult, error)
	Remove(ctx context.Context, index int) ([]domain.SearchHistoryEntry, error)
	Clear(ctx context.Context) ([]domain.SearchHistoryEntry, error)
	NotifyFiltersChanged(ctx context.Context, prev, next domain.SearchFilters)
	ResetFilters(ctx context.Context) domain.SearchFilters
	DefaultFilters() domain.SearchFilters
}

// Options tunes the model.
type Options struct {
	CloseAfterSubmit bool
	ToastTTL         time.Duration // 0 = 3s
	Now              func() time.Time
}

type focusArea int

const (
	focusInput focusArea = iota
	focusHistory
)

// Model is the root bubbletea model of the search surface.
type Model struct {
	ctx  context.Context
	svc  Service
	opts Options
	keys keyMap

	input   textinput.Model
	spinner spinner.Model
	filters components.FilterBarModel
	history components.HistoryListModel
	status  components.StatusBarModel
	toast   components.ToastModel

	loading bool
	busy    bool
	focus   focusArea
	host    string
	tabErr  error
	lastErr error
	lastURL string
	width   int
	done    bool
}

// New creates the model. Call Init (or run it in a tea.Program) to load.
func New(ctx context.Context, svc Service, opts Options) Model {
	if opts.ToastTTL <= 0 {
		opts.ToastTTL = 3 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	ti := textinput.New()
	ti.Placeholder = "Search term"
	ti.Prompt = theme.SymbolSearch + " "
	ti.PromptStyle = theme.InputPrompt
	ti.PlaceholderStyle = theme.InputPlaceholder
	ti.CharLimit = 512
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.TextInfo

	defaults := svc.DefaultFilters()
	m := Model{
		ctx:     ctx,
		svc:     svc,
		opts:    opts,
		keys:    defaultKeys(),
		input:   ti,
		spinner: sp,
		filters: components.NewFilterBar(defaults.Engine),
		history: components.HistoryListModel{DefaultEngine: defaults.Engine, Now: opts.Now},
		status:  components.NewStatusBar(),
		loading: true,
	}
	m.refreshStatus()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadCmd(), textinput.Blink)
}

func (m Model) loadCmd() tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		return loadedMsg{snap: svc.Load(ctx)}
	}
}

// LastURL returns the URL of the most recent successful search.
func (m Model) LastURL() string { return m.lastURL }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = theme.Clamp(msg.Width, 20, theme.MaxContentWidth)
		m.input.Width = m.width - 6
		m.filters.SetWidth(m.width)
		m.status.SetWidth(m.width)
		return m, nil

	case spinner.TickMsg:
		if !m.loading && !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadedMsg:
		m.loading = false
		m.host = msg.snap.Domain
		m.tabErr = msg.snap.TabErr
		m.filters.Filters = msg.snap.Defaults
		m.history.SetEntries(msg.snap.History)
		if msg.snap.InitialTerm != "" && m.input.Value() == "" {
			m.input.SetValue(msg.snap.InitialTerm)
			m.input.CursorEnd()
		}
		m.refreshStatus()
		return m, nil

	case submitDoneMsg:
		m.busy = false
		m.lastErr = msg.err
		if msg.res.URL != "" {
			m.history.SetEntries(msg.res.History)
		}
		if msg.err == nil {
			m.lastURL = msg.res.URL
			m.input.SetValue("")
			if m.opts.CloseAfterSubmit {
				m.done = true
				return m, tea.Quit
			}
		}
		m.refreshStatus()
		return m, nil

	case historyChangedMsg:
		m.busy = false
		m.lastErr = msg.err
		m.history.SetEntries(msg.history)
		if len(msg.history) == 0 {
			m.setFocus(focusInput)
		}
		m.refreshStatus()
		return m, nil

	case NotificationMsg:
		m.toast.Show(msg.Payload, m.opts.Now(), m.opts.ToastTTL)
		ttl := m.opts.ToastTTL
		return m, tea.Tick(ttl, func(time.Time) tea.Msg { return toastTickMsg{} })

	case toastTickMsg:
		m.toast.Expire(m.opts.Now())
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.done = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Focus):
		if m.focus == focusInput && len(m.history.Entries) > 0 {
			m.setFocus(focusHistory)
		} else {
			m.setFocus(focusInput)
		}
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		if m.loading || m.busy {
			return m, nil
		}
		if m.focus == focusHistory {
			return m.rerunSelected()
		}
		return m.submit()

	case key.Matches(msg, m.keys.Engine):
		return m.editFilters((*components.FilterBarModel).CycleEngine)
	case key.Matches(msg, m.keys.Time):
		return m.editFilters((*components.FilterBarModel).CycleTime)
	case key.Matches(msg, m.keys.FileType):
		return m.editFilters((*components.FilterBarModel).CycleFileType)
	case key.Matches(msg, m.keys.Exact):
		return m.editFilters((*components.FilterBarModel).ToggleExact)

	case key.Matches(msg, m.keys.Reset):
		m.filters.Filters = m.svc.ResetFilters(m.ctx)
		m.refreshStatus()
		return m, nil

	case key.Matches(msg, m.keys.Remove):
		return m.removeSelected()

	case key.Matches(msg, m.keys.Clear):
		if m.busy || len(m.history.Entries) == 0 {
			return m, nil
		}
		m.busy = true
		ctx, svc := m.ctx, m.svc
		return m, func() tea.Msg {
			h, err := svc.Clear(ctx)
			return historyChangedMsg{history: h, err: err}
		}

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
		return m, nil
	}

	if m.focus == focusHistory {
		switch {
		case key.Matches(msg, m.keys.VimUp):
			m.history.MoveUp()
		case key.Matches(msg, m.keys.VimDown):
			m.history.MoveDown()
		case key.Matches(msg, m.keys.VimRemove):
			return m.removeSelected()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	m.busy = true
	m.refreshStatus()
	ctx, svc := m.ctx, m.svc
	req := usecase.SubmitRequest{Term: m.input.Value(), Filters: m.filters.Filters}
	return m, func() tea.Msg {
		res, err := svc.Submit(ctx, req)
		return submitDoneMsg{res: res, err: err}
	}
}

func (m Model) rerunSelected() (tea.Model, tea.Cmd) {
	if _, ok := m.history.Selected(); !ok {
		return m, nil
	}
	m.busy = true
	m.refreshStatus()
	ctx, svc, idx := m.ctx, m.svc, m.history.Cursor
	return m, func() tea.Msg {
		res, err := svc.Rerun(ctx, idx, false)
		return submitDoneMsg{res: res, err: err}
	}
}

func (m Model) removeSelected() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	if _, ok := m.history.Selected(); !ok {
		return m, nil
	}
	m.busy = true
	ctx, svc, idx := m.ctx, m.svc, m.history.Cursor
	return m, func() tea.Msg {
		h, err := svc.Remove(ctx, idx)
		return historyChangedMsg{history: h, err: err}
	}
}

func (m Model) editFilters(edit func(*components.FilterBarModel)) (tea.Model, tea.Cmd) {
	prev := m.filters.Filters
	edit(&m.filters)
	m.svc.NotifyFiltersChanged(m.ctx, prev, m.filters.Filters)
	m.refreshStatus()
	return m, nil
}

func (m *Model) moveCursor(delta int) {
	if len(m.history.Entries) == 0 {
		return
	}
	if m.focus != focusHistory {
		m.setFocus(focusHistory)
		return
	}
	if delta < 0 {
		if m.history.Cursor == 0 {
			m.setFocus(focusInput)
			return
		}
		m.history.MoveUp()
	} else {
		m.history.MoveDown()
	}
}

func (m *Model) setFocus(f focusArea) {
	m.focus = f
	m.history.Focused = f == focusHistory
	if f == focusInput {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
	m.refreshStatus()
}

func (m *Model) refreshStatus() {
	m.status.Engine = usecase.Descriptor(m.filters.Filters.Engine).Name
	switch {
	case m.loading:
		m.status.Extra = "Reading active tab" + theme.SymbolEllipsis
	case m.busy:
		m.status.Extra = "Working" + theme.SymbolEllipsis
	default:
		m.status.Extra = ""
	}
	submit := components.KeyHint{Key: "enter", Desc: "search"}
	if m.focus == focusHistory {
		submit.Desc = "run again"
	}
	m.status.Hints = []components.KeyHint{
		submit,
		{Key: "tab", Desc: "history"},
		{Key: "^E/^T/^F/^X", Desc: "filters"},
		{Key: "^R", Desc: "reset"},
		{Key: "esc", Desc: "quit"},
	}
}

func (m Model) View() string {
	if m.done {
		return ""
	}
	var sections []string
	sections = append(sections, theme.Title.Render(theme.SymbolSearch+" Site Search"))

	switch {
	case m.loading:
		sections = append(sections, m.spinner.View()+" Reading active tab"+theme.SymbolEllipsis)
	case m.tabErr != nil:
		fe := uxerror.Humanize(m.tabErr)
		sections = append(sections, theme.TextError.Render(theme.SymbolError+" "+fe.Title))
	default:
		sections = append(sections, "Searching on: "+theme.DomainName.Render(m.host))
	}

	box := theme.UnfocusedBorder
	if m.focus == focusInput {
		box = theme.FocusBorder
	}
	if m.width > 0 {
		box = box.Width(m.width - 2)
	}
	sections = append(sections, box.Render(m.input.View()))
	sections = append(sections, m.filters.View())

	if m.lastErr != nil && !errors.Is(m.lastErr, domain.ErrEmptyQuery) {
		fe := uxerror.Humanize(m.lastErr)
		sections = append(sections, theme.TextError.Render(fe.Render()))
	}
	if m.toast.Visible() {
		sections = append(sections, m.toast.View())
	}
	sections = append(sections, "", m.history.View(), "", m.status.View())
	return strings.TrimRight(lipgloss.JoinVertical(lipgloss.Left, sections...), "\n")
}
