package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"sitesearch/internal/domain"
	"sitesearch/internal/infra/tracer"
)

// SearchDeps holds the collaborators of a SearchService.
type SearchDeps struct {
	Tabs      domain.TabURLSource    // optional, nil = no tab detection
	Clipboard domain.ClipboardReader // optional, nil = never prefill
	Repo      *HistoryRepo
	Opener    domain.URLOpener // optional, nil = build URLs only
	Bus       domain.EventBus  // optional, nil = no notifications
	Logger    *slog.Logger

	DefaultEngine         domain.EngineID
	PopulateFromClipboard bool
	Policy                HistoryPolicy
	Now                   func() time.Time // optional, defaults to time.Now
}

// Snapshot is the state gathered when the search surface opens.
type Snapshot struct {
	Domain      string
	TabErr      error // non-nil when the active tab could not be resolved
	InitialTerm string
	History     []domain.SearchHistoryEntry
	HistoryErr  error // non-nil when stored history could not be read
	Defaults    domain.SearchFilters
}

// SubmitRequest describes one search.
type SubmitRequest struct {
	Term    string
	Filters domain.SearchFilters
	Domain  string // overrides the detected domain when set
	NoOpen  bool   // build and record without opening
}

// SubmitResult reports the outcome of a successful search.
type SubmitResult struct {
	URL        string
	Entry      domain.SearchHistoryEntry
	History    []domain.SearchHistoryEntry
	PersistErr error // non-nil when the history could not be written
}

// SearchService is the boundary between user actions and the pure search
// functions. It owns the in-memory history and the detected domain.
type SearchService struct {
	deps SearchDeps

	// op is held by every invocation that replaces the history, from the
	// read or mutation through the Save, so snapshots reach the store in order.
	op sync.Mutex

	mu      sync.Mutex
	host    string
	history []domain.SearchHistoryEntry
}

// NewSearchService creates a SearchService with an empty history.
func NewSearchService(deps SearchDeps) *SearchService {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if !deps.DefaultEngine.Valid() {
		deps.DefaultEngine = domain.EngineGoogle
	}
	if deps.Policy.Mode == "" {
		deps.Policy.Mode = DedupFull
	}
	deps.Policy.DefaultEngine = deps.DefaultEngine
	return &SearchService{deps: deps, history: []domain.SearchHistoryEntry{}}
}

// DefaultFilters returns the filters a fresh form starts with.
func (s *SearchService) DefaultFilters() domain.SearchFilters {
	return domain.SearchFilters{Engine: s.deps.DefaultEngine}
}

// Domain returns the domain detected by the last Load.
func (s *SearchService) Domain() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.host
}

// History returns a copy of the in-memory history.
func (s *SearchService) History() []domain.SearchHistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.SearchHistoryEntry(nil), s.history...)
}

// Load reads the active tab, the clipboard and the stored history.
// Failures are reported in the Snapshot; the surface stays usable.
func (s *SearchService) Load(ctx context.Context) Snapshot {
	id, logger := s.begin()
	ctx, span := tracer.StartSpan(ctx, "search.load", trace.WithAttributes(tracer.StringAttr("invocation", id)))
	defer span.End()

	snap := Snapshot{Defaults: s.DefaultFilters()}

	host, err := s.RefreshDomain(ctx)
	if err != nil {
		snap.TabErr = err
		logger.Warn("active tab unavailable", "error", err)
		s.publishTabFailure(ctx, id, err)
	}
	snap.Domain = host

	s.op.Lock()
	defer s.op.Unlock()
	history, err := s.deps.Repo.Load(ctx)
	if err != nil {
		snap.HistoryErr = err
		history = []domain.SearchHistoryEntry{}
		logger.Error("load history failed", "error", err)
		s.notify(ctx, id, domain.EventPersistenceFailed, domain.StyleFailure, "Could not read search history", err.Error())
	}
	s.mu.Lock()
	s.history = history
	s.mu.Unlock()
	snap.History = append([]domain.SearchHistoryEntry(nil), history...)

	if s.deps.PopulateFromClipboard && s.deps.Clipboard != nil {
		text, err := s.deps.Clipboard.ReadText(ctx)
		if err != nil {
			logger.Debug("clipboard unavailable", "error", err)
		}
		snap.InitialTerm = strings.TrimSpace(text)
	}

	span.SetAttributes(tracer.StringAttr("domain", host), tracer.IntAttr("history.count", len(history)))
	if snap.TabErr != nil {
		tracer.RecordError(span, snap.TabErr)
	} else {
		tracer.SetOK(span)
	}
	logger.Debug("search surface loaded", "domain", host, "history", len(history))
	return snap
}

// ReloadHistory replaces the in-memory history with the stored one.
// Long-running surfaces call it so writes from other processes are seen.
func (s *SearchService) ReloadHistory(ctx context.Context) ([]domain.SearchHistoryEntry, error) {
	s.op.Lock()
	defer s.op.Unlock()
	history, err := s.deps.Repo.Load(ctx)
	if err != nil {
		return s.History(), err
	}
	s.mu.Lock()
	s.history = history
	s.mu.Unlock()
	return append([]domain.SearchHistoryEntry(nil), history...), nil
}

// RefreshDomain re-reads the active tab and stores the resolved domain.
// On failure the stored domain is cleared.
func (s *SearchService) RefreshDomain(ctx context.Context) (string, error) {
	host, err := s.detectDomain(ctx)
	s.mu.Lock()
	s.host = host
	s.mu.Unlock()
	return host, err
}

func (s *SearchService) detectDomain(ctx context.Context) (string, error) {
	if s.deps.Tabs == nil {
		return "", domain.NewDomainError("Search.DetectDomain", domain.ErrBrowserUnavailable, "no tab source configured")
	}
	raw, err := s.deps.Tabs.ActiveTabURL(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrBrowserUnavailable) {
			return "", err
		}
		return "", domain.NewDomainError("Search.DetectDomain", domain.ErrBrowserUnavailable, err.Error())
	}
	if strings.TrimSpace(raw) == "" {
		return "", domain.NewDomainError("Search.DetectDomain", domain.ErrBrowserUnavailable, "empty tab url")
	}
	host := strings.TrimSpace(ResolveDomain(raw))
	if host == "" {
		return "", domain.NewDomainError("Search.DetectDomain", domain.ErrNoDomain, raw)
	}
	if !isResolvedHost(raw, host) {
		s.deps.Logger.Debug("tab url is not absolute, using it verbatim",
			"url", raw, "error", domain.ErrMalformedURL)
	}
	return host, nil
}

// Submit builds the URL for req, records it, persists the history and
// opens the URL. A persistence failure does not stop the search.
func (s *SearchService) Submit(ctx context.Context, req SubmitRequest) (SubmitResult, error) {
	s.op.Lock()
	defer s.op.Unlock()
	id, logger := s.begin()
	ctx, span := tracer.StartSpan(ctx, "search.submit", trace.WithAttributes(
		tracer.StringAttr("invocation", id),
		tracer.StringAttr("engine", string(req.Filters.Engine)),
		tracer.BoolAttr("exact", req.Filters.ExactMatch),
	))
	defer span.End()

	res, err := s.submit(ctx, id, logger, req)
	if err != nil {
		tracer.RecordError(span, err)
		return res, err
	}
	span.SetAttributes(tracer.StringAttr("domain", res.Entry.Domain), tracer.IntAttr("history.count", len(res.History)))
	tracer.SetOK(span)
	return res, nil
}

// Rerun repeats the history entry at index with its own domain and filters.
func (s *SearchService) Rerun(ctx context.Context, index int, noOpen bool) (SubmitResult, error) {
	s.mu.Lock()
	if index < 0 || index >= len(s.history) {
		s.mu.Unlock()
		return SubmitResult{}, domain.NewDomainError("Search.Rerun", domain.ErrNotFound, fmt.Sprintf("history index %d", index))
	}
	entry := s.history[index]
	s.mu.Unlock()

	return s.Submit(ctx, SubmitRequest{
		Term:    entry.SearchTerm,
		Filters: entry.Filters(s.deps.DefaultEngine),
		Domain:  entry.Domain,
		NoOpen:  noOpen,
	})
}

func (s *SearchService) submit(ctx context.Context, id string, logger *slog.Logger, req SubmitRequest) (SubmitResult, error) {
	host := NormalizeDomain(req.Domain)
	if host == "" {
		host = s.Domain()
	}
	if host == "" {
		s.notify(ctx, id, domain.EventBrowserUnavailable, domain.StyleFailure,
			"No domain detected", s.tabHint())
		return SubmitResult{}, domain.NewDomainError("Search.Submit", domain.ErrNoDomain, "")
	}

	term := strings.TrimSpace(req.Term)
	if term == "" {
		s.notify(ctx, id, domain.EventSearchEmpty, domain.StyleFailure, "Please enter a search term", "")
		return SubmitResult{}, domain.NewDomainError("Search.Submit", domain.ErrEmptyQuery, "")
	}

	filters := req.Filters
	if !filters.Engine.Valid() {
		filters.Engine = s.deps.DefaultEngine
	}
	searchURL := BuildSearchURL(term, host, filters)

	entry := domain.SearchHistoryEntry{
		Domain:       host,
		SearchTerm:   term,
		Timestamp:    s.deps.Now().UnixMilli(),
		SearchEngine: filters.Engine,
		TimeFilter:   filters.Time,
		FileType:     filters.FileType,
		ExactMatch:   filters.ExactMatch,
	}

	s.mu.Lock()
	s.history = RecordSearch(s.history, entry, s.deps.Policy)
	history := append([]domain.SearchHistoryEntry(nil), s.history...)
	s.mu.Unlock()

	res := SubmitResult{URL: searchURL, Entry: entry, History: history}
	if err := s.deps.Repo.Save(ctx, history); err != nil {
		res.PersistErr = err
		logger.Error("save history failed", "error", err)
		s.notify(ctx, id, domain.EventPersistenceFailed, domain.StyleFailure, "Could not save search history", err.Error())
	}

	logger.Info("search submitted", "engine", filters.Engine, "domain", host,
		"time", filters.Time, "file_type", filters.FileType, "exact", filters.ExactMatch)
	if filters.IsZero(s.deps.DefaultEngine) {
		s.notify(ctx, id, domain.EventSearchSubmitted, domain.StyleSuccess,
			"Searching "+host, Descriptor(filters.Engine).Name)
	} else {
		s.notify(ctx, id, domain.EventFiltersApplied, domain.StyleSuccess,
			"Searching "+host, DescribeFilters(filters))
	}

	if req.NoOpen || s.deps.Opener == nil {
		return res, nil
	}
	if err := s.deps.Opener.Open(ctx, searchURL); err != nil {
		logger.Error("open url failed", "error", err)
		return res, domain.NewDomainError("Search.Submit", domain.ErrOpenFailed, err.Error())
	}
	s.notify(ctx, id, domain.EventSearchOpened, domain.StyleSuccess, "Opened in browser", searchURL)
	return res, nil
}

// Remove deletes the history entry at index and persists the result.
// An out-of-range index leaves the history unchanged and returns ErrNotFound.
func (s *SearchService) Remove(ctx context.Context, index int) ([]domain.SearchHistoryEntry, error) {
	s.op.Lock()
	defer s.op.Unlock()
	id, logger := s.begin()
	ctx, span := tracer.StartSpan(ctx, "history.remove", trace.WithAttributes(
		tracer.StringAttr("invocation", id),
		tracer.IntAttr("index", index),
	))
	defer span.End()

	s.mu.Lock()
	if index < 0 || index >= len(s.history) {
		history := append([]domain.SearchHistoryEntry(nil), s.history...)
		s.mu.Unlock()
		err := domain.NewDomainError("History.Remove", domain.ErrNotFound, fmt.Sprintf("history index %d", index))
		tracer.RecordError(span, err)
		return history, err
	}
	removed := s.history[index]
	s.history = RemoveAt(s.history, index)
	history := append([]domain.SearchHistoryEntry(nil), s.history...)
	s.mu.Unlock()

	logger.Info("history entry removed", "index", index, "domain", removed.Domain)
	s.notify(ctx, id, domain.EventHistoryRemoved, domain.StyleSuccess, "Removed from history", removed.SearchTerm)
	if err := s.persist(ctx, id, logger, history); err != nil {
		tracer.RecordError(span, err)
		return history, err
	}
	tracer.SetOK(span)
	return history, nil
}

// Clear empties the history and persists the result.
func (s *SearchService) Clear(ctx context.Context) ([]domain.SearchHistoryEntry, error) {
	s.op.Lock()
	defer s.op.Unlock()
	id, logger := s.begin()
	ctx, span := tracer.StartSpan(ctx, "history.clear", trace.WithAttributes(tracer.StringAttr("invocation", id)))
	defer span.End()

	s.mu.Lock()
	n := len(s.history)
	s.history = ClearHistory()
	s.mu.Unlock()

	logger.Info("history cleared", "removed", n)
	s.notify(ctx, id, domain.EventHistoryCleared, domain.StyleSuccess, "Search history cleared", "")
	if err := s.persist(ctx, id, logger, ClearHistory()); err != nil {
		tracer.RecordError(span, err)
		return ClearHistory(), err
	}
	tracer.SetOK(span)
	return ClearHistory(), nil
}

// NotifyFiltersChanged publishes engine.changed or filter.changed for a
// single edit from prev to next.
func (s *SearchService) NotifyFiltersChanged(ctx context.Context, prev, next domain.SearchFilters) {
	if prev == next {
		return
	}
	id, _ := s.begin()
	if prev.Engine != next.Engine {
		s.notify(ctx, id, domain.EventEngineChanged, domain.StyleSuccess,
			"Search engine: "+Descriptor(next.Engine).Name, "")
		return
	}
	s.notify(ctx, id, domain.EventFilterChanged, domain.StyleSuccess, "Filters updated", DescribeFilters(next))
}

// ResetFilters returns the default filters and publishes filters.cleared.
func (s *SearchService) ResetFilters(ctx context.Context) domain.SearchFilters {
	id, _ := s.begin()
	s.notify(ctx, id, domain.EventFiltersCleared, domain.StyleSuccess, "Filters cleared", "")
	return s.DefaultFilters()
}

// DescribeFilters renders f as a short human summary.
func DescribeFilters(f domain.SearchFilters) string {
	parts := []string{Descriptor(f.Engine).Name}
	if f.Time != domain.TimeAny {
		parts = append(parts, f.Time.Label())
	}
	if f.FileType != domain.FileAny {
		parts = append(parts, f.FileType.Label())
	}
	if f.ExactMatch {
		parts = append(parts, "Exact match")
	}
	return strings.Join(parts, " · ")
}

func (s *SearchService) persist(ctx context.Context, id string, logger *slog.Logger, history []domain.SearchHistoryEntry) error {
	if err := s.deps.Repo.Save(ctx, history); err != nil {
		logger.Error("save history failed", "error", err)
		s.notify(ctx, id, domain.EventPersistenceFailed, domain.StyleFailure, "Could not save search history", err.Error())
		return err
	}
	return nil
}

func (s *SearchService) begin() (string, *slog.Logger) {
	id := newInvocationID(s.deps.Now())
	return id, s.deps.Logger.With("invocation", id)
}

func (s *SearchService) tabHint() string {
	if s.deps.Tabs == nil {
		return "Pass a domain explicitly"
	}
	return fmt.Sprintf("Make sure the browser (%s) is running with an active tab", s.deps.Tabs.Name())
}

func (s *SearchService) publishTabFailure(ctx context.Context, id string, err error) {
	title := "Failed to get current URL"
	if errors.Is(err, domain.ErrNoDomain) {
		title = "No domain detected"
	}
	s.notify(ctx, id, domain.EventBrowserUnavailable, domain.StyleFailure, title, s.tabHint())
}

func (s *SearchService) notify(ctx context.Context, id string, typ domain.EventType, style domain.NotificationStyle, title, message string) {
	if s.deps.Bus == nil {
		return
	}
	payload, _ := json.Marshal(domain.NotificationPayload{Title: title, Message: message, Style: style})
	s.deps.Bus.Publish(ctx, domain.Event{
		Type:      typ,
		Timestamp: s.deps.Now(),
		SessionID: id,
		Payload:   payload,
	})
}
