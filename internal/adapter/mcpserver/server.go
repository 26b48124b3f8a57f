// Package mcpserver exposes site search as MCP tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/time/rate"

	"sitesearch/internal/domain"
	"sitesearch/internal/usecase"
)

const instructions = `Build and open searches restricted to one website.
build_search_url is pure and never touches the browser. site_search uses the
domain of the user's active browser tab unless a domain is given, records the
search in the shared history and opens it.`

// Searcher is the part of usecase.SearchService the tools need.
type Searcher interface {
	RefreshDomain(ctx context.Context) (string, error)
	ReloadHistory(ctx context.Context) ([]domain.SearchHistoryEntry, error)
	Submit(ctx context.Context, req usecase.SubmitRequest) (usecase.SubmitResult, error)
	Remove(ctx context.Context, index int) ([]domain.SearchHistoryEntry, error)
	Clear(ctx context.Context) ([]domain.SearchHistoryEntry, error)
	DefaultFilters() domain.SearchFilters
}

// Options configures a Server.
type Options struct {
	Version        string
	OpenRatePerMin int // 0 = unlimited
	Burst          int
	Logger         *slog.Logger
}

// Server wires the search tools into an mcp-go server.
type Server struct {
	svc     Searcher
	limiter *rate.Limiter
	logger  *slog.Logger
	mcp     *server.MCPServer
}

// New creates a Server with every tool registered.
func New(svc Searcher, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	s := &Server{
		svc:     svc,
		limiter: newLimiter(opts.OpenRatePerMin, opts.Burst),
		logger:  opts.Logger,
	}
	s.mcp = server.NewMCPServer("sitesearch", opts.Version,
		server.WithToolCapabilities(false),
		server.WithInstructions(instructions),
		server.WithRecovery(),
	)
	s.mcp.AddTool(buildURLTool(), s.handleBuildURL)
	s.mcp.AddTool(siteSearchTool(), s.handleSiteSearch)
	s.mcp.AddTool(historyTool(), s.handleHistory)
	s.mcp.AddTool(removeHistoryTool(), s.handleRemoveHistory)
	s.mcp.AddTool(clearHistoryTool(), s.handleClearHistory)
	return s
}

func newLimiter(perMin, burst int) *rate.Limiter {
	if perMin <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(float64(perMin)/60.0), burst)
}

// MCP returns the underlying mcp-go server.
func (s *Server) MCP() *server.MCPServer { return s.mcp }

// Serve speaks MCP on in/out until ctx is canceled or in reaches EOF.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	s.logger.Info("mcp server listening on stdio")
	err := stdio.Listen(ctx, in, out)
	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func filterOptions() []mcp.ToolOption {
	engines := make([]string, len(domain.EngineIDs))
	for i, id := range domain.EngineIDs {
		engines[i] = string(id)
	}
	times := make([]string, 0, len(domain.TimeFilters))
	for _, tf := range domain.TimeFilters {
		if tf != domain.TimeAny {
			times = append(times, string(tf))
		}
	}
	types := make([]string, 0, len(domain.FileTypes))
	for _, ft := range domain.FileTypes {
		if ft != domain.FileAny {
			types = append(types, string(ft))
		}
	}
	return []mcp.ToolOption{
		mcp.WithString("engine", mcp.Enum(engines...), mcp.Description("Search engine. Defaults to the configured engine.")),
		mcp.WithString("time_filter", mcp.Enum(times...), mcp.Description("d = past day, w = week, m = month, y = year.")),
		mcp.WithString("file_type", mcp.Enum(types...), mcp.Description("Restrict results to one document type.")),
		mcp.WithBoolean("exact_match", mcp.Description("Quote the query as an exact phrase.")),
	}
}

func buildURLTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Build a site-restricted search URL without opening it."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search term.")),
		mcp.WithString("domain", mcp.Required(), mcp.Description("Hostname to restrict results to, e.g. docs.example.com.")),
		mcp.WithReadOnlyHintAnnotation(true),
	}
	return mcp.NewTool("build_search_url", append(opts, filterOptions()...)...)
}

func siteSearchTool() mcp.Tool {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Search within the site of the active browser tab and open the results."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search term.")),
		mcp.WithString("domain", mcp.Description("Use this hostname instead of the active tab.")),
		mcp.WithBoolean("no_open", mcp.Description("Record and return the URL without opening it.")),
		mcp.WithIdempotentHintAnnotation(false),
	}
	return mcp.NewTool("site_search", append(opts, filterOptions()...)...)
}

func historyTool() mcp.Tool {
	return mcp.NewTool("search_history",
		mcp.WithDescription("List recent site searches, newest first."),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func removeHistoryTool() mcp.Tool {
	return mcp.NewTool("remove_search_history",
		mcp.WithDescription("Remove one entry from the search history."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("Zero-based position as listed by search_history.")),
	)
}

func clearHistoryTool() mcp.Tool {
	return mcp.NewTool("clear_search_history",
		mcp.WithDescription("Delete the whole search history."),
		mcp.WithDestructiveHintAnnotation(true),
	)
}

// filtersFrom reads the optional filter arguments, rejecting unknown values.
func (s *Server) filtersFrom(req mcp.CallToolRequest) (domain.SearchFilters, error) {
	f := s.svc.DefaultFilters()
	if v := strings.TrimSpace(req.GetString("engine", "")); v != "" {
		id := domain.EngineID(strings.ToLower(v))
		if !id.Valid() {
			return f, fmt.Errorf("unknown engine %q: %w", v, domain.ErrInvalidInput)
		}
		f.Engine = id
	}
	if v := strings.TrimSpace(req.GetString("time_filter", "")); v != "" {
		tf := domain.TimeFilter(v)
		if !tf.Valid() {
			return f, fmt.Errorf("unknown time_filter %q: %w", v, domain.ErrInvalidInput)
		}
		f.Time = tf
	}
	if v := strings.TrimSpace(req.GetString("file_type", "")); v != "" {
		ft := domain.FileType(v)
		if !ft.Valid() {
			return f, fmt.Errorf("unknown file_type %q: %w", v, domain.ErrInvalidInput)
		}
		f.FileType = ft
	}
	f.ExactMatch = req.GetBool("exact_match", false)
	return f, nil
}

func (s *Server) handleBuildURL(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	host, err := req.RequireString("domain")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if strings.TrimSpace(query) == "" {
		return toolError("query must not be empty", domain.ErrEmptyQuery), nil
	}
	host = usecase.NormalizeDomain(host)
	if host == "" {
		return toolError("domain must not be empty", domain.ErrNoDomain), nil
	}
	f, err := s.filtersFrom(req)
	if err != nil {
		return toolError(err.Error(), err), nil
	}
	return jsonResult(map[string]any{
		"url":     usecase.BuildSearchURL(strings.TrimSpace(query), host, f),
		"domain":  host,
		"engine":  f.Engine,
		"filters": usecase.DescribeFilters(f),
	})
}

func (s *Server) handleSiteSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	f, err := s.filtersFrom(req)
	if err != nil {
		return toolError(err.Error(), err), nil
	}
	if strings.TrimSpace(query) == "" {
		return toolError("query must not be empty", domain.ErrEmptyQuery), nil
	}
	noOpen := req.GetBool("no_open", false)

	host := usecase.NormalizeDomain(req.GetString("domain", ""))
	if host == "" {
		if _, err := s.svc.RefreshDomain(ctx); err != nil {
			return toolError("could not read the active browser tab: "+err.Error(), err), nil
		}
	}
	if !noOpen && !s.limiter.Allow() {
		return toolError("too many searches opened, try again shortly", domain.ErrRateLimit), nil
	}
	if _, err := s.svc.ReloadHistory(ctx); err != nil {
		s.logger.Warn("reload history failed", "error", err)
	}

	res, err := s.svc.Submit(ctx, usecase.SubmitRequest{Term: query, Filters: f, Domain: host, NoOpen: noOpen})
	if err != nil && res.URL == "" {
		return toolError(err.Error(), err), nil
	}
	out := map[string]any{
		"url":    res.URL,
		"domain": res.Entry.Domain,
		"opened": err == nil && !noOpen,
	}
	if err != nil {
		out["open_error"] = err.Error()
	}
	if res.PersistErr != nil {
		out["history_error"] = res.PersistErr.Error()
	}
	return jsonResult(out)
}

func (s *Server) handleHistory(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	history, err := s.svc.ReloadHistory(ctx)
	if err != nil {
		return toolError(err.Error(), err), nil
	}
	return jsonResult(map[string]any{"entries": history})
}

func (s *Server) handleRemoveHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireFloat("index")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if raw != math.Trunc(raw) {
		return toolError("index must be a whole number", domain.ErrInvalidInput), nil
	}
	if _, err := s.svc.ReloadHistory(ctx); err != nil {
		return toolError(err.Error(), err), nil
	}
	history, err := s.svc.Remove(ctx, int(raw))
	if err != nil && !errors.Is(err, domain.ErrPersistence) {
		return toolError(err.Error(), err), nil
	}
	out := map[string]any{"entries": history}
	if err != nil {
		out["history_error"] = err.Error()
	}
	return jsonResult(out)
}

func (s *Server) handleClearHistory(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_, err := s.svc.Clear(ctx)
	if err != nil {
		return toolError(err.Error(), err), nil
	}
	return jsonResult(map[string]any{"cleared": true})
}

// toolError returns an MCP error result prefixed with the error code of err.
func toolError(msg string, err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("[%s] %s", domain.ErrorCodeOf(err), msg))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError("encode result: " + err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
