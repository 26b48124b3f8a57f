package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sitesearch/internal/adapter/browser"
	"sitesearch/internal/adapter/clipboard"
	"sitesearch/internal/adapter/opener"
	"sitesearch/internal/adapter/store"
	"sitesearch/internal/domain"
	"sitesearch/internal/infra/config"
	"sitesearch/internal/infra/logger"
	"sitesearch/internal/infra/tracer"
	"sitesearch/internal/usecase"
	"sitesearch/internal/usecase/eventbus"
)

// surface says who owns the terminal streams.
type surface int

const (
	surfaceCLI surface = iota // stdout carries results, logs go to stderr
	surfaceTUI                // the terminal is drawn on, logs go to a file
	surfaceMCP                // stdout carries the protocol
)

// globalOptions are the persistent root flags.
type globalOptions struct {
	configPath string
	logLevel   string
}

// appOptions tweak wiring for one command.
type appOptions struct {
	staticURL string // skip tab detection and use this URL
	noOpen    bool   // never start the opener
	noTabs    bool   // the command does not need the active tab
}

// app holds the wired dependencies of one command run.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	bus    *eventbus.Bus
	store  domain.KVStore
	tabs   domain.TabURLSource
	opener domain.URLOpener
	svc    *usecase.SearchService

	closers []func()
}

// resolveConfigPath picks --config, then SITESEARCH_CONFIG, then the default.
func resolveConfigPath(flag string) string {
	if flag != "" {
		return flag
	}
	if p := os.Getenv(config.EnvPrefix + "CONFIG"); p != "" {
		return p
	}
	return config.DefaultPath()
}

func loadConfig(g *globalOptions) (*config.Config, error) {
	cfg, err := config.Load(resolveConfigPath(g.configPath))
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if g.logLevel != "" {
		cfg.Logger.Level = g.logLevel
	}
	return cfg, nil
}

// newApp wires logger, tracer, bus, store, tab source, clipboard and opener
// into a SearchService.
func newApp(ctx context.Context, g *globalOptions, s surface, o appOptions) (*app, error) {
	cfg, err := loadConfig(g)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg}

	logCfg := cfg.Logger
	switch s {
	case surfaceTUI:
		logCfg = logger.AwayFromTerminal(logCfg, cfg.LogFilePath())
	case surfaceMCP:
		if strings.EqualFold(logCfg.Output, "stdout") {
			logCfg.Output = "stderr"
		}
	}
	log, logCloser, err := logger.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	a.logger = log
	a.closers = append(a.closers, func() { _ = logCloser() })

	traceOut, traceCloser, err := traceWriter(cfg, s)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("tracer: %w", err)
	}
	a.closers = append(a.closers, traceCloser)
	shutdown, err := tracer.Setup(ctx, cfg.Tracer, traceOut)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("tracer: %w", err)
	}
	a.closers = append(a.closers, func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			log.Warn("tracer shutdown", "error", err)
		}
	})

	a.bus = eventbus.New(log)
	a.closers = append(a.closers, a.bus.Close)

	kv, err := store.Open(cfg.Store.Backend, cfg.StorePath())
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("store: %w", err)
	}
	a.store = kv
	a.closers = append(a.closers, func() { _ = kv.Close() })

	if !o.noTabs {
		a.tabs, err = browser.New(cfg.Browser, o.staticURL, log)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("browser: %w", err)
		}
	}

	if o.noOpen {
		a.opener = opener.Discard{}
	} else {
		a.opener = opener.New(cfg.Opener.Command, cfg.Opener.Args, log)
	}

	policy := usecase.DefaultHistoryPolicy()
	if mode, err := usecase.ParseDedupMode(cfg.Search.Dedup); err == nil {
		policy.Mode = mode
	}
	policy.Limit = cfg.Search.HistoryLimit

	deps := usecase.SearchDeps{
		Tabs:                  a.tabs,
		Repo:                  usecase.NewHistoryRepo(kv),
		Opener:                a.opener,
		Bus:                   a.bus,
		Logger:                log,
		DefaultEngine:         domain.ParseEngine(cfg.Search.Engine),
		PopulateFromClipboard: cfg.Search.PopulateFromClipboard && s == surfaceTUI,
		Policy:                policy,
	}
	if deps.PopulateFromClipboard {
		deps.Clipboard = clipboard.New()
	}
	a.svc = usecase.NewSearchService(deps)

	log.Debug("app wired",
		"store", cfg.Store.Backend,
		"store_path", cfg.StorePath(),
		"browser", cfg.Browser.Source,
		"engine", deps.DefaultEngine,
	)
	return a, nil
}

// traceWriter returns where stdout spans go. The TUI writes them to a file.
func traceWriter(cfg *config.Config, s surface) (io.Writer, func(), error) {
	if !cfg.Tracer.Enabled || cfg.Tracer.Exporter != "stdout" || s != surfaceTUI {
		return os.Stderr, func() {}, nil
	}
	path := filepath.Join(cfg.DataDir, "traces.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
