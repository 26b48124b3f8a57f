package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"sitesearch/internal/adapter/browser"
	"sitesearch/internal/adapter/clipboard"
	"sitesearch/internal/adapter/opener"
	"sitesearch/internal/adapter/store"
	"sitesearch/internal/infra/config"
	"sitesearch/internal/usecase"
)

// CheckStatus represents the result of a health check.
type CheckStatus string

const (
	StatusPass CheckStatus = "PASS"
	StatusWarn CheckStatus = "WARN"
	StatusFail CheckStatus = "FAIL"
)

// CheckResult holds the outcome of a single health check.
type CheckResult struct {
	Name    string
	Status  CheckStatus
	Message string
	Fix     string // optional fix suggestion
}

// Check is a named health check function.
type Check struct {
	Name string
	Fn   func(ctx context.Context, cfg *config.Config) CheckResult
}

func newDoctorCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check config, storage, browser access and the URL opener",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath := resolveConfigPath(g.configPath)
			cfg, cfgErr := config.Load(cfgPath)
			return runDoctor(cmd.Context(), cmd.OutOrStdout(), doctorChecks(cfgPath, cfgErr), cfg)
		},
	}
}

func doctorChecks(cfgPath string, cfgErr error) []Check {
	return []Check{
		{Name: "Config file", Fn: checkConfigFile(cfgPath, cfgErr)},
		{Name: "Data dir", Fn: checkDataDir},
		{Name: "History store", Fn: checkStore},
		{Name: "Browser tab", Fn: checkBrowser},
		{Name: "Clipboard", Fn: checkClipboard},
		{Name: "URL opener", Fn: checkOpener},
	}
}

// runDoctor executes checks and reports results to w.
func runDoctor(ctx context.Context, w io.Writer, checks []Check, cfg *config.Config) error {
	fmt.Fprintln(w, "sitesearch doctor")
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintln(w)

	var pass, warn, fail int
	for _, check := range checks {
		result := check.Fn(ctx, cfg)
		result.Name = check.Name

		fmt.Fprintf(w, "  %s %s: %s\n", statusIcon(result.Status), result.Name, result.Message)
		if result.Fix != "" {
			fmt.Fprintf(w, "      Fix: %s\n", result.Fix)
		}

		switch result.Status {
		case StatusPass:
			pass++
		case StatusWarn:
			warn++
		case StatusFail:
			fail++
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("-", 50))
	fmt.Fprintf(w, "Results: %d passed, %d warnings, %d failed\n", pass, warn, fail)

	if fail > 0 {
		return fmt.Errorf("%d check(s) failed", fail)
	}
	return nil
}

func statusIcon(s CheckStatus) string {
	switch s {
	case StatusPass:
		return "[PASS]"
	case StatusWarn:
		return "[WARN]"
	case StatusFail:
		return "[FAIL]"
	default:
		return "[????]"
	}
}

// checkConfigFile reports on the config file. A missing file is fine, the defaults apply.
func checkConfigFile(cfgPath string, cfgErr error) func(context.Context, *config.Config) CheckResult {
	return func(context.Context, *config.Config) CheckResult {
		if cfgErr != nil {
			return CheckResult{
				Status:  StatusFail,
				Message: fmt.Sprintf("config error: %v", cfgErr),
				Fix:     "Fix " + cfgPath + " or remove it to use the defaults",
			}
		}
		if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
			return CheckResult{
				Status:  StatusWarn,
				Message: fmt.Sprintf("no config at %s, using defaults", cfgPath),
			}
		}
		return CheckResult{
			Status:  StatusPass,
			Message: fmt.Sprintf("config loaded from %s", cfgPath),
		}
	}
}

func checkDataDir(_ context.Context, cfg *config.Config) CheckResult {
	if cfg == nil {
		return CheckResult{Status: StatusFail, Message: "cannot check, config not loaded"}
	}
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return CheckResult{
			Status:  StatusFail,
			Message: fmt.Sprintf("cannot create %s: %v", cfg.DataDir, err),
			Fix:     "Set data_dir or SITESEARCH_DATA_DIR to a writable directory",
		}
	}
	f, err := os.CreateTemp(cfg.DataDir, ".doctor-*")
	if err != nil {
		return CheckResult{
			Status:  StatusFail,
			Message: fmt.Sprintf("%s is not writable: %v", cfg.DataDir, err),
			Fix:     "Set data_dir or SITESEARCH_DATA_DIR to a writable directory",
		}
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return CheckResult{Status: StatusPass, Message: cfg.DataDir + " is writable"}
}

func checkStore(ctx context.Context, cfg *config.Config) CheckResult {
	if cfg == nil {
		return CheckResult{Status: StatusFail, Message: "cannot check, config not loaded"}
	}
	kv, err := store.Open(cfg.Store.Backend, cfg.StorePath())
	if err != nil {
		return CheckResult{
			Status:  StatusFail,
			Message: fmt.Sprintf("%s store at %s: %v", cfg.Store.Backend, cfg.StorePath(), err),
		}
	}
	defer kv.Close()

	history, err := usecase.NewHistoryRepo(kv).Load(ctx)
	if err != nil {
		return CheckResult{
			Status:  StatusWarn,
			Message: fmt.Sprintf("history unreadable: %v", err),
			Fix:     "Run 'sitesearch history clear' to start a fresh history",
		}
	}
	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("%s store at %s, %d entries", cfg.Store.Backend, cfg.StorePath(), len(history)),
	}
}

func checkBrowser(ctx context.Context, cfg *config.Config) CheckResult {
	if cfg == nil {
		return CheckResult{Status: StatusFail, Message: "cannot check, config not loaded"}
	}
	src, err := browser.New(cfg.Browser, "", slog.New(slog.DiscardHandler))
	if err != nil {
		return CheckResult{Status: StatusFail, Message: err.Error()}
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Browser.Timeout)
	defer cancel()

	raw, err := src.ActiveTabURL(ctx)
	if err != nil {
		return CheckResult{
			Status:  StatusWarn,
			Message: fmt.Sprintf("%s: %v", cfg.Browser.Source, err),
			Fix:     browserFix(cfg.Browser),
		}
	}
	host := usecase.ResolveDomain(raw)
	if host == "" {
		return CheckResult{
			Status:  StatusWarn,
			Message: fmt.Sprintf("active tab %q has no searchable domain", raw),
		}
	}
	return CheckResult{Status: StatusPass, Message: fmt.Sprintf("%s reports %s", cfg.Browser.Source, host)}
}

func browserFix(b config.BrowserConfig) string {
	switch b.Source {
	case "cdp":
		return "Start the browser with --remote-debugging-port and check browser.cdp_url (" + b.CDPURL + ")"
	case "applescript":
		return "Allow automation of " + b.App + " in System Settings > Privacy & Security"
	default:
		return "Set browser.static_url"
	}
}

func checkClipboard(_ context.Context, cfg *config.Config) CheckResult {
	if cfg != nil && !cfg.Search.PopulateFromClipboard {
		return CheckResult{Status: StatusPass, Message: "disabled"}
	}
	if !clipboard.Available() {
		return CheckResult{
			Status:  StatusWarn,
			Message: "no clipboard utility found, terms will not be prefilled",
			Fix:     "Install xclip, xsel or wl-clipboard",
		}
	}
	return CheckResult{Status: StatusPass, Message: "available"}
}

func checkOpener(_ context.Context, cfg *config.Config) CheckResult {
	if cfg == nil {
		return CheckResult{Status: StatusFail, Message: "cannot check, config not loaded"}
	}
	o := opener.New(cfg.Opener.Command, cfg.Opener.Args, nil)
	path, err := o.LookPath()
	if err != nil {
		return CheckResult{
			Status:  StatusFail,
			Message: fmt.Sprintf("%s: %v", o.Program(), err),
			Fix:     "Set opener.command to a program that opens URLs",
		}
	}
	return CheckResult{Status: StatusPass, Message: path}
}
