package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"sitesearch/internal/adapter/mcpserver"
	"sitesearch/internal/adapter/tui/search"
	"sitesearch/internal/domain"
	"sitesearch/internal/usecase"
)

func newRootCmd() *cobra.Command {
	g := &globalOptions{}
	var staticURL string

	root := &cobra.Command{
		Use:   "sitesearch",
		Short: "Search within the website of the active browser tab",
		Long: `sitesearch reads the domain of the active browser tab and builds a
search restricted to that site, with optional engine, time, file type and
exact phrase filters. Without a subcommand it opens the interactive search.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), g, surfaceTUI, appOptions{staticURL: staticURL})
			if err != nil {
				return err
			}
			defer a.Close()

			opened, err := search.Run(cmd.Context(), a.svc, a.bus, search.Options{
				CloseAfterSubmit: a.cfg.Search.CloseAfterSubmit,
			})
			if err != nil {
				return err
			}
			if opened != "" {
				fmt.Fprintln(cmd.OutOrStdout(), opened)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "config file (default $SITESEARCH_CONFIG or the user config dir)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "override logger.level (debug, info, warn, error)")
	root.Flags().StringVar(&staticURL, "url", "", "use this URL instead of asking the browser")

	root.AddCommand(
		newSearchCmd(g),
		newHistoryCmd(g),
		newEnginesCmd(),
		newMCPCmd(g),
		newDoctorCmd(g),
		newVersionCmd(),
	)
	return root
}

type filterFlags struct {
	engine   string
	time     string
	fileType string
	exact    bool
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.engine, "engine", "e", "", "search engine: "+strings.Join(engineIDs(), ", "))
	cmd.Flags().StringVarP(&f.time, "time", "t", "", "time filter: d, w, m, y")
	cmd.Flags().StringVarP(&f.fileType, "type", "f", "", "file type: pdf, doc, xls, ppt, img, html")
	cmd.Flags().BoolVarP(&f.exact, "exact", "x", false, "match the exact phrase")
}

// resolve validates the flags against defaults.
func (f *filterFlags) resolve(defaults domain.SearchFilters) (domain.SearchFilters, error) {
	out := defaults
	if f.engine != "" {
		id := domain.EngineID(strings.ToLower(f.engine))
		if !id.Valid() {
			return out, fmt.Errorf("--engine %q: want one of %s: %w", f.engine, strings.Join(engineIDs(), ", "), domain.ErrInvalidInput)
		}
		out.Engine = id
	}
	if f.time != "" {
		tf := domain.TimeFilter(strings.ToLower(f.time))
		if !tf.Valid() {
			return out, fmt.Errorf("--time %q: want d, w, m or y: %w", f.time, domain.ErrInvalidInput)
		}
		out.Time = tf
	}
	if f.fileType != "" {
		ft := domain.FileType(strings.ToLower(f.fileType))
		if !ft.Valid() {
			return out, fmt.Errorf("--type %q: unknown file type: %w", f.fileType, domain.ErrInvalidInput)
		}
		out.FileType = ft
	}
	out.ExactMatch = f.exact
	return out, nil
}

func engineIDs() []string {
	ids := make([]string, len(domain.EngineIDs))
	for i, id := range domain.EngineIDs {
		ids[i] = string(id)
	}
	return ids
}

func newSearchCmd(g *globalOptions) *cobra.Command {
	var (
		filters   filterFlags
		host      string
		staticURL string
		noOpen    bool
	)
	cmd := &cobra.Command{
		Use:   "search [flags] TERM...",
		Short: "Build, record and open one site search",
		Example: `  sitesearch search install guide
  sitesearch search -e bing -t w -f pdf --exact budget report
  sitesearch search --domain go.dev --no-open generics`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			host = usecase.NormalizeDomain(host)
			a, err := newApp(ctx, g, surfaceCLI, appOptions{
				staticURL: staticURL,
				noOpen:    noOpen,
				noTabs:    host != "",
			})
			if err != nil {
				return err
			}
			defer a.Close()

			f, err := filters.resolve(a.svc.DefaultFilters())
			if err != nil {
				return err
			}

			if host == "" {
				snap := a.svc.Load(ctx)
				if snap.TabErr != nil {
					return snap.TabErr
				}
				if snap.HistoryErr != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), "warning: "+snap.HistoryErr.Error())
				}
			} else if _, err := a.svc.ReloadHistory(ctx); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: "+err.Error())
			}

			res, err := a.svc.Submit(ctx, usecase.SubmitRequest{
				Term:    strings.Join(args, " "),
				Filters: f,
				Domain:  host,
				NoOpen:  noOpen,
			})
			if res.URL != "" {
				fmt.Fprintln(cmd.OutOrStdout(), res.URL)
			}
			if res.PersistErr != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: "+res.PersistErr.Error())
			}
			return err
		},
	}
	filters.register(cmd)
	cmd.Flags().StringVarP(&host, "domain", "d", "", "search this domain instead of the active tab")
	cmd.Flags().StringVar(&staticURL, "url", "", "use this URL instead of asking the browser")
	cmd.Flags().BoolVarP(&noOpen, "no-open", "n", false, "print the URL without opening it")
	return cmd
}

func newHistoryCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List or edit recent searches",
	}

	var asJSON bool
	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List recent searches, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), g, surfaceCLI, appOptions{noTabs: true, noOpen: true})
			if err != nil {
				return err
			}
			defer a.Close()
			history, err := a.svc.ReloadHistory(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(history)
			}
			writeHistory(cmd.OutOrStdout(), history, a.svc.DefaultFilters().Engine, time.Now())
			return nil
		},
	}
	list.Flags().BoolVar(&asJSON, "json", false, "print the raw entries as JSON")

	remove := &cobra.Command{
		Use:   "remove N",
		Short: "Remove entry N as numbered by 'history list'",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parsePosition(args[0])
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), g, surfaceCLI, appOptions{noTabs: true, noOpen: true})
			if err != nil {
				return err
			}
			defer a.Close()
			if _, err := a.svc.ReloadHistory(cmd.Context()); err != nil {
				return err
			}
			history, err := a.svc.Remove(cmd.Context(), n-1)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed entry %d, %d left\n", n, len(history))
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the whole search history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), g, surfaceCLI, appOptions{noTabs: true, noOpen: true})
			if err != nil {
				return err
			}
			defer a.Close()
			if _, err := a.svc.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "search history cleared")
			return nil
		},
	}

	var noOpen bool
	rerun := &cobra.Command{
		Use:   "rerun N",
		Short: "Run entry N again with its own domain and filters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parsePosition(args[0])
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), g, surfaceCLI, appOptions{noTabs: true, noOpen: noOpen})
			if err != nil {
				return err
			}
			defer a.Close()
			if _, err := a.svc.ReloadHistory(cmd.Context()); err != nil {
				return err
			}
			res, err := a.svc.Rerun(cmd.Context(), n-1, noOpen)
			if res.URL != "" {
				fmt.Fprintln(cmd.OutOrStdout(), res.URL)
			}
			return err
		},
	}
	rerun.Flags().BoolVarP(&noOpen, "no-open", "n", false, "print the URL without opening it")

	cmd.AddCommand(list, remove, clearCmd, rerun)
	return cmd
}

func parsePosition(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("entry number %q must be a positive integer: %w", s, domain.ErrInvalidInput)
	}
	return n, nil
}

func writeHistory(w io.Writer, history []domain.SearchHistoryEntry, defaultEngine domain.EngineID, now time.Time) {
	if len(history) == 0 {
		fmt.Fprintln(w, "no recent searches")
		return
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "TERM", "DOMAIN", "FILTERS", "WHEN")
	for i, e := range history {
		t.Row(
			strconv.Itoa(i+1),
			e.SearchTerm,
			e.Domain,
			usecase.DescribeFilters(e.Filters(defaultEngine)),
			time.UnixMilli(e.Timestamp).Format("2006-01-02 15:04"),
		)
	}
	fmt.Fprintln(w, t.String())
}

func newEnginesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "engines",
		Short: "List the supported search engines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, d := range usecase.Engines() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s\n", d.ID, d.Name)
			}
			return nil
		},
	}
}

func newMCPCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the site search tools over MCP stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), g, surfaceMCP, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			srv := mcpserver.New(a.svc, mcpserver.Options{
				Version:        version,
				OpenRatePerMin: a.cfg.MCP.OpenRatePerMin,
				Burst:          a.cfg.MCP.Burst,
				Logger:         a.logger,
			})
			return srv.Serve(cmd.Context(), os.Stdin, os.Stdout)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "sitesearch "+version)
		},
	}
}
