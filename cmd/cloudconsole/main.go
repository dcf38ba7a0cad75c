package main

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gravitrone/cloudconsole/cli/internal/api"
	"github.com/gravitrone/cloudconsole/cli/internal/cmd"
	"github.com/gravitrone/cloudconsole/cli/internal/config"
	"github.com/gravitrone/cloudconsole/cli/internal/diffview"
	"github.com/gravitrone/cloudconsole/cli/internal/log"
	"github.com/gravitrone/cloudconsole/cli/internal/querysearch"
	"github.com/gravitrone/cloudconsole/cli/internal/ui"
)

func main() {
	root := &cobra.Command{
		Use:   "cloudconsole",
		Short: "Cloud console reference data, search and diff",
		Long:  "cloudconsole: browse cached reference data, build search queries from the server schema, and diff refreshed data.",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runTUI()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(cmd.LoginCmd())
	root.AddCommand(cmd.StatusCmd())
	root.AddCommand(cmd.RefsCmd())
	root.AddCommand(cmd.SearchPropsCmd())
	root.AddCommand(cmd.DiffCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Force truecolor so hex colors render correctly
	// Must be set before any lipgloss style initialization
	os.Setenv("COLORTERM", "truecolor")
}

func runTUI() error {
	cfg, err := config.Load()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && isInteractiveTerminal(os.Stdout) {
			fmt.Println("not logged in. run 'cloudconsole login' first.")
		}
		return err
	}
	if !isInteractiveTerminal(os.Stdin) || !isInteractiveTerminal(os.Stdout) {
		return fmt.Errorf("the console needs an interactive terminal; see 'cloudconsole --help' for commands")
	}

	// Log to a file (or nowhere) while the alternate screen is up.
	var logger *zap.Logger
	if cfg.LogFile != "" {
		if logger, err = cmd.NewLogger(cfg); err != nil {
			return err
		}
	} else {
		logger = zap.NewNop()
	}
	defer func() { _ = logger.Sync() }()

	deps, cleanup, err := buildDeps(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	p := tea.NewProgram(ui.NewApp(deps), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

// buildDeps wires the long-lived services behind the TUI.
func buildDeps(cfg *config.Config, logger *zap.Logger) (ui.Deps, func(), error) {
	client := cmd.NewClient(cfg)
	reporter := log.NewReporter(logger.Named(log.ModuleReference))
	store, err := cmd.NewStore(cfg, client, reporter, logger)
	if err != nil {
		return ui.Deps{}, nil, err
	}

	var schema []api.SearchSchemaGroup
	if cfg.Search.SchemaFile != "" {
		if schema, err = querysearch.LoadSchemaFile(cfg.Search.SchemaFile); err != nil {
			return ui.Deps{}, nil, err
		}
	}
	mapper := querysearch.NewMapper(store, client, querysearch.MapperOptions{
		ResourceType:  cfg.Search.ResourceType,
		DistinctLimit: cfg.Search.DistinctLimit,
	})
	binding := querysearch.NewBinding(mapper, cfg.Search.Debounce.Std(), logger.Named(log.ModuleSearch))

	mode, err := diffview.ParseMode(cfg.Diff.Mode)
	if err != nil {
		binding.Close()
		return ui.Deps{}, nil, fmt.Errorf("diff.mode: %w", err)
	}
	opts := diffview.Options{Mode: mode, Folding: cfg.Diff.Folding}
	if vs := cfg.Diff.VirtualScroll; vs != nil {
		opts.VirtualScroll = &diffview.VirtualScroll{
			Height:        vs.Height,
			LineMinHeight: vs.LineMinHeight,
			Delay:         vs.Delay.Std(),
		}
	}
	viewer := diffview.NewViewer(opts, cfg.Diff.InputDelay.Std())

	deps := ui.Deps{
		Client:   client,
		Config:   cfg,
		Store:    store,
		Binding:  binding,
		Viewer:   viewer,
		Reporter: reporter,
		Logger:   logger.Named(log.ModuleUI),
		Schema:   schema,
	}
	cleanup := func() {
		binding.Close()
		viewer.Close()
	}
	return deps, cleanup, nil
}

func isInteractiveTerminal(file *os.File) bool {
	if file == nil {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
