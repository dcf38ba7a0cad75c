package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gravitrone/cloudconsole/cli/internal/api"
	"github.com/gravitrone/cloudconsole/cli/internal/config"
	"github.com/gravitrone/cloudconsole/cli/internal/log"
	"github.com/gravitrone/cloudconsole/cli/internal/reference"
	"github.com/gravitrone/cloudconsole/cli/internal/ui/components"
)

const tableWidth = 80

// RefsCmd returns the `cloudconsole refs` command group.
func RefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refs",
		Short: "Inspect reference data caches",
	}
	cmd.AddCommand(refsKindsCmd())
	cmd.AddCommand(refsListCmd())
	return cmd
}

func refsKindsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the known reference kinds",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows := make([][]string, 0, len(reference.Kinds()))
			for _, kind := range reference.Kinds() {
				desc, _ := reference.Lookup(kind)
				rows = append(rows, []string{string(kind), desc.Reference, desc.Service + "/" + desc.Resource})
			}
			cols := components.Columns(tableWidth, []string{"Kind", "Reference", "Endpoint"}, 2, 3, 3)
			fmt.Fprintln(cmd.OutOrStdout(), components.TableGrid(cols, rows, tableWidth))
			return nil
		},
	}
}

func refsListCmd() *cobra.Command {
	var lazy bool
	cmd := &cobra.Command{
		Use:   "list <kind>",
		Short: "Load one reference cache and print its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := reference.ParseKind(args[0])
			if err != nil {
				return err
			}
			cfg, client, err := loadSession()
			if err != nil {
				return err
			}
			logger, err := NewLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			reporter := log.NewReporter(logger.Named(log.ModuleReference))
			store, err := reference.NewStore(client, reporter, referenceOptions(cfg, logger), kind)
			if err != nil {
				return err
			}
			cache := store.Cache(kind)
			cache.Load(cmd.Context(), lazy)
			if err := reporter.Last(); err != nil {
				return fmt.Errorf("load %s: %w", kind, err)
			}

			out := cmd.OutOrStdout()
			desc := cache.Descriptor()
			fmt.Fprintf(out, "%s: %d items (%s/%s)\n", kind, cache.Len(), desc.Service, desc.Resource)
			items := cache.Items().Sorted()
			if len(items) == 0 {
				return nil
			}
			rows := make([][]string, len(items))
			for i, item := range items {
				rows[i] = []string{item.Key, item.Label}
			}
			cols := components.Columns(tableWidth, []string{"Key", "Label"}, 2, 3)
			fmt.Fprintln(out, components.TableGrid(cols, rows, tableWidth))
			return nil
		},
	}
	cmd.Flags().BoolVar(&lazy, "lazy", false, "skip the fetch when the cache already has items")
	return cmd
}

// referenceOptions maps the reference config section onto cache options.
func referenceOptions(cfg *config.Config, logger *zap.Logger) reference.Options {
	return reference.Options{
		TTL:     cfg.Reference.TTL.Std(),
		Timeout: cfg.Reference.Timeout.Std(),
		Logger:  logger.Named(log.ModuleReference),
	}
}

// ReferenceKinds parses the configured kinds; empty means every kind.
func ReferenceKinds(cfg *config.Config) ([]reference.Kind, error) {
	kinds := make([]reference.Kind, 0, len(cfg.Reference.Kinds))
	for _, name := range cfg.Reference.Kinds {
		kind, err := reference.ParseKind(name)
		if err != nil {
			return nil, fmt.Errorf("reference.kinds: %w", err)
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

// NewStore builds the reference store described by cfg.
func NewStore(cfg *config.Config, client *api.Client, reporter reference.Reporter, logger *zap.Logger) (*reference.Store, error) {
	kinds, err := ReferenceKinds(cfg)
	if err != nil {
		return nil, err
	}
	return reference.NewStore(client, reporter, referenceOptions(cfg, logger), kinds...)
}
