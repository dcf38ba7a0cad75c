package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gravitrone/cloudconsole/cli/internal/api"
	"github.com/gravitrone/cloudconsole/cli/internal/config"
	"github.com/gravitrone/cloudconsole/cli/internal/log"
	"github.com/gravitrone/cloudconsole/cli/internal/querysearch"
	"github.com/gravitrone/cloudconsole/cli/internal/reference"
	"github.com/gravitrone/cloudconsole/cli/internal/ui/components"
)

// SearchPropsCmd returns the `cloudconsole search-props` command.
func SearchPropsCmd() *cobra.Command {
	var (
		schemaFile   string
		resourceType string
		asJSON       bool
	)
	cmd := &cobra.Command{
		Use:   "search-props",
		Short: "Map a search schema to search keys and value handlers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				if !errors.Is(err, os.ErrNotExist) {
					return err
				}
				cfg = config.Defaults()
			}
			if resourceType == "" {
				resourceType = cfg.Search.ResourceType
			}
			if schemaFile == "" {
				schemaFile = cfg.Search.SchemaFile
			}
			client := NewClient(cfg)
			logger, err := NewLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			var groups []api.SearchSchemaGroup
			if schemaFile != "" {
				groups, err = querysearch.LoadSchemaFile(schemaFile)
			} else {
				groups, err = client.SearchSchema(cmd.Context(), resourceType)
			}
			if err != nil {
				return err
			}

			kinds := referencedKinds(groups)
			reporter := log.NewReporter(logger.Named(log.ModuleReference))
			store, err := reference.NewStore(client, reporter, referenceOptions(cfg, logger), kinds...)
			if err != nil {
				return err
			}
			mapper := querysearch.NewMapper(store, client, querysearch.MapperOptions{
				ResourceType:  resourceType,
				DistinctLimit: cfg.Search.DistinctLimit,
			})
			if err := mapper.ValidateSchema(groups); err != nil {
				return err
			}
			if len(kinds) > 0 {
				if err := store.LoadAll(cmd.Context(), false); err != nil {
					return err
				}
				if err := reporter.Last(); err != nil {
					return fmt.Errorf("load references: %w", err)
				}
			}

			props, err := mapper.Build(groups)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(props.KeyItemSets)
			}
			printProps(out, props)
			return nil
		},
	}
	cmd.Flags().StringVar(&schemaFile, "schema", "", "read the schema from a YAML or JSON file instead of the API")
	cmd.Flags().StringVar(&resourceType, "resource-type", "", "resource type the schema and distinct values belong to")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the key sets as JSON")
	return cmd
}

// referencedKinds returns the known kinds the schema points at. Unknown
// references are left for ValidateSchema to report.
func referencedKinds(groups []api.SearchSchemaGroup) []reference.Kind {
	seen := map[reference.Kind]bool{}
	var kinds []reference.Kind
	for _, g := range groups {
		for _, item := range g.Items {
			if item.Reference == "" || len(item.Enums) > 0 {
				continue
			}
			kind, err := reference.ParseKind(item.Reference)
			if err != nil || seen[kind] {
				continue
			}
			seen[kind] = true
			kinds = append(kinds, kind)
		}
	}
	return kinds
}

func printProps(out io.Writer, props querysearch.Props) {
	for i, set := range props.KeyItemSets {
		if i > 0 {
			fmt.Fprintln(out)
		}
		title := set.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Fprintln(out, title)
		rows := make([][]string, len(set.Items))
		for j, item := range set.Items {
			handler := ""
			if h, ok := props.ValueHandlerMap[item.Name]; ok {
				handler = string(h.Kind())
			}
			rows[j] = []string{item.Name, item.Label, handler, propDetail(item)}
		}
		cols := components.Columns(tableWidth, []string{"Key", "Label", "Handler", "Detail"}, 3, 3, 2, 4)
		fmt.Fprintln(out, components.TableGrid(cols, rows, tableWidth))
	}
}

func propDetail(item querysearch.KeyItem) string {
	parts := make([]string, 0, 3)
	if item.Reference != "" {
		parts = append(parts, fmt.Sprintf("%s, %d values", item.Reference, len(item.ValueSet)))
	} else if item.DataType != "" {
		parts = append(parts, item.DataType)
	}
	if len(item.Operators) > 0 {
		parts = append(parts, strings.Join(item.Operators, " "))
	}
	return strings.Join(parts, "; ")
}
