package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gravitrone/cloudconsole/cli/internal/config"
	"github.com/gravitrone/cloudconsole/cli/internal/diffview"
	"github.com/gravitrone/cloudconsole/cli/internal/ui/components"
)

// DiffCmd returns the `cloudconsole diff` command.
func DiffCmd() *cobra.Command {
	var (
		mode    string
		folding bool
		numbers bool
		width   int
	)
	cmd := &cobra.Command{
		Use:   "diff <prev> <current>",
		Short: "Render a line diff of two files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				cfg = config.Defaults()
			}
			if !cmd.Flags().Changed("mode") {
				mode = cfg.Diff.Mode
			}
			if !cmd.Flags().Changed("folding") {
				folding = cfg.Diff.Folding
			}
			parsed, err := diffview.ParseMode(mode)
			if err != nil {
				return err
			}

			prev, err := readDiffInput(args[0])
			if err != nil {
				return err
			}
			current, err := readDiffInput(args[1])
			if err != nil {
				return err
			}

			layout := diffview.NewLayout(diffview.Options{Mode: parsed, Folding: folding})
			layout.Render(prev, current)
			snap := diffview.Snapshot{
				Rows:    layout.Rows(),
				Meta:    layout.Meta(),
				List:    layout.List(),
				Options: layout.Options(),
			}

			out := cmd.OutOrStdout()
			if prev == current {
				fmt.Fprintln(out, "no differences")
				return nil
			}
			fmt.Fprintln(out, components.DiffLines(snap, components.DiffOptions{Width: width, Numbers: numbers}))
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", string(diffview.ModeSplit), "row layout: split or unified")
	cmd.Flags().BoolVar(&folding, "folding", false, "collapse runs of unchanged lines")
	cmd.Flags().BoolVar(&numbers, "numbers", false, "show line numbers")
	cmd.Flags().IntVar(&width, "width", 120, "output width")
	return cmd
}

func readDiffInput(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
