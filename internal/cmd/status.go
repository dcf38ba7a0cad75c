package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gravitrone/cloudconsole/cli/internal/config"
)

// StatusCmd returns the `cloudconsole status` command.
func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check API health and login state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			cfg, err := config.Load()
			auth := "ok"
			if err != nil {
				cfg = nil
				auth = "not logged in"
			}
			client := NewClient(cfg)

			fmt.Fprintf(out, "api:    %s\n", client.BaseURL())
			status, err := client.Health(cmd.Context())
			if err != nil {
				return fmt.Errorf("health check: %w", err)
			}
			fmt.Fprintf(out, "health: %s\n", status)
			fmt.Fprintf(out, "auth:   %s\n", auth)
			return nil
		},
	}
}
