package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gravitrone/cloudconsole/cli/internal/api"
	"github.com/gravitrone/cloudconsole/cli/internal/config"
)

// RunInteractiveLogin prompts for username, calls login API, and persists config.
func RunInteractiveLogin(ctx context.Context, in io.Reader, out io.Writer, baseURL string) error {
	reader := bufio.NewReader(in)

	fmt.Fprint(out, "username: ")
	username, _ := reader.ReadString('\n')
	username = strings.TrimSpace(username)

	if username == "" {
		return fmt.Errorf("username is required")
	}

	baseURL = strings.TrimSpace(baseURL)
	client := api.NewDefaultClient("")
	if baseURL != "" {
		client = api.NewClient(baseURL, "")
	}
	resp, err := client.Login(ctx, username)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	cfg := &config.Config{
		APIKey:   resp.APIKey,
		BaseURL:  baseURL,
		Username: resp.Username,
		Theme:    "dark",
		VimKeys:  true,
	}

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Fprintf(out, "logged in as %s\n", resp.Username)
	fmt.Fprintf(out, "config saved to %s\n", config.Path())
	return nil
}

// LoginCmd returns the `cloudconsole login` command.
func LoginCmd() *cobra.Command {
	var baseURL string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with a console API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return RunInteractiveLogin(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), baseURL)
		},
	}
	cmd.Flags().StringVar(&baseURL, "base-url", "", "API base URL (default "+api.DefaultBaseURL+")")
	return cmd
}
