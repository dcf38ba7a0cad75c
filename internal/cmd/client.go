package cmd

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/gravitrone/cloudconsole/cli/internal/api"
	"github.com/gravitrone/cloudconsole/cli/internal/config"
	"github.com/gravitrone/cloudconsole/cli/internal/log"
)

// loadSession returns the saved config and a client for it.
func loadSession() (*config.Config, *api.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("not logged in: %w", err)
	}
	return cfg, NewClient(cfg), nil
}

// NewClient builds an API client from cfg, falling back to the default
// base URL.
func NewClient(cfg *config.Config) *api.Client {
	if cfg == nil {
		return api.NewDefaultClient("")
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		return api.NewClient(base, cfg.APIKey)
	}
	return api.NewDefaultClient(cfg.APIKey)
}

// NewLogger builds the logger for cfg. Without a log file it writes to
// stderr, which is fine for one-shot commands.
func NewLogger(cfg *config.Config, outputs ...string) (*zap.Logger, error) {
	level := ""
	if cfg != nil {
		level = cfg.LogLevel
		if len(outputs) == 0 && cfg.LogFile != "" {
			outputs = []string{cfg.LogFile}
		}
	}
	logger, err := log.New(level, outputs...)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return logger, nil
}
