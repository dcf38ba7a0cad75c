package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gravitrone/cloudconsole/cli/internal/config"
	"github.com/gravitrone/cloudconsole/cli/internal/diffview"
	"github.com/gravitrone/cloudconsole/cli/internal/reference"
)

func TestRunTUIMissingConfigReturnsError(t *testing.T) {
	dir := t.TempDir()
	oldHome := os.Getenv("HOME")
	os.Setenv("HOME", dir)
	defer os.Setenv("HOME", oldHome)

	err := runTUI()
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunTUIRequiresTerminal(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	require.NoError(t, (&config.Config{APIKey: "k"}).Save())

	err := runTUI()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interactive terminal")
}

func TestMainHelpFlagDoesNotExit(t *testing.T) {
	oldArgs := os.Args
	os.Args = []string{"cloudconsole", "--help"}
	defer func() { os.Args = oldArgs }()

	// main() should return normally for help (no os.Exit).
	main()
}

func TestBuildDepsFromConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.APIKey = "k"
	cfg.Reference.Kinds = []string{"inventory.Region", "project"}
	cfg.Diff.Mode = "unified"
	cfg.Diff.VirtualScroll = &config.VirtualScrollConfig{Height: 12, LineMinHeight: 2, Delay: config.Duration(50 * time.Millisecond)}

	schema := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(schema, []byte("- title: Local\n  items:\n    - key: name\n"), 0o600))
	cfg.Search.SchemaFile = schema

	deps, cleanup, err := buildDeps(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(cleanup)

	assert.Equal(t, []reference.Kind{reference.KindRegion, reference.KindProject}, deps.Store.Kinds())
	require.Len(t, deps.Schema, 1)
	assert.Equal(t, "Local", deps.Schema[0].Title)

	opts := deps.Viewer.Snapshot().Options
	assert.Equal(t, diffview.ModeUnified, opts.Mode)
	require.NotNil(t, opts.VirtualScroll)
	assert.Equal(t, 12, opts.VirtualScroll.Height)
}

func TestBuildDepsRejectsBadConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.Reference.Kinds = []string{"nope"}
	_, _, err := buildDeps(cfg, zap.NewNop())
	assert.ErrorIs(t, err, reference.ErrUnknownKind)

	cfg = config.Defaults()
	cfg.Diff.Mode = "words"
	_, _, err = buildDeps(cfg, zap.NewNop())
	assert.Error(t, err)
}
