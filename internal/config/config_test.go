package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestSaveConfigCreatesDirectories(t *testing.T) {
	dir := t.TempDir()
	oldHome := os.Getenv("HOME")
	os.Setenv("HOME", dir)
	defer os.Setenv("HOME", oldHome)

	cfg := Config{
		APIKey: "test-key",
	}

	err := cfg.Save()
	require.NoError(t, err)

	// Verify file exists and has correct permissions
	path := Path()
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLoadConfigNonExistent(t *testing.T) {
	dir := t.TempDir()
	os.Setenv("HOME", dir)
	defer os.Setenv("HOME", os.Getenv("HOME"))

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSaveLoadRoundtripWithAllFields(t *testing.T) {
	dir := t.TempDir()
	oldHome := os.Getenv("HOME")
	os.Setenv("HOME", dir)
	defer os.Setenv("HOME", oldHome)

	original := Config{
		APIKey:   "cck_verylongkeystring12345",
		BaseURL:  "http://console.internal:8000",
		Username: "testuser",
		Theme:    "dark",
		VimKeys:  true,
	}

	err := original.Save()
	require.NoError(t, err)

	loaded, err := Load()
	require.NoError(t, err)

	assert.Equal(t, original.APIKey, loaded.APIKey)
	assert.Equal(t, original.BaseURL, loaded.BaseURL)
	assert.Equal(t, original.Username, loaded.Username)
	assert.Equal(t, original.Theme, loaded.Theme)
	assert.Equal(t, original.VimKeys, loaded.VimKeys)
}

func TestSaveConfigOverwritesExisting(t *testing.T) {
	dir := t.TempDir()
	oldHome := os.Getenv("HOME")
	os.Setenv("HOME", dir)
	defer os.Setenv("HOME", oldHome)

	// First save
	cfg1 := Config{APIKey: "key1"}
	err := cfg1.Save()
	require.NoError(t, err)

	// Overwrite
	cfg2 := Config{APIKey: "key2"}
	err = cfg2.Save()
	require.NoError(t, err)

	// Verify second config is loaded
	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "key2", loaded.APIKey)
}

func TestLoadConfigEmptyFile(t *testing.T) {
	dir := t.TempDir()
	oldHome := os.Getenv("HOME")
	os.Setenv("HOME", dir)
	defer os.Setenv("HOME", oldHome)

	// Create .cloudconsole dir and empty config
	cfgDir := filepath.Join(dir, ".cloudconsole")
	os.MkdirAll(cfgDir, 0700)
	path := filepath.Join(cfgDir, "config")

	err := os.WriteFile(path, []byte(""), 0600)
	require.NoError(t, err)

	_, err = Load()
	assert.Error(t, err)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	oldHome := os.Getenv("HOME")
	os.Setenv("HOME", dir)
	defer os.Setenv("HOME", oldHome)

	cfgDir := filepath.Join(dir, ".cloudconsole")
	os.MkdirAll(cfgDir, 0700)
	path := filepath.Join(cfgDir, "config")

	err := os.WriteFile(path, []byte("invalid: yaml: content:"), 0600)
	require.NoError(t, err)

	_, err = Load()
	assert.Error(t, err)
}

func TestSaveConfigWithEmptyAPIKey(t *testing.T) {
	dir := t.TempDir()
	oldHome := os.Getenv("HOME")
	os.Setenv("HOME", dir)
	defer os.Setenv("HOME", oldHome)

	cfg := Config{
		APIKey: "", // Empty key should fail on load
	}

	err := cfg.Save()
	require.NoError(t, err)

	_, err = Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")
}

func TestConfigPermissionsStrictlyEnforced(t *testing.T) {
	dir := t.TempDir()
	oldHome := os.Getenv("HOME")
	os.Setenv("HOME", dir)
	defer os.Setenv("HOME", oldHome)

	cfg := Config{APIKey: "secret"}
	err := cfg.Save()
	require.NoError(t, err)

	// Try to make it world-readable
	path := Path()
	err = os.Chmod(path, 0644)
	require.NoError(t, err)

	// LoadConfig should fail with incorrect permissions
	_, err = Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "permissions")
}

func TestLoadConfigWithLegacyServerURLAndMissingAPIKey(t *testing.T) {
	dir := t.TempDir()
	oldHome := os.Getenv("HOME")
	os.Setenv("HOME", dir)
	defer os.Setenv("HOME", oldHome)

	cfgDir := filepath.Join(dir, ".cloudconsole")
	os.MkdirAll(cfgDir, 0700)
	path := filepath.Join(cfgDir, "config")

	// Legacy server_url is ignored, but missing api_key still fails.
	err := os.WriteFile(path, []byte("server_url: http://legacy\n"), 0600)
	require.NoError(t, err)

	_, err = Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "api_key")
}

func TestLoadConfigIgnoresLegacyServerURLField(t *testing.T) {
	dir := t.TempDir()
	oldHome := os.Getenv("HOME")
	os.Setenv("HOME", dir)
	defer os.Setenv("HOME", oldHome)

	cfgDir := filepath.Join(dir, ".cloudconsole")
	os.MkdirAll(cfgDir, 0700)
	path := filepath.Join(cfgDir, "config")

	err := os.WriteFile(path, []byte("server_url: http://legacy\napi_key: key123\nusername: test\n"), 0600)
	require.NoError(t, err)

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "key123", loaded.APIKey)
	assert.Equal(t, "test", loaded.Username)
}

func TestPathReturnsCorrectLocation(t *testing.T) {
	path := Path()
	assert.Contains(t, path, ".cloudconsole")
	assert.Contains(t, path, "config")
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	oldHome := os.Getenv("HOME")
	os.Setenv("HOME", dir)
	defer os.Setenv("HOME", oldHome)

	require.NoError(t, (&Config{APIKey: "k"}).Save())

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, loaded.Reference.TTL.Std())
	assert.Equal(t, 3*time.Second, loaded.Reference.Timeout.Std())
	assert.Equal(t, 200*time.Millisecond, loaded.Search.Debounce.Std())
	assert.Equal(t, 20, loaded.Search.DistinctLimit)
	assert.Equal(t, DefaultResourceType, loaded.Search.ResourceType)
	assert.Empty(t, loaded.Search.SchemaFile)
	assert.Equal(t, "split", loaded.Diff.Mode)
	assert.Equal(t, time.Duration(0), loaded.Diff.InputDelay.Std())
	assert.Nil(t, loaded.Diff.VirtualScroll)
	assert.Equal(t, "info", loaded.LogLevel)
}

func TestLoadParsesNestedSections(t *testing.T) {
	dir := t.TempDir()
	oldHome := os.Getenv("HOME")
	os.Setenv("HOME", dir)
	defer os.Setenv("HOME", oldHome)

	cfgDir := filepath.Join(dir, ".cloudconsole")
	require.NoError(t, os.MkdirAll(cfgDir, 0700))
	body := `api_key: k
log_level: debug
reference:
  ttl: 30s
  timeout: 1500
  kinds: [project, region]
search:
  debounce: 50ms
  distinct_limit: 5
diff:
  mode: unified
  folding: true
  input_delay: 300ms
  virtual_scroll:
    height: 40
`
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config"), []byte(body), 0600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Reference.TTL.Std())
	assert.Equal(t, 1500*time.Millisecond, cfg.Reference.Timeout.Std())
	assert.Equal(t, []string{"project", "region"}, cfg.Reference.Kinds)
	assert.Equal(t, 50*time.Millisecond, cfg.Search.Debounce.Std())
	assert.Equal(t, 5, cfg.Search.DistinctLimit)
	assert.Equal(t, "unified", cfg.Diff.Mode)
	assert.True(t, cfg.Diff.Folding)
	assert.Equal(t, 300*time.Millisecond, cfg.Diff.InputDelay.Std())
	require.NotNil(t, cfg.Diff.VirtualScroll)
	assert.Equal(t, 40, cfg.Diff.VirtualScroll.Height)
	assert.Equal(t, 1, cfg.Diff.VirtualScroll.LineMinHeight)
	assert.Equal(t, 100*time.Millisecond, cfg.Diff.VirtualScroll.Delay.Std())
}

func TestLoadRejectsBadDuration(t *testing.T) {
	dir := t.TempDir()
	oldHome := os.Getenv("HOME")
	os.Setenv("HOME", dir)
	defer os.Setenv("HOME", oldHome)

	cfgDir := filepath.Join(dir, ".cloudconsole")
	require.NoError(t, os.MkdirAll(cfgDir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config"), []byte("api_key: k\nreference:\n  ttl: soon\n"), 0600))

	_, err := Load()
	assert.Error(t, err)
}

func TestDurationRoundTripsAsString(t *testing.T) {
	out, err := yaml.Marshal(struct {
		D Duration `yaml:"d"`
	}{Duration(1500 * time.Millisecond)})
	require.NoError(t, err)
	assert.Equal(t, "d: 1.5s\n", string(out))
}
