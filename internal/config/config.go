package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultResourceType is the search resource type when none is configured.
const DefaultResourceType = "inventory.CloudService"

// Duration is a time.Duration written as "10s" or "250ms" in YAML.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// MarshalYAML writes the duration in time.Duration string form.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML accepts a duration string, or a bare integer as milliseconds.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!!int" {
		var ms int64
		if err := node.Decode(&ms); err != nil {
			return fmt.Errorf("duration: %w", err)
		}
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}
	var raw string
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("duration: %w", err)
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// ReferenceConfig tunes the reference-data caches.
type ReferenceConfig struct {
	TTL     Duration `yaml:"ttl,omitempty"`
	Timeout Duration `yaml:"timeout,omitempty"`
	// Kinds limits which caches are built; empty means all.
	Kinds []string `yaml:"kinds,omitempty"`
}

// SearchConfig tunes the query-search props mapper.
type SearchConfig struct {
	Debounce      Duration `yaml:"debounce,omitempty"`
	DistinctLimit int      `yaml:"distinct_limit,omitempty"`
	ResourceType  string   `yaml:"resource_type,omitempty"`
	// SchemaFile, when set, is read instead of fetching the schema.
	SchemaFile string `yaml:"schema_file,omitempty"`
}

// VirtualScrollConfig mirrors diffview.VirtualScroll.
type VirtualScrollConfig struct {
	Height        int      `yaml:"height,omitempty"`
	LineMinHeight int      `yaml:"line_min_height,omitempty"`
	Delay         Duration `yaml:"delay,omitempty"`
}

// DiffConfig holds the diff viewer defaults.
type DiffConfig struct {
	Mode          string               `yaml:"mode,omitempty"`
	Folding       bool                 `yaml:"folding,omitempty"`
	InputDelay    Duration             `yaml:"input_delay,omitempty"`
	VirtualScroll *VirtualScrollConfig `yaml:"virtual_scroll,omitempty"`
}

// Config holds CLI configuration stored at ~/.cloudconsole/config.
type Config struct {
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url,omitempty"`
	Username string `yaml:"username"`
	Theme    string `yaml:"theme"`
	VimKeys  bool   `yaml:"vim_keys"`

	LogLevel string `yaml:"log_level,omitempty"`
	LogFile  string `yaml:"log_file,omitempty"`

	Reference ReferenceConfig `yaml:"reference,omitempty"`
	Search    SearchConfig    `yaml:"search,omitempty"`
	Diff      DiffConfig      `yaml:"diff,omitempty"`
}

// Defaults returns a Config with every tunable set.
func Defaults() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero-valued tunables.
func (c *Config) ApplyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Reference.TTL <= 0 {
		c.Reference.TTL = Duration(10 * time.Second)
	}
	if c.Reference.Timeout <= 0 {
		c.Reference.Timeout = Duration(3 * time.Second)
	}
	if c.Search.Debounce <= 0 {
		c.Search.Debounce = Duration(200 * time.Millisecond)
	}
	if c.Search.DistinctLimit <= 0 {
		c.Search.DistinctLimit = 20
	}
	if c.Search.ResourceType == "" {
		c.Search.ResourceType = DefaultResourceType
	}
	if c.Diff.Mode == "" {
		c.Diff.Mode = "split"
	}
	if c.Diff.InputDelay < 0 {
		c.Diff.InputDelay = 0
	}
	if vs := c.Diff.VirtualScroll; vs != nil {
		if vs.Height <= 0 {
			vs.Height = 20
		}
		if vs.LineMinHeight <= 0 {
			vs.LineMinHeight = 1
		}
		if vs.Delay <= 0 {
			vs.Delay = Duration(100 * time.Millisecond)
		}
	}
}

// Path returns the config file path.
func Path() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cloudconsole", "config")
}

// Load reads and parses the config file. Returns error if missing or insecure.
func Load() (*Config, error) {
	path := Path()

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("config not found: %w", err)
	}

	perm := info.Mode().Perm()
	if perm != 0600 {
		return nil, fmt.Errorf("config permissions too open: %04o (want 0600)", perm)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("config missing api_key")
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// Save writes the config to disk with secure permissions.
func (c *Config) Save() error {
	path := Path()
	dir := filepath.Dir(path)

	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}
