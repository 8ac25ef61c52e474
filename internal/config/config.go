// Package config handles user configuration for the CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/pflag"
	"github.com/whiskeyjimb/espim/internal/meta"
	"gopkg.in/yaml.v3"
)

// Supported values for Config.Output.
var outputFormats = []string{"table", "json", "yaml"}

// Config holds user configuration loaded from $XDG_CONFIG_HOME/espim/config.yaml.
type Config struct {
	// IndexURL is the location of the YAML plugin index.
	IndexURL string `yaml:"index_url"`

	// PluginDir is the game's plugin directory where install links live.
	PluginDir string `yaml:"plugin_dir"`

	// CacheDir holds the cached index and one checkout per plugin.
	CacheDir string `yaml:"cache_dir"`

	// Timeout bounds a single index fetch.
	Timeout string `yaml:"timeout"`

	// Output is the default format for "list" (table, json, yaml).
	Output string `yaml:"output"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		IndexURL:  meta.DefaultIndexURL,
		PluginDir: DefaultPluginDir(),
		CacheDir:  DefaultCacheDir(),
		Timeout:   "30s",
		Output:    "table",
	}
}

// Load reads configuration from the given path.
// Returns DefaultConfig if the file doesn't exist.
// Returns an error only if the file exists but is malformed.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// DefaultConfigPath returns the default config file path.
// $XDG_CONFIG_HOME/espim/config.yaml
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, meta.AppName, "config.yaml")
}

// DefaultPluginDir returns the game's per-user plugin directory.
func DefaultPluginDir() string {
	return filepath.Join(xdg.DataHome, "endless-sky", "plugins")
}

// DefaultCacheDir returns the per-user cache directory for the index and checkouts.
func DefaultCacheDir() string {
	return filepath.Join(xdg.CacheHome, meta.CacheDirName)
}

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Environment variables (higher priority than config file):
//   - ESPIM_INDEX_URL: plugin index location
//   - ESPIM_PLUGIN_DIR: game plugin directory
//   - ESPIM_CACHE_DIR: checkout and index cache directory
//   - ESPIM_TIMEOUT: index fetch timeout
//   - ESPIM_OUTPUT: default list output format
func (c *Config) ApplyEnvOverrides() {
	prefix := strings.ToUpper(meta.AppName) + "_"
	if v := os.Getenv(prefix + "INDEX_URL"); v != "" {
		c.IndexURL = v
	}
	if v := os.Getenv(prefix + "PLUGIN_DIR"); v != "" {
		c.PluginDir = v
	}
	if v := os.Getenv(prefix + "CACHE_DIR"); v != "" {
		c.CacheDir = v
	}
	if v := os.Getenv(prefix + "TIMEOUT"); v != "" {
		c.Timeout = v
	}
	if v := os.Getenv(prefix + "OUTPUT"); v != "" {
		c.Output = v
	}
}

// ApplyFlagOverrides copies explicitly set flags from fs onto the config.
// Flags that were left at their default do not override file or env values.
func (c *Config) ApplyFlagOverrides(fs *pflag.FlagSet) {
	fields := map[string]*string{
		"index-url":  &c.IndexURL,
		"plugin-dir": &c.PluginDir,
		"cache-dir":  &c.CacheDir,
		"timeout":    &c.Timeout,
		"output":     &c.Output,
	}
	fs.Visit(func(f *pflag.Flag) {
		if dst, ok := fields[f.Name]; ok {
			*dst = f.Value.String()
		}
	})
}

// FetchTimeout returns the parsed index fetch timeout.
func (c *Config) FetchTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid timeout %q: must be positive", c.Timeout)
	}
	return d, nil
}

// Validate checks values that can't be checked while decoding.
func (c *Config) Validate() error {
	if c.IndexURL == "" {
		return fmt.Errorf("index_url must not be empty")
	}
	if c.PluginDir == "" || c.CacheDir == "" {
		return fmt.Errorf("plugin_dir and cache_dir must not be empty")
	}
	if _, err := c.FetchTimeout(); err != nil {
		return err
	}
	for _, f := range outputFormats {
		if c.Output == f {
			return nil
		}
	}
	return fmt.Errorf("unsupported output format: %q (supported: %s)", c.Output, strings.Join(outputFormats, ", "))
}
