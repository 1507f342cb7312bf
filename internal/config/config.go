// Package config provides configuration types, defaults, and persistence for panekit.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/zjrosen/panekit/internal/items"
	"github.com/zjrosen/panekit/internal/keys"
	"github.com/zjrosen/panekit/internal/log"
	"github.com/zjrosen/panekit/internal/tracing"
	"github.com/zjrosen/panekit/internal/workspace"
)

// Config holds all configuration options for panekit.
type Config struct {
	// Roots are the project directories. Empty means the working directory.
	Roots []string `mapstructure:"roots"`

	// FileScanExclusions are doublestar globs, relative to each root, for
	// paths that never open.
	FileScanExclusions []string `mapstructure:"file_scan_exclusions"`

	Watch         bool          `mapstructure:"watch"`
	WatchDebounce time.Duration `mapstructure:"watch_debounce"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
	QueueCapacity int           `mapstructure:"queue_capacity"`

	Items items.Settings `mapstructure:"items"`

	// Keys rebinds actions, e.g. "workspace::SplitRight": ["ctrl+\\"].
	Keys map[string][]string `mapstructure:"keys"`

	Tracing tracing.Config `mapstructure:"tracing"`
	Log     LogConfig      `mapstructure:"log"`
}

// LogConfig controls the debug log written when --debug is set.
type LogConfig struct {
	Level string `mapstructure:"level"`
	// File defaults to debug.log in the working directory.
	File string `mapstructure:"file"`
}

// markdownStyles are the glamour standard style names.
var markdownStyles = map[string]bool{
	"ascii": true, "auto": true, "dark": true, "dracula": true,
	"light": true, "notty": true, "pink": true, "tokyo-night": true,
}

// DefaultTracesFilePath returns ~/.config/panekit/traces/traces.jsonl or an
// empty string if the home dir is unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "panekit", "traces", "traces.jsonl")
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	tc := tracing.DefaultConfig()
	tc.FilePath = DefaultTracesFilePath()

	return Config{
		FileScanExclusions: []string{"**/.git", "**/node_modules", "**/.DS_Store"},
		Watch:              true,
		WatchDebounce:      250 * time.Millisecond,
		CacheTTL:           10 * time.Minute,
		QueueCapacity:      workspace.DefaultQueueCapacity,
		Items:              items.DefaultSettings(),
		Tracing:            tc,
		Log:                LogConfig{Level: "debug", File: "debug.log"},
	}
}

// Validate checks the whole configuration and reports every problem found.
func Validate(c Config) error {
	var errs []error
	for _, root := range c.Roots {
		if root == "" {
			errs = append(errs, errors.New("roots: empty path"))
		}
	}
	for _, pattern := range c.FileScanExclusions {
		if !doublestar.ValidatePattern(pattern) {
			errs = append(errs, fmt.Errorf("file_scan_exclusions: invalid pattern %q", pattern))
		}
	}
	if c.WatchDebounce < 0 {
		errs = append(errs, fmt.Errorf("watch_debounce must not be negative, got %s", c.WatchDebounce))
	}
	if c.CacheTTL < 0 {
		errs = append(errs, fmt.Errorf("cache_ttl must not be negative, got %s", c.CacheTTL))
	}
	if c.QueueCapacity < 0 {
		errs = append(errs, fmt.Errorf("queue_capacity must not be negative, got %d", c.QueueCapacity))
	}
	if err := ValidateItems(c.Items); err != nil {
		errs = append(errs, err)
	}
	if len(c.Keys) > 0 {
		km := keys.DefaultKeyMap()
		if err := km.Rebind(c.Keys); err != nil {
			errs = append(errs, err)
		}
	}
	if err := ValidateTracing(c.Tracing); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ValidateItems checks per-kind item settings. Zero values are allowed and
// mean "use the default".
func ValidateItems(s items.Settings) error {
	if s.Editor.TabWidth < 0 || s.Editor.TabWidth > 16 {
		return fmt.Errorf("items.editor.tab_width must be between 0 and 16, got %d", s.Editor.TabWidth)
	}
	if s.Markdown.Style != "" && !markdownStyles[s.Markdown.Style] {
		return fmt.Errorf("items.markdown.style: unknown style %q", s.Markdown.Style)
	}
	if s.Hex.MaxBytes < 0 {
		return fmt.Errorf("items.hex.max_bytes must not be negative, got %d", s.Hex.MaxBytes)
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tc tracing.Config) error {
	if tc.SampleRate < 0.0 || tc.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tc.SampleRate)
	}

	switch tc.Exporter {
	case "", tracing.ExporterNone, tracing.ExporterFile, tracing.ExporterStdout, tracing.ExporterOTLP:
	default:
		return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tc.Exporter)
	}

	// Only validate path requirements when tracing is enabled
	if tc.Enabled {
		if tc.Exporter == tracing.ExporterFile && tc.FilePath == "" {
			return errors.New("tracing.file_path is required when exporter is \"file\"")
		}
		if tc.Exporter == tracing.ExporterOTLP && tc.OTLPEndpoint == "" {
			return errors.New("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}
	return nil
}

// DefaultConfigTemplate returns the commented config written on first run.
func DefaultConfigTemplate() string {
	return `# panekit configuration

# Project directories opened as worktrees. Empty means the current directory.
# Add more with: panekit roots:add <dir>
roots: []

# Paths (relative to each root) that never open. Doublestar globs; a path is
# excluded when it or any parent directory matches.
file_scan_exclusions:
  - "**/.git"
  - "**/node_modules"
  - "**/.DS_Store"

# Drop cached file contents when files change on disk.
watch: true
watch_debounce: 250ms

# How long an unused file stays loaded.
cache_ttl: 10m

# Per-kind item settings
items:
  editor:
    tab_width: 4
    line_numbers: true
  markdown:
    style: dark   # ascii, auto, dark, dracula, light, notty, pink, tokyo-night
  hex:
    max_bytes: 65536

# Rebind actions. Keys are bubbletea key names.
# keys:
#   workspace::SplitRight: ["ctrl+\\"]
#   workspace::CloseActivePaneItem: ["ctrl+w"]

# Debug log (written only with --debug or PANEKIT_DEBUG=1)
log:
  level: debug
  file: debug.log

# Tracing of workspace updates and project loads
# tracing:
#   enabled: false
#   exporter: file                 # none, file, stdout, otlp
#   file_path: ~/.config/panekit/traces/traces.jsonl
#   otlp_endpoint: localhost:4317
#   sample_rate: 1.0
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
