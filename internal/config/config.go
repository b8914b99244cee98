package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Paths contains state and log directories.
type Paths struct {
	StateDir string `toml:"state_dir"`
	LogDir   string `toml:"log_dir"`
}

// Output controls where converted documents are written and how they look.
type Output struct {
	// Dir places outputs in a fixed directory instead of beside the input.
	Dir          string `toml:"dir"`
	CSVSuffix    string `toml:"csv_suffix"`
	JSONSuffix   string `toml:"json_suffix"`
	RepairSuffix string `toml:"repair_suffix"`
	// Indent is the JSON indent unit; empty writes compact JSON.
	Indent     string `toml:"indent"`
	PreviewIDs int    `toml:"preview_ids"`
}

// CSV controls how CSV input is read.
type CSV struct {
	// Columns replaces the header names when set.
	Columns  []string `toml:"columns"`
	NoHeader bool     `toml:"no_header"`

	// DecodeStructured turns cells holding JSON arrays or objects back into
	// lists and maps.
	DecodeStructured bool `toml:"decode_structured"`
}

// Batch controls multi-file conversion.
type Batch struct {
	Workers int `toml:"workers"`
}

// Watch contains configuration for directory watch mode.
type Watch struct {
	OutputDir      string `toml:"output_dir"`
	DebounceMillis int    `toml:"debounce_millis"`
}

// History contains configuration for the conversion history store.
type History struct {
	Enabled bool `toml:"enabled"`
	Retain  int  `toml:"retain"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for recfix.
type Config struct {
	Paths   Paths   `toml:"paths"`
	Output  Output  `toml:"output"`
	CSV     CSV     `toml:"csv"`
	Batch   Batch   `toml:"batch"`
	Watch   Watch   `toml:"watch"`
	History History `toml:"history"`
	Logging Logging `toml:"logging"`
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// HistoryPath returns the location of the conversion history database.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, historyFileName)
}

// LockPath returns the lock file that keeps a single watcher per state directory.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, lockFileName)
}

// WatchDebounce returns the quiet period the watcher waits after the last
// write to a file before converting it.
func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.Watch.DebounceMillis) * time.Millisecond
}
