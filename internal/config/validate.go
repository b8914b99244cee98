package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateCSV(); err != nil {
		return err
	}
	if err := c.validateWatch(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.Batch.Workers <= 0 {
		return errors.New("batch.workers must be positive")
	}
	if c.History.Retain < 0 {
		return errors.New("history.retain must be >= 0")
	}
	return nil
}

func (c *Config) validateOutput() error {
	suffixes := map[string]string{
		"output.csv_suffix":    c.Output.CSVSuffix,
		"output.json_suffix":   c.Output.JSONSuffix,
		"output.repair_suffix": c.Output.RepairSuffix,
	}
	for key, value := range suffixes {
		if strings.ContainsAny(value, `/\`) {
			return fmt.Errorf("%s must not contain path separators", key)
		}
	}
	if strings.Trim(c.Output.Indent, " \t") != "" {
		return errors.New("output.indent must contain only spaces or tabs")
	}
	if c.Output.PreviewIDs < 0 {
		return errors.New("output.preview_ids must be >= 0")
	}
	return nil
}

func (c *Config) validateCSV() error {
	if len(c.CSV.Columns) == 0 {
		if c.CSV.NoHeader {
			return errors.New("csv.no_header requires csv.columns")
		}
		return nil
	}
	if !slices.Contains(c.CSV.Columns, "id") {
		return errors.New("csv.columns must include an id column")
	}
	return nil
}

func (c *Config) validateWatch() error {
	if c.Watch.DebounceMillis < 0 {
		return errors.New("watch.debounce_millis must be >= 0")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

// ValidateWatchDirs checks that a watch input directory and its output
// directory are distinct, so converted files never retrigger the watcher.
func ValidateWatchDirs(inputDir, outputDir string) error {
	if strings.TrimSpace(outputDir) == "" {
		return errors.New("watch mode requires an output directory (--out-dir or watch.output_dir)")
	}
	in, err := filepath.Abs(inputDir)
	if err != nil {
		return fmt.Errorf("resolve watch directory: %w", err)
	}
	out, err := filepath.Abs(outputDir)
	if err != nil {
		return fmt.Errorf("resolve output directory: %w", err)
	}
	if filepath.Clean(in) == filepath.Clean(out) {
		return errors.New("watch output directory must differ from the watched directory")
	}
	return nil
}
