package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.applyEnv()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeOutput()
	c.normalizeCSV()
	if c.Batch.Workers <= 0 {
		c.Batch.Workers = defaultBatchWorkers
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) applyEnv() {
	if value, ok := os.LookupEnv(EnvLogLevel); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	if value, ok := os.LookupEnv(EnvLogFormat); ok && strings.TrimSpace(value) != "" {
		c.Logging.Format = value
	}
	if value, ok := os.LookupEnv(EnvStateDir); ok && strings.TrimSpace(value) != "" {
		c.Paths.StateDir = strings.TrimSpace(value)
	}
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = ExpandPath(strings.TrimSpace(c.Paths.StateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = ExpandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Output.Dir, err = ExpandPath(strings.TrimSpace(c.Output.Dir)); err != nil {
		return fmt.Errorf("output.dir: %w", err)
	}
	if c.Watch.OutputDir, err = ExpandPath(strings.TrimSpace(c.Watch.OutputDir)); err != nil {
		return fmt.Errorf("watch.output_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeOutput() {
	c.Output.CSVSuffix = strings.TrimSpace(c.Output.CSVSuffix)
	c.Output.JSONSuffix = strings.TrimSpace(c.Output.JSONSuffix)
	c.Output.RepairSuffix = strings.TrimSpace(c.Output.RepairSuffix)
	if c.Output.RepairSuffix == "" {
		c.Output.RepairSuffix = defaultRepairSuffix
	}
}

func (c *Config) normalizeCSV() {
	if len(c.CSV.Columns) == 0 {
		return
	}
	cols := make([]string, 0, len(c.CSV.Columns))
	for _, col := range c.CSV.Columns {
		cols = append(cols, strings.TrimSpace(col))
	}
	c.CSV.Columns = cols
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
