// Package logging assembles structured slog loggers and formatting helpers used
// across recfix.
//
// A CLI run logs to stderr in the configured console or JSON format and tees
// the same records into a per-run JSON file under log_dir, stamped with the
// run id. Context helpers tag lines with the file and direction being
// converted, and old run files are pruned by age.
package logging
