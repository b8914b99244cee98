// Package logs reads back the per-run log files written under log_dir.
//
// It locates the newest run log and returns its last lines with bounded
// memory, which backs `recfix logs`.
package logs
