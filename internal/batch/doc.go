// Package batch converts many files in one run.
//
// A Runner fans files out to a bounded pool of workers, each calling the
// shared convert.Converter. A failing file is logged and recorded in history
// and never stops the rest of the batch. Every outcome carries the run id so
// console output, the per-run log file and history rows line up.
package batch
