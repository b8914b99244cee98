// Package services defines shared utilities consumed by the conversion
// pipeline, the batch driver, and the watcher.
//
// Key responsibilities:
//   - Context helpers that stamp run ids, input files, and conversion
//     directions for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     into history statuses (failed vs skipped).
//
// Use these helpers when wiring new pipeline code so error handling and
// observability stay uniform.
package services
