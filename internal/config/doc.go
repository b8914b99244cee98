// Package config loads, normalizes, and validates recfix configuration data.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and applies RECFIX_* environment overrides. The Config type holds
// every knob the CLI, batch driver, watcher, and history store need.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config
