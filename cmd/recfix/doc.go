// Package main hosts the recfix CLI entrypoint and command graph.
//
// The Cobra-based command tree turns terminal invocations into conversion
// batches, directory watches, history queries and configuration scaffolding.
// It centralizes configuration resolution and run-scoped logging so
// subcommands only assemble the pieces from internal packages.
package main
