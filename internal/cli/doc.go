// Package cli wires together the Cobra command tree for the redline binary.
//
// It defines the root command and all subcommands (analyze, apply, serve,
// config, models, cache, version), binds flags, reads configuration, invokes
// the analyzer, and returns deterministic exit codes for CI gating.
package cli
