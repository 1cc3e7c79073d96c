// Package config loads and merges redline configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (REDLINE_PROVIDER, REDLINE_MODEL, REDLINE_SEGMENT_SIZE, etc.),
//     including any set by a .env file in the working directory
//  3. Config file ($XDG_CONFIG_HOME/redline/config.yaml)
//  4. Built-in defaults
//
// Use [Load] to obtain a merged [Config], [Save] to write the config file,
// and [SetField] to update a single key.
package config
