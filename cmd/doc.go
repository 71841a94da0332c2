// Package cmd implements the command-line interface for pocket. It opens a
// pocket of string values on a data directory and exposes its operations as
// commands, which is handy for inspecting and editing a pocket written by an
// application.
//
// The package is organized into several subpackages:
//
//   - kv: Commands for the pocket operations (put, get, del, watch, etc.) and a benchmark
//   - util: Shared utilities for flags, configuration and assembling the pocket (internal use)
//
// All flags can also be set as environment variables with the POCKET_ prefix
// (e.g. POCKET_DATA_DIR=/var/lib/app), which are read from .env and .env.local too.
//
// See pocket -help for a list of all commands.
package cmd
