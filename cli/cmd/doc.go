// Package cmd implements the wintitle subcommands.
//
// Each command is a kong command struct with a Run(context.Context)
// method. Commands read the expression from their argument, a file, or
// standard input, and write to the writer stored by [WithOutput].
package cmd

// Kong variable identifiers shared with the cli package.
const (
	// CacheIdentifier names the per-user cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier names the configuration file path.
	ConfigIdentifier = "config"
)
