// Package cmd implements the aliasexpr subcommands that operate on single
// expressions (refs, eval) and on widget configuration documents (resolve),
// and the init command that writes the configuration file.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file.
	ConfigIdentifier = "config"
)
