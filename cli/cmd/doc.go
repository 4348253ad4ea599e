// Package cmd implements the ruiner sub-commands: render, inspect, lint,
// init and repl.
//
// Every command is a kong command struct with a Run(context.Context) method.
// The [kong.Context] that selected the command is available to it through
// the context passed to Run (see [WithContext]).
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file.
	ConfigIdentifier = "config"

	// DirsIdentifier is the kong variable identifier containing the default
	// template search path, with directories separated by ':'.
	DirsIdentifier = "dirs"

	// ExtIdentifier is the kong variable identifier containing the default
	// template file extension.
	ExtIdentifier = "ext"

	// MaxDepthIdentifier is the kong variable identifier containing the
	// default reference nesting limit.
	MaxDepthIdentifier = "maxDepth"
)
