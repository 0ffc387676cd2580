// Package cmd implements the dopa subcommands: run, fmt, repl and init.
//
// Commands receive a [context.Context] carrying the parsed [kong.Context]
// (see [WithContext]) and the source encoding (see [WithEncoding]).
package cmd

import (
	"strconv"

	"github.com/alecthomas/kong"

	"github.com/ardnew/dopa/lang"
)

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path,
	// without extension, of the configuration files.
	ConfigIdentifier = "config"
)

// Vars returns the kong variables referenced by the command flags.
func Vars() kong.Vars {
	return kong.Vars{
		"maxDepth": strconv.Itoa(lang.DefaultMaxDepth),
	}
}
