// Package cli contains the command line interface for dopa.
//
// # Usage
//
//	dopa [flags] [run] <script> [<script> ...]
//	dopa fmt [native|yaml|json|tokens] <script>
//	dopa repl [<script>]
//
// Scripts may be read from stdin by naming them "-".
//
// # Configuration
//
// Flag defaults are read from config.json and config.yaml in the per-user
// configuration directory ($XDG_CONFIG_HOME/dopa on Linux). YAML keys may
// be nested or use '_' in place of '-':
//
//	log:
//	  level: debug
//	  pretty: false
//	encoding: windows-1252
//
// Command-line flags override configuration values.
//
// # Logging Options
//
//   - --log-level: minimum level (trace, debug, info, warn, error)
//   - --log-format: output format (text, json)
//   - --log-time-layout: timestamp layout (RFC3339, kitchen, ms, ...)
//   - --[no-]log-caller: include the caller's source location
//   - --[no-]log-pretty: colorized output
//
// Logger flags are applied before the rest of the command line is parsed,
// so they affect parse errors regardless of their position.
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof .
//
//   - --pprof-mode: allocs, block, clock, cpu, goroutine, heap, mem, mutex,
//     thread or trace
//   - --pprof-dir: profile output directory ($XDG_CACHE_HOME/dopa/pprof)
package cli
