// Package cli contains the command line interface for ruiner.
//
// # Usage
//
// Rendering is the default command, so a template name is enough:
//
//	ruiner -d ./templates -p params.yaml Table
//	ruiner render -s title=Report -o report.html Page
//	ruiner inspect -f yaml Row
//	ruiner lint
//	ruiner repl -p params.yaml
//	ruiner init
//
// # Defaults
//
// Flag defaults come from, in increasing priority:
//
//   - built-in values
//   - RUINER_PATH, RUINER_EXT and RUINER_MAX_DEPTH
//   - the YAML configuration file (see [resolve])
//   - the command line
//
// The configuration file and template directory live under the user
// configuration directory, for example ~/.config/ruiner/config.yaml and
// ~/.config/ruiner/templates. The REPL history is kept in the user cache
// directory.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o ruiner .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default:
//     ~/.cache/ruiner/pprof)
package cli
