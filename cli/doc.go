// Package cli contains the command line interface for wintitle.
//
// # Usage
//
// The default command evaluates a title expression:
//
//	wintitle 'upcase project + " - " + doc_name' -v project=wintitle -v doc_name=main.go
//
// Other commands format, tokenize, and check expressions, watch a title
// as exec output changes, and start an interactive editor:
//
//	wintitle fmt json 'x ? "a" : "b"'
//	wintitle check -f title.txt --vars vars.yaml
//	wintitle watch --interval 2s 'exec(5, "git branch --show-current")'
//	wintitle repl
//
// # Configuration
//
// Flag defaults are read from config.yaml in the user configuration
// directory; run "wintitle init" to create it from the current flags.
// Nested mappings are joined with hyphens, so log: {level: debug} sets
// --log-level. Command-line flags override the file.
//
// # Logging Options
//
//   - --log-level: minimum level (trace, debug, info, warn, error)
//   - --log-format: output format (text, json)
//   - --log-file: write to a size-rotated file instead of stderr
//   - --log-time-layout: timestamp format (RFC3339, Kitchen, or a layout)
//   - --log-caller: include caller information
//   - --log-pretty: colorize text output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof .
//
//   - --pprof-mode: enable a profile (allocs, block, clock, cpu,
//     goroutine, heap, mem, mutex, thread, trace)
//   - --pprof-dir: profile output directory
//   - --pprof-listen: serve /debug/pprof on an address
package cli
