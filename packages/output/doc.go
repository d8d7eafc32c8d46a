// Package output renders responses for the terminal.
//
// Supported output formats:
//   - Console: colored status line, sorted headers and a pretty-printed body
//   - JSON: one document with every result and an optional latency summary
//
// Both formatters implement Formatter. Results are written as they arrive by
// the console formatter; the JSON formatter accumulates them until Flush.
package output
