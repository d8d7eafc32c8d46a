// Package compiler turns a model.Request into a transport Invocation.
//
// Compilation is pure and never fails: missing or partial fields are skipped
// rather than reported. The resulting Invocation can be rendered as a curl
// argument list (Args), as a shell command line (String), or consumed field by
// field by a native executor.
//
// Construction order:
//   - method (omitted for GET)
//   - enabled headers, in order
//   - authentication (basic credentials, bearer or api-key header)
//   - URL with enabled query parameters, api-key query parameter last
//   - body according to its type
//   - instrumentation write-out (time, size, status code markers)
package compiler
