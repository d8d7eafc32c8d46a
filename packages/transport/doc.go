// Package transport runs a compiled invocation and returns its raw output.
//
// Two executors are provided. CurlExecutor runs the curl binary with the
// invocation's argument list. NativeExecutor performs the same request with
// net/http and renders the exchange in curl's "-i" layout, so the output of
// either can be handed to the interpreter unchanged.
//
// Both executors enforce an output ceiling and a timeout. Exceeding the
// ceiling aborts the call with ErrOutputLimit; output is never truncated.
package transport
