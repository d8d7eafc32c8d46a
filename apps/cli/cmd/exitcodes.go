package cmd

import "errors"

// Exit codes for hitcurl CLI
const (
	// ExitSuccess indicates every request got a response
	ExitSuccess = 0

	// ExitRequestFailure indicates an HTTP status >= 400 when --fail is set,
	// or any other runtime failure
	ExitRequestFailure = 1

	// ExitParseError indicates a request document parse or validation error
	ExitParseError = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitNetworkError indicates a transport error (no response, status 0)
	ExitNetworkError = 4

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

// exitError carries the process exit code for err.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func withExitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

// exitCode maps an error returned by a command to a process exit code.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitRequestFailure
}
