package transport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abdul-hamid-achik/hitcurl/packages/compiler"
)

const (
	// DefaultTimeout bounds a single request, including redirects.
	DefaultTimeout = 30 * time.Second
	// DefaultMaxOutputBytes is the output ceiling applied when none is configured.
	DefaultMaxOutputBytes int64 = 10 << 20
	// DefaultMaxRedirects is used when redirects are followed.
	DefaultMaxRedirects = 10

	maxStderrBytes = 64 << 10
)

var (
	// ErrOutputLimit is returned when the transport produced more output than allowed.
	ErrOutputLimit = errors.New("response exceeded the output limit")
	// ErrUnknownTransport is returned by New for an unregistered name.
	ErrUnknownTransport = errors.New("unknown transport")
)

// Result is the raw outcome of one execution.
type Result struct {
	Stdout string
	Stderr string
	// Failed reports a non-zero exit or a request error. Stdout may still
	// hold a complete response, e.g. a 4xx with --fail-with-body.
	Failed bool
}

// Executor runs an invocation. An error means the call was aborted
// (timeout, cancellation, output ceiling, or the transport could not start)
// and any partial output must be discarded.
type Executor interface {
	Execute(ctx context.Context, inv *compiler.Invocation) (*Result, error)
}

// Options configures an executor.
type Options struct {
	// Name selects the executor for New: "curl" (default) or "native".
	Name            string
	CurlPath        string
	Timeout         time.Duration
	MaxOutputBytes  int64
	FollowRedirects bool
	MaxRedirects    int
	Proxy           string
}

func (o Options) withDefaults() Options {
	if o.CurlPath == "" {
		o.CurlPath = compiler.Binary
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.MaxOutputBytes <= 0 {
		o.MaxOutputBytes = DefaultMaxOutputBytes
	}
	if o.MaxRedirects <= 0 {
		o.MaxRedirects = DefaultMaxRedirects
	}
	return o
}

func timeoutError(cause error) error {
	return fmt.Errorf("request timed out: %w", cause)
}
