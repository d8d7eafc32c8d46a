package transport

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/hitcurl/packages/compiler"
)

// timeoutGrace lets curl report --max-time itself before the process is killed.
const timeoutGrace = time.Second

// CurlExecutor runs invocations through the curl binary.
type CurlExecutor struct {
	opts Options
}

// NewCurl resolves the curl binary and returns an executor for it.
func NewCurl(opts Options) (*CurlExecutor, error) {
	opts = opts.withDefaults()
	path, err := exec.LookPath(opts.CurlPath)
	if err != nil {
		return nil, fmt.Errorf("curl binary %q not found: %w", opts.CurlPath, err)
	}
	opts.CurlPath = path
	return &CurlExecutor{opts: opts}, nil
}

// CurlVersion returns the first line of "curl --version" for the binary
// found at path (or on PATH when path is a bare name).
func CurlVersion(ctx context.Context, path string) (string, error) {
	if path == "" {
		path = compiler.Binary
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		return "", fmt.Errorf("curl binary %q not found: %w", path, err)
	}
	out, err := exec.CommandContext(ctx, resolved, "--version").Output()
	if err != nil {
		return "", fmt.Errorf("run curl --version: %w", err)
	}
	first, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(first), nil
}

// Args returns the full argument list passed to curl for inv.
func (e *CurlExecutor) Args(inv *compiler.Invocation) []string {
	args := []string{"--max-time", formatSeconds(e.opts.Timeout)}
	if e.opts.FollowRedirects {
		args = append(args, "-L", "--max-redirs", strconv.Itoa(e.opts.MaxRedirects))
	}
	if e.opts.Proxy != "" {
		args = append(args, "--proxy", e.opts.Proxy)
	}
	return append(args, inv.Args()...)
}

func (e *CurlExecutor) Execute(ctx context.Context, inv *compiler.Invocation) (*Result, error) {
	runCtx, cancel := context.WithTimeout(ctx, e.opts.Timeout+timeoutGrace)
	defer cancel()

	stdout := &limitedBuffer{limit: e.opts.MaxOutputBytes, onExceed: cancel}
	stderr := &limitedBuffer{limit: maxStderrBytes, discard: true}

	cmd := exec.CommandContext(runCtx, e.opts.CurlPath, e.Args(inv)...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = timeoutGrace

	err := cmd.Run()
	switch {
	case stdout.Exceeded():
		return nil, fmt.Errorf("%w of %d bytes", ErrOutputLimit, e.opts.MaxOutputBytes)
	case ctx.Err() != nil:
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, timeoutError(ctx.Err())
		}
		return nil, ctx.Err()
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		return nil, timeoutError(runCtx.Err())
	}

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("run curl: %w", err)
		}
	}

	return &Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
		Failed: err != nil,
	}, nil
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}
