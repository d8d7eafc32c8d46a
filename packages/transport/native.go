package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	neturl "net/url"
	"strconv"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/hitcurl/packages/compiler"
)

const (
	// DefaultMaxIdleConns is the maximum number of idle connections in the pool
	DefaultMaxIdleConns = 100
	// DefaultIdleConnTimeout is how long idle connections stay in the pool
	DefaultIdleConnTimeout = 90 * time.Second

	defaultPayloadContentType = "application/x-www-form-urlencoded"
)

// NativeExecutor performs invocations with net/http and renders the
// exchange the way curl -i would print it.
type NativeExecutor struct {
	opts      Options
	transport http.RoundTripper
}

func NewNative(opts Options) (*NativeExecutor, error) {
	opts = opts.withDefaults()

	transport := &http.Transport{
		Proxy:           http.ProxyFromEnvironment,
		MaxIdleConns:    DefaultMaxIdleConns,
		IdleConnTimeout: DefaultIdleConnTimeout,
	}
	if opts.Proxy != "" {
		proxyURL, err := neturl.Parse(opts.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	return &NativeExecutor{opts: opts, transport: transport}, nil
}

func (e *NativeExecutor) redirectPolicy(_ *http.Request, via []*http.Request) error {
	if !e.opts.FollowRedirects {
		return http.ErrUseLastResponse
	}
	if len(via) > e.opts.MaxRedirects {
		return fmt.Errorf("maximum (%d) redirects followed", e.opts.MaxRedirects)
	}
	return nil
}

func (e *NativeExecutor) Execute(ctx context.Context, inv *compiler.Invocation) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()

	req, err := buildRequest(ctx, inv)
	if err != nil {
		return &Result{Stderr: err.Error(), Failed: true}, nil
	}

	recorder := &hopRecorder{base: e.transport}
	client := &http.Client{
		Transport:     recorder,
		CheckRedirect: e.redirectPolicy,
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		if cause := ctx.Err(); cause != nil {
			return nil, abortError(cause)
		}
		return &Result{Stderr: err.Error(), Failed: true}, nil
	}
	defer resp.Body.Close()

	out := &limitedBuffer{limit: e.opts.MaxOutputBytes}
	for _, hop := range recorder.hops[:len(recorder.hops)-1] {
		if err := writeHead(out, hop); err != nil {
			return nil, limitError(e.opts.MaxOutputBytes)
		}
	}
	if err := writeHead(out, resp); err != nil {
		return nil, limitError(e.opts.MaxOutputBytes)
	}

	size, err := io.Copy(out, resp.Body)
	if err != nil {
		if out.Exceeded() {
			return nil, limitError(e.opts.MaxOutputBytes)
		}
		if cause := ctx.Err(); cause != nil {
			return nil, abortError(cause)
		}
		return &Result{Stdout: out.String(), Stderr: err.Error(), Failed: true}, nil
	}
	elapsed := time.Since(start)

	markers := inv.Markers.OrDefault()
	trailer := markers.Trailer(
		strconv.FormatFloat(elapsed.Seconds(), 'f', 6, 64),
		strconv.FormatInt(size, 10),
		fmt.Sprintf("%03d", resp.StatusCode),
	)
	if _, err := io.WriteString(out, trailer); err != nil {
		return nil, limitError(e.opts.MaxOutputBytes)
	}

	return &Result{
		Stdout: out.String(),
		Failed: resp.StatusCode >= 400,
	}, nil
}

func buildRequest(ctx context.Context, inv *compiler.Invocation) (*http.Request, error) {
	var body io.Reader
	var contentType string

	switch {
	case len(inv.Form) > 0:
		multipartBody, ct, err := BuildMultipartBody(inv.Form)
		if err != nil {
			return nil, err
		}
		body = multipartBody
		contentType = ct
	case inv.Payload != nil:
		body = strings.NewReader(*inv.Payload)
	}

	req, err := http.NewRequestWithContext(ctx, string(inv.EffectiveMethod()), inv.URL, body)
	if err != nil {
		return nil, err
	}

	for _, h := range inv.Headers {
		req.Header.Add(h.Name, h.Value)
	}
	if inv.User != nil {
		req.SetBasicAuth(inv.User.Username, inv.User.Password)
	}

	// Multipart content type must be set after headers to carry the boundary.
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if inv.Payload != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", defaultPayloadContentType)
	}
	if host := req.Header.Get("Host"); host != "" {
		req.Host = host
	}

	return req, nil
}

// BuildMultipartBody creates a multipart form data body from form fields.
func BuildMultipartBody(fields []compiler.FormField) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for _, field := range fields {
		if err := writer.WriteField(field.Name, field.Value); err != nil {
			return nil, "", err
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}

	return body, writer.FormDataContentType(), nil
}

// hopRecorder keeps every response seen during one client.Do, so redirect
// hops can be printed before the final response.
type hopRecorder struct {
	base http.RoundTripper
	hops []*http.Response
}

func (r *hopRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := r.base.RoundTrip(req)
	if err == nil {
		r.hops = append(r.hops, resp)
	}
	return resp, err
}

func writeHead(w io.Writer, resp *http.Response) error {
	if _, err := fmt.Fprintf(w, "%s %s\r\n", resp.Proto, resp.Status); err != nil {
		return err
	}
	if err := resp.Header.Write(w); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\r\n")
	return err
}

func abortError(cause error) error {
	if errors.Is(cause, context.DeadlineExceeded) {
		return timeoutError(cause)
	}
	return cause
}

func limitError(limit int64) error {
	return fmt.Errorf("%w of %d bytes", ErrOutputLimit, limit)
}
