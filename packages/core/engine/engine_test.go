package engine

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/hitcurl/packages/compiler"
	"github.com/abdul-hamid-achik/hitcurl/packages/core/model"
	"github.com/abdul-hamid-achik/hitcurl/packages/transport"
	"github.com/abdul-hamid-achik/hitcurl/packages/wire"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExecutor struct {
	result     *transport.Result
	err        error
	panicValue any
	got        *compiler.Invocation
}

func (f *fakeExecutor) Execute(_ context.Context, inv *compiler.Invocation) (*transport.Result, error) {
	f.got = inv
	if f.panicValue != nil {
		panic(f.panicValue)
	}
	return f.result, f.err
}

var shortMarkers = wire.Markers{Time: "__TIME__", Size: "__SIZE__", Code: "__CODE__"}

func fixedClock() func() time.Time {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return now }
}

func TestExecute_ParsedResponse(t *testing.T) {
	exec := &fakeExecutor{result: &transport.Result{
		Stdout: "HTTP/1.1 404 Not Found\nContent-Type: text/plain\n\nNot found\n__TIME__0.123\n__SIZE__9\n__CODE__404",
		Failed: true,
	}}
	e := New(exec, WithMarkers(shortMarkers), WithClock(fixedClock()))

	resp := e.Execute(context.Background(), &model.Request{Method: model.MethodGet, URL: "https://h/missing"})

	assert.Equal(t, 404, resp.Status)
	assert.Equal(t, "Not Found", resp.StatusText)
	assert.Equal(t, "Not found", resp.Body)
	assert.Equal(t, 123*time.Millisecond, resp.Time)
	assert.Equal(t, int64(9), resp.Size)

	require.NotNil(t, exec.got)
	assert.Equal(t, shortMarkers, exec.got.Markers)
	assert.Equal(t, "https://h/missing", exec.got.URL)
}

func TestExecute_TransportErrorResult(t *testing.T) {
	exec := &fakeExecutor{result: &transport.Result{
		Stdout: wire.DefaultMarkers.Trailer("0.001523", "0", "000"),
		Stderr: "curl: (6) Could not resolve host: nope.invalid",
		Failed: true,
	}}
	e := New(exec, WithClock(fixedClock()))

	resp := e.Execute(context.Background(), &model.Request{URL: "https://nope.invalid"})

	assert.Equal(t, 0, resp.Status)
	assert.Equal(t, model.StatusTextError, resp.StatusText)
	assert.Equal(t, model.FailureHostResolution, resp.Failure)
	assert.Equal(t, "Could not resolve host. Check the URL.", resp.Body)
}

func TestExecute_AbortedCall(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want model.FailureKind
	}{
		{"timeout", errors.New("request timed out: context deadline exceeded"), model.FailureTimeout},
		{"output limit", transport.ErrOutputLimit, model.FailureTransport},
		{"cancelled", context.Canceled, model.FailureTransport},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &fakeExecutor{
				result: &transport.Result{Stdout: "HTTP/1.1 200 OK\n\npartial"},
				err:    tt.err,
			}
			resp := New(exec).Execute(context.Background(), &model.Request{URL: "https://h"})

			assert.Equal(t, 0, resp.Status)
			assert.Equal(t, tt.want, resp.Failure)
			assert.NotContains(t, resp.Body, "partial")
		})
	}
}

func TestExecute_RecoversPanics(t *testing.T) {
	exec := &fakeExecutor{panicValue: "boom"}
	resp := New(exec).Execute(context.Background(), &model.Request{URL: "https://h"})

	require.NotNil(t, resp)
	assert.Equal(t, 0, resp.Status)
	assert.Equal(t, model.FailureTransport, resp.Failure)
	assert.Contains(t, resp.Body, "boom")
}

func TestExecute_NilExecutor(t *testing.T) {
	resp := New(nil).Execute(context.Background(), &model.Request{URL: "https://h"})

	assert.Equal(t, 0, resp.Status)
	assert.Equal(t, "No transport configured", resp.Body)
}

func TestExecute_NilResult(t *testing.T) {
	resp := New(&fakeExecutor{}).Execute(context.Background(), &model.Request{URL: "https://h"})

	assert.Equal(t, 0, resp.Status)
	assert.Equal(t, model.FailureNoResponse, resp.Failure)
}

func TestCompile_DefaultHeaders(t *testing.T) {
	e := New(nil, WithDefaultHeaders(map[string]string{
		"User-Agent": "hitcurl",
		"Accept":     "*/*",
	}))
	req := &model.Request{
		URL: "https://h",
		Headers: []model.KeyValue{
			{Key: "accept", Value: "application/json", Enabled: true},
			{Key: "X-Off", Value: "1", Enabled: false},
		},
	}

	inv := e.Compile(req)

	assert.Equal(t, []compiler.Header{
		{Name: "User-Agent", Value: "hitcurl"},
		{Name: "accept", Value: "application/json"},
	}, inv.Headers)
	assert.Len(t, req.Headers, 2, "request must not be modified")
}

func TestCompile_DisabledRequestHeaderKeepsDefault(t *testing.T) {
	e := New(nil, WithDefaultHeaders(map[string]string{"Accept": "*/*"}))

	inv := e.Compile(&model.Request{
		URL:     "https://h",
		Headers: []model.KeyValue{{Key: "Accept", Value: "text/html", Enabled: false}},
	})

	assert.Equal(t, []compiler.Header{{Name: "Accept", Value: "*/*"}}, inv.Headers)
}

func TestExecute_LogsRedactedCommand(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	exec := &fakeExecutor{result: &transport.Result{Stdout: "HTTP/1.1 200 OK\n\nok"}}

	New(exec, WithLogger(logger)).Execute(context.Background(), &model.Request{
		URL:  "https://h",
		Auth: &model.BearerAuth{Token: "top-secret"},
	})

	assert.Contains(t, buf.String(), "executing request")
	assert.Contains(t, buf.String(), "Authorization: ****")
	assert.NotContains(t, buf.String(), "top-secret")
}

func TestExecute_NativeTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		assert.Equal(t, "hitcurl-test", r.Header.Get("User-Agent"))
		assert.Equal(t, "a=1&b=two%20words", r.URL.RawQuery)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Request-Id", "r-1")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	exec, err := transport.NewNative(transport.Options{})
	require.NoError(t, err)
	e := New(exec, WithDefaultHeaders(map[string]string{"User-Agent": "hitcurl-test"}))

	resp := e.Execute(context.Background(), &model.Request{
		Method: model.MethodGet,
		URL:    server.URL + "?a=1",
		QueryParams: []model.KeyValue{
			{Key: "b", Value: "two words", Enabled: true},
		},
		Auth: &model.BearerAuth{Token: "abc"},
	})

	assert.Equal(t, 200, resp.Status)
	assert.Equal(t, "OK", resp.StatusText)
	assert.Equal(t, "r-1", resp.Header("X-Request-Id"))
	assert.True(t, resp.IsJSON())
	assert.Equal(t, `{"ok":true}`, resp.Body)
	assert.Equal(t, model.FailureNone, resp.Failure)
}

func TestExecute_NativeConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	exec, err := transport.NewNative(transport.Options{})
	require.NoError(t, err)

	resp := New(exec).Execute(context.Background(), &model.Request{URL: url})

	assert.Equal(t, 0, resp.Status)
	assert.Equal(t, model.FailureConnectionRefused, resp.Failure)
	assert.Equal(t, "Connection refused. Is the server running on this port?", resp.Body)
}
