package env

import (
	"fmt"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/hitcurl/packages/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolverResolve(t *testing.T) {
	t.Setenv("HITCURL_TEST_TOKEN", "env-token")

	tests := []struct {
		name      string
		input     string
		variables map[string]string
		expected  string
	}{
		{
			name:     "no variables",
			input:    "hello world",
			expected: "hello world",
		},
		{
			name:      "simple variable",
			input:     "hello {{name}}",
			variables: map[string]string{"name": "world"},
			expected:  "hello world",
		},
		{
			name:      "whitespace inside braces",
			input:     "{{ host }}/users",
			variables: map[string]string{"host": "https://api"},
			expected:  "https://api/users",
		},
		{
			name:      "multiple variables",
			input:     "{{greeting}} {{name}}!",
			variables: map[string]string{"greeting": "Hello", "name": "World"},
			expected:  "Hello World!",
		},
		{
			name:     "environment variable",
			input:    "Bearer {{$HITCURL_TEST_TOKEN}}",
			expected: "Bearer env-token",
		},
		{
			name:     "function call",
			input:    "{{base64(user:pass)}}",
			expected: "dXNlcjpwYXNz",
		},
		{
			name:     "url encode with quoted argument",
			input:    "q={{urlEncode('a b&c')}}",
			expected: "q=a%20b%26c",
		},
		{
			name:     "unresolved stays as-is",
			input:    "hello {{unknown}} {{$HITCURL_TEST_MISSING}} {{nope()}}",
			expected: "hello {{unknown}} {{$HITCURL_TEST_MISSING}} {{nope()}}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver()
			r.SetVariables(tt.variables)
			assert.Equal(t, tt.expected, r.Resolve(tt.input))
		})
	}
}

func TestResolverWarnsOnUnresolved(t *testing.T) {
	var warnings []string
	r := NewResolver()
	r.SetWarnFunc(func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	})

	r.Resolve("{{missing}} {{$HITCURL_TEST_MISSING}} {{nope(1)}}")

	assert.Equal(t, []string{
		"unresolved variable: missing",
		"unresolved environment variable: $HITCURL_TEST_MISSING",
		"unresolved function call: nope(1)",
	}, warnings)
}

func TestResolverBuiltinsWithClock(t *testing.T) {
	r := NewResolver()
	r.Funcs().SetClock(func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) })

	assert.Equal(t, "2026-01-02T03:04:05Z", r.Resolve("{{now()}}"))
	assert.Equal(t, "1767323045", r.Resolve("{{timestamp()}}"))
	assert.Equal(t, "1767323045000", r.Resolve("{{timestampMs()}}"))
	assert.Len(t, r.Resolve("{{uuid()}}"), 36)
}

func TestResolverGetUnresolvedVariables(t *testing.T) {
	r := NewResolver()
	r.SetVariable("bar", "middle")

	assert.Nil(t, r.GetUnresolvedVariables("hello world"))
	assert.Equal(t, []string{"foo", "baz", "missing()"},
		r.GetUnresolvedVariables("{{foo}} and {{bar}} and {{baz}} {{uuid()}} {{missing()}}"))
}

func TestResolverSetKeyValues(t *testing.T) {
	r := NewResolver()
	r.SetKeyValues([]model.KeyValue{
		{Key: "on", Value: "1", Enabled: true},
		{Key: "off", Value: "2", Enabled: false},
	})

	_, ok := r.GetVariable("off")
	assert.False(t, ok)
	v, ok := r.GetVariable("on")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
}

func TestResolveRequest(t *testing.T) {
	r := NewResolver()
	r.SetVariables(map[string]string{
		"base":  "https://api.example.com",
		"id":    "42",
		"token": "t0k",
		"user":  "alice",
		"name":  "Ada",
	})

	req := &model.Request{
		Method: model.MethodPost,
		URL:    "{{base}}/users/{{id}}",
		QueryParams: []model.KeyValue{
			{Key: "q", Value: "{{name}}", Enabled: true},
			{Key: "off", Value: "{{name}}", Enabled: false},
		},
		Headers: []model.KeyValue{{Key: "X-User", Value: "{{user}}", Enabled: true}},
		Auth:    &model.BearerAuth{Token: "{{token}}"},
		Body:    &model.JSONBody{Text: `{"name":"{{name}}"}`},
	}

	out := r.ResolveRequest(req)
	require.NotNil(t, out)

	assert.Equal(t, "https://api.example.com/users/42", out.URL)
	assert.Equal(t, "Ada", out.QueryParams[0].Value)
	assert.Equal(t, "{{name}}", out.QueryParams[1].Value)
	assert.Equal(t, "alice", out.Headers[0].Value)
	assert.Equal(t, "t0k", out.Auth.(*model.BearerAuth).Token)
	assert.Equal(t, `{"name":"Ada"}`, out.Body.(*model.JSONBody).Text)

	// The original request is untouched.
	assert.Equal(t, "{{base}}/users/{{id}}", req.URL)
	assert.Equal(t, "{{token}}", req.Auth.(*model.BearerAuth).Token)
	assert.Equal(t, "{{name}}", req.QueryParams[0].Value)

	assert.Nil(t, r.ResolveRequest(nil))
}

func TestResolveRequest_FormAndBasicAuth(t *testing.T) {
	r := NewResolver()
	r.SetVariables(map[string]string{"pw": "s3cret", "v": "x"})

	out := r.ResolveRequest(&model.Request{
		URL:  "https://h",
		Auth: &model.BasicAuth{Username: "bob", Password: "{{pw}}"},
		Body: &model.URLEncodedBody{Fields: []model.KeyValue{{Key: "k", Value: "{{v}}", Enabled: true}}},
	})

	assert.Equal(t, "s3cret", out.Auth.(*model.BasicAuth).Password)
	assert.Equal(t, "x", out.Body.(*model.URLEncodedBody).Fields[0].Value)
}

func TestResolverClone(t *testing.T) {
	r := NewResolver()
	r.SetVariable("a", "1")

	c := r.Clone()
	c.SetVariable("a", "2")

	v, _ := r.GetVariable("a")
	assert.Equal(t, "1", v)
	v, _ = c.GetVariable("a")
	assert.Equal(t, "2", v)
}

func TestResolveRequest_StructuredJSONBody(t *testing.T) {
	r := NewResolver()
	r.SetVariables(map[string]string{"name": "Ada"})

	value := map[string]any{
		"user":  map[string]any{"name": "{{name}}"},
		"tags":  []any{"{{name}}", 7},
		"admin": true,
	}
	req := &model.Request{URL: "https://h", Body: &model.JSONBody{Value: value}}

	out := r.ResolveRequest(req)

	assert.Equal(t, map[string]any{
		"user":  map[string]any{"name": "Ada"},
		"tags":  []any{"Ada", 7},
		"admin": true,
	}, out.Body.(*model.JSONBody).Value)
	assert.Equal(t, "{{name}}", value["user"].(map[string]any)["name"])
}
