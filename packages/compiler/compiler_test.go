package compiler

import (
	"strings"
	"testing"

	"github.com/abdul-hamid-achik/hitcurl/packages/core/model"
	"github.com/abdul-hamid-achik/hitcurl/packages/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func argIndex(args []string, flag string) int {
	for i, a := range args {
		if a == flag {
			return i
		}
	}
	return -1
}

func TestCompile_GetHasNoMethodFlag(t *testing.T) {
	for _, method := range []model.Method{model.MethodGet, "get", ""} {
		inv := Compile(&model.Request{Method: method, URL: "https://api.example.com"})

		assert.Empty(t, inv.Method)
		assert.Equal(t, -1, argIndex(inv.Args(), "-X"), "method %q", method)
		assert.Equal(t, model.MethodGet, inv.EffectiveMethod())
	}
}

func TestCompile_ExplicitMethod(t *testing.T) {
	inv := Compile(&model.Request{Method: model.MethodDelete, URL: "https://api.example.com/items/1"})

	args := inv.Args()
	i := argIndex(args, "-X")
	require.GreaterOrEqual(t, i, 0)
	assert.Equal(t, "DELETE", args[i+1])
}

func TestCompile_HeadUsesHeadFlag(t *testing.T) {
	inv := Compile(&model.Request{
		Method: model.MethodHead,
		URL:    "https://api.example.com/items",
		Body:   &model.RawBody{Text: "ignored"},
	})

	assert.Equal(t, model.MethodHead, inv.Method)
	args := inv.Args()
	assert.Contains(t, args, "--head")
	assert.Equal(t, -1, argIndex(args, "-X"))
	assert.Equal(t, -1, argIndex(args, "--data-raw"))
}

func TestCompile_PostJSONExample(t *testing.T) {
	req := &model.Request{
		Method:  model.MethodPost,
		URL:     "https://api.example.com/items",
		Headers: []model.KeyValue{{Key: "X-Test", Value: "1", Enabled: true}},
		Body:    &model.JSONBody{Text: `{"a":1}`},
	}

	inv := Compile(req)

	assert.Equal(t, model.MethodPost, inv.Method)
	assert.Equal(t, []Header{
		{Name: "X-Test", Value: "1"},
		{Name: "Content-Type", Value: "application/json"},
	}, inv.Headers)
	require.NotNil(t, inv.Payload)
	assert.Equal(t, `{"a":1}`, *inv.Payload)

	args := inv.Args()
	assert.Contains(t, args, "X-Test: 1")
	assert.Contains(t, args, "Content-Type: application/json")
	assert.Contains(t, args, `{"a":1}`)
	assert.Equal(t, "https://api.example.com/items", args[len(args)-1])
}

func TestCompile_DisabledEntriesExcluded(t *testing.T) {
	req := &model.Request{
		Method: model.MethodPost,
		URL:    "https://api.example.com",
		Headers: []model.KeyValue{
			{Key: "X-On", Value: "yes", Enabled: true},
			{Key: "X-Off", Value: "secret-header", Enabled: false},
			{Key: "X-Empty", Value: "", Enabled: true},
		},
		QueryParams: []model.KeyValue{
			{Key: "on", Value: "1", Enabled: true},
			{Key: "off", Value: "hidden-param", Enabled: false},
		},
		Body: &model.URLEncodedBody{Fields: []model.KeyValue{
			{Key: "a", Value: "1", Enabled: true},
			{Key: "b", Value: "hidden-field", Enabled: false},
		}},
	}

	cmd := Compile(req).String()

	assert.Contains(t, cmd, "X-On: yes")
	assert.NotContains(t, cmd, "X-Off")
	assert.NotContains(t, cmd, "secret-header")
	assert.NotContains(t, cmd, "X-Empty")
	assert.NotContains(t, cmd, "hidden-param")
	assert.NotContains(t, cmd, "hidden-field")
}

func TestCompile_QuerySeparator(t *testing.T) {
	params := []model.KeyValue{
		{Key: "a", Value: "1", Enabled: true},
		{Key: "b", Value: "x y", Enabled: true},
	}

	tests := []struct {
		name string
		url  string
		want string
	}{
		{"no query", "https://h/p", "https://h/p?a=1&b=x%20y"},
		{"existing query", "https://h/p?z=0", "https://h/p?z=0&a=1&b=x%20y"},
		{"trailing question mark", "https://h/p?", "https://h/p?&a=1&b=x%20y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := Compile(&model.Request{URL: tt.url, QueryParams: params})
			assert.Equal(t, tt.want, inv.URL)
			assert.LessOrEqual(t, strings.Count(inv.URL, "?"), 1)
		})
	}
}

func TestCompile_EmptyKeyParamSkipped(t *testing.T) {
	inv := Compile(&model.Request{
		URL: "https://h",
		QueryParams: []model.KeyValue{
			{Key: "", Value: "orphan", Enabled: true},
			{Key: "k", Value: "", Enabled: true},
		},
	})
	assert.Equal(t, "https://h?k=", inv.URL)
}

func TestCompile_APIKeyQueryIsLast(t *testing.T) {
	req := &model.Request{
		URL: "https://h/p?x=1",
		QueryParams: []model.KeyValue{
			{Key: "a", Value: "1", Enabled: true},
			{Key: "b", Value: "2", Enabled: true},
		},
		Auth: &model.APIKeyAuth{Key: "api_key", Value: "k&v", AddTo: model.APIKeyInQuery},
	}

	inv := Compile(req)

	assert.Equal(t, "https://h/p?x=1&a=1&b=2&api_key=k%26v", inv.URL)
	assert.True(t, strings.HasSuffix(inv.URL, "&api_key=k%26v"))
	_, found := inv.Header("api_key")
	assert.False(t, found)
}

func TestCompile_APIKeyQueryWithoutParams(t *testing.T) {
	inv := Compile(&model.Request{
		URL:  "https://h/p",
		Auth: &model.APIKeyAuth{Key: "key", Value: "v", AddTo: model.APIKeyInQuery},
	})
	assert.Equal(t, "https://h/p?key=v", inv.URL)
}

func TestCompile_Auth(t *testing.T) {
	tests := []struct {
		name       string
		auth       model.Auth
		wantHeader *Header
		wantUser   *Credentials
	}{
		{"none", nil, nil, nil},
		{"basic", &model.BasicAuth{Username: "u", Password: "p"}, nil, &Credentials{Username: "u", Password: "p"}},
		{"basic missing password", &model.BasicAuth{Username: "u"}, nil, nil},
		{"bearer", &model.BearerAuth{Token: "tok"}, &Header{Name: "Authorization", Value: "Bearer tok"}, nil},
		{"bearer empty", &model.BearerAuth{}, nil, nil},
		{"api key header", &model.APIKeyAuth{Key: "X-Key", Value: "v", AddTo: model.APIKeyInHeader}, &Header{Name: "X-Key", Value: "v"}, nil},
		{"api key missing value", &model.APIKeyAuth{Key: "X-Key", AddTo: model.APIKeyInHeader}, nil, nil},
		{"api key unknown location", &model.APIKeyAuth{Key: "X-Key", Value: "v", AddTo: "cookie"}, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := Compile(&model.Request{URL: "https://h", Auth: tt.auth})

			if tt.wantHeader == nil {
				assert.Empty(t, inv.Headers)
			} else {
				assert.Equal(t, []Header{*tt.wantHeader}, inv.Headers)
			}
			assert.Equal(t, tt.wantUser, inv.User)
			assert.Equal(t, "https://h", inv.URL)
		})
	}
}

func TestCompile_BasicAuthIsCredentialPair(t *testing.T) {
	inv := Compile(&model.Request{URL: "https://h", Auth: &model.BasicAuth{Username: "admin", Password: "s3cret"}})

	args := inv.Args()
	i := argIndex(args, "-u")
	require.GreaterOrEqual(t, i, 0)
	assert.Equal(t, "admin:s3cret", args[i+1])
	assert.Equal(t, -1, argIndex(args, "-H"))
}

func TestCompile_Bodies(t *testing.T) {
	t.Run("json structured value", func(t *testing.T) {
		inv := Compile(&model.Request{Method: model.MethodPost, URL: "https://h", Body: &model.JSONBody{Value: map[string]any{"a": 1}}})
		require.NotNil(t, inv.Payload)
		assert.Equal(t, `{"a":1}`, *inv.Payload)
		ct, _ := inv.Header("Content-Type")
		assert.Equal(t, "application/json", ct)
	})

	t.Run("json blank", func(t *testing.T) {
		inv := Compile(&model.Request{Method: model.MethodPost, URL: "https://h", Body: &model.JSONBody{Text: "  \n"}})
		assert.Nil(t, inv.Payload)
		assert.Empty(t, inv.Headers)
	})

	t.Run("raw trimmed without content type", func(t *testing.T) {
		inv := Compile(&model.Request{Method: model.MethodPut, URL: "https://h", Body: &model.RawBody{Text: "  hello  \n"}})
		require.NotNil(t, inv.Payload)
		assert.Equal(t, "hello", *inv.Payload)
		assert.Empty(t, inv.Headers)
	})

	t.Run("urlencoded", func(t *testing.T) {
		inv := Compile(&model.Request{Method: model.MethodPost, URL: "https://h", Body: &model.URLEncodedBody{Fields: []model.KeyValue{
			{Key: "name", Value: "John Doe", Enabled: true},
			{Key: "tag", Value: "a&b", Enabled: true},
		}}})
		require.NotNil(t, inv.Payload)
		assert.Equal(t, "name=John%20Doe&tag=a%26b", *inv.Payload)
		ct, _ := inv.Header("Content-Type")
		assert.Equal(t, "application/x-www-form-urlencoded", ct)
	})

	t.Run("urlencoded all disabled omits payload", func(t *testing.T) {
		inv := Compile(&model.Request{Method: model.MethodPost, URL: "https://h", Body: &model.URLEncodedBody{Fields: []model.KeyValue{
			{Key: "name", Value: "x", Enabled: false},
		}}})
		assert.Nil(t, inv.Payload)
		assert.Equal(t, -1, argIndex(inv.Args(), "--data-raw"))
	})

	t.Run("form data", func(t *testing.T) {
		inv := Compile(&model.Request{Method: model.MethodPost, URL: "https://h", Body: &model.FormDataBody{Fields: []model.KeyValue{
			{Key: "file", Value: "@/etc/passwd", Enabled: true},
			{Key: "skip", Value: "x", Enabled: false},
			{Key: "", Value: "x", Enabled: true},
		}}})
		assert.Equal(t, []FormField{{Name: "file", Value: "@/etc/passwd"}}, inv.Form)
		assert.Empty(t, inv.Headers)
		assert.Nil(t, inv.Payload)

		args := inv.Args()
		i := argIndex(args, "--form-string")
		require.GreaterOrEqual(t, i, 0)
		assert.Equal(t, "file=@/etc/passwd", args[i+1])
	})

	t.Run("none", func(t *testing.T) {
		inv := Compile(&model.Request{URL: "https://h"})
		assert.Nil(t, inv.Payload)
		assert.Empty(t, inv.Form)
	})
}

func TestCompile_Instrumentation(t *testing.T) {
	markers := wire.Markers{Time: "__T__", Size: "__S__", Code: "__C__"}
	inv := New(WithMarkers(markers)).Compile(&model.Request{URL: "https://h"})

	args := inv.Args()
	i := argIndex(args, "-w")
	require.GreaterOrEqual(t, i, 0)
	assert.Equal(t, "\n__T__%{time_total}\n__S__%{size_download}\n__C__%{http_code}", args[i+1])
	assert.Contains(t, args, "--fail-with-body")
	assert.Contains(t, args, "-i")
}

func TestCompile_NilRequest(t *testing.T) {
	inv := Compile(nil)
	require.NotNil(t, inv)
	assert.Empty(t, inv.URL)
}

func TestInvocation_StringQuotesValues(t *testing.T) {
	inv := Compile(&model.Request{
		Method:  model.MethodPost,
		URL:     "https://h/p?a=1&b=2",
		Headers: []model.KeyValue{{Key: "X-Quote", Value: "it's $(rm -rf /)", Enabled: true}},
		Body:    &model.RawBody{Text: "don't"},
	})

	cmd := inv.String()

	assert.True(t, strings.HasPrefix(cmd, "curl -i -s -S -X POST "))
	assert.Contains(t, cmd, `'X-Quote: it'\''s $(rm -rf /)'`)
	assert.Contains(t, cmd, `--data-raw 'don'\''t'`)
	assert.Contains(t, cmd, `--url 'https://h/p?a=1&b=2'`)
}

func TestInvocation_HeaderNewlinesStripped(t *testing.T) {
	inv := Compile(&model.Request{
		URL:     "https://h",
		Headers: []model.KeyValue{{Key: "X-A", Value: "1\r\nX-Injected: 2", Enabled: true}},
	})
	assert.Equal(t, []Header{{Name: "X-A", Value: "1X-Injected: 2"}}, inv.Headers)
}

func TestInvocation_Redacted(t *testing.T) {
	inv := Compile(&model.Request{URL: "https://h", Auth: &model.BasicAuth{Username: "u", Password: "hunter2"}})
	assert.NotContains(t, inv.Redacted(), "hunter2")
	assert.Contains(t, inv.String(), "hunter2")

	inv = Compile(&model.Request{URL: "https://h", Auth: &model.BearerAuth{Token: "tok123"}})
	assert.NotContains(t, inv.Redacted(), "tok123")
}
