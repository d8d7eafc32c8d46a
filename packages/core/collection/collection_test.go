package collection

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/hitcurl/packages/compiler"
	"github.com/abdul-hamid-achik/hitcurl/packages/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jsonDocument = `{
  "id": "req-1",
  "name": "Create user",
  "method": "post",
  "url": "https://api.example.com/users",
  "queryParams": [
    {"key": "dry", "value": "1", "enabled": false},
    {"key": "v", "value": "2"}
  ],
  "headers": [{"key": "X-Trace", "value": "abc", "enabled": true}],
  "auth": {
    "type": "bearer",
    "bearer": {"token": "t0k"},
    "basic": {"username": "ignored", "password": "ignored"}
  },
  "body": {
    "type": "json",
    "json": {"name": "Ada"},
    "raw": "ignored"
  },
  "createdAt": 1767323045000
}`

const yamlDocument = `name: Login
method: POST
url: https://api.example.com/login
auth:
  type: api-key
  apiKey:
    key: api_key
    value: k
    addTo: query
body:
  type: x-www-form-urlencoded
  formData:
    - key: user
      value: ada
    - key: remember
      value: "yes"
      enabled: false
`

func TestParse_JSON(t *testing.T) {
	doc, err := Parse([]byte(jsonDocument), FormatJSON)
	require.NoError(t, err)

	req, err := doc.ToModel()
	require.NoError(t, err)

	assert.Equal(t, "req-1", req.ID)
	assert.Equal(t, model.MethodPost, req.Method)
	assert.Equal(t, []model.KeyValue{
		{Key: "dry", Value: "1", Enabled: false},
		{Key: "v", Value: "2", Enabled: true},
	}, req.QueryParams)
	assert.Equal(t, &model.BearerAuth{Token: "t0k"}, req.Auth)
	require.IsType(t, &model.JSONBody{}, req.Body)
	assert.Equal(t, `{"name":"Ada"}`, req.Body.(*model.JSONBody).Serialize())
	assert.Equal(t, time.UnixMilli(1767323045000), req.CreatedAt)
	assert.True(t, req.UpdatedAt.IsZero())
}

func TestParse_YAML(t *testing.T) {
	doc, err := Parse([]byte(yamlDocument), FormatYAML)
	require.NoError(t, err)

	req, err := doc.ToModel()
	require.NoError(t, err)

	assert.Equal(t, &model.APIKeyAuth{Key: "api_key", Value: "k", AddTo: model.APIKeyInQuery}, req.Auth)
	require.IsType(t, &model.URLEncodedBody{}, req.Body)

	inv := compiler.Compile(req)
	assert.Equal(t, "https://api.example.com/login?api_key=k", inv.URL)
	require.NotNil(t, inv.Payload)
	assert.Equal(t, "user=ada", *inv.Payload)
}

func TestParse_SchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"missing url", `{"method": "GET"}`, "url"},
		{"bad method", `{"url": "https://h", "method": "FETCH"}`, "method"},
		{"bad auth type", `{"url": "https://h", "auth": {"type": "digest"}}`, "auth.type"},
		{"bad body type", `{"url": "https://h", "body": {"type": "xml"}}`, "body.type"},
		{"header without key", `{"url": "https://h", "headers": [{"value": "x"}]}`, "key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), FormatJSON)
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Error(), tt.want)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte("{not json"), FormatJSON)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse json")

	_, err = Parse([]byte("  \n"), FormatYAML)
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, DetectFormat("a.json", nil))
	assert.Equal(t, FormatYAML, DetectFormat("a.YML", nil))
	assert.Equal(t, FormatJSON, DetectFormat("a.req", []byte("  {\"url\":\"x\"}")))
	assert.Equal(t, FormatYAML, DetectFormat("a.req", []byte("url: x")))
}

func TestToModel_Defaults(t *testing.T) {
	req, err := (&Request{URL: "https://h"}).ToModel()
	require.NoError(t, err)
	assert.Equal(t, model.MethodGet, req.Method)
	assert.Nil(t, req.Auth)
	assert.Nil(t, req.Body)

	req, err = (&Request{
		URL:  "https://h",
		Auth: &Auth{Type: "none", Bearer: &BearerAuth{Token: "x"}},
		Body: &Body{Type: "none", Raw: "x"},
	}).ToModel()
	require.NoError(t, err)
	assert.Nil(t, req.Auth)
	assert.Nil(t, req.Body)
}

func TestToModel_Errors(t *testing.T) {
	_, err := (&Request{URL: "https://h", Method: "TRACE"}).ToModel()
	assert.Error(t, err)

	_, err = (&Request{URL: "https://h", Auth: &Auth{Type: "api-key", APIKey: &APIKeyAuth{AddTo: "cookie"}}}).ToModel()
	assert.Error(t, err)
}

func TestFromModel_RoundTrip(t *testing.T) {
	created := time.UnixMilli(1767323045000)
	original := &model.Request{
		ID:          "r1",
		Name:        "Upload",
		Method:      model.MethodPut,
		URL:         "https://h/upload",
		QueryParams: []model.KeyValue{{Key: "a", Value: "1", Enabled: true}},
		Headers:     []model.KeyValue{{Key: "X-Off", Value: "1", Enabled: false}},
		Auth:        &model.BasicAuth{Username: "u", Password: "p"},
		Body:        &model.FormDataBody{Fields: []model.KeyValue{{Key: "f", Value: "v", Enabled: true}}},
		CreatedAt:   created,
		UpdatedAt:   created,
	}

	for _, format := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			doc := FromModel(original)
			data, err := Marshal(doc, format)
			require.NoError(t, err)

			parsed, err := Parse(data, format)
			require.NoError(t, err)
			back, err := parsed.ToModel()
			require.NoError(t, err)

			assert.Equal(t, compiler.Compile(original).Args(), compiler.Compile(back).Args())
			assert.Equal(t, original.Headers, back.Headers)
			assert.True(t, original.CreatedAt.Equal(back.CreatedAt))
		})
	}
}

func TestLoadRequest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "login.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlDocument), 0644))

	req, err := LoadRequest(path)
	require.NoError(t, err)
	assert.Equal(t, "Login", req.Name)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"url": ""}`), 0644))
	_, err = LoadRequest(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.json")
}

func TestSaveFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "req.json")
	doc := FromModel(&model.Request{URL: "https://h", Body: &model.RawBody{Text: "hi"}})

	require.NoError(t, SaveFile(path, doc))
	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "GET", loaded.Method)
	assert.Equal(t, "hi", loaded.Body.Raw)
}

func TestCollectionFindAndEnvironmentValues(t *testing.T) {
	off := false
	c := &Collection{Requests: []Request{{ID: "a", Name: "first"}, {ID: "b", Name: "second"}}}

	r, ok := c.Find("second")
	require.True(t, ok)
	assert.Equal(t, "b", r.ID)
	r, ok = c.Find("a")
	require.True(t, ok)
	assert.Equal(t, "first", r.Name)
	_, ok = c.Find("zzz")
	assert.False(t, ok)

	env := &Environment{Variables: []KeyValue{
		{Key: "host", Value: "h"},
		{Key: "off", Value: "x", Enabled: &off},
	}}
	assert.Equal(t, map[string]string{"host": "h"}, env.Values())
}
