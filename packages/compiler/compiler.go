package compiler

import (
	"strings"

	"github.com/abdul-hamid-achik/hitcurl/packages/core/model"
	"github.com/abdul-hamid-achik/hitcurl/packages/wire"
)

const (
	contentTypeJSON       = "application/json"
	contentTypeURLEncoded = "application/x-www-form-urlencoded"
)

type Compiler struct {
	markers wire.Markers
}

type Option func(*Compiler)

// WithMarkers sets the instrumentation markers written by the transport.
func WithMarkers(m wire.Markers) Option {
	return func(c *Compiler) {
		c.markers = m
	}
}

func New(opts ...Option) *Compiler {
	c := &Compiler{
		markers: wire.DefaultMarkers,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.markers = c.markers.OrDefault()
	return c
}

var defaultCompiler = New()

// Compile compiles req with the default markers.
func Compile(req *model.Request) *Invocation {
	return defaultCompiler.Compile(req)
}

func (c *Compiler) Compile(req *model.Request) *Invocation {
	inv := &Invocation{Markers: c.markers}
	if req == nil {
		return inv
	}

	if method, _ := model.ParseMethod(string(req.Method)); method != "" && method != model.MethodGet {
		inv.Method = method
	}

	for _, h := range req.Headers {
		if h.Enabled && h.Key != "" && h.Value != "" {
			inv.addHeader(h.Key, h.Value)
		}
	}

	queryAuth := applyAuth(inv, req.Auth)
	inv.URL = buildURL(req.URL, req.QueryParams, queryAuth)
	applyBody(inv, req.Body)

	return inv
}

func (inv *Invocation) addHeader(name, value string) {
	inv.Headers = append(inv.Headers, Header{
		Name:  wire.StripNewlines(name),
		Value: wire.StripNewlines(value),
	})
}

// applyAuth adds header or credential auth to inv and returns the api-key
// pair that must go into the query string, if any.
func applyAuth(inv *Invocation, auth model.Auth) *model.KeyValue {
	switch a := auth.(type) {
	case *model.BasicAuth:
		if a.Username != "" && a.Password != "" {
			inv.User = &Credentials{Username: a.Username, Password: a.Password}
		}
	case *model.BearerAuth:
		if a.Token != "" {
			inv.addHeader("Authorization", "Bearer "+a.Token)
		}
	case *model.APIKeyAuth:
		if a.Key == "" || a.Value == "" {
			return nil
		}
		switch a.AddTo {
		case model.APIKeyInHeader:
			inv.addHeader(a.Key, a.Value)
		case model.APIKeyInQuery:
			return &model.KeyValue{Key: a.Key, Value: a.Value, Enabled: true}
		}
	}
	return nil
}

func buildURL(base string, params []model.KeyValue, queryAuth *model.KeyValue) string {
	u := base
	if qs := wire.EncodePairs(params); qs != "" {
		u += separator(u) + qs
	}
	if queryAuth != nil {
		u += separator(u) + wire.EncodePairs([]model.KeyValue{*queryAuth})
	}
	return u
}

func separator(u string) string {
	if strings.Contains(u, "?") {
		return "&"
	}
	return "?"
}

func applyBody(inv *Invocation, body model.Body) {
	switch b := body.(type) {
	case *model.JSONBody:
		text := b.Serialize()
		if strings.TrimSpace(text) == "" {
			return
		}
		inv.addHeader("Content-Type", contentTypeJSON)
		inv.Payload = &text
	case *model.RawBody:
		text := strings.TrimSpace(b.Text)
		if text == "" {
			return
		}
		inv.Payload = &text
	case *model.URLEncodedBody:
		if len(b.Fields) == 0 {
			return
		}
		inv.addHeader("Content-Type", contentTypeURLEncoded)
		if payload := wire.EncodePairs(b.Fields); payload != "" {
			inv.Payload = &payload
		}
	case *model.FormDataBody:
		for _, f := range model.Enabled(b.Fields) {
			inv.Form = append(inv.Form, FormField{Name: f.Key, Value: f.Value})
		}
	}
}
