package model

import (
	"strings"
	"time"
)

// Method is an HTTP request method.
type Method string

const (
	MethodGet     Method = "GET"
	MethodPost    Method = "POST"
	MethodPut     Method = "PUT"
	MethodPatch   Method = "PATCH"
	MethodDelete  Method = "DELETE"
	MethodHead    Method = "HEAD"
	MethodOptions Method = "OPTIONS"
)

// Methods lists the supported methods in display order.
var Methods = []Method{
	MethodGet,
	MethodPost,
	MethodPut,
	MethodPatch,
	MethodDelete,
	MethodHead,
	MethodOptions,
}

// ParseMethod normalizes s and reports whether it is a supported method.
func ParseMethod(s string) (Method, bool) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Methods {
		if m == known {
			return m, true
		}
	}
	return m, false
}

// KeyValue is a header, query parameter, form field or variable.
// Disabled pairs stay in the model but are never compiled.
type KeyValue struct {
	Key     string
	Value   string
	Enabled bool
}

// Included reports whether the pair takes part in compilation.
func (kv KeyValue) Included() bool {
	return kv.Enabled && kv.Key != ""
}

// Enabled returns the pairs of kvs that are enabled and have a key, in order.
func Enabled(kvs []KeyValue) []KeyValue {
	var out []KeyValue
	for _, kv := range kvs {
		if kv.Included() {
			out = append(out, kv)
		}
	}
	return out
}

type Request struct {
	ID          string
	Name        string
	Method      Method
	URL         string
	QueryParams []KeyValue
	Headers     []KeyValue
	Auth        Auth
	Body        Body
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Clone returns a deep copy of r. Structured JSON body values are shared.
func (r *Request) Clone() *Request {
	if r == nil {
		return nil
	}
	c := *r
	c.QueryParams = cloneKeyValues(r.QueryParams)
	c.Headers = cloneKeyValues(r.Headers)
	switch b := r.Body.(type) {
	case *URLEncodedBody:
		c.Body = &URLEncodedBody{Fields: cloneKeyValues(b.Fields)}
	case *FormDataBody:
		c.Body = &FormDataBody{Fields: cloneKeyValues(b.Fields)}
	case *RawBody:
		cp := *b
		c.Body = &cp
	case *JSONBody:
		cp := *b
		c.Body = &cp
	}
	switch a := r.Auth.(type) {
	case *BasicAuth:
		cp := *a
		c.Auth = &cp
	case *BearerAuth:
		cp := *a
		c.Auth = &cp
	case *APIKeyAuth:
		cp := *a
		c.Auth = &cp
	}
	return &c
}

// DisplayName returns the request name, or "METHOD URL" when it has none.
func (r *Request) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	method := r.Method
	if method == "" {
		method = MethodGet
	}
	return string(method) + " " + r.URL
}

func cloneKeyValues(kvs []KeyValue) []KeyValue {
	if kvs == nil {
		return nil
	}
	out := make([]KeyValue, len(kvs))
	copy(out, kvs)
	return out
}
