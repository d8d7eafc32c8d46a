package env

import (
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/abdul-hamid-achik/hitcurl/packages/core/model"
)

var variablePattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// WarnFunc is a function type for handling warnings
type WarnFunc func(format string, args ...any)

// Resolver handles variable resolution with thread-safe access to variables.
// It supports environment variables, built-in functions and user-defined variables.
type Resolver struct {
	mu        sync.RWMutex
	variables map[string]string
	funcs     *Registry
	warnFunc  WarnFunc
}

func NewResolver() *Resolver {
	return &Resolver{
		variables: make(map[string]string),
		funcs:     NewRegistry(),
	}
}

// SetWarnFunc sets a function to be called when warnings occur (e.g., unresolved variables)
func (r *Resolver) SetWarnFunc(fn WarnFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnFunc = fn
}

func (r *Resolver) warn(format string, args ...any) {
	r.mu.RLock()
	fn := r.warnFunc
	r.mu.RUnlock()
	if fn != nil {
		fn(format, args...)
	}
}

func (r *Resolver) SetVariables(vars map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range vars {
		r.variables[k] = v
	}
}

func (r *Resolver) SetVariable(name, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.variables[name] = value
}

// SetKeyValues adds the enabled pairs of kvs as variables.
func (r *Resolver) SetKeyValues(kvs []model.KeyValue) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, kv := range model.Enabled(kvs) {
		r.variables[kv.Key] = kv.Value
	}
}

func (r *Resolver) GetVariable(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.variables[name]
	return v, ok
}

// Funcs exposes the builtin registry so callers can register their own functions.
func (r *Resolver) Funcs() *Registry {
	return r.funcs
}

func (r *Resolver) Resolve(input string) string {
	if !strings.Contains(input, "{{") {
		return input
	}
	return variablePattern.ReplaceAllStringFunc(input, func(match string) string {
		if value, ok := r.lookup(match); ok {
			return value
		}
		return match
	})
}

func (r *Resolver) lookup(match string) (string, bool) {
	expr := strings.TrimSpace(match[2 : len(match)-2])

	if strings.HasPrefix(expr, "$") {
		envVar := expr[1:]
		if val, ok := os.LookupEnv(envVar); ok {
			return val, true
		}
		r.warn("unresolved environment variable: $%s", envVar)
		return "", false
	}

	if strings.Contains(expr, "(") {
		if result, ok := r.funcs.Call(expr); ok {
			return result, true
		}
		r.warn("unresolved function call: %s", expr)
		return "", false
	}

	r.mu.RLock()
	val, ok := r.variables[expr]
	r.mu.RUnlock()
	if ok {
		return val, true
	}

	r.warn("unresolved variable: %s", expr)
	return "", false
}

// GetUnresolvedVariables returns the references in input that cannot be
// resolved, in order of appearance. Functions are not evaluated.
func (r *Resolver) GetUnresolvedVariables(input string) []string {
	var out []string
	for _, m := range variablePattern.FindAllStringSubmatch(input, -1) {
		expr := strings.TrimSpace(m[1])
		switch {
		case strings.HasPrefix(expr, "$"):
			if _, ok := os.LookupEnv(expr[1:]); ok {
				continue
			}
		case strings.Contains(expr, "("):
			if name, _, _ := strings.Cut(expr, "("); r.funcs.funcs[name] != nil {
				continue
			}
		default:
			if _, ok := r.GetVariable(expr); ok {
				continue
			}
		}
		out = append(out, expr)
	}
	return out
}

// ResolveRequest returns a copy of req with every string field resolved:
// URL, query params, headers, auth values and body text or fields.
// Structured JSON body values are left untouched.
func (r *Resolver) ResolveRequest(req *model.Request) *model.Request {
	if req == nil {
		return nil
	}
	out := req.Clone()
	out.URL = r.Resolve(out.URL)
	r.resolveKeyValues(out.QueryParams)
	r.resolveKeyValues(out.Headers)

	switch a := out.Auth.(type) {
	case *model.BasicAuth:
		a.Username = r.Resolve(a.Username)
		a.Password = r.Resolve(a.Password)
	case *model.BearerAuth:
		a.Token = r.Resolve(a.Token)
	case *model.APIKeyAuth:
		a.Key = r.Resolve(a.Key)
		a.Value = r.Resolve(a.Value)
	}

	switch b := out.Body.(type) {
	case *model.RawBody:
		b.Text = r.Resolve(b.Text)
	case *model.JSONBody:
		b.Text = r.Resolve(b.Text)
		b.Value = r.resolveValue(b.Value)
	case *model.URLEncodedBody:
		r.resolveKeyValues(b.Fields)
	case *model.FormDataBody:
		r.resolveKeyValues(b.Fields)
	}

	return out
}

// resolveValue returns a copy of a decoded JSON value with every string
// resolved. Keys are left as they are.
func (r *Resolver) resolveValue(v any) any {
	switch t := v.(type) {
	case string:
		return r.Resolve(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = r.resolveValue(item)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = r.resolveValue(item)
		}
		return out
	default:
		return v
	}
}

// resolveKeyValues resolves enabled pairs in place.
func (r *Resolver) resolveKeyValues(kvs []model.KeyValue) {
	for i := range kvs {
		if !kvs[i].Enabled {
			continue
		}
		kvs[i].Key = r.Resolve(kvs[i].Key)
		kvs[i].Value = r.Resolve(kvs[i].Value)
	}
}

func (r *Resolver) Clone() *Resolver {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := NewResolver()
	for k, v := range r.variables {
		clone.variables[k] = v
	}
	clone.warnFunc = r.warnFunc
	clone.funcs = r.funcs
	return clone
}
