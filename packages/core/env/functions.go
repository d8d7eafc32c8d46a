package env

import (
	"encoding/base64"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/hitcurl/packages/wire"
	"github.com/google/uuid"
)

// Func is a builtin callable as {{name(args)}}.
type Func func(args []string) string

type Registry struct {
	funcs map[string]Func
	now   func() time.Time
}

func NewRegistry() *Registry {
	r := &Registry{
		funcs: make(map[string]Func),
		now:   time.Now,
	}
	r.registerDefaults()
	return r
}

func (r *Registry) registerDefaults() {
	r.funcs["uuid"] = func([]string) string { return uuid.New().String() }
	r.funcs["now"] = func([]string) string { return r.now().UTC().Format(time.RFC3339) }
	r.funcs["timestamp"] = func([]string) string { return strconv.FormatInt(r.now().Unix(), 10) }
	r.funcs["timestampMs"] = func([]string) string { return strconv.FormatInt(r.now().UnixMilli(), 10) }
	r.funcs["base64"] = funcBase64
	r.funcs["urlEncode"] = funcURLEncode
}

// SetClock overrides the time source of now(), timestamp() and timestampMs().
func (r *Registry) SetClock(now func() time.Time) {
	r.now = now
}

func (r *Registry) Register(name string, fn Func) {
	r.funcs[name] = fn
}

// Names returns the registered function names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	return names
}

var funcCallPattern = regexp.MustCompile(`^(\w+)\((.*)\)$`)

func (r *Registry) Call(expr string) (string, bool) {
	matches := funcCallPattern.FindStringSubmatch(expr)
	if matches == nil {
		return "", false
	}

	fn, ok := r.funcs[matches[1]]
	if !ok {
		return "", false
	}

	var args []string
	if matches[2] != "" {
		args = parseArgs(matches[2])
	}

	return fn(args), true
}

func parseArgs(s string) []string {
	var args []string
	var current strings.Builder
	inQuote := false
	quoteChar := byte(0)

	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case !inQuote && (ch == '"' || ch == '\''):
			inQuote = true
			quoteChar = ch
		case inQuote && ch == quoteChar:
			inQuote = false
			quoteChar = 0
		case !inQuote && ch == ',':
			args = append(args, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}

	if current.Len() > 0 {
		args = append(args, strings.TrimSpace(current.String()))
	}

	return args
}

func funcBase64(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return base64.StdEncoding.EncodeToString([]byte(args[0]))
}

func funcURLEncode(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return wire.EncodeComponent(args[0])
}
