package compiler

import (
	"strings"

	"github.com/abdul-hamid-achik/hitcurl/packages/core/model"
	"github.com/abdul-hamid-achik/hitcurl/packages/wire"
)

// Binary is the transport program an Invocation's arguments are meant for.
const Binary = "curl"

type Header struct {
	Name  string
	Value string
}

// Credentials are sent as a user:password pair, never as a header.
type Credentials struct {
	Username string
	Password string
}

// FormField is one multipart field. Boundaries are left to the transport.
type FormField struct {
	Name  string
	Value string
}

// Invocation is a fully resolved, ready to execute request.
type Invocation struct {
	// Method is empty when the transport default (GET) applies.
	Method  model.Method
	URL     string
	Headers []Header
	User    *Credentials
	// Payload is nil when no request body is sent.
	Payload *string
	Form    []FormField
	Markers wire.Markers
}

// EffectiveMethod returns the method the transport will use.
func (inv *Invocation) EffectiveMethod() model.Method {
	if inv.Method == "" {
		if inv.Payload != nil || len(inv.Form) > 0 {
			return model.MethodPost
		}
		return model.MethodGet
	}
	return inv.Method
}

// Header returns the value of the last header named name.
func (inv *Invocation) Header(name string) (string, bool) {
	value, found := "", false
	for _, h := range inv.Headers {
		if strings.EqualFold(h.Name, name) {
			value, found = h.Value, true
		}
	}
	return value, found
}

// Args returns the curl argument list, without the program name.
func (inv *Invocation) Args() []string {
	return inv.args(false)
}

func (inv *Invocation) args(redact bool) []string {
	args := []string{"-i", "-s", "-S"}

	// -X HEAD leaves curl waiting for the body Content-Length announces.
	head := inv.Method == model.MethodHead
	switch {
	case head:
		args = append(args, "--head")
	case inv.Method != "":
		args = append(args, "-X", string(inv.Method))
	}

	for _, h := range inv.Headers {
		value := h.Value
		if redact && strings.EqualFold(h.Name, "Authorization") {
			value = redacted
		}
		args = append(args, "-H", h.Name+": "+value)
	}

	if inv.User != nil {
		password := inv.User.Password
		if redact {
			password = redacted
		}
		args = append(args, "-u", inv.User.Username+":"+password)
	}

	// curl refuses a request body alongside --head.
	if inv.Payload != nil && !head {
		args = append(args, "--data-raw", *inv.Payload)
	}

	if !head {
		for _, f := range inv.Form {
			args = append(args, "--form-string", f.Name+"="+f.Value)
		}
	}

	markers := inv.Markers.OrDefault()
	args = append(args,
		"-w", markers.WriteOut(),
		"--fail-with-body",
		"--url", inv.URL,
	)
	return args
}

const redacted = "****"

// String renders the invocation as a shell command line with every value quoted.
func (inv *Invocation) String() string {
	return render(inv.args(false))
}

// Redacted is String with the password and Authorization header masked.
func (inv *Invocation) Redacted() string {
	return render(inv.args(true))
}

func render(args []string) string {
	var sb strings.Builder
	sb.WriteString(Binary)
	for _, arg := range args {
		sb.WriteByte(' ')
		sb.WriteString(wire.ShellQuote(arg))
	}
	return sb.String()
}
