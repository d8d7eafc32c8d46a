package output

import (
	"fmt"
	"io"

	"github.com/abdul-hamid-achik/hitcurl/packages/core/model"
	"github.com/abdul-hamid-achik/hitcurl/packages/stats"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Result is one executed request.
type Result struct {
	Name     string
	Method   model.Method
	URL      string
	Command  string
	Response *model.HttpResponse
	Captures map[string]any
}

type Formatter interface {
	FormatResult(r *Result)
	FormatSummary(s stats.Summary)
	FormatError(err error)
	Flush() error
}

// New returns the formatter registered under format.
func New(format string, w io.Writer, verbose, noColor bool) (Formatter, error) {
	switch format {
	case "", FormatConsole:
		return NewConsoleFormatter(WithWriter(w), WithVerbose(verbose), WithNoColor(noColor)), nil
	case FormatJSON:
		return NewJSONFormatter(JSONWithWriter(w)), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want %s or %s)", format, FormatConsole, FormatJSON)
	}
}
