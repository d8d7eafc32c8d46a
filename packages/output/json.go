package output

import (
	"encoding/json"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/abdul-hamid-achik/hitcurl/packages/core/model"
	"github.com/abdul-hamid-achik/hitcurl/packages/stats"
)

// JSONOutput represents the complete JSON output structure
type JSONOutput struct {
	Results []JSONResult `json:"results"`
	Summary *JSONSummary `json:"summary,omitempty"`
	Errors  []string     `json:"errors,omitempty"`
	Time    string       `json:"time"`
}

// JSONResult represents one executed request
type JSONResult struct {
	Name     string              `json:"name,omitempty"`
	Method   string              `json:"method"`
	URL      string              `json:"url"`
	Command  string              `json:"command,omitempty"`
	Response *model.HttpResponse `json:"response"`
	Captures map[string]any      `json:"captures,omitempty"`
}

// JSONSummary represents the latency summary of repeated sends, in milliseconds
type JSONSummary struct {
	Total    int64            `json:"total"`
	Errors   int64            `json:"errors"`
	Statuses map[string]int64 `json:"statuses"`
	Min      float64          `json:"min"`
	Mean     float64          `json:"mean"`
	P50      float64          `json:"p50"`
	P95      float64          `json:"p95"`
	P99      float64          `json:"p99"`
	Max      float64          `json:"max"`
	Elapsed  float64          `json:"elapsed"`
	RPS      float64          `json:"rps"`
}

// JSONFormatter formats results as JSON
type JSONFormatter struct {
	writer  io.Writer
	results []JSONResult
	summary *JSONSummary
	errors  []string
	now     func() time.Time
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer:  os.Stdout,
		results: make([]JSONResult, 0),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func JSONWithClock(now func() time.Time) JSONOption {
	return func(f *JSONFormatter) {
		f.now = now
	}
}

func (f *JSONFormatter) FormatResult(r *Result) {
	f.results = append(f.results, JSONResult{
		Name:     r.Name,
		Method:   string(r.Method),
		URL:      r.URL,
		Command:  r.Command,
		Response: r.Response,
		Captures: r.Captures,
	})
}

func (f *JSONFormatter) FormatSummary(s stats.Summary) {
	statuses := make(map[string]int64, len(s.Statuses))
	for code, n := range s.Statuses {
		statuses[strconv.Itoa(code)] = n
	}
	f.summary = &JSONSummary{
		Total:    s.Total,
		Errors:   s.Errors,
		Statuses: statuses,
		Min:      millis(s.Min),
		Mean:     millis(s.Mean),
		P50:      millis(s.P50),
		P95:      millis(s.P95),
		P99:      millis(s.P99),
		Max:      millis(s.Max),
		Elapsed:  millis(s.Elapsed),
		RPS:      s.RPS,
	}
}

// FormatError records err; errors are written with the results on Flush.
func (f *JSONFormatter) FormatError(err error) {
	f.errors = append(f.errors, err.Error())
}

// Flush writes the accumulated JSON output and resets the formatter.
func (f *JSONFormatter) Flush() error {
	if len(f.results) == 0 && f.summary == nil && len(f.errors) == 0 {
		return nil
	}

	out := JSONOutput{
		Results: f.results,
		Summary: f.summary,
		Errors:  f.errors,
		Time:    f.now().Format(time.RFC3339),
	}

	f.results = make([]JSONResult, 0)
	f.summary = nil
	f.errors = nil

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
