package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"

	"github.com/abdul-hamid-achik/hitcurl/packages/core/model"
	"github.com/abdul-hamid-achik/hitcurl/packages/stats"
)

// formatValue formats a captured value for display, summarizing large values
func formatValue(v any, maxLen int) string {
	switch val := v.(type) {
	case []any:
		return fmt.Sprintf("[array with %d items]", len(val))
	case map[string]any:
		return fmt.Sprintf("{object with %d keys}", len(val))
	}
	str := fmt.Sprintf("%v", v)
	if len(str) > maxLen {
		return str[:maxLen] + "..."
	}
	return str
}

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

// statusColor picks the color for a status class. Status 0 is a failure.
func statusColor(status int) *color.Color {
	class := model.HttpResponse{Status: status}
	switch {
	case class.IsSuccess():
		return color.New(color.FgGreen, color.Bold)
	case class.IsRedirect():
		return color.New(color.FgCyan, color.Bold)
	case class.IsClientError():
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

func (f *ConsoleFormatter) FormatResult(r *Result) {
	bold := color.New(color.Bold).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	resp := r.Response
	if resp == nil {
		resp = &model.HttpResponse{StatusText: model.StatusTextNoResponse, Body: model.NoResponseBody}
	}

	if r.Name != "" {
		fmt.Fprintf(f.writer, "%s\n", bold(r.Name))
	}
	fmt.Fprintf(f.writer, "%s %s\n", bold(string(r.Method)), r.URL)
	if f.verbose && r.Command != "" {
		fmt.Fprintf(f.writer, "%s\n", faint(r.Command))
	}

	status := statusColor(resp.Status).Sprintf("%d %s", resp.Status, resp.StatusText)
	fmt.Fprintf(f.writer, "%s %s\n", status, cyan(fmt.Sprintf("(%dms, %s)", resp.TimeMs(), formatSize(resp.Size))))

	if resp.Status == 0 {
		red := color.New(color.FgRed).SprintFunc()
		fmt.Fprintf(f.writer, "%s %s\n", red("→"), resp.Body)
		f.formatCaptures(r.Captures)
		fmt.Fprintln(f.writer)
		return
	}

	if f.verbose && len(resp.Headers) > 0 {
		keys := make([]string, 0, len(resp.Headers))
		for k := range resp.Headers {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(f.writer, "%s %s\n", faint(k+":"), resp.Headers[k])
		}
	}

	fmt.Fprintln(f.writer)
	fmt.Fprintln(f.writer, f.formatBody(resp))
	f.formatCaptures(r.Captures)
	fmt.Fprintln(f.writer)
}

func (f *ConsoleFormatter) formatBody(resp *model.HttpResponse) string {
	if resp.Body == model.NoResponseBody || !gjson.Valid(resp.Body) {
		return resp.Body
	}
	if !resp.IsJSON() && !looksLikeJSONDocument(resp.Body) {
		return resp.Body
	}
	formatted := pretty.Pretty([]byte(resp.Body))
	if !color.NoColor {
		formatted = pretty.Color(formatted, nil)
	}
	return strings.TrimRight(string(formatted), "\n")
}

// looksLikeJSONDocument is true for objects and arrays. Bare scalars such as
// "42" stay as text unless the response says it is JSON.
func looksLikeJSONDocument(body string) bool {
	trimmed := strings.TrimSpace(body)
	return strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")
}

func (f *ConsoleFormatter) formatCaptures(captures map[string]any) {
	if len(captures) == 0 {
		return
	}
	names := make([]string, 0, len(captures))
	for name := range captures {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(f.writer, "\nCaptures:\n")
	for _, name := range names {
		fmt.Fprintf(f.writer, "  %s = %s\n", name, formatCapture(captures[name], f.verbose))
	}
}

func formatCapture(v any, verbose bool) string {
	if verbose {
		return fmt.Sprintf("%v", v)
	}
	return formatValue(v, 100)
}

func (f *ConsoleFormatter) FormatSummary(s stats.Summary) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(f.writer, "%s\n", bold("Summary"))
	fmt.Fprintf(f.writer, "  Requests: %d", s.Total)
	if s.Errors > 0 {
		fmt.Fprintf(f.writer, " (%s)", red(fmt.Sprintf("%d without response", s.Errors)))
	}
	fmt.Fprintln(f.writer)

	if codes := s.StatusCodes(); len(codes) > 0 {
		parts := make([]string, 0, len(codes))
		for _, code := range codes {
			parts = append(parts, statusColor(code).Sprintf("%d", code)+fmt.Sprintf("×%d", s.Statuses[code]))
		}
		fmt.Fprintf(f.writer, "  Statuses: %s\n", strings.Join(parts, " "))
	}

	fmt.Fprintf(f.writer, "  Latency:  min %s  mean %s  p50 %s  p95 %s  p99 %s  max %s\n",
		ms(s.Min), ms(s.Mean), ms(s.P50), ms(s.P95), ms(s.P99), ms(s.Max))
	if s.RPS > 0 {
		fmt.Fprintf(f.writer, "  Rate:     %s req/s over %s\n", green(fmt.Sprintf("%.2f", s.RPS)), ms(s.Elapsed))
	}
	fmt.Fprintln(f.writer)
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

// Flush is a no-op; console output is written immediately.
func (f *ConsoleFormatter) Flush() error {
	return nil
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func ms(d time.Duration) string {
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000)
}
