// Package interpreter parses raw transport output into a model.HttpResponse.
//
// The output is expected in curl's "-i" layout: one header block per hop,
// a blank line, the body, and the instrumentation trailer written by the
// compiler's markers. Interpret never fails; transport errors become
// responses with Status 0 and a classified Failure.
package interpreter

import (
	"math"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/hitcurl/packages/core/model"
	"github.com/abdul-hamid-achik/hitcurl/packages/wire"
)

var (
	statusLinePattern = regexp.MustCompile(`^HTTP/[\d.]+ (\d{3})(?: +(.*))?$`)
	headerLinePattern = regexp.MustCompile(`^([^:]+):\s*(.+)$`)
)

type Interpreter struct {
	markers wire.Markers
	now     func() time.Time

	timePattern  *regexp.Regexp
	sizePattern  *regexp.Regexp
	codePattern  *regexp.Regexp
	stripPattern *regexp.Regexp
}

type Option func(*Interpreter)

// WithMarkers sets the markers to look for. They must match the ones the
// invocation was compiled with.
func WithMarkers(m wire.Markers) Option {
	return func(i *Interpreter) {
		i.markers = m
	}
}

// WithClock overrides the source of response timestamps.
func WithClock(now func() time.Time) Option {
	return func(i *Interpreter) {
		i.now = now
	}
}

func New(opts ...Option) *Interpreter {
	i := &Interpreter{
		markers: wire.DefaultMarkers,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	i.markers = i.markers.OrDefault()

	t := regexp.QuoteMeta(i.markers.Time)
	s := regexp.QuoteMeta(i.markers.Size)
	c := regexp.QuoteMeta(i.markers.Code)
	i.timePattern = regexp.MustCompile(t + `([0-9.]+)`)
	i.sizePattern = regexp.MustCompile(s + `([0-9]+)`)
	i.codePattern = regexp.MustCompile(c + `([0-9]+)`)
	i.stripPattern = regexp.MustCompile(`(?:` + t + `[0-9.]+|` + s + `[0-9]+|` + c + `[0-9]+)\n?`)
	return i
}

var defaultInterpreter = New()

// Interpret interprets output with the default markers.
func Interpret(output, errText string, failed bool, elapsed time.Duration) *model.HttpResponse {
	return defaultInterpreter.Interpret(output, errText, failed, elapsed)
}

// Interpret builds the response for one transport run. output is the
// combined stdout, errText the transport's error text, failed whether the
// transport reported failure and elapsed the wall-clock time measured by
// the caller.
func (i *Interpreter) Interpret(output, errText string, failed bool, elapsed time.Duration) *model.HttpResponse {
	// curl writes the trailer even when the transfer never started.
	if strings.Trim(i.stripPattern.ReplaceAllString(output, ""), "\r\n") == "" {
		return i.transportError(errText, elapsed)
	}

	text := strings.ReplaceAll(output, "\r\n", "\n")
	headerSection, body := splitSections(text)
	headerSection = lastHop(headerSection)

	body = i.stripPattern.ReplaceAllString(body, "")
	body = strings.TrimSpace(body)

	lines := strings.Split(headerSection, "\n")
	parsedCode, statusText, parsed := parseStatusLine(lines[0])

	status := 0
	if code, ok := matchInt(i.codePattern, text); ok {
		status = int(code)
	}
	if status == 0 && parsed {
		status = parsedCode
	}

	resp := &model.HttpResponse{
		Status:     status,
		StatusText: statusText,
		Headers:    parseHeaders(lines[1:]),
		Body:       body,
		Time:       elapsed,
		Size:       int64(len(body)),
		Timestamp:  i.now(),
	}

	if seconds, ok := matchFloat(i.timePattern, text); ok {
		resp.Time = secondsToDuration(seconds)
	}
	if size, ok := matchInt(i.sizePattern, text); ok {
		resp.Size = size
	}
	if resp.Body == "" {
		resp.Body = model.NoResponseBody
	}
	if resp.Status == 0 {
		resp.StatusText = model.StatusTextNoResponse
		resp.Failure = model.FailureUnparseable
		if failed && strings.TrimSpace(errText) != "" {
			resp.Failure, _ = Classify(errText)
		}
	}

	return resp
}

func (i *Interpreter) transportError(errText string, elapsed time.Duration) *model.HttpResponse {
	kind, message := Classify(errText)
	return &model.HttpResponse{
		Status:     0,
		StatusText: model.StatusTextError,
		Headers:    map[string]string{},
		Body:       message,
		Time:       elapsed,
		Size:       0,
		Timestamp:  i.now(),
		Failure:    kind,
	}
}

// splitSections splits text on the first blank line. Header blocks that
// directly follow it (redirect hops, 1xx interim responses) are consumed so
// the returned header section is the last one before the body.
func splitSections(text string) (string, string) {
	header, rest, found := strings.Cut(text, "\n\n")
	if !found {
		return text, ""
	}
	for isHeaderBlock(rest) {
		next, remaining, ok := strings.Cut(rest, "\n\n")
		if !ok {
			header, rest = rest, ""
			break
		}
		header, rest = next, remaining
	}
	return header, rest
}

// isHeaderBlock reports whether text starts with a status line followed by
// a header line or the blank line ending the block. A body that merely
// begins with a status line is not a hop.
func isHeaderBlock(text string) bool {
	lines := strings.SplitN(text, "\n", 3)
	if len(lines) < 2 || !statusLinePattern.MatchString(strings.TrimSpace(lines[0])) {
		return false
	}
	next := lines[1]
	return next == "" || headerLinePattern.MatchString(next)
}

// lastHop drops everything before the last status line of a header section.
func lastHop(section string) string {
	lines := strings.Split(section, "\n")
	last := -1
	for idx, line := range lines {
		if strings.HasPrefix(line, "HTTP/") {
			last = idx
		}
	}
	if last <= 0 {
		return section
	}
	return strings.Join(lines[last:], "\n")
}

func parseStatusLine(line string) (int, string, bool) {
	m := statusLinePattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return 0, model.StatusTextUnknown, false
	}
	code, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, model.StatusTextUnknown, false
	}
	text := strings.TrimSpace(m[2])
	if text == "" {
		text = http.StatusText(code)
	}
	if text == "" {
		text = model.StatusTextUnknown
	}
	return code, text, true
}

// parseHeaders lower-cases names; a repeated header keeps its last value.
func parseHeaders(lines []string) map[string]string {
	headers := make(map[string]string)
	for _, line := range lines {
		m := headerLinePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		headers[strings.ToLower(strings.TrimSpace(m[1]))] = strings.TrimSpace(m[2])
	}
	return headers
}

// lastMatch returns the capture of the last occurrence of re in text. The
// trailer is always written after the body, so the last occurrence wins.
func lastMatch(re *regexp.Regexp, text string) (string, bool) {
	all := re.FindAllStringSubmatch(text, -1)
	if len(all) == 0 {
		return "", false
	}
	return all[len(all)-1][1], true
}

func matchInt(re *regexp.Regexp, text string) (int64, bool) {
	raw, ok := lastMatch(re, text)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func matchFloat(re *regexp.Regexp, text string) (float64, bool) {
	raw, ok := lastMatch(re, text)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(math.Round(seconds*1e6)) * time.Microsecond
}
