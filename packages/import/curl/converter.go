// Package curl imports curl command lines as requests.
package curl

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/hitcurl/packages/core/model"
	"github.com/abdul-hamid-achik/hitcurl/packages/wire"
	"github.com/google/uuid"
)

const (
	contentTypeJSON       = "application/json"
	contentTypeURLEncoded = "application/x-www-form-urlencoded"
)

// Converter converts curl commands to requests.
type Converter struct {
	now   func() time.Time
	newID func() string
}

// Option is a functional option for Converter.
type Option func(*Converter)

// WithClock sets the source of CreatedAt and UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(c *Converter) {
		c.now = now
	}
}

// WithIDGenerator sets the function that assigns request IDs.
func WithIDGenerator(fn func() string) Option {
	return func(c *Converter) {
		c.newID = fn
	}
}

// NewConverter creates a new curl converter.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ParsedCurl is a curl command split into the options that matter for a request.
type ParsedCurl struct {
	// Method is empty when no -X was given.
	Method          string
	URL             string
	Headers         []model.KeyValue
	Data            []string
	Form            []string
	User            string
	Get             bool
	Head            bool
	Insecure        bool
	FollowRedirects bool
}

// flags that take a value but have no effect on the imported request.
var ignoredValueFlags = map[string]bool{
	"-w":                true,
	"--write-out":       true,
	"-o":                true,
	"--output":          true,
	"-m":                true,
	"--max-time":        true,
	"--connect-timeout": true,
	"--max-redirs":      true,
	"-x":                true,
	"--proxy":           true,
	"--retry":           true,
	"--resolve":         true,
	"--cacert":          true,
	"-E":                true,
	"--cert":            true,
	"--key":             true,
	"-T":                true,
	"--upload-file":     true,
	"-c":                true,
	"--cookie-jar":      true,
}

// ConvertCommand converts a single curl command to a request.
func (c *Converter) ConvertCommand(curlCmd string) (*model.Request, error) {
	parsed, err := c.Parse(curlCmd)
	if err != nil {
		return nil, err
	}
	return c.ToRequest(parsed)
}

// ConvertFile converts a file of curl commands.
func (c *Converter) ConvertFile(path string) ([]*model.Request, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return c.ConvertReader(file)
}

// ConvertReader converts curl commands read from r. Lines ending in a
// backslash continue on the next line; blank lines and # comments are skipped.
func (c *Converter) ConvertReader(r io.Reader) ([]*model.Request, error) {
	var commands []string
	var currentCmd strings.Builder
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if currentCmd.Len() == 0 && (line == "" || strings.HasPrefix(line, "#")) {
			continue
		}

		if strings.HasSuffix(line, "\\") {
			currentCmd.WriteString(strings.TrimSuffix(line, "\\"))
			currentCmd.WriteString(" ")
			continue
		}

		currentCmd.WriteString(line)
		commands = append(commands, currentCmd.String())
		currentCmd.Reset()
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read commands: %w", err)
	}

	if currentCmd.Len() > 0 {
		commands = append(commands, currentCmd.String())
	}

	requests := make([]*model.Request, 0, len(commands))
	for i, cmd := range commands {
		req, err := c.ConvertCommand(cmd)
		if err != nil {
			return nil, fmt.Errorf("failed to convert command %d: %w", i+1, err)
		}
		requests = append(requests, req)
	}

	return requests, nil
}

// Parse parses a curl command string into a ParsedCurl struct.
func (c *Converter) Parse(curlCmd string) (*ParsedCurl, error) {
	parsed := &ParsedCurl{}

	tokens, err := tokenize(strings.TrimSpace(curlCmd))
	if err != nil {
		return nil, err
	}
	if len(tokens) > 0 && tokens[0] == "curl" {
		tokens = tokens[1:]
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("no URL specified")
	}

	i := 0
	next := func(flag string) (string, error) {
		if i+1 >= len(tokens) {
			return "", fmt.Errorf("missing value for %s", flag)
		}
		i += 2
		return tokens[i-1], nil
	}

	for i < len(tokens) {
		token := tokens[i]

		switch {
		case token == "-X" || token == "--request":
			v, err := next(token)
			if err != nil {
				return nil, err
			}
			parsed.Method = strings.ToUpper(v)

		case token == "-H" || token == "--header":
			v, err := next(token)
			if err != nil {
				return nil, err
			}
			if key, value, ok := strings.Cut(v, ":"); ok {
				parsed.Headers = append(parsed.Headers, model.KeyValue{
					Key:     strings.TrimSpace(key),
					Value:   strings.TrimSpace(value),
					Enabled: true,
				})
			}

		case token == "-d" || token == "--data" || token == "--data-raw" ||
			token == "--data-binary" || token == "--data-ascii":
			v, err := next(token)
			if err != nil {
				return nil, err
			}
			parsed.Data = append(parsed.Data, v)

		case token == "--data-urlencode":
			v, err := next(token)
			if err != nil {
				return nil, err
			}
			parsed.Data = append(parsed.Data, urlencodeData(v))

		case token == "-F" || token == "--form" || token == "--form-string":
			v, err := next(token)
			if err != nil {
				return nil, err
			}
			parsed.Form = append(parsed.Form, v)

		case token == "-u" || token == "--user":
			v, err := next(token)
			if err != nil {
				return nil, err
			}
			parsed.User = v

		case token == "--url":
			v, err := next(token)
			if err != nil {
				return nil, err
			}
			parsed.URL = v

		case token == "-A" || token == "--user-agent":
			v, err := next(token)
			if err != nil {
				return nil, err
			}
			parsed.Headers = append(parsed.Headers, model.KeyValue{Key: "User-Agent", Value: v, Enabled: true})

		case token == "-e" || token == "--referer":
			v, err := next(token)
			if err != nil {
				return nil, err
			}
			parsed.Headers = append(parsed.Headers, model.KeyValue{Key: "Referer", Value: v, Enabled: true})

		case token == "-b" || token == "--cookie":
			v, err := next(token)
			if err != nil {
				return nil, err
			}
			parsed.Headers = append(parsed.Headers, model.KeyValue{Key: "Cookie", Value: v, Enabled: true})

		case token == "-G" || token == "--get":
			parsed.Get = true
			i++

		case token == "-I" || token == "--head":
			parsed.Head = true
			i++

		case token == "-k" || token == "--insecure":
			parsed.Insecure = true
			i++

		case token == "-L" || token == "--location":
			parsed.FollowRedirects = true
			i++

		case ignoredValueFlags[token]:
			if _, err := next(token); err != nil {
				return nil, err
			}

		case strings.HasPrefix(token, "--"):
			i++

		case strings.HasPrefix(token, "-") && len(token) > 1:
			// Combined short flags such as -sSL.
			if strings.Contains(token, "L") && !strings.ContainsAny(token[1:], "XHdFuAebwoxm") {
				parsed.FollowRedirects = true
			}
			i++

		default:
			if parsed.URL == "" {
				parsed.URL = token
			}
			i++
		}
	}

	if parsed.URL == "" {
		return nil, fmt.Errorf("no URL found in curl command")
	}

	return parsed, nil
}

// ToRequest builds a request from a parsed command. Content-Type headers
// that the body type implies are folded into the body.
func (c *Converter) ToRequest(parsed *ParsedCurl) (*model.Request, error) {
	method, err := parsed.method()
	if err != nil {
		return nil, err
	}

	rawURL := parsed.URL
	data := strings.Join(parsed.Data, "&")
	if parsed.Get && data != "" {
		rawURL += querySeparator(rawURL) + data
		data = ""
	}

	now := c.now()
	req := &model.Request{
		ID:        c.newID(),
		Method:    method,
		CreatedAt: now,
		UpdatedAt: now,
	}
	req.URL, req.QueryParams = splitQuery(rawURL)
	req.Name = generateName(req.URL, string(method))

	if parsed.User != "" {
		username, password, _ := strings.Cut(parsed.User, ":")
		req.Auth = &model.BasicAuth{Username: username, Password: password}
	}

	contentType := -1
	for _, h := range parsed.Headers {
		if strings.EqualFold(h.Key, "Authorization") && req.Auth == nil {
			if token, ok := cutPrefixFold(h.Value, "Bearer "); ok {
				req.Auth = &model.BearerAuth{Token: strings.TrimSpace(token)}
				continue
			}
		}
		if strings.EqualFold(h.Key, "Content-Type") {
			contentType = len(req.Headers)
		}
		req.Headers = append(req.Headers, h)
	}

	switch {
	case len(parsed.Form) > 0:
		fields := make([]model.KeyValue, 0, len(parsed.Form))
		for _, f := range parsed.Form {
			name, value, _ := strings.Cut(f, "=")
			fields = append(fields, model.KeyValue{Key: name, Value: value, Enabled: true})
		}
		req.Body = &model.FormDataBody{Fields: fields}
	case data != "":
		ct := ""
		if contentType >= 0 {
			ct = strings.ToLower(strings.TrimSpace(req.Headers[contentType].Value))
		}
		folded := true
		switch ct {
		case contentTypeJSON:
			req.Body = &model.JSONBody{Text: data}
		case contentTypeURLEncoded:
			if fields, ok := decodePairs(data); ok {
				req.Body = &model.URLEncodedBody{Fields: fields}
			} else {
				req.Body = &model.RawBody{Text: data}
				folded = false
			}
		default:
			req.Body = &model.RawBody{Text: data}
			folded = false
		}
		if folded {
			req.Headers = append(req.Headers[:contentType], req.Headers[contentType+1:]...)
		}
	}

	return req, nil
}

func (p *ParsedCurl) method() (model.Method, error) {
	switch {
	case p.Method != "":
		m, ok := model.ParseMethod(p.Method)
		if !ok {
			return "", fmt.Errorf("unsupported method %q", p.Method)
		}
		return m, nil
	case p.Head:
		return model.MethodHead, nil
	case !p.Get && (len(p.Data) > 0 || len(p.Form) > 0):
		return model.MethodPost, nil
	default:
		return model.MethodGet, nil
	}
}

// splitQuery moves the query string of raw into key/value pairs when every
// pair re-encodes to exactly the same text. Otherwise raw is kept whole.
func splitQuery(raw string) (string, []model.KeyValue) {
	base, query, found := strings.Cut(raw, "?")
	if !found || query == "" || strings.Contains(query, "#") {
		return raw, nil
	}
	params, ok := decodePairs(query)
	if !ok {
		return raw, nil
	}
	return base, params
}

func decodePairs(s string) ([]model.KeyValue, bool) {
	var pairs []model.KeyValue
	for _, part := range strings.Split(s, "&") {
		k, v, ok := strings.Cut(part, "=")
		if !ok || k == "" {
			return nil, false
		}
		key, err := url.QueryUnescape(k)
		if err != nil || wire.EncodeComponent(key) != k {
			return nil, false
		}
		value, err := url.QueryUnescape(v)
		if err != nil || wire.EncodeComponent(value) != v {
			return nil, false
		}
		pairs = append(pairs, model.KeyValue{Key: key, Value: value, Enabled: true})
	}
	return pairs, true
}

// urlencodeData applies --data-urlencode rules: "content", "=content" and
// "name=content" encode the content part only.
func urlencodeData(v string) string {
	name, content, ok := strings.Cut(v, "=")
	switch {
	case !ok:
		return wire.EncodeComponent(v)
	case name == "":
		return wire.EncodeComponent(content)
	default:
		return name + "=" + wire.EncodeComponent(content)
	}
}

func querySeparator(u string) string {
	if strings.Contains(u, "?") {
		return "&"
	}
	return "?"
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return s, false
	}
	return s[len(prefix):], true
}

// tokenize splits a command line into words the way a POSIX shell would:
// single quotes are literal, double quotes allow backslash escapes and a
// backslash-newline outside quotes continues the line.
func tokenize(cmd string) ([]string, error) {
	var tokens []string
	var current strings.Builder
	inToken := false
	inSingleQuote := false
	inDoubleQuote := false
	escaped := false

	for _, r := range cmd {
		if escaped {
			escaped = false
			if r == '\n' {
				continue
			}
			if inDoubleQuote && !strings.ContainsRune("\"\\$`", r) {
				current.WriteRune('\\')
			}
			current.WriteRune(r)
			inToken = true
			continue
		}

		switch {
		case inSingleQuote:
			if r == '\'' {
				inSingleQuote = false
			} else {
				current.WriteRune(r)
			}
		case r == '\\':
			escaped = true
		case inDoubleQuote:
			if r == '"' {
				inDoubleQuote = false
			} else {
				current.WriteRune(r)
			}
		case r == '\'':
			inSingleQuote = true
			inToken = true
		case r == '"':
			inDoubleQuote = true
			inToken = true
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			if inToken {
				tokens = append(tokens, current.String())
				current.Reset()
				inToken = false
			}
		default:
			current.WriteRune(r)
			inToken = true
		}
	}

	if inSingleQuote || inDoubleQuote {
		return nil, fmt.Errorf("unterminated quote in curl command")
	}
	if inToken {
		tokens = append(tokens, current.String())
	}

	return tokens, nil
}

var urlPathPattern = regexp.MustCompile(`^(?:[a-zA-Z][a-zA-Z0-9+.-]*://)?[^/?#]*(/[^?#]*)?`)

// generateName generates a request name from the URL and method.
func generateName(rawURL, method string) string {
	path := "/"
	if m := urlPathPattern.FindStringSubmatch(rawURL); len(m) > 1 && m[1] != "" {
		path = m[1]
	}

	path = strings.Trim(path, "/")
	if path == "" {
		path = "root"
	}

	return strings.ToLower(method) + "_" + sanitizeName(path)
}

var nonIdentPattern = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// sanitizeName sanitizes a name for use as an identifier.
func sanitizeName(name string) string {
	result := nonIdentPattern.ReplaceAllString(name, "_")
	return strings.Trim(result, "_")
}
