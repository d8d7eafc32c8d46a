package capture

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/abdul-hamid-achik/hitcurl/packages/core/model"
)

const headerPrefix = "header."

type Extractor struct {
	response *model.HttpResponse
	bodyJSON gjson.Result
	isJSON   bool
}

func NewExtractor(resp *model.HttpResponse) *Extractor {
	e := &Extractor{
		response: resp,
	}
	if resp != nil && gjson.Valid(resp.Body) {
		e.bodyJSON = gjson.Parse(resp.Body)
		e.isJSON = true
	}
	return e
}

// Extract returns the value at path and whether it exists.
func (e *Extractor) Extract(path string) (any, bool) {
	if e.response == nil {
		return nil, false
	}
	path = strings.TrimSpace(path)

	switch {
	case path == "status":
		return e.response.Status, true
	case path == "statusText":
		return e.response.StatusText, true
	case path == "time":
		return e.response.TimeMs(), true
	case path == "size":
		return e.response.Size, true
	case strings.HasPrefix(path, headerPrefix):
		return e.extractFromHeader(strings.TrimPrefix(path, headerPrefix))
	case path == "" || path == "body":
		if e.isJSON {
			return e.bodyJSON.Value(), true
		}
		return e.response.Body, true
	default:
		return e.extractFromBody(path)
	}
}

func (e *Extractor) extractFromBody(path string) (any, bool) {
	if !e.isJSON {
		return nil, false
	}
	result := e.bodyJSON.Get(path)
	if !result.Exists() {
		return nil, false
	}
	return result.Value(), true
}

func (e *Extractor) extractFromHeader(name string) (any, bool) {
	value, ok := e.response.Headers[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return value, true
}

// Expr is a named extraction.
type Expr struct {
	Name string
	Path string
}

// ParseExpr splits "name=path". Without a name the path doubles as the name.
func ParseExpr(s string) (Expr, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Expr{}, fmt.Errorf("empty extraction expression")
	}
	if name, path, ok := strings.Cut(s, "="); ok {
		name, path = strings.TrimSpace(name), strings.TrimSpace(path)
		if name == "" || path == "" {
			return Expr{}, fmt.Errorf("invalid extraction expression %q", s)
		}
		return Expr{Name: name, Path: path}, nil
	}
	return Expr{Name: s, Path: s}, nil
}

// ExtractAll evaluates exprs against resp. Missing paths are omitted.
func ExtractAll(resp *model.HttpResponse, exprs []Expr) map[string]any {
	extractor := NewExtractor(resp)
	results := make(map[string]any)

	for _, x := range exprs {
		if value, ok := extractor.Extract(x.Path); ok {
			results[x.Name] = value
		}
	}

	return results
}

// Missing returns the names of exprs that have no value in results.
func Missing(exprs []Expr, results map[string]any) []string {
	var missing []string
	for _, x := range exprs {
		if _, ok := results[x.Name]; !ok {
			missing = append(missing, x.Name)
		}
	}
	return missing
}

// String renders an extracted value for use as a variable. Objects and arrays
// become compact JSON.
func String(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprint(value)
	}
	return string(data)
}
