// Package patch overrides fields of a JSON request body by path before the
// request is compiled.
package patch

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/abdul-hamid-achik/hitcurl/packages/core/model"
)

// Set assigns Value at Path. Path uses gjson/sjson dot syntax.
type Set struct {
	Path  string
	Value string
}

// ParseSet splits "path=value". The value may contain '='.
func ParseSet(s string) (Set, error) {
	path, value, ok := strings.Cut(s, "=")
	path = strings.TrimSpace(path)
	if !ok || path == "" {
		return Set{}, fmt.Errorf("invalid body field %q (use path=value)", s)
	}
	return Set{Path: path, Value: value}, nil
}

// Apply returns a copy of req with every set applied to its JSON body. A
// request without a body gets a JSON object body. Values that are valid JSON
// (numbers, booleans, null, objects, arrays) are set raw, anything else as a
// string.
func Apply(req *model.Request, sets []Set) (*model.Request, error) {
	if req == nil || len(sets) == 0 {
		return req, nil
	}

	text := "{}"
	switch b := req.Body.(type) {
	case nil:
	case *model.JSONBody:
		if !b.IsEmpty() {
			text = b.Serialize()
		}
	default:
		return nil, fmt.Errorf("cannot set body fields on a %s body", b.Type())
	}

	if !gjson.Valid(text) {
		return nil, fmt.Errorf("cannot set body fields: body is not valid JSON")
	}

	var err error
	for _, s := range sets {
		if gjson.Valid(s.Value) {
			text, err = sjson.SetRaw(text, s.Path, s.Value)
		} else {
			text, err = sjson.Set(text, s.Path, s.Value)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to set %s: %w", s.Path, err)
		}
	}

	out := req.Clone()
	out.Body = &model.JSONBody{Text: text}
	return out, nil
}
