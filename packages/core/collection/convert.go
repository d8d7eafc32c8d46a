package collection

import (
	"fmt"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/hitcurl/packages/core/model"
)

// ToModel converts d into a model request. Only the auth and body
// sub-objects named by their type are read.
func (d *Request) ToModel() (*model.Request, error) {
	method := model.MethodGet
	if d.Method != "" {
		m, ok := model.ParseMethod(d.Method)
		if !ok {
			return nil, fmt.Errorf("unsupported method %q", d.Method)
		}
		method = m
	}

	auth, err := d.Auth.toModel()
	if err != nil {
		return nil, err
	}
	body, err := d.Body.toModel()
	if err != nil {
		return nil, err
	}

	return &model.Request{
		ID:          d.ID,
		Name:        d.Name,
		Method:      method,
		URL:         d.URL,
		QueryParams: toModelKeyValues(d.QueryParams),
		Headers:     toModelKeyValues(d.Headers),
		Auth:        auth,
		Body:        body,
		CreatedAt:   fromMillis(d.CreatedAt),
		UpdatedAt:   fromMillis(d.UpdatedAt),
	}, nil
}

func (a *Auth) toModel() (model.Auth, error) {
	if a == nil {
		return nil, nil
	}
	switch model.AuthType(strings.ToLower(a.Type)) {
	case "", model.AuthNone:
		return nil, nil
	case model.AuthBasic:
		if a.Basic == nil {
			return &model.BasicAuth{}, nil
		}
		return &model.BasicAuth{Username: a.Basic.Username, Password: a.Basic.Password}, nil
	case model.AuthBearer:
		if a.Bearer == nil {
			return &model.BearerAuth{}, nil
		}
		return &model.BearerAuth{Token: a.Bearer.Token}, nil
	case model.AuthAPIKey:
		if a.APIKey == nil {
			return &model.APIKeyAuth{AddTo: model.APIKeyInHeader}, nil
		}
		addTo := model.APIKeyLocation(strings.ToLower(a.APIKey.AddTo))
		if addTo == "" {
			addTo = model.APIKeyInHeader
		}
		if addTo != model.APIKeyInHeader && addTo != model.APIKeyInQuery {
			return nil, fmt.Errorf("unsupported api key location %q", a.APIKey.AddTo)
		}
		return &model.APIKeyAuth{Key: a.APIKey.Key, Value: a.APIKey.Value, AddTo: addTo}, nil
	default:
		return nil, fmt.Errorf("unsupported auth type %q", a.Type)
	}
}

func (b *Body) toModel() (model.Body, error) {
	if b == nil {
		return nil, nil
	}
	switch model.BodyType(strings.ToLower(b.Type)) {
	case "", model.BodyNone:
		return nil, nil
	case model.BodyRaw:
		return &model.RawBody{Text: b.Raw}, nil
	case model.BodyJSON:
		if text, ok := b.JSON.(string); ok {
			return &model.JSONBody{Text: text}, nil
		}
		return &model.JSONBody{Value: b.JSON}, nil
	case model.BodyURLEncoded:
		return &model.URLEncodedBody{Fields: toModelKeyValues(b.FormData)}, nil
	case model.BodyFormData:
		return &model.FormDataBody{Fields: toModelKeyValues(b.FormData)}, nil
	default:
		return nil, fmt.Errorf("unsupported body type %q", b.Type)
	}
}

// FromModel converts req into its document form.
func FromModel(req *model.Request) Request {
	d := Request{
		ID:          req.ID,
		Name:        req.Name,
		Method:      string(req.Method),
		URL:         req.URL,
		QueryParams: fromModelKeyValues(req.QueryParams),
		Headers:     fromModelKeyValues(req.Headers),
		CreatedAt:   toMillis(req.CreatedAt),
		UpdatedAt:   toMillis(req.UpdatedAt),
	}
	if d.Method == "" {
		d.Method = string(model.MethodGet)
	}

	switch a := req.Auth.(type) {
	case *model.BasicAuth:
		d.Auth = &Auth{Type: string(model.AuthBasic), Basic: &BasicAuth{Username: a.Username, Password: a.Password}}
	case *model.BearerAuth:
		d.Auth = &Auth{Type: string(model.AuthBearer), Bearer: &BearerAuth{Token: a.Token}}
	case *model.APIKeyAuth:
		d.Auth = &Auth{Type: string(model.AuthAPIKey), APIKey: &APIKeyAuth{Key: a.Key, Value: a.Value, AddTo: string(a.AddTo)}}
	}

	switch b := req.Body.(type) {
	case *model.RawBody:
		d.Body = &Body{Type: string(model.BodyRaw), Raw: b.Text}
	case *model.JSONBody:
		if b.Value != nil {
			d.Body = &Body{Type: string(model.BodyJSON), JSON: b.Value}
		} else {
			d.Body = &Body{Type: string(model.BodyJSON), JSON: b.Text}
		}
	case *model.URLEncodedBody:
		d.Body = &Body{Type: string(model.BodyURLEncoded), FormData: fromModelKeyValues(b.Fields)}
	case *model.FormDataBody:
		d.Body = &Body{Type: string(model.BodyFormData), FormData: fromModelKeyValues(b.Fields)}
	}

	return d
}

func toModelKeyValues(kvs []KeyValue) []model.KeyValue {
	if len(kvs) == 0 {
		return nil
	}
	out := make([]model.KeyValue, 0, len(kvs))
	for _, kv := range kvs {
		out = append(out, model.KeyValue{Key: kv.Key, Value: kv.Value, Enabled: kv.IsEnabled()})
	}
	return out
}

func fromModelKeyValues(kvs []model.KeyValue) []KeyValue {
	if len(kvs) == 0 {
		return nil
	}
	out := make([]KeyValue, 0, len(kvs))
	for _, kv := range kvs {
		enabled := kv.Enabled
		out = append(out, KeyValue{Key: kv.Key, Value: kv.Value, Enabled: &enabled})
	}
	return out
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}
