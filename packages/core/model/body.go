package model

import (
	"encoding/json"
	"strings"
)

// BodyType names a Body variant.
type BodyType string

const (
	BodyNone       BodyType = "none"
	BodyRaw        BodyType = "raw"
	BodyJSON       BodyType = "json"
	BodyURLEncoded BodyType = "x-www-form-urlencoded"
	BodyFormData   BodyType = "form-data"
)

// Body is one of *RawBody, *JSONBody, *URLEncodedBody or *FormDataBody.
// nil means no body.
type Body interface {
	Type() BodyType
	isBody()
}

type RawBody struct {
	Text string
}

// JSONBody carries either pre-serialized Text or a structured Value.
// Value takes precedence when both are set.
type JSONBody struct {
	Text  string
	Value any
}

type URLEncodedBody struct {
	Fields []KeyValue
}

type FormDataBody struct {
	Fields []KeyValue
}

func (*RawBody) Type() BodyType        { return BodyRaw }
func (*JSONBody) Type() BodyType       { return BodyJSON }
func (*URLEncodedBody) Type() BodyType { return BodyURLEncoded }
func (*FormDataBody) Type() BodyType   { return BodyFormData }

func (*RawBody) isBody()        {}
func (*JSONBody) isBody()       {}
func (*URLEncodedBody) isBody() {}
func (*FormDataBody) isBody()   {}

// Serialize returns the JSON text of the body. A Value that cannot be
// marshaled yields an empty string.
func (b *JSONBody) Serialize() string {
	if b.Value != nil {
		data, err := json.Marshal(b.Value)
		if err != nil {
			return ""
		}
		return string(data)
	}
	return b.Text
}

// IsEmpty reports whether the serialized body is blank.
func (b *JSONBody) IsEmpty() bool {
	return strings.TrimSpace(b.Serialize()) == ""
}

// BodyTypeOf returns the variant name of b, BodyNone for nil.
func BodyTypeOf(b Body) BodyType {
	if b == nil {
		return BodyNone
	}
	return b.Type()
}
