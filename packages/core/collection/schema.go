package collection

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const keyValueSchema = `{
  "type": "object",
  "required": ["key"],
  "properties": {
    "key": {"type": "string"},
    "value": {"type": "string"},
    "enabled": {"type": "boolean"}
  }
}`

// RequestSchema is the JSON schema of a request document.
var RequestSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "hitcurl request",
  "type": "object",
  "required": ["url"],
  "definitions": {
    "keyValue": ` + keyValueSchema + `,
    "keyValues": {"type": "array", "items": {"$ref": "#/definitions/keyValue"}}
  },
  "properties": {
    "id": {"type": "string"},
    "name": {"type": "string"},
    "method": {"type": "string", "pattern": "^(?i)(get|post|put|patch|delete|head|options)$"},
    "url": {"type": "string", "minLength": 1},
    "queryParams": {"$ref": "#/definitions/keyValues"},
    "headers": {"$ref": "#/definitions/keyValues"},
    "auth": {
      "type": "object",
      "required": ["type"],
      "properties": {
        "type": {"enum": ["none", "basic", "bearer", "api-key"]},
        "basic": {
          "type": "object",
          "properties": {"username": {"type": "string"}, "password": {"type": "string"}}
        },
        "bearer": {
          "type": "object",
          "properties": {"token": {"type": "string"}}
        },
        "apiKey": {
          "type": "object",
          "properties": {
            "key": {"type": "string"},
            "value": {"type": "string"},
            "addTo": {"enum": ["header", "query"]}
          }
        }
      }
    },
    "body": {
      "type": "object",
      "required": ["type"],
      "properties": {
        "type": {"enum": ["none", "raw", "json", "x-www-form-urlencoded", "form-data"]},
        "raw": {"type": "string"},
        "formData": {"$ref": "#/definitions/keyValues"}
      }
    },
    "createdAt": {"type": "integer"},
    "updatedAt": {"type": "integer"}
  }
}`

var requestSchemaLoader = gojsonschema.NewStringLoader(RequestSchema)

// ValidationError lists every schema violation of a document.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("schema validation failed: %s", strings.Join(e.Problems, "; "))
}

// ValidateValue validates a decoded document (from JSON or YAML) against
// RequestSchema.
func ValidateValue(doc any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	result, err := gojsonschema.Validate(requestSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}
	return &ValidationError{Problems: problems}
}
