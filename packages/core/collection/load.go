package collection

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/abdul-hamid-achik/hitcurl/packages/core/model"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrEmptyDocument is returned for a file with no content.
var ErrEmptyDocument = errors.New("empty document")

// DetectFormat picks the format from the file extension, falling back to
// sniffing the first non-blank byte.
func DetectFormat(path string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return FormatJSON
	}
	return FormatYAML
}

// Parse validates data against RequestSchema and decodes it.
func Parse(data []byte, format Format) (*Request, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyDocument
	}

	var raw any
	if err := unmarshal(data, format, &raw); err != nil {
		return nil, err
	}
	if err := ValidateValue(raw); err != nil {
		return nil, err
	}

	var doc Request
	if err := unmarshal(data, format, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// LoadFile reads, validates and decodes the request document at path.
func LoadFile(path string) (*Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(data, DetectFormat(path, data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// LoadRequest loads the document at path and converts it to the model.
func LoadRequest(path string) (*model.Request, error) {
	doc, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	req, err := doc.ToModel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return req, nil
}

// Marshal encodes doc in format.
func Marshal(doc any, format Format) ([]byte, error) {
	if format == FormatYAML {
		return yaml.Marshal(doc)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// SaveFile writes doc to path in the format its extension names.
func SaveFile(path string, doc any) error {
	data, err := Marshal(doc, DetectFormat(path, nil))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func unmarshal(data []byte, format Format, v any) error {
	var err error
	if format == FormatYAML {
		err = yaml.Unmarshal(data, v)
	} else {
		err = json.Unmarshal(data, v)
	}
	if err != nil {
		return fmt.Errorf("parse %s: %w", format, err)
	}
	return nil
}
