// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package format decodes configuration documents into nested maps.
package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/z5labs/container/internal/try"

	"github.com/pelletier/go-toml/v2"
)

// Format identifies the syntax of a configuration document.
type Format string

const (
	YAML Format = "yaml"
	JSON Format = "json"
	TOML Format = "toml"
)

// UnsupportedFormatError occurs when the format of a document
// can not be determined or is not supported.
type UnsupportedFormatError struct {
	Name string
}

// Error implements the [builtin.error] interface.
func (e UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported document format: %s", e.Name)
}

// InvalidDocumentError occurs if a document can not be parsed.
type InvalidDocumentError struct {
	Format Format
	Cause  error
}

// Error implements the [builtin.error] interface.
func (e InvalidDocumentError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Format, e.Cause)
}

// Unwrap implements the implicit interface used by [errors.Is] and [errors.As].
func (e InvalidDocumentError) Unwrap() error {
	return e.Cause
}

// Parse returns the Format with the given name, ignoring case
// and an optional leading dot e.g. ".yml".
func Parse(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "yaml", "yml":
		return YAML, nil
	case "json":
		return JSON, nil
	case "toml":
		return TOML, nil
	default:
		return "", UnsupportedFormatError{Name: name}
	}
}

// FromPath determines the Format from the extension of p.
func FromPath(p string) (Format, error) {
	ext := path.Ext(p)
	if ext == "" {
		return "", UnsupportedFormatError{Name: p}
	}
	f, err := Parse(ext)
	if err != nil {
		return "", UnsupportedFormatError{Name: p}
	}
	return f, nil
}

// FromContentType determines the Format from a HTTP Content-Type header value.
func FromContentType(ct string) (Format, error) {
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return "", UnsupportedFormatError{Name: ct}
	}
	switch mediaType {
	case "application/json":
		return JSON, nil
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return YAML, nil
	case "application/toml":
		return TOML, nil
	default:
		return "", UnsupportedFormatError{Name: ct}
	}
}

// Decode reads the whole document from r and decodes it. If r
// is an io.Closer it is closed. An empty document results in an
// empty map.
func Decode(f Format, r io.Reader) (m map[string]any, err error) {
	defer try.Close(&err, r)

	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return DecodeBytes(f, b)
}

// DecodeBytes decodes the document b.
func DecodeBytes(f Format, b []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return map[string]any{}, nil
	}

	var (
		m   map[string]any
		err error
	)
	switch f {
	case YAML:
		m, err = decodeYaml(b)
	case JSON:
		m = make(map[string]any)
		err = json.Unmarshal(b, &m)
	case TOML:
		m = make(map[string]any)
		err = toml.Unmarshal(b, &m)
	default:
		return nil, UnsupportedFormatError{Name: string(f)}
	}
	if err != nil {
		return nil, InvalidDocumentError{Format: f, Cause: err}
	}
	return m, nil
}
