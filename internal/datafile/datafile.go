package datafile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"datafile-test/internal/suggest"
)

//go:generate go tool stringer -type=Format -linecomment -output=format_string.go

// Format identifies the serialization format of a data file.
type Format int

const (
	FormatUnknown Format = iota // unknown
	FormatJSON                  // json
	FormatYAML                  // yaml
)

var (
	// ErrUnsupportedExtension is returned when a file extension maps to no known format.
	ErrUnsupportedExtension = errors.New("unsupported data file extension")
	// ErrNotSequence is returned when a document decodes to something other than a sequence.
	ErrNotSequence = errors.New("top-level value is not a sequence")
	// ErrMultipleDocuments is returned when a YAML stream holds more than one document.
	ErrMultipleDocuments = errors.New("data file holds more than one YAML document")
)

// FormatOf selects the format from the lower-cased extension of path.
// The content of the file is never inspected.
func FormatOf(path string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))

	switch ext {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		if alt, ok := suggest.Closest(ext, "json", "yaml", "yml"); ok {
			return FormatUnknown, fmt.Errorf("%w: %q (did you mean %q?)", ErrUnsupportedExtension, ext, alt)
		}

		return FormatUnknown, fmt.Errorf("%w: %q", ErrUnsupportedExtension, ext)
	}
}

// Load reads the file at path and decodes it into its ordered entries.
func Load(path string) ([]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file %s: %w", path, err)
	}

	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	entries, err := Decode(format, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s file %s: %w", format, path, err)
	}

	return entries, nil
}

// Decode decodes data in the given format into an ordered sequence of
// generic values. A document without any content yields zero entries.
func Decode(format Format, data []byte) ([]any, error) {
	switch format {
	case FormatJSON:
		return decodeJSON(data)
	case FormatYAML:
		return decodeYAML(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedExtension, format)
	}
}

func decodeJSON(data []byte) ([]any, error) {
	if !utf8.Valid(data) {
		return nil, errors.New("invalid UTF-8 in JSON input")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("unexpected end of JSON input")
		}

		return nil, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid data after top-level value at offset %d", dec.InputOffset())
	}

	entries, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: found %s", ErrNotSequence, jsonKind(v))
	}

	if entries == nil {
		entries = []any{}
	}

	return entries, nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func decodeYAML(data []byte) ([]any, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))

	var doc yaml.Node
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return []any{}, nil
		}

		return nil, err
	}

	var next yaml.Node
	if err := dec.Decode(&next); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, err
		}

		return nil, fmt.Errorf("%w: second document starts at line %d", ErrMultipleDocuments, next.Line)
	}

	// A document holding only comments has no content.
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return []any{}, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%w: found %s at line %d", ErrNotSequence, yamlKind(root), root.Line)
	}

	entries := []any{}
	if err := root.Decode(&entries); err != nil {
		return nil, err
	}

	return entries, nil
}

func yamlKind(n *yaml.Node) string {
	switch n.Kind {
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar " + n.ShortTag()
	case yaml.AliasNode:
		return "alias"
	default:
		return "node"
	}
}

// Canonical re-serializes one decoded entry into canonical JSON text.
// It fails for values JSON cannot represent, such as maps with non-string
// keys or NaN and infinite floats.
func Canonical(entry any) (string, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(entry); err != nil {
		return "", err
	}

	return strings.TrimSuffix(buf.String(), "\n"), nil
}
