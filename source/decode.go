// Package source provides code-list sources for jobquery.Resolver: files in a
// directory or fs.FS, in-memory lists, and the USAJobs code-list endpoints over
// HTTP.
package source

import (
	"bytes"
	"errors"
	"fmt"

	j "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// ErrShape reports a document that is neither an array of mappings nor a
// USAJobs code-list envelope.
var ErrShape = errors.New("source: code list must be an array of objects or a CodeList envelope")

// DecodeEntries decodes a JSON code list. Numbers are kept as json.Number so
// codes such as "0301" and 301 stay distinguishable.
func DecodeEntries(data []byte) ([]map[string]any, error) {
	dec := j.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("source: invalid JSON: %w", err)
	}
	return entriesOf(doc)
}

// DecodeYAMLEntries decodes a YAML code list with the same shapes as
// DecodeEntries.
func DecodeYAMLEntries(data []byte) ([]map[string]any, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("source: invalid YAML: %w", err)
	}
	return entriesOf(normalizeYAML(doc))
}

// entriesOf accepts either a bare array of mappings or the USAJobs envelope
// {"CodeList":[{"ValidValue":[...]}]}.
func entriesOf(doc any) ([]map[string]any, error) {
	switch t := doc.(type) {
	case []any:
		return mappings(t)
	case map[string]any:
		lists, ok := t["CodeList"].([]any)
		if !ok || len(lists) == 0 {
			return nil, ErrShape
		}
		first, ok := lists[0].(map[string]any)
		if !ok {
			return nil, ErrShape
		}
		values, ok := first["ValidValue"].([]any)
		if !ok {
			return nil, ErrShape
		}
		return mappings(values)
	default:
		return nil, ErrShape
	}
}

func mappings(arr []any) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(arr))
	for i, v := range arr {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: entry %d is %T", ErrShape, i, v)
		}
		out = append(out, m)
	}
	return out, nil
}

// normalizeYAML converts YAML-decoded values (which may contain map[any]any)
// into JSON-like values recursively.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = normalizeYAML(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[fmt.Sprint(k)] = normalizeYAML(vv)
		}
		return out
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = normalizeYAML(t[i])
		}
		return arr
	default:
		return v
	}
}
