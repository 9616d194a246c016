package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	j "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/herpritts/jobquery"
)

// DuplicateKeyError reports a duplicate key found in a YAML mapping with both
// the first occurrence position and the duplicate occurrence position.
type DuplicateKeyError struct {
	Key       string
	FirstLine int
	FirstCol  int
	Line      int
	Col       int
}

// Error names the key and both positions.
func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate YAML key %q at %d:%d (first at %d:%d)", e.Key, e.Line, e.Col, e.FirstLine, e.FirstCol)
}

// ParseYAML imports a YAML schema document.
func ParseYAML(data []byte, opts Options) (*jobquery.Registry, Diag, error) {
	entries, err := DecodeYAML(data)
	if err != nil {
		return nil, &simpleDiag{}, err
	}
	return Import(entries, opts)
}

// DecodeYAML returns the document's entries in key order with their source
// lines. Duplicate keys at any depth are errors.
func DecodeYAML(data []byte) ([]Entry, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("schema: empty YAML document")
		}
		return nil, fmt.Errorf("schema: invalid YAML: %w", err)
	}
	doc := &root
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		doc = doc.Content[0]
	}
	if doc.Kind != yaml.MappingNode {
		return nil, errors.New("schema: document root must be a mapping")
	}

	var (
		entries []Entry
		errs    []error
		first   = make(map[string][2]int, len(doc.Content)/2)
	)
	for i := 0; i+1 < len(doc.Content); i += 2 {
		k, v := doc.Content[i], doc.Content[i+1]
		if pos, dup := first[k.Value]; dup {
			return nil, fmt.Errorf("schema: %w", &DuplicateKeyError{Key: k.Value, FirstLine: pos[0], FirstCol: pos[1], Line: k.Line, Col: k.Column})
		}
		first[k.Value] = [2]int{k.Line, k.Column}
		val, err := nodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("schema: %w", err)
		}
		attrs, ok := val.(map[string]any)
		if !ok {
			errs = append(errs, &jobquery.SchemaError{Field: k.Value, Reason: fmt.Sprintf("line %d: descriptor must be a mapping", k.Line)})
			continue
		}
		entries = append(entries, Entry{Key: k.Value, Attrs: attrs, Line: k.Line})
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("schema: %w", errors.Join(errs...))
	}
	return entries, nil
}

// nodeValue converts a node into the same value shapes the JSON decoder
// yields. Numbers become go-json Numbers with their source spelling so that
// enumeration members such as 01 keep their leading zero.
func nodeValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.AliasNode:
		if n.Alias == nil {
			return nil, nil
		}
		return nodeValue(n.Alias)
	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		first := make(map[string][2]int, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if pos, dup := first[k.Value]; dup {
				return nil, &DuplicateKeyError{Key: k.Value, FirstLine: pos[0], FirstCol: pos[1], Line: k.Line, Col: k.Column}
			}
			first[k.Value] = [2]int{k.Line, k.Column}
			val, err := nodeValue(v)
			if err != nil {
				return nil, err
			}
			m[k.Value] = val
		}
		return m, nil
	case yaml.SequenceNode:
		arr := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := nodeValue(c)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.ScalarNode:
		switch n.Tag {
		case "!!null":
			return nil, nil
		case "!!int", "!!float":
			return j.Number(n.Value), nil
		default:
			// bools stay as their literal; optBool parses them
			return n.Value, nil
		}
	default:
		return nil, nil
	}
}
