package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	j "github.com/goccy/go-json"

	"github.com/herpritts/jobquery"
)

// ParseJSON imports a JSON schema document.
func ParseJSON(data []byte, opts Options) (*jobquery.Registry, Diag, error) {
	entries, err := DecodeJSON(data)
	if err != nil {
		return nil, &simpleDiag{}, err
	}
	return Import(entries, opts)
}

// DecodeJSON returns the document's entries in key order. Field values that
// are not objects are reported per field.
func DecodeJSON(data []byte) ([]Entry, error) {
	keys, err := topLevelKeys(data)
	if err != nil {
		return nil, err
	}
	dec := j.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("schema: invalid JSON: %w", err)
	}
	entries := make([]Entry, 0, len(keys))
	var errs []error
	for _, k := range keys {
		attrs, ok := doc[k].(map[string]any)
		if !ok {
			errs = append(errs, &jobquery.SchemaError{Field: k, Reason: fmt.Sprintf("descriptor must be an object, got %T", doc[k])})
			continue
		}
		entries = append(entries, Entry{Key: k, Attrs: attrs})
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("schema: %w", errors.Join(errs...))
	}
	return entries, nil
}

// topLevelKeys walks the token stream and returns the root object's keys in
// document order. Duplicate keys are schema errors.
func topLevelKeys(data []byte) ([]string, error) {
	dec := j.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var (
		keys    []string
		seen    = map[string]bool{}
		depth   int
		wantKey bool
	)
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("schema: invalid JSON: %w", err)
		}
		switch v := tok.(type) {
		case j.Delim:
			switch v {
			case '{', '[':
				if depth == 0 {
					if v != '{' {
						return nil, errors.New("schema: document root must be an object")
					}
					wantKey = true
				}
				depth++
			default:
				depth--
				if depth == 1 {
					wantKey = true
				}
			}
		default:
			if depth == 0 {
				return nil, errors.New("schema: document root must be an object")
			}
			if depth != 1 {
				continue
			}
			if !wantKey {
				wantKey = true
				continue
			}
			key, _ := v.(string)
			if seen[key] {
				return nil, &jobquery.SchemaError{Field: key, Reason: "duplicate field key"}
			}
			seen[key] = true
			keys = append(keys, key)
			wantKey = false
		}
	}
	if depth != 0 {
		return nil, errors.New("schema: truncated JSON document")
	}
	return keys, nil
}
