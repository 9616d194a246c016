// Package schema builds a jobquery.Registry from a parameter schema document:
// a mapping of field key to descriptor attributes (DisplayName, Description,
// ValueType, MinValue, MaxValue, PossibleValues, PossibleValuesSource,
// PossibleValuesField, AllowBlank). Field order follows the document.
package schema

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	j "github.com/goccy/go-json"

	"github.com/herpritts/jobquery"
)

// Document attribute names.
const (
	AttrDisplayName          = "DisplayName"
	AttrDescription          = "Description"
	AttrValueType            = "ValueType"
	AttrMinValue             = "MinValue"
	AttrMaxValue             = "MaxValue"
	AttrPossibleValues       = "PossibleValues"
	AttrPossibleValuesSource = "PossibleValuesSource"
	AttrPossibleValuesField  = "PossibleValuesField"
	AttrAllowBlank           = "AllowBlank"
)

var knownAttrs = map[string]bool{
	AttrDisplayName:          true,
	AttrDescription:          true,
	AttrValueType:            true,
	AttrMinValue:             true,
	AttrMaxValue:             true,
	AttrPossibleValues:       true,
	AttrPossibleValuesSource: true,
	AttrPossibleValuesField:  true,
	AttrAllowBlank:           true,
}

// Options controls import behavior.
type Options struct {
	// Strict turns unknown descriptor attributes into schema errors instead
	// of warnings.
	Strict bool
}

// Diag carries non-fatal warnings produced during import.
type Diag interface {
	HasWarnings() bool
	Warnings() []string
}

type simpleDiag struct{ ws []string }

func (d *simpleDiag) HasWarnings() bool        { return len(d.ws) > 0 }
func (d *simpleDiag) Warnings() []string       { return append([]string(nil), d.ws...) }
func (d *simpleDiag) warnf(f string, a ...any) { d.ws = append(d.ws, fmt.Sprintf(f, a...)) }

// Entry is one field of a decoded schema document.
type Entry struct {
	Key   string
	Attrs map[string]any
	Line  int // 1-based source line when known, else 0
}

// Import compiles entries into a registry. Every malformed entry is reported;
// the registry is only returned when all entries are valid.
func Import(entries []Entry, opts Options) (*jobquery.Registry, Diag, error) {
	d := &simpleDiag{}
	var errs []error
	descs := make([]jobquery.FieldDescriptor, 0, len(entries))
	for _, e := range entries {
		desc, err := descriptor(e, opts, d)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		descs = append(descs, desc)
	}
	reg, err := jobquery.NewRegistry(descs...)
	if err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return nil, d, fmt.Errorf("schema: %w", errors.Join(errs...))
	}
	return reg, d, nil
}

func descriptor(e Entry, opts Options, d *simpleDiag) (jobquery.FieldDescriptor, error) {
	fail := func(format string, a ...any) error {
		reason := fmt.Sprintf(format, a...)
		if e.Line > 0 {
			reason = fmt.Sprintf("line %d: %s", e.Line, reason)
		}
		return &jobquery.SchemaError{Field: e.Key, Reason: reason}
	}
	out := jobquery.FieldDescriptor{Key: e.Key}

	for _, k := range sortedKeys(e.Attrs) {
		if knownAttrs[k] {
			continue
		}
		if opts.Strict {
			return out, fail("unknown attribute %q", k)
		}
		d.warnf("field %q: unknown attribute %q ignored", e.Key, k)
	}

	var err error
	if out.DisplayName, err = optString(e.Attrs, AttrDisplayName); err != nil {
		return out, fail("%v", err)
	}
	if out.Description, err = optString(e.Attrs, AttrDescription); err != nil {
		return out, fail("%v", err)
	}
	vt, err := optString(e.Attrs, AttrValueType)
	if err != nil {
		return out, fail("%v", err)
	}
	if vt == "" {
		return out, fail("missing %s", AttrValueType)
	}
	if out.Type, err = jobquery.ParseValueType(vt); err != nil {
		return out, fail("%v", err)
	}
	if out.Min, err = optInt(e.Attrs, AttrMinValue); err != nil {
		return out, fail("%v", err)
	}
	if out.Max, err = optInt(e.Attrs, AttrMaxValue); err != nil {
		return out, fail("%v", err)
	}
	if out.AllowBlank, err = optBool(e.Attrs, AttrAllowBlank); err != nil {
		return out, fail("%v", err)
	}

	if raw, ok := e.Attrs[AttrPossibleValues]; ok {
		arr, ok := raw.([]any)
		if !ok {
			return out, fail("%s must be an array, got %T", AttrPossibleValues, raw)
		}
		if len(arr) == 0 {
			return out, fail("%s is empty", AttrPossibleValues)
		}
		for i, v := range arr {
			s, ok := literal(v)
			if !ok {
				return out, fail("%s[%d] must be a string, got %T", AttrPossibleValues, i, v)
			}
			out.Enum = append(out.Enum, s)
		}
	}

	src, err := optString(e.Attrs, AttrPossibleValuesSource)
	if err != nil {
		return out, fail("%v", err)
	}
	field, err := optString(e.Attrs, AttrPossibleValuesField)
	if err != nil {
		return out, fail("%v", err)
	}
	switch {
	case src != "" && field != "":
		out.CodeList = &jobquery.CodeListRef{Source: src, Field: field}
	case src != "" || field != "":
		return out, fail("%s and %s must be declared together", AttrPossibleValuesSource, AttrPossibleValuesField)
	}
	return out, nil
}

func optString(m map[string]any, key string) (string, error) {
	raw, ok := m[key]
	if !ok || raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string, got %T", key, raw)
	}
	return strings.TrimSpace(s), nil
}

// optInt accepts whole numbers or decimal strings.
func optInt(m map[string]any, key string) (*int64, error) {
	raw, ok := m[key]
	if !ok || raw == nil {
		return nil, nil
	}
	var n int64
	switch t := raw.(type) {
	case j.Number:
		if v, err := strconv.ParseInt(t.String(), 10, 64); err == nil {
			n = v
			break
		}
		f, err := strconv.ParseFloat(t.String(), 64)
		if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%s must be a whole number, got %s", key, t)
		}
		n = int64(f)
	case int:
		n = int64(t)
	case int64:
		n = t
	case float64:
		if t != math.Trunc(t) || math.IsInf(t, 0) {
			return nil, fmt.Errorf("%s must be a whole number, got %v", key, t)
		}
		n = int64(t)
	case string:
		v, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s must be a whole number, got %q", key, t)
		}
		n = v
	default:
		return nil, fmt.Errorf("%s must be a number, got %T", key, raw)
	}
	return &n, nil
}

func optBool(m map[string]any, key string) (bool, error) {
	raw, ok := m[key]
	if !ok || raw == nil {
		return false, nil
	}
	switch t := raw.(type) {
	case bool:
		return t, nil
	case string:
		b, err := strconv.ParseBool(t)
		if err != nil {
			return false, fmt.Errorf("%s must be a boolean, got %q", key, t)
		}
		return b, nil
	default:
		return false, fmt.Errorf("%s must be a boolean, got %T", key, raw)
	}
}

// literal renders an enumeration member; numbers keep their source spelling.
func literal(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case j.Number:
		return t.String(), true
	default:
		return "", false
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
