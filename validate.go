package jobquery

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/herpritts/jobquery/i18n"
)

// CodeResolver answers code-list membership questions for the validator.
// *Resolver implements it.
type CodeResolver interface {
	Resolve(ctx context.Context, source, field string) (*CodeSet, error)
}

// Validator checks raw values against descriptors. It holds no mutable state
// and is safe for concurrent use.
type Validator struct {
	codes CodeResolver
}

// NewValidator returns a Validator; codes may be nil when no descriptor
// references a code list.
func NewValidator(codes CodeResolver) *Validator {
	return &Validator{codes: codes}
}

// Validate returns the canonical value of raw for d. On rejection the error is
// Issues holding exactly one Issue.
func (v *Validator) Validate(ctx context.Context, d FieldDescriptor, raw string) (Value, error) {
	if raw == "" {
		if d.AllowBlank {
			return Value{Type: d.Type}, nil
		}
		return Value{}, reject(d, raw, CodeEmptyValue, nil, nil)
	}
	switch d.Kind() {
	case KindBoolean:
		return v.validateBool(d, raw)
	case KindInteger:
		return v.validateInt(d, raw)
	case KindEnum:
		val, err := v.typed(d, raw)
		if err != nil {
			return Value{}, err
		}
		if err := v.checkEnum(d, raw); err != nil {
			return Value{}, err
		}
		return val, nil
	case KindCodeList:
		val, err := v.typed(d, raw)
		if err != nil {
			return Value{}, err
		}
		if err := v.checkCodeList(ctx, d, raw); err != nil {
			return Value{}, err
		}
		return val, nil
	default:
		return Value{Type: TypeText, Text: raw}, nil
	}
}

// typed applies the integer rules when a restricted field is integer-typed.
func (v *Validator) typed(d FieldDescriptor, raw string) (Value, error) {
	if d.Type == TypeInteger {
		return v.validateInt(d, raw)
	}
	return Value{Type: TypeText, Text: raw}, nil
}

func (v *Validator) validateInt(d FieldDescriptor, raw string) (Value, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return Value{}, reject(d, raw, CodeNotAnInteger, nil, err)
	}
	if d.Min != nil && n < *d.Min {
		return Value{}, reject(d, raw, CodeOutOfRange, boundParams(d, "min", n), nil)
	}
	if d.Max != nil && n > *d.Max {
		return Value{}, reject(d, raw, CodeOutOfRange, boundParams(d, "max", n), nil)
	}
	return Value{Type: TypeInteger, Text: strconv.FormatInt(n, 10), Int: n}, nil
}

func (v *Validator) validateBool(d FieldDescriptor, raw string) (Value, error) {
	t, f := d.BoolLiterals()
	switch {
	case strings.EqualFold(raw, t):
		return Value{Type: TypeBoolean, Text: t, Bool: true}, nil
	case strings.EqualFold(raw, f):
		return Value{Type: TypeBoolean, Text: f, Bool: false}, nil
	}
	return Value{}, reject(d, raw, CodeNotABoolean, map[string]any{"true": t, "false": f}, nil)
}

func (v *Validator) checkEnum(d FieldDescriptor, raw string) error {
	for _, allowed := range d.Enum {
		if raw == allowed {
			return nil
		}
	}
	return reject(d, raw, CodeNotInEnumeration, map[string]any{"allowed": append([]string(nil), d.Enum...)}, nil)
}

func (v *Validator) checkCodeList(ctx context.Context, d FieldDescriptor, raw string) error {
	ref := *d.CodeList
	params := map[string]any{"source": ref.Source, "field": ref.Field}
	if v.codes == nil {
		err := &SourceUnavailableError{Source: ref.Source, Err: errors.New("no code list resolver configured")}
		return reject(d, raw, CodeSourceUnavailable, params, err)
	}
	set, err := v.codes.Resolve(ctx, ref.Source, ref.Field)
	if err != nil {
		code := CodeSourceUnavailable
		if errors.Is(err, ErrFieldMissing) {
			code = CodeFieldMissing
		}
		return reject(d, raw, code, params, err)
	}
	if !set.Has(raw) {
		return reject(d, raw, CodeNotInCodeList, params, nil)
	}
	return nil
}

func boundParams(d FieldDescriptor, bound string, got int64) map[string]any {
	p := map[string]any{"bound": bound, "got": got, "min": "-∞", "max": "∞"}
	if d.Min != nil {
		p["min"] = *d.Min
	}
	if d.Max != nil {
		p["max"] = *d.Max
	}
	return p
}

func reject(d FieldDescriptor, raw, code string, params map[string]any, cause error) Issues {
	return Issues{newIssue(d.Key, raw, code, params, cause)}
}

func newIssue(field, raw, code string, params map[string]any, cause error) Issue {
	return Issue{
		Field:   field,
		Code:    code,
		Value:   raw,
		Message: i18n.T(code, messageData(params)),
		Params:  params,
		Cause:   cause,
	}
}

func messageData(params map[string]any) map[string]string {
	if len(params) == 0 {
		return nil
	}
	out := make(map[string]string, len(params))
	for k, v := range params {
		switch t := v.(type) {
		case string:
			out[k] = t
		case []string:
			out[k] = strings.Join(t, ", ")
		case int64:
			out[k] = strconv.FormatInt(t, 10)
		default:
			out[k] = codeString(t)
		}
	}
	return out
}
