package jobquery

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ValueType is the declared primitive type of a search parameter.
type ValueType int

const (
	TypeText ValueType = iota
	TypeInteger
	TypeBoolean
)

// String returns the schema-document spelling of the type.
func (t ValueType) String() string {
	switch t {
	case TypeText:
		return "string"
	case TypeInteger:
		return "integer"
	case TypeBoolean:
		return "boolean"
	default:
		return "unknown"
	}
}

// ParseValueType maps the schema-document spelling onto a ValueType.
func ParseValueType(s string) (ValueType, error) {
	switch s {
	case "string":
		return TypeText, nil
	case "integer":
		return TypeInteger, nil
	case "boolean":
		return TypeBoolean, nil
	default:
		return 0, fmt.Errorf("unknown value type %q", s)
	}
}

// Kind is the descriptor variant the validator dispatches on.
type Kind int

const (
	KindText Kind = iota
	KindInteger
	KindBoolean
	KindEnum
	KindCodeList
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindInteger:
		return "integer"
	case KindBoolean:
		return "boolean"
	case KindEnum:
		return "enum"
	case KindCodeList:
		return "codelist"
	default:
		return "unknown"
	}
}

// CodeListRef names an external code list and the entry attribute holding
// valid codes.
type CodeListRef struct {
	Source string
	Field  string
}

// String renders the reference as source#field.
func (r CodeListRef) String() string { return r.Source + "#" + r.Field }

// FieldDescriptor describes one search parameter.
type FieldDescriptor struct {
	Key         string // wire key, unique within a registry
	DisplayName string
	Description string
	Type        ValueType

	// Min and Max are inclusive bounds; integer fields only.
	Min *int64
	Max *int64

	// Enum and CodeList are mutually exclusive.
	Enum     []string
	CodeList *CodeListRef

	// AllowBlank accepts the empty string verbatim.
	AllowBlank bool
}

// Kind reports which restriction governs the descriptor.
func (d FieldDescriptor) Kind() Kind {
	switch {
	case d.Type == TypeBoolean:
		return KindBoolean
	case len(d.Enum) > 0:
		return KindEnum
	case d.CodeList != nil:
		return KindCodeList
	case d.Type == TypeInteger:
		return KindInteger
	default:
		return KindText
	}
}

// BoolLiterals returns the canonical true and false literals.
func (d FieldDescriptor) BoolLiterals() (string, string) {
	t, f := "True", "False"
	for _, lit := range d.Enum {
		b, err := strconv.ParseBool(lit)
		if err != nil {
			continue
		}
		if b {
			t = lit
		} else {
			f = lit
		}
	}
	return t, f
}

// Check verifies the descriptor invariants.
func (d FieldDescriptor) Check() error {
	fail := func(format string, a ...any) error {
		return &SchemaError{Field: d.Key, Reason: fmt.Sprintf(format, a...)}
	}
	if strings.TrimSpace(d.Key) == "" {
		return fail("empty field key")
	}
	switch d.Type {
	case TypeText, TypeInteger, TypeBoolean:
	default:
		return fail("unknown value type %d", int(d.Type))
	}
	if d.Type != TypeInteger && (d.Min != nil || d.Max != nil) {
		return fail("bounds declared on %s field", d.Type)
	}
	if d.Min != nil && d.Max != nil && *d.Min > *d.Max {
		return fail("minimum %d exceeds maximum %d", *d.Min, *d.Max)
	}
	if len(d.Enum) > 0 && d.CodeList != nil {
		return fail("both PossibleValues and PossibleValuesSource declared")
	}
	if d.CodeList != nil && (d.CodeList.Source == "" || d.CodeList.Field == "") {
		return fail("code list reference needs both source and field")
	}
	seen := make(map[string]bool, len(d.Enum))
	for _, v := range d.Enum {
		if seen[v] {
			return fail("duplicate possible value %q", v)
		}
		seen[v] = true
	}
	if d.Type == TypeBoolean {
		if d.CodeList != nil {
			return fail("code list declared on boolean field")
		}
		if len(d.Enum) > 0 {
			var hasTrue, hasFalse bool
			for _, v := range d.Enum {
				b, err := strconv.ParseBool(v)
				if err != nil {
					return fail("boolean literal %q is not true or false", v)
				}
				if b {
					hasTrue = true
				} else {
					hasFalse = true
				}
			}
			if !hasTrue || !hasFalse || len(d.Enum) != 2 {
				return fail("boolean field needs exactly one true and one false literal")
			}
		}
	}
	return nil
}

func (d FieldDescriptor) clone() FieldDescriptor {
	out := d
	out.Enum = slices.Clone(d.Enum)
	if d.Min != nil {
		v := *d.Min
		out.Min = &v
	}
	if d.Max != nil {
		v := *d.Max
		out.Max = &v
	}
	if d.CodeList != nil {
		ref := *d.CodeList
		out.CodeList = &ref
	}
	return out
}

// Int64 returns a pointer to v, for descriptor bounds.
func Int64(v int64) *int64 { return &v }

// Criterion is one (field key, raw value) pair supplied by a caller.
type Criterion struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Value is a validated, canonical field value.
type Value struct {
	Type ValueType
	Text string // canonical wire literal
	Int  int64  // set for integer fields
	Bool bool   // set for boolean fields
}

// String returns the canonical wire literal.
func (v Value) String() string { return v.Text }
