package jobquery

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeUnknownField     = "unknown_field"
	CodeEmptyValue       = "empty_value"
	CodeNotAnInteger     = "not_an_integer"
	CodeOutOfRange       = "out_of_range"
	CodeNotABoolean      = "not_a_boolean"
	CodeNotInEnumeration = "not_in_enumeration"
	CodeNotInCodeList    = "not_in_code_list"
	CodeInvertedRange    = "inverted_range"
	// Code-list resolution failures (environment vs. schema/data mismatch)
	CodeSourceUnavailable = "source_unavailable"
	CodeFieldMissing      = "field_missing"
)

var (
	// ErrSchema matches every *SchemaError.
	ErrSchema = errors.New("jobquery: invalid schema")
	// ErrSourceUnavailable matches every *SourceUnavailableError.
	ErrSourceUnavailable = errors.New("jobquery: code list source unavailable")
	// ErrFieldMissing matches every *FieldMissingError.
	ErrFieldMissing = errors.New("jobquery: code list field missing")
)

// Issue represents a single rejected criterion.
type Issue struct {
	Field   string // Field key as supplied by the caller.
	Code    string // One of the codes listed above.
	Value   string // Offending raw value.
	Message string
	// Params carries structured parameters (e.g., {"min":1, "max":500}) for
	// i18n and observability.
	Params map[string]any
	Cause  error // Optional: underlying error.
}

// Error renders the field, code and offending value.
func (it Issue) Error() string {
	if it.Message == "" {
		return fmt.Sprintf("%s: %s %q", it.Field, it.Code, it.Value)
	}
	return fmt.Sprintf("%s: %s %q: %s", it.Field, it.Code, it.Value, it.Message)
}

// Unwrap returns the underlying cause, if any.
func (it Issue) Unwrap() error { return it.Cause }

// Issues is a collection of rejections that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. out_of_range at ResultsPerPage
		fmt.Fprintf(b, "%s at %s", it.Code, it.Field)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Unwrap exposes the causes so errors.Is/As see resolver failures.
func (iss Issues) Unwrap() []error {
	var out []error
	for _, it := range iss {
		if it.Cause != nil {
			out = append(out, it.Cause)
		}
	}
	return out
}

// Codes lists the issue codes in order.
func (iss Issues) Codes() []string {
	out := make([]string, len(iss))
	for i, it := range iss {
		out[i] = it.Code
	}
	return out
}

// ForField returns the issues recorded for one field key.
func (iss Issues) ForField(key string) Issues {
	var out Issues
	for _, it := range iss {
		if it.Field == key {
			out = append(out, it)
		}
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// SchemaError reports one malformed descriptor.
type SchemaError struct {
	Field  string
	Reason string
}

// Error names the field and the reason.
func (e *SchemaError) Error() string {
	if e.Field == "" {
		return "schema: " + e.Reason
	}
	return fmt.Sprintf("schema: field %q: %s", e.Field, e.Reason)
}

// Is matches ErrSchema.
func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// SourceUnavailableError indicates a code-list source could not be read
// (missing file, transport failure, deadline).
type SourceUnavailableError struct {
	Source string
	Err    error
}

// Error names the source and the failure.
func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("code list %q unavailable: %v", e.Source, e.Err)
}

// Unwrap returns the source failure.
func (e *SourceUnavailableError) Unwrap() error { return e.Err }

// Is matches ErrSourceUnavailable.
func (e *SourceUnavailableError) Is(target error) bool { return target == ErrSourceUnavailable }

// FieldMissingError indicates an entry of a code list lacks the referenced
// field.
type FieldMissingError struct {
	Source string
	Field  string
	Entry  int // index of the first entry without the field
}

// Error names the source, entry and field.
func (e *FieldMissingError) Error() string {
	return fmt.Sprintf("code list %q: entry %d has no field %q", e.Source, e.Entry, e.Field)
}

// Is matches ErrFieldMissing.
func (e *FieldMissingError) Is(target error) bool { return target == ErrFieldMissing }
