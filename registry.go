package jobquery

import (
	"errors"
	"fmt"
)

// Registry holds the parameter schema. It is immutable once constructed and
// safe for concurrent use.
type Registry struct {
	fields []FieldDescriptor
	index  map[string]int
}

// NewRegistry checks every descriptor and builds a registry in the given
// declaration order. Any malformed descriptor fails construction; the returned
// error joins one *SchemaError per problem.
func NewRegistry(fields ...FieldDescriptor) (*Registry, error) {
	r := &Registry{
		fields: make([]FieldDescriptor, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	var errs []error
	for _, d := range fields {
		if err := d.Check(); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := r.index[d.Key]; dup {
			errs = append(errs, &SchemaError{Field: d.Key, Reason: "duplicate field key"})
			continue
		}
		r.index[d.Key] = len(r.fields)
		r.fields = append(r.fields, d.clone())
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("building registry: %w", errors.Join(errs...))
	}
	return r, nil
}

// MustRegistry is like NewRegistry but panics on error.
func MustRegistry(fields ...FieldDescriptor) *Registry {
	r, err := NewRegistry(fields...)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the descriptor for key; ok is false when the key is unknown.
func (r *Registry) Lookup(key string) (FieldDescriptor, bool) {
	i, ok := r.index[key]
	if !ok {
		return FieldDescriptor{}, false
	}
	return r.fields[i].clone(), true
}

// Fields returns every descriptor in declaration order.
func (r *Registry) Fields() []FieldDescriptor {
	out := make([]FieldDescriptor, len(r.fields))
	for i, d := range r.fields {
		out[i] = d.clone()
	}
	return out
}

// Keys returns the field keys in declaration order.
func (r *Registry) Keys() []string {
	out := make([]string, len(r.fields))
	for i, d := range r.fields {
		out[i] = d.Key
	}
	return out
}

// Position returns the declaration index of key, or -1.
func (r *Registry) Position(key string) int {
	if i, ok := r.index[key]; ok {
		return i
	}
	return -1
}

// Len returns the number of fields.
func (r *Registry) Len() int { return len(r.fields) }

// CodeListRefs returns the distinct code-list references in declaration order.
func (r *Registry) CodeListRefs() []CodeListRef {
	var out []CodeListRef
	seen := map[CodeListRef]bool{}
	for _, d := range r.fields {
		if d.CodeList == nil || seen[*d.CodeList] {
			continue
		}
		seen[*d.CodeList] = true
		out = append(out, *d.CodeList)
	}
	return out
}
