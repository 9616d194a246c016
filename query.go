package jobquery

import (
	"slices"
	"sort"
)

// ValidatedQuery is the result of Build: the accepted canonical values plus
// every rejection. It is immutable once returned.
type ValidatedQuery struct {
	reg    *Registry
	values map[string][]Value
	issues Issues
}

// Get returns the first accepted value of key.
func (q *ValidatedQuery) Get(key string) (Value, bool) {
	vs := q.values[key]
	if len(vs) == 0 {
		return Value{}, false
	}
	return vs[0], true
}

// All returns every accepted value of key in input order.
func (q *ValidatedQuery) All(key string) []Value { return slices.Clone(q.values[key]) }

// Has reports whether key has at least one accepted value.
func (q *ValidatedQuery) Has(key string) bool { return len(q.values[key]) > 0 }

// Keys returns the accepted field keys in registry declaration order.
func (q *ValidatedQuery) Keys() []string {
	keys := make([]string, 0, len(q.values))
	for k, vs := range q.values {
		if len(vs) > 0 {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		return q.reg.Position(keys[i]) < q.reg.Position(keys[j])
	})
	return keys
}

// Accepted counts accepted values across all fields.
func (q *ValidatedQuery) Accepted() int {
	n := 0
	for _, vs := range q.values {
		n += len(vs)
	}
	return n
}

// Issues returns a copy of the rejection list.
func (q *ValidatedQuery) Issues() Issues { return slices.Clone(q.issues) }

// OK reports whether nothing was rejected.
func (q *ValidatedQuery) OK() bool { return len(q.issues) == 0 }

// Err returns the rejections as an error, or nil.
func (q *ValidatedQuery) Err() error {
	if len(q.issues) == 0 {
		return nil
	}
	return q.Issues()
}

// Registry returns the registry the query was validated against.
func (q *ValidatedQuery) Registry() *Registry { return q.reg }

// Rejection is one entry of the validation report.
type Rejection struct {
	Field  string `json:"field"`
	Code   string `json:"code"`
	Value  string `json:"value"`
	Detail string `json:"detail,omitempty"`
}

// Report is the display-oriented view of a ValidatedQuery.
type Report struct {
	Accepted   map[string][]string `json:"accepted"`
	Rejections []Rejection         `json:"rejections"`
}

// Report renders the accepted values as wire literals and flattens issues.
func (q *ValidatedQuery) Report() Report {
	r := Report{
		Accepted:   make(map[string][]string, len(q.values)),
		Rejections: make([]Rejection, 0, len(q.issues)),
	}
	for _, k := range q.Keys() {
		for _, v := range q.values[k] {
			r.Accepted[k] = append(r.Accepted[k], v.Text)
		}
	}
	r.Rejections = append(r.Rejections, q.issues.Rejections()...)
	return r
}

// Rejections flattens issues into report entries, dropping causes and params.
func (iss Issues) Rejections() []Rejection {
	out := make([]Rejection, 0, len(iss))
	for _, it := range iss {
		out = append(out, Rejection{Field: it.Field, Code: it.Code, Value: it.Value, Detail: it.Message})
	}
	return out
}
