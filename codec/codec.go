// Package codec turns a ValidatedQuery into ordered wire pairs for the search
// API and back into criteria.
package codec

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/herpritts/jobquery"
)

// Pair is one URL query parameter.
type Pair struct {
	Key   string
	Value string
}

// Encode emits the accepted values of q in registry declaration order. A
// multi-valued field yields one pair per value, in input order.
func Encode(q *jobquery.ValidatedQuery) []Pair {
	var out []Pair
	for _, k := range q.Keys() {
		for _, v := range q.All(k) {
			out = append(out, Pair{Key: k, Value: v.Text})
		}
	}
	return out
}

// Decode turns pairs back into criteria, keeping their order.
func Decode(pairs []Pair) []jobquery.Criterion {
	out := make([]jobquery.Criterion, len(pairs))
	for i, p := range pairs {
		out[i] = jobquery.Criterion{Field: p.Key, Value: p.Value}
	}
	return out
}

// QueryString URL-encodes pairs without reordering them (url.Values.Encode
// sorts by key).
func QueryString(pairs []Pair) string {
	b := &strings.Builder{}
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// ParseQuery splits a raw query string into pairs in their original order.
func ParseQuery(raw string) ([]Pair, error) {
	raw = strings.TrimPrefix(raw, "?")
	var out []Pair
	for _, part := range strings.Split(raw, "&") {
		if part == "" {
			continue
		}
		k, v, _ := strings.Cut(part, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			return nil, fmt.Errorf("codec: bad key %q: %w", k, err)
		}
		val, err := url.QueryUnescape(v)
		if err != nil {
			return nil, fmt.Errorf("codec: bad value for %q: %w", key, err)
		}
		out = append(out, Pair{Key: key, Value: val})
	}
	return out, nil
}

// Values converts pairs to url.Values for HTTP clients.
func Values(pairs []Pair) url.Values {
	v := make(url.Values, len(pairs))
	for _, p := range pairs {
		v.Add(p.Key, p.Value)
	}
	return v
}
