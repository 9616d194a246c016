package codec_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/herpritts/jobquery"
	"github.com/herpritts/jobquery/codec"
)

func registry(t *testing.T) *jobquery.Registry {
	t.Helper()
	return jobquery.MustRegistry(
		jobquery.FieldDescriptor{Key: "Keyword", Type: jobquery.TypeText},
		jobquery.FieldDescriptor{Key: "LocationName", Type: jobquery.TypeText},
		jobquery.FieldDescriptor{Key: "PayGradeLow", Type: jobquery.TypeText, Enum: []string{"07", "09", "11"}},
		jobquery.FieldDescriptor{Key: "RemoteIndicator", Type: jobquery.TypeBoolean},
		jobquery.FieldDescriptor{Key: "SortDirection", Type: jobquery.TypeText, Enum: []string{"Asc", "Desc"}},
		jobquery.FieldDescriptor{Key: "Page", Type: jobquery.TypeInteger, Min: jobquery.Int64(1)},
	)
}

func build(t *testing.T, criteria ...jobquery.Criterion) *jobquery.ValidatedQuery {
	t.Helper()
	b := jobquery.NewBuilder(registry(t), jobquery.NewValidator(nil))
	q := b.Build(context.Background(), criteria)
	if !q.OK() {
		t.Fatalf("unexpected issues: %v", q.Err())
	}
	return q
}

func TestEncode_SingleKeyword(t *testing.T) {
	got := codec.Encode(build(t, jobquery.Criterion{Field: "Keyword", Value: "engineer"}))
	if want := []codec.Pair{{Key: "Keyword", Value: "engineer"}}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestEncode_DeclarationOrderRegardlessOfInput(t *testing.T) {
	a := codec.Encode(build(t,
		jobquery.Criterion{Field: "Page", Value: "2"},
		jobquery.Criterion{Field: "Keyword", Value: "nurse"},
		jobquery.Criterion{Field: "RemoteIndicator", Value: "TRUE"},
	))
	b := codec.Encode(build(t,
		jobquery.Criterion{Field: "RemoteIndicator", Value: "true"},
		jobquery.Criterion{Field: "Keyword", Value: "nurse"},
		jobquery.Criterion{Field: "Page", Value: "2"},
	))
	want := []codec.Pair{{"Keyword", "nurse"}, {"RemoteIndicator", "True"}, {"Page", "2"}}
	if !reflect.DeepEqual(a, want) || !reflect.DeepEqual(b, want) {
		t.Fatalf("got %v and %v, want %v", a, b, want)
	}
}

func TestEnumMembersRoundTrip(t *testing.T) {
	reg := registry(t)
	for _, key := range []string{"PayGradeLow", "SortDirection"} {
		d, _ := reg.Lookup(key)
		for _, m := range d.Enum {
			pairs := codec.Encode(build(t, jobquery.Criterion{Field: key, Value: m}))
			crit := codec.Decode(pairs)
			if len(crit) != 1 || crit[0].Field != key || crit[0].Value != m {
				t.Fatalf("%s=%s round-tripped to %v", key, m, crit)
			}
		}
	}
}

func TestQueryString_KeepsOrderAndEscapes(t *testing.T) {
	pairs := []codec.Pair{{"Keyword", "data & analytics"}, {"LocationName", "Washington, DC"}, {"Keyword", "python"}}
	qs := codec.QueryString(pairs)
	if qs != "Keyword=data+%26+analytics&LocationName=Washington%2C+DC&Keyword=python" {
		t.Fatalf("unexpected %q", qs)
	}
	back, err := codec.ParseQuery("?" + qs)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(back, pairs) {
		t.Fatalf("got %v want %v", back, pairs)
	}
	if v := codec.Values(pairs); !reflect.DeepEqual(v["Keyword"], []string{"data & analytics", "python"}) {
		t.Fatalf("values: %v", v)
	}
}

func TestParseQuery_BadEscape(t *testing.T) {
	if _, err := codec.ParseQuery("Keyword=%zz"); err == nil {
		t.Fatalf("expected error for bad escape")
	}
	pairs, err := codec.ParseQuery("Flag&&Page=1")
	if err != nil {
		t.Fatal(err)
	}
	if want := []codec.Pair{{"Flag", ""}, {"Page", "1"}}; !reflect.DeepEqual(pairs, want) {
		t.Fatalf("got %v", pairs)
	}
}
