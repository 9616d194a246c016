package jobquery_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/herpritts/jobquery"
)

func TestNewRegistry_DeclarationOrder(t *testing.T) {
	reg, err := jobquery.NewRegistry(
		jobquery.FieldDescriptor{Key: "Keyword", Type: jobquery.TypeText},
		jobquery.FieldDescriptor{Key: "Page", Type: jobquery.TypeInteger, Min: jobquery.Int64(1)},
		jobquery.FieldDescriptor{Key: "JobCategoryCode", Type: jobquery.TypeText, CodeList: &jobquery.CodeListRef{Source: "series", Field: "Code"}},
		jobquery.FieldDescriptor{Key: "Other", Type: jobquery.TypeText, CodeList: &jobquery.CodeListRef{Source: "series", Field: "Code"}},
	)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got := reg.Keys(); !reflect.DeepEqual(got, []string{"Keyword", "Page", "JobCategoryCode", "Other"}) {
		t.Fatalf("keys: %v", got)
	}
	if reg.Position("Page") != 1 || reg.Position("Missing") != -1 {
		t.Fatalf("unexpected positions")
	}
	if refs := reg.CodeListRefs(); len(refs) != 1 {
		t.Fatalf("expected one distinct ref, got %v", refs)
	}
}

func TestRegistry_LookupReturnsCopy(t *testing.T) {
	reg := jobquery.MustRegistry(jobquery.FieldDescriptor{Key: "SortDirection", Type: jobquery.TypeText, Enum: []string{"Asc", "Desc"}})
	d, _ := reg.Lookup("SortDirection")
	d.Enum[0] = "Up"
	again, _ := reg.Lookup("SortDirection")
	if again.Enum[0] != "Asc" {
		t.Fatalf("registry mutated through Lookup result")
	}
}

func TestNewRegistry_MalformedDescriptors(t *testing.T) {
	cases := []struct {
		name string
		d    jobquery.FieldDescriptor
		want string
	}{
		{"empty key", jobquery.FieldDescriptor{Type: jobquery.TypeText}, "empty field key"},
		{"unknown type", jobquery.FieldDescriptor{Key: "A", Type: jobquery.ValueType(9)}, "unknown value type"},
		{"bounds on text", jobquery.FieldDescriptor{Key: "A", Type: jobquery.TypeText, Min: jobquery.Int64(1)}, "bounds declared"},
		{"min above max", jobquery.FieldDescriptor{Key: "A", Type: jobquery.TypeInteger, Min: jobquery.Int64(5), Max: jobquery.Int64(1)}, "exceeds maximum"},
		{"enum and code list", jobquery.FieldDescriptor{Key: "A", Type: jobquery.TypeText, Enum: []string{"x"}, CodeList: &jobquery.CodeListRef{Source: "s", Field: "f"}}, "both"},
		{"half ref", jobquery.FieldDescriptor{Key: "A", Type: jobquery.TypeText, CodeList: &jobquery.CodeListRef{Source: "s"}}, "needs both"},
		{"duplicate enum", jobquery.FieldDescriptor{Key: "A", Type: jobquery.TypeText, Enum: []string{"x", "x"}}, "duplicate possible value"},
		{"bad bool literal", jobquery.FieldDescriptor{Key: "A", Type: jobquery.TypeBoolean, Enum: []string{"Yes", "No"}}, "not true or false"},
		{"one-sided bool", jobquery.FieldDescriptor{Key: "A", Type: jobquery.TypeBoolean, Enum: []string{"True", "true"}}, "exactly one true"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := jobquery.NewRegistry(tc.d)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !errors.Is(err, jobquery.ErrSchema) {
				t.Fatalf("expected ErrSchema, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in %v", tc.want, err)
			}
		})
	}
}

func TestNewRegistry_ReportsAllProblems(t *testing.T) {
	_, err := jobquery.NewRegistry(
		jobquery.FieldDescriptor{Key: "A", Type: jobquery.TypeText},
		jobquery.FieldDescriptor{Key: "A", Type: jobquery.TypeText},
		jobquery.FieldDescriptor{Key: "B", Type: jobquery.TypeInteger, Min: jobquery.Int64(2), Max: jobquery.Int64(1)},
	)
	if err == nil {
		t.Fatalf("expected error")
	}
	var se *jobquery.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected SchemaError in %v", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "duplicate field key") || !strings.Contains(msg, `"B"`) {
		t.Fatalf("expected both problems reported, got %v", msg)
	}
}

func TestDescriptorKind(t *testing.T) {
	cases := map[jobquery.Kind]jobquery.FieldDescriptor{
		jobquery.KindText:     {Key: "a", Type: jobquery.TypeText},
		jobquery.KindInteger:  {Key: "a", Type: jobquery.TypeInteger},
		jobquery.KindBoolean:  {Key: "a", Type: jobquery.TypeBoolean, Enum: []string{"True", "False"}},
		jobquery.KindEnum:     {Key: "a", Type: jobquery.TypeInteger, Enum: []string{"1", "2"}},
		jobquery.KindCodeList: {Key: "a", Type: jobquery.TypeText, CodeList: &jobquery.CodeListRef{Source: "s", Field: "f"}},
	}
	for want, d := range cases {
		if got := d.Kind(); got != want {
			t.Fatalf("%+v: got %s want %s", d, got, want)
		}
	}
}
