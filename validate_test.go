package jobquery_test

import (
	"context"
	"errors"
	"reflect"
	"strconv"
	"testing"

	"github.com/herpritts/jobquery"
	"github.com/herpritts/jobquery/source"
)

func issueCode(t *testing.T, err error) string {
	t.Helper()
	iss, ok := jobquery.AsIssues(err)
	if !ok || len(iss) != 1 {
		t.Fatalf("expected a single issue, got %v", err)
	}
	return iss[0].Code
}

func TestValidate_IntegerBounds(t *testing.T) {
	v := jobquery.NewValidator(nil)
	ctx := context.Background()
	bounded := []jobquery.FieldDescriptor{
		{Key: "ResultsPerPage", Type: jobquery.TypeInteger, Min: jobquery.Int64(1), Max: jobquery.Int64(500)},
		{Key: "DatePosted", Type: jobquery.TypeInteger, Min: jobquery.Int64(0), Max: jobquery.Int64(60)},
		{Key: "Offset", Type: jobquery.TypeInteger, Min: jobquery.Int64(-10), Max: jobquery.Int64(-10)},
	}
	for _, d := range bounded {
		for _, ok := range []int64{*d.Min, *d.Max} {
			got, err := v.Validate(ctx, d, strconv.FormatInt(ok, 10))
			if err != nil {
				t.Fatalf("%s=%d: unexpected err %v", d.Key, ok, err)
			}
			if got.Int != ok || got.Type != jobquery.TypeInteger {
				t.Fatalf("%s=%d: got %+v", d.Key, ok, got)
			}
		}
		for _, bad := range []int64{*d.Min - 1, *d.Max + 1} {
			_, err := v.Validate(ctx, d, strconv.FormatInt(bad, 10))
			if code := issueCode(t, err); code != jobquery.CodeOutOfRange {
				t.Fatalf("%s=%d: got %s", d.Key, bad, code)
			}
		}
	}
}

func TestValidate_IntegerSyntax(t *testing.T) {
	v := jobquery.NewValidator(nil)
	d := jobquery.FieldDescriptor{Key: "Page", Type: jobquery.TypeInteger}
	for _, raw := range []string{"1.5", "ten", "0x10", " 3", "1e3"} {
		_, err := v.Validate(context.Background(), d, raw)
		if code := issueCode(t, err); code != jobquery.CodeNotAnInteger {
			t.Fatalf("%q: got %s", raw, code)
		}
	}
	got, err := v.Validate(context.Background(), d, "007")
	if err != nil || got.Text != "7" {
		t.Fatalf("expected canonical 7, got %+v %v", got, err)
	}
}

func TestValidate_OutOfRangeParams(t *testing.T) {
	v := jobquery.NewValidator(nil)
	d := jobquery.FieldDescriptor{Key: "ResultsPerPage", Type: jobquery.TypeInteger, Min: jobquery.Int64(1), Max: jobquery.Int64(500)}
	_, err := v.Validate(context.Background(), d, "501")
	iss, _ := jobquery.AsIssues(err)
	if iss[0].Params["max"] != int64(500) || iss[0].Params["bound"] != "max" {
		t.Fatalf("unexpected params %v", iss[0].Params)
	}
	if iss[0].Message != "value must be between 1 and 500" {
		t.Fatalf("unexpected message %q", iss[0].Message)
	}
}

func TestValidate_Empty(t *testing.T) {
	v := jobquery.NewValidator(nil)
	for _, d := range []jobquery.FieldDescriptor{
		{Key: "Keyword", Type: jobquery.TypeText},
		{Key: "Page", Type: jobquery.TypeInteger},
		{Key: "Remote", Type: jobquery.TypeBoolean},
	} {
		_, err := v.Validate(context.Background(), d, "")
		if code := issueCode(t, err); code != jobquery.CodeEmptyValue {
			t.Fatalf("%s: got %s", d.Key, code)
		}
	}
	blank := jobquery.FieldDescriptor{Key: "Keyword", Type: jobquery.TypeText, AllowBlank: true}
	if _, err := v.Validate(context.Background(), blank, ""); err != nil {
		t.Fatalf("AllowBlank should accept empty: %v", err)
	}
}

func TestValidate_BooleanCaseInsensitive(t *testing.T) {
	v := jobquery.NewValidator(nil)
	d := jobquery.FieldDescriptor{Key: "RelocationIndicator", Type: jobquery.TypeBoolean, Enum: []string{"True", "False"}}
	cases := map[string]struct {
		text string
		b    bool
	}{
		"true":  {"True", true},
		"TRUE":  {"True", true},
		"False": {"False", false},
		"false": {"False", false},
	}
	for raw, want := range cases {
		got, err := v.Validate(context.Background(), d, raw)
		if err != nil {
			t.Fatalf("%q: %v", raw, err)
		}
		if got.Text != want.text || got.Bool != want.b {
			t.Fatalf("%q: got %+v", raw, got)
		}
	}
	for _, raw := range []string{"yes", "1", "t"} {
		_, err := v.Validate(context.Background(), d, raw)
		if code := issueCode(t, err); code != jobquery.CodeNotABoolean {
			t.Fatalf("%q: got %s", raw, code)
		}
	}
}

func TestValidate_EnumExactMatch(t *testing.T) {
	v := jobquery.NewValidator(nil)
	d := jobquery.FieldDescriptor{Key: "SortDirection", Type: jobquery.TypeText, Enum: []string{"Asc", "Desc"}}
	for _, m := range d.Enum {
		got, err := v.Validate(context.Background(), d, m)
		if err != nil || got.Text != m {
			t.Fatalf("%q: got %+v %v", m, got, err)
		}
	}
	for _, raw := range []string{"asc", "Up", "Desc "} {
		_, err := v.Validate(context.Background(), d, raw)
		iss, _ := jobquery.AsIssues(err)
		if len(iss) != 1 || iss[0].Code != jobquery.CodeNotInEnumeration {
			t.Fatalf("%q: got %v", raw, err)
		}
		if !reflect.DeepEqual(iss[0].Params["allowed"], []string{"Asc", "Desc"}) {
			t.Fatalf("allowed: %v", iss[0].Params["allowed"])
		}
	}
}

func TestValidate_IntegerEnumChecksIntegerFirst(t *testing.T) {
	v := jobquery.NewValidator(nil)
	d := jobquery.FieldDescriptor{Key: "Radius", Type: jobquery.TypeInteger, Enum: []string{"25", "50"}}
	_, err := v.Validate(context.Background(), d, "abc")
	if code := issueCode(t, err); code != jobquery.CodeNotAnInteger {
		t.Fatalf("got %s", code)
	}
	_, err = v.Validate(context.Background(), d, "30")
	if code := issueCode(t, err); code != jobquery.CodeNotInEnumeration {
		t.Fatalf("got %s", code)
	}
}

func TestValidate_CodeList(t *testing.T) {
	r := jobquery.NewResolver(source.Memory{
		"series": {{"Code": "2210"}, {"Code": "0301"}},
		"broken": {{"Name": "x"}},
	})
	v := jobquery.NewValidator(r)
	ctx := context.Background()
	d := jobquery.FieldDescriptor{Key: "JobCategoryCode", Type: jobquery.TypeText, CodeList: &jobquery.CodeListRef{Source: "series", Field: "Code"}}

	if got, err := v.Validate(ctx, d, "2210"); err != nil || got.Text != "2210" {
		t.Fatalf("unexpected %+v %v", got, err)
	}
	_, err := v.Validate(ctx, d, "9999")
	if code := issueCode(t, err); code != jobquery.CodeNotInCodeList {
		t.Fatalf("got %s", code)
	}

	d.CodeList = &jobquery.CodeListRef{Source: "absent", Field: "Code"}
	_, err = v.Validate(ctx, d, "2210")
	if code := issueCode(t, err); code != jobquery.CodeSourceUnavailable {
		t.Fatalf("got %s", code)
	}
	if !errors.Is(err, jobquery.ErrSourceUnavailable) {
		t.Fatalf("cause not reachable through Issues: %v", err)
	}

	d.CodeList = &jobquery.CodeListRef{Source: "broken", Field: "Code"}
	_, err = v.Validate(ctx, d, "2210")
	if code := issueCode(t, err); code != jobquery.CodeFieldMissing {
		t.Fatalf("got %s", code)
	}
}

func TestValidate_CodeListWithoutResolver(t *testing.T) {
	v := jobquery.NewValidator(nil)
	d := jobquery.FieldDescriptor{Key: "JobCategoryCode", Type: jobquery.TypeText, CodeList: &jobquery.CodeListRef{Source: "series", Field: "Code"}}
	_, err := v.Validate(context.Background(), d, "2210")
	if code := issueCode(t, err); code != jobquery.CodeSourceUnavailable {
		t.Fatalf("got %s", code)
	}
}
