package schema_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/herpritts/jobquery"
	"github.com/herpritts/jobquery/schema"
)

const sampleJSON = `{
  "Keyword": {"DisplayName": "Keyword", "ValueType": "string"},
  "ResultsPerPage": {"ValueType": "integer", "MinValue": 1, "MaxValue": 500},
  "PayGradeLow": {"ValueType": "string", "PossibleValues": ["01", "02", "03"]},
  "RelocationIndicator": {"ValueType": "boolean", "PossibleValues": ["True", "False"]},
  "JobCategoryCode": {
    "ValueType": "string",
    "PossibleValuesSource": "codes_occupational_series",
    "PossibleValuesField": "Code"
  }
}`

func TestParseJSON_KeepsDocumentOrder(t *testing.T) {
	reg, d, err := schema.ParseJSON([]byte(sampleJSON), schema.Options{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if d.HasWarnings() {
		t.Fatalf("unexpected warnings: %v", d.Warnings())
	}
	want := []string{"Keyword", "ResultsPerPage", "PayGradeLow", "RelocationIndicator", "JobCategoryCode"}
	if got := reg.Keys(); !reflect.DeepEqual(got, want) {
		t.Fatalf("keys: got %v want %v", got, want)
	}
	rpp, _ := reg.Lookup("ResultsPerPage")
	if rpp.Min == nil || *rpp.Min != 1 || rpp.Max == nil || *rpp.Max != 500 {
		t.Fatalf("bounds not imported: %+v", rpp)
	}
	jc, _ := reg.Lookup("JobCategoryCode")
	if jc.Kind() != jobquery.KindCodeList || jc.CodeList.String() != "codes_occupational_series#Code" {
		t.Fatalf("code list not imported: %+v", jc)
	}
	rel, _ := reg.Lookup("RelocationIndicator")
	if rel.Kind() != jobquery.KindBoolean {
		t.Fatalf("expected boolean kind, got %s", rel.Kind())
	}
}

func TestParseJSON_ReportsEveryMalformedField(t *testing.T) {
	doc := `{
  "A": {"ValueType": "decimal"},
  "B": {"ValueType": "integer", "MinValue": 10, "MaxValue": 1},
  "C": {"ValueType": "string", "PossibleValues": ["x"], "PossibleValuesSource": "s", "PossibleValuesField": "Code"},
  "D": {"ValueType": "string", "PossibleValuesSource": "s"},
  "E": {"ValueType": "string"}
}`
	_, _, err := schema.ParseJSON([]byte(doc), schema.Options{})
	if err == nil {
		t.Fatalf("expected schema error")
	}
	if !errors.Is(err, jobquery.ErrSchema) {
		t.Fatalf("expected ErrSchema, got %v", err)
	}
	for _, f := range []string{`"A"`, `"B"`, `"C"`, `"D"`} {
		if !strings.Contains(err.Error(), f) {
			t.Fatalf("expected %s in error, got %v", f, err)
		}
	}
	if strings.Contains(err.Error(), `"E"`) {
		t.Fatalf("valid field reported: %v", err)
	}
}

func TestParseJSON_DuplicateKey(t *testing.T) {
	doc := `{"A": {"ValueType": "string"}, "A": {"ValueType": "integer"}}`
	_, _, err := schema.ParseJSON([]byte(doc), schema.Options{})
	var se *jobquery.SchemaError
	if !errors.As(err, &se) || se.Field != "A" {
		t.Fatalf("expected SchemaError for A, got %v", err)
	}
}

func TestParseJSON_RootMustBeObject(t *testing.T) {
	if _, _, err := schema.ParseJSON([]byte(`[1,2]`), schema.Options{}); err == nil {
		t.Fatalf("expected error for array root")
	}
	if _, _, err := schema.ParseJSON([]byte(`{"A": 1}`), schema.Options{}); err == nil {
		t.Fatalf("expected error for non-object descriptor")
	}
}

func TestUnknownAttribute_WarnsOrFails(t *testing.T) {
	doc := `{"A": {"ValueType": "string", "Deprecated": true}}`
	reg, d, err := schema.ParseJSON([]byte(doc), schema.Options{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if reg.Len() != 1 || !d.HasWarnings() {
		t.Fatalf("expected one field and a warning, got %d %v", reg.Len(), d.Warnings())
	}
	if _, _, err := schema.ParseJSON([]byte(doc), schema.Options{Strict: true}); err == nil {
		t.Fatalf("expected strict mode to reject unknown attribute")
	}
}

func TestParseYAML_LeadingZeroEnumAndOrder(t *testing.T) {
	y := "Zeta:\n  ValueType: string\nPayGradeHigh:\n  ValueType: string\n  PossibleValues: [01, 02, 15]\nAlpha:\n  ValueType: boolean\n  AllowBlank: true\n"
	reg, _, err := schema.ParseYAML([]byte(y), schema.Options{})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got := reg.Keys(); !reflect.DeepEqual(got, []string{"Zeta", "PayGradeHigh", "Alpha"}) {
		t.Fatalf("keys: %v", got)
	}
	pg, _ := reg.Lookup("PayGradeHigh")
	if !reflect.DeepEqual(pg.Enum, []string{"01", "02", "15"}) {
		t.Fatalf("enum literals changed: %v", pg.Enum)
	}
	a, _ := reg.Lookup("Alpha")
	if !a.AllowBlank {
		t.Fatalf("AllowBlank not imported")
	}
}

func TestParseYAML_DuplicateKey(t *testing.T) {
	y := "A:\n  ValueType: string\n  ValueType: integer\n"
	_, _, err := schema.ParseYAML([]byte(y), schema.Options{})
	var de *schema.DuplicateKeyError
	if !errors.As(err, &de) {
		t.Fatalf("expected DuplicateKeyError, got %T %v", err, err)
	}
	if de.Key != "ValueType" || de.FirstLine != 2 || de.Line != 3 {
		t.Fatalf("unexpected positions: %+v", de)
	}
}

func TestParseYAML_ErrorCarriesLine(t *testing.T) {
	y := "A:\n  ValueType: string\nB:\n  ValueType: integer\n  MinValue: ten\n"
	_, _, err := schema.ParseYAML([]byte(y), schema.Options{})
	if err == nil || !strings.Contains(err.Error(), "line 3") {
		t.Fatalf("expected line 3 in error, got %v", err)
	}
}

func TestLoad_PicksFormatByExtension(t *testing.T) {
	dir := t.TempDir()
	jp := filepath.Join(dir, "params.json")
	yp := filepath.Join(dir, "params.yml")
	if err := os.WriteFile(jp, []byte(`{"A": {"ValueType": "string"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(yp, []byte("A:\n  ValueType: integer\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	rj, _, err := schema.Load(jp, schema.Options{})
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	ry, _, err := schema.Load(yp, schema.Options{})
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	a1, _ := rj.Lookup("A")
	a2, _ := ry.Lookup("A")
	if a1.Type != jobquery.TypeText || a2.Type != jobquery.TypeInteger {
		t.Fatalf("unexpected types %s %s", a1.Type, a2.Type)
	}
	if _, _, err := schema.Load(filepath.Join(dir, "missing.json"), schema.Options{}); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
