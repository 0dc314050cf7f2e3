package alias

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const widgetYAML = `
widget: sales
fields:
  - name: province
    alias: Province
    useExpression: false
    desc: region column
  - name: revenue
    alias: "return $province$ + ' revenue'"
    useExpression: true
  - name: notes
    format: text
`

func TestDecode(t *testing.T) {
	fields, err := Decode(t.Context(), strings.NewReader(widgetYAML))
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}

	want := []Field{
		{Name: "province", Config: FieldConfig{Alias: "Province", Desc: "region column"}},
		{Name: "revenue", Config: FieldConfig{
			Alias:         "return $province$ + ' revenue'",
			UseExpression: true,
		}},
	}

	if diff := cmp.Diff(want, fields); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_JSON(t *testing.T) {
	doc := `{"columns": [{"alias": "A", "useExpression": false}]}`

	fields, err := Decode(t.Context(), strings.NewReader(doc))
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}

	if len(fields) != 1 || fields[0].Name != "0" || fields[0].Config.Alias != "A" {
		t.Errorf("unexpected fields %+v", fields)
	}
}

func TestDecode_Where(t *testing.T) {
	fields, err := Decode(t.Context(), strings.NewReader(widgetYAML),
		WithWhere("useExpression == true"))
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}

	if len(fields) != 1 || fields[0].Name != "revenue" {
		t.Errorf("expected only revenue, got %+v", fields)
	}
}

func TestDecode_Query(t *testing.T) {
	fields, err := Decode(t.Context(), strings.NewReader(widgetYAML),
		WithQuery(`.fields[] | select(.name == "province")`))
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}

	if len(fields) != 1 || fields[0].Config.Alias != "Province" {
		t.Errorf("expected province, got %+v", fields)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		opts []DecodeOption
		want error
	}{
		{"empty", "  ", nil, ErrDocument},
		{"malformed", "a: [1, 2", nil, ErrDocument},
		{"bad query", widgetYAML, []DecodeOption{WithQuery(".fields[")}, ErrQuery},
		{"non-object result", widgetYAML, []DecodeOption{WithQuery(".widget")}, ErrQuery},
		{"bad filter", widgetYAML, []DecodeOption{WithWhere("useExpression ==")}, ErrFilter},
		{
			"schema violation",
			"fields:\n  - alias: 3\n    useExpression: true\n",
			nil,
			ErrSchema,
		},
		{
			"missing required key",
			"fields:\n  - alias: x\n",
			[]DecodeOption{WithQuery(".fields[]")},
			ErrSchema,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(t.Context(), strings.NewReader(tt.doc), tt.opts...)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSchema(t *testing.T) {
	if _, err := fieldSchema(); err != nil {
		t.Fatalf("schema does not compile: %v", err)
	}

	if !strings.Contains(Schema(), SchemaURL) {
		t.Error("expected schema to carry its id")
	}
}
