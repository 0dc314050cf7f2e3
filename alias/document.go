package alias

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/go-bexpr"
	"github.com/itchyny/gojq"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/ardnew/aliasexpr/log"
)

// SchemaURL identifies the field configuration JSON Schema.
const SchemaURL = "https://github.com/ardnew/aliasexpr/schema/field-alias.json"

//go:embed schema.json
var schemaJSON string

// Schema returns the field configuration JSON Schema document.
func Schema() string { return schemaJSON }

//nolint:gochecknoglobals
var fieldSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("unmarshal field schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(SchemaURL, doc); err != nil {
		return nil, fmt.Errorf("add field schema resource: %w", err)
	}

	return c.Compile(SchemaURL)
})

// Field is a field configuration found in a document.
type Field struct {
	Name   string      `json:"name"   yaml:"name"`
	Config FieldConfig `json:"config" yaml:"config"`
}

// Decode reads the field configurations in a YAML or JSON document.
//
// Fields are the objects selected by the jq query (see [WithQuery]) that
// match the filter (see [WithWhere]). Each must satisfy the field
// configuration schema. A field is named by its "name" key, or by its
// position among the selected objects when it has none.
func Decode(ctx context.Context, r io.Reader, opts ...DecodeOption) ([]Field, error) {
	o := decodeOptions{query: DefaultQuery, logger: log.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ErrReadDocument.Wrap(err)
	}

	doc, err := decodeDocument(data)
	if err != nil {
		return nil, err
	}

	code, err := compileQuery(o.query)
	if err != nil {
		return nil, err
	}

	var filter *bexpr.Evaluator
	if o.where != "" {
		filter, err = bexpr.CreateEvaluator(o.where)
		if err != nil {
			return nil, ErrFilter.With(slog.String("where", o.where)).Wrap(err)
		}
	}

	schema, err := fieldSchema()
	if err != nil {
		return nil, ErrSchema.Wrap(err)
	}

	fields := make([]Field, 0)
	iter := code.RunWithContext(ctx, doc)

	for i := 0; ; i++ {
		v, ok := iter.Next()
		if !ok {
			break
		}

		if err, isErr := v.(error); isErr {
			return nil, ErrQuery.With(slog.String("query", o.query)).Wrap(err)
		}

		obj, ok := v.(map[string]any)
		if !ok {
			return nil, ErrQuery.
				With(slog.String("query", o.query)).
				With(slog.String("result_type", fmt.Sprintf("%T", v)))
		}

		if filter != nil {
			match, err := filter.Evaluate(obj)
			if err != nil {
				return nil, ErrFilter.With(slog.String("where", o.where)).Wrap(err)
			}

			if !match {
				continue
			}
		}

		field, err := toField(schema, obj, i)
		if err != nil {
			return nil, err
		}

		fields = append(fields, field)
	}

	o.logger.TraceContext(ctx, "decode complete",
		slog.Int("field_count", len(fields)),
		slog.String("query", o.query))

	return fields, nil
}

// decodeDocument converts YAML or JSON into the generic values jq queries
// operate on.
func decodeDocument(data []byte) (any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrDocument.With(slog.String("error", "empty document"))
	}

	js, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, ErrDocument.Wrap(err)
	}

	var doc any
	if err := json.Unmarshal(js, &doc); err != nil {
		return nil, ErrDocument.Wrap(err)
	}

	return doc, nil
}

func compileQuery(query string) (*gojq.Code, error) {
	q, err := gojq.Parse(query)
	if err != nil {
		return nil, ErrQuery.With(slog.String("query", query)).Wrap(err)
	}

	// Queries cannot read the process environment.
	code, err := gojq.Compile(q,
		gojq.WithEnvironLoader(func() []string { return nil }),
	)
	if err != nil {
		return nil, ErrQuery.With(slog.String("query", query)).Wrap(err)
	}

	return code, nil
}

func toField(schema *jsonschema.Schema, obj map[string]any, index int) (Field, error) {
	// The validator expects numbers as json.Number.
	b, err := json.Marshal(obj)
	if err != nil {
		return Field{}, ErrDocument.Wrap(err)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(b))
	if err != nil {
		return Field{}, ErrDocument.Wrap(err)
	}

	name, _ := obj["name"].(string)
	if name == "" {
		name = strconv.Itoa(index)
	}

	if err := schema.Validate(inst); err != nil {
		return Field{}, ErrSchema.
			With(slog.String("field", name)).
			With(slog.Any("violations", violations(err))).
			Wrap(err)
	}

	var cfg FieldConfig
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Field{}, ErrDocument.Wrap(err)
	}

	return Field{Name: name, Config: cfg}, nil
}

// violations collects the leaf messages of a schema validation error.
func violations(err error) []string {
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{err.Error()}
	}

	if len(verr.Causes) == 0 {
		loc := "/" + strings.Join(verr.InstanceLocation, "/")

		return []string{loc + ": " + verr.Error()}
	}

	var out []string
	for _, cause := range verr.Causes {
		out = append(out, violations(cause)...)
	}

	return out
}
