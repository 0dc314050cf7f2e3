// Package alias resolves the display name of a data field from its alias
// configuration.
//
// A [FieldConfig] holds either a literal display string or the source of an
// alias expression, selected by its UseExpression flag. [FieldConfig.Variant]
// converts it to the [Alias] sum type, whose [Literal] and [Expression]
// cases a [Resolver] handles:
//
//	r := alias.NewResolver()
//	name, err := r.Resolve(ctx, alias.FieldConfig{
//		Alias:         "return $province$ + ' sales'",
//		UseExpression: true,
//	}, map[string]string{"province": "浙江"})
//
// Literal aliases are returned verbatim and never consult the variables.
// Expressions are evaluated by package lang; a missing variable is reported
// as a [*lang.MissingVariableError] so the caller can prompt for exactly the
// names returned by [Resolver.Missing] and retry.
//
// [Decode] reads field configurations out of a widget configuration
// document in YAML or JSON, selecting them with a jq query, optionally
// filtering them with a boolean expression, and validating each against
// the field configuration JSON Schema.
package alias
