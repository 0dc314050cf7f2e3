package alias

// FieldConfig is the persisted alias configuration of one data field.
// Alias is a literal display string when UseExpression is false, and the
// source of an alias expression otherwise.
type FieldConfig struct {
	Alias         string `json:"alias"         yaml:"alias"`
	UseExpression bool   `json:"useExpression" yaml:"useExpression"`
	Desc          string `json:"desc"          yaml:"desc"`
}

// DefaultFieldConfig returns the configuration of a field with no alias.
func DefaultFieldConfig() FieldConfig {
	return FieldConfig{}
}

// Variant returns the alias the configuration describes.
func (c FieldConfig) Variant() Alias {
	if c.UseExpression {
		return Expression(c.Alias)
	}

	return Literal(c.Alias)
}

// Config converts an alias back to its persisted form.
func Config(a Alias, desc string) FieldConfig {
	c := FieldConfig{Desc: desc}

	switch a := a.(type) {
	case Literal:
		c.Alias = string(a)
	case Expression:
		c.Alias = string(a)
		c.UseExpression = true
	}

	return c
}

// Alias is a field alias: either a [Literal] or an [Expression].
type Alias interface {
	// Source returns the alias text.
	Source() string

	isAlias()
}

// Literal is a display string used verbatim.
type Literal string

// Expression is the source of an alias expression.
type Expression string

func (l Literal) Source() string    { return string(l) }
func (e Expression) Source() string { return string(e) }

func (Literal) isAlias()    {}
func (Expression) isAlias() {}
