package alias

import "github.com/ardnew/aliasexpr/lang"

// Predefined errors (sentinel values).
var (
	ErrReadDocument = lang.NewError("failed to read document")
	ErrDocument     = lang.NewError("invalid document")
	ErrQuery        = lang.NewError("invalid field query")
	ErrFilter       = lang.NewError("invalid field filter")
	ErrSchema       = lang.NewError("field does not match schema")
	ErrNilAlias     = lang.NewError("nil alias")
)
