package repl

import "github.com/ardnew/aliasexpr/cli/cmd"

var (
	// ErrOutOfBounds is returned for a history index with no entry.
	ErrOutOfBounds = cmd.NewError("history index out of range")

	// ErrEditDeclined is returned when an edited expression does not parse
	// and the user chose not to edit it again.
	ErrEditDeclined = cmd.NewError("alias edit abandoned after syntax error")
)
