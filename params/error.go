package params

import "github.com/ardnew/ruiner/template"

var (
	// ErrDecode reports a parameter document that cannot be decoded or
	// normalized.
	ErrDecode = template.NewError("failed to decode parameters")

	// ErrAssignment reports a malformed or conflicting assignment.
	ErrAssignment = template.NewError("invalid assignment")

	// ErrExpression reports an assignment expression that fails to compile
	// or evaluate.
	ErrExpression = template.NewError("invalid expression")
)
