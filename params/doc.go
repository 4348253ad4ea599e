// Package params builds template parameter trees from YAML or JSON documents
// and command line assignments.
//
// Documents are decoded with [github.com/goccy/go-yaml] and normalized to the
// shapes the renderer accepts: mappings become [template.Params], sequences
// become []any, and scalars become strings. Assignments take the form
// "path=value", where path is a dot separated list of names:
//
//	user.name=ardnew            (Set: value is a literal string)
//	rows=map(1..3, ({cell: #})) (SetExpr: value is an expr-lang expression)
//
// Expressions see the parameters assigned so far as their environment. A
// mapping literal built inside map() must be wrapped in parentheses or a
// second pair of braces, since a bare {...} there is the predicate.
package params
