package template

import "log/slog"

// Kind discriminates the two expression variants.
type Kind int

const (
	// KindParameter substitutes a value from the parameter tree.
	KindParameter Kind = iota
	// KindReference renders another template from the registry.
	KindReference
)

// String returns the marker tag name of the kind.
func (k Kind) String() string {
	switch k {
	case KindParameter:
		return "param"

	case KindReference:
		return "ref"

	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Expression is one parsed marker.
type Expression struct {
	Name     string `json:"name"     yaml:"name"`
	Kind     Kind   `json:"kind"     yaml:"kind"`
	Optional bool   `json:"optional" yaml:"optional"`

	// Start and End are the byte offsets of the marker in the text it was
	// found in. Source is the marker text itself.
	Start  int    `json:"start"  yaml:"start"`
	End    int    `json:"end"    yaml:"end"`
	Source string `json:"source" yaml:"source"`
}

// ParseExpression reports whether s is, in its entirety, a valid marker and
// returns the parsed expression if so. Anything else, including a valid
// marker surrounded by other text, is not an expression.
func ParseExpression(s string) (Expression, bool) {
	loc := markerExact.FindStringSubmatchIndex(s)
	if loc == nil {
		return Expression{}, false
	}

	return newExpression(s, loc), true
}

// FindExpressions returns every non-overlapping marker in s from left to
// right. Malformed markers are skipped; they are plain text.
func FindExpressions(s string) []Expression {
	locs := markerSearch.FindAllStringSubmatchIndex(s, -1)
	if len(locs) == 0 {
		return nil
	}

	exprs := make([]Expression, len(locs))
	for i, loc := range locs {
		exprs[i] = newExpression(s, loc)
	}

	return exprs
}

// newExpression builds an Expression from a submatch index slice of the
// marker pattern.
func newExpression(s string, loc []int) Expression {
	kind := KindReference
	if s[loc[2*indexKind]:loc[2*indexKind+1]] == ParameterText {
		kind = KindParameter
	}

	return Expression{
		Name:     s[loc[2*indexName]:loc[2*indexName+1]],
		Kind:     kind,
		Optional: loc[2*indexOptional] >= 0,
		Start:    loc[0],
		End:      loc[1],
		Source:   s[loc[0]:loc[1]],
	}
}

// String returns the canonical marker text of e.
func (e Expression) String() string {
	tag := ParameterText
	if e.Kind == KindReference {
		tag = ReferenceText
	}

	if e.Optional {
		tag = OptionalText + tag
	}

	return OpenText + " " + tag + e.Name + " " + CloseText
}

// LogValue implements slog.LogValuer.
func (e Expression) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("name", e.Name),
		slog.String("kind", e.Kind.String()),
		slog.Bool("optional", e.Optional),
	)
}
