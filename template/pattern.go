package template

import (
	"regexp"
	"strings"
)

// Pattern is the textual form of a regular expression that composes by
// concatenation. Every marker shape in the grammar is assembled from a handful
// of primitive patterns, so the shapes cannot drift apart.
//
// Pattern values are immutable; each combinator returns a new Pattern.
type Pattern struct {
	expr string
}

// Raw returns a Pattern for the given regular expression source.
func Raw(expr string) Pattern { return Pattern{expr: expr} }

// Literal returns a Pattern matching s exactly.
func Literal(s string) Pattern { return Pattern{expr: regexp.QuoteMeta(s)} }

// Sequence returns a Pattern matching each of ps in order.
func Sequence(ps ...Pattern) Pattern {
	var sb strings.Builder

	for _, p := range ps {
		sb.WriteString(p.expr)
	}

	return Pattern{expr: sb.String()}
}

// Alternate returns a Pattern matching any one of ps, preferring the first.
func Alternate(ps ...Pattern) Pattern {
	alt := make([]string, len(ps))
	for i, p := range ps {
		alt[i] = p.expr
	}

	return Pattern{expr: "(?:" + strings.Join(alt, "|") + ")"}
}

// Optional returns a Pattern matching p zero or one time.
func (p Pattern) Optional() Pattern {
	return Pattern{expr: "(?:" + p.expr + ")?"}
}

// namedGroup matches the opening of a named capture group.
var namedGroup = regexp.MustCompile(`\(\?P?<\w+>`)

// Named returns a Pattern capturing p in a group called name.
// Named groups already inside p are demoted to non-capturing groups so a
// composed pattern never carries duplicate or stale group names.
func (p Pattern) Named(name string) Pattern {
	return Pattern{expr: "(?P<" + name + ">" + p.degrouped() + ")"}
}

func (p Pattern) degrouped() string {
	return namedGroup.ReplaceAllLiteralString(p.expr, "(?:")
}

// String returns the regular expression source of p.
func (p Pattern) String() string { return p.expr }

// Compile compiles p. It panics if p is not a valid expression, which only
// happens for a programming error in the grammar.
func (p Pattern) Compile() *regexp.Regexp {
	return regexp.MustCompile(p.expr)
}

// Exact compiles p anchored at both ends so it only matches whole inputs.
func (p Pattern) Exact() *regexp.Regexp {
	return regexp.MustCompile(`\A(?:` + p.expr + `)\z`)
}
