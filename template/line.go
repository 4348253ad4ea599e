package template

import "strings"

// LineKind classifies a line by the expressions it contains.
type LineKind int

const (
	// LineLiteral contains no expressions.
	LineLiteral LineKind = iota
	// LineSingleReference contains exactly one expression, a reference.
	LineSingleReference
	// LineGeneral is any other mix of literal text and expressions.
	LineGeneral
)

// String returns a lowercase name of the line kind.
func (k LineKind) String() string {
	switch k {
	case LineLiteral:
		return "literal"

	case LineSingleReference:
		return "single-reference"

	case LineGeneral:
		return "general"

	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k LineKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Segment is either a run of literal text or an expression.
// Exactly one of Text and Expression is set.
type Segment struct {
	Text       string      `json:"text,omitempty"       yaml:"text,omitempty"`
	Expression *Expression `json:"expression,omitempty" yaml:"expression,omitempty"`
}

// IsExpression reports whether s holds an expression.
func (s Segment) IsExpression() bool { return s.Expression != nil }

// Line is one delimiter-separated line of a template.
type Line struct {
	Number      int          `json:"number"                yaml:"number"`
	Text        string       `json:"text"                  yaml:"text"`
	Kind        LineKind     `json:"kind"                  yaml:"kind"`
	Expressions []Expression `json:"expressions,omitempty" yaml:"expressions,omitempty"`
	// Segments covers the whole line in order, with empty literal runs
	// dropped.
	Segments []Segment `json:"segments,omitempty" yaml:"segments,omitempty"`

	// Left and Right are the literal text around the reference of a
	// LineSingleReference line.
	Left  string `json:"left,omitempty"  yaml:"left,omitempty"`
	Right string `json:"right,omitempty" yaml:"right,omitempty"`
}

// Reference returns the sole expression of a LineSingleReference line.
func (l Line) Reference() (Expression, bool) {
	if l.Kind != LineSingleReference {
		return Expression{}, false
	}

	return l.Expressions[0], true
}

// ParseLine classifies a single line of text. The text must not contain
// [Delimiter]; number is recorded verbatim.
func ParseLine(number int, text string) Line {
	exprs := FindExpressions(text)

	line := Line{
		Number:      number,
		Text:        text,
		Expressions: exprs,
		Segments:    highlight(text, exprs),
	}

	switch {
	case len(exprs) == 0:
		line.Kind = LineLiteral

	case len(exprs) == 1 && exprs[0].Kind == KindReference:
		line.Kind = LineSingleReference
		line.Left = text[:exprs[0].Start]
		line.Right = text[exprs[0].End:]

	default:
		line.Kind = LineGeneral
	}

	return line
}

// ParseLines splits text on [Delimiter] and classifies every line.
// Lines are numbered from 1. The empty string yields one empty line.
func ParseLines(text string) []Line {
	split := strings.Split(text, Delimiter)

	lines := make([]Line, len(split))
	for i, s := range split {
		lines[i] = ParseLine(i+1, s)
	}

	return lines
}

// highlight interleaves the literal runs of text with exprs.
func highlight(text string, exprs []Expression) []Segment {
	segs := make([]Segment, 0, 2*len(exprs)+1)
	last := 0

	for i := range exprs {
		if lit := text[last:exprs[i].Start]; lit != "" {
			segs = append(segs, Segment{Text: lit})
		}

		segs = append(segs, Segment{Expression: &exprs[i]})
		last = exprs[i].End
	}

	if lit := text[last:]; lit != "" {
		segs = append(segs, Segment{Text: lit})
	}

	return segs
}
