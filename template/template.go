package template

import (
	"slices"
	"sync"
)

// Template is an immutable template text.
//
// The line structure is derived on first use and memoized; a Template must
// not be copied after first use.
type Template struct {
	text  string
	once  sync.Once
	lines []Line
}

// New returns a template over text.
func New(text string) *Template {
	return &Template{text: text}
}

// Text returns the template source.
func (t *Template) Text() string { return t.text }

// String implements fmt.Stringer.
func (t *Template) String() string { return t.text }

// Lines returns the classified lines of t in order.
func (t *Template) Lines() []Line {
	return slices.Clone(t.parsed())
}

func (t *Template) parsed() []Line {
	t.once.Do(func() { t.lines = ParseLines(t.text) })

	return t.lines
}
