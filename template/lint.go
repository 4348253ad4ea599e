package template

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

// Severity ranks lint issues.
type Severity int

const (
	// SeverityWarning marks text that renders, but probably not as intended.
	SeverityWarning Severity = iota
	// SeverityError marks text that fails to render.
	SeverityError
)

// String returns a lowercase name of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"

	case SeverityError:
		return "error"

	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Lint issue codes.
const (
	CodeMalformedMarker  = "malformed-marker"
	CodeUnknownReference = "unknown-reference"
	CodeReferenceCycle   = "reference-cycle"
)

// Issue is a single lint finding. Line and Column are 1-based; Column counts
// runes.
type Issue struct {
	Template string   `json:"template" yaml:"template"`
	Line     int      `json:"line"     yaml:"line"`
	Column   int      `json:"column"   yaml:"column"`
	Severity Severity `json:"severity" yaml:"severity"`
	Code     string   `json:"code"     yaml:"code"`
	Message  string   `json:"message"  yaml:"message"`
}

// String formats the issue as "template:line:column: severity: message (code)".
func (i Issue) String() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s (%s)",
		i.Template, i.Line, i.Column, i.Severity, i.Message, i.Code)
}

// HasErrors reports whether any of issues has [SeverityError].
func HasErrors(issues []Issue) bool {
	return slices.ContainsFunc(issues, func(i Issue) bool {
		return i.Severity == SeverityError
	})
}

// maxSnippet bounds the marker text quoted in malformed-marker messages.
const maxSnippet = 40

// Lint statically checks the templates named by names, or every template of
// reg if names is empty. References resolve against reg. The result is sorted
// by template, line, column, then code.
func Lint(reg Registry, names ...string) []Issue {
	if len(names) == 0 {
		names = reg.Names()
	}

	var issues []Issue

	for _, name := range names {
		t, ok := reg.Lookup(name)
		if !ok {
			continue
		}

		issues = append(issues, lintTemplate(reg, name, t)...)
	}

	issues = append(issues, lintCycles(reg, names)...)

	slices.SortFunc(issues, func(a, b Issue) int {
		return cmp.Or(
			cmp.Compare(a.Template, b.Template),
			cmp.Compare(a.Line, b.Line),
			cmp.Compare(a.Column, b.Column),
			cmp.Compare(a.Code, b.Code),
		)
	})

	return slices.CompactFunc(issues, func(a, b Issue) bool { return a == b })
}

func lintTemplate(reg Registry, name string, t *Template) []Issue {
	var issues []Issue

	for _, line := range t.parsed() {
		starts := make(map[int]bool, len(line.Expressions))

		for _, expr := range line.Expressions {
			starts[expr.Start] = true

			if expr.Kind != KindReference {
				continue
			}

			if _, ok := reg.Lookup(expr.Name); ok {
				continue
			}

			issue := Issue{
				Template: name,
				Line:     line.Number,
				Column:   column(line.Text, expr.Start),
				Severity: SeverityError,
				Code:     CodeUnknownReference,
				Message:  fmt.Sprintf("template %q not found", expr.Name),
			}

			if expr.Optional {
				issue.Severity = SeverityWarning
				issue.Message += "; renders only when parameter is present"
			}

			issues = append(issues, issue)
		}

		for off := 0; ; {
			i := strings.Index(line.Text[off:], OpenText)
			if i < 0 {
				break
			}

			off += i

			if !starts[off] {
				issues = append(issues, Issue{
					Template: name,
					Line:     line.Number,
					Column:   column(line.Text, off),
					Severity: SeverityWarning,
					Code:     CodeMalformedMarker,
					Message: fmt.Sprintf("%q is not a valid expression and renders literally",
						snippet(line.Text[off:])),
				})
			}

			off += len(OpenText)
		}
	}

	return issues
}

// lintCycles reports every reference that closes a cycle in the static
// reference graph reachable from names.
func lintCycles(reg Registry, names []string) []Issue {
	const (
		white = iota
		gray
		black
	)

	var (
		issues []Issue
		color  = map[string]int{}
		stack  []string
		visit  func(string)
	)

	visit = func(name string) {
		t, ok := reg.Lookup(name)
		if !ok {
			return
		}

		color[name] = gray
		stack = append(stack, name)

		for _, line := range t.parsed() {
			for _, expr := range line.Expressions {
				if expr.Kind != KindReference {
					continue
				}

				switch color[expr.Name] {
				case white:
					visit(expr.Name)

				case gray:
					i := slices.Index(stack, expr.Name)
					cycle := append(slices.Clone(stack[i:]), expr.Name)

					issues = append(issues, Issue{
						Template: name,
						Line:     line.Number,
						Column:   column(line.Text, expr.Start),
						Severity: SeverityError,
						Code:     CodeReferenceCycle,
						Message:  "reference cycle " + strings.Join(cycle, " -> "),
					})
				}
			}
		}

		stack = stack[:len(stack)-1]
		color[name] = black
	}

	for _, name := range names {
		if color[name] == white {
			visit(name)
		}
	}

	return issues
}

// column returns the 1-based rune column of byte offset off in s.
func column(s string, off int) int {
	return utf8.RuneCountInString(s[:off]) + 1
}

func snippet(s string) string {
	if i := strings.Index(s, CloseText); i >= 0 {
		s = s[:i+len(CloseText)]
	}

	if utf8.RuneCountInString(s) > maxSnippet {
		r := []rune(s)
		s = string(r[:maxSnippet]) + "..."
	}

	return s
}
