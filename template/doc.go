// Package template renders line-oriented text templates.
//
// A template is ordinary text with embedded expressions. An expression is
// either a parameter, substituted with values from a parameter tree, or a
// reference, substituted with the rendering of another named template.
// Everything that is not an expression, including malformed markers, is
// copied through unchanged.
//
// # Grammar
//
//	Expression → Open Spaces [Optional] Kind Name Spaces Close
//	Open       → '<!--'
//	Close      → '-->'
//	Spaces     → ' '*
//	Optional   → '(optional)'
//	Kind       → '(param)' | '(ref)'
//	Name       → word character+
//	Delimiter  → '\n'
//
// # Lines
//
// Rendering is line oriented. Each line of a template is one of
//
//   - literal: no expressions, copied through;
//   - single-reference: exactly one expression, a reference. Every line of
//     the referenced rendering is wrapped in the text before and after the
//     marker, so indentation and decoration nest;
//   - general: any other mix. Every expression resolves to a sequence of
//     values, the sequences are zipped (truncated to the shortest), and the
//     line is rebuilt once per tuple.
//
// # Example
//
//	row := template.New("<tr><!--(param)cell--></tr>")
//	table := template.New("<table>\n\t<!--(ref)row-->\n</table>")
//
//	out, err := template.Render(ctx, table,
//		template.Params{"row": []template.Params{
//			{"cell": "a"},
//			{"cell": "b"},
//		}},
//		template.Registry{"row": row},
//	)
//
// produces
//
//	<table>
//		<tr>a</tr>
//		<tr>b</tr>
//	</table>
//
// # Parameters
//
// A parameter bound to a string yields one value, a list of strings one value
// per element. A missing parameter yields one empty value, or no values at
// all if it is optional. A reference bound to a mapping renders once against
// it, a list of mappings once per element. A missing reference renders once
// against an empty mapping, or as an empty string if it is optional.
//
// References are followed to at most [DefaultMaxDepth] levels (see
// [WithMaxDepth]) and a template may not appear twice in one reference chain.
package template
