package repl

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/ruiner/template"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{"help", "list", "params", "edit", "reload", "clear", "quit"}

// isNameRune reports whether r may appear in a parameter or template name.
func isNameRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// wordBounds returns the name at the cursor position and its byte boundaries
// within input. Returns an empty word when the cursor is not touching a name.
func wordBounds(input string, cursor int) (word string, start, end int) {
	if cursor > len(input) {
		cursor = len(input)
	}

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if !isNameRune(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if !isNameRune(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// byteOffset converts a rune position in s, as reported by the text input,
// to a byte offset.
func byteOffset(s string, pos int) int {
	for i := range s {
		if pos == 0 {
			return i
		}

		pos--
	}

	return len(s)
}

// tagBefore returns the kind of the marker tag that ends exactly at
// wordStart. It reports false if the word does not follow a tag.
func tagBefore(input string, wordStart int) (template.Kind, bool) {
	prefix := input[:wordStart]

	switch {
	case strings.HasSuffix(prefix, template.ParameterText):
		return template.KindParameter, true

	case strings.HasSuffix(prefix, template.ReferenceText):
		return template.KindReference, true
	}

	return 0, false
}

// paramNames returns every key of p and of the mappings nested in it,
// sorted and without duplicates. Nested keys are included since a referenced
// template sees the nested mapping as its parameters.
func paramNames(p template.Params) []string {
	seen := map[string]struct{}{}

	var walk func(v any)

	walk = func(v any) {
		switch v := v.(type) {
		case template.Params:
			for k, sub := range v {
				seen[k] = struct{}{}
				walk(sub)
			}

		case map[string]any:
			walk(template.Params(v))

		case []template.Params:
			for _, sub := range v {
				walk(sub)
			}

		case []any:
			for _, sub := range v {
				walk(sub)
			}
		}
	}

	walk(p)

	return slices.Sorted(maps.Keys(seen))
}

// candidatesFor returns the names that may complete a word following a tag
// of kind k.
func candidatesFor(
	k template.Kind,
	reg template.Registry,
	p template.Params,
) []string {
	switch k {
	case template.KindParameter:
		return paramNames(p)

	case template.KindReference:
		return reg.Names()
	}

	return nil
}

// computeMatches calculates the fuzzy match results for the word at the cursor.
// It returns the matches (ranked best-first), the candidate list, and the word
// boundaries. In render mode, names are only offered directly after a
// "(param)" or "(ref)" tag; an empty word there lists every candidate.
func (m model) computeMatches() (
	matches fuzzy.Matches,
	candidates []string,
	wordStart, wordEnd int,
) {
	input := m.input.Value()
	cursor := byteOffset(input, m.input.Position())

	word, ws, we := wordBounds(input, cursor)
	wordStart, wordEnd = ws, we

	if m.mode == modeCtrl {
		if word == "" {
			return nil, nil, wordStart, wordEnd
		}

		candidates = ctrlCommands
	} else {
		kind, ok := tagBefore(input, wordStart)
		if !ok {
			return nil, nil, wordStart, wordEnd
		}

		candidates = candidatesFor(kind, m.session.registry, m.session.params)

		if word == "" {
			matches = make(fuzzy.Matches, len(candidates))
			for i, c := range candidates {
				matches[i] = fuzzy.Match{Str: c, Index: i}
			}

			return matches, candidates, wordStart, wordEnd
		}
	}

	if len(candidates) == 0 {
		return nil, nil, wordStart, wordEnd
	}

	matches = fuzzy.Find(word, candidates)

	return matches, candidates, wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within the given terminal width. Each candidate is rendered with its matched
// characters highlighted. The selected candidate (when tabbing) uses the
// selected style.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		selected := tabActive && i == suggIdx
		rendered := renderCandidate(match, selected)
		candidateWidth := lipgloss.Width(rendered)

		entryWidth := candidateWidth
		if i > 0 {
			entryWidth += sepWidth
		}

		if used+entryWidth+ellipsisWidth > width && i > 0 {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted.
func renderCandidate(match fuzzy.Match, selected bool) string {
	baseStyle := suggestionStyle
	highlightStyle := matchStyle

	if selected {
		baseStyle = selectedStyle
		highlightStyle = selectedMatchStyle
	}

	matchSet := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matchSet[idx] = true
	}

	var b strings.Builder

	// MatchedIndexes are byte offsets.
	for i, r := range match.Str {
		ch := string(r)
		if matchSet[i] {
			b.WriteString(highlightStyle.Render(ch))
		} else {
			b.WriteString(baseStyle.Render(ch))
		}
	}

	return b.String()
}

// maxPreview bounds the length of template previews in the list command.
const maxPreview = 40

// formatPreview summarizes a template as its line count and first line.
func formatPreview(t *template.Template) string {
	lines := t.Lines()

	first := ""
	if len(lines) > 0 {
		first = strings.TrimSpace(lines[0].Text)
	}

	if r := []rune(first); len(r) > maxPreview {
		first = string(r[:maxPreview-3]) + "..."
	}

	noun := "lines"
	if len(lines) == 1 {
		noun = "line"
	}

	return fmt.Sprintf("(%d %s) %s", len(lines), noun, first)
}
