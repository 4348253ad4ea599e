package repl

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/ruiner/template"
)

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "foo", 3, "foo", 0, 3},
		{"after_param_tag", "<!-- (param)na", 14, "na", 12, 14},
		{"after_ref_tag", "<!-- (ref)Ro -->", 12, "Ro", 10, 12},
		{"mid_word", "foobar", 3, "foobar", 0, 6},
		{"at_start", "foo", 0, "foo", 0, 3},
		{"underscore", "a first_name", 12, "first_name", 2, 12},
		{"unicode", "<!-- (param)größe", 19, "größe", 12, 19},
		{"digits", "x col2", 6, "col2", 2, 6},
		{"empty_after_tag", "<!-- (param)", 12, "", 12, 12},
		{"empty_at_space", "a ", 2, "", 2, 2},
		{"cursor_past_end", "ab", 9, "ab", 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestTagBefore(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wordStart int
		wantKind  template.Kind
		wantOK    bool
	}{
		{"param", "<!-- (param)x", 12, template.KindParameter, true},
		{"optional_param", "<!-- (optional)(param)x", 22, template.KindParameter, true},
		{"ref", "<!--(ref)", 9, template.KindReference, true},
		{"optional_only", "<!-- (optional)x", 15, 0, false},
		{"plain", "hello", 0, 0, false},
		{"space_after_tag", "<!-- (param) x", 13, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := tagBefore(tt.input, tt.wordStart)
			if ok != tt.wantOK || (ok && kind != tt.wantKind) {
				t.Errorf("tagBefore(%q, %d) = (%v, %v), want (%v, %v)",
					tt.input, tt.wordStart, kind, ok, tt.wantKind, tt.wantOK)
			}
		})
	}
}

func TestParamNames(t *testing.T) {
	p := template.Params{
		"title": "x",
		"rows": []any{
			template.Params{"cell": "a"},
			map[string]any{"cell": "b", "note": "c"},
		},
		"head": template.Params{"title": "y", "lang": "en"},
	}

	want := []string{"cell", "head", "lang", "note", "rows", "title"}

	if diff := cmp.Diff(want, paramNames(p)); diff != "" {
		t.Errorf("paramNames() mismatch (-want +got):\n%s", diff)
	}
}

func testModel(t *testing.T, reg template.Registry, p template.Params) model {
	t.Helper()

	s, err := newSession(t.Context(),
		func(context.Context) (template.Registry, template.Params, error) {
			return reg, p, nil
		})
	if err != nil {
		t.Fatal(err)
	}

	return newModel(t.Context(), s, template.DefaultExt, NewHistory(""), zeroLogger)
}

func TestComputeMatches(t *testing.T) {
	reg := template.Registry{
		"Row":    template.New("<tr/>"),
		"Table":  template.New("<table/>"),
		"Header": template.New("<th/>"),
	}
	p := template.Params{"cell": "a", "caption": "b", "title": "c"}

	tests := []struct {
		name  string
		mode  inputMode
		input string
		want  []string
	}{
		{"ref_prefix", modeRender, "<!-- (ref)T", []string{"Table"}},
		{"ref_empty_lists_all", modeRender, "<!-- (ref)", []string{"Header", "Row", "Table"}},
		{"param_fuzzy", modeRender, "<!-- (param)ca", []string{"caption"}},
		{"param_empty_lists_all", modeRender, "<!-- (param)", []string{"caption", "cell", "title"}},
		{"no_tag", modeRender, "cell", nil},
		{"ctrl", modeCtrl, "rel", []string{"reload"}},
		{"ctrl_empty", modeCtrl, "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := testModel(t, reg, p)
			m.mode = tt.mode
			m.input.SetValue(tt.input)
			m.input.SetCursor(len(tt.input))

			matches, _, _, _ := m.computeMatches()

			var got []string
			for _, match := range matches {
				got = append(got, match.Str)
			}

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("computeMatches(%q) mismatch (-want +got):\n%s",
					tt.input, diff)
			}
		})
	}
}

func TestReplaceCurrentWord(t *testing.T) {
	m := testModel(t, template.Registry{"Table": template.New("")}, nil)

	input := "<!-- (ref)Ta -->"
	m.input.SetValue(input)
	m.input.SetCursor(12)
	refreshMatches(&m, false)

	if len(m.matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(m.matches))
	}

	replaceCurrentWord(&m, m.matches[0].Str)

	if got, want := m.input.Value(), "<!-- (ref)Table -->"; got != want {
		t.Errorf("input = %q, want %q", got, want)
	}

	if got, want := m.input.Position(), 15; got != want {
		t.Errorf("cursor = %d, want %d", got, want)
	}
}

func TestFormatPreview(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"<table>\n</table>", "(2 lines) <table>"},
		{"  <br/>", "(1 line) <br/>"},
	}

	for _, tt := range tests {
		if got := formatPreview(template.New(tt.text)); got != tt.want {
			t.Errorf("formatPreview(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestLineHint(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"<br/>", "literal"},
		{"\t<!-- (ref)Row -->", "single-reference: Row"},
		{"<td><!-- (param)a --><!-- (ref)B --></td>", "general: param a, ref B"},
	}

	for _, tt := range tests {
		if got := lineHint(tt.input); got != tt.want {
			t.Errorf("lineHint(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
