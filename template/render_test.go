package template

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func render(t *testing.T, text string, params Params, reg Registry, opts ...Option) string {
	t.Helper()

	out, err := Render(t.Context(), New(text), params, reg, opts...)
	if err != nil {
		t.Fatalf("Render(%q) error: %v", text, err)
	}

	return out
}

func TestRender(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		params Params
		reg    Registry
		want   string
	}{
		{
			name: "empty template",
			want: "",
		},
		{
			name: "literal text",
			text: "lalala\n\tlololo\n",
			want: "lalala\n\tlololo\n",
		},
		{
			name: "cyrillic text",
			text: "ляляля",
			want: "ляляля",
		},
		{
			name:   "parameter",
			text:   "<!-- (param)x -->",
			params: Params{"x": "lalala"},
			want:   "lalala",
		},
		{
			name:   "parameter followed by delimiter",
			text:   "<!-- (param)x -->\n",
			params: Params{"x": "lalala"},
			want:   "lalala\n",
		},
		{
			name:   "parameter list",
			text:   "<li><!-- (param)x --></li>",
			params: Params{"x": []string{"a", "b", "c"}},
			want:   "<li>a</li>\n<li>b</li>\n<li>c</li>",
		},
		{
			name:   "parameter any list",
			text:   "<!-- (param)x -->;",
			params: Params{"x": []any{"a", "b"}},
			want:   "a;\nb;",
		},
		{
			name:   "parameter empty list",
			text:   "before\n<!-- (param)x -->\nafter",
			params: Params{"x": []string{}},
			want:   "before\n\nafter",
		},
		{
			name: "missing parameter",
			text: "lalala<!-- (param)p -->lololo",
			want: "lalalalololo",
		},
		{
			name: "missing optional parameter",
			text: "<!-- (optional)(param)a -->",
			want: "",
		},
		{
			name: "missing optional parameter empties the line",
			text: "x\n(<!-- (optional)(param)a -->)\ny",
			want: "x\n\ny",
		},
		{
			name:   "multiple parameters",
			text:   "before<!-- (param)a -->between1<!-- (param)b -->between2<!-- (param)c -->after",
			params: Params{"a": "<a>", "b": "<b>", "c": "<c>"},
			want:   "before<a>between1<b>between2<c>after",
		},
		{
			name: "multiple parameters followed by empty line",
			text: "Rendering <!-- (param)size -->x<!-- (param)size --> " +
				"table (mean of <!-- (param)experiments_number --> experiments)\n\n",
			params: Params{"size": "10", "experiments_number": "1000"},
			want:   "Rendering 10x10 table (mean of 1000 experiments)\n\n",
		},
		{
			name:   "zip truncates to shortest",
			text:   "<!-- (param)a -->=<!-- (param)b -->",
			params: Params{"a": []string{"1", "2", "3"}, "b": []string{"x", "y", "z", "v", "w"}},
			want:   "1=x\n2=y\n3=z",
		},
		{
			name:   "value containing delimiter",
			text:   "[<!-- (param)p -->]",
			params: Params{"p": "\n"},
			want:   "[\n]",
		},
		{
			name:   "malformed markers pass through",
			text:   "<!-- (param) x --><!--(param)x-- ><!- (param)x -->",
			params: Params{"x": "lalala"},
			want:   "<!-- (param) x --><!--(param)x-- ><!- (param)x -->",
		},
		{
			name:   "open marker before expression",
			text:   "<!--<!-- (param)p -->-->",
			params: Params{"p": "v"},
			want:   "<!--v-->",
		},
		{
			name:   "multiple references",
			text:   "abc<!-- (ref)ref1 -->de<!-- (ref)ref2 -->f",
			params: Params{"ref1": Params{"p": "lalala"}, "ref2": Params{"p": "lololo"}},
			reg: Registry{
				"ref1": New("<!-- (param)p -->"),
				"ref2": New("<!-- (param)p -->"),
			},
			want: "abclalaladelololof",
		},
		{
			name: "consecutive reference lines",
			text: "    <!-- (ref)first -->\n    <!-- (ref)second -->\n",
			reg:  Registry{"first": New("0"), "second": New("1")},
			want: "    0\n    1\n",
		},
		{
			name: "missing optional reference",
			text: "<!-- (optional)(ref)r -->",
			reg:  Registry{"r": New("lalala")},
			want: "",
		},
		{
			name: "missing optional reference is bare",
			text: "[<!-- (optional)(ref)r -->]",
			reg:  Registry{"r": New("lalala")},
			want: "",
		},
		{
			name:   "present optional reference",
			text:   "[<!-- (optional)(ref)r -->]",
			params: Params{"r": Params{}},
			reg:    Registry{"r": New("lalala")},
			want:   "[lalala]",
		},
		{
			name: "missing reference renders with empty scope",
			text: "<!-- (ref)r -->",
			reg:  Registry{"r": New("a<!-- (param)p -->b")},
			want: "ab",
		},
		{
			name:   "nested context",
			text:   "<!-- (ref)outer -->",
			params: Params{"outer": Params{"inner": []Params{{"v": "1"}, {"v": "2"}}}},
			reg: Registry{
				"outer": New("<ul>\n  <!-- (ref)inner -->\n</ul>"),
				"inner": New("<li><!-- (param)v --></li>"),
			},
			want: "<ul>\n  <li>1</li>\n  <li>2</li>\n</ul>",
		},
		{
			name:   "map values",
			text:   "(<!-- (ref)r -->)",
			params: Params{"r": map[string]any{"p": []any{"a", "b"}}},
			reg:    Registry{"r": New("<!-- (param)p -->")},
			want:   "(a)\n(b)",
		},
		{
			name:   "list of maps",
			text:   "<!-- (ref)r -->",
			params: Params{"r": []any{map[string]any{"p": "a"}, Params{"p": "b"}}},
			reg:    Registry{"r": New("<!-- (param)p -->")},
			want:   "a\nb",
		},
		{
			name:   "empty list of references",
			text:   "x\n\t<!-- (ref)r -->\ny",
			params: Params{"r": []Params{}},
			reg:    Registry{"r": New("never")},
			want:   "x\n\ny",
		},
		{
			name:   "reference in general line",
			text:   "<!-- (param)k -->: <!-- (ref)r -->",
			params: Params{"k": []string{"a", "b"}, "r": []Params{{"v": "1"}, {"v": "2"}}},
			reg:    Registry{"r": New("<<!-- (param)v -->>")},
			want:   "a: <1>\nb: <2>",
		},
		{
			name: "chain of distinct references",
			text: "<!-- (ref)o3 -->",
			reg: Registry{
				"o0": New(""),
				"o1": New("<!-- (ref)o0 -->"),
				"o2": New("<!-- (ref)o1 -->"),
				"o3": New("<!-- (ref)o2 -->"),
			},
			want: "",
		},
		{
			name: "long name and value",
			text: "<!-- (param)" + strings.Repeat("a", 512) + " -->",
			params: Params{
				strings.Repeat("a", 512): strings.Repeat("b", 512),
			},
			want: strings.Repeat("b", 512),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := render(t, tt.text, tt.params, tt.reg)

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Render() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRenderReferenceFanOut(t *testing.T) {
	greeting := New("Hello, <!-- (param)name -->!\n<!-- (ref)addition -->!\n")
	reg := Registry{"addition": New("Nice to <!-- (param)action --> you")}

	got, err := greeting.Render(t.Context(),
		Params{"name": "username", "addition": Params{"action": "eat"}}, reg)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	if want := "Hello, username!\nNice to eat you!\n"; got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}

	got, err = greeting.Render(t.Context(), Params{
		"name": "username",
		"addition": []Params{
			{"action": "meet"},
			{"action": "eat"},
			{"action": "split"},
		},
	}, reg)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	want := "Hello, username!\n" +
		"Nice to meet you!\n" +
		"Nice to eat you!\n" +
		"Nice to split you!\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Render() mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderTable(t *testing.T) {
	got := render(t,
		"<table>\n\t<!-- (ref)Row -->\n</table>",
		Params{"Row": []Params{
			{"cell": []string{"1.1", "2.1", "3.1"}},
			{"cell": []string{"1.2", "2.2", "3.2"}},
			{"cell": []string{"1.3", "2.3", "3.3"}},
		}},
		Registry{"Row": New("<tr>\n\t<td><!-- (param)cell --></td>\n</tr>")},
	)

	want := "<table>\n" +
		"\t<tr>\n" +
		"\t\t<td>1.1</td>\n" +
		"\t\t<td>2.1</td>\n" +
		"\t\t<td>3.1</td>\n" +
		"\t</tr>\n" +
		"\t<tr>\n" +
		"\t\t<td>1.2</td>\n" +
		"\t\t<td>2.2</td>\n" +
		"\t\t<td>3.2</td>\n" +
		"\t</tr>\n" +
		"\t<tr>\n" +
		"\t\t<td>1.3</td>\n" +
		"\t\t<td>2.3</td>\n" +
		"\t\t<td>3.3</td>\n" +
		"\t</tr>\n" +
		"</table>"

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Render() mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderErrors(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		params Params
		reg    Registry
		opts   []Option
		want   error
	}{
		{
			name: "missing reference",
			text: "<!-- (ref)something -->",
			want: ErrLookupFailure,
		},
		{
			name: "missing deep reference",
			text: "<!-- (ref)a -->",
			reg: Registry{
				"a": New("<!-- (ref)b -->"),
				"b": New("x\n<!-- (ref)no -->"),
			},
			want: ErrLookupFailure,
		},
		{
			name:   "present optional reference missing from registry",
			text:   "<!-- (optional)(ref)r -->",
			params: Params{"r": Params{}},
			want:   ErrLookupFailure,
		},
		{
			name:   "reference in general line missing",
			text:   "<!-- (param)a --><!-- (ref)r -->",
			params: Params{"a": "x"},
			want:   ErrLookupFailure,
		},
		{
			name: "self reference",
			text: "<!-- (ref)self -->",
			reg:  Registry{"self": New("<!-- (ref)self -->")},
			want: ErrRecursionLimit,
		},
		{
			name: "mutual recursion",
			text: "<!-- (ref)a -->",
			reg: Registry{
				"a": New("<!-- (ref)b -->"),
				"b": New("<!-- (ref)a -->"),
			},
			want: ErrRecursionLimit,
		},
		{
			name: "depth limit",
			text: "<!-- (ref)a -->",
			reg: Registry{
				"a": New("<!-- (ref)b -->"),
				"b": New("<!-- (ref)c -->"),
				"c": New("end"),
			},
			opts: []Option{WithMaxDepth(2)},
			want: ErrRecursionLimit,
		},
		{
			name:   "parameter bound to mapping",
			text:   "<!-- (param)x -->",
			params: Params{"x": Params{}},
			want:   ErrTypeMismatch,
		},
		{
			name:   "parameter bound to number",
			text:   "<!-- (param)x -->",
			params: Params{"x": 1},
			want:   ErrTypeMismatch,
		},
		{
			name:   "parameter bound to list of numbers",
			text:   "<!-- (param)x -->",
			params: Params{"x": []any{1}},
			want:   ErrTypeMismatch,
		},
		{
			name:   "parameter bound to list of mappings",
			text:   "<!-- (param)x -->",
			params: Params{"x": []Params{{}}},
			want:   ErrTypeMismatch,
		},
		{
			name:   "parameter bound to null",
			text:   "<!-- (optional)(param)x -->",
			params: Params{"x": nil},
			want:   ErrTypeMismatch,
		},
		{
			name:   "reference bound to string",
			text:   "<!-- (ref)r -->",
			params: Params{"r": "x"},
			reg:    Registry{"r": New("")},
			want:   ErrTypeMismatch,
		},
		{
			name:   "reference bound to list of strings",
			text:   "<!-- (ref)r -->",
			params: Params{"r": []string{"x"}},
			reg:    Registry{"r": New("")},
			want:   ErrTypeMismatch,
		},
		{
			name:   "reference bound to mixed list",
			text:   "<!-- (ref)r -->",
			params: Params{"r": []any{Params{}, "x"}},
			reg:    Registry{"r": New("")},
			want:   ErrTypeMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Render(t.Context(), New(tt.text), tt.params, tt.reg, tt.opts...)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Render() error = %v, want %v", err, tt.want)
			}

			if out != "" {
				t.Errorf("Render() returned partial output %q", out)
			}
		})
	}
}

func TestRenderErrorAttrs(t *testing.T) {
	_, err := Render(t.Context(), New("<!-- (ref)a -->"), nil, Registry{
		"a": New("<!-- (ref)b -->"),
		"b": New("<!-- (ref)a -->"),
	})

	var re *Error
	if !errors.As(err, &re) {
		t.Fatalf("Render() error %T is not *Error", err)
	}

	for _, attr := range re.Attrs() {
		if attr.Key == "chain" {
			if diff := cmp.Diff([]string{"a", "b", "a"}, attr.Value.Any()); diff != "" {
				t.Errorf("chain mismatch (-want +got):\n%s", diff)
			}

			return
		}
	}

	t.Errorf("error attrs %v carry no chain", re.Attrs())
}

func TestRenderMaxDepth(t *testing.T) {
	const depth = 10

	reg := Registry{"o0": New("leaf")}
	for i := 1; i <= depth; i++ {
		reg[fmt.Sprintf("o%d", i)] = New(fmt.Sprintf(" <!-- (ref)o%d -->", i-1))
	}

	root := New(fmt.Sprintf("<!-- (ref)o%d -->", depth))

	got, err := root.Render(t.Context(), nil, reg, WithMaxDepth(depth+1))
	if err != nil {
		t.Fatalf("Render() at depth %d error: %v", depth+1, err)
	}

	if want := strings.Repeat(" ", depth) + "leaf"; got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}

	_, err = root.Render(t.Context(), nil, reg, WithMaxDepth(depth))
	if !errors.Is(err, ErrRecursionLimit) {
		t.Errorf("Render() at depth %d error = %v, want %v", depth, err, ErrRecursionLimit)
	}

	_, err = root.Render(t.Context(), nil, reg, WithMaxDepth(0))
	if err != nil {
		t.Errorf("WithMaxDepth(0) did not restore the default: %v", err)
	}
}

func TestRenderCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := Render(ctx, New("a\nb"), nil, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Render() error = %v, want %v", err, context.Canceled)
	}
}

func TestRenderDeterministic(t *testing.T) {
	tmpl := New("<!-- (param)a -->-<!-- (ref)r -->")
	params := Params{"a": []string{"1", "2"}, "r": []Params{{"b": "x"}, {"b": "y"}}}
	reg := Registry{"r": New("<!-- (param)b -->")}

	first := render(t, tmpl.Text(), params, reg)

	var wg sync.WaitGroup

	for range 16 {
		wg.Go(func() {
			got, err := tmpl.Render(t.Context(), params, reg)
			if err != nil {
				t.Errorf("Render() error: %v", err)

				return
			}

			if got != first {
				t.Errorf("Render() = %q, want %q", got, first)
			}
		})
	}

	wg.Wait()
}

func TestRegistryRender(t *testing.T) {
	reg := Registry{
		"page": New("<h1><!-- (param)title --></h1>"),
		"loop": New("<!-- (ref)loop -->"),
	}

	got, err := reg.Render(t.Context(), "page", Params{"title": "hi"})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	if got != "<h1>hi</h1>" {
		t.Errorf("Render() = %q", got)
	}

	if _, err := reg.Render(t.Context(), "loop", nil); !errors.Is(err, ErrRecursionLimit) {
		t.Errorf("Render(loop) error = %v, want %v", err, ErrRecursionLimit)
	}

	if _, err := reg.Render(t.Context(), "missing", nil); !errors.Is(err, ErrLookupFailure) {
		t.Errorf("Render(missing) error = %v, want %v", err, ErrLookupFailure)
	}
}
