package template

import "slices"

// Params is a parameter tree scope. Values are one of
//
//   - string
//   - []string
//   - Params (or map[string]any)
//   - []Params (or []map[string]any)
//   - []any holding only strings or only mappings
//
// Keys are matched exactly.
type Params map[string]any

// Lookup returns the value bound to name.
func (p Params) Lookup(name string) (any, bool) {
	v, ok := p[name]

	return v, ok
}

// asMapping reports whether v is a mapping value.
func asMapping(v any) (Params, bool) {
	switch m := v.(type) {
	case Params:
		return m, true

	case map[string]any:
		return Params(m), true

	default:
		return nil, false
	}
}

// asStrings returns the values of a string or list of strings.
func asStrings(v any) ([]string, bool) {
	switch s := v.(type) {
	case string:
		return []string{s}, true

	case []string:
		return slices.Clone(s), true

	case []any:
		out := make([]string, len(s))

		for i, e := range s {
			str, ok := e.(string)
			if !ok {
				return nil, false
			}

			out[i] = str
		}

		return out, true

	default:
		return nil, false
	}
}

// asScopes returns the scopes of a mapping or list of mappings.
func asScopes(v any) ([]Params, bool) {
	if m, ok := asMapping(v); ok {
		return []Params{m}, true
	}

	switch s := v.(type) {
	case []Params:
		return s, true

	case []map[string]any:
		out := make([]Params, len(s))
		for i, m := range s {
			out[i] = Params(m)
		}

		return out, true

	case []any:
		out := make([]Params, len(s))

		for i, e := range s {
			m, ok := asMapping(e)
			if !ok {
				return nil, false
			}

			out[i] = m
		}

		return out, true

	default:
		return nil, false
	}
}

// typeName describes the shape of a parameter value for error messages.
func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"

	case string:
		return "string"

	case []string:
		return "list of strings"

	case Params, map[string]any:
		return "mapping"

	case []Params, []map[string]any:
		return "list of mappings"

	case []any:
		return "list"

	default:
		return "unsupported"
	}
}
