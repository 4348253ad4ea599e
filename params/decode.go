package params

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/ruiner/template"
)

// Decode reads one YAML or JSON document from r. The document must be a
// mapping; an empty document yields empty parameters.
func Decode(ctx context.Context, r io.Reader) (template.Params, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ErrDecode.Wrap(err)
	}

	var doc any
	if err := yaml.UnmarshalContext(ctx, data, &doc); err != nil {
		return nil, ErrDecode.Wrap(err)
	}

	if doc == nil {
		return template.Params{}, nil
	}

	v, err := Normalize(doc)
	if err != nil {
		return nil, err
	}

	p, ok := v.(template.Params)
	if !ok {
		return nil, ErrDecode.Wrap(fmt.Errorf("document is a %T, want mapping", doc))
	}

	return p, nil
}

// LoadFile decodes the parameter document at path. See [Decode].
func LoadFile(ctx context.Context, path string) (template.Params, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ErrDecode.Wrap(err).With(slog.String("path", path))
	}
	defer f.Close()

	p, err := Decode(ctx, f)
	if err != nil {
		return nil, template.WrapError(err).With(slog.String("path", path))
	}

	return p, nil
}

// Normalize converts a decoded value into a parameter value:
//
//   - mappings become template.Params with normalized values;
//   - sequences become []any with normalized elements;
//   - strings are kept, other scalars are formatted as strings;
//   - null becomes the empty string.
func Normalize(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return "", nil

	case string:
		return t, nil

	case bool:
		return strconv.FormatBool(t), nil

	case int:
		return strconv.Itoa(t), nil

	case int64:
		return strconv.FormatInt(t, 10), nil

	case uint64:
		return strconv.FormatUint(t, 10), nil

	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64), nil

	case time.Time:
		return t.Format(time.RFC3339), nil

	case []string:
		return t, nil

	case template.Params:
		return normalizeMap(t)

	case map[string]any:
		return normalizeMap(t)

	case map[any]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[fmt.Sprint(k)] = e
		}

		return normalizeMap(m)

	case []template.Params:
		out := make([]any, len(t))
		for i, e := range t {
			n, err := normalizeMap(e)
			if err != nil {
				return nil, err
			}

			out[i] = n
		}

		return out, nil

	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			n, err := Normalize(e)
			if err != nil {
				return nil, err
			}

			out[i] = n
		}

		return out, nil

	default:
		if s, ok := v.(fmt.Stringer); ok {
			return s.String(), nil
		}

		return nil, ErrDecode.Wrap(fmt.Errorf("unsupported value of type %T", v))
	}
}

func normalizeMap[M ~map[string]any](m M) (template.Params, error) {
	out := make(template.Params, len(m))

	for k, e := range m {
		n, err := Normalize(e)
		if err != nil {
			return nil, template.WrapError(err).With(slog.String("key", k))
		}

		out[k] = n
	}

	return out, nil
}

// Merge merges src into dst and returns dst. Mappings present in both are
// merged recursively; any other value in src replaces the one in dst.
// A nil dst is allocated.
func Merge(dst, src template.Params) template.Params {
	if dst == nil {
		dst = make(template.Params, len(src))
	}

	for k, v := range src {
		sv, sok := v.(template.Params)
		dv, dok := dst[k].(template.Params)

		if sok && dok {
			dst[k] = Merge(dv, sv)

			continue
		}

		dst[k] = v
	}

	return dst
}
