package template

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

// Render renders tmpl against params, resolving references in templates.
//
// Rendering either succeeds completely or returns an error matching one of
// [ErrLookupFailure], [ErrTypeMismatch], [ErrRecursionLimit], or the error of
// ctx if it is done before rendering completes. No partial output is
// returned.
func Render(
	ctx context.Context,
	tmpl *Template,
	params Params,
	templates Registry,
	opts ...Option,
) (string, error) {
	return tmpl.Render(ctx, params, templates, opts...)
}

// Render renders t against params, resolving references in templates.
// See [Render].
func (t *Template) Render(
	ctx context.Context,
	params Params,
	templates Registry,
	opts ...Option,
) (string, error) {
	r := renderer{config: makeConfig(opts...), registry: templates}

	r.logger.TraceContext(ctx, "render",
		slog.Int("lines", len(t.parsed())),
		slog.Int("templates", len(templates)),
		slog.Int("max-depth", r.maxDepth),
	)

	return r.template(ctx, t, params, "", "", nil)
}

// renderer carries the immutable state of one render.
type renderer struct {
	config
	registry Registry
}

// template renders every line of t, decorating each output line with left
// and right. chain holds the names of the references being rendered, outermost
// first.
func (r renderer) template(
	ctx context.Context,
	t *Template,
	scope Params,
	left, right string,
	chain []string,
) (string, error) {
	lines := t.parsed()
	out := make([]string, len(lines))

	for i := range lines {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		s, err := r.line(ctx, &lines[i], scope, left, right, chain)
		if err != nil {
			return "", err
		}

		out[i] = s
	}

	return strings.Join(out, Delimiter), nil
}

func (r renderer) line(
	ctx context.Context,
	line *Line,
	scope Params,
	left, right string,
	chain []string,
) (string, error) {
	switch line.Kind {
	case LineLiteral:
		return left + line.Text + right, nil

	case LineSingleReference:
		out, err := r.reference(
			ctx,
			line.Expressions[0],
			scope,
			left+line.Left,
			line.Right+right,
			chain,
		)
		if err != nil {
			return "", err
		}

		return strings.Join(out, Delimiter), nil

	default:
		return r.general(ctx, line, scope, left, right, chain)
	}
}

// general resolves every expression of line and zips the value sequences,
// truncating to the shortest.
func (r renderer) general(
	ctx context.Context,
	line *Line,
	scope Params,
	left, right string,
	chain []string,
) (string, error) {
	values := make([][]string, len(line.Expressions))

	for i, expr := range line.Expressions {
		var (
			v   []string
			err error
		)

		switch expr.Kind {
		case KindParameter:
			v, err = r.parameter(expr, scope)

		case KindReference:
			v, err = r.reference(ctx, expr, scope, "", "", chain)
		}

		if err != nil {
			return "", err
		}

		values[i] = v
	}

	n := len(values[0])
	for _, v := range values[1:] {
		n = min(n, len(v))
	}

	out := make([]string, n)

	var sb strings.Builder

	for i := range n {
		sb.Reset()
		sb.WriteString(left)

		k := 0

		for _, seg := range line.Segments {
			if !seg.IsExpression() {
				sb.WriteString(seg.Text)

				continue
			}

			sb.WriteString(values[k][i])
			k++
		}

		sb.WriteString(right)
		out[i] = sb.String()
	}

	return strings.Join(out, Delimiter), nil
}

// parameter returns the values substituted for a parameter expression.
func (r renderer) parameter(expr Expression, scope Params) ([]string, error) {
	v, ok := scope.Lookup(expr.Name)
	if !ok {
		if expr.Optional {
			return nil, nil
		}

		return []string{""}, nil
	}

	values, ok := asStrings(v)
	if !ok {
		return nil, ErrTypeMismatch.
			Wrap(fmt.Errorf("parameter %q is a %s, want string or list of strings",
				expr.Name, typeName(v))).
			With(slog.Any("expression", expr))
	}

	return values, nil
}

// reference returns one rendering of the referenced template per scope bound
// to the expression name.
func (r renderer) reference(
	ctx context.Context,
	expr Expression,
	scope Params,
	left, right string,
	chain []string,
) ([]string, error) {
	v, present := scope.Lookup(expr.Name)
	if expr.Optional && !present {
		return []string{""}, nil
	}

	sub, ok := r.registry.Lookup(expr.Name)
	if !ok {
		return nil, ErrLookupFailure.
			Wrap(fmt.Errorf("template %q not found", expr.Name)).
			With(slog.Any("expression", expr), slog.Any("chain", chain))
	}

	if slices.Contains(chain, expr.Name) {
		return nil, ErrRecursionLimit.
			Wrap(fmt.Errorf("template %q references itself", expr.Name)).
			With(slog.Any("chain", append(slices.Clip(chain), expr.Name)))
	}

	if len(chain) >= r.maxDepth {
		return nil, ErrRecursionLimit.
			Wrap(fmt.Errorf("template %q exceeds depth %d", expr.Name, r.maxDepth)).
			With(slog.Any("chain", chain))
	}

	scopes := []Params{{}}

	if present {
		if scopes, ok = asScopes(v); !ok {
			return nil, ErrTypeMismatch.
				Wrap(fmt.Errorf("reference %q is a %s, want mapping or list of mappings",
					expr.Name, typeName(v))).
				With(slog.Any("expression", expr))
		}
	}

	next := append(slices.Clip(chain), expr.Name)

	r.logger.TraceContext(ctx, "reference",
		slog.Any("expression", expr),
		slog.Int("depth", len(next)),
		slog.Int("scopes", len(scopes)),
	)

	out := make([]string, len(scopes))

	for i, s := range scopes {
		text, err := r.template(ctx, sub, s, left, right, next)
		if err != nil {
			return nil, err
		}

		out[i] = text
	}

	return out, nil
}
