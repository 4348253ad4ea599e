package params

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/expr-lang/expr"

	"github.com/ardnew/ruiner/template"
)

// PathSeparator separates the names of an assignment path.
const PathSeparator = "."

// Set assigns the literal string value of an assignment "path=value" in p
// and returns p. Intermediate mappings are created as needed.
func Set(p template.Params, assignment string) (template.Params, error) {
	path, value, err := split(assignment)
	if err != nil {
		return p, err
	}

	return assign(p, path, value, assignment)
}

// SetExpr evaluates the expr-lang expression of an assignment "path=expr"
// with p as its environment, normalizes the result, and assigns it in p.
//
//	rows=map(1..3, ({cell: string(#)}))
//	title=upper(name) + "!"
func SetExpr(ctx context.Context, p template.Params, assignment string) (template.Params, error) {
	path, source, err := split(assignment)
	if err != nil {
		return p, err
	}

	if err := ctx.Err(); err != nil {
		return p, err
	}

	env := map[string]any(p)
	if env == nil {
		env = map[string]any{}
	}

	program, err := expr.Compile(source, expr.Env(env), expr.AllowUndefinedVariables())
	if err != nil {
		return p, ErrExpression.Wrap(err).With(slog.String("assignment", assignment))
	}

	out, err := expr.Run(program, env)
	if err != nil {
		return p, ErrExpression.Wrap(err).With(slog.String("assignment", assignment))
	}

	value, err := Normalize(out)
	if err != nil {
		return p, template.WrapError(err).With(slog.String("assignment", assignment))
	}

	return assign(p, path, value, assignment)
}

// split separates an assignment into its path and right-hand side.
func split(assignment string) ([]string, string, error) {
	lhs, rhs, ok := strings.Cut(assignment, "=")
	if !ok {
		return nil, "", ErrAssignment.
			Wrap(fmt.Errorf("missing %q", "=")).
			With(slog.String("assignment", assignment))
	}

	path := strings.Split(strings.TrimSpace(lhs), PathSeparator)
	for _, name := range path {
		if !template.IsName(name) {
			return nil, "", ErrAssignment.
				Wrap(fmt.Errorf("%q is not a valid name", name)).
				With(slog.String("assignment", assignment))
		}
	}

	return path, rhs, nil
}

func assign(p template.Params, path []string, value any, assignment string) (template.Params, error) {
	if p == nil {
		p = template.Params{}
	}

	scope := p

	for i, name := range path[:len(path)-1] {
		switch next := scope[name].(type) {
		case nil:
			m := template.Params{}
			scope[name] = m
			scope = m

		case template.Params:
			scope = next

		default:
			return p, ErrAssignment.
				Wrap(fmt.Errorf("%s is not a mapping",
					strings.Join(path[:i+1], PathSeparator))).
				With(slog.String("assignment", assignment))
		}
	}

	scope[path[len(path)-1]] = value

	return p, nil
}

// Sources lists the inputs of a parameter tree in the order they apply:
// files are merged first, then literal assignments, then expression
// assignments.
type Sources struct {
	Files   []string
	Set     []string
	SetExpr []string
}

// Load builds the parameter tree described by s.
func (s Sources) Load(ctx context.Context) (template.Params, error) {
	p := template.Params{}

	for _, file := range s.Files {
		f, err := LoadFile(ctx, file)
		if err != nil {
			return nil, err
		}

		p = Merge(p, f)
	}

	var err error

	for _, a := range s.Set {
		if p, err = Set(p, a); err != nil {
			return nil, err
		}
	}

	for _, a := range s.SetExpr {
		if p, err = SetExpr(ctx, p, a); err != nil {
			return nil, err
		}
	}

	return p, nil
}
