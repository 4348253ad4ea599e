package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/ruiner/log"
	"github.com/ardnew/ruiner/template"
)

// Lint statically checks templates for malformed markers, unknown
// references and reference cycles.
type Lint struct {
	Library Library `embed:""`

	Templates []string `arg:"" help:"Template files or library template names; every library template if omitted" name:"template" optional:""`
}

// Run executes the lint command. It fails if any issue is an error.
func (l *Lint) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	reg, err := l.Library.Load(ctx)
	if err != nil {
		return template.WrapError(err).With(slog.String("command", "lint"))
	}

	names := make([]string, 0, len(l.Templates))

	for _, arg := range l.Templates {
		var name string

		name, reg, err = l.Library.Include(reg, arg)
		if err != nil {
			return template.WrapError(err).With(slog.String("command", "lint"))
		}

		names = append(names, name)
	}

	issues := template.Lint(reg, names...)

	log.DebugContext(ctx, "lint",
		slog.Int("templates", len(reg)),
		slog.Int("issues", len(issues)),
	)

	out := stdout(ctx)
	for _, issue := range issues {
		if _, err := fmt.Fprintln(out, issue); err != nil {
			return ErrWriteOutput.Wrap(err)
		}
	}

	if template.HasErrors(issues) {
		return ErrLintFailed.With(slog.Int("issues", len(issues)))
	}

	return nil
}
