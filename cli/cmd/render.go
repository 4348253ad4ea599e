package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/ruiner/log"
	"github.com/ardnew/ruiner/template"
)

// Render renders a template with a parameter tree.
type Render struct {
	Library    Library    `embed:""`
	Parameters Parameters `embed:""`

	Template string `arg:"" help:"Template file, library template name, or '-' for stdin" name:"template"`
	Output   string `       help:"Write output to file instead of stdout"                               placeholder:"FILE" short:"o" type:"path"`
	MaxDepth int    `       help:"Maximum reference nesting depth" default:"${maxDepth}"`
}

// Run executes the render command.
func (r *Render) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	name, reg, err := r.Library.Resolve(ctx, r.Template)
	if err != nil {
		return template.WrapError(err).With(slog.String("command", "render"))
	}

	p, err := r.Parameters.Load(ctx)
	if err != nil {
		return template.WrapError(err).With(slog.String("command", "render"))
	}

	log.DebugContext(ctx, "render",
		slog.String("template", name),
		slog.Int("templates", len(reg)),
		slog.Int("params", len(p)),
	)

	out, err := reg.Render(ctx, name, p,
		template.WithMaxDepth(r.MaxDepth),
		template.WithLogger(log.Default()),
	)
	if err != nil {
		return template.WrapError(err).With(
			slog.String("command", "render"),
			slog.String("template", name),
		)
	}

	return writeOutput(ctx, r.Output, out)
}
