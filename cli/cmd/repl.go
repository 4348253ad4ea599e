package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/ruiner/cli/cmd/repl"
	"github.com/ardnew/ruiner/log"
	"github.com/ardnew/ruiner/template"
)

// Repl starts an interactive session that renders each entered line.
type Repl struct {
	Library    Library    `embed:""`
	Parameters Parameters `embed:""`

	MaxDepth int `default:"${maxDepth}" help:"Maximum reference nesting depth"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	var cacheDir string
	if ktx := kongContextFrom(ctx); ktx != nil {
		cacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	err = repl.Run(ctx, r.load, cacheDir, r.Library.Ext, log.Default(),
		template.WithMaxDepth(r.MaxDepth),
		template.WithLogger(log.Default()),
	)
	if err != nil {
		return template.WrapError(err).With(slog.String("command", "repl"))
	}

	return nil
}

// load reads the library and parameters. The REPL calls it again on reload,
// so edits to template and parameter files are picked up.
func (r *Repl) load(
	ctx context.Context,
) (template.Registry, template.Params, error) {
	reg, err := r.Library.Load(ctx)
	if err != nil {
		return nil, nil, err
	}

	p, err := r.Parameters.Load(ctx)
	if err != nil {
		return nil, nil, err
	}

	return reg, p, nil
}
