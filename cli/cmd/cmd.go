package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/natefinch/atomic"

	"github.com/ardnew/ruiner/params"
	"github.com/ardnew/ruiner/template"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// stdout returns the standard output of the kong application in ctx,
// falling back to [os.Stdout].
func stdout(ctx context.Context) io.Writer {
	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Stdout != nil {
		return ktx.Stdout
	}

	return os.Stdout
}

// stdinSource names standard input wherever a template file is expected.
const stdinSource = "-"

// stdinName is the registry name of a template read from standard input.
const stdinName = "stdin"

// Library selects the template directories searched for references.
type Library struct {
	Dir []string `default:"${dirs}" help:"Template search directory; earlier directories win" placeholder:"DIR" sep:":" short:"d"`
	Ext string   `default:"${ext}"  help:"Template file extension"                                               short:"x"`
}

// Load reads every template found in the search directories.
func (l Library) Load(ctx context.Context) (template.Registry, error) {
	return template.LoadDirs(ctx, l.Ext, l.Dir...)
}

// Resolve loads the library and locates the template named by arg.
// See [Library.Include].
func (l Library) Resolve(
	ctx context.Context,
	arg string,
) (string, template.Registry, error) {
	reg, err := l.Load(ctx)
	if err != nil {
		return "", nil, err
	}

	return l.Include(reg, arg)
}

// Include locates the template named by arg in reg.
//
// An arg naming an existing regular file (or "-" for standard input) is read
// and registered under its base name without extension, shadowing any
// library template of the same name. Any other arg must name a template
// already in reg.
func (l Library) Include(
	reg template.Registry,
	arg string,
) (string, template.Registry, error) {
	name, text, ok, err := readTemplateArg(arg)
	if err != nil {
		return "", nil, err
	}

	if ok {
		return name, template.Registry{name: template.New(text)}.Merge(reg), nil
	}

	if _, found := reg.Lookup(arg); !found {
		return "", nil, template.ErrLookupFailure.
			Wrap(fmt.Errorf("%q is neither a file nor a template in %s",
				arg, strings.Join(l.Dir, string(os.PathListSeparator)))).
			With(slog.String("template", arg))
	}

	return arg, reg, nil
}

// readTemplateArg reads arg if it names standard input or a regular file.
// It reports false, with no error, when arg is not a file.
func readTemplateArg(arg string) (name, text string, ok bool, err error) {
	if arg == stdinSource {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", false, ErrReadInput.Wrap(err).
				With(slog.String("file", arg))
		}

		return stdinName, string(b), true, nil
	}

	info, err := os.Stat(arg)
	if err != nil || !info.Mode().IsRegular() {
		return "", "", false, nil
	}

	b, err := os.ReadFile(arg)
	if err != nil {
		return "", "", false, ErrReadInput.Wrap(err).
			With(slog.String("file", arg))
	}

	base := filepath.Base(arg)

	return strings.TrimSuffix(base, filepath.Ext(base)), string(b), true, nil
}

// Parameters collects the parameter sources of a command.
type Parameters struct {
	Params  []string `help:"YAML or JSON parameter file; later files win" placeholder:"FILE"      short:"p"  type:"existingfile"`
	Set     []string `help:"Assign a literal string to a dotted parameter path"  placeholder:"NAME=VALUE" sep:"none" short:"s"`
	SetExpr []string `help:"Assign the result of an expression to a dotted parameter path" placeholder:"NAME=EXPR"  sep:"none"`
}

// Load builds the parameter tree: files first, then --set, then --set-expr.
func (p Parameters) Load(ctx context.Context) (template.Params, error) {
	return params.Sources{
		Files:   p.Params,
		Set:     p.Set,
		SetExpr: p.SetExpr,
	}.Load(ctx)
}

// writeOutput writes text to the file at path, replacing it atomically, or
// to standard output with a trailing newline if path is empty.
func writeOutput(ctx context.Context, path, text string) error {
	if path == "" {
		_, err := fmt.Fprintln(stdout(ctx), text)
		if err != nil {
			return ErrWriteOutput.Wrap(err)
		}

		return nil
	}

	err := atomic.WriteFile(path, strings.NewReader(text))
	if err != nil {
		return ErrWriteOutput.Wrap(err).With(slog.String("file", path))
	}

	return nil
}
