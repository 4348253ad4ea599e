package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/ruiner/template"
)

// Inspect prints how each line of a template is classified.
type Inspect struct {
	Library Library `embed:""`

	Template string `arg:""                                      help:"Template file, library template name, or '-' for stdin" name:"template"`
	Format   string `default:"text" enum:"text,json,yaml"      help:"Output format"                                          short:"f"`
	Indent   int    `default:"2"                                 help:"Indent width for JSON and YAML output; 0 is compact"  short:"i"`
}

// inspection is the structured form of an inspected template.
type inspection struct {
	Template string          `json:"template" yaml:"template"`
	Lines    []template.Line `json:"lines"    yaml:"lines"`
}

// Run executes the inspect command.
func (i *Inspect) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	name, reg, err := i.Library.Resolve(ctx, i.Template)
	if err != nil {
		return template.WrapError(err).With(slog.String("command", "inspect"))
	}

	t, _ := reg.Lookup(name)
	in := inspection{Template: name, Lines: t.Lines()}

	var data []byte

	switch i.Format {
	case "text":
		_, err = io.WriteString(stdout(ctx), formatInspection(in))
		if err != nil {
			return ErrWriteOutput.Wrap(err)
		}

		return nil

	case "json":
		var b bytes.Buffer

		enc := json.NewEncoder(&b)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", strings.Repeat(" ", i.Indent))

		err = enc.Encode(in)
		data = b.Bytes()

	case "yaml":
		var opts []yaml.EncodeOption
		if i.Indent > 0 {
			opts = append(opts, yaml.Indent(i.Indent))
		} else {
			opts = append(opts, yaml.Flow(true))
		}

		data, err = yaml.MarshalContext(ctx, in, opts...)

	default:
		return ErrFormat.With(slog.String("format", i.Format))
	}

	if err != nil {
		return ErrWriteOutput.Wrap(err).With(slog.String("format", i.Format))
	}

	_, err = stdout(ctx).Write(data)
	if err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}

// formatInspection renders in as one row per line: number, kind, and text,
// followed by an indented row for each expression on the line.
func formatInspection(in inspection) string {
	var b strings.Builder

	width := len(template.LineSingleReference.String())

	fmt.Fprintf(&b, "%s\n", in.Template)

	for _, line := range in.Lines {
		fmt.Fprintf(&b, "%4d  %-*s  %q\n", line.Number, width, line.Kind, line.Text)

		for _, e := range line.Expressions {
			fmt.Fprintf(&b, "%4s  %-*s  %s\n", "", width, "", e)
		}
	}

	return b.String()
}
