package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ardnew/ruiner/log"
	"github.com/ardnew/ruiner/template"
)

const defaultEditor = "vi"

// editTemplateCommand implements [tea.ExecCommand] for the multi-line
// edit-render-retry loop. It writes the scratch template to a temp file,
// opens the user's editor, and renders the result. On render error the user
// is prompted to re-edit.
type editTemplateCommand struct {
	text    string
	ext     string
	session *session
	ctxFunc func() context.Context
	logger  log.Logger

	// Set by Run on success.
	edited   string
	rendered string

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editTemplateCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editTemplateCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editTemplateCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit-render-retry loop. An empty file cancels the edit
// with no error. If the user declines to re-edit after a render error, Run
// returns [ErrEditDeclined].
func (c *editTemplateCommand) Run() error {
	ctx := c.ctxFunc()

	f, err := os.CreateTemp(os.TempDir(), "ruiner-repl-*"+c.ext)
	if err != nil {
		return err
	}

	tmpPath := f.Name()

	defer os.Remove(tmpPath)

	if err := f.Chmod(0o600); err != nil {
		f.Close()

		return err
	}

	f.Close()

	content := c.text

	for {
		if err := os.WriteFile(tmpPath, []byte(content), 0o600); err != nil {
			return err
		}

		data, err := runEditor(ctx, c.stdin, c.stdout, c.stderr, tmpPath)
		if err != nil {
			return err
		}

		// Editors usually terminate the file with a newline that is not
		// part of the template.
		content = strings.TrimSuffix(data, template.Delimiter)
		if strings.TrimSpace(content) == "" {
			return nil
		}

		out, renderErr := c.session.render(ctx, content)
		c.logger.TraceContext(
			ctx,
			"editor render attempt",
			slog.Int("content_length", len(content)),
			slog.Bool("success", renderErr == nil),
		)

		if renderErr == nil {
			c.edited = content
			c.rendered = out

			return nil
		}

		fmt.Fprintf(c.stderr, "\nRender error: %s\n", renderErr)
		fmt.Fprintf(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		response := strings.TrimSpace(strings.ToLower(scanner.Text()))
		if response == "n" || response == "no" {
			return ErrEditDeclined
		}
	}
}

// runEditor launches the user's editor on the given file path and returns
// the edited file content.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) (string, error) {
	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}

	if editor == "" {
		editor = defaultEditor
	}

	// EDITOR may carry arguments, as in "code --wait".
	args := strings.Fields(editor)

	cmd := exec.CommandContext(ctx, args[0], append(args[1:], path)...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	return string(data), nil
}
