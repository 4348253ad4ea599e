package cmd

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestLintRun(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"Page.xml": "<!-- (ref)Header -->\n<!-- (optional)(ref)Footer -->",
		"Header.xml": "<h1><!-- (param)title --></h1>",
	})

	lib := Library{Dir: []string{dir}, Ext: ".xml"}

	t.Run("clean", func(t *testing.T) {
		ctx, out := testContext(t, nil)

		cmd := Lint{Library: lib, Templates: []string{"Header"}}
		if err := cmd.Run(ctx); err != nil {
			t.Fatal(err)
		}

		if out.Len() != 0 {
			t.Errorf("output = %q, want empty", out.String())
		}
	})

	t.Run("warning_only", func(t *testing.T) {
		ctx, out := testContext(t, nil)

		cmd := Lint{Library: lib}
		if err := cmd.Run(ctx); err != nil {
			t.Fatal(err)
		}

		if !strings.Contains(out.String(), "Page:2:1: warning:") {
			t.Errorf("output = %q, want optional Footer warning", out.String())
		}
	})

	t.Run("error", func(t *testing.T) {
		extra := t.TempDir()
		writeFiles(t, extra, map[string]string{
			"Broken.xml": "<!-- (ref)Missing -->",
		})

		ctx, out := testContext(t, nil)

		cmd := Lint{Library: lib, Templates: []string{filepath.Join(extra, "Broken.xml")}}

		err := cmd.Run(ctx)
		if !errors.Is(err, ErrLintFailed) {
			t.Fatalf("Run() error = %v, want %v", err, ErrLintFailed)
		}

		if !strings.Contains(out.String(), "Broken:1:1: error:") {
			t.Errorf("output = %q, want unknown reference error", out.String())
		}
	})
}
