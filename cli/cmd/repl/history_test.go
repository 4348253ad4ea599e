package repl

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/ruiner/log"
)

var zeroLogger log.Logger

func TestHistoryAppendLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatalf("Load() on missing file: %v", err)
	}

	for _, e := range []HistoryEntry{
		{"\t<!-- (ref)Row -->", modeRender},
		{"list", modeCtrl},
		{"  ", modeRender},
		{"list", modeCtrl},
		{"<br/>  ", modeRender},
		{"\t<!-- (ref)Row -->", modeRender},
	} {
		if err := h.Append(e.Line, e.Mode); err != nil {
			t.Fatalf("Append(%q): %v", e.Line, err)
		}
	}

	want := []HistoryEntry{
		{"list", modeCtrl},
		{"<br/>", modeRender},
		{"\t<!-- (ref)Row -->", modeRender},
	}

	reloaded := NewHistory(path)
	if err := reloaded.Load(); err != nil {
		t.Fatal(err)
	}

	for _, hist := range []*History{h, reloaded} {
		got := make([]HistoryEntry, hist.Len())
		for i := range got {
			e, err := hist.Entry(i)
			if err != nil {
				t.Fatal(err)
			}

			got[i] = e
		}

		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("entries mismatch (-want +got):\n%s", diff)
		}
	}

	if _, err := h.Entry(len(want)); err != ErrOutOfBounds {
		t.Errorf("Entry(%d) error = %v, want %v", len(want), err, ErrOutOfBounds)
	}
}

func TestHistoryLegacyLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	if err := os.WriteFile(path, []byte("C:quit\nplain line\r\n\nR:x\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatal(err)
	}

	want := []HistoryEntry{
		{"quit", modeCtrl},
		{"plain line", modeRender},
		{"x", modeRender},
	}

	if h.Len() != len(want) {
		t.Fatalf("Len() = %d, want %d", h.Len(), len(want))
	}

	for i, w := range want {
		if got, _ := h.Entry(i); got != w {
			t.Errorf("Entry(%d) = %+v, want %+v", i, got, w)
		}
	}
}

func TestHistoryLimit(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), baseHistory))

	for i := range maxHistory + 5 {
		if err := h.Append(fmt.Sprintf("line %d", i), modeRender); err != nil {
			t.Fatal(err)
		}
	}

	if h.Len() != maxHistory {
		t.Errorf("Len() = %d, want %d", h.Len(), maxHistory)
	}
}

func TestHistoryInMemory(t *testing.T) {
	h := NewHistory("")
	if err := h.Load(); err != nil {
		t.Fatal(err)
	}

	if err := h.Append("x", modeRender); err != nil {
		t.Fatal(err)
	}

	if h.Len() != 1 {
		t.Errorf("Len() = %d, want 1", h.Len())
	}
}
