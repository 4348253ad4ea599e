package repl

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/natefinch/atomic"
)

const baseHistory = "history.utf8"

// maxHistory bounds the number of entries kept in the history file.
const maxHistory = 1000

// Mode prefixes of persisted history entries.
const (
	prefixRender = "R:"
	prefixCtrl   = "C:"
)

// HistoryEntry is a single submitted input line and the mode it was
// submitted in.
type HistoryEntry struct {
	Line string
	Mode inputMode
}

// String returns the persisted form of e.
func (e HistoryEntry) String() string {
	if e.Mode == modeCtrl {
		return prefixCtrl + e.Line
	}

	return prefixRender + e.Line
}

// parseHistoryEntry decodes a persisted history line. Lines without a known
// prefix are render-mode entries.
func parseHistoryEntry(s string) HistoryEntry {
	if line, ok := strings.CutPrefix(s, prefixCtrl); ok {
		return HistoryEntry{Line: line, Mode: modeCtrl}
	}

	line, _ := strings.CutPrefix(s, prefixRender)

	return HistoryEntry{Line: line, Mode: modeRender}
}

// History is the list of submitted inputs, persisted to a file.
// The zero path keeps history in memory only.
type History struct {
	path    string
	entries []HistoryEntry
	mu      sync.RWMutex
}

// NewHistory creates a History backed by the file at path.
func NewHistory(path string) *History {
	return &History{path: path}
}

// Load replaces the entries with those of the history file. A missing file
// is an empty history.
func (h *History) Load() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = nil

	if h.path == "" {
		return nil
	}

	file, err := os.Open(h.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		h.entries = append(h.entries, parseHistoryEntry(line))
	}

	return scanner.Err()
}

// Append adds line to the history in the given mode. An earlier identical
// entry is moved to the end rather than repeated. Trailing whitespace is
// dropped and blank lines are ignored.
func (h *History) Append(line string, mode inputMode) error {
	// Leading whitespace is significant to template lines.
	line = strings.TrimRight(line, " \t\r")
	if strings.TrimSpace(line) == "" {
		return nil
	}

	entry := HistoryEntry{Line: line, Mode: mode}

	h.mu.Lock()
	defer h.mu.Unlock()

	if n := len(h.entries); n > 0 && h.entries[n-1] == entry {
		return nil
	}

	rewrite := false

	for i, e := range h.entries {
		if e == entry {
			h.entries = append(h.entries[:i], h.entries[i+1:]...)
			rewrite = true

			break
		}
	}

	h.entries = append(h.entries, entry)

	if over := len(h.entries) - maxHistory; over > 0 {
		h.entries = h.entries[over:]
		rewrite = true
	}

	if h.path == "" {
		return nil
	}

	if rewrite {
		return h.save()
	}

	file, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.WriteString(entry.String() + "\n")

	return err
}

// Entry returns the entry at index i, where 0 is the oldest.
func (h *History) Entry(i int) (HistoryEntry, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if i < 0 || i >= len(h.entries) {
		return HistoryEntry{}, ErrOutOfBounds
	}

	return h.entries[i], nil
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.entries)
}

// save replaces the history file with the current entries.
// Must be called with h.mu held.
func (h *History) save() error {
	var b strings.Builder

	for _, e := range h.entries {
		b.WriteString(e.String())
		b.WriteByte('\n')
	}

	return atomic.WriteFile(h.path, strings.NewReader(b.String()))
}
