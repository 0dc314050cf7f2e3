package repl

import (
	"bufio"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
)

const (
	baseHistory = "history.utf8"

	historyFileMode os.FileMode = 0o600
)

// History line prefixes identifying the input mode of each entry.
const (
	aliasPrefix = "A:"
	ctrlPrefix  = "C:"
)

// HistoryEntry is one submitted line and the input mode it was entered in.
type HistoryEntry struct {
	Text string
	Mode inputMode
}

// String returns the entry in its persisted form. Text is quoted so that
// aliases edited in $EDITOR keep their line breaks.
func (e HistoryEntry) String() string {
	prefix := aliasPrefix
	if e.Mode == modeCtrl {
		prefix = ctrlPrefix
	}

	return prefix + strconv.Quote(e.Text)
}

// parseHistoryEntry decodes a persisted history line.
func parseHistoryEntry(line string) (HistoryEntry, bool) {
	mode := modeAlias

	text, ok := strings.CutPrefix(line, aliasPrefix)
	if !ok {
		text, ok = strings.CutPrefix(line, ctrlPrefix)
		if !ok {
			return HistoryEntry{}, false
		}

		mode = modeCtrl
	}

	if unquoted, err := strconv.Unquote(text); err == nil {
		text = unquoted
	}

	if strings.TrimSpace(text) == "" {
		return HistoryEntry{}, false
	}

	return HistoryEntry{Text: text, Mode: mode}, true
}

// History is the persisted list of submitted aliases and control commands.
// The most recent entry is last, and no two entries are identical.
type History struct {
	path    string
	entries []HistoryEntry
	mu      sync.RWMutex
}

// NewHistory returns an empty History persisted at path. An empty path keeps
// the history in memory only.
func NewHistory(path string) *History {
	return &History{path: path}
}

// Load replaces the entries with those read from the history file. A missing
// file is an empty history.
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
		entry, ok := parseHistoryEntry(strings.TrimSpace(scanner.Text()))
		if !ok {
			continue
		}

		h.entries = slices.DeleteFunc(h.entries, entry.equal)
		h.entries = append(h.entries, entry)
	}

	return scanner.Err()
}

func (e HistoryEntry) equal(other HistoryEntry) bool {
	return e.Text == other.Text && e.Mode == other.Mode
}

// Add appends text to the history. An earlier identical entry moves to the
// end instead of being duplicated.
func (h *History) Add(text string, mode inputMode) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	entry := HistoryEntry{Text: text, Mode: mode}

	h.mu.Lock()
	defer h.mu.Unlock()

	if n := len(h.entries); n > 0 && h.entries[n-1].equal(entry) {
		return nil
	}

	before := len(h.entries)
	h.entries = slices.DeleteFunc(h.entries, entry.equal)
	moved := len(h.entries) != before
	h.entries = append(h.entries, entry)

	if h.path == "" {
		return nil
	}

	if moved {
		return h.rewrite()
	}

	file, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, historyFileMode)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = file.WriteString(entry.String() + "\n")

	return err
}

// Entry returns the entry at index i, oldest first.
func (h *History) Entry(i int) (HistoryEntry, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if i < 0 || i >= len(h.entries) {
		return HistoryEntry{}, ErrOutOfBounds.With(
			slog.Int("index", i),
			slog.Int("len", len(h.entries)),
		)
	}

	return h.entries[i], nil
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.entries)
}

// Entries returns a copy of all entries, oldest first.
func (h *History) Entries() []HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return slices.Clone(h.entries)
}

// rewrite replaces the history file with the current entries. The caller
// must hold h.mu.
func (h *History) rewrite() error {
	var b strings.Builder

	for _, entry := range h.entries {
		b.WriteString(entry.String())
		b.WriteByte('\n')
	}

	return os.WriteFile(h.path, []byte(b.String()), historyFileMode)
}
