// Package changelog keeps the append-only history of board configuration
// changes. The history is an in-memory ordered list mirrored to a JSON file;
// every append rewrites the whole file, which keeps the on-disk format a
// plain readable array.
package changelog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Log manages the change history for one sketch.
type Log struct {
	path    string
	sink    io.Writer    // human-readable mirror, may be nil
	notify  func(string) // user-facing notification, may be nil
	mu      sync.Mutex
	entries []Entry
}

// Open loads the history at path. A missing or corrupt file reads as empty;
// history is never worth failing startup over.
func Open(path string, sink io.Writer, notify func(string)) *Log {
	l := &Log{path: path, sink: sink, notify: notify}

	if data, err := os.ReadFile(path); err == nil {
		json.Unmarshal(data, &l.entries)
	}
	return l
}

// Entries returns a copy of the history in append order.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}

// Append records one entry: in-memory list, full file rewrite, a formatted
// line on the sink, and a notification when the entry carries real changes.
// Initial sightings log silently.
func (l *Log) Append(entry Entry) error {
	l.mu.Lock()
	l.entries = append(l.entries, entry)
	err := l.writeLocked()
	l.mu.Unlock()

	if l.sink != nil {
		fmt.Fprintf(l.sink, "[%s] %s %s: %s\n",
			entry.Timestamp.Format("2006-01-02 15:04:05"), entry.ChangeType, entry.FQBN, entry.Summary())
	}
	if l.notify != nil && entry.ChangeType != ChangeInitial && len(entry.Changes) > 0 {
		l.notify(entry.Summary())
	}
	return err
}

// Clear empties the history and overwrites the file with an empty array.
func (l *Log) Clear() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
	return l.writeLocked()
}

func (l *Log) writeLocked() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return err
	}
	entries := l.entries
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(l.path, data, 0o644)
}
