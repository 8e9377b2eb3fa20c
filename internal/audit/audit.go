// Package audit records applied mutations as an append-only JSONL trail.
// The trail is advisory: a failed append is reported to the caller but never
// rolls back the mutation that produced it.
package audit

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FileName is the trail file inside the data directory.
const FileName = "audit.jsonl"

// Entry is one trail line.
type Entry struct {
	ID          string    `json:"id"`
	At          time.Time `json:"at"`
	Op          string    `json:"op"`
	CylinderID  string    `json:"cylinder_id"`
	Detail      string    `json:"detail,omitempty"`
	Persistence string    `json:"persistence"`
}

// Trail appends entries to a JSONL file, one line per mutation.
type Trail struct {
	path string
	mu   sync.Mutex
}

// New returns a Trail writing to dir/audit.jsonl.
func New(dir string) *Trail {
	return &Trail{path: filepath.Join(dir, FileName)}
}

// Path returns the trail file.
func (t *Trail) Path() string { return t.path }

// Append writes one entry to the trail. A missing ID or timestamp is filled
// in before writing.
func (t *Trail) Append(e Entry) error {
	if e.ID == "" {
		e.ID = newEntryID()
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding audit entry: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(t.path), 0o755); err != nil {
		return fmt.Errorf("creating audit dir: %w", err)
	}
	f, err := os.OpenFile(t.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", t.path, err)
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("appending audit entry: %w", err)
	}
	return nil
}

// Read returns every parseable entry, oldest first. Empty and malformed
// lines are skipped. A missing trail file reads as an empty trail.
func (t *Trail) Read() ([]Entry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := os.Open(t.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", t.path, err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(line, &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", t.path, err)
	}
	return entries, nil
}

// newEntryID generates a UUID v7 so trail IDs sort by time.
func newEntryID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
