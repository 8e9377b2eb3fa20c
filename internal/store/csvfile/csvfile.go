// Package csvfile implements the flat-file store: the whole cylinder table
// lives in one delimited text file with the canonical header row. Writes
// replace the file atomically via the temp-file, fsync, rename pattern.
package csvfile

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/workjay-it/lpgtrack/internal/store/csvcodec"
	"github.com/workjay-it/lpgtrack/pkg/types"
)

// Store reads and rewrites a CSV file at a fixed path. ReadOnly models
// deployments where the checkout cannot be written; WriteAll then reports
// ErrStoreReadOnly and the caller degrades.
type Store struct {
	path     string
	readOnly bool
}

var (
	_ types.Store      = (*Store)(nil)
	_ types.BulkWriter = (*Store)(nil)
)

// New returns a Store over the CSV file at path.
func New(path string, readOnly bool) *Store {
	return &Store{path: path, readOnly: readOnly}
}

// Path returns the file backing this store.
func (s *Store) Path() string { return s.path }

// ReadAll parses the whole file. A missing or unreadable file surfaces as
// ErrStoreUnavailable; an existing but empty file is an empty table.
func (s *Store) ReadAll(ctx context.Context) (types.CylinderTable, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", types.ErrStoreUnavailable, s.path, err)
	}
	defer f.Close()

	table, err := csvcodec.ReadTable(f)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", types.ErrStoreUnavailable, s.path, err)
	}
	return table, nil
}

// WriteAll atomically replaces the file with the given table, creating the
// parent directory on first write.
func (s *Store) WriteAll(ctx context.Context, table types.CylinderTable) error {
	if s.readOnly {
		return fmt.Errorf("%w: %s", types.ErrStoreReadOnly, s.path)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".cylinders-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	w := bufio.NewWriter(tmp)
	if err := csvcodec.WriteTable(w, table); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("flushing buffer: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// Close releases nothing; the file is opened per call.
func (s *Store) Close() error { return nil }
