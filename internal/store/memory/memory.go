// Package memory provides an in-memory store used for tests, ephemeral
// runs, and the seeded demo mode. It carries the full capability set plus
// knobs to force read-only behavior and injected failures.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/workjay-it/lpgtrack/pkg/types"
)

// Compile-time capability assertions.
var (
	_ types.Store      = (*Store)(nil)
	_ types.RowWriter  = (*Store)(nil)
	_ types.BulkWriter = (*Store)(nil)
)

// Store keeps the table in process memory. Snapshots are cloned on the way
// in and out, so callers can never alias internal state.
type Store struct {
	mu    sync.RWMutex
	table types.CylinderTable

	readOnly bool
	failRead bool
}

// New returns an empty store.
func New() *Store {
	return &Store{table: types.CylinderTable{}}
}

// NewSeeded returns a store pre-loaded with a copy of the given table.
func NewSeeded(table types.CylinderTable) *Store {
	return &Store{table: table.Clone()}
}

// SetReadOnly toggles write rejection; writers then return ErrStoreReadOnly.
func (s *Store) SetReadOnly(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readOnly = v
}

// FailReads toggles read failure injection; ReadAll then returns
// ErrStoreUnavailable.
func (s *Store) FailReads(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failRead = v
}

// ReadAll returns a snapshot of the table.
func (s *Store) ReadAll(ctx context.Context) (types.CylinderTable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failRead {
		return nil, fmt.Errorf("%w: injected read failure", types.ErrStoreUnavailable)
	}
	return s.table.Clone(), nil
}

// WriteRow replaces the stored row with the same CylinderID.
func (s *Store) WriteRow(ctx context.Context, rec types.CylinderRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readOnly {
		return fmt.Errorf("%w: memory store", types.ErrStoreReadOnly)
	}
	for i := range s.table {
		if s.table[i].CylinderID == rec.CylinderID {
			s.table[i] = rec.Clone()
			return nil
		}
	}
	return fmt.Errorf("cylinder %q: %w", rec.CylinderID, types.ErrRecordNotFound)
}

// WriteAll replaces the whole table.
func (s *Store) WriteAll(ctx context.Context, table types.CylinderTable) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readOnly {
		return fmt.Errorf("%w: memory store", types.ErrStoreReadOnly)
	}
	s.table = table.Clone()
	if s.table == nil {
		s.table = types.CylinderTable{}
	}
	return nil
}

// Close releases nothing.
func (s *Store) Close() error { return nil }
