package types

import (
	"context"
	"errors"
)

// Store is the minimal capability every backend provides: read the full
// table and release resources. Write support is advertised through the
// optional RowWriter and BulkWriter interfaces; callers type-assert for
// the capability they need and degrade when it is absent.
type Store interface {
	// ReadAll returns every record in the backing store. Failures of any
	// kind (missing file, unreachable host, rejected credentials) surface
	// as ErrStoreUnavailable wrapped with detail; callers treat the
	// condition as recoverable.
	ReadAll(ctx context.Context) (CylinderTable, error)

	// Close releases backend resources. Idempotent.
	Close() error
}

// RowWriter is the per-row write capability. Backends with a keyed update
// primitive (relational tables) implement it.
type RowWriter interface {
	// WriteRow replaces the stored row whose CylinderID matches rec.
	// Returns ErrRecordNotFound when no such row exists and
	// ErrStoreReadOnly when the store rejects writes.
	WriteRow(ctx context.Context, rec CylinderRecord) error
}

// BulkWriter is the whole-table write capability. Backends without a keyed
// update primitive (flat files, spreadsheet grids, object storage)
// implement it instead of, or in addition to, RowWriter.
type BulkWriter interface {
	// WriteAll replaces the stored table with the given one.
	// Returns ErrStoreReadOnly when the store rejects writes.
	WriteAll(ctx context.Context, table CylinderTable) error
}

// Store operation errors.
var (
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrStoreReadOnly    = errors.New("store is read-only")
	ErrRecordNotFound   = errors.New("record not found")
)
