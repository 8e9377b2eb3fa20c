// Package mutate applies single-record changes to the cylinder table and
// writes them through to the store. Each operation validates its input
// before touching anything, works on its own copy of the table, and reports
// how far the write got: a read-only store degrades the outcome to memory
// only instead of failing the mutation.
package mutate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/workjay-it/lpgtrack/internal/audit"
	"github.com/workjay-it/lpgtrack/internal/logging"
	"github.com/workjay-it/lpgtrack/internal/metrics"
	"github.com/workjay-it/lpgtrack/pkg/inspection"
	"github.com/workjay-it/lpgtrack/pkg/penalty"
	"github.com/workjay-it/lpgtrack/pkg/types"
)

var log = logging.Component("mutate")

// Persistence says how far a mutation's write got.
type Persistence string

const (
	// Persisted means the change reached the store.
	Persisted Persistence = "persisted"
	// MemoryOnly means the change applied to the table but the store could
	// not take it; the operator should export the table to keep the change.
	MemoryOnly Persistence = "memory_only"
)

// Operation names as they appear in metrics and the audit trail.
const (
	OpRefill = "refill"
	OpAdd    = "add"
	OpReturn = "return"
)

// Invalidator drops a cached table; a successful mutation calls it so the
// next load cannot serve pre-mutation data.
type Invalidator interface {
	Invalidate()
}

// Outcome reports one applied mutation: the updated table, the record it
// touched, how far the write got, and the liability charged on returns.
type Outcome struct {
	Table       types.CylinderTable
	Record      types.CylinderRecord
	Persistence Persistence
	Liability   int
}

// Coordinator validates, applies and persists mutations. The caller owns the
// table snapshot and passes it in; the input table is never modified, the
// updated copy comes back in the Outcome.
type Coordinator struct {
	store types.Store
	cache Invalidator
	trail *audit.Trail
	now   func() time.Time
}

// New returns a Coordinator writing through store. cache may be nil when no
// loader cache needs dropping; trail may be nil when auditing is off.
func New(store types.Store, cache Invalidator, trail *audit.Trail) *Coordinator {
	return &Coordinator{store: store, cache: cache, trail: trail, now: time.Now}
}

// ApplyFillUpdate sets one record's fill level and stamps the fill date.
// The test schedule and status stay untouched; a refill is not a retest.
func (c *Coordinator) ApplyFillUpdate(ctx context.Context, table types.CylinderTable, id string, fillPercent int) (*Outcome, error) {
	if fillPercent < 0 || fillPercent > 100 {
		return nil, fmt.Errorf("%w: %d", types.ErrInvalidRange, fillPercent)
	}

	work := table.Clone()
	rec := findByID(work, id)
	if rec == nil {
		return nil, fmt.Errorf("%w: %s", types.ErrRecordNotFound, id)
	}

	now := c.now().UTC()
	rec.FillPercent = fillPercent
	rec.LastFillDate = &now

	pers, err := c.persistRow(ctx, work, rec)
	if err != nil {
		return nil, err
	}
	c.finish(OpRefill, rec.CylinderID, fmt.Sprintf("fill set to %d%%", fillPercent), pers)
	return &Outcome{Table: work, Record: rec.Clone(), Persistence: pers}, nil
}

// ApplyNewRecord validates fields, derives the test schedule and appends the
// record. The supplied next test date is ignored: it is always derived from
// the last test. New rows go through a whole-table write; the store contract
// has no row-insert primitive.
func (c *Coordinator) ApplyNewRecord(ctx context.Context, table types.CylinderTable, fields types.CylinderRecord) (*Outcome, error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	pin, err := types.ValidatePIN(fields.LocationPIN)
	if err != nil {
		return nil, err
	}
	if findByID(table, fields.CylinderID) != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrDuplicateID, fields.CylinderID)
	}

	now := c.now().UTC()
	rec := fields.Clone()
	rec.LocationPIN = pin
	if rec.Status == "" {
		rec.Status = types.StatusFull
	}
	rec.NextTestDue = inspection.NextDueAt(rec.LastTestDate)
	rec.Overdue = inspection.IsOverdue(rec.NextTestDue, now)

	work := append(table.Clone(), rec)
	pers, err := c.persistAll(ctx, work)
	if err != nil {
		return nil, err
	}
	c.finish(OpAdd, rec.CylinderID, fmt.Sprintf("added, capacity %dkg", rec.CapacityKg), pers)
	return &Outcome{Table: work, Record: rec.Clone(), Persistence: pers}, nil
}

// ApplyReturn books a cylinder back in: status follows the reported
// condition, the fill level is zeroed, and the liability is computed from
// the condition and the record's overdue state.
func (c *Coordinator) ApplyReturn(ctx context.Context, table types.CylinderTable, id, condition string) (*Outcome, error) {
	work := table.Clone()
	rec := findByID(work, id)
	if rec == nil {
		return nil, fmt.Errorf("%w: %s", types.ErrRecordNotFound, id)
	}

	if condition == types.ConditionGood {
		rec.Status = types.StatusEmpty
	} else {
		rec.Status = types.StatusDamaged
	}
	rec.FillPercent = 0
	liability := penalty.Evaluate(condition, rec.Overdue)

	pers, err := c.persistRow(ctx, work, rec)
	if err != nil {
		return nil, err
	}
	c.finish(OpReturn, rec.CylinderID, fmt.Sprintf("returned %s, liability %d", condition, liability), pers)
	return &Outcome{Table: work, Record: rec.Clone(), Persistence: pers, Liability: liability}, nil
}

// persistRow writes one changed record through the store: row-level when the
// store can do that, whole-table otherwise. A store that rejects the row as
// unknown gets the full table instead; the snapshot is authoritative during
// a mutation.
func (c *Coordinator) persistRow(ctx context.Context, table types.CylinderTable, rec *types.CylinderRecord) (Persistence, error) {
	if rw, ok := c.store.(types.RowWriter); ok {
		err := rw.WriteRow(ctx, *rec)
		switch {
		case err == nil:
			return Persisted, nil
		case errors.Is(err, types.ErrStoreReadOnly):
			return MemoryOnly, nil
		case errors.Is(err, types.ErrRecordNotFound):
		default:
			metrics.StoreErrors.WithLabelValues("write_row").Inc()
			return "", err
		}
	}
	return c.persistAll(ctx, table)
}

// persistAll replaces the store contents with table. Stores that cannot
// bulk-write and stores that refuse writes both degrade to memory only.
func (c *Coordinator) persistAll(ctx context.Context, table types.CylinderTable) (Persistence, error) {
	bw, ok := c.store.(types.BulkWriter)
	if !ok {
		return MemoryOnly, nil
	}
	if err := bw.WriteAll(ctx, table); err != nil {
		if errors.Is(err, types.ErrStoreReadOnly) {
			return MemoryOnly, nil
		}
		metrics.StoreErrors.WithLabelValues("write_all").Inc()
		return "", err
	}
	return Persisted, nil
}

// finish runs the bookkeeping every successful mutation shares: cache
// invalidation, metrics, the audit line, and the memory-only warning.
func (c *Coordinator) finish(op, id, detail string, pers Persistence) {
	if c.cache != nil {
		c.cache.Invalidate()
	}
	metrics.Mutations.WithLabelValues(op, string(pers)).Inc()
	if pers == MemoryOnly {
		log.WithFields(logrus.Fields{"op": op, "cylinder": id}).
			Warn("change kept in memory only, export the table to keep it")
	}
	if c.trail != nil {
		if err := c.trail.Append(audit.Entry{Op: op, CylinderID: id, Detail: detail, Persistence: string(pers)}); err != nil {
			log.WithError(err).Warn("audit append failed")
		}
	}
}

func findByID(table types.CylinderTable, id string) *types.CylinderRecord {
	for i := range table {
		if table[i].CylinderID == id {
			return &table[i]
		}
	}
	return nil
}
