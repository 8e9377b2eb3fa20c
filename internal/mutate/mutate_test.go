package mutate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workjay-it/lpgtrack/internal/audit"
	"github.com/workjay-it/lpgtrack/internal/loader"
	"github.com/workjay-it/lpgtrack/internal/store/memory"
	"github.com/workjay-it/lpgtrack/pkg/inspection"
	"github.com/workjay-it/lpgtrack/pkg/types"
)

// countingInvalidator records cache drops.
type countingInvalidator struct{ calls int }

func (c *countingInvalidator) Invalidate() { c.calls++ }

// bulkOnlyStore has no row-write primitive, like the file-shaped stores.
type bulkOnlyStore struct {
	table    types.CylinderTable
	readOnly bool
	writes   int
}

func (s *bulkOnlyStore) ReadAll(ctx context.Context) (types.CylinderTable, error) {
	return s.table.Clone(), nil
}

func (s *bulkOnlyStore) WriteAll(ctx context.Context, table types.CylinderTable) error {
	if s.readOnly {
		return types.ErrStoreReadOnly
	}
	s.table = table.Clone()
	s.writes++
	return nil
}

func (s *bulkOnlyStore) Close() error { return nil }

// brokenStore fails every write with a hard error.
type brokenStore struct{ err error }

func (s *brokenStore) ReadAll(ctx context.Context) (types.CylinderTable, error) {
	return types.CylinderTable{}, nil
}
func (s *brokenStore) WriteAll(ctx context.Context, table types.CylinderTable) error { return s.err }
func (s *brokenStore) Close() error                                                  { return nil }

func sampleTable() types.CylinderTable {
	lastTest := time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)
	due := inspection.NextDue(lastTest)
	overdueDue := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return types.CylinderTable{
		{
			CylinderID:   "LEO-1",
			CapacityKg:   14,
			FillPercent:  40,
			Status:       types.StatusActive,
			LocationPIN:  "500033",
			CustomerName: "Leo Gas",
			LastTestDate: &lastTest,
			NextTestDue:  &due,
		},
		{
			CylinderID:  "LEO-2",
			CapacityKg:  19,
			FillPercent: 80,
			Status:      types.StatusActive,
			LocationPIN: "500081",
			NextTestDue: &overdueDue,
			Overdue:     true,
		},
	}
}

func newTestCoordinator(store types.Store) (*Coordinator, *countingInvalidator) {
	inv := &countingInvalidator{}
	c := New(store, inv, nil)
	c.now = func() time.Time { return time.Date(2026, 8, 21, 12, 0, 0, 0, time.UTC) }
	return c, inv
}

func TestApplyFillUpdate(t *testing.T) {
	table := sampleTable()
	store := memory.NewSeeded(table)
	c, inv := newTestCoordinator(store)

	out, err := c.ApplyFillUpdate(context.Background(), table, "LEO-1", 100)
	require.NoError(t, err)

	assert.Equal(t, 100, out.Record.FillPercent)
	require.NotNil(t, out.Record.LastFillDate)
	assert.Equal(t, c.now(), *out.Record.LastFillDate)
	assert.Equal(t, types.StatusActive, out.Record.Status, "refill leaves status alone")
	require.NotNil(t, out.Record.NextTestDue)
	assert.Equal(t, *table[0].NextTestDue, *out.Record.NextTestDue, "refill leaves the test schedule alone")
	assert.Equal(t, Persisted, out.Persistence)
	assert.Equal(t, 1, inv.calls, "successful mutation drops the cache")

	assert.Equal(t, 40, table[0].FillPercent, "caller's table is untouched")

	stored, err := store.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 100, stored[0].FillPercent, "row write reached the store")
}

func TestApplyFillUpdateRejectsBadRange(t *testing.T) {
	table := sampleTable()
	c, inv := newTestCoordinator(memory.NewSeeded(table))

	for _, fill := range []int{-1, 101} {
		_, err := c.ApplyFillUpdate(context.Background(), table, "LEO-1", fill)
		require.ErrorIs(t, err, types.ErrInvalidRange)
	}
	assert.Zero(t, inv.calls, "rejected input leaves the cache alone")
}

func TestApplyFillUpdateUnknownID(t *testing.T) {
	table := sampleTable()
	c, _ := newTestCoordinator(memory.NewSeeded(table))

	_, err := c.ApplyFillUpdate(context.Background(), table, "LEO-404", 50)
	require.ErrorIs(t, err, types.ErrRecordNotFound)
}

func TestApplyFillUpdateReadOnlyStoreDegrades(t *testing.T) {
	table := sampleTable()
	store := memory.NewSeeded(table)
	store.SetReadOnly(true)
	c, inv := newTestCoordinator(store)

	out, err := c.ApplyFillUpdate(context.Background(), table, "LEO-1", 100)
	require.NoError(t, err, "read-only store degrades, it does not fail")
	assert.Equal(t, MemoryOnly, out.Persistence)
	assert.Equal(t, 100, out.Table[0].FillPercent, "in-memory change still applied")
	assert.Equal(t, 1, inv.calls)
}

func TestApplyFillUpdateRowFallsBackToFullWrite(t *testing.T) {
	// The snapshot has a record the store lost; the row write reports it
	// unknown and the coordinator reconciles with a full write.
	table := sampleTable()
	store := memory.New()
	c, _ := newTestCoordinator(store)

	out, err := c.ApplyFillUpdate(context.Background(), table, "LEO-1", 75)
	require.NoError(t, err)
	assert.Equal(t, Persisted, out.Persistence)

	stored, err := store.ReadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, 75, stored[0].FillPercent)
}

func TestApplyFillUpdateHardWriteErrorFails(t *testing.T) {
	boom := errors.New("disk on fire")
	table := sampleTable()
	c, inv := newTestCoordinator(&brokenStore{err: boom})

	_, err := c.ApplyFillUpdate(context.Background(), table, "LEO-1", 100)
	require.ErrorIs(t, err, boom)
	assert.Zero(t, inv.calls, "failed mutation leaves the cache alone")
}

func TestApplyNewRecord(t *testing.T) {
	table := sampleTable()
	store := &bulkOnlyStore{table: table.Clone()}
	c, inv := newTestCoordinator(store)

	lastTest := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	wrongDue := time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC)
	out, err := c.ApplyNewRecord(context.Background(), table, types.CylinderRecord{
		CylinderID:   "LEO-3",
		CapacityKg:   5,
		FillPercent:  100,
		LocationPIN:  " 110001 ",
		CustomerName: "New Customer",
		LastTestDate: &lastTest,
		NextTestDue:  &wrongDue,
		Overdue:      true,
	})
	require.NoError(t, err)

	assert.Len(t, out.Table, 3)
	assert.Len(t, table, 2, "caller's table is untouched")

	rec := out.Record
	assert.Equal(t, "110001", rec.LocationPIN, "PIN stored in canonical form")
	assert.Equal(t, types.StatusFull, rec.Status, "missing status defaults to Full")
	require.NotNil(t, rec.NextTestDue)
	assert.Equal(t, inspection.NextDue(lastTest), *rec.NextTestDue, "supplied due date is ignored, always derived")
	assert.False(t, rec.Overdue, "overdue recomputed, not trusted from input")
	assert.Equal(t, Persisted, out.Persistence)
	assert.Equal(t, 1, store.writes)
	assert.Equal(t, 1, inv.calls)
}

func TestApplyNewRecordDuplicateID(t *testing.T) {
	table := sampleTable()
	c, inv := newTestCoordinator(memory.NewSeeded(table))

	_, err := c.ApplyNewRecord(context.Background(), table, types.CylinderRecord{
		CylinderID:  "LEO-1",
		CapacityKg:  14,
		LocationPIN: "500033",
	})
	require.ErrorIs(t, err, types.ErrDuplicateID)
	assert.Len(t, table, 2, "row count unchanged")
	assert.Zero(t, inv.calls)
}

func TestApplyNewRecordValidation(t *testing.T) {
	table := sampleTable()
	c, _ := newTestCoordinator(memory.NewSeeded(table))

	cases := []struct {
		name   string
		fields types.CylinderRecord
	}{
		{"missing id", types.CylinderRecord{CapacityKg: 14, LocationPIN: "500033"}},
		{"short pin", types.CylinderRecord{CylinderID: "LEO-3", CapacityKg: 14, LocationPIN: "50033"}},
		{"non-digit pin", types.CylinderRecord{CylinderID: "LEO-3", CapacityKg: 14, LocationPIN: "50003x"}},
		{"zero capacity", types.CylinderRecord{CylinderID: "LEO-3", LocationPIN: "500033"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.ApplyNewRecord(context.Background(), table, tc.fields)
			require.ErrorIs(t, err, types.ErrValidation)
		})
	}
}

func TestApplyNewRecordReadOnlyReportsMemoryOnly(t *testing.T) {
	table := sampleTable()
	store := &bulkOnlyStore{table: table.Clone(), readOnly: true}
	c, _ := newTestCoordinator(store)

	out, err := c.ApplyNewRecord(context.Background(), table, types.CylinderRecord{
		CylinderID:  "LEO-3",
		CapacityKg:  5,
		LocationPIN: "110001",
	})
	require.NoError(t, err)
	assert.Equal(t, MemoryOnly, out.Persistence)
	assert.Len(t, out.Table, 3, "mutation still applies in memory")
	assert.Len(t, store.table, 2, "store contents unchanged")
}

func TestApplyReturnGoodCondition(t *testing.T) {
	table := sampleTable()
	store := memory.NewSeeded(table)
	c, _ := newTestCoordinator(store)

	out, err := c.ApplyReturn(context.Background(), table, "LEO-1", types.ConditionGood)
	require.NoError(t, err)

	assert.Equal(t, types.StatusEmpty, out.Record.Status)
	assert.Equal(t, 0, out.Record.FillPercent)
	assert.Equal(t, 0, out.Liability)
}

func TestApplyReturnDamagedOverdue(t *testing.T) {
	table := sampleTable()
	c, _ := newTestCoordinator(memory.NewSeeded(table))

	out, err := c.ApplyReturn(context.Background(), table, "LEO-2", "Dented")
	require.NoError(t, err)

	assert.Equal(t, types.StatusDamaged, out.Record.Status)
	assert.Equal(t, 1500, out.Liability, "500 damage plus 1000 overdue")
}

func TestApplyReturnUnknownID(t *testing.T) {
	table := sampleTable()
	c, _ := newTestCoordinator(memory.NewSeeded(table))

	_, err := c.ApplyReturn(context.Background(), table, "LEO-404", types.ConditionGood)
	require.ErrorIs(t, err, types.ErrRecordNotFound)
}

func TestMutationInvalidatesLoaderCache(t *testing.T) {
	table := sampleTable()
	store := memory.NewSeeded(table)
	l := loader.New(store, time.Hour)

	ctx := context.Background()
	before, err := l.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, 40, before[0].FillPercent)

	c := New(store, l, nil)
	c.now = func() time.Time { return time.Date(2026, 8, 21, 12, 0, 0, 0, time.UTC) }
	_, err = c.ApplyFillUpdate(ctx, before, "LEO-1", 100)
	require.NoError(t, err)

	after, err := l.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 100, after[0].FillPercent, "next load sees the mutation, not the cache")
}

func TestMutationWritesAuditTrail(t *testing.T) {
	dir := t.TempDir()
	trail := audit.New(dir)
	table := sampleTable()
	store := memory.NewSeeded(table)

	c := New(store, nil, trail)
	c.now = func() time.Time { return time.Date(2026, 8, 21, 12, 0, 0, 0, time.UTC) }

	_, err := c.ApplyFillUpdate(context.Background(), table, "LEO-1", 100)
	require.NoError(t, err)
	_, err = c.ApplyReturn(context.Background(), table, "LEO-2", "Dented")
	require.NoError(t, err)

	entries, err := trail.Read()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, OpRefill, entries[0].Op)
	assert.Equal(t, "LEO-1", entries[0].CylinderID)
	assert.Equal(t, string(Persisted), entries[0].Persistence)
	assert.Equal(t, OpReturn, entries[1].Op)
	assert.Contains(t, entries[1].Detail, "1500")
}
