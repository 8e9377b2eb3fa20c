package postgres

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/workjay-it/lpgtrack/pkg/types"
)

// openStub routes the pgx open through an embedded database speaking the
// shared SQL subset, so the store logic runs without a server.
func openStub(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stub.db")
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) {
		return sql.Open("sqlite", path)
	})
	t.Cleanup(restore)

	s, err := Open(context.Background(), "")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenUnreachableHost(t *testing.T) {
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) {
		return nil, errors.New("connection refused")
	})
	defer restore()

	_, err := Open(context.Background(), "postgres://gas.example.internal/lpgtrack")
	require.ErrorIs(t, err, types.ErrStoreUnavailable)
}

func TestWriteAllReadAllRoundTrip(t *testing.T) {
	s := openStub(t)
	ctx := context.Background()

	test := time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)
	due := test.Add(1825 * 24 * time.Hour)
	require.NoError(t, s.WriteAll(ctx, types.CylinderTable{
		{CylinderID: "LEO-2", CapacityKg: 5, Status: types.StatusEmpty, LocationPIN: "500081"},
		{CylinderID: "LEO-1", CapacityKg: 14, FillPercent: 100, Status: types.StatusFull,
			LocationPIN: "500033", CustomerName: "Leo Gas", LastTestDate: &test, NextTestDue: &due, Overdue: true},
	}))

	got, err := s.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Rows come back ordered by cylinder ID.
	assert.Equal(t, "LEO-1", got[0].CylinderID)
	assert.True(t, got[0].Overdue)
	require.NotNil(t, got[0].NextTestDue)
	assert.True(t, got[0].NextTestDue.Equal(due))
	assert.Equal(t, "LEO-2", got[1].CylinderID)
	assert.Nil(t, got[1].LastTestDate)
}

func TestWriteRow(t *testing.T) {
	s := openStub(t)
	ctx := context.Background()

	require.NoError(t, s.WriteAll(ctx, types.CylinderTable{
		{CylinderID: "LEO-1", FillPercent: 40, LocationPIN: "500033"},
	}))

	require.NoError(t, s.WriteRow(ctx, types.CylinderRecord{
		CylinderID: "LEO-1", FillPercent: 100, LocationPIN: "500033",
	}))
	got, err := s.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 100, got[0].FillPercent)

	err = s.WriteRow(ctx, types.CylinderRecord{CylinderID: "LEO-9"})
	require.ErrorIs(t, err, types.ErrRecordNotFound)
}

func TestWriteAllReplacesWhole(t *testing.T) {
	s := openStub(t)
	ctx := context.Background()

	require.NoError(t, s.WriteAll(ctx, types.CylinderTable{{CylinderID: "LEO-1"}, {CylinderID: "LEO-2"}}))
	require.NoError(t, s.WriteAll(ctx, types.CylinderTable{{CylinderID: "LEO-3"}}))

	got, err := s.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "LEO-3", got[0].CylinderID)
}
