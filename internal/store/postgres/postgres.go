// Package postgres provides the hosted-table store over a Postgres
// database. The DDL is applied on open, so pointing the DSN at an empty
// database is enough to start tracking.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"github.com/workjay-it/lpgtrack/internal/store/csvcodec"
	"github.com/workjay-it/lpgtrack/pkg/types"
)

var (
	_ types.Store      = (*Store)(nil)
	_ types.RowWriter  = (*Store)(nil)
	_ types.BulkWriter = (*Store)(nil)
)

const (
	defaultDriver = "pgx"
	// defaultDSN targets a local database, matching the development setup.
	defaultDSN = "postgres://localhost/lpgtrack?sslmode=disable"
)

// createCylinders sticks to the SQL subset shared with the embedded store,
// which is what the OverrideSQLOpen test hook relies on.
const createCylinders = `CREATE TABLE IF NOT EXISTS cylinders (
    cylinder_id TEXT PRIMARY KEY,
    capacity_kg INTEGER NOT NULL DEFAULT 0,
    fill_percent INTEGER NOT NULL DEFAULT 0,
    status TEXT NOT NULL DEFAULT '',
    location_pin TEXT NOT NULL DEFAULT '',
    customer_name TEXT NOT NULL DEFAULT '',
    last_fill_date TEXT,
    last_test_date TEXT,
    next_test_due TEXT,
    overdue BOOLEAN NOT NULL DEFAULT FALSE
)`

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Store wraps the database handle for one hosted cylinders table.
type Store struct {
	db *sql.DB
}

// Open connects using the provided DSN (falls back to defaultDSN), pings
// the server so an unreachable host fails here rather than on first use,
// and ensures the cylinders table exists. Failures surface as
// ErrStoreUnavailable.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("%w: open postgres: %v", types.ErrStoreUnavailable, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping postgres: %v", types.ErrStoreUnavailable, err)
	}
	if _, err := db.ExecContext(ctx, createCylinders); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ensure cylinders table: %v", types.ErrStoreUnavailable, err)
	}
	return &Store{db: db}, nil
}

// ReadAll hydrates every row, ordered by cylinder ID.
func (s *Store) ReadAll(ctx context.Context) (types.CylinderTable, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT cylinder_id, capacity_kg, fill_percent, status, location_pin,
		        customer_name, last_fill_date, last_test_date, next_test_due, overdue
		 FROM cylinders ORDER BY cylinder_id`)
	if err != nil {
		return nil, fmt.Errorf("%w: selecting cylinders: %v", types.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	table := types.CylinderTable{}
	for rows.Next() {
		var rec types.CylinderRecord
		var lastFill, lastTest, nextDue sql.NullString
		if err := rows.Scan(&rec.CylinderID, &rec.CapacityKg, &rec.FillPercent,
			&rec.Status, &rec.LocationPIN, &rec.CustomerName,
			&lastFill, &lastTest, &nextDue, &rec.Overdue); err != nil {
			return nil, fmt.Errorf("%w: scanning cylinder row: %v", types.ErrStoreUnavailable, err)
		}
		rec.LastFillDate = dateFromSQL(lastFill)
		rec.LastTestDate = dateFromSQL(lastTest)
		rec.NextTestDue = dateFromSQL(nextDue)
		table = append(table, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating cylinders: %v", types.ErrStoreUnavailable, err)
	}
	return table, nil
}

// WriteRow updates the row keyed by rec.CylinderID.
// Returns ErrRecordNotFound when the key is absent.
func (s *Store) WriteRow(ctx context.Context, rec types.CylinderRecord) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE cylinders SET capacity_kg = $1, fill_percent = $2, status = $3,
		        location_pin = $4, customer_name = $5, last_fill_date = $6,
		        last_test_date = $7, next_test_due = $8, overdue = $9
		 WHERE cylinder_id = $10`,
		rec.CapacityKg, rec.FillPercent, rec.Status,
		rec.LocationPIN, rec.CustomerName, dateArg(rec.LastFillDate),
		dateArg(rec.LastTestDate), dateArg(rec.NextTestDue), rec.Overdue,
		rec.CylinderID,
	)
	if err != nil {
		return fmt.Errorf("updating cylinder %s: %w", rec.CylinderID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update of %s: %w", rec.CylinderID, err)
	}
	if n == 0 {
		return fmt.Errorf("cylinder %q: %w", rec.CylinderID, types.ErrRecordNotFound)
	}
	return nil
}

// WriteAll replaces every row inside one transaction.
func (s *Store) WriteAll(ctx context.Context, table types.CylinderTable) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cylinders`); err != nil {
		return fmt.Errorf("clearing cylinders: %w", err)
	}
	for _, rec := range table {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO cylinders (cylinder_id, capacity_kg, fill_percent, status,
			        location_pin, customer_name, last_fill_date, last_test_date,
			        next_test_due, overdue)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			rec.CylinderID, rec.CapacityKg, rec.FillPercent, rec.Status,
			rec.LocationPIN, rec.CustomerName, dateArg(rec.LastFillDate),
			dateArg(rec.LastTestDate), dateArg(rec.NextTestDue), rec.Overdue,
		)
		if err != nil {
			return fmt.Errorf("inserting cylinder %s: %w", rec.CylinderID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing cylinders: %w", err)
	}
	committed = true
	return nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a
// restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}

func dateArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(csvcodec.DateLayout)
}

func dateFromSQL(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	return csvcodec.ParseDate(s.String)
}
