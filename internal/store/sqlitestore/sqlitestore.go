// Package sqlitestore implements the embedded-database store over a local
// SQLite file. ReadAll hydrates rows into records; WriteRow updates a
// single row by primary key; WriteAll replaces the table in one
// transaction.
package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/workjay-it/lpgtrack/internal/store/csvcodec"
	"github.com/workjay-it/lpgtrack/pkg/types"
)

// Schema DDL. Dates are ISO-8601 text; NULL marks an unknown date.
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
    overdue INTEGER NOT NULL DEFAULT 0
);`

var (
	_ types.Store      = (*Store)(nil)
	_ types.RowWriter  = (*Store)(nil)
	_ types.BulkWriter = (*Store)(nil)
)

// Store wraps the database handle for one SQLite file.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates the parent directory and the cylinders table as needed and
// returns a ready store. Failures surface as ErrStoreUnavailable.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: creating data dir: %v", types.ErrStoreUnavailable, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", types.ErrStoreUnavailable, path, err)
	}
	if _, err := db.Exec(createCylinders); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: creating schema: %v", types.ErrStoreUnavailable, err)
	}
	return &Store{db: db, path: path}, nil
}

// ReadAll hydrates every row in insertion order.
func (s *Store) ReadAll(ctx context.Context) (types.CylinderTable, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT cylinder_id, capacity_kg, fill_percent, status, location_pin,
		        customer_name, last_fill_date, last_test_date, next_test_due, overdue
		 FROM cylinders ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("%w: selecting cylinders: %v", types.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	table := types.CylinderTable{}
	for rows.Next() {
		rec, err := hydrate(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning cylinder row: %v", types.ErrStoreUnavailable, err)
		}
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
		`UPDATE cylinders SET capacity_kg = ?, fill_percent = ?, status = ?,
		        location_pin = ?, customer_name = ?, last_fill_date = ?,
		        last_test_date = ?, next_test_due = ?, overdue = ?
		 WHERE cylinder_id = ?`,
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
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM cylinders"); err != nil {
		return fmt.Errorf("clearing cylinders: %w", err)
	}
	for _, rec := range table {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO cylinders (cylinder_id, capacity_kg, fill_percent, status,
			        location_pin, customer_name, last_fill_date, last_test_date,
			        next_test_due, overdue)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
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

// scanner is the subset of sql.Rows and sql.Row hydrate needs.
type scanner interface {
	Scan(dest ...any) error
}

func hydrate(row scanner) (types.CylinderRecord, error) {
	var rec types.CylinderRecord
	var lastFill, lastTest, nextDue sql.NullString
	err := row.Scan(&rec.CylinderID, &rec.CapacityKg, &rec.FillPercent,
		&rec.Status, &rec.LocationPIN, &rec.CustomerName,
		&lastFill, &lastTest, &nextDue, &rec.Overdue)
	if err != nil {
		return types.CylinderRecord{}, err
	}
	rec.LastFillDate = dateFromSQL(lastFill)
	rec.LastTestDate = dateFromSQL(lastTest)
	rec.NextTestDue = dateFromSQL(nextDue)
	return rec, nil
}

// dateArg renders a nullable date for a SQL parameter; nil stays NULL.
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
