// Package store selects and constructs a record store from configuration.
package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/workjay-it/lpgtrack/internal/store/csvfile"
	"github.com/workjay-it/lpgtrack/internal/store/memory"
	"github.com/workjay-it/lpgtrack/internal/store/postgres"
	"github.com/workjay-it/lpgtrack/internal/store/s3store"
	"github.com/workjay-it/lpgtrack/internal/store/sheet"
	"github.com/workjay-it/lpgtrack/internal/store/sqlitestore"
	"github.com/workjay-it/lpgtrack/pkg/types"
)

// Default file names inside the data directory when the per-store path is
// left empty.
const (
	defaultCSVName    = "cylinders.csv"
	defaultSQLiteName = "lpgtrack.db"
	defaultSheetName  = "cylinders.xlsx"
)

// Open constructs the store cfg selects. The memory store comes seeded with
// the demo fleet so a fresh install has something to show.
func Open(ctx context.Context, cfg types.Config) (types.Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Store {
	case types.StoreCSV:
		path := cfg.CSV.Path
		if path == "" {
			path = filepath.Join(cfg.DataDir, defaultCSVName)
		}
		return csvfile.New(path, cfg.CSV.ReadOnly), nil
	case types.StoreSQLite:
		path := cfg.SQLite.Path
		if path == "" {
			path = filepath.Join(cfg.DataDir, defaultSQLiteName)
		}
		return sqlitestore.Open(path)
	case types.StorePostgres:
		return postgres.Open(ctx, cfg.Postgres.DSN)
	case types.StoreSheet:
		path := cfg.Sheet.Path
		if path == "" {
			path = filepath.Join(cfg.DataDir, defaultSheetName)
		}
		return sheet.New(path, cfg.Sheet.Worksheet), nil
	case types.StoreS3:
		return s3store.New(ctx, cfg.S3)
	case types.StoreMemory:
		return memory.NewSeeded(memory.Demo(time.Now().UTC())), nil
	default:
		return nil, fmt.Errorf("%w: %s", types.ErrStoreUnknown, cfg.Store)
	}
}

// Init makes sure the medium behind s exists. The relational stores create
// their schema on Open, so a successful read means there is nothing to do;
// for the file-shaped stores a read that reports the store unavailable is
// answered by writing an empty table, which creates the file or object with
// the canonical header. Stores that cannot bulk-write keep their read error.
func Init(ctx context.Context, s types.Store) (created bool, err error) {
	if _, err = s.ReadAll(ctx); err == nil {
		return false, nil
	}
	if !errors.Is(err, types.ErrStoreUnavailable) {
		return false, err
	}
	bw, ok := s.(types.BulkWriter)
	if !ok {
		return false, err
	}
	if werr := bw.WriteAll(ctx, types.CylinderTable{}); werr != nil {
		return false, werr
	}
	return true, nil
}
