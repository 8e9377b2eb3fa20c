// Package sheet implements the spreadsheet store: the cylinder table lives
// on one worksheet of an .xlsx workbook, first row the canonical header.
// Spreadsheets have no keyed row-update primitive, so the store is
// bulk-write only, and numeric-typed cells are expected to shed leading
// zeros and grow ".0" artifacts; load-time normalization repairs both.
package sheet

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/workjay-it/lpgtrack/internal/store/csvcodec"
	"github.com/workjay-it/lpgtrack/pkg/types"
)

// DefaultWorksheet is the worksheet read and written when the config names
// none.
const DefaultWorksheet = "Cylinders"

var (
	_ types.Store      = (*Store)(nil)
	_ types.BulkWriter = (*Store)(nil)
)

// Store reads and rewrites one worksheet of a workbook at a fixed path.
type Store struct {
	path      string
	worksheet string
}

// New returns a Store over the given workbook and worksheet.
func New(path, worksheet string) *Store {
	if worksheet == "" {
		worksheet = DefaultWorksheet
	}
	return &Store{path: path, worksheet: worksheet}
}

// ReadAll parses the worksheet. A missing workbook or worksheet surfaces as
// ErrStoreUnavailable; a worksheet with only the header row is an empty
// table.
func (s *Store) ReadAll(ctx context.Context) (types.CylinderTable, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", types.ErrStoreUnavailable, s.path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(s.worksheet)
	if err != nil {
		return nil, fmt.Errorf("%w: read worksheet %s of %s: %v", types.ErrStoreUnavailable, s.worksheet, s.path, err)
	}
	if len(rows) == 0 {
		return types.CylinderTable{}, nil
	}

	idx := csvcodec.Index(rows[0])
	table := types.CylinderTable{}
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		table = append(table, csvcodec.Decode(row, idx))
	}
	return table, nil
}

// WriteAll rebuilds the workbook with the given table and swaps it into
// place atomically.
func (s *Store) WriteAll(ctx context.Context, table types.CylinderTable) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", s.worksheet); err != nil {
		return fmt.Errorf("naming worksheet %s: %w", s.worksheet, err)
	}

	rows := [][]string{csvcodec.Header()}
	for _, rec := range table {
		rows = append(rows, csvcodec.Encode(rec))
	}
	for i, row := range rows {
		cells := row
		if err := f.SetSheetRow(s.worksheet, fmt.Sprintf("A%d", i+1), &cells); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".cylinders-*.xlsx")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	tmp.Close()

	if err := f.SaveAs(tmpName); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("saving workbook: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// Close releases nothing; the workbook is opened per call.
func (s *Store) Close() error { return nil }
