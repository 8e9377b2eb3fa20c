// Package csvcodec translates cylinder records to and from the canonical
// delimited-text row format shared by the flat-file, object-storage, and
// spreadsheet stores and by the export artifact. Its date helpers are the
// one place that knows how dates look on the wire; the relational stores
// use them for their date columns too.
package csvcodec

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/workjay-it/lpgtrack/pkg/types"
)

// Canonical column names, matching the historical flat file.
const (
	ColCylinderID   = "Cylinder_ID"
	ColCapacityKg   = "Capacity_kg"
	ColFillPercent  = "Fill_Percent"
	ColStatus       = "Status"
	ColLocationPIN  = "Location_PIN"
	ColCustomerName = "Customer_Name"
	ColLastFillDate = "Last_Fill_Date"
	ColLastTestDate = "Last_Test_Date"
	ColNextTestDue  = "Next_Test_Due"
	ColOverdue      = "Overdue"
)

// DateLayout is the ISO-8601 date format used on the wire.
const DateLayout = "2006-01-02"

// dateLayouts are the formats ParseDate accepts, tried in order. Sources
// that stored timestamps instead of dates still round-trip.
var dateLayouts = []string{
	DateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// Header returns the canonical column order as a fresh slice.
func Header() []string {
	return []string{
		ColCylinderID,
		ColCapacityKg,
		ColFillPercent,
		ColStatus,
		ColLocationPIN,
		ColCustomerName,
		ColLastFillDate,
		ColLastTestDate,
		ColNextTestDue,
		ColOverdue,
	}
}

// Index maps trimmed column names to their positions in a header row.
// Unknown columns are carried too, so extra columns in a source file are
// ignored rather than fatal.
func Index(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	return idx
}

// Encode renders one record in canonical column order. Unknown dates become
// empty cells.
func Encode(rec types.CylinderRecord) []string {
	return []string{
		rec.CylinderID,
		strconv.Itoa(rec.CapacityKg),
		strconv.Itoa(rec.FillPercent),
		rec.Status,
		rec.LocationPIN,
		rec.CustomerName,
		FormatDate(rec.LastFillDate),
		FormatDate(rec.LastTestDate),
		FormatDate(rec.NextTestDue),
		strconv.FormatBool(rec.Overdue),
	}
}

// Decode builds a record from one data row. Decoding is lenient: missing
// columns and unparsable cells degrade to zero values (nil for dates), they
// never fail the row. One garbled cell must not take the whole table down.
// The stored Overdue cell is decoded but callers recompute it from the
// clock; it is never trusted.
func Decode(fields []string, idx map[string]int) types.CylinderRecord {
	get := func(col string) string {
		i, ok := idx[col]
		if !ok || i < 0 || i >= len(fields) {
			return ""
		}
		return strings.TrimSpace(fields[i])
	}

	overdue, _ := strconv.ParseBool(get(ColOverdue))
	return types.CylinderRecord{
		CylinderID:   get(ColCylinderID),
		CapacityKg:   parseIntLenient(get(ColCapacityKg)),
		FillPercent:  parseIntLenient(get(ColFillPercent)),
		Status:       get(ColStatus),
		LocationPIN:  get(ColLocationPIN),
		CustomerName: get(ColCustomerName),
		LastFillDate: ParseDate(get(ColLastFillDate)),
		LastTestDate: ParseDate(get(ColLastTestDate)),
		NextTestDue:  ParseDate(get(ColNextTestDue)),
		Overdue:      overdue,
	}
}

// ReadTable parses a whole CSV document: header row first, then one record
// per row. Ragged and foreign columns are tolerated; a document with no
// rows at all is an empty table.
func ReadTable(r io.Reader) (types.CylinderTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return types.CylinderTable{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	idx := Index(header)

	table := types.CylinderTable{}
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}
		table = append(table, Decode(fields, idx))
	}
	return table, nil
}

// WriteTable writes the canonical CSV document: header row, then one row
// per record.
func WriteTable(w io.Writer, table types.CylinderTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, rec := range table {
		if err := cw.Write(Encode(rec)); err != nil {
			return fmt.Errorf("writing record %s: %w", rec.CylinderID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing rows: %w", err)
	}
	return nil
}

// FormatDate renders a date cell; nil becomes the empty cell.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}

// ParseDate reads a date cell. Empty or unparsable cells yield nil, the
// "unknown" marker.
func ParseDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// parseIntLenient reads an integer cell, tolerating the ".0" suffix that
// numeric-typed sources append. Unparsable cells yield zero.
func parseIntLenient(s string) int {
	if base, frac, ok := strings.Cut(s, "."); ok {
		allZero := frac != ""
		for i := 0; i < len(frac); i++ {
			if frac[i] != '0' {
				allZero = false
				break
			}
		}
		if allZero {
			s = base
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
