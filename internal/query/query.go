// Package query implements the read side of the system: filters, ordering,
// keyed lookup, and the dashboard summary over a loaded cylinder table.
// All functions are pure and leave the input table untouched.
package query

import (
	"fmt"
	"sort"

	"github.com/workjay-it/lpgtrack/pkg/types"
)

// FilterByStatus keeps the rows whose Status is in allowed. An empty or nil
// set means no status constraint: every row is kept. That mirrors the
// selection surfaces, which start with all statuses picked.
func FilterByStatus(table types.CylinderTable, allowed []string) types.CylinderTable {
	if len(allowed) == 0 {
		return append(types.CylinderTable{}, table...)
	}
	set := make(map[string]bool, len(allowed))
	for _, s := range allowed {
		set[s] = true
	}
	out := types.CylinderTable{}
	for _, rec := range table {
		if set[rec.Status] {
			out = append(out, rec)
		}
	}
	return out
}

// FilterByPIN keeps the rows located at the given PIN. The input is
// normalized and must be exactly six digits; anything else returns
// ErrInvalidPIN before the table is touched. Record PINs are normalized
// again before the compare so tables that skipped the loader still match.
func FilterByPIN(table types.CylinderTable, pin string) (types.CylinderTable, error) {
	pin, err := types.ValidatePIN(pin)
	if err != nil {
		return nil, err
	}
	out := types.CylinderTable{}
	for _, rec := range table {
		if types.NormalizePIN(rec.LocationPIN) == pin {
			out = append(out, rec)
		}
	}
	return out, nil
}

// OverdueOnly keeps the rows flagged overdue for their hydrostatic test.
func OverdueOnly(table types.CylinderTable) types.CylinderTable {
	out := types.CylinderTable{}
	for _, rec := range table {
		if rec.Overdue {
			out = append(out, rec)
		}
	}
	return out
}

// SortByNextTestDue returns the table ordered by ascending test deadline.
// Rows with an unknown deadline sort last. The sort is stable, so rows
// sharing a deadline keep their table order.
func SortByNextTestDue(table types.CylinderTable) types.CylinderTable {
	out := append(types.CylinderTable{}, table...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].NextTestDue, out[j].NextTestDue
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
	return out
}

// LookupByID returns the record with the given CylinderID. IDs are unique
// by contract; should a malformed table carry duplicates, the first match
// in table order wins. Returns ErrRecordNotFound when the ID is absent.
func LookupByID(table types.CylinderTable, id string) (types.CylinderRecord, error) {
	for _, rec := range table {
		if rec.CylinderID == id {
			return rec, nil
		}
	}
	return types.CylinderRecord{}, fmt.Errorf("cylinder %q: %w", id, types.ErrRecordNotFound)
}

// Summary aggregates the table for the dashboard header.
type Summary struct {
	Total        int            `json:"total"`
	OverdueCount int            `json:"overdue_count"`
	AverageFill  float64        `json:"average_fill"`
	ByStatus     map[string]int `json:"by_status"`
}

// Summarize computes the dashboard aggregates in one pass. An empty table
// yields zero values and an empty (not nil) status breakdown.
func Summarize(table types.CylinderTable) Summary {
	s := Summary{ByStatus: map[string]int{}}
	fillSum := 0
	for _, rec := range table {
		s.Total++
		if rec.Overdue {
			s.OverdueCount++
		}
		fillSum += rec.FillPercent
		s.ByStatus[rec.Status]++
	}
	if s.Total > 0 {
		s.AverageFill = float64(fillSum) / float64(s.Total)
	}
	return s
}
