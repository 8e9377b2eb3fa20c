package query

import (
	"errors"
	"testing"
	"time"

	"github.com/workjay-it/lpgtrack/pkg/types"
)

func tp(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func sampleTable() types.CylinderTable {
	return types.CylinderTable{
		{CylinderID: "LEO-1", Status: types.StatusFull, LocationPIN: "500033", FillPercent: 100, NextTestDue: tp(2027, time.May, 1)},
		{CylinderID: "LEO-2", Status: types.StatusActive, LocationPIN: "500081", FillPercent: 40, NextTestDue: tp(2025, time.March, 9), Overdue: true},
		{CylinderID: "LEO-3", Status: types.StatusEmpty, LocationPIN: "500033", FillPercent: 0},
		{CylinderID: "LEO-4", Status: types.StatusDamaged, LocationPIN: "110001", FillPercent: 10, NextTestDue: tp(2025, time.March, 9), Overdue: true},
	}
}

func ids(table types.CylinderTable) []string {
	out := make([]string, len(table))
	for i, rec := range table {
		out[i] = rec.CylinderID
	}
	return out
}

func equalIDs(a []string, b ...string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFilterByStatus(t *testing.T) {
	table := sampleTable()

	tests := []struct {
		name    string
		allowed []string
		wantIDs []string
	}{
		{name: "empty set shows all", allowed: nil, wantIDs: []string{"LEO-1", "LEO-2", "LEO-3", "LEO-4"}},
		{name: "single status", allowed: []string{types.StatusEmpty}, wantIDs: []string{"LEO-3"}},
		{name: "multiple statuses", allowed: []string{types.StatusFull, types.StatusDamaged}, wantIDs: []string{"LEO-1", "LEO-4"}},
		{name: "unknown status matches nothing", allowed: []string{"Refurbished"}, wantIDs: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterByStatus(table, tt.allowed)
			if !equalIDs(ids(got), tt.wantIDs...) {
				t.Fatalf("got %v, want %v", ids(got), tt.wantIDs)
			}
		})
	}

	if len(table) != 4 {
		t.Fatal("input table must not be modified")
	}
}

func TestFilterByPIN(t *testing.T) {
	table := sampleTable()

	got, err := FilterByPIN(table, "500033")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !equalIDs(ids(got), "LEO-1", "LEO-3") {
		t.Fatalf("got %v, want [LEO-1 LEO-3]", ids(got))
	}

	// Five digits is a malformed query, not a salvageable value.
	if _, err := FilterByPIN(table, "50033"); !errors.Is(err, types.ErrInvalidPIN) {
		t.Fatalf("expected ErrInvalidPIN, got %v", err)
	}

	// Record PINs carrying numeric artifacts still match.
	dirty := types.CylinderTable{{CylinderID: "X-1", LocationPIN: "500033.0"}}
	got, err = FilterByPIN(dirty, "500033")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !equalIDs(ids(got), "X-1") {
		t.Fatalf("artifact PIN did not match: %v", ids(got))
	}

	// No match is an empty result, not an error.
	got, err = FilterByPIN(table, "999999")
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty result, got %v err %v", ids(got), err)
	}
}

func TestOverdueOnly(t *testing.T) {
	got := OverdueOnly(sampleTable())
	if !equalIDs(ids(got), "LEO-2", "LEO-4") {
		t.Fatalf("got %v, want [LEO-2 LEO-4]", ids(got))
	}
}

func TestSortByNextTestDue(t *testing.T) {
	got := SortByNextTestDue(sampleTable())

	// Ascending by deadline, unknown deadlines last; LEO-2 and LEO-4
	// share a deadline and must keep their table order (stable sort).
	if !equalIDs(ids(got), "LEO-2", "LEO-4", "LEO-1", "LEO-3") {
		t.Fatalf("got %v, want [LEO-2 LEO-4 LEO-1 LEO-3]", ids(got))
	}

	original := sampleTable()
	if !equalIDs(ids(original), "LEO-1", "LEO-2", "LEO-3", "LEO-4") {
		t.Fatal("input table must not be reordered")
	}
}

func TestLookupByID(t *testing.T) {
	table := sampleTable()

	rec, err := LookupByID(table, "LEO-3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Status != types.StatusEmpty {
		t.Fatalf("wrong record: %+v", rec)
	}

	if _, err := LookupByID(table, "LEO-9"); !errors.Is(err, types.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}

	// Duplicate IDs never happen in a well-formed table; first match wins.
	dup := types.CylinderTable{
		{CylinderID: "D-1", Status: types.StatusFull},
		{CylinderID: "D-1", Status: types.StatusEmpty},
	}
	rec, err = LookupByID(dup, "D-1")
	if err != nil || rec.Status != types.StatusFull {
		t.Fatalf("expected first match, got %+v err %v", rec, err)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleTable())

	if s.Total != 4 {
		t.Fatalf("total = %d, want 4", s.Total)
	}
	if s.OverdueCount != 2 {
		t.Fatalf("overdue = %d, want 2", s.OverdueCount)
	}
	if want := 37.5; s.AverageFill != want {
		t.Fatalf("average fill = %v, want %v", s.AverageFill, want)
	}
	if s.ByStatus[types.StatusFull] != 1 || s.ByStatus[types.StatusDamaged] != 1 {
		t.Fatalf("status breakdown wrong: %v", s.ByStatus)
	}

	empty := Summarize(nil)
	if empty.Total != 0 || empty.AverageFill != 0 || empty.ByStatus == nil {
		t.Fatalf("empty summary wrong: %+v", empty)
	}
}
