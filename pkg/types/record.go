package types

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Cylinder statuses. The enumeration is open ended; these are the values
// the fleet records carry today and the ones selection surfaces offer.
const (
	StatusFull    = "Full"
	StatusEmpty   = "Empty"
	StatusActive  = "Active"
	StatusDamaged = "Damaged"
)

// WellKnownStatuses lists the status values in display order.
var WellKnownStatuses = []string{StatusFull, StatusActive, StatusEmpty, StatusDamaged}

// ConditionGood is the return condition that carries no damage charge.
const ConditionGood = "Good"

// PINLength is the number of digits in a valid location PIN.
const PINLength = 6

// WellKnownCapacities lists the cylinder sizes in circulation, in kg.
var WellKnownCapacities = []int{5, 14, 19, 47}

// Record validation errors.
var (
	ErrInvalidPIN   = errors.New("invalid location PIN")
	ErrInvalidRange = errors.New("fill percent out of range")
	ErrDuplicateID  = errors.New("duplicate cylinder ID")
	ErrValidation   = errors.New("invalid record")
)

// CylinderRecord is one tracked cylinder. Records are keyed by CylinderID;
// IDs are never reused. NextTestDue and Overdue are derived fields:
// NextTestDue follows LastTestDate by the hydrostatic test interval, and
// Overdue is recomputed against the clock on every load rather than
// trusted from the source.
type CylinderRecord struct {
	CylinderID   string     `json:"cylinder_id"`
	CapacityKg   int        `json:"capacity_kg"`
	FillPercent  int        `json:"fill_percent"`
	Status       string     `json:"status"`
	LocationPIN  string     `json:"location_pin"`
	CustomerName string     `json:"customer_name"`
	LastFillDate *time.Time `json:"last_fill_date"`
	LastTestDate *time.Time `json:"last_test_date"`
	NextTestDue  *time.Time `json:"next_test_due"`
	Overdue      bool       `json:"overdue"`
}

// CylinderTable is the full unique-keyed collection of records.
type CylinderTable []CylinderRecord

// Clone returns a deep copy of the record. Date pointers are duplicated so
// mutations on the copy never reach the original.
func (r CylinderRecord) Clone() CylinderRecord {
	out := r
	out.LastFillDate = cloneTime(r.LastFillDate)
	out.LastTestDate = cloneTime(r.LastTestDate)
	out.NextTestDue = cloneTime(r.NextTestDue)
	return out
}

// Validate checks the invariants a record must satisfy before it enters the
// table. Returns ErrValidation (wrapped with detail) on the first violation.
func (r CylinderRecord) Validate() error {
	if strings.TrimSpace(r.CylinderID) == "" {
		return fmt.Errorf("%w: cylinder ID must not be empty", ErrValidation)
	}
	if _, err := ValidatePIN(r.LocationPIN); err != nil {
		return fmt.Errorf("%w: location PIN must be exactly %d digits", ErrValidation, PINLength)
	}
	if r.CapacityKg <= 0 {
		return fmt.Errorf("%w: capacity must be positive", ErrValidation)
	}
	if r.FillPercent < 0 || r.FillPercent > 100 {
		return fmt.Errorf("%w: fill percent must be within [0,100]", ErrValidation)
	}
	return nil
}

// Clone returns a deep copy of the table.
func (t CylinderTable) Clone() CylinderTable {
	if t == nil {
		return nil
	}
	out := make(CylinderTable, len(t))
	for i, rec := range t {
		out[i] = rec.Clone()
	}
	return out
}

// NormalizePIN canonicalizes a location PIN read from an external source.
// Surrounding whitespace is trimmed, a trailing ".0" decimal artifact left
// by numeric-typed cells is stripped, and all-digit values that lost leading
// zeros in numeric storage are left-padded back to six digits. Values that
// remain malformed are returned trimmed rather than dropped; validation
// surfaces them later.
func NormalizePIN(pin string) string {
	pin = trimPINArtifacts(pin)
	if pin != "" && len(pin) < PINLength && digitsOnly(pin) {
		pin = strings.Repeat("0", PINLength-len(pin)) + pin
	}
	return pin
}

// ValidatePIN normalizes caller-supplied PIN input and requires exactly six
// ASCII digits. Unlike NormalizePIN it never pads: a five-digit query is a
// malformed query, not a salvageable stored value. Returns the canonical
// PIN, or ErrInvalidPIN.
func ValidatePIN(pin string) (string, error) {
	pin = trimPINArtifacts(pin)
	if len(pin) != PINLength || !digitsOnly(pin) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPIN, pin)
	}
	return pin, nil
}

// trimPINArtifacts trims whitespace and strips a trailing ".0" (or ".00"...)
// produced by sources that store the PIN in a numeric column.
func trimPINArtifacts(pin string) string {
	pin = strings.TrimSpace(pin)
	if base, frac, ok := strings.Cut(pin, "."); ok && base != "" && frac != "" &&
		digitsOnly(base) && zerosOnly(frac) {
		return base
	}
	return pin
}

func digitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func zerosOnly(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != '0' {
			return false
		}
	}
	return true
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	out := *t
	return &out
}
