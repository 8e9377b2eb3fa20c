// Package penalty prices the liability charged when a cylinder comes back
// from a customer. The amounts live here and nowhere else.
package penalty

import "github.com/workjay-it/lpgtrack/pkg/types"

// Policy table, in rupees.
const (
	DamageCharge     = 500  // returned in any condition other than Good
	OverdueSurcharge = 1000 // held past its hydrostatic test deadline
)

// Evaluate returns the liability for a cylinder returned in the given
// condition. Pure: no side effects, deterministic.
func Evaluate(condition string, isOverdue bool) int {
	amount := 0
	if condition != types.ConditionGood {
		amount += DamageCharge
	}
	if isOverdue {
		amount += OverdueSurcharge
	}
	return amount
}
