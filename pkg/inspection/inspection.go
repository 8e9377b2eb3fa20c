// Package inspection computes the hydrostatic test schedule for LPG
// cylinders. All functions are pure; callers supply the clock.
package inspection

import "time"

// TestInterval is the time between mandatory hydrostatic tests. Regulation
// phrases it as five years; the fixed 1825-day offset keeps the schedule
// uniform across leap years.
const TestInterval = 1825 * 24 * time.Hour

// NextDue returns the date the next hydrostatic test falls due after a test
// performed at lastTest. Deterministic: equal inputs give equal outputs.
func NextDue(lastTest time.Time) time.Time {
	return lastTest.Add(TestInterval)
}

// NextDueAt is NextDue lifted over unknown dates: a nil lastTest yields a
// nil due date.
func NextDueAt(lastTest *time.Time) *time.Time {
	if lastTest == nil {
		return nil
	}
	due := NextDue(*lastTest)
	return &due
}

// IsOverdue reports whether the next test deadline has passed. The boundary
// is exclusive: a deadline equal to now is not yet overdue. An unknown (nil)
// deadline is never overdue; missing data flags nothing.
func IsOverdue(next *time.Time, now time.Time) bool {
	return next != nil && next.Before(now)
}
