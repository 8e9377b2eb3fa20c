package memory

import (
	"time"

	"github.com/workjay-it/lpgtrack/pkg/inspection"
	"github.com/workjay-it/lpgtrack/pkg/types"
)

// Demo returns a small fleet for demonstration runs: mixed sizes and
// statuses, one cylinder already past its test deadline relative to now.
func Demo(now time.Time) types.CylinderTable {
	mk := func(id string, capacity, fill int, status, pin, customer string, fillAgo, testAgo time.Duration) types.CylinderRecord {
		rec := types.CylinderRecord{
			CylinderID:   id,
			CapacityKg:   capacity,
			FillPercent:  fill,
			Status:       status,
			LocationPIN:  pin,
			CustomerName: customer,
		}
		if fillAgo > 0 {
			t := now.Add(-fillAgo)
			rec.LastFillDate = &t
		}
		if testAgo > 0 {
			t := now.Add(-testAgo)
			rec.LastTestDate = &t
			rec.NextTestDue = inspection.NextDueAt(&t)
			rec.Overdue = inspection.IsOverdue(rec.NextTestDue, now)
		}
		return rec
	}

	day := 24 * time.Hour
	return types.CylinderTable{
		mk("HYD-1001", 14, 100, types.StatusFull, "500033", "Sai Ram Traders", 2*day, 400*day),
		mk("HYD-1002", 14, 35, types.StatusActive, "500033", "Golkonda Canteen", 40*day, 900*day),
		mk("HYD-1003", 5, 0, types.StatusEmpty, "500081", "", 700*day, 1200*day),
		// Past the five-year deadline: last tested well over 1825 days ago.
		mk("HYD-1004", 19, 60, types.StatusActive, "500081", "Madhapur Tiffins", 30*day, 2000*day),
		mk("HYD-1005", 47, 80, types.StatusFull, "110001", "Karol Bagh Kitchens", 10*day, 0),
	}
}
