// Package loader reads the cylinder table through a TTL cache and repairs
// what raw rows tend to get wrong: PINs are normalized, the next test date is
// backfilled from the last test, and the overdue flag is recomputed against
// the clock rather than trusted from the file.
package loader

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/workjay-it/lpgtrack/internal/logging"
	"github.com/workjay-it/lpgtrack/internal/metrics"
	"github.com/workjay-it/lpgtrack/pkg/inspection"
	"github.com/workjay-it/lpgtrack/pkg/types"
)

var log = logging.Component("loader")

// Loader serves the table from its cache inside the TTL window and from the
// store outside it. A zero or negative TTL disables caching entirely.
type Loader struct {
	store types.Store
	ttl   time.Duration
	now   func() time.Time

	mu        sync.Mutex
	table     types.CylinderTable
	fetchedAt time.Time
	valid     bool
}

// New returns a Loader over store with the given cache TTL.
func New(store types.Store, ttl time.Duration) *Loader {
	return &Loader{store: store, ttl: ttl, now: time.Now}
}

// Load returns the current table, normalized. Callers get their own copy.
//
// When the store reports unavailable, Load degrades instead of failing: it
// returns a usable empty table together with the error, so a fresh install
// keeps working while the caller can still surface the condition. The empty
// table is not cached; the next Load retries the store.
func (l *Loader) Load(ctx context.Context) (types.CylinderTable, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if l.valid && l.ttl > 0 && now.Sub(l.fetchedAt) < l.ttl {
		metrics.Loads.WithLabelValues("hit").Inc()
		return l.table.Clone(), nil
	}

	raw, err := l.store.ReadAll(ctx)
	if err != nil {
		if errors.Is(err, types.ErrStoreUnavailable) {
			metrics.Loads.WithLabelValues("degraded").Inc()
			log.WithError(err).Warn("store unavailable, serving empty table")
			return types.CylinderTable{}, err
		}
		metrics.StoreErrors.WithLabelValues("read").Inc()
		return nil, err
	}

	table := Normalize(raw, now)
	l.table = table
	l.fetchedAt = now
	l.valid = true
	metrics.Loads.WithLabelValues("fetch").Inc()
	metrics.RecordsLoaded.Set(float64(len(table)))
	log.WithField("records", len(table)).Debug("table loaded")
	return table.Clone(), nil
}

// Invalidate drops the cached table so the next Load reads the store.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	l.valid = false
	l.mu.Unlock()
}

// Normalize returns a cleaned copy of raw. Text fields are trimmed, a blank
// status is read as Full, PINs go through NormalizePIN, a missing next test
// date is derived from the last test, and the overdue flag is recomputed
// against now.
func Normalize(raw types.CylinderTable, now time.Time) types.CylinderTable {
	table := raw.Clone()
	for i := range table {
		rec := &table[i]
		rec.CylinderID = strings.TrimSpace(rec.CylinderID)
		rec.Status = strings.TrimSpace(rec.Status)
		if rec.Status == "" {
			rec.Status = types.StatusFull
		}
		rec.CustomerName = strings.TrimSpace(rec.CustomerName)
		rec.LocationPIN = types.NormalizePIN(rec.LocationPIN)
		if rec.NextTestDue == nil && rec.LastTestDate != nil {
			due := inspection.NextDue(*rec.LastTestDate)
			rec.NextTestDue = &due
		}
		rec.Overdue = inspection.IsOverdue(rec.NextTestDue, now)
	}
	return table
}
