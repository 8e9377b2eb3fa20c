// Package metrics exposes the process counters on a private registry so the
// default prometheus globals stay untouched.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

var (
	// Loads counts table loads by result: hit (served from cache), fetch
	// (read from the store) or degraded (store unavailable, empty table).
	Loads = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Name: "lpgtrack_loads_total",
		Help: "Cylinder table loads by result.",
	}, []string{"result"})

	// Mutations counts applied mutations by operation and whether the
	// result reached the store or stayed in memory.
	Mutations = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Name: "lpgtrack_mutations_total",
		Help: "Applied mutations by operation and persistence outcome.",
	}, []string{"op", "persistence"})

	// RecordsLoaded tracks the size of the last table read from the store.
	RecordsLoaded = promauto.With(registry).NewGauge(prometheus.GaugeOpts{
		Name: "lpgtrack_records_loaded",
		Help: "Cylinder records in the most recently loaded table.",
	})

	// StoreErrors counts hard store failures by operation.
	StoreErrors = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Name: "lpgtrack_store_errors_total",
		Help: "Store operation failures.",
	}, []string{"op"})
)

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
