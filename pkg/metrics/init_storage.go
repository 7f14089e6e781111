package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initStorageMetrics() {
	r.OperationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "lsm_operations_total",
			Help: "Total number of storage operations by kind and outcome",
		},
		[]string{"operation", "status"},
	)

	r.OperationDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lsm_operation_duration_seconds",
			Help:    "Storage operation duration in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		},
		[]string{"operation"},
	)

	r.L0SSTablesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "lsm_l0_sstables_total",
			Help: "Number of L0 SSTs currently in the layer set",
		},
	)

	r.ImmMemtablesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "lsm_immutable_memtables_total",
			Help: "Number of frozen memtables awaiting flush",
		},
	)

	r.MemtableBytes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "lsm_memtable_bytes",
			Help: "Approximate byte size of the active memtable",
		},
	)

	r.BlockCacheHitsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "lsm_block_cache_hits_total",
			Help: "Total block cache hits",
		},
	)

	r.BlockCacheMissesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "lsm_block_cache_misses_total",
			Help: "Total block cache misses",
		},
	)
}
