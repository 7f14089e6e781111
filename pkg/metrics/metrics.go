package metrics

import (
	"time"
)

// RecordOperation records a single storage operation's outcome and
// latency.
func (r *Registry) RecordOperation(operation, status string, duration time.Duration) {
	r.OperationsTotal.WithLabelValues(operation, status).Inc()
	r.OperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateLayerMetrics sets the gauges describing the current layer-set
// shape, sourced from LsmStorage.Stats.
func (r *Registry) UpdateLayerMetrics(l0SSTables, immMemtables, memtableBytes int) {
	r.L0SSTablesTotal.Set(float64(l0SSTables))
	r.ImmMemtablesTotal.Set(float64(immMemtables))
	r.MemtableBytes.Set(float64(memtableBytes))
}

// RecordBlockCacheAccess records a single block cache lookup outcome.
func (r *Registry) RecordBlockCacheAccess(hit bool) {
	if hit {
		r.BlockCacheHitsTotal.Inc()
		return
	}
	r.BlockCacheMissesTotal.Inc()
}
