package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds the Prometheus series the storage engine exports.
type Registry struct {
	// Operation counters, mirroring LsmStorage.Stats.
	OperationsTotal    *prometheus.CounterVec
	OperationDuration  *prometheus.HistogramVec

	// Layer-set shape, sampled on demand via UpdateLayerMetrics.
	L0SSTablesTotal   prometheus.Gauge
	ImmMemtablesTotal prometheus.Gauge
	MemtableBytes     prometheus.Gauge

	// Block cache effectiveness.
	BlockCacheHitsTotal   prometheus.Counter
	BlockCacheMissesTotal prometheus.Counter

	registry *prometheus.Registry
	mu       sync.RWMutex
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the process-wide metrics registry, created
// on first use.
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new, independent metrics registry with every
// storage series initialised.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{registry: reg}
	r.initStorageMetrics()
	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry, for
// wiring into an HTTP exposition handler.
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
