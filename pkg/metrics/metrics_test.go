package metrics

import (
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}

	if r.OperationsTotal == nil {
		t.Error("OperationsTotal not initialized")
	}
	if r.OperationDuration == nil {
		t.Error("OperationDuration not initialized")
	}
	if r.L0SSTablesTotal == nil {
		t.Error("L0SSTablesTotal not initialized")
	}
	if r.BlockCacheHitsTotal == nil {
		t.Error("BlockCacheHitsTotal not initialized")
	}
	if r.registry == nil {
		t.Error("Prometheus registry not initialized")
	}
}

func TestDefaultRegistry(t *testing.T) {
	r1 := DefaultRegistry()
	r2 := DefaultRegistry()

	if r1 != r2 {
		t.Error("DefaultRegistry() should return the same instance")
	}
}

func TestRecordOperation(t *testing.T) {
	r := NewRegistry()

	r.RecordOperation("get", "ok", 1*time.Millisecond)
	r.RecordOperation("get", "ok", 2*time.Millisecond)
	r.RecordOperation("get", "not_found", 1*time.Millisecond)

	counter, err := r.OperationsTotal.GetMetricWithLabelValues("get", "ok")
	if err != nil {
		t.Fatalf("failed to get metric: %v", err)
	}
	var metric dto.Metric
	if err := counter.Write(&metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if got := metric.GetCounter().GetValue(); got != 2 {
		t.Errorf("OperationsTotal[get,ok] = %v, want 2", got)
	}
}

func TestUpdateLayerMetrics(t *testing.T) {
	r := NewRegistry()
	r.UpdateLayerMetrics(3, 1, 4096)

	var metric dto.Metric
	if err := r.L0SSTablesTotal.Write(&metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if got := metric.GetGauge().GetValue(); got != 3 {
		t.Errorf("L0SSTablesTotal = %v, want 3", got)
	}
}

func TestRecordBlockCacheAccess(t *testing.T) {
	r := NewRegistry()
	r.RecordBlockCacheAccess(true)
	r.RecordBlockCacheAccess(true)
	r.RecordBlockCacheAccess(false)

	var hits, misses dto.Metric
	if err := r.BlockCacheHitsTotal.Write(&hits); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if err := r.BlockCacheMissesTotal.Write(&misses); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	if got := hits.GetCounter().GetValue(); got != 2 {
		t.Errorf("BlockCacheHitsTotal = %v, want 2", got)
	}
	if got := misses.GetCounter().GetValue(); got != 1 {
		t.Errorf("BlockCacheMissesTotal = %v, want 1", got)
	}
}
