package telemetry

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestRecordOptimizerRunTracksFailures(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordOptimizerRun(12, true, "")
	m.RecordOptimizerRun(50, false, "line_search_failed")

	var metric dto.Metric
	if err := m.OptimizerFailuresTotal.WithLabelValues("line_search_failed").Write(&metric); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	if metric.Counter.GetValue() != 1 {
		t.Fatalf("expected 1 failure recorded, got %v", metric.Counter.GetValue())
	}
}

func TestRecordFoldIncrementsFailuresOnError(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordFold("ETS", 0.01, nil)
	m.RecordFold("ETS", 0.02, errors.New("fit failed"))

	var metric dto.Metric
	if err := m.CVFoldFailuresTotal.WithLabelValues("ETS").Write(&metric); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	if metric.Counter.GetValue() != 1 {
		t.Fatalf("expected 1 fold failure recorded, got %v", metric.Counter.GetValue())
	}
}

func TestRecordGroupsProcessedAccumulates(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordGroupsProcessed(3)
	m.RecordGroupsProcessed(4)

	var metric dto.Metric
	if err := m.GroupopGroupsProcessed.Write(&metric); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	if metric.Counter.GetValue() != 7 {
		t.Fatalf("expected 7 groups processed, got %v", metric.Counter.GetValue())
	}
}
