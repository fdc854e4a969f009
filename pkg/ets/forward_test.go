package ets

import (
	"math"
	"testing"
)

func TestForwardDeterministic(t *testing.T) {
	cfg := Config{Error: Additive, Trend: TrendAdditive, Season: SeasonNone, Alpha: 0.3, Beta: 0.1}
	values := []float64{10, 11, 12, 13, 14, 15}

	a, err := Forward(cfg, values, 10, 1, nil)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	b, err := Forward(cfg, values, 10, 1, nil)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	for i := range a.Levels {
		if a.Levels[i] != b.Levels[i] {
			t.Fatalf("forward is not deterministic at level %d: %v vs %v", i, a.Levels[i], b.Levels[i])
		}
	}
	if math.IsNaN(a.InnovationSSE) || math.IsInf(a.InnovationSSE, 0) {
		t.Fatalf("innovation SSE not finite: %v", a.InnovationSSE)
	}
}

func TestForwardAAN_S3Scenario(t *testing.T) {
	cfg := Config{Error: Additive, Trend: TrendAdditive, Season: SeasonNone, Alpha: 0.3, Beta: 0.1}
	values := []float64{10, 11, 12, 13, 14, 15}

	traj, err := Forward(cfg, values, 10, 1, nil)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if math.IsNaN(traj.InnovationSSE) || math.IsInf(traj.InnovationSSE, 0) {
		t.Fatalf("innovation_sse not finite: %v", traj.InnovationSSE)
	}
	if len(traj.Levels) != len(values)+1 {
		t.Fatalf("expected %d level states, got %d", len(values)+1, len(traj.Levels))
	}
	// A linearly trending series with a reasonable trend-following config
	// should produce small residuals after the first couple of steps.
	for i := 2; i < len(values); i++ {
		if math.Abs(traj.Innovations[i]) > 2.0 {
			t.Fatalf("innovation[%d] too large for near-linear series: %v", i, traj.Innovations[i])
		}
	}
}

func TestForwardSummaryMatchesFullSSE(t *testing.T) {
	cfg := Config{Error: Multiplicative, Trend: TrendDampedAdditive, Season: SeasonAdditive, Alpha: 0.4, Beta: 0.2, Gamma: 0.1, Phi: 0.9, M: 4}
	values := []float64{10, 12, 9, 14, 11, 13, 10, 15, 12, 16}
	seasonal0 := []float64{0.5, -0.5, 0.2, -0.2}

	full, err := Forward(cfg, values, 20, 0.5, seasonal0)
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	sse, sumLog, err := ForwardSummary(cfg, values, 20, 0.5, seasonal0)
	if err != nil {
		t.Fatalf("forward summary: %v", err)
	}
	if math.Abs(full.InnovationSSE-sse) > 1e-9 {
		t.Fatalf("SSE mismatch: full=%v summary=%v", full.InnovationSSE, sse)
	}
	if math.Abs(full.SumLogForecast-sumLog) > 1e-9 {
		t.Fatalf("sum-log mismatch: full=%v summary=%v", full.SumLogForecast, sumLog)
	}
}

func TestForwardRejectsInvalidConfig(t *testing.T) {
	cfg := Config{Error: Additive, Trend: TrendNone, Season: SeasonNone, Alpha: 1.5}
	if _, err := Forward(cfg, []float64{1, 2, 3}, 1, 0, nil); err == nil {
		t.Fatalf("expected validation error for alpha out of range")
	}
}
