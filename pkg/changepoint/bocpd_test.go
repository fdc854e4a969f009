package changepoint

import (
	"testing"
)

func TestRunFlagsObviousLevelShift(t *testing.T) {
	values := make([]float64, 0, 40)
	for i := 0; i < 20; i++ {
		values = append(values, 1.0)
	}
	for i := 0; i < 20; i++ {
		values = append(values, 50.0)
	}
	cfg := DefaultConfig(100)
	cfg.Mu0 = 1

	result, err := Run(values, cfg)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(result.IsChangepoint) != len(values) {
		t.Fatalf("expected one flag per observation")
	}

	// The run length should collapse back toward 0 shortly after the
	// level shift at index 20, since the pre-shift model predicts the new
	// level very poorly.
	foundCollapse := false
	for t := 20; t < 25; t++ {
		if result.RunLengthMAP[t] <= 2 {
			foundCollapse = true
			break
		}
	}
	if !foundCollapse {
		t.Fatalf("expected run length to collapse near the level shift, got %v", result.RunLengthMAP[20:25])
	}
}

func TestRunStableSeriesGrowsRunLength(t *testing.T) {
	values := make([]float64, 30)
	for i := range values {
		values[i] = 5.0
	}
	cfg := DefaultConfig(250)
	cfg.Mu0 = 5

	result, err := Run(values, cfg)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.RunLengthMAP[len(values)-1] < len(values)/2 {
		t.Fatalf("expected run length to grow on a stable series, got %d", result.RunLengthMAP[len(values)-1])
	}
}

func TestRunRejectsEmptySeries(t *testing.T) {
	if _, err := Run(nil, DefaultConfig(100)); err == nil {
		t.Fatalf("expected error for empty series")
	}
}

func TestRunRejectsInvalidHazard(t *testing.T) {
	cfg := DefaultConfig(100)
	cfg.Hazard = 1.5
	if _, err := Run([]float64{1, 2, 3}, cfg); err == nil {
		t.Fatalf("expected error for hazard outside (0,1)")
	}
}

func TestProbabilitiesSumToOne(t *testing.T) {
	values := []float64{1, 2, 1.5, 2.5, 10, 11, 10.5}
	result, err := Run(values, DefaultConfig(50))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for step, probs := range result.Probabilities {
		sum := 0.0
		for _, p := range probs {
			sum += p
		}
		if sum < 0.99 || sum > 1.01 {
			t.Fatalf("step %d: run-length posterior does not sum to 1, got %v", step, sum)
		}
	}
}
