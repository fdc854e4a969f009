package cv

import (
	"math"
	"testing"

	"github.com/anofox/tsforge/pkg/engerr"
)

// meanForecaster forecasts every future step as the mean of its training
// data; a deliberately simple stand-in for a real pkg/models entry so the
// execution/aggregation machinery can be exercised in isolation.
type meanForecaster struct {
	mean float64
}

func (m *meanForecaster) Fit(values []float64) error {
	if len(values) == 0 {
		return engerr.New(engerr.InvalidArgument, "meanForecaster.Fit", "empty training slice")
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	m.mean = sum / float64(len(values))
	return nil
}

func (m *meanForecaster) Forecast(steps int) ([]float64, error) {
	out := make([]float64, steps)
	for i := range out {
		out[i] = m.mean
	}
	return out, nil
}

type alwaysFailForecaster struct{}

func (alwaysFailForecaster) Fit(values []float64) error { return nil }
func (alwaysFailForecaster) Forecast(steps int) ([]float64, error) {
	return nil, engerr.New(engerr.NumericalFailure, "alwaysFailForecaster.Forecast", "boom")
}

type panickingForecaster struct{}

func (panickingForecaster) Fit(values []float64) error { panic("synthetic forecaster panic") }
func (panickingForecaster) Forecast(steps int) ([]float64, error) {
	return nil, nil
}

func TestRunProducesPerFoldAndAggregateMetrics(t *testing.T) {
	cfg := Config{N: 30, InitialWindow: 10, Horizon: 3, Strategy: Expanding}
	values := make([]float64, 30)
	for i := range values {
		values[i] = 5
	}
	results, agg, err := Run(cfg, values, func() Forecaster { return &meanForecaster{} })
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, r := range results {
		if r.Err != nil {
			t.Fatalf("unexpected fold failure: %v", r.Err)
		}
		if math.Abs(r.MAE) > 1e-9 {
			t.Fatalf("constant series should yield zero MAE, got %v", r.MAE)
		}
	}
	if agg.FoldCount != len(results) {
		t.Fatalf("expected all folds to succeed, agg.FoldCount=%d results=%d", agg.FoldCount, len(results))
	}
	if agg.FailCount != 0 {
		t.Fatalf("expected no failures, got %d", agg.FailCount)
	}
}

func TestRunSkipsFailedFoldsFromAggregation(t *testing.T) {
	cfg := Config{N: 20, InitialWindow: 10, Horizon: 2, Strategy: Expanding}
	values := make([]float64, 20)
	for i := range values {
		values[i] = float64(i)
	}
	results, agg, err := Run(cfg, values, func() Forecaster { return alwaysFailForecaster{} })
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, r := range results {
		if r.Err == nil {
			t.Fatalf("expected every fold to fail for alwaysFailForecaster")
		}
	}
	if agg.FoldCount != 0 || agg.FailCount != len(results) {
		t.Fatalf("expected all folds counted as failures, got foldCount=%d failCount=%d", agg.FoldCount, agg.FailCount)
	}
}

func TestRunOneFoldRecoversFromPanicAsFailedFold(t *testing.T) {
	cfg := Config{N: 20, InitialWindow: 10, Horizon: 2, Strategy: Expanding}
	folds, err := GenerateFolds(cfg)
	if err != nil {
		t.Fatalf("generate folds: %v", err)
	}
	values := make([]float64, 20)
	for i := range values {
		values[i] = float64(i)
	}

	result := runOneFold(folds[0], values, func() Forecaster { return panickingForecaster{} })
	if result.Err == nil {
		t.Fatalf("expected a panicking forecaster to resolve to a failed fold, got %+v", result)
	}
	if result.Fold != folds[0] {
		t.Fatalf("expected failedFold to preserve the fold, got %+v", result.Fold)
	}
	if !math.IsNaN(result.MAE) {
		t.Fatalf("expected NaN metrics on a failed fold, got MAE=%v", result.MAE)
	}
}

func TestRunAggregatesDoNotCountPanickingFoldAsSuccessful(t *testing.T) {
	cfg := Config{N: 20, InitialWindow: 10, Horizon: 2, Strategy: Expanding}
	values := make([]float64, 20)
	for i := range values {
		values[i] = float64(i)
	}
	results, agg, err := Run(cfg, values, func() Forecaster { return panickingForecaster{} })
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, r := range results {
		if r.Err == nil {
			t.Fatalf("expected every fold to fail for panickingForecaster")
		}
	}
	if agg.FoldCount != 0 || agg.FailCount != len(results) {
		t.Fatalf("expected a panicking forecaster to never be folded into successful aggregate metrics, got foldCount=%d failCount=%d", agg.FoldCount, agg.FailCount)
	}
}
