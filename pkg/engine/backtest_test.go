package engine

import (
	"testing"

	"github.com/anofox/tsforge/pkg/cv"
)

func TestBacktestAutoRunsFoldsAndAggregates(t *testing.T) {
	values := make([]float64, 40)
	for i := range values {
		values[i] = float64(i)
	}
	cfg := BacktestAutoConfig{
		Config: cv.Config{N: 40, InitialWindow: 20, Horizon: 5, Strategy: cv.Expanding},
		ModelName: "Naive",
	}
	results, agg, err := BacktestAuto(values, cfg)
	if err != nil {
		t.Fatalf("backtest: %v", err)
	}
	if len(results) == 0 {
		t.Fatalf("expected at least one fold result")
	}
	if agg.FoldCount == 0 {
		t.Fatalf("expected at least one successful fold")
	}
}

func TestBacktestAutoRequiresModelName(t *testing.T) {
	cfg := BacktestAutoConfig{Config: cv.Config{N: 10, InitialWindow: 5, Horizon: 2}}
	if _, _, err := BacktestAuto(make([]float64, 10), cfg); err == nil {
		t.Fatalf("expected error for missing model name")
	}
}

func TestCVSplitReturnsFolds(t *testing.T) {
	folds, err := CVSplit(cv.Config{N: 30, InitialWindow: 10, Horizon: 5})
	if err != nil {
		t.Fatalf("cv split: %v", err)
	}
	if len(folds) == 0 {
		t.Fatalf("expected at least one fold")
	}
}
