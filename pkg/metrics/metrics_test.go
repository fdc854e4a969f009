package metrics

import (
	"math"
	"testing"
)

func TestMAEAndMSE(t *testing.T) {
	actual := []float64{1, 2, 3}
	forecast := []float64{1, 2, 5}
	mae, err := MAE(actual, forecast)
	if err != nil {
		t.Fatalf("mae: %v", err)
	}
	if math.Abs(mae-2.0/3) > 1e-9 {
		t.Fatalf("mae = %v, want 0.6667", mae)
	}
	mse, err := MSE(actual, forecast)
	if err != nil {
		t.Fatalf("mse: %v", err)
	}
	if math.Abs(mse-4.0/3) > 1e-9 {
		t.Fatalf("mse = %v, want 1.3333", mse)
	}
}

func TestMAEMatchesWorkedExample(t *testing.T) {
	actual := []float64{1, 2, 3}
	forecast := []float64{1.1, 2.1, 3.1}
	mae, err := MAE(actual, forecast)
	if err != nil {
		t.Fatalf("mae: %v", err)
	}
	if math.Abs(mae-0.1) > 1e-9 {
		t.Fatalf("mae = %v, want 0.1", mae)
	}
}

func TestMAPEReturnsNotOKOnZeroActual(t *testing.T) {
	_, ok, err := MAPE([]float64{0, 1}, []float64{1, 1})
	if err != nil {
		t.Fatalf("mape: %v", err)
	}
	if ok {
		t.Fatalf("expected MAPE to be undefined when an actual is zero")
	}
}

func TestSMAPEBounded(t *testing.T) {
	v, err := SMAPE([]float64{1, -1}, []float64{-1, 1})
	if err != nil {
		t.Fatalf("smape: %v", err)
	}
	if v < 0 || v > 200 {
		t.Fatalf("smape out of [0,200]: %v", v)
	}
}

func TestMASEAgainstNaiveBaseline(t *testing.T) {
	actual := []float64{10, 12, 14, 16}
	forecast := []float64{10, 12, 14, 16}
	mase, err := MASE(actual, forecast)
	if err != nil {
		t.Fatalf("mase: %v", err)
	}
	if mase != 0 {
		t.Fatalf("perfect forecast should have MASE 0, got %v", mase)
	}
}

func TestR2PerfectFit(t *testing.T) {
	actual := []float64{1, 2, 3, 4}
	r2, err := R2(actual, actual)
	if err != nil {
		t.Fatalf("r2: %v", err)
	}
	if math.Abs(r2-1) > 1e-9 {
		t.Fatalf("r2 = %v, want 1", r2)
	}
}

func TestCoverageFraction(t *testing.T) {
	actual := []float64{1, 2, 3, 4}
	lower := []float64{0, 0, 0, 10}
	upper := []float64{5, 5, 5, 11}
	cov, err := Coverage(actual, lower, upper)
	if err != nil {
		t.Fatalf("coverage: %v", err)
	}
	if math.Abs(cov-0.75) > 1e-9 {
		t.Fatalf("coverage = %v, want 0.75", cov)
	}
}

func TestQuantileLossAndMeanQuantileLoss(t *testing.T) {
	actual := []float64{10, 12}
	f50 := []float64{9, 13}
	f90 := []float64{11, 14}
	l50, err := QuantileLoss(actual, f50, 0.5)
	if err != nil {
		t.Fatalf("quantile loss: %v", err)
	}
	if l50 < 0 {
		t.Fatalf("quantile loss should be non-negative: %v", l50)
	}
	mql, err := MeanQuantileLoss(actual, [][]float64{f50, f90}, []float64{0.5, 0.9})
	if err != nil {
		t.Fatalf("mean quantile loss: %v", err)
	}
	if mql < 0 {
		t.Fatalf("mean quantile loss should be non-negative: %v", mql)
	}
}

func TestMismatchedLengthsError(t *testing.T) {
	if _, err := MAE([]float64{1, 2}, []float64{1}); err == nil {
		t.Fatalf("expected error for mismatched lengths")
	}
}
