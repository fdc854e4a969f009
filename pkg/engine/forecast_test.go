package engine

import (
	"math"
	"testing"
	"time"

	"github.com/anofox/tsforge/pkg/models"
)

func flatSeries(n int, base float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = base
	}
	return out
}

func TestForecastProducesPointAndInterval(t *testing.T) {
	result, err := Forecast(flatSeries(20, 10), 5, "SES", models.Params{"alpha": "0.3"})
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if len(result.Point) != 5 {
		t.Fatalf("expected 5 point forecasts, got %d", len(result.Point))
	}
	if len(result.Lower) != 5 || len(result.Upper) != 5 {
		t.Fatalf("expected interval bounds of length 5")
	}
	if result.ConfidenceLevel != defaultConfidenceLevel {
		t.Fatalf("expected default confidence level, got %v", result.ConfidenceLevel)
	}
}

func TestForecastRejectsNonPositiveHorizon(t *testing.T) {
	if _, err := Forecast(flatSeries(10, 1), 0, "Naive", nil); err == nil {
		t.Fatalf("expected error for zero horizon")
	}
}

func TestForecastRejectsUnknownModel(t *testing.T) {
	_, err := Forecast(flatSeries(10, 1), 3, "NotAModel", nil)
	if err == nil {
		t.Fatalf("expected error for unknown model name")
	}
}

func TestForecastIncludesFittedWhenRequested(t *testing.T) {
	result, err := Forecast(flatSeries(15, 5), 2, "Naive", models.Params{"return_insample": "true"})
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if len(result.Fitted) != 15 || len(result.Residuals) != 15 {
		t.Fatalf("expected fitted/residuals of length 15")
	}
}

func TestForecastUsesModelReportedFittedWhenAvailable(t *testing.T) {
	values := []float64{0, 0, 3, 0, 0, 0, 5, 0, 2, 0, 0, 0, 4, 0, 0}
	result, err := Forecast(values, 2, "CrostonClassic", models.Params{"return_insample": "true"})
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if len(result.Fitted) != len(values) || len(result.Residuals) != len(values) {
		t.Fatalf("expected fitted/residuals of length %d, got %d/%d", len(values), len(result.Fitted), len(result.Residuals))
	}
	if !math.IsNaN(result.Fitted[0]) {
		t.Fatalf("expected leading NaN before Croston's first occurrence")
	}
}

func TestForecastSMAMatchesWorkedExample(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	result, err := Forecast(values, 3, "SMA", models.Params{"window": "3"})
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	want := []float64{9, 9, 9}
	if len(result.Point) != len(want) {
		t.Fatalf("expected %d point forecasts, got %d", len(want), len(result.Point))
	}
	for i, v := range want {
		if math.Abs(result.Point[i]-v) > 1e-9 {
			t.Fatalf("point[%d] = %v, want %v", i, result.Point[i], v)
		}
	}
}

func TestForecastNaiveFittedMatchesWorkedExample(t *testing.T) {
	values := []float64{5, 7, 6, 8, 7}
	result, err := Forecast(values, 1, "Naive", models.Params{"return_insample": "true"})
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if !math.IsNaN(result.Fitted[0]) {
		t.Fatalf("fitted[0] = %v, want NaN", result.Fitted[0])
	}
	wantFitted := []float64{5, 7, 6, 8}
	for i, v := range wantFitted {
		if math.Abs(result.Fitted[i+1]-v) > 1e-9 {
			t.Fatalf("fitted[%d] = %v, want %v", i+1, result.Fitted[i+1], v)
		}
	}
	if len(result.Point) != 1 || math.Abs(result.Point[0]-7) > 1e-9 {
		t.Fatalf("point forecast = %v, want [7]", result.Point)
	}
}

func TestForecastAggSortsByTimestamp(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ts := []time.Time{base.Add(2 * time.Hour), base, base.Add(time.Hour)}
	values := []float64{30, 10, 20}
	result, err := ForecastAgg(ts, values, "Naive", 1, nil)
	if err != nil {
		t.Fatalf("forecast agg: %v", err)
	}
	if result.Point[0] != 30 {
		t.Fatalf("expected naive forecast of last (sorted) value 30, got %v", result.Point[0])
	}
}
