package models

import (
	"math"
	"testing"
)

func TestNaiveForecastsLastValue(t *testing.T) {
	m, err := New("Naive", nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := m.Fit([]float64{5, 7, 6, 8, 7}); err != nil {
		t.Fatalf("fit: %v", err)
	}
	out, err := m.Forecast(3)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	for i, v := range out {
		if v != 7 {
			t.Fatalf("forecast[%d] = %v, want 7", i, v)
		}
	}
}

func TestNaiveRejectsEmptySeries(t *testing.T) {
	m, _ := New("Naive", nil)
	if err := m.Fit(nil); err == nil {
		t.Fatalf("expected error for empty series")
	}
}

func TestSMAForecastsTrailingWindowMean(t *testing.T) {
	m, err := New("SMA", Params{"window": "3"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := m.Fit([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}); err != nil {
		t.Fatalf("fit: %v", err)
	}
	out, err := m.Forecast(3)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	for i, v := range out {
		if math.Abs(v-9) > 1e-9 {
			t.Fatalf("forecast[%d] = %v, want 9", i, v)
		}
	}
}

func TestSMAWindowDefaultsAndClampsToSeriesLength(t *testing.T) {
	m, err := New("SMA", Params{"window": "100"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	values := []float64{2, 4, 6}
	if err := m.Fit(values); err != nil {
		t.Fatalf("fit: %v", err)
	}
	out, err := m.Forecast(1)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if math.Abs(out[0]-4) > 1e-9 {
		t.Fatalf("expected mean of whole series 4, got %v", out[0])
	}
}

func TestSeasonalNaiveRepeatsLastCycle(t *testing.T) {
	m, err := New("SeasonalNaive", Params{"seasonal_period": "3"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := m.Fit([]float64{1, 2, 3, 4, 5, 6}); err != nil {
		t.Fatalf("fit: %v", err)
	}
	out, err := m.Forecast(5)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	want := []float64{4, 5, 6, 4, 5}
	for i, v := range want {
		if out[i] != v {
			t.Fatalf("forecast[%d] = %v, want %v", i, out[i], v)
		}
	}
}

func TestSeasonalNaiveRejectsSeriesShorterThanPeriod(t *testing.T) {
	m, _ := New("SeasonalNaive", Params{"seasonal_period": "12"})
	if err := m.Fit([]float64{1, 2, 3}); err == nil {
		t.Fatalf("expected error for series shorter than seasonal_period")
	}
}

func TestSeasonalNaiveRejectsNonPositivePeriod(t *testing.T) {
	m, _ := New("SeasonalNaive", Params{"seasonal_period": "0"})
	if err := m.Fit([]float64{1, 2, 3}); err == nil {
		t.Fatalf("expected error for non-positive seasonal_period")
	}
}

func TestRandomWalkDriftExtrapolatesMeanStep(t *testing.T) {
	m, err := New("RandomWalkDrift", nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	// Mean step over the series is (13-1)/4 = 3; last value is 13.
	if err := m.Fit([]float64{1, 4, 7, 10, 13}); err != nil {
		t.Fatalf("fit: %v", err)
	}
	out, err := m.Forecast(2)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	want := []float64{16, 19}
	for i, v := range want {
		if math.Abs(out[i]-v) > 1e-9 {
			t.Fatalf("forecast[%d] = %v, want %v", i, out[i], v)
		}
	}
}

func TestRandomWalkDriftRejectsTooShortSeries(t *testing.T) {
	m, _ := New("RandomWalkDrift", nil)
	if err := m.Fit([]float64{1}); err == nil {
		t.Fatalf("expected error for fewer than 2 observations")
	}
}
