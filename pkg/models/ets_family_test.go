package models

import (
	"math"
	"testing"
)

func TestSESFitsAndForecastsFlat(t *testing.T) {
	m, err := New("SES", Params{"alpha": "0.5"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := m.Fit([]float64{10, 10, 10, 10, 10}); err != nil {
		t.Fatalf("fit: %v", err)
	}
	out, err := m.Forecast(3)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	for _, v := range out {
		if math.Abs(v-10) > 1e-6 {
			t.Fatalf("expected flat forecast near 10, got %v", out)
		}
	}
}

func TestSESOptimizedFitsAndForecasts(t *testing.T) {
	values := []float64{10, 12, 11, 13, 12, 14, 13, 15}
	m, err := New("SESOptimized", nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := m.Fit(values); err != nil {
		t.Fatalf("fit: %v", err)
	}
	if _, err := m.Forecast(2); err != nil {
		t.Fatalf("forecast: %v", err)
	}
}

func TestHoltWintersHandlesSeasonalSeries(t *testing.T) {
	values := make([]float64, 0, 24)
	for cycle := 0; cycle < 4; cycle++ {
		for _, v := range []float64{10, 20, 30, 15} {
			values = append(values, v+float64(cycle))
		}
	}
	m, err := New("HoltWinters", Params{"seasonal_period": "4"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := m.Fit(values); err != nil {
		t.Fatalf("fit: %v", err)
	}
	out, err := m.Forecast(4)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if len(out) != 4 {
		t.Fatalf("expected 4 forecast steps, got %d", len(out))
	}
}

func TestAutoETSSelectsAStructure(t *testing.T) {
	values := []float64{10, 11, 12, 13, 14, 15, 16, 17, 18, 19}
	m, err := New("AutoETS", nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := m.Fit(values); err != nil {
		t.Fatalf("fit: %v", err)
	}
	if _, err := m.Forecast(3); err != nil {
		t.Fatalf("forecast: %v", err)
	}
}

func TestUnknownModelNameErrors(t *testing.T) {
	if _, err := New("NotARealModel", nil); err == nil {
		t.Fatalf("expected error for unknown model")
	}
}
