package models

import "testing"

func seasonalARSeries(n, period int) []float64 {
	values := make([]float64, n)
	for i := range values {
		seasonal := float64(i%period) * 2
		values[i] = 50 + seasonal + float64(i)*0.1
	}
	return values
}

func TestSARIMAFitsAndForecasts(t *testing.T) {
	values := seasonalARSeries(60, 7)
	m := &sarimaModel{p: 1, d: 1, q: 1, seasonalP: 1, seasonalD: 0, seasonalQ: 1, period: 7}
	if err := m.Fit(values); err != nil {
		t.Fatalf("fit: %v", err)
	}
	out, err := m.Forecast(5)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if len(out) != 5 {
		t.Fatalf("expected 5 forecasted points, got %d", len(out))
	}
	for _, v := range out {
		if v != v {
			t.Fatalf("forecast produced NaN")
		}
	}
}

func TestSARIMARejectsSeasonalTermsWithoutPeriod(t *testing.T) {
	m := &sarimaModel{p: 1, d: 0, q: 0, seasonalP: 1, period: 0}
	if err := m.Fit(seasonalARSeries(40, 7)); err == nil {
		t.Fatalf("expected error for seasonal term without seasonal_period")
	}
}

func TestSARIMARejectsShortSeries(t *testing.T) {
	m := &sarimaModel{p: 1, d: 1, q: 1, seasonalP: 1, seasonalD: 1, seasonalQ: 1, period: 12}
	if err := m.Fit(make([]float64, 10)); err == nil {
		t.Fatalf("expected error for too-short series")
	}
}

func TestSARIMANonSeasonalMatchesARIMAShape(t *testing.T) {
	values := seasonalARSeries(40, 7)
	m := &sarimaModel{p: 1, d: 1, q: 1}
	if err := m.Fit(values); err != nil {
		t.Fatalf("fit: %v", err)
	}
	if _, err := m.Forecast(3); err != nil {
		t.Fatalf("forecast: %v", err)
	}
}
