package models

import (
	"math"
	"testing"
)

func intermittentSeries() []float64 {
	return []float64{0, 0, 3, 0, 0, 0, 5, 0, 2, 0, 0, 0, 4, 0, 0}
}

func TestCrostonClassicProducesPositiveRate(t *testing.T) {
	m, err := New("CrostonClassic", nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := m.Fit(intermittentSeries()); err != nil {
		t.Fatalf("fit: %v", err)
	}
	out, err := m.Forecast(3)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	for _, v := range out {
		if v <= 0 {
			t.Fatalf("expected positive demand rate, got %v", v)
		}
	}
}

func TestCrostonSBABiasCorrectsBelowClassic(t *testing.T) {
	series := intermittentSeries()
	classic, _ := New("CrostonClassic", Params{"alpha": "0.2"})
	classic.Fit(series)
	classicOut, _ := classic.Forecast(1)

	sba, _ := New("CrostonSBA", Params{"alpha": "0.2"})
	sba.Fit(series)
	sbaOut, _ := sba.Forecast(1)

	if sbaOut[0] >= classicOut[0] {
		t.Fatalf("expected SBA forecast below classic: sba=%v classic=%v", sbaOut[0], classicOut[0])
	}
}

func TestCrostonFittedDefaultsToPadLeadingNaN(t *testing.T) {
	series := intermittentSeries()
	m, err := New("CrostonClassic", Params{"alpha": "0.2"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := m.Fit(series); err != nil {
		t.Fatalf("fit: %v", err)
	}
	fp, ok := m.(FittedProvider)
	if !ok {
		t.Fatalf("expected CrostonClassic to implement FittedProvider")
	}
	fitted, mode := fp.Fitted()
	if mode != PadLeadingNaN {
		t.Fatalf("expected default mode PadLeadingNaN, got %v", mode)
	}
	if len(fitted) != len(series) {
		t.Fatalf("expected fitted length %d to match input, got %d", len(series), len(fitted))
	}
	for i, v := range fitted {
		if i < 2 {
			if !math.IsNaN(v) {
				t.Fatalf("expected NaN before first occurrence at index %d, got %v", i, v)
			}
			continue
		}
		if math.IsNaN(v) {
			t.Fatalf("expected a defined fitted value at index %d", i)
		}
	}
}

func TestCrostonFittedTruncateToInputDropsLeadingPositions(t *testing.T) {
	series := intermittentSeries()
	m, err := New("CrostonClassic", Params{"alpha": "0.2", "fitted_length_mode": "truncate_to_input"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := m.Fit(series); err != nil {
		t.Fatalf("fit: %v", err)
	}
	fp := m.(FittedProvider)
	fitted, mode := fp.Fitted()
	if mode != TruncateToInput {
		t.Fatalf("expected mode TruncateToInput, got %v", mode)
	}
	firstOccurrence := 2
	if len(fitted) != len(series)-firstOccurrence {
		t.Fatalf("expected truncated length %d, got %d", len(series)-firstOccurrence, len(fitted))
	}
	for _, v := range fitted {
		if math.IsNaN(v) {
			t.Fatalf("did not expect NaN in a truncated fitted vector")
		}
	}
}

func TestCrostonFittedAllZeroSeriesStaysAllNaN(t *testing.T) {
	m, _ := New("CrostonClassic", nil)
	zeros := make([]float64, 5)
	if err := m.Fit(zeros); err != nil {
		t.Fatalf("fit: %v", err)
	}
	fitted, _ := m.(FittedProvider).Fitted()
	if len(fitted) != len(zeros) {
		t.Fatalf("expected fitted length %d, got %d", len(zeros), len(fitted))
	}
	for _, v := range fitted {
		if !math.IsNaN(v) {
			t.Fatalf("expected all-NaN fitted vector for an all-zero series, got %v", v)
		}
	}
}

func TestADIDAHandlesIntermittentSeries(t *testing.T) {
	m, err := New("ADIDA", nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := m.Fit(intermittentSeries()); err != nil {
		t.Fatalf("fit: %v", err)
	}
	if _, err := m.Forecast(2); err != nil {
		t.Fatalf("forecast: %v", err)
	}
}

func TestIMAPAHandlesIntermittentSeries(t *testing.T) {
	m, err := New("IMAPA", nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := m.Fit(intermittentSeries()); err != nil {
		t.Fatalf("fit: %v", err)
	}
	if _, err := m.Forecast(2); err != nil {
		t.Fatalf("forecast: %v", err)
	}
}

func TestTSBHandlesAllZeroSeries(t *testing.T) {
	m, err := New("TSB", nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := m.Fit(make([]float64, 10)); err != nil {
		t.Fatalf("fit: %v", err)
	}
	out, err := m.Forecast(2)
	if err != nil {
		t.Fatalf("forecast: %v", err)
	}
	if out[0] != 0 {
		t.Fatalf("expected zero forecast for all-zero series, got %v", out[0])
	}
}
