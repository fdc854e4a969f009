package aggstate

import (
	"testing"
	"time"

	"github.com/anofox/tsforge/pkg/series"
)

func TestAccumulateCapturesParamsOnce(t *testing.T) {
	s := New()
	base := time.Now()
	s.Accumulate(base, 1, true, map[string]any{"alpha": 0.3})
	s.Accumulate(base.Add(time.Hour), 2, true, map[string]any{"alpha": 0.9})
	if s.Params["alpha"] != 0.3 {
		t.Fatalf("expected first row's params to stick, got %v", s.Params["alpha"])
	}
}

func TestCombineAppendsSourceVectors(t *testing.T) {
	a := New()
	b := New()
	base := time.Now()
	a.Accumulate(base, 1, true, map[string]any{"m": 7})
	b.Accumulate(base.Add(time.Hour), 2, true, nil)
	a.Combine(b)
	if len(a.Values) != 2 {
		t.Fatalf("expected combined length 2, got %d", len(a.Values))
	}
}

func TestFinalizeSortsBeforeKernel(t *testing.T) {
	s := New()
	base := time.Now()
	s.Accumulate(base.Add(2*time.Hour), 30, true, nil)
	s.Accumulate(base, 10, true, nil)
	s.Accumulate(base.Add(time.Hour), 20, true, nil)

	result, ok, err := Finalize(s, func(series series.Series, _ map[string]any) ([]float64, error) {
		return series.Values, nil
	})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok=true")
	}
	want := []float64{10, 20, 30}
	for i, v := range want {
		if result[i] != v {
			t.Fatalf("result not sorted by time: %v", result)
		}
	}
}

func TestFinalizeNullWhenNoValidObservations(t *testing.T) {
	s := New()
	s.Accumulate(time.Now(), 0, false, nil)
	_, ok, err := Finalize(s, func(series series.Series, _ map[string]any) (int, error) {
		return 0, nil
	})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if ok {
		t.Fatalf("expected ok=false for a group with zero valid observations")
	}
}

func TestResetClearsState(t *testing.T) {
	s := New()
	s.Accumulate(time.Now(), 1, true, map[string]any{"x": 1})
	s.Reset()
	if s.Initialized || len(s.Values) != 0 {
		t.Fatalf("expected state cleared after reset")
	}
}
