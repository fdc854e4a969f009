package features

import (
	"context"
	"testing"

	"github.com/anofox/tsforge/internal/cache"
)

func TestBackedCacheHydratesFromBackend(t *testing.T) {
	backend := cache.NewMemoryCache()
	ctx := context.Background()
	values := []float64{5, 3, 1, 4, 2}

	warm := NewBackedCache(ctx, values, backend, "s1")
	if _, err := Compute("maximum", values, nil, warm.Cache); err != nil {
		t.Fatalf("compute maximum: %v", err)
	}
	if err := warm.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	cold := NewBackedCache(ctx, values, backend, "s1")
	if !cold.haveSorted {
		t.Fatalf("expected hydrate to populate sorted from backend")
	}
	maxV, err := Compute("maximum", values, nil, cold.Cache)
	if err != nil || maxV != 5 {
		t.Fatalf("maximum after hydrate = %v, %v", maxV, err)
	}
}

func TestBackedCacheMissFallsBackToComputing(t *testing.T) {
	backend := cache.NewMemoryCache()
	ctx := context.Background()
	bc := NewBackedCache(ctx, []float64{1, 2, 3}, backend, "unseen")
	if bc.haveSorted || bc.haveFFT {
		t.Fatalf("expected no pre-hydrated state for an unseen fingerprint")
	}
	mean, err := Compute("mean", []float64{1, 2, 3}, nil, bc.Cache)
	if err != nil || mean != 2 {
		t.Fatalf("mean = %v, %v", mean, err)
	}
}

func TestBackedCacheFlushPersistsACF(t *testing.T) {
	backend := cache.NewMemoryCache()
	ctx := context.Background()
	values := seasonalARSeriesForCacheTest(40, 4)

	warm := NewBackedCache(ctx, values, backend, "s2")
	if _, err := Compute("autocorrelation", values, Params{"lag": 4}, warm.Cache); err != nil {
		t.Fatalf("compute autocorrelation: %v", err)
	}
	if err := warm.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if backend.Len() == 0 {
		t.Fatalf("expected acf entry to be persisted")
	}

	cold := NewBackedCache(ctx, values, backend, "s2")
	if _, ok := cold.acf[4]; !ok {
		t.Fatalf("expected acf at lag 4 to be hydrated from backend")
	}
}

func seasonalARSeriesForCacheTest(n, period int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = float64(i % period)
	}
	return values
}
