// Package cache memoizes recomputable §4.K intermediates — FFT magnitude
// spectra, ACF/PACF vectors, quantile tables — keyed by a caller-supplied
// string (typically a series fingerprint plus calculator name). It is
// explicitly NOT model persistence: nothing fit by pkg/models is ever
// stored here, only byte-for-byte reproducible numeric vectors a cache miss
// can always recompute from the original series.
package cache

import "context"

// Entry is a cached numeric vector plus the calculator-specific metadata a
// caller needs to interpret it (e.g. the FFT's sample rate, or the ACF's
// max lag).
type Entry struct {
	Values []float64
	Meta   map[string]float64
}

// Cache is the shared contract both the in-memory and Redis-backed
// implementations satisfy.
type Cache interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Put(ctx context.Context, key string, entry Entry) error
}
