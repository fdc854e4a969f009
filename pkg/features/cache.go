// Package features implements the tsfresh-parity scalar feature calculator
// registry (§4.K): a case-sensitive name-dispatched catalog of pure
// functions over a series, each taking a typed parameter map and a
// per-series cache that memoises intermediates (sorted values, FFT,
// autocorrelation) shared across calculators.
package features

import (
	"context"
	"math"
	"math/cmplx"
	"sort"
	"strconv"

	"github.com/anofox/tsforge/internal/cache"
)

// Cache memoises expensive intermediates for one series so that a batch of
// calculator calls over the same values amortizes shared work. Not safe
// for concurrent use; callers own one Cache per series per goroutine.
type Cache struct {
	values []float64

	haveMeanStd bool
	mean, std   float64

	haveSorted bool
	sorted     []float64

	acf map[int]float64

	haveFFT  bool
	fft      []complex128
	fftPower []float64
}

// NewCache wraps values for memoised feature computation.
func NewCache(values []float64) *Cache {
	return &Cache{values: values, acf: make(map[int]float64)}
}

func (c *Cache) MeanStd() (mean, std float64) {
	if c.haveMeanStd {
		return c.mean, c.std
	}
	n := float64(len(c.values))
	if n == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, v := range c.values {
		sum += v
	}
	mean = sum / n
	variance := 0.0
	for _, v := range c.values {
		d := v - mean
		variance += d * d
	}
	variance /= n
	std = math.Sqrt(variance)
	c.mean, c.std, c.haveMeanStd = mean, std, true
	return mean, std
}

func (c *Cache) Sorted() []float64 {
	if c.haveSorted {
		return c.sorted
	}
	s := make([]float64, len(c.values))
	copy(s, c.values)
	sort.Float64s(s)
	c.sorted, c.haveSorted = s, true
	return s
}

// Quantile returns the linear-interpolated q-quantile, q in [0,1].
func (c *Cache) Quantile(q float64) float64 {
	sorted := c.Sorted()
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo < 0 {
		lo = 0
	}
	if hi >= n {
		hi = n - 1
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Autocorrelation returns the sample autocorrelation at the given lag,
// memoised per lag.
func (c *Cache) Autocorrelation(lag int) float64 {
	if v, ok := c.acf[lag]; ok {
		return v
	}
	n := len(c.values)
	if lag <= 0 || lag >= n {
		c.acf[lag] = 0
		return 0
	}
	mean, _ := c.MeanStd()
	variance := 0.0
	for _, v := range c.values {
		d := v - mean
		variance += d * d
	}
	if variance == 0 {
		c.acf[lag] = 0
		return 0
	}
	cov := 0.0
	for i := 0; i+lag < n; i++ {
		cov += (c.values[i] - mean) * (c.values[i+lag] - mean)
	}
	result := cov / variance
	c.acf[lag] = result
	return result
}

// FFTPower returns the magnitude spectrum of the mean-centered series,
// zero-padded to the next power of two; index k holds |X_k| for
// k=0..padded/2.
func (c *Cache) FFTPower() []float64 {
	if c.haveFFT {
		return c.fftPower
	}
	n := len(c.values)
	mean, _ := c.MeanStd()
	padded := 1
	for padded < n {
		padded <<= 1
	}
	if padded == 0 {
		padded = 1
	}
	data := make([]complex128, padded)
	for i, v := range c.values {
		data[i] = complex(v-mean, 0)
	}
	spectrum := fft(data)
	power := make([]float64, padded/2+1)
	for k := range power {
		power[k] = cmplx.Abs(spectrum[k])
	}
	c.fft, c.fftPower, c.haveFFT = spectrum, power, true
	return power
}

// BackedCache is a Cache that hydrates its sorted/ACF/FFT intermediates from
// a cross-process backing store on construction and can persist them back
// with Flush, so a batch of calculators over the same series shares work not
// just within one goroutine but across worker processes fed by the same
// backing store. The backend is optional infrastructure (internal/cache),
// never model state: losing it just means the next hydrate recomputes.
type BackedCache struct {
	*Cache
	ctx         context.Context
	backend     cache.Cache
	fingerprint string
}

// NewBackedCache wraps values like NewCache, then attempts to hydrate from
// backend under fingerprint (a caller-chosen stable identifier for the
// series, e.g. a hash of its values). Hydration errors are ignored: a
// backend miss or outage just falls back to computing from scratch.
func NewBackedCache(ctx context.Context, values []float64, backend cache.Cache, fingerprint string) *BackedCache {
	bc := &BackedCache{Cache: NewCache(values), ctx: ctx, backend: backend, fingerprint: fingerprint}
	bc.hydrate()
	return bc
}

func (bc *BackedCache) hydrate() {
	if entry, ok, err := bc.backend.Get(bc.ctx, bc.fingerprint+"/sorted"); err == nil && ok && len(entry.Values) == len(bc.values) {
		bc.sorted, bc.haveSorted = entry.Values, true
	}
	if entry, ok, err := bc.backend.Get(bc.ctx, bc.fingerprint+"/fft"); err == nil && ok {
		bc.fftPower, bc.haveFFT = entry.Values, true
	}
	if entry, ok, err := bc.backend.Get(bc.ctx, bc.fingerprint+"/acf"); err == nil && ok {
		for lagStr, v := range entry.Meta {
			lag, err := strconv.Atoi(lagStr)
			if err != nil {
				continue
			}
			bc.acf[lag] = v
		}
	}
}

// Flush writes back whichever intermediates this Cache has computed so far,
// for a later hydrate (in this process or a peer) to reuse. Safe to call
// more than once; each call overwrites with the current state.
func (bc *BackedCache) Flush() error {
	if bc.haveSorted {
		if err := bc.backend.Put(bc.ctx, bc.fingerprint+"/sorted", cache.Entry{Values: bc.sorted}); err != nil {
			return err
		}
	}
	if bc.haveFFT {
		if err := bc.backend.Put(bc.ctx, bc.fingerprint+"/fft", cache.Entry{Values: bc.fftPower}); err != nil {
			return err
		}
	}
	if len(bc.acf) > 0 {
		meta := make(map[string]float64, len(bc.acf))
		for lag, v := range bc.acf {
			meta[strconv.Itoa(lag)] = v
		}
		if err := bc.backend.Put(bc.ctx, bc.fingerprint+"/acf", cache.Entry{Meta: meta}); err != nil {
			return err
		}
	}
	return nil
}

func fft(a []complex128) []complex128 {
	n := len(a)
	if n == 1 {
		return a
	}
	even := make([]complex128, n/2)
	odd := make([]complex128, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = a[2*i]
		odd[i] = a[2*i+1]
	}
	evenT := fft(even)
	oddT := fft(odd)
	out := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		tw := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n))) * oddT[k]
		out[k] = evenT[k] + tw
		out[k+n/2] = evenT[k] - tw
	}
	return out
}
