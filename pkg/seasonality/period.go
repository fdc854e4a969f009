// Package seasonality detects the dominant periodicity of a series (§4.L),
// offering an FFT-based detector (the fastest reliable default) and an
// autocorrelation-based detector used to confirm or fall back when the
// spectrum is ambiguous.
package seasonality

import (
	"math"
	"math/cmplx"
	"sort"

	"github.com/anofox/tsforge/pkg/engerr"
)

// Config bounds the candidate period search.
type Config struct {
	MinPeriod int
	MaxPeriod int // 0 means len(values)/2
}

func (c Config) withDefaults(n int) Config {
	out := c
	if out.MinPeriod < 2 {
		out.MinPeriod = 2
	}
	if out.MaxPeriod <= 0 || out.MaxPeriod > n/2 {
		out.MaxPeriod = n / 2
	}
	return out
}

// Detection is one candidate period with its supporting strength.
type Detection struct {
	Period   int
	Strength float64 // normalized spectral power or autocorrelation, in [0,1]
}

// DetectFFT finds the dominant period via the magnitude spectrum of the
// mean-centered series, zero-padded to the next power of two. It returns
// candidates sorted by descending strength.
func DetectFFT(values []float64, cfg Config) ([]Detection, error) {
	const op = "seasonality.DetectFFT"
	n := len(values)
	if n < 4 {
		return nil, engerr.New(engerr.InvalidArgument, op, "series too short for spectral analysis")
	}
	cfg = cfg.withDefaults(n)

	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(n)

	padded := nextPowerOfTwo(n)
	data := make([]complex128, padded)
	for i, v := range values {
		data[i] = complex(v-mean, 0)
	}

	spectrum := fft(data)
	power := make([]float64, padded/2)
	for k := range power {
		power[k] = cmplx.Abs(spectrum[k])
	}

	var candidates []Detection
	maxPower := 0.0
	for k := 1; k < len(power); k++ {
		period := int(math.Round(float64(padded) / float64(k)))
		if period < cfg.MinPeriod || period > cfg.MaxPeriod {
			continue
		}
		if power[k] > maxPower {
			maxPower = power[k]
		}
		candidates = append(candidates, Detection{Period: period, Strength: power[k]})
	}
	if maxPower <= 0 {
		return nil, nil
	}
	for i := range candidates {
		candidates[i].Strength /= maxPower
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Strength > candidates[j].Strength })
	return dedupeByPeriod(candidates), nil
}

// DetectACF finds candidate periods via the sample autocorrelation
// function, picking local maxima of the correlogram. More robust than
// DetectFFT on short or noisy series, at higher cost.
func DetectACF(values []float64, cfg Config) ([]Detection, error) {
	const op = "seasonality.DetectACF"
	n := len(values)
	if n < 4 {
		return nil, engerr.New(engerr.InvalidArgument, op, "series too short for autocorrelation analysis")
	}
	cfg = cfg.withDefaults(n)

	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(n)

	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	if variance == 0 {
		return nil, nil
	}

	acf := make([]float64, cfg.MaxPeriod+1)
	for lag := 1; lag <= cfg.MaxPeriod; lag++ {
		cov := 0.0
		for i := 0; i+lag < n; i++ {
			cov += (values[i] - mean) * (values[i+lag] - mean)
		}
		acf[lag] = cov / variance
	}

	var candidates []Detection
	for lag := cfg.MinPeriod; lag < cfg.MaxPeriod; lag++ {
		if acf[lag] > acf[lag-1] && acf[lag] >= acf[lag+1] && acf[lag] > 0 {
			candidates = append(candidates, Detection{Period: lag, Strength: acf[lag]})
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Strength > candidates[j].Strength })
	return candidates, nil
}

// Detect runs DetectFFT and returns its top candidate's period, falling
// back to DetectACF when the spectrum yields nothing usable. Returns
// period=0, ok=false when neither detector finds a candidate.
func Detect(values []float64, cfg Config) (period int, strength float64, ok bool, err error) {
	fftCandidates, err := DetectFFT(values, cfg)
	if err != nil {
		return 0, 0, false, err
	}
	if len(fftCandidates) > 0 {
		return fftCandidates[0].Period, fftCandidates[0].Strength, true, nil
	}
	acfCandidates, err := DetectACF(values, cfg)
	if err != nil {
		return 0, 0, false, err
	}
	if len(acfCandidates) > 0 {
		return acfCandidates[0].Period, acfCandidates[0].Strength, true, nil
	}
	return 0, 0, false, nil
}

func dedupeByPeriod(candidates []Detection) []Detection {
	seen := make(map[int]bool, len(candidates))
	out := candidates[:0:0]
	for _, c := range candidates {
		if seen[c.Period] {
			continue
		}
		seen[c.Period] = true
		out = append(out, c)
	}
	return out
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// fft is a recursive radix-2 Cooley-Tukey transform. Input length must be a
// power of two; nextPowerOfTwo/DetectFFT guarantee that invariant.
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
		twiddle := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n))) * oddT[k]
		out[k] = evenT[k] + twiddle
		out[k+n/2] = evenT[k] - twiddle
	}
	return out
}
