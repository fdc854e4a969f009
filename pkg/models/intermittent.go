package models

import (
	"math"

	"github.com/anofox/tsforge/pkg/engerr"
)

func init() {
	Register("CrostonClassic", func(p Params) (Forecaster, error) {
		return &crostonModel{alpha: p.Float("alpha", 0.1), variant: crostonClassic, fittedMode: parseFittedLengthMode(p["fitted_length_mode"])}, nil
	})
	Register("CrostonOptimized", func(p Params) (Forecaster, error) {
		return &crostonModel{alpha: 0.1, variant: crostonClassic, optimizeAlpha: true, fittedMode: parseFittedLengthMode(p["fitted_length_mode"])}, nil
	})
	Register("CrostonSBA", func(p Params) (Forecaster, error) {
		return &crostonModel{alpha: p.Float("alpha", 0.1), variant: crostonSBA, fittedMode: parseFittedLengthMode(p["fitted_length_mode"])}, nil
	})
	Register("ADIDA", func(p Params) (Forecaster, error) {
		return &adidaModel{blockSize: p.Int("window", 0)}, nil
	})
	Register("IMAPA", func(Params) (Forecaster, error) { return &imapaModel{}, nil })
	Register("TSB", func(p Params) (Forecaster, error) {
		return &tsbModel{alphaP: p.Float("alpha", 0.1), alphaZ: p.Float("beta", 0.1)}, nil
	})
}

type crostonVariant int

const (
	crostonClassic crostonVariant = iota
	crostonSBA
)

// crostonModel implements Croston's method for intermittent demand:
// separately exponentially-smoothed demand-size and inter-demand-interval
// series, combined into a demand-rate forecast. SBA applies the
// Syntetos-Boylan bias correction.
type crostonModel struct {
	alpha         float64
	variant       crostonVariant
	optimizeAlpha bool
	fittedMode    FittedLengthMode

	demandLevel   float64
	intervalLevel float64
	fitted        bool

	fittedValues []float64
}

// parseFittedLengthMode maps the `fitted_length_mode` parameter string to a
// FittedLengthMode, defaulting to PadLeadingNaN (the convention the rest of
// the catalog uses for a model's undefined leading positions).
func parseFittedLengthMode(raw string) FittedLengthMode {
	if raw == "truncate_to_input" {
		return TruncateToInput
	}
	return PadLeadingNaN
}

// sesLevels returns, for each index i, the SES level as it stood before
// observing values[i] — i.e. the one-step-ahead forecast that would have
// been made for values[i] given only values[:i]. Index 0 has no prior
// history, so it is seeded with values[0] itself (a zero-residual start,
// matching sesFinalLevel's own initialization).
func sesLevels(values []float64, alpha float64) []float64 {
	n := len(values)
	levels := make([]float64, n)
	if n == 0 {
		return levels
	}
	level := values[0]
	levels[0] = level
	for i := 1; i < n; i++ {
		levels[i] = level
		level = alpha*values[i] + (1-alpha)*level
	}
	return levels
}

func (m *crostonModel) Fit(values []float64) error {
	const op = "Croston.Fit"
	if len(values) == 0 {
		return engerr.New(engerr.InvalidArgument, op, "empty series")
	}

	var demands, intervals []float64
	var occurrenceIdx []int
	sinceLast := 0
	for i, v := range values {
		sinceLast++
		if v != 0 {
			demands = append(demands, v)
			intervals = append(intervals, float64(sinceLast))
			occurrenceIdx = append(occurrenceIdx, i)
			sinceLast = 0
		}
	}
	if len(demands) == 0 {
		m.demandLevel, m.intervalLevel, m.fitted = 0, 1, true
		m.fittedValues = m.expandFitted(nil, nil, nil, len(values))
		return nil
	}

	alpha := m.alpha
	if m.optimizeAlpha {
		alpha = bestCrostonAlpha(demands, intervals)
	}
	m.alpha = alpha
	m.demandLevel = sesFinalLevel(demands, alpha)
	m.intervalLevel = sesFinalLevel(intervals, alpha)
	m.fitted = true

	demandFitted := sesLevels(demands, alpha)
	intervalFitted := sesLevels(intervals, alpha)
	m.fittedValues = m.expandFitted(occurrenceIdx, demandFitted, intervalFitted, len(values))
	return nil
}

// expandFitted turns the reduced-length demand/interval fitted traces
// (one entry per nonzero-demand occurrence) into a rate series aligned to
// the original input length: flat between occurrences (Croston only
// updates on a nonzero period, so the forecast for the zero periods in
// between is whatever was last established), undefined before the first
// occurrence.
func (m *crostonModel) expandFitted(occurrenceIdx []int, demandFitted, intervalFitted []float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	for j, idx := range occurrenceIdx {
		rate := 0.0
		if intervalFitted[j] > 0 {
			rate = demandFitted[j] / intervalFitted[j]
		}
		if m.variant == crostonSBA {
			rate *= 1 - m.alpha/2
		}
		end := n
		if j+1 < len(occurrenceIdx) {
			end = occurrenceIdx[j+1]
		}
		for k := idx; k < end; k++ {
			out[k] = rate
		}
	}
	if m.fittedMode == TruncateToInput && len(occurrenceIdx) > 0 {
		return out[occurrenceIdx[0]:]
	}
	return out
}

// Fitted reports the in-sample fitted rate at each input position,
// implementing models.FittedProvider so callers can bypass the generic
// expanding-window refit and use Croston's own recursion directly.
func (m *crostonModel) Fitted() ([]float64, FittedLengthMode) {
	return m.fittedValues, m.fittedMode
}

func bestCrostonAlpha(demands, intervals []float64) float64 {
	best, bestSSE := 0.1, -1.0
	for a := 0.05; a <= 0.95; a += 0.05 {
		sse := sesSSE(demands, a) + sesSSE(intervals, a)
		if bestSSE < 0 || sse < bestSSE {
			best, bestSSE = a, sse
		}
	}
	return best
}

func (m *crostonModel) Forecast(steps int) ([]float64, error) {
	const op = "Croston.Forecast"
	if !m.fitted {
		return nil, engerr.New(engerr.InvalidArgument, op, "model not fit")
	}
	rate := 0.0
	if m.intervalLevel > 0 {
		rate = m.demandLevel / m.intervalLevel
	}
	if m.variant == crostonSBA {
		rate *= 1 - m.alpha/2
	}
	out := make([]float64, steps)
	for i := range out {
		out[i] = rate
	}
	return out, nil
}

// adidaModel aggregates the series into non-overlapping blocks sized to
// the average inter-demand interval, forecasts the aggregated series with
// simple exponential smoothing, and disaggregates by dividing evenly
// across the block.
type adidaModel struct {
	blockSize int
	rate      float64
	fitted    bool
}

func (m *adidaModel) Fit(values []float64) error {
	const op = "ADIDA.Fit"
	if len(values) == 0 {
		return engerr.New(engerr.InvalidArgument, op, "empty series")
	}
	block := m.blockSize
	if block <= 0 {
		block = averageInterval(values)
	}
	if block < 1 {
		block = 1
	}
	aggregated := aggregateBlocks(values, block)
	if len(aggregated) == 0 {
		m.rate, m.fitted = 0, true
		return nil
	}
	level := sesFinalLevel(aggregated, 0.3)
	m.rate = level / float64(block)
	m.fitted = true
	return nil
}

func averageInterval(values []float64) int {
	count := 0
	for _, v := range values {
		if v != 0 {
			count++
		}
	}
	if count == 0 {
		return 1
	}
	avg := len(values) / count
	if avg < 1 {
		avg = 1
	}
	return avg
}

func aggregateBlocks(values []float64, block int) []float64 {
	var out []float64
	for i := 0; i < len(values); i += block {
		end := i + block
		if end > len(values) {
			end = len(values)
		}
		sum := 0.0
		for _, v := range values[i:end] {
			sum += v
		}
		out = append(out, sum)
	}
	return out
}

func (m *adidaModel) Forecast(steps int) ([]float64, error) {
	const op = "ADIDA.Forecast"
	if !m.fitted {
		return nil, engerr.New(engerr.InvalidArgument, op, "model not fit")
	}
	out := make([]float64, steps)
	for i := range out {
		out[i] = m.rate
	}
	return out, nil
}

// imapaModel averages ADIDA-style forecasts across several aggregation
// levels, the "multiple aggregation" idea IMAPA adds on top of ADIDA.
type imapaModel struct {
	rate   float64
	fitted bool
}

func (m *imapaModel) Fit(values []float64) error {
	const op = "IMAPA.Fit"
	if len(values) == 0 {
		return engerr.New(engerr.InvalidArgument, op, "empty series")
	}
	base := averageInterval(values)
	levels := []int{1, base, base * 2}
	sum, count := 0.0, 0
	for _, block := range levels {
		if block < 1 || block > len(values) {
			continue
		}
		aggregated := aggregateBlocks(values, block)
		if len(aggregated) == 0 {
			continue
		}
		level := sesFinalLevel(aggregated, 0.3)
		sum += level / float64(block)
		count++
	}
	if count == 0 {
		return engerr.New(engerr.NumericalFailure, op, "no aggregation level produced a forecast")
	}
	m.rate = sum / float64(count)
	m.fitted = true
	return nil
}

func (m *imapaModel) Forecast(steps int) ([]float64, error) {
	const op = "IMAPA.Forecast"
	if !m.fitted {
		return nil, engerr.New(engerr.InvalidArgument, op, "model not fit")
	}
	out := make([]float64, steps)
	for i := range out {
		out[i] = m.rate
	}
	return out, nil
}

// tsbModel implements Teunter-Syntetos-Babai: separately smoothed demand
// *probability* (not interval) and demand size, multiplied for the
// forecast rate. Unlike Croston, probability is updated every period
// (including zero-demand periods), which avoids Croston's positive bias
// on very intermittent series.
type tsbModel struct {
	alphaP, alphaZ float64

	prob   float64
	size   float64
	fitted bool
}

func (m *tsbModel) Fit(values []float64) error {
	const op = "TSB.Fit"
	if len(values) == 0 {
		return engerr.New(engerr.InvalidArgument, op, "empty series")
	}
	prob := boolToFloat(values[0] != 0)
	size := values[0]
	for i := 1; i < len(values); i++ {
		occurred := values[i] != 0
		prob = m.alphaP*boolToFloat(occurred) + (1-m.alphaP)*prob
		if occurred {
			size = m.alphaZ*values[i] + (1-m.alphaZ)*size
		}
	}
	m.prob, m.size, m.fitted = prob, size, true
	return nil
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func (m *tsbModel) Forecast(steps int) ([]float64, error) {
	const op = "TSB.Forecast"
	if !m.fitted {
		return nil, engerr.New(engerr.InvalidArgument, op, "model not fit")
	}
	out := make([]float64, steps)
	rate := m.prob * m.size
	for i := range out {
		out[i] = rate
	}
	return out, nil
}
