package models

import (
	"github.com/anofox/tsforge/pkg/engerr"
	"github.com/anofox/tsforge/pkg/seasonality"
)

func init() {
	Register("MSTL", func(p Params) (Forecaster, error) {
		return &mstlModel{periods: periodsFromParams(p)}, nil
	})
	Register("AutoMSTL", func(Params) (Forecaster, error) { return &autoSeasonalModel{build: newMSTL}, nil })
}

func periodsFromParams(p Params) []int {
	var periods []int
	if v := p.Int("seasonal_period", 0); v > 1 {
		periods = append(periods, v)
	}
	if v := p.Int("seasonal_period2", 0); v > 1 {
		periods = append(periods, v)
	}
	return periods
}

func newMSTL(period int) Forecaster { return &mstlModel{periods: []int{period}} }

// mstlModel is a simplified MSTL: a centered moving-average trend, one
// seasonal component extracted per requested period via classic seasonal
// averaging (mean-centered to avoid drift), and a flat-forecast remainder.
// Real MSTL uses iterated Loess smoothing per component; this module
// reaches the same trend+multi-seasonal+remainder decomposition shape
// with a simpler smoother.
type mstlModel struct {
	periods []int

	trendA, trendB float64
	seasonals      map[int][]float64
	n              int
	remainderMean  float64
}

func (m *mstlModel) Fit(values []float64) error {
	const op = "MSTL.Fit"
	n := len(values)
	if n < 4 {
		return engerr.New(engerr.InvalidArgument, op, "series too short")
	}
	for _, period := range m.periods {
		if n < 2*period {
			return engerr.New(engerr.InvalidArgument, op, "series shorter than 2x seasonal_period")
		}
	}
	m.n = n

	trend, seasonals, remainder := Decompose(values, m.periods)
	m.trendA, m.trendB = linearRegression(trend)
	m.seasonals = seasonals
	m.remainderMean = mean(remainder)
	return nil
}

// Decompose splits values into a centered-moving-average trend, one
// mean-centered seasonal component per requested period, and the
// leftover remainder — the trend/seasonal/remainder split both mstlModel
// and ts_mstl_decomposition expose, factored out so the engine facade
// can return the components directly without fitting a forecaster.
func Decompose(values []float64, periods []int) (trend []float64, seasonals map[int][]float64, remainder []float64) {
	n := len(values)
	trend = centeredMovingAverageTrend(values, maxPeriod(periods))

	detrended := make([]float64, n)
	for i, v := range values {
		detrended[i] = v - trend[i]
	}

	seasonals = make(map[int][]float64, len(periods))
	remainder = detrended
	for _, period := range periods {
		seasonal := seasonalAverages(remainder, period)
		seasonals[period] = seasonal
		next := make([]float64, n)
		for i, v := range remainder {
			next[i] = v - seasonal[i%period]
		}
		remainder = next
	}
	return trend, seasonals, remainder
}

func (m *mstlModel) Forecast(steps int) ([]float64, error) {
	out := make([]float64, steps)
	for h := 1; h <= steps; h++ {
		idx := m.n - 1 + h
		value := m.trendA + m.trendB*float64(idx)
		for _, period := range m.periods {
			value += m.seasonals[period][idx%period]
		}
		value += m.remainderMean
		out[h-1] = value
	}
	return out, nil
}

func maxPeriod(periods []int) int {
	best := 1
	for _, p := range periods {
		if p > best {
			best = p
		}
	}
	return best
}

// centeredMovingAverageTrend smooths with a centered window of the given
// span, holding edges flat at the nearest interior smoothed value.
func centeredMovingAverageTrend(values []float64, span int) []float64 {
	n := len(values)
	out := make([]float64, n)
	if span < 2 {
		copy(out, values)
		return out
	}
	half := span / 2
	for i := 0; i < n; i++ {
		lo := i - half
		hi := i + half
		if lo < 0 {
			lo = 0
		}
		if hi >= n {
			hi = n - 1
		}
		sum := 0.0
		for j := lo; j <= hi; j++ {
			sum += values[j]
		}
		out[i] = sum / float64(hi-lo+1)
	}
	return out
}

// seasonalAverages averages detrended values at each position mod period,
// then mean-centers the result so the seasonal component carries no level.
func seasonalAverages(detrended []float64, period int) []float64 {
	sums := make([]float64, period)
	counts := make([]int, period)
	for i, v := range detrended {
		sums[i%period] += v
		counts[i%period]++
	}
	seasonal := make([]float64, period)
	total := 0.0
	for i := range seasonal {
		if counts[i] > 0 {
			seasonal[i] = sums[i] / float64(counts[i])
		}
		total += seasonal[i]
	}
	offset := total / float64(period)
	for i := range seasonal {
		seasonal[i] -= offset
	}
	return seasonal
}

// autoSeasonalModel detects the dominant period via pkg/seasonality and
// delegates to build(period); used by AutoMSTL, AutoTBATS, AutoMFLES.
type autoSeasonalModel struct {
	build    func(period int) Forecaster
	delegate Forecaster
}

func (m *autoSeasonalModel) Fit(values []float64) error {
	const op = "AutoSeasonal.Fit"
	period, _, ok, err := seasonality.Detect(values, seasonality.Config{})
	if err != nil {
		return err
	}
	if !ok || period < 2 || len(values) < 2*period {
		period = 1
	}
	m.delegate = m.build(period)
	if err := m.delegate.Fit(values); err != nil {
		if period != 1 {
			m.delegate = m.build(1)
			return m.delegate.Fit(values)
		}
		return engerr.Wrap(engerr.NumericalFailure, op, "delegate fit failed", err)
	}
	return nil
}

func (m *autoSeasonalModel) Forecast(steps int) ([]float64, error) {
	const op = "AutoSeasonal.Forecast"
	if m.delegate == nil {
		return nil, engerr.New(engerr.InvalidArgument, op, "model not fit")
	}
	return m.delegate.Forecast(steps)
}
