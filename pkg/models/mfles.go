package models

import "github.com/anofox/tsforge/pkg/engerr"

func init() {
	Register("MFLES", func(p Params) (Forecaster, error) {
		return &mflesModel{period: p.Int("seasonal_period", 0), alpha: p.Float("alpha", 0.3)}, nil
	})
	Register("AutoMFLES", func(Params) (Forecaster, error) { return &autoSeasonalModel{build: newMFLES}, nil })
}

func newMFLES(period int) Forecaster { return &mflesModel{period: period, alpha: 0.3} }

// mflesModel boosts a linear trend, a seasonal-average component, and an
// exponentially-smoothed residual in three sequential passes ("multiple
// forecasting via least squares exponential smoothing"): each pass fits
// against what the previous pass left unexplained, the same boosting
// idiom pkg/ets uses (level/trend/season fit sequentially against one
// residual stream) generalized to a three-stage decomposition.
type mflesModel struct {
	period int
	alpha  float64

	trendA, trendB float64
	seasonal       []float64
	residualLevel  float64
	n              int
}

func (m *mflesModel) Fit(values []float64) error {
	const op = "MFLES.Fit"
	n := len(values)
	if n < 4 {
		return engerr.New(engerr.InvalidArgument, op, "series too short")
	}
	m.n = n

	m.trendA, m.trendB = linearRegression(values)
	detrended := make([]float64, n)
	for i, v := range values {
		detrended[i] = v - (m.trendA + m.trendB*float64(i))
	}

	hasSeason := m.period > 1 && n >= 2*m.period
	residual := detrended
	if hasSeason {
		m.seasonal = seasonalAverages(detrended, m.period)
		residual = make([]float64, n)
		for i, v := range detrended {
			residual[i] = v - m.seasonal[i%m.period]
		}
	} else {
		m.seasonal = nil
	}

	m.residualLevel = sesFinalLevel(residual, m.alpha)
	return nil
}

func (m *mflesModel) Forecast(steps int) ([]float64, error) {
	const op = "MFLES.Forecast"
	if m.n == 0 {
		return nil, engerr.New(engerr.InvalidArgument, op, "model not fit")
	}
	out := make([]float64, steps)
	for h := 1; h <= steps; h++ {
		idx := m.n - 1 + h
		value := m.trendA + m.trendB*float64(idx) + m.residualLevel
		if m.seasonal != nil {
			value += m.seasonal[idx%m.period]
		}
		out[h-1] = value
	}
	return out, nil
}
