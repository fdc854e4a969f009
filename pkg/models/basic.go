package models

import "github.com/anofox/tsforge/pkg/engerr"

func init() {
	Register("Naive", func(Params) (Forecaster, error) { return &naiveModel{}, nil })
	Register("SMA", func(p Params) (Forecaster, error) { return &smaModel{window: p.Int("window", 5)}, nil })
	Register("SeasonalNaive", func(p Params) (Forecaster, error) {
		return &seasonalNaiveModel{period: p.Int("seasonal_period", 1)}, nil
	})
	Register("RandomWalkDrift", func(Params) (Forecaster, error) { return &randomWalkDriftModel{}, nil })
}

// naiveModel forecasts every future step as the last observed value.
type naiveModel struct {
	last float64
}

func (m *naiveModel) Fit(values []float64) error {
	if len(values) == 0 {
		return engerr.New(engerr.InvalidArgument, "Naive.Fit", "empty training series")
	}
	m.last = values[len(values)-1]
	return nil
}

func (m *naiveModel) Forecast(steps int) ([]float64, error) {
	out := make([]float64, steps)
	for i := range out {
		out[i] = m.last
	}
	return out, nil
}

// smaModel forecasts the mean of the trailing window, held flat.
type smaModel struct {
	window int
	mean   float64
}

func (m *smaModel) Fit(values []float64) error {
	if len(values) == 0 {
		return engerr.New(engerr.InvalidArgument, "SMA.Fit", "empty training series")
	}
	w := m.window
	if w <= 0 || w > len(values) {
		w = len(values)
	}
	tail := values[len(values)-w:]
	sum := 0.0
	for _, v := range tail {
		sum += v
	}
	m.mean = sum / float64(w)
	return nil
}

func (m *smaModel) Forecast(steps int) ([]float64, error) {
	out := make([]float64, steps)
	for i := range out {
		out[i] = m.mean
	}
	return out, nil
}

// seasonalNaiveModel repeats the last observed full seasonal cycle.
type seasonalNaiveModel struct {
	period int
	season []float64
}

func (m *seasonalNaiveModel) Fit(values []float64) error {
	const op = "SeasonalNaive.Fit"
	if m.period < 1 {
		return engerr.New(engerr.InvalidArgument, op, "seasonal_period must be >= 1")
	}
	if len(values) < m.period {
		return engerr.New(engerr.InvalidArgument, op, "series shorter than seasonal_period")
	}
	m.season = append([]float64(nil), values[len(values)-m.period:]...)
	return nil
}

func (m *seasonalNaiveModel) Forecast(steps int) ([]float64, error) {
	out := make([]float64, steps)
	for i := range out {
		out[i] = m.season[i%m.period]
	}
	return out, nil
}

// randomWalkDriftModel extrapolates the mean per-step change observed
// across the whole training series.
type randomWalkDriftModel struct {
	last  float64
	drift float64
}

func (m *randomWalkDriftModel) Fit(values []float64) error {
	const op = "RandomWalkDrift.Fit"
	if len(values) < 2 {
		return engerr.New(engerr.InvalidArgument, op, "need at least 2 observations")
	}
	m.last = values[len(values)-1]
	m.drift = (values[len(values)-1] - values[0]) / float64(len(values)-1)
	return nil
}

func (m *randomWalkDriftModel) Forecast(steps int) ([]float64, error) {
	out := make([]float64, steps)
	for i := range out {
		out[i] = m.last + m.drift*float64(i+1)
	}
	return out, nil
}
