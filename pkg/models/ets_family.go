package models

import (
	"github.com/anofox/tsforge/pkg/engerr"
	"github.com/anofox/tsforge/pkg/ets"
	"github.com/anofox/tsforge/pkg/optimize"
)

func init() {
	Register("SES", func(p Params) (Forecaster, error) {
		return &etsModel{cfg: ets.Config{Error: ets.Additive, Trend: ets.TrendNone, Season: ets.SeasonNone, Alpha: p.Float("alpha", 0.3), M: 1}, optimizeParams: false}, nil
	})
	Register("SESOptimized", func(p Params) (Forecaster, error) {
		return &etsModel{cfg: ets.Config{Error: ets.Additive, Trend: ets.TrendNone, Season: ets.SeasonNone, Alpha: 0.3, M: 1}, optimizeParams: true}, nil
	})
	Register("Holt", func(p Params) (Forecaster, error) {
		return &etsModel{cfg: ets.Config{Error: ets.Additive, Trend: ets.TrendAdditive, Season: ets.SeasonNone, Alpha: p.Float("alpha", 0.3), Beta: p.Float("beta", 0.1), M: 1}, optimizeParams: false}, nil
	})
	Register("HoltWinters", func(p Params) (Forecaster, error) {
		m := p.Int("seasonal_period", 12)
		return &etsModel{cfg: ets.Config{Error: ets.Additive, Trend: ets.TrendAdditive, Season: ets.SeasonAdditive, Alpha: 0.3, Beta: 0.1, Gamma: 0.1, M: m}, optimizeParams: true}, nil
	})
	Register("SeasonalES", func(p Params) (Forecaster, error) {
		m := p.Int("seasonal_period", 12)
		return &etsModel{cfg: ets.Config{Error: ets.Additive, Trend: ets.TrendNone, Season: ets.SeasonAdditive, Alpha: p.Float("alpha", 0.3), Gamma: p.Float("gamma", 0.1), M: m}, optimizeParams: false}, nil
	})
	Register("SeasonalESOptimized", func(p Params) (Forecaster, error) {
		m := p.Int("seasonal_period", 12)
		return &etsModel{cfg: ets.Config{Error: ets.Additive, Trend: ets.TrendNone, Season: ets.SeasonAdditive, Alpha: 0.3, Gamma: 0.1, M: m}, optimizeParams: true}, nil
	})
	Register("ETS", func(p Params) (Forecaster, error) {
		cfg, err := parseETSConfig(p)
		if err != nil {
			return nil, err
		}
		return &etsModel{cfg: cfg, optimizeParams: true}, nil
	})
	Register("AutoETS", func(p Params) (Forecaster, error) {
		return &autoETSModel{seasonalPeriod: p.Int("seasonal_period", 1)}, nil
	})
}

func parseETSConfig(p Params) (ets.Config, error) {
	m := p.Int("seasonal_period", 1)
	trend := ets.TrendNone
	season := ets.SeasonNone
	if p.Bool("trend", m == 1) {
		trend = ets.TrendAdditive
	}
	if m > 1 {
		season = ets.SeasonAdditive
	}
	return ets.Config{Error: ets.Additive, Trend: trend, Season: season, Alpha: 0.3, Beta: 0.1, Gamma: 0.1, Phi: 0.95, M: m}, nil
}

// etsModel wraps pkg/ets into the catalog's Forecaster contract: it owns
// initial-state heuristics, an optional box-constrained fit of the
// smoothing parameters via pkg/optimize, and multi-step extrapolation from
// the fitted terminal state.
type etsModel struct {
	cfg            ets.Config
	optimizeParams bool

	finalLevel      float64
	finalTrend      float64
	finalSeasonal   []float64
	lastSeasonIndex int
	lastSSE         float64
}

func (m *etsModel) Fit(values []float64) error {
	const op = "ETS.Fit"
	n := len(values)
	mLen := m.cfg.SeasonLength()
	if m.cfg.HasSeason() && n < 2*mLen {
		return engerr.New(engerr.InvalidArgument, op, "series too short for seasonal_period")
	}
	if n < 2 {
		return engerr.New(engerr.InvalidArgument, op, "need at least 2 observations")
	}

	level0, trend0, seasonal0 := initialState(m.cfg, values)

	if m.optimizeParams {
		x0, lower, upper, order := paramVector(m.cfg)
		problem := optimize.Problem{
			Lower: lower,
			Upper: upper,
			Evaluate: func(x []float64) (float64, []float64, error) {
				cfg := applyParamVector(m.cfg, order, x)
				traj, err := ets.Forward(cfg, values, level0, trend0, seasonal0)
				if err != nil {
					return 0, nil, err
				}
				bundle, err := ets.Backward(cfg, values, traj)
				if err != nil {
					return 0, nil, err
				}
				grad := make([]float64, len(order))
				for i, field := range order {
					switch field {
					case "alpha":
						grad[i] = bundle.DAlpha
					case "beta":
						grad[i] = bundle.DBeta
					case "gamma":
						grad[i] = bundle.DGamma
					case "phi":
						grad[i] = bundle.DPhi
					}
				}
				return traj.InnovationSSE, grad, nil
			},
		}
		result, err := optimize.Minimize(problem, x0, optimize.DefaultConfig())
		if err != nil {
			return err
		}
		m.cfg = applyParamVector(m.cfg, order, result.X)
	}

	traj, err := ets.Forward(m.cfg, values, level0, trend0, seasonal0)
	if err != nil {
		return err
	}
	m.lastSSE = traj.InnovationSSE
	m.finalLevel = traj.Levels[n]
	if m.cfg.HasTrend() {
		m.finalTrend = traj.Trends[n]
	}
	if m.cfg.HasSeason() {
		m.finalSeasonal = traj.Seasonals[n]
		m.lastSeasonIndex = (n - 1) % mLen
	}
	return nil
}

func (m *etsModel) Forecast(steps int) ([]float64, error) {
	return ets.Extrapolate(m.cfg, m.finalLevel, m.finalTrend, m.finalSeasonal, m.lastSeasonIndex, steps)
}

func initialState(cfg ets.Config, values []float64) (level0, trend0 float64, seasonal0 []float64) {
	m := cfg.SeasonLength()
	if cfg.HasSeason() && len(values) >= 2*m {
		firstCycle := mean(values[:m])
		secondCycle := mean(values[m : 2*m])
		level0 = firstCycle
		if cfg.HasTrend() {
			trend0 = (secondCycle - firstCycle) / float64(m)
		}
		seasonal0 = make([]float64, m)
		for i := 0; i < m; i++ {
			if cfg.Season == ets.SeasonMultiplicative {
				seasonal0[i] = values[i] / firstCycle
			} else {
				seasonal0[i] = values[i] - firstCycle
			}
		}
		return level0, trend0, seasonal0
	}

	level0 = values[0]
	if cfg.HasTrend() {
		trend0 = values[1] - values[0]
		if cfg.Trend.IsMultiplicative() && level0 != 0 {
			trend0 = values[1] / values[0]
		}
	}
	if cfg.HasSeason() {
		seasonal0 = make([]float64, m)
		for i := range seasonal0 {
			if cfg.Season == ets.SeasonMultiplicative {
				seasonal0[i] = 1
			}
		}
	}
	return level0, trend0, seasonal0
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// paramVector assembles the free-parameter vector, box bounds, and a
// parallel field-name slice describing optimization order for cfg.
func paramVector(cfg ets.Config) (x0, lower, upper []float64, order []string) {
	x0 = append(x0, cfg.Alpha)
	lower = append(lower, 1e-4)
	upper = append(upper, 0.999)
	order = append(order, "alpha")
	if cfg.HasTrend() {
		x0 = append(x0, cfg.Beta)
		lower = append(lower, 1e-4)
		upper = append(upper, 0.999)
		order = append(order, "beta")
	}
	if cfg.HasSeason() {
		x0 = append(x0, cfg.Gamma)
		lower = append(lower, 1e-4)
		upper = append(upper, 0.999)
		order = append(order, "gamma")
	}
	if cfg.Trend.Damped() {
		x0 = append(x0, cfg.Phi)
		lower = append(lower, 0.8)
		upper = append(upper, 0.995)
		order = append(order, "phi")
	}
	return x0, lower, upper, order
}

func applyParamVector(cfg ets.Config, order []string, x []float64) ets.Config {
	for i, field := range order {
		switch field {
		case "alpha":
			cfg.Alpha = x[i]
		case "beta":
			cfg.Beta = x[i]
		case "gamma":
			cfg.Gamma = x[i]
		case "phi":
			cfg.Phi = x[i]
		}
	}
	return cfg
}

// autoETSModel fits a small set of plausible ETS structures and keeps the
// one with the lowest in-sample SSE.
type autoETSModel struct {
	seasonalPeriod int
	chosen         *etsModel
}

func (m *autoETSModel) candidates() []ets.Config {
	m1 := m.seasonalPeriod
	configs := []ets.Config{
		{Error: ets.Additive, Trend: ets.TrendNone, Season: ets.SeasonNone, Alpha: 0.3, M: 1},
		{Error: ets.Additive, Trend: ets.TrendAdditive, Season: ets.SeasonNone, Alpha: 0.3, Beta: 0.1, M: 1},
		{Error: ets.Additive, Trend: ets.TrendDampedAdditive, Season: ets.SeasonNone, Alpha: 0.3, Beta: 0.1, Phi: 0.95, M: 1},
	}
	if m1 > 1 {
		configs = append(configs,
			ets.Config{Error: ets.Additive, Trend: ets.TrendNone, Season: ets.SeasonAdditive, Alpha: 0.3, Gamma: 0.1, M: m1},
			ets.Config{Error: ets.Additive, Trend: ets.TrendAdditive, Season: ets.SeasonAdditive, Alpha: 0.3, Beta: 0.1, Gamma: 0.1, M: m1},
		)
	}
	return configs
}

func (m *autoETSModel) Fit(values []float64) error {
	const op = "AutoETS.Fit"
	var best *etsModel
	bestSSE := 0.0
	for _, cfg := range m.candidates() {
		if cfg.HasSeason() && len(values) < 2*cfg.SeasonLength() {
			continue
		}
		candidate := &etsModel{cfg: cfg, optimizeParams: true}
		if err := candidate.Fit(values); err != nil {
			continue
		}
		if best == nil || candidate.lastSSE < bestSSE {
			best, bestSSE = candidate, candidate.lastSSE
		}
	}
	if best == nil {
		return engerr.New(engerr.NumericalFailure, op, "no candidate ETS structure fit successfully")
	}
	m.chosen = best
	return nil
}

func (m *autoETSModel) Forecast(steps int) ([]float64, error) {
	const op = "AutoETS.Forecast"
	if m.chosen == nil {
		return nil, engerr.New(engerr.InvalidArgument, op, "model not fit")
	}
	return m.chosen.Forecast(steps)
}
