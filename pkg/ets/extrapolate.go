package ets

import (
	"math"

	"github.com/anofox/tsforge/pkg/engerr"
)

// combineBaseFitted reproduces forwardStep's steps 1-2 (level/trend into
// base, base/seasonal into fitted) without touching innovation or state
// update; it is the piece multi-step-ahead forecasting needs repeatedly
// once no further observations exist to drive innovations.
func combineBaseFitted(cfg Config, level, trend, seasonComponent float64) (base, fitted float64) {
	switch {
	case !cfg.HasTrend():
		base = level
	case cfg.Trend == TrendAdditive:
		base = level + trend
	case cfg.Trend == TrendMultiplicative:
		base = level * clamp(trend, trendClampLo, trendClampHi)
	case cfg.Trend == TrendDampedAdditive:
		base = level + cfg.Phi*trend
	case cfg.Trend == TrendDampedMultiplicative:
		base = level * math.Pow(clamp(trend, trendClampLo, trendClampHi), cfg.Phi)
	}

	var pre float64
	switch {
	case !cfg.HasSeason():
		pre = base
	case cfg.Season == SeasonAdditive:
		pre = base + seasonComponent
	case cfg.Season == SeasonMultiplicative:
		pre = base * seasonComponent
	}
	if pre < fittedFloor {
		fitted = fittedFloor
	} else {
		fitted = pre
	}
	return base, fitted
}

// Extrapolate produces steps point forecasts beyond the end of a fitted
// series, holding the trend component's recursive damping/advance but
// applying no innovation (there is no new observation to drive one). The
// seasonal vector cycles through its m positions starting one past the
// position last updated by the forward pass.
func Extrapolate(cfg Config, level, trend float64, seasonal []float64, lastSeasonIndex int, steps int) ([]float64, error) {
	const op = "ets.Extrapolate"
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if steps < 0 {
		return nil, engerr.New(engerr.InvalidArgument, op, "steps must be >= 0")
	}

	out := make([]float64, steps)
	curTrend := trend
	for h := 0; h < steps; h++ {
		var seasonComponent float64
		if cfg.HasSeason() {
			m := cfg.SeasonLength()
			idx := (lastSeasonIndex + 1 + h) % m
			seasonComponent = seasonal[idx]
		}
		_, fitted := combineBaseFitted(cfg, level, curTrend, seasonComponent)
		out[h] = fitted

		// Advance level toward the undamped base for the next horizon step
		// (equivalent to recursing the forward combination with e=0), and
		// damp the trend geometrically per step for damped variants.
		base, _ := combineBaseFitted(cfg, level, curTrend, 0)
		level = base
		if cfg.Trend.Damped() {
			curTrend *= cfg.Phi
		}
	}
	return out, nil
}
