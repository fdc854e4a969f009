package ets

import "math"

// clamp bounds x to [lo, hi].
func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

const (
	trendClampLo   = 0.01
	trendClampHi   = 10.0
	seasonClampLo  = 0.1
	seasonClampHi  = 10.0
	fittedFloor    = 1e-6
	innovClampLo   = -0.999
	innovClampHi   = 1e6
	baseDivGuard   = 1e-8
)

// stepResult captures everything one forward step produces, including the
// intermediate quantities the backward pass needs to replay the chain rule
// without recomputation ambiguity.
type stepResult struct {
	base         float64
	fittedPre    float64
	fitted       float64
	fittedClamp  bool
	innovation   float64
	innovClamp   bool
	newLevel     float64
	newTrend     float64 // valid iff cfg.HasTrend()
	newSeasonal  float64 // valid iff cfg.HasSeason(); replaces component (t mod m)
	seasonBefore float64 // seasonal component value used this step, before update
}

// forwardStep advances one ETS step given the pre-step state (level, trend,
// seasonal component for this position) and the observation y. It implements
// the combination (§4.B step 1-2), innovation (step 3-4), and state update
// (step 5) equations for every error/trend/season combination.
func forwardStep(cfg Config, level, trend, seasonComponent, y float64) stepResult {
	var r stepResult
	r.seasonBefore = seasonComponent

	// Step 1: combine level and trend into base.
	switch {
	case !cfg.HasTrend():
		r.base = level
	case cfg.Trend == TrendAdditive:
		r.base = level + trend
	case cfg.Trend == TrendMultiplicative:
		r.base = level * clamp(trend, trendClampLo, trendClampHi)
	case cfg.Trend == TrendDampedAdditive:
		r.base = level + cfg.Phi*trend
	case cfg.Trend == TrendDampedMultiplicative:
		r.base = level * math.Pow(clamp(trend, trendClampLo, trendClampHi), cfg.Phi)
	}

	// Step 2: combine base and seasonal into fitted, then floor-clamp.
	switch {
	case !cfg.HasSeason():
		r.fittedPre = r.base
	case cfg.Season == SeasonAdditive:
		r.fittedPre = r.base + seasonComponent
	case cfg.Season == SeasonMultiplicative:
		r.fittedPre = r.base * seasonComponent
	}
	if r.fittedPre < fittedFloor {
		r.fitted = fittedFloor
		r.fittedClamp = true
	} else {
		r.fitted = r.fittedPre
	}

	// Step 3-4: innovation.
	if cfg.Error == Additive {
		r.innovation = y - r.fitted
	} else {
		raw := y/r.fitted - 1
		clamped := clamp(raw, innovClampLo, innovClampHi)
		r.innovClamp = clamped != raw
		r.innovation = clamped
	}

	e := r.innovation

	// Step 5: state updates.
	if cfg.Error == Additive {
		r.newLevel = r.base + cfg.Alpha*e
		if cfg.HasTrend() {
			if cfg.Trend.Damped() {
				r.newTrend = cfg.Phi*trend + cfg.Beta*e
			} else {
				r.newTrend = trend + cfg.Beta*e
			}
		}
		if cfg.HasSeason() {
			if cfg.Season == SeasonAdditive {
				r.newSeasonal = seasonComponent + cfg.Gamma*e
			} else {
				safeBase := r.base
				if math.Abs(safeBase) < baseDivGuard {
					safeBase = math.Copysign(baseDivGuard, safeBase+baseDivGuard)
				}
				r.newSeasonal = clamp(seasonComponent*(1+cfg.Gamma*e/safeBase), seasonClampLo, seasonClampHi)
			}
		}
	} else {
		r.newLevel = r.base * (1 + cfg.Alpha*e)
		scale := r.base * e
		if cfg.HasTrend() {
			if cfg.Trend.Damped() {
				r.newTrend = cfg.Phi*trend + cfg.Beta*scale
			} else {
				r.newTrend = trend + cfg.Beta*scale
			}
		}
		if cfg.HasSeason() {
			if cfg.Season == SeasonAdditive {
				r.newSeasonal = seasonComponent + cfg.Gamma*scale
			} else {
				r.newSeasonal = clamp(seasonComponent*(1+cfg.Gamma*e), seasonClampLo, seasonClampHi)
			}
		}
	}

	return r
}
