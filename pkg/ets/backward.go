package ets

import (
	"math"

	"github.com/anofox/tsforge/internal/numeric"
	"github.com/anofox/tsforge/pkg/engerr"
)

// GradientBundle is the analytical gradient of the innovations-form
// negative log-likelihood with respect to every free quantity: the
// smoothing parameters and the initial state. It is exactly the shape
// pkg/optimize's L-BFGS-B driver consumes each iteration.
type GradientBundle struct {
	DAlpha float64
	DBeta  float64 // valid iff cfg.HasTrend()
	DGamma float64 // valid iff cfg.HasSeason()
	DPhi   float64 // valid iff cfg.Trend.Damped()

	DLevel0    float64
	DTrend0    float64   // valid iff cfg.HasTrend()
	DSeasonal0 []float64 // valid iff cfg.HasSeason(), len m
}

// backwardState is the set of persistent accumulators threaded through the
// reverse sweep. It is exported internally (lowercase) so both Backward and
// the checkpoint-segmented BackwardCheckpointed can share one step routine.
type backwardState struct {
	dLevel float64
	dTrend float64
	dSeas  []float64 // len m

	dAlpha, dBeta, dGamma, dPhi float64
}

func newBackwardState(m int) backwardState {
	return backwardState{dSeas: make([]float64, m)}
}

// Backward computes the analytical gradient of the ETS negative
// log-likelihood over a full forward Trajectory (§4.C). sigma2 is the
// per-observation innovation variance (InnovationSSE / n) used to seed the
// per-step innovation gradient.
func Backward(cfg Config, values []float64, traj Trajectory) (GradientBundle, error) {
	const op = "ets.Backward"
	if err := cfg.Validate(); err != nil {
		return GradientBundle{}, err
	}
	n := len(values)
	if n == 0 {
		return GradientBundle{}, engerr.New(engerr.InvalidArgument, op, "empty series")
	}
	sigma2 := traj.InnovationSSE / float64(n)
	if sigma2 <= 0 {
		return GradientBundle{}, engerr.New(engerr.NumericalFailure, op, "non-positive innovation variance")
	}

	dInnovSeed := make([]float64, n)
	numeric.Normalize(dInnovSeed, traj.Innovations, sigma2, n)

	m := cfg.SeasonLength()
	st := newBackwardState(m)

	for t := n - 1; t >= 0; t-- {
		level := traj.Levels[t]
		var trend float64
		if cfg.HasTrend() {
			trend = traj.Trends[t]
		}
		k := t % m
		var seasonComponent float64
		if cfg.HasSeason() {
			seasonComponent = traj.Seasonals[t][k]
		}
		fitted := traj.Fitted[t]
		innov := traj.Innovations[t]
		y := values[t]

		base := recomputeBase(cfg, level, trend)

		backwardStep(cfg, &st, backwardInputs{
			y:             y,
			base:          base,
			level:         level,
			trend:         trend,
			seasonBefore:  seasonComponent,
			fitted:        fitted,
			innovation:    innov,
			fittedClamped: traj.FittedClamped[t],
			innovClamped:  traj.InnovationClamped[t],
			dInnovSeed:    dInnovSeed[t],
			seasonIndex:   k,
		})
	}

	bundle := GradientBundle{
		DAlpha:  st.dAlpha,
		DLevel0: st.dLevel,
	}
	if cfg.HasTrend() {
		bundle.DBeta = st.dBeta
		bundle.DTrend0 = st.dTrend
	}
	if cfg.HasSeason() {
		bundle.DGamma = st.dGamma
		bundle.DSeasonal0 = st.dSeas
	}
	if cfg.Trend.Damped() {
		bundle.DPhi = st.dPhi
	}
	return bundle, nil
}

func recomputeBase(cfg Config, level, trend float64) float64 {
	switch {
	case !cfg.HasTrend():
		return level
	case cfg.Trend == TrendAdditive:
		return level + trend
	case cfg.Trend == TrendMultiplicative:
		return level * clamp(trend, trendClampLo, trendClampHi)
	case cfg.Trend == TrendDampedAdditive:
		return level + cfg.Phi*trend
	default: // TrendDampedMultiplicative
		return level * math.Pow(clamp(trend, trendClampLo, trendClampHi), cfg.Phi)
	}
}

type backwardInputs struct {
	y             float64
	base          float64
	level         float64
	trend         float64
	seasonBefore  float64
	fitted        float64
	innovation    float64
	fittedClamped bool
	innovClamped  bool
	dInnovSeed    float64
	seasonIndex   int
}

// backwardStep applies one reverse-mode step of the analytical gradient
// (§4.C). It mutates st in place: the incoming st.dLevel/dTrend/dSeas[k]
// represent dL/d(state entering step t+1); on return they hold
// dL/d(state entering step t), ready for the next (earlier) iteration.
func backwardStep(cfg Config, st *backwardState, in backwardInputs) {
	gNextLevel := st.dLevel
	gNextTrend := st.dTrend
	var gNextSeas float64
	if cfg.HasSeason() {
		gNextSeas = st.dSeas[in.seasonIndex]
	}

	var dInnovExtra, dBaseExtra, dTrendDirect, dSeasDirect float64

	// new_level edges.
	if cfg.Error == Additive {
		dBaseExtra += gNextLevel
		dInnovExtra += gNextLevel * cfg.Alpha
		st.dAlpha += gNextLevel * in.innovation
	} else {
		dBaseExtra += gNextLevel * (1 + cfg.Alpha*in.innovation)
		dInnovExtra += gNextLevel * in.base * cfg.Alpha
		st.dAlpha += gNextLevel * in.base * in.innovation
	}

	// new_trend edges.
	if cfg.HasTrend() {
		damped := cfg.Trend.Damped()
		if cfg.Error == Additive {
			if damped {
				dTrendDirect += gNextTrend * cfg.Phi
				st.dPhi += gNextTrend * in.trend
			} else {
				dTrendDirect += gNextTrend
			}
			dInnovExtra += gNextTrend * cfg.Beta
			st.dBeta += gNextTrend * in.innovation
		} else {
			scale := in.base * in.innovation
			if damped {
				dTrendDirect += gNextTrend * cfg.Phi
				st.dPhi += gNextTrend * in.trend
			} else {
				dTrendDirect += gNextTrend
			}
			dInnovExtra += gNextTrend * cfg.Beta * in.base
			dBaseExtra += gNextTrend * cfg.Beta * in.innovation
			st.dBeta += gNextTrend * scale
		}
	}

	// new_seasonal edges.
	if cfg.HasSeason() {
		if cfg.Season == SeasonAdditive {
			if cfg.Error == Additive {
				dSeasDirect += gNextSeas
				dInnovExtra += gNextSeas * cfg.Gamma
				st.dGamma += gNextSeas * in.innovation
			} else {
				scale := in.base * in.innovation
				dSeasDirect += gNextSeas
				dInnovExtra += gNextSeas * cfg.Gamma * in.base
				dBaseExtra += gNextSeas * cfg.Gamma * in.innovation
				st.dGamma += gNextSeas * scale
			}
		} else {
			if cfg.Error == Additive {
				safeBase := in.base
				if math.Abs(safeBase) < baseDivGuard {
					safeBase = math.Copysign(baseDivGuard, safeBase+baseDivGuard)
				}
				inner := in.seasonBefore * (1 + cfg.Gamma*in.innovation/safeBase)
				if inner >= seasonClampLo && inner <= seasonClampHi {
					dSeasDirect += gNextSeas * (1 + cfg.Gamma*in.innovation/safeBase)
					dInnovExtra += gNextSeas * in.seasonBefore * cfg.Gamma / safeBase
					st.dGamma += gNextSeas * in.seasonBefore * in.innovation / safeBase
					dBaseExtra += gNextSeas * (-in.seasonBefore * cfg.Gamma * in.innovation / (safeBase * safeBase))
				}
			} else {
				inner := in.seasonBefore * (1 + cfg.Gamma*in.innovation)
				if inner >= seasonClampLo && inner <= seasonClampHi {
					dSeasDirect += gNextSeas * (1 + cfg.Gamma*in.innovation)
					dInnovExtra += gNextSeas * in.seasonBefore * cfg.Gamma
					st.dGamma += gNextSeas * in.seasonBefore * in.innovation
				}
			}
		}
	}

	dInnovTotal := in.dInnovSeed + dInnovExtra

	var dFitted float64
	if cfg.Error == Multiplicative {
		dFitted += 1 / in.fitted
	}
	if !in.innovClamped {
		if cfg.Error == Additive {
			dFitted += dInnovTotal * -1
		} else {
			dFitted += dInnovTotal * (-in.y / (in.fitted * in.fitted))
		}
	}

	dFittedPre := dFitted
	if in.fittedClamped {
		dFittedPre = 0
	}

	var dBaseFromFitted, dSeasFromFitted float64
	switch {
	case !cfg.HasSeason():
		dBaseFromFitted = dFittedPre
	case cfg.Season == SeasonAdditive:
		dBaseFromFitted = dFittedPre
		dSeasFromFitted = dFittedPre
	default: // SeasonMultiplicative
		dBaseFromFitted = dFittedPre * in.seasonBefore
		dSeasFromFitted = dFittedPre * in.base
	}

	dBaseTotal := dBaseFromFitted + dBaseExtra

	var dLevelFromBase, dTrendFromBase float64
	switch {
	case !cfg.HasTrend():
		dLevelFromBase = dBaseTotal
	case cfg.Trend == TrendAdditive:
		dLevelFromBase = dBaseTotal
		dTrendFromBase = dBaseTotal
	case cfg.Trend == TrendMultiplicative:
		ct := clamp(in.trend, trendClampLo, trendClampHi)
		dLevelFromBase = dBaseTotal * ct
		if in.trend >= trendClampLo && in.trend <= trendClampHi {
			dTrendFromBase = dBaseTotal * in.level
		}
	case cfg.Trend == TrendDampedAdditive:
		dLevelFromBase = dBaseTotal
		dTrendFromBase = dBaseTotal * cfg.Phi
		st.dPhi += dBaseTotal * in.trend
	default: // TrendDampedMultiplicative
		ct := clamp(in.trend, trendClampLo, trendClampHi)
		ctPhi := math.Pow(ct, cfg.Phi)
		dLevelFromBase = dBaseTotal * ctPhi
		if in.trend >= trendClampLo && in.trend <= trendClampHi {
			dTrendFromBase = dBaseTotal * in.level * cfg.Phi * math.Pow(ct, cfg.Phi-1)
		}
		if ct > 0 {
			st.dPhi += dBaseTotal * in.level * ctPhi * math.Log(ct)
		}
	}

	st.dLevel = dLevelFromBase
	if cfg.HasTrend() {
		st.dTrend = dTrendFromBase + dTrendDirect
	}
	if cfg.HasSeason() {
		st.dSeas[in.seasonIndex] = dSeasFromFitted + dSeasDirect
	}
}
