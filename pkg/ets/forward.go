package ets

import (
	"math"

	"github.com/anofox/tsforge/pkg/engerr"
)

// Trajectory is the full forward-pass state history for a series of length
// n: n+1 snapshots of level/trend/seasonal state (before step 0 through
// after step n-1), plus the per-step fitted values and innovations the
// backward pass differentiates through.
type Trajectory struct {
	Fitted      []float64 // len n
	Innovations []float64 // len n
	Levels      []float64 // len n+1
	Trends      []float64 // len n+1, nil if !cfg.HasTrend()
	Seasonals   [][]float64 // len n+1, each len m, nil if !cfg.HasSeason()

	FittedClamped     []bool // len n: floor clamp was active at step t
	InnovationClamped []bool // len n: multiplicative-error clamp was active at step t

	InnovationSSE  float64
	SumLogForecast float64 // sum of log(fitted[t]), used by multiplicative-error likelihood
}

// Forward runs the deterministic ETS forward recursion (§4.B) over values,
// starting from the given initial states, and returns the full state
// history. seasonal0 must have length cfg.SeasonLength() when cfg has a
// seasonal component.
func Forward(cfg Config, values []float64, level0, trend0 float64, seasonal0 []float64) (Trajectory, error) {
	const op = "ets.Forward"
	if err := cfg.Validate(); err != nil {
		return Trajectory{}, err
	}
	n := len(values)
	m := cfg.SeasonLength()
	if cfg.HasSeason() && len(seasonal0) != m {
		return Trajectory{}, engerr.New(engerr.InvalidArgument, op, "seasonal0 length must equal season length")
	}

	traj := Trajectory{
		Fitted:            make([]float64, n),
		Innovations:       make([]float64, n),
		Levels:            make([]float64, n+1),
		FittedClamped:     make([]bool, n),
		InnovationClamped: make([]bool, n),
	}
	if cfg.HasTrend() {
		traj.Trends = make([]float64, n+1)
	}
	if cfg.HasSeason() {
		traj.Seasonals = make([][]float64, n+1)
		for i := range traj.Seasonals {
			traj.Seasonals[i] = make([]float64, m)
		}
	}

	traj.Levels[0] = level0
	if cfg.HasTrend() {
		traj.Trends[0] = trend0
	}
	if cfg.HasSeason() {
		copy(traj.Seasonals[0], seasonal0)
	}

	for t := 0; t < n; t++ {
		level := traj.Levels[t]
		var trend float64
		if cfg.HasTrend() {
			trend = traj.Trends[t]
		}
		var seasonComponent float64
		k := t % m
		if cfg.HasSeason() {
			seasonComponent = traj.Seasonals[t][k]
		}

		r := forwardStep(cfg, level, trend, seasonComponent, values[t])

		traj.Fitted[t] = r.fitted
		traj.Innovations[t] = r.innovation
		traj.FittedClamped[t] = r.fittedClamp
		traj.InnovationClamped[t] = r.innovClamp
		traj.InnovationSSE += r.innovation * r.innovation
		traj.SumLogForecast += math.Log(r.fitted)

		traj.Levels[t+1] = r.newLevel
		if cfg.HasTrend() {
			traj.Trends[t+1] = r.newTrend
		}
		if cfg.HasSeason() {
			copy(traj.Seasonals[t+1], traj.Seasonals[t])
			traj.Seasonals[t+1][k] = r.newSeasonal
		}
	}

	return traj, nil
}

// ForwardSummary runs the same recursion as Forward but discards the
// per-step state history, retaining only the scalar totals. It costs O(m)
// memory regardless of series length and is the primitive gradient
// checkpointing uses to obtain the global SSE cheaply before the
// memory-bounded backward sweep (§4.D).
func ForwardSummary(cfg Config, values []float64, level0, trend0 float64, seasonal0 []float64) (sse, sumLogForecast float64, err error) {
	const op = "ets.ForwardSummary"
	if err := cfg.Validate(); err != nil {
		return 0, 0, err
	}
	n := len(values)
	m := cfg.SeasonLength()
	if cfg.HasSeason() && len(seasonal0) != m {
		return 0, 0, engerr.New(engerr.InvalidArgument, op, "seasonal0 length must equal season length")
	}

	level := level0
	trend := trend0
	seasonal := make([]float64, m)
	if cfg.HasSeason() {
		copy(seasonal, seasonal0)
	}

	for t := 0; t < n; t++ {
		k := t % m
		var seasonComponent float64
		if cfg.HasSeason() {
			seasonComponent = seasonal[k]
		}
		r := forwardStep(cfg, level, trend, seasonComponent, values[t])
		sse += r.innovation * r.innovation
		sumLogForecast += math.Log(r.fitted)

		level = r.newLevel
		if cfg.HasTrend() {
			trend = r.newTrend
		}
		if cfg.HasSeason() {
			seasonal[k] = r.newSeasonal
		}
	}
	return sse, sumLogForecast, nil
}
