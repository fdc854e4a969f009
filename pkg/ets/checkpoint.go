package ets

import (
	"sort"

	"github.com/anofox/tsforge/internal/numeric"
	"github.com/anofox/tsforge/pkg/engerr"
)

// Checkpoint is a snapshot of ETS state at absolute position T.
type Checkpoint struct {
	T        int
	Level    float64
	Trend    float64
	Seasonal []float64
}

// CheckpointSet is a sparse ladder of state snapshots built by
// BuildCheckpoints: always the initial (T=0) and terminal (T=n) snapshots,
// plus every Stride'th interior position (§4.D).
type CheckpointSet struct {
	Stride int
	Points []Checkpoint
}

// BuildCheckpoints walks the forward recursion once, retaining only a
// snapshot every stride steps (plus the initial and terminal state) rather
// than the full O(n*m) state history. This is the structure the backward
// pass replays from to bound memory on very long series.
func BuildCheckpoints(cfg Config, values []float64, level0, trend0 float64, seasonal0 []float64, stride int) (CheckpointSet, error) {
	const op = "ets.BuildCheckpoints"
	if err := cfg.Validate(); err != nil {
		return CheckpointSet{}, err
	}
	if stride < 1 {
		stride = 1
	}
	n := len(values)
	m := cfg.SeasonLength()
	if cfg.HasSeason() && len(seasonal0) != m {
		return CheckpointSet{}, engerr.New(engerr.InvalidArgument, op, "seasonal0 length must equal season length")
	}

	level := level0
	trend := trend0
	seasonal := make([]float64, m)
	if cfg.HasSeason() {
		copy(seasonal, seasonal0)
	}

	snapshot := func(t int) Checkpoint {
		s := make([]float64, m)
		copy(s, seasonal)
		return Checkpoint{T: t, Level: level, Trend: trend, Seasonal: s}
	}

	cs := CheckpointSet{Stride: stride}
	cs.Points = append(cs.Points, snapshot(0))

	for t := 0; t < n; t++ {
		k := t % m
		var seasonComponent float64
		if cfg.HasSeason() {
			seasonComponent = seasonal[k]
		}
		r := forwardStep(cfg, level, trend, seasonComponent, values[t])
		level = r.newLevel
		if cfg.HasTrend() {
			trend = r.newTrend
		}
		if cfg.HasSeason() {
			seasonal[k] = r.newSeasonal
		}
		next := t + 1
		if next == n || next%stride == 0 {
			cs.Points = append(cs.Points, snapshot(next))
		}
	}
	return cs, nil
}

// nearestAtOrBefore returns the checkpoint with the largest T <= t.
func (cs CheckpointSet) nearestAtOrBefore(t int) Checkpoint {
	idx := sort.Search(len(cs.Points), func(i int) bool { return cs.Points[i].T > t })
	return cs.Points[idx-1]
}

// StateAt reconstructs the exact ETS state at absolute position t by
// replaying the forward recursion from the nearest preceding checkpoint
// (§4.D invariant 3: replaying from any checkpoint reproduces state
// bit-for-bit identical to the uncheckpointed recursion, since forward is
// deterministic).
func (cs CheckpointSet) StateAt(cfg Config, values []float64, t int) (level, trend float64, seasonal []float64, err error) {
	cp := cs.nearestAtOrBefore(t)
	if cp.T == t {
		return cp.Level, cp.Trend, cp.Seasonal, nil
	}
	// Forward indexes seasonal slots by local step, so rotate the snapshot
	// into that phase and rotate the result back to absolute (t mod m) order.
	off := cp.T % cfg.SeasonLength()
	seed := cp.Seasonal
	if cfg.HasSeason() {
		seed = append(append([]float64(nil), cp.Seasonal[off:]...), cp.Seasonal[:off]...)
	}
	sub := values[cp.T:t]
	traj, err := Forward(cfg, sub, cp.Level, cp.Trend, seed)
	if err != nil {
		return 0, 0, nil, err
	}
	last := len(sub)
	level = traj.Levels[last]
	if cfg.HasTrend() {
		trend = traj.Trends[last]
	}
	if cfg.HasSeason() {
		s := traj.Seasonals[last]
		seasonal = append(append([]float64(nil), s[len(s)-off:]...), s[:len(s)-off]...)
	}
	return level, trend, seasonal, nil
}

// BackwardCheckpointed computes the same analytical gradient as Backward,
// but replays each inter-checkpoint segment's forward sub-trajectory on
// demand instead of holding the full O(n*m) history in memory at once. Peak
// memory is bounded by O(stride*m), the primary reason gradient
// checkpointing exists for very long series (§4.D).
func BackwardCheckpointed(cfg Config, values []float64, cs CheckpointSet) (GradientBundle, error) {
	const op = "ets.BackwardCheckpointed"
	if err := cfg.Validate(); err != nil {
		return GradientBundle{}, err
	}
	n := len(values)
	if n == 0 || len(cs.Points) < 2 {
		return GradientBundle{}, engerr.New(engerr.InvalidArgument, op, "empty series or degenerate checkpoint set")
	}

	initial := cs.Points[0]
	sse, _, err := ForwardSummary(cfg, values, initial.Level, initial.Trend, initial.Seasonal)
	if err != nil {
		return GradientBundle{}, err
	}
	sigma2 := sse / float64(n)
	if sigma2 <= 0 {
		return GradientBundle{}, engerr.New(engerr.NumericalFailure, op, "non-positive innovation variance")
	}

	m := cfg.SeasonLength()
	st := newBackwardState(m)

	for segIdx := len(cs.Points) - 1; segIdx > 0; segIdx-- {
		prev := cs.Points[segIdx-1]
		cur := cs.Points[segIdx]
		segValues := values[prev.T:cur.T]
		off := prev.T % m
		seed := prev.Seasonal
		if cfg.HasSeason() {
			seed = append(append([]float64(nil), prev.Seasonal[off:]...), prev.Seasonal[:off]...)
		}
		traj, err := Forward(cfg, segValues, prev.Level, prev.Trend, seed)
		if err != nil {
			return GradientBundle{}, err
		}

		segLen := len(segValues)
		dInnovSeed := make([]float64, segLen)
		numeric.Normalize(dInnovSeed, traj.Innovations, sigma2, segLen)

		for local := segLen - 1; local >= 0; local-- {
			absT := prev.T + local
			level := traj.Levels[local]
			var trend float64
			if cfg.HasTrend() {
				trend = traj.Trends[local]
			}
			k := absT % m
			var seasonComponent float64
			if cfg.HasSeason() {
				seasonComponent = traj.Seasonals[local][local%m]
			}
			base := recomputeBase(cfg, level, trend)

			backwardStep(cfg, &st, backwardInputs{
				y:             segValues[local],
				base:          base,
				level:         level,
				trend:         trend,
				seasonBefore:  seasonComponent,
				fitted:        traj.Fitted[local],
				innovation:    traj.Innovations[local],
				fittedClamped: traj.FittedClamped[local],
				innovClamped:  traj.InnovationClamped[local],
				dInnovSeed:    dInnovSeed[local],
				seasonIndex:   k,
			})
		}
	}

	bundle := GradientBundle{DAlpha: st.dAlpha, DLevel0: st.dLevel}
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
