package engine

import (
	"context"
	"math"

	"github.com/anofox/tsforge/internal/cache"
	"github.com/anofox/tsforge/pkg/aggstate"
	"github.com/anofox/tsforge/pkg/changepoint"
	"github.com/anofox/tsforge/pkg/features"
	"github.com/anofox/tsforge/pkg/seasonality"
	"github.com/anofox/tsforge/pkg/series"
)

// StatsResult is the §6 ts_stats_agg output: basic descriptive statistics
// over a group's accumulated values.
type StatsResult struct {
	Count  int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// StatsAgg implements ts_stats_agg as an aggstate.Kernel. ok is false when
// the group has zero valid observations (aggstate.Finalize's null
// contract).
func StatsAgg(state *aggstate.State) (StatsResult, bool, error) {
	return aggstate.Finalize(state, func(s series.Series, _ map[string]any) (StatsResult, error) {
		values := denseValues(s)
		n := len(values)
		if n == 0 {
			return StatsResult{}, nil
		}
		sum, min, max := 0.0, values[0], values[0]
		for _, v := range values {
			sum += v
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		mean := sum / float64(n)
		variance := 0.0
		for _, v := range values {
			d := v - mean
			variance += d * d
		}
		if n > 1 {
			variance /= float64(n - 1)
		}
		return StatsResult{Count: n, Mean: mean, StdDev: math.Sqrt(variance), Min: min, Max: max}, nil
	})
}

// DataQualityResult is the §6 ts_data_quality_agg output: the diagnostics
// a host uses to decide whether a group is even worth modeling.
type DataQualityResult struct {
	Count        int
	NullCount    int
	ZeroCount    int
	IsConstant   bool
	HasLeadingZero  bool
	HasTrailingZero bool
}

// DataQualityAgg implements ts_data_quality_agg.
func DataQualityAgg(state *aggstate.State) (DataQualityResult, bool, error) {
	n := len(state.Values)
	if n == 0 {
		return DataQualityResult{}, false, nil
	}
	sorted := series.New(state.Timestamps, state.Values, state.Valid).SortByTime()
	result := DataQualityResult{Count: sorted.Len(), NullCount: sorted.Len() - sorted.ValidCount()}
	first, seen, constant := 0.0, false, true
	for i := 0; i < sorted.Len(); i++ {
		if !sorted.IsValid(i) {
			continue
		}
		v := sorted.Values[i]
		if v == 0 {
			result.ZeroCount++
		}
		if !seen {
			first, seen = v, true
		} else if v != first {
			constant = false
		}
	}
	result.IsConstant = seen && constant
	result.HasLeadingZero = sorted.Len() > 0 && sorted.IsValid(0) && sorted.Values[0] == 0
	result.HasTrailingZero = sorted.Len() > 0 && sorted.IsValid(sorted.Len()-1) && sorted.Values[sorted.Len()-1] == 0
	return result, true, nil
}

// FeaturesAgg implements ts_features_agg: computes every calculator in
// names (or the full registered catalog if names is empty) over a
// group's sorted values, sharing one features.Cache across the batch.
func FeaturesAgg(state *aggstate.State, names []string) (map[string]float64, bool, error) {
	return aggstate.Finalize(state, func(s series.Series, _ map[string]any) (map[string]float64, error) {
		values := denseValues(s)
		if len(names) == 0 {
			names = features.Names()
		}
		return features.ComputeAll(names, values, nil)
	})
}

// FeaturesAggCached implements ts_features_agg like FeaturesAgg, but
// threads its per-series intermediates through a cross-process backend
// (internal/cache) under fingerprint — typically the group key — instead of
// a plain in-process Cache. A worker process that has already computed
// features for this fingerprint skips straight to the finalize-time
// calculator sweep using the hydrated sorted/ACF/FFT vectors; either way the
// computed intermediates are flushed back for the next worker to reuse.
func FeaturesAggCached(ctx context.Context, state *aggstate.State, names []string, backend cache.Cache, fingerprint string) (map[string]float64, bool, error) {
	return aggstate.Finalize(state, func(s series.Series, _ map[string]any) (map[string]float64, error) {
		values := denseValues(s)
		if len(names) == 0 {
			names = features.Names()
		}
		bc := features.NewBackedCache(ctx, values, backend, fingerprint)
		out, err := features.ComputeAllWithCache(names, values, nil, bc.Cache)
		if err != nil {
			return nil, err
		}
		if flushErr := bc.Flush(); flushErr != nil {
			return nil, flushErr
		}
		return out, nil
	})
}

// ChangepointsAggResult is the §6 ts_detect_changepoints_agg output.
type ChangepointsAggResult struct {
	IsChangepoint []bool
	RunLengthMAP  []int
}

// ChangepointsAgg implements ts_detect_changepoints_agg, running BOCPD
// over a group's sorted series at finalize.
func ChangepointsAgg(state *aggstate.State, hazardLambda float64) (ChangepointsAggResult, bool, error) {
	return aggstate.Finalize(state, func(s series.Series, _ map[string]any) (ChangepointsAggResult, error) {
		values := denseValues(s)
		cfg := changepoint.DefaultConfig(hazardLambda)
		cfg.Mu0 = meanOf(values)
		result, err := changepoint.Run(values, cfg)
		if err != nil {
			return ChangepointsAggResult{}, err
		}
		return ChangepointsAggResult{IsChangepoint: result.IsChangepoint, RunLengthMAP: result.RunLengthMAP}, nil
	})
}

// PeriodsAggResult is the §6 ts_detect_periods_agg output: the dominant
// period candidates found by spectral analysis.
type PeriodsAggResult struct {
	Periods    []int
	Strengths  []float64
}

// PeriodsAgg implements ts_detect_periods_agg.
func PeriodsAgg(state *aggstate.State) (PeriodsAggResult, bool, error) {
	return aggstate.Finalize(state, func(s series.Series, _ map[string]any) (PeriodsAggResult, error) {
		values := denseValues(s)
		detections, err := seasonality.DetectFFT(values, seasonality.Config{})
		if err != nil {
			return PeriodsAggResult{}, err
		}
		out := PeriodsAggResult{Periods: make([]int, len(detections)), Strengths: make([]float64, len(detections))}
		for i, d := range detections {
			out.Periods[i] = d.Period
			out.Strengths[i] = d.Strength
		}
		return out, nil
	})
}

func denseValues(s series.Series) []float64 {
	out := make([]float64, 0, s.ValidCount())
	for i := 0; i < s.Len(); i++ {
		if s.IsValid(i) {
			out = append(out, s.Values[i])
		}
	}
	return out
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
