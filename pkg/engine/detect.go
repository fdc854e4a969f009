package engine

import (
	"github.com/anofox/tsforge/pkg/changepoint"
	"github.com/anofox/tsforge/pkg/engerr"
	"github.com/anofox/tsforge/pkg/models"
	"github.com/anofox/tsforge/pkg/seasonality"
)

// ChangepointsResult is the §6 BOCPD return shape: (is_changepoint[],
// changepoint_probability[], changepoint_indices[]).
type ChangepointsResult struct {
	IsChangepoint           []bool
	ChangepointProbability  []float64
	ChangepointIndices      []int
}

// defaultHazardLambda is the spec's implicit "moderate" changepoint rate
// when the caller doesn't pass hazard_lambda: one changepoint expected
// roughly every 100 observations.
const defaultHazardLambda = 100.0

// DetectChangepoints implements ts_detect_changepoints(values[,
// hazard_lambda, include_probabilities]).
func DetectChangepoints(values []float64, params models.Params) (ChangepointsResult, error) {
	hazardLambda := params.Float("hazard_lambda", defaultHazardLambda)
	return DetectChangepointsBOCPD(values, hazardLambda, params.Bool("include_probabilities", false))
}

// DetectChangepointsBOCPD implements ts_detect_changepoints_bocpd(...)
// directly, with explicit hazard_lambda and include_probabilities
// arguments rather than pulling them from a parameter map.
func DetectChangepointsBOCPD(values []float64, hazardLambda float64, includeProbabilities bool) (ChangepointsResult, error) {
	const op = "engine.DetectChangepointsBOCPD"
	if hazardLambda <= 1 {
		return ChangepointsResult{}, engerr.New(engerr.InvalidArgument, op, "hazard_lambda must be > 1")
	}
	cfg := changepoint.DefaultConfig(hazardLambda)
	cfg.Mu0 = meanOf(values)
	raw, err := changepoint.Run(values, cfg)
	if err != nil {
		return ChangepointsResult{}, err
	}

	result := ChangepointsResult{IsChangepoint: raw.IsChangepoint}
	for i, flagged := range raw.IsChangepoint {
		if flagged {
			result.ChangepointIndices = append(result.ChangepointIndices, i)
		}
	}
	if includeProbabilities {
		result.ChangepointProbability = make([]float64, len(raw.Probabilities))
		for i, dist := range raw.Probabilities {
			if len(dist) > 0 {
				result.ChangepointProbability[i] = dist[0]
			}
		}
	}
	return result, nil
}

// SeasonalityResult is the §6 ts_detect_seasonality/ts_analyze_seasonality
// output: the dominant period plus the full candidate list, each with its
// supporting strength.
type SeasonalityResult struct {
	Period      int
	Strength    float64
	Found       bool
	Candidates  []seasonality.Detection
}

// DetectSeasonality implements ts_detect_seasonality(values): the
// single-best-period form.
func DetectSeasonality(values []float64) (SeasonalityResult, error) {
	period, strength, ok, err := seasonality.Detect(values, seasonality.Config{})
	if err != nil {
		return SeasonalityResult{}, err
	}
	return SeasonalityResult{Period: period, Strength: strength, Found: ok}, nil
}

// AnalyzeSeasonality implements ts_analyze_seasonality([timestamps,]
// values): the full-candidate-list form. timestamps is accepted for
// interface parity with the spec's signature but unused beyond implying
// the series is already time-ordered — detection itself is purely
// index-based.
func AnalyzeSeasonality(values []float64) (SeasonalityResult, error) {
	best, err := DetectSeasonality(values)
	if err != nil {
		return SeasonalityResult{}, err
	}
	fft, err := seasonality.DetectFFT(values, seasonality.Config{})
	if err != nil {
		return best, nil
	}
	best.Candidates = fft
	return best, nil
}

// MSTLDecompositionResult is the §6 ts_mstl_decomposition output: the
// trend, seasonal, and remainder components MSTL extracts.
type MSTLDecompositionResult struct {
	Trend     []float64
	Seasonal  []float64
	Remainder []float64
	Period    int
}

// MSTLDecomposition implements ts_mstl_decomposition(values): runs period
// detection then the same trend/seasonal/remainder split pkg/models'
// MSTL forecaster fits internally, exposing the components themselves
// rather than a forecast.
func MSTLDecomposition(values []float64) (MSTLDecompositionResult, error) {
	const op = "engine.MSTLDecomposition"
	if len(values) < 4 {
		return MSTLDecompositionResult{}, engerr.New(engerr.InvalidArgument, op, "series too short")
	}
	period, _, ok, err := seasonality.Detect(values, seasonality.Config{})
	if err != nil {
		return MSTLDecompositionResult{}, err
	}
	if !ok || period < 2 || len(values) < 2*period {
		period = 1
	}
	trend, seasonals, remainder := models.Decompose(values, []int{period})
	return MSTLDecompositionResult{Trend: trend, Seasonal: seasonals[period], Remainder: remainder, Period: period}, nil
}
