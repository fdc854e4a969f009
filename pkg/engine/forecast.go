// Package engine is the §6 external-interface facade: the function
// families a SQL host calls through the FFI boundary, wired on top of
// pkg/models (the forecaster catalog), pkg/cv (backtesting), pkg/metrics
// (accuracy), pkg/changepoint and pkg/seasonality (detectors),
// pkg/features (tsfresh-style calculators), pkg/dataprep (cleaning), and
// pkg/groupop+pkg/aggstate (the concurrency core behind every
// grouped/aggregate entry point).
package engine

import (
	"math"
	"time"

	"github.com/anofox/tsforge/pkg/engerr"
	"github.com/anofox/tsforge/pkg/models"
	"github.com/anofox/tsforge/pkg/series"
)

// ForecastResult is the §6 return shape: point forecast, one confidence
// interval (Lower/Upper, with its level held in ConfidenceLevel),
// in-sample fitted values and residuals when
// requested, and fit diagnostics. ErrorMessage is non-empty exactly when
// a per-group numerical failure was recorded instead of aborting the
// whole call (§7 policy).
type ForecastResult struct {
	Point            []float64
	Lower            []float64
	Upper            []float64
	ConfidenceLevel  float64
	Fitted           []float64
	Residuals        []float64
	ModelName        string
	AIC              float64
	BIC              float64
	MSE              float64
	ErrorMessage     string
}

// defaultConfidenceLevel matches the spec's "default 90" interval
// contract.
const defaultConfidenceLevel = 0.90

// Forecast implements ts_forecast(values, horizon[, model, params]): fit
// one named model over values and forecast horizon steps ahead.
func Forecast(values []float64, horizon int, modelName string, params models.Params) (ForecastResult, error) {
	const op = "engine.Forecast"
	if horizon <= 0 {
		return ForecastResult{}, engerr.New(engerr.InvalidArgument, op, "horizon must be positive")
	}
	if modelName == "" {
		modelName = "Naive"
	}

	m, err := models.New(modelName, params)
	if err != nil {
		return ForecastResult{}, err
	}

	result := ForecastResult{ModelName: modelName, ConfidenceLevel: confidenceLevelFrom(params)}
	if err := m.Fit(values); err != nil {
		result.ErrorMessage = err.Error()
		return result, nil
	}
	point, err := m.Forecast(horizon)
	if err != nil {
		result.ErrorMessage = err.Error()
		return result, nil
	}
	result.Point = point

	var fitted, residuals []float64
	var mse float64
	if fp, ok := m.(models.FittedProvider); ok {
		fittedRaw, mode := fp.Fitted()
		fitted, residuals, mse = alignFittedToValues(fittedRaw, values, mode)
	} else {
		fitted, residuals, mse = inSampleDiagnostics(modelName, params, values)
	}
	result.MSE = mse
	if params.Bool("return_insample", false) || params.Bool("include_fitted", false) {
		result.Fitted = fitted
		result.Residuals = residuals
	}

	sigma := residualStdDev(residuals)
	result.Lower, result.Upper = confidenceBand(point, sigma, result.ConfidenceLevel)
	return result, nil
}

func confidenceLevelFrom(params models.Params) float64 {
	level := params.Float("confidence_level", defaultConfidenceLevel)
	if level <= 0 || level >= 1 {
		level = defaultConfidenceLevel
	}
	return level
}

// inSampleDiagnostics walks the series with an expanding window, refitting
// a fresh model instance at each step and forecasting one step ahead —
// the same expanding-window idiom pkg/cv.Run uses per fold, applied here
// to produce the single full-sample fitted/residual vectors
// ts_forecast's include_fitted/return_insample parameters ask for. A step
// whose refit or forecast fails leaves that position NaN rather than
// aborting the whole vector.
func inSampleDiagnostics(modelName string, params models.Params, values []float64) (fittedValues, residuals []float64, mse float64) {
	n := len(values)
	fittedValues = make([]float64, n)
	residuals = make([]float64, n)
	fittedValues[0] = nanValue()
	residuals[0] = nanValue()

	sumSq, count := 0.0, 0
	for i := 1; i < n; i++ {
		step, err := oneStepForecast(modelName, params, values[:i])
		if err != nil {
			fittedValues[i] = nanValue()
			residuals[i] = nanValue()
			continue
		}
		fittedValues[i] = step
		residuals[i] = values[i] - step
		sumSq += residuals[i] * residuals[i]
		count++
	}
	if count > 0 {
		mse = sumSq / float64(count)
	}
	return fittedValues, residuals, mse
}

// alignFittedToValues turns a model-reported fitted vector into the
// Fitted/Residuals pair ts_forecast returns, honoring the model's
// FittedLengthMode: PadLeadingNaN's vector already matches len(values)
// position-for-position; TruncateToInput's vector is shorter, so residuals
// are computed against the trailing slice of values it actually covers
// rather than the whole series.
func alignFittedToValues(fitted, values []float64, mode models.FittedLengthMode) (fittedOut, residuals []float64, mse float64) {
	target := values
	if mode == models.TruncateToInput {
		target = values[len(values)-len(fitted):]
	}
	residuals = make([]float64, len(fitted))
	sumSq, count := 0.0, 0
	for i := range fitted {
		if math.IsNaN(fitted[i]) {
			residuals[i] = nanValue()
			continue
		}
		residuals[i] = target[i] - fitted[i]
		sumSq += residuals[i] * residuals[i]
		count++
	}
	if count > 0 {
		mse = sumSq / float64(count)
	}
	return fitted, residuals, mse
}

func oneStepForecast(modelName string, params models.Params, window []float64) (float64, error) {
	m, err := models.New(modelName, params)
	if err != nil {
		return 0, err
	}
	if err := m.Fit(window); err != nil {
		return 0, err
	}
	out, err := m.Forecast(1)
	if err != nil {
		return 0, err
	}
	if len(out) == 0 {
		return 0, engerr.New(engerr.Internal, "engine.oneStepForecast", "forecaster returned empty horizon")
	}
	return out[0], nil
}

func nanValue() float64 { return math.NaN() }

func residualStdDev(residuals []float64) float64 {
	sum, sumSq, count := 0.0, 0.0, 0
	for _, r := range residuals {
		if math.IsNaN(r) {
			continue
		}
		sum += r
		sumSq += r * r
		count++
	}
	if count < 2 {
		return 0
	}
	mean := sum / float64(count)
	variance := sumSq/float64(count) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

// confidenceBand widens with the square root of horizon, the standard
// growing-uncertainty shape for a point-forecast interval with no
// explicit innovation-variance model to propagate exactly.
func confidenceBand(point []float64, sigma, level float64) (lower, upper []float64) {
	z := zScoreFor(level)
	lower = make([]float64, len(point))
	upper = make([]float64, len(point))
	for h, p := range point {
		width := z * sigma * math.Sqrt(float64(h+1))
		lower[h] = p - width
		upper[h] = p + width
	}
	return lower, upper
}

// zScoreFor maps a confidence level to the z-score of the highest of
// 0.99/0.95/0.90/0.80 that it reaches (e.g. 0.97 uses the 95% value);
// levels below 0.80 fall back to the 90% value. It does not compute the
// inverse normal CDF.
func zScoreFor(level float64) float64 {
	switch {
	case level >= 0.99:
		return 2.576
	case level >= 0.95:
		return 1.96
	case level >= 0.90:
		return 1.645
	case level >= 0.80:
		return 1.282
	default:
		return 1.645
	}
}

// ForecastAgg implements ts_forecast_agg(timestamp, value, model, horizon,
// params): the aggregate-function entry point over grouped (timestamp,
// value) rows rather than a pre-built array.
func ForecastAgg(timestamps []time.Time, values []float64, modelName string, horizon int, params models.Params) (ForecastResult, error) {
	const op = "engine.ForecastAgg"
	if len(timestamps) != len(values) {
		return ForecastResult{}, engerr.New(engerr.InvalidArgument, op, "timestamps and values must have equal length")
	}
	sorted := series.New(timestamps, values, nil).SortByTime()
	return Forecast(sorted.Values, horizon, modelName, params)
}
