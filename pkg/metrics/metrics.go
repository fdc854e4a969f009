// Package metrics implements the accuracy metrics catalog (§4.J): plain
// functions of equal-length actual/forecast arrays, each with an explicit
// undefined-input contract rather than a silently misleading number.
package metrics

import (
	"math"

	"github.com/anofox/tsforge/pkg/engerr"
)

func checkEqualLength(op string, actual, forecast []float64) error {
	if len(actual) != len(forecast) {
		return engerr.New(engerr.InvalidArgument, op, "actual and forecast must have equal length")
	}
	if len(actual) == 0 {
		return engerr.New(engerr.InvalidArgument, op, "empty input")
	}
	return nil
}

// MAE computes the mean absolute error.
func MAE(actual, forecast []float64) (float64, error) {
	const op = "metrics.MAE"
	if err := checkEqualLength(op, actual, forecast); err != nil {
		return 0, err
	}
	sum := 0.0
	for i := range actual {
		sum += math.Abs(actual[i] - forecast[i])
	}
	return sum / float64(len(actual)), nil
}

// MSE computes the mean squared error.
func MSE(actual, forecast []float64) (float64, error) {
	const op = "metrics.MSE"
	if err := checkEqualLength(op, actual, forecast); err != nil {
		return 0, err
	}
	sum := 0.0
	for i := range actual {
		d := actual[i] - forecast[i]
		sum += d * d
	}
	return sum / float64(len(actual)), nil
}

// RMSE computes the root mean squared error.
func RMSE(actual, forecast []float64) (float64, error) {
	mse, err := MSE(actual, forecast)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAPE computes the mean absolute percentage error. Returns
// (0, ErrUndefined)-style nil-value semantics via a bool: ok is false when
// any actual is zero, per the spec's "requires all actuals non-zero;
// otherwise returns null" contract.
func MAPE(actual, forecast []float64) (value float64, ok bool, err error) {
	const op = "metrics.MAPE"
	if err := checkEqualLength(op, actual, forecast); err != nil {
		return 0, false, err
	}
	sum := 0.0
	for i := range actual {
		if actual[i] == 0 {
			return 0, false, nil
		}
		sum += math.Abs((actual[i] - forecast[i]) / actual[i])
	}
	return 100 * sum / float64(len(actual)), true, nil
}

// SMAPE computes the symmetric MAPE, bounded in [0, 200].
func SMAPE(actual, forecast []float64) (float64, error) {
	const op = "metrics.SMAPE"
	if err := checkEqualLength(op, actual, forecast); err != nil {
		return 0, err
	}
	sum := 0.0
	for i := range actual {
		denom := math.Abs(actual[i]) + math.Abs(forecast[i])
		if denom == 0 {
			continue
		}
		sum += math.Abs(actual[i]-forecast[i]) / denom
	}
	return 200 * sum / float64(len(actual)), nil
}

// MASE computes MAE(forecast)/MAE(baseline). The two-argument form derives
// the baseline from the naive (lag-1) forecast over actual; the
// three-argument form (MASEWithBaseline) takes an explicit baseline
// forecast.
func MASE(actual, forecast []float64) (float64, error) {
	const op = "metrics.MASE"
	if len(actual) < 2 {
		return 0, engerr.New(engerr.InvalidArgument, op, "MASE requires at least 2 actuals for the naive baseline")
	}
	naiveErr := 0.0
	for i := 1; i < len(actual); i++ {
		naiveErr += math.Abs(actual[i] - actual[i-1])
	}
	denom := naiveErr / float64(len(actual)-1)
	if denom == 0 {
		return 0, engerr.New(engerr.InvalidArgument, op, "naive baseline MAE is zero")
	}
	mae, err := MAE(actual, forecast)
	if err != nil {
		return 0, err
	}
	return mae / denom, nil
}

// MASEWithBaseline computes MAE(forecast)/MAE(baseline) against an
// explicit baseline forecast instead of the naive lag-1 derivation.
func MASEWithBaseline(actual, forecast, baseline []float64) (float64, error) {
	maeF, err := MAE(actual, forecast)
	if err != nil {
		return 0, err
	}
	maeB, err := MAE(actual, baseline)
	if err != nil {
		return 0, err
	}
	if maeB == 0 {
		return 0, engerr.New(engerr.InvalidArgument, "metrics.MASEWithBaseline", "baseline MAE is zero")
	}
	return maeF / maeB, nil
}

// R2 computes the coefficient of determination, (-inf, 1].
func R2(actual, forecast []float64) (float64, error) {
	const op = "metrics.R2"
	if err := checkEqualLength(op, actual, forecast); err != nil {
		return 0, err
	}
	mean := 0.0
	for _, v := range actual {
		mean += v
	}
	mean /= float64(len(actual))

	var ssRes, ssTot float64
	for i := range actual {
		ssRes += (actual[i] - forecast[i]) * (actual[i] - forecast[i])
		ssTot += (actual[i] - mean) * (actual[i] - mean)
	}
	if ssTot == 0 {
		return 0, engerr.New(engerr.InvalidArgument, op, "total sum of squares is zero")
	}
	return 1 - ssRes/ssTot, nil
}

// Bias computes the mean signed error (forecast - actual).
func Bias(actual, forecast []float64) (float64, error) {
	const op = "metrics.Bias"
	if err := checkEqualLength(op, actual, forecast); err != nil {
		return 0, err
	}
	sum := 0.0
	for i := range actual {
		sum += forecast[i] - actual[i]
	}
	return sum / float64(len(actual)), nil
}

// RelativeMAE computes MAE(pred1)/MAE(pred2) against a shared actual.
func RelativeMAE(actual, pred1, pred2 []float64) (float64, error) {
	mae1, err := MAE(actual, pred1)
	if err != nil {
		return 0, err
	}
	mae2, err := MAE(actual, pred2)
	if err != nil {
		return 0, err
	}
	if mae2 == 0 {
		return 0, engerr.New(engerr.InvalidArgument, "metrics.RelativeMAE", "pred2 MAE is zero")
	}
	return mae1 / mae2, nil
}

// QuantileLoss computes the pinball loss at quantile level q in (0,1).
func QuantileLoss(actual, forecast []float64, q float64) (float64, error) {
	const op = "metrics.QuantileLoss"
	if err := checkEqualLength(op, actual, forecast); err != nil {
		return 0, err
	}
	if q <= 0 || q >= 1 {
		return 0, engerr.New(engerr.InvalidArgument, op, "quantile level must be in (0,1)")
	}
	sum := 0.0
	for i := range actual {
		e := actual[i] - forecast[i]
		sum += math.Max(q*e, (q-1)*e)
	}
	return sum / float64(len(actual)), nil
}

// MeanQuantileLoss computes the arithmetic mean of per-level pinball
// losses. forecasts[j] holds the forecast vector for levels[j]; both must
// be aligned with actual and with each other.
func MeanQuantileLoss(actual []float64, forecasts [][]float64, levels []float64) (float64, error) {
	const op = "metrics.MeanQuantileLoss"
	if len(forecasts) != len(levels) {
		return 0, engerr.New(engerr.InvalidArgument, op, "forecasts and levels must have equal length")
	}
	if len(levels) == 0 {
		return 0, engerr.New(engerr.InvalidArgument, op, "no quantile levels given")
	}
	sum := 0.0
	for j, level := range levels {
		l, err := QuantileLoss(actual, forecasts[j], level)
		if err != nil {
			return 0, err
		}
		sum += l
	}
	return sum / float64(len(levels)), nil
}

// Coverage computes the fraction of actuals falling within [lower, upper].
func Coverage(actual, lower, upper []float64) (float64, error) {
	const op = "metrics.Coverage"
	if len(actual) != len(lower) || len(actual) != len(upper) {
		return 0, engerr.New(engerr.InvalidArgument, op, "actual, lower, upper must have equal length")
	}
	if len(actual) == 0 {
		return 0, engerr.New(engerr.InvalidArgument, op, "empty input")
	}
	count := 0
	for i := range actual {
		if actual[i] >= lower[i] && actual[i] <= upper[i] {
			count++
		}
	}
	return float64(count) / float64(len(actual)), nil
}
