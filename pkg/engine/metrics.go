package engine

import "github.com/anofox/tsforge/pkg/metrics"

// This file re-exports pkg/metrics under the §6 ts_* names the host
// calls directly; each is a thin pass-through rather than a
// reimplementation, since pkg/metrics already carries the exact
// undefined-input contracts (§7 DataQuality cases) the spec names.

func MAE(actual, forecast []float64) (float64, error)  { return metrics.MAE(actual, forecast) }
func MSE(actual, forecast []float64) (float64, error)  { return metrics.MSE(actual, forecast) }
func RMSE(actual, forecast []float64) (float64, error) { return metrics.RMSE(actual, forecast) }

// MAPE returns ok=false (a null result, per §6's null-handling policy)
// when any actual is zero.
func MAPE(actual, forecast []float64) (value float64, ok bool, err error) {
	return metrics.MAPE(actual, forecast)
}

func SMAPE(actual, forecast []float64) (float64, error) { return metrics.SMAPE(actual, forecast) }

// MASE derives its baseline from the naive lag-1 forecast; MASEWithBaseline
// takes an explicit baseline forecast, matching ts_mase's two call forms.
func MASE(actual, forecast []float64) (float64, error) { return metrics.MASE(actual, forecast) }
func MASEWithBaseline(actual, forecast, baseline []float64) (float64, error) {
	return metrics.MASEWithBaseline(actual, forecast, baseline)
}

func R2(actual, forecast []float64) (float64, error)   { return metrics.R2(actual, forecast) }
func Bias(actual, forecast []float64) (float64, error) { return metrics.Bias(actual, forecast) }

// RMAE implements ts_rmae: relative MAE of one forecast against another.
func RMAE(actual, pred1, pred2 []float64) (float64, error) {
	return metrics.RelativeMAE(actual, pred1, pred2)
}

func QuantileLoss(actual, forecast []float64, q float64) (float64, error) {
	return metrics.QuantileLoss(actual, forecast, q)
}

// MQLoss implements ts_mqloss: mean pinball loss across several quantile
// levels.
func MQLoss(actual []float64, forecasts [][]float64, levels []float64) (float64, error) {
	return metrics.MeanQuantileLoss(actual, forecasts, levels)
}

func Coverage(actual, lower, upper []float64) (float64, error) {
	return metrics.Coverage(actual, lower, upper)
}
