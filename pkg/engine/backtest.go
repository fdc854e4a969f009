package engine

import (
	"github.com/anofox/tsforge/pkg/cv"
	"github.com/anofox/tsforge/pkg/engerr"
	"github.com/anofox/tsforge/pkg/models"
)

// BacktestAutoConfig mirrors the cv.Config fold-generation knobs plus the
// model name/params ts_backtest_auto needs to build a fresh forecaster
// per fold.
type BacktestAutoConfig struct {
	cv.Config
	ModelName string
	Params    models.Params
}

// BacktestAuto implements ts_backtest_auto(...): generates folds per cfg
// and backtests the named model across every fold, returning both
// per-fold results and the concatenation-based aggregate.
func BacktestAuto(values []float64, cfg BacktestAutoConfig) ([]cv.FoldResult, cv.AggregateMetrics, error) {
	const op = "engine.BacktestAuto"
	if cfg.ModelName == "" {
		return nil, cv.AggregateMetrics{}, engerr.New(engerr.InvalidArgument, op, "model name required")
	}
	factory := func() cv.Forecaster {
		m, err := models.New(cfg.ModelName, cfg.Params)
		if err != nil {
			return failingForecaster{err: err}
		}
		return m
	}
	return cv.Run(cfg.Config, values, factory)
}

// failingForecaster makes an unknown-model-name error surface as a failed
// fold (per §7: per-group numerical/argument failures are recorded on
// the row, not raised synchronously mid-backtest) instead of panicking
// inside cv.Run's factory callback.
type failingForecaster struct{ err error }

func (f failingForecaster) Fit([]float64) error                { return f.err }
func (f failingForecaster) Forecast(int) ([]float64, error)    { return nil, f.err }

// CVSplit implements ts_cv_split(...): exposes fold generation directly
// so a host can inspect the train/test index ranges without running any
// model.
func CVSplit(cfg cv.Config) ([]cv.Fold, error) {
	return cv.GenerateFolds(cfg)
}

// CVForecastByConfig bundles per-group CV parameters for
// ts_cv_forecast_by, the grouped counterpart of ts_backtest_auto.
type CVForecastByConfig struct {
	BacktestAutoConfig
}

// CVForecastBy backtests one group's series, reusing BacktestAuto; the
// grouping/streaming itself is the host's responsibility via
// NewForecastByOperator-style wiring, since CV folds operate on one
// already-accumulated, already-sorted series per group.
func CVForecastBy(values []float64, cfg CVForecastByConfig) ([]cv.FoldResult, cv.AggregateMetrics, error) {
	return BacktestAuto(values, cfg.BacktestAutoConfig)
}
