package cv

import (
	"fmt"
	"math"
	"sync"

	"github.com/anofox/tsforge/pkg/engerr"
	"github.com/anofox/tsforge/pkg/metrics"
)

// Forecaster is the minimal fit/forecast surface a backtested model must
// provide. pkg/models' catalog entries satisfy this directly.
type Forecaster interface {
	Fit(values []float64) error
	Forecast(steps int) ([]float64, error)
}

// Factory returns a fresh Forecaster for one fold. Called once per fold so
// folds never share mutable fit state.
type Factory func() Forecaster

// FoldResult is one fold's outcome. A failed fold has Err set and all
// metrics left at their NaN zero value; it is excluded from aggregation
// but still reported so callers can see which folds failed.
type FoldResult struct {
	Fold     Fold
	Actual   []float64
	Forecast []float64
	MAE      float64
	MSE      float64
	RMSE     float64
	SMAPE    float64
	Err      error
}

// AggregateMetrics is computed over the concatenation of every successful
// fold's (actual, forecast) pairs, not by averaging per-fold metrics, so it
// stays valid under unequal fold sizes.
type AggregateMetrics struct {
	MAE        float64
	MSE        float64
	RMSE       float64
	SMAPE      float64
	FoldCount  int
	FailCount  int
}

func failedFold(f Fold, err error) FoldResult {
	return FoldResult{Fold: f, MAE: math.NaN(), MSE: math.NaN(), RMSE: math.NaN(), SMAPE: math.NaN(), Err: err}
}

// Run generates folds from cfg, fits and forecasts one model per fold in
// parallel via factory, and returns both the per-fold results and the
// concatenation-based aggregate.
func Run(cfg Config, values []float64, factory Factory) ([]FoldResult, AggregateMetrics, error) {
	const op = "cv.Run"
	folds, err := GenerateFolds(cfg)
	if err != nil {
		return nil, AggregateMetrics{}, err
	}
	if len(values) < cfg.N {
		return nil, AggregateMetrics{}, engerr.New(engerr.InvalidArgument, op, "values shorter than configured N")
	}

	results := make([]FoldResult, len(folds))
	var wg sync.WaitGroup
	for i, f := range folds {
		wg.Add(1)
		go func(i int, f Fold) {
			defer wg.Done()
			results[i] = runOneFold(f, values, factory)
		}(i, f)
	}
	wg.Wait()

	agg := aggregate(results)
	return results, agg, nil
}

func runOneFold(f Fold, values []float64, factory Factory) (result FoldResult) {
	defer func() {
		// A panicking forecaster must not take the whole backtest down;
		// this recover turns it into a recorded fold failure.
		if r := recover(); r != nil {
			result = failedFold(f, fmt.Errorf("panic: %v", r))
		}
	}()

	model := factory()
	train := values[f.TrainStart:f.TrainEnd]
	if err := model.Fit(train); err != nil {
		return failedFold(f, err)
	}
	steps := f.TestEnd - f.TestStart
	forecast, err := model.Forecast(steps)
	if err != nil {
		return failedFold(f, err)
	}
	actual := values[f.TestStart:f.TestEnd]
	if len(forecast) != len(actual) {
		return failedFold(f, engerr.New(engerr.Internal, "cv.runOneFold", "forecaster returned wrong horizon length"))
	}

	mae, _ := metrics.MAE(actual, forecast)
	mse, _ := metrics.MSE(actual, forecast)
	rmse, _ := metrics.RMSE(actual, forecast)
	smape, _ := metrics.SMAPE(actual, forecast)

	return FoldResult{
		Fold: f, Actual: actual, Forecast: forecast,
		MAE: mae, MSE: mse, RMSE: rmse, SMAPE: smape,
	}
}

func aggregate(results []FoldResult) AggregateMetrics {
	var actual, forecast []float64
	failCount := 0
	for _, r := range results {
		if r.Err != nil {
			failCount++
			continue
		}
		actual = append(actual, r.Actual...)
		forecast = append(forecast, r.Forecast...)
	}
	if len(actual) == 0 {
		return AggregateMetrics{FoldCount: 0, FailCount: failCount}
	}
	mae, _ := metrics.MAE(actual, forecast)
	mse, _ := metrics.MSE(actual, forecast)
	rmse, _ := metrics.RMSE(actual, forecast)
	smape, _ := metrics.SMAPE(actual, forecast)
	return AggregateMetrics{
		MAE: mae, MSE: mse, RMSE: rmse, SMAPE: smape,
		FoldCount: len(results) - failCount,
		FailCount: failCount,
	}
}
