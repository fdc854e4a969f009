package engine

import (
	"time"

	"github.com/anofox/tsforge/pkg/engerr"
	"github.com/anofox/tsforge/pkg/groupop"
	"github.com/anofox/tsforge/pkg/models"
	"github.com/anofox/tsforge/pkg/series"
)

// GroupRow is one input row to ts_forecast_by/ts_cv_forecast_by: a group
// key plus the (timestamp, value) observation the host streamed in.
type GroupRow[K comparable] struct {
	Key       K
	Timestamp time.Time
	Value     float64
	Valid     bool
}

// ForecastByConfig bundles the per-call parameters every group's forecast
// shares — the table-macro form takes one model/horizon/params for the
// whole relation, per §6's ts_forecast_by contract.
type ForecastByConfig struct {
	ModelName string
	Horizon   int
	Params    models.Params
	NumSlots  int
}

// NewForecastByOperator builds the groupop.Operator that implements
// ts_forecast_by(...): each group's accumulated rows are sorted by
// timestamp and handed to engine.Forecast once, at finalize. The
// returned operator is driven by the host's existing Stream/Finalize
// worker-thread protocol; this function only wires the per-group
// transform.
func NewForecastByOperator[K comparable](cfg ForecastByConfig, hashKey func(K) uint64, outputChunkCapacity int) *groupop.Operator[K, GroupRow[K], ForecastResult] {
	numSlots := cfg.NumSlots
	if numSlots < 1 {
		numSlots = 1
	}
	transform := func(_ K, rows []GroupRow[K]) (ForecastResult, error) {
		return forecastGroup(rows, cfg)
	}
	return groupop.New(numSlots, hashKey, transform, outputChunkCapacity)
}

func forecastGroup[K comparable](rows []GroupRow[K], cfg ForecastByConfig) (ForecastResult, error) {
	const op = "engine.forecastGroup"
	if len(rows) == 0 {
		return ForecastResult{}, engerr.New(engerr.InvalidArgument, op, "empty group")
	}
	ts := make([]time.Time, len(rows))
	values := make([]float64, len(rows))
	valid := make([]bool, len(rows))
	for i, r := range rows {
		ts[i] = r.Timestamp
		values[i] = r.Value
		valid[i] = r.Valid
	}
	sorted := series.New(ts, values, valid).SortByTime()
	dense := make([]float64, 0, sorted.ValidCount())
	for i := 0; i < sorted.Len(); i++ {
		if sorted.IsValid(i) {
			dense = append(dense, sorted.Values[i])
		}
	}
	return Forecast(dense, cfg.Horizon, cfg.ModelName, cfg.Params)
}
