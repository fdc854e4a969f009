package engine

import (
	"github.com/anofox/tsforge/pkg/engerr"
	"github.com/anofox/tsforge/pkg/features"
)

// FeaturesList implements ts_features_list(values, names): the
// table-valued counterpart to ts_features_agg, returning one row per
// requested calculator instead of a single wide map. Row's value column
// is always named "value" per features.Row's own doc comment.
func FeaturesList(values []float64, names []string) ([]features.Row, error) {
	const op = "engine.FeaturesList"
	if len(values) == 0 {
		return nil, engerr.New(engerr.InvalidArgument, op, "empty series")
	}
	if len(names) == 0 {
		names = features.Names()
	}
	return features.ComputeRows(names, values, nil)
}
