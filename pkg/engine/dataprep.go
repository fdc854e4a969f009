package engine

import (
	"github.com/anofox/tsforge/pkg/dataprep"
	"github.com/anofox/tsforge/pkg/series"
)

// This file re-exports pkg/dataprep under the §6 ts_drop_*/ts_fill_nulls_*/
// ts_diff names, operating on the same series.Series the rest of the
// engine facade passes around.

func DropShort(s series.Series, minLength int) (series.Series, bool) {
	return dataprep.DropShort(s, minLength)
}

func DropConstant(s series.Series) (series.Series, bool) { return dataprep.DropConstant(s) }

func DropLeadingZeros(s series.Series) series.Series  { return dataprep.DropLeadingZeros(s) }
func DropTrailingZeros(s series.Series) series.Series { return dataprep.DropTrailingZeros(s) }
func DropEdgeZeros(s series.Series) series.Series     { return dataprep.DropEdgeZeros(s) }

func FillNullsConst(s series.Series, v float64) series.Series {
	return dataprep.FillNullsConst(s, v)
}
func FillNullsForward(s series.Series) series.Series  { return dataprep.FillNullsForward(s) }
func FillNullsBackward(s series.Series) series.Series { return dataprep.FillNullsBackward(s) }
func FillNullsMean(s series.Series) series.Series     { return dataprep.FillNullsMean(s) }

func Diff(s series.Series, order int) (series.Series, error) { return dataprep.Diff(s, order) }
